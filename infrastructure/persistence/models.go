package persistence

import "time"

// AttemptModel is the row for one commit pipeline run.
type AttemptModel struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt         time.Time `gorm:"index"`
	Trigger           string    `gorm:"column:trigger_kind;size:32"`
	Status            string    `gorm:"size:32;index"`
	Message           string
	MessageSource     string `gorm:"size:32"`
	CommitSHA         string `gorm:"size:64"`
	Files             string
	Additions         int
	Deletions         int
	ErrorKind         string `gorm:"size:64"`
	ErrorDetail       string
	StagedUncommitted bool
	DurationMS        int64
}

// TableName returns the table name.
func (AttemptModel) TableName() string { return "commit_attempts" }
