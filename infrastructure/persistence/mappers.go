package persistence

import (
	"strings"
	"time"

	"github.com/helixml/autocommit/domain/commit"
)

// AttemptMapper maps between commit.Attempt and AttemptModel.
type AttemptMapper struct{}

// ToDomain converts an AttemptModel to a commit.Attempt.
func (AttemptMapper) ToDomain(e AttemptModel) commit.Attempt {
	var files []string
	if e.Files != "" {
		files = strings.Split(e.Files, "\n")
	}

	return commit.ReconstructAttempt(
		e.ID,
		commit.Trigger(e.Trigger),
		commit.Status(e.Status),
		commit.NewMessage(e.Message, commit.Source(e.MessageSource)),
		e.CommitSHA,
		files,
		e.Additions,
		e.Deletions,
		commit.Kind(e.ErrorKind),
		e.ErrorDetail,
		e.StagedUncommitted,
		e.CreatedAt,
		time.Duration(e.DurationMS)*time.Millisecond,
	)
}

// ToModel converts a commit.Attempt to an AttemptModel.
func (AttemptMapper) ToModel(a commit.Attempt) AttemptModel {
	return AttemptModel{
		ID:                a.ID(),
		CreatedAt:         a.CreatedAt(),
		Trigger:           string(a.Trigger()),
		Status:            string(a.Status()),
		Message:           a.Message().Text(),
		MessageSource:     string(a.Message().Source()),
		CommitSHA:         a.CommitSHA(),
		Files:             strings.Join(a.Files(), "\n"),
		Additions:         a.Additions(),
		Deletions:         a.Deletions(),
		ErrorKind:         string(a.ErrorKind()),
		ErrorDetail:       a.ErrorDetail(),
		StagedUncommitted: a.StagedUncommitted(),
		DurationMS:        a.Duration().Milliseconds(),
	}
}
