package jsonapi

import (
	"strconv"

	"github.com/helixml/autocommit/domain/commit"
)

// ResourceTypeAttempt is the JSON:API type of commit attempts.
const ResourceTypeAttempt = "commit_attempts"

// AttemptAttributes represents commit attempt attributes in JSON:API format.
type AttemptAttributes struct {
	Trigger           string   `json:"trigger"`
	Status            string   `json:"status"`
	Message           string   `json:"message,omitempty"`
	MessageSource     string   `json:"message_source,omitempty"`
	CommitSHA         string   `json:"commit_sha,omitempty"`
	Files             []string `json:"files"`
	Additions         int      `json:"additions"`
	Deletions         int      `json:"deletions"`
	ErrorKind         string   `json:"error_kind,omitempty"`
	ErrorDetail       string   `json:"error_detail,omitempty"`
	StagedUncommitted bool     `json:"staged_uncommitted"`
	DurationMS        int64    `json:"duration_ms"`
	CreatedAt         DateTime `json:"created_at"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// AttemptResource converts a commit attempt to a JSON:API resource.
func (s *Serializer) AttemptResource(a commit.Attempt) *Resource {
	files := a.Files()
	if files == nil {
		files = []string{}
	}
	return NewResource(ResourceTypeAttempt, strconv.FormatInt(a.ID(), 10), AttemptAttributes{
		Trigger:           string(a.Trigger()),
		Status:            string(a.Status()),
		Message:           a.Message().Text(),
		MessageSource:     string(a.Message().Source()),
		CommitSHA:         a.CommitSHA(),
		Files:             files,
		Additions:         a.Additions(),
		Deletions:         a.Deletions(),
		ErrorKind:         string(a.ErrorKind()),
		ErrorDetail:       a.ErrorDetail(),
		StagedUncommitted: a.StagedUncommitted(),
		DurationMS:        a.Duration().Milliseconds(),
		CreatedAt:         DateTime(a.CreatedAt()),
	})
}

// AttemptResources converts commit attempts to JSON:API resources.
func (s *Serializer) AttemptResources(attempts []commit.Attempt) []*Resource {
	resources := make([]*Resource, len(attempts))
	for i, a := range attempts {
		resources[i] = s.AttemptResource(a)
	}
	return resources
}
