// Package commit holds the outcome types of an automatic commit attempt.
package commit

import (
	"strings"
	"time"
)

// Source records which context the message was generated from.
type Source string

// Source values.
const (
	SourceDiff     Source = "diff"
	SourceFileList Source = "file_list"
)

// Message is a successfully generated commit message. Failures are never
// represented as a Message; they are returned as errors.
type Message struct {
	text   string
	source Source
}

// NewMessage creates a Message. The text is trimmed.
func NewMessage(text string, source Source) Message {
	return Message{text: strings.TrimSpace(text), source: source}
}

// Text returns the message text.
func (m Message) Text() string { return m.text }

// Source returns the context the message was generated from.
func (m Message) Source() Source { return m.source }

// IsZero reports whether the message is unset.
func (m Message) IsZero() bool { return m.text == "" }

// Request is the input derived for one generation attempt.
type Request struct {
	preamble string
	context  string
	useDiff  bool
}

// NewRequest creates a Request.
func NewRequest(preamble, context string, useDiff bool) Request {
	return Request{preamble: preamble, context: context, useDiff: useDiff}
}

// Preamble returns the instruction text placed before the context.
func (r Request) Preamble() string { return r.preamble }

// Context returns the diff or file list sent for summarization.
func (r Request) Context() string { return r.context }

// UseDiff reports whether the context is the rendered diff.
func (r Request) UseDiff() bool { return r.useDiff }

// Source returns the Source matching the request context.
func (r Request) Source() Source {
	if r.useDiff {
		return SourceDiff
	}
	return SourceFileList
}

// Trigger records what started an attempt.
type Trigger string

// Trigger values.
const (
	TriggerThreshold Trigger = "threshold"
	TriggerManual    Trigger = "manual"
)

// Status is the final state of an attempt.
type Status string

// Status values.
const (
	StatusCommitted Status = "committed"
	StatusFailed    Status = "failed"
	StatusNothing   Status = "nothing"
	StatusBusy      Status = "busy"
)

// Attempt is the record of one pipeline run.
type Attempt struct {
	id                int64
	trigger           Trigger
	status            Status
	message           Message
	commitSHA         string
	files             []string
	additions         int
	deletions         int
	errorKind         Kind
	errorDetail       string
	stagedUncommitted bool
	createdAt         time.Time
	duration          time.Duration
}

// NewAttempt creates an Attempt for trigger with status failed until
// marked otherwise.
func NewAttempt(trigger Trigger) Attempt {
	return Attempt{
		trigger:   trigger,
		status:    StatusFailed,
		createdAt: time.Now(),
	}
}

// ReconstructAttempt rebuilds an Attempt from persistence.
func ReconstructAttempt(
	id int64,
	trigger Trigger,
	status Status,
	message Message,
	commitSHA string,
	files []string,
	additions, deletions int,
	errorKind Kind,
	errorDetail string,
	stagedUncommitted bool,
	createdAt time.Time,
	duration time.Duration,
) Attempt {
	return Attempt{
		id:                id,
		trigger:           trigger,
		status:            status,
		message:           message,
		commitSHA:         commitSHA,
		files:             files,
		additions:         additions,
		deletions:         deletions,
		errorKind:         errorKind,
		errorDetail:       errorDetail,
		stagedUncommitted: stagedUncommitted,
		createdAt:         createdAt,
		duration:          duration,
	}
}

// ID returns the persisted identifier, or 0 before saving.
func (a Attempt) ID() int64 { return a.id }

// Trigger returns what started the attempt.
func (a Attempt) Trigger() Trigger { return a.trigger }

// Status returns the final state.
func (a Attempt) Status() Status { return a.status }

// Message returns the generated message, if any.
func (a Attempt) Message() Message { return a.message }

// CommitSHA returns the created commit hash, if any.
func (a Attempt) CommitSHA() string { return a.commitSHA }

// Files returns a copy of the modified file paths.
func (a Attempt) Files() []string {
	result := make([]string, len(a.files))
	copy(result, a.files)
	return result
}

// Additions returns the number of added lines in the diff.
func (a Attempt) Additions() int { return a.additions }

// Deletions returns the number of removed lines in the diff.
func (a Attempt) Deletions() int { return a.deletions }

// ErrorKind returns the failure kind, or KindNone.
func (a Attempt) ErrorKind() Kind { return a.errorKind }

// ErrorDetail returns the failure text, if any.
func (a Attempt) ErrorDetail() string { return a.errorDetail }

// StagedUncommitted reports whether staging succeeded but the commit did not.
func (a Attempt) StagedUncommitted() bool { return a.stagedUncommitted }

// CreatedAt returns when the attempt started.
func (a Attempt) CreatedAt() time.Time { return a.createdAt }

// Duration returns how long the attempt ran.
func (a Attempt) Duration() time.Duration { return a.duration }

// Succeeded reports whether a commit was created.
func (a Attempt) Succeeded() bool { return a.status == StatusCommitted }

// WithID returns a copy with the given ID.
func (a Attempt) WithID(id int64) Attempt {
	a.id = id
	return a
}

// WithFiles returns a copy with the modified files.
func (a Attempt) WithFiles(files []string) Attempt {
	a.files = append([]string(nil), files...)
	return a
}

// WithStats returns a copy with diff line counts.
func (a Attempt) WithStats(additions, deletions int) Attempt {
	a.additions = additions
	a.deletions = deletions
	return a
}

// WithMessage returns a copy with the generated message.
func (a Attempt) WithMessage(m Message) Attempt {
	a.message = m
	return a
}

// Committed returns a copy marked as committed with sha.
func (a Attempt) Committed(sha string) Attempt {
	a.status = StatusCommitted
	a.commitSHA = sha
	a.errorKind = KindNone
	a.errorDetail = ""
	return a
}

// Failed returns a copy marked as failed with err.
func (a Attempt) Failed(err error) Attempt {
	a.status = StatusFailed
	a.errorKind = KindOf(err)
	if err != nil {
		a.errorDetail = err.Error()
	}
	return a
}

// Nothing returns a copy marked as having nothing to commit.
func (a Attempt) Nothing() Attempt {
	a.status = StatusNothing
	a.errorKind = KindNothingToCommit
	a.errorDetail = ErrNothingToCommit.Error()
	return a
}

// Busy returns a copy marked as dropped because another run was active.
func (a Attempt) Busy() Attempt {
	a.status = StatusBusy
	return a
}

// WithStagedUncommitted returns a copy flagged as staged without a commit.
func (a Attempt) WithStagedUncommitted(v bool) Attempt {
	a.stagedUncommitted = v
	return a
}

// Finished returns a copy with the duration measured from CreatedAt.
func (a Attempt) Finished(now time.Time) Attempt {
	a.duration = now.Sub(a.createdAt)
	return a
}
