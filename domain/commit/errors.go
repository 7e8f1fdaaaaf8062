package commit

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrRepositoryNotFound indicates no repository root could be resolved.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrCredentialMissing indicates no API key is configured for message generation.
	ErrCredentialMissing = errors.New("credential missing")

	// ErrGitUnavailable indicates the git executable could not be started.
	ErrGitUnavailable = errors.New("git executable unavailable")

	// ErrStagedUncommitted marks a failure after changes were staged but
	// before a commit was recorded.
	ErrStagedUncommitted = errors.New("changes staged but not committed")

	// ErrNothingToCommit indicates the working tree has no modified files.
	ErrNothingToCommit = errors.New("nothing to commit")
)

// ServiceError is a failure reported by, or while talking to, the
// summarization service.
type ServiceError struct {
	status int
	detail string
	cause  error
}

// NewServiceError creates a ServiceError.
func NewServiceError(status int, detail string, cause error) *ServiceError {
	return &ServiceError{status: status, detail: detail, cause: cause}
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.status > 0 {
		return fmt.Sprintf("summarization service error (status %d): %s", e.status, e.detail)
	}
	return fmt.Sprintf("summarization service error: %s", e.detail)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error { return e.cause }

// Status returns the HTTP status code, or 0 when none was received.
func (e *ServiceError) Status() int { return e.status }

// Detail returns the failure detail.
func (e *ServiceError) Detail() string { return e.detail }

// ProcessError is implemented by errors from external process invocations.
type ProcessError interface {
	error
	ExitCode() int
	Stderr() string
}

// Kind classifies an error for history records and API responses.
type Kind string

// Kind values.
const (
	KindNone               Kind = ""
	KindRepositoryNotFound Kind = "repository_not_found"
	KindCredentialMissing  Kind = "credential_missing"
	KindService            Kind = "service_error"
	KindProcessExecution   Kind = "process_execution_error"
	KindNothingToCommit    Kind = "nothing_to_commit"
	KindCanceled           Kind = "canceled"
	KindUnknown            Kind = "unknown"
)

// KindOf maps an error to its Kind.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var svcErr *ServiceError
	var procErr ProcessError

	switch {
	case errors.Is(err, ErrRepositoryNotFound):
		return KindRepositoryNotFound
	case errors.Is(err, ErrCredentialMissing):
		return KindCredentialMissing
	case errors.Is(err, ErrNothingToCommit):
		return KindNothingToCommit
	case errors.As(err, &svcErr):
		return KindService
	case errors.Is(err, ErrGitUnavailable), errors.As(err, &procErr):
		return KindProcessExecution
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}
