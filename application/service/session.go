package service

import (
	"context"
	"log/slog"

	"github.com/helixml/autocommit/domain/change"
	"github.com/helixml/autocommit/domain/commit"
)

// Status is a snapshot of a Session.
type Status struct {
	Count     int    `json:"count"`
	Threshold int    `json:"threshold"`
	Running   bool   `json:"running"`
	RepoRoot  string `json:"repo_root"`
}

// Session connects change notifications to the tracker and the pipeline.
type Session struct {
	tracker  *change.Tracker
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewSession creates a Session.
func NewSession(tracker *change.Tracker, pipeline *Pipeline, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{tracker: tracker, pipeline: pipeline, logger: logger}
}

// Notify records one batch of changed paths and starts a background commit
// once the threshold is reached. It does not block on I/O.
func (s *Session) Notify(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		s.logger.Debug("no changes detected")
		return
	}

	count, reached := s.tracker.RecordNotification(paths)
	s.logger.Info("modifications",
		slog.Int("count", count),
		slog.Int("threshold", s.tracker.Threshold()),
		slog.Int("paths", len(paths)),
	)

	if reached {
		s.pipeline.Trigger(ctx, commit.TriggerThreshold)
	}
}

// CommitNow runs the pipeline synchronously.
func (s *Session) CommitNow(ctx context.Context) (commit.Attempt, error) {
	return s.pipeline.Run(ctx, commit.TriggerManual)
}

// SetThreshold changes the number of notifications that trigger a commit.
func (s *Session) SetThreshold(n int) {
	s.tracker.SetThreshold(n)
}

// Status returns the current counter state.
func (s *Session) Status() Status {
	state := s.tracker.Snapshot()
	root, err := s.pipeline.Root()
	if err != nil {
		root = ""
	}
	return Status{
		Count:     state.Count(),
		Threshold: state.Threshold(),
		Running:   s.pipeline.Running(),
		RepoRoot:  root,
	}
}

// Wait blocks until background commits have finished.
func (s *Session) Wait() {
	s.pipeline.Wait()
}
