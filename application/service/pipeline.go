package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helixml/autocommit/domain/change"
	"github.com/helixml/autocommit/domain/commit"
	"github.com/helixml/autocommit/domain/diff"
)

// ErrPipelineBusy indicates a run was dropped because another was active.
var ErrPipelineBusy = errors.New("commit already in progress")

// Default step timeouts.
const (
	DefaultStepTimeout       = 30 * time.Second
	DefaultGenerationTimeout = 60 * time.Second
)

// VCS is the version control surface the pipeline drives.
type VCS interface {
	ResolveRepositoryRoot(start string) (string, error)
	ModifiedFiles(ctx context.Context, root string) ([]string, error)
	DiffText(ctx context.Context, root string) (string, error)
	StageAndCommit(ctx context.Context, root string, message string) error
	HeadCommit(ctx context.Context, root string) (string, error)
}

// Summarizer writes a commit message for a diff.
type Summarizer interface {
	Summarize(ctx context.Context, doc diff.Document, files []string) (commit.Message, error)
}

// AttemptRecorder persists finished attempts.
type AttemptRecorder interface {
	Save(ctx context.Context, a commit.Attempt) (commit.Attempt, error)
}

// Pipeline runs extract, summarize and commit as one single-flight unit.
type Pipeline struct {
	start      string
	vcs        VCS
	summarizer Summarizer
	tracker    *change.Tracker
	recorder   AttemptRecorder
	logger     *slog.Logger

	stepTimeout       time.Duration
	generationTimeout time.Duration

	running atomic.Bool
	wg      sync.WaitGroup
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithStepTimeout bounds each git step.
func WithStepTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.stepTimeout = d
		}
	}
}

// WithGenerationTimeout bounds the message generation step.
func WithGenerationTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.generationTimeout = d
		}
	}
}

// WithRecorder stores every finished attempt.
func WithRecorder(r AttemptRecorder) PipelineOption {
	return func(p *Pipeline) { p.recorder = r }
}

// NewPipeline creates a Pipeline for the repository containing start.
func NewPipeline(
	start string,
	vcs VCS,
	summarizer Summarizer,
	tracker *change.Tracker,
	logger *slog.Logger,
	opts ...PipelineOption,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		start:             start,
		vcs:               vcs,
		summarizer:        summarizer,
		tracker:           tracker,
		logger:            logger,
		stepTimeout:       DefaultStepTimeout,
		generationTimeout: DefaultGenerationTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Running reports whether a run is in progress.
func (p *Pipeline) Running() bool { return p.running.Load() }

// Root resolves the repository root for the configured start path.
func (p *Pipeline) Root() (string, error) {
	return p.vcs.ResolveRepositoryRoot(p.start)
}

// Trigger starts a run in the background. Cancellation of ctx does not stop
// a run once started; Wait blocks until it finishes.
func (p *Pipeline) Trigger(ctx context.Context, trigger commit.Trigger) {
	ctx = context.WithoutCancel(ctx)
	p.wg.Go(func() {
		_, _ = p.Run(ctx, trigger)
	})
}

// Wait blocks until every triggered run has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Run executes the pipeline once. It returns ErrPipelineBusy without doing
// anything when another run holds the guard, and commit.ErrNothingToCommit
// when the working tree is clean. The tracker is reset only after a commit
// was recorded.
func (p *Pipeline) Run(ctx context.Context, trigger commit.Trigger) (commit.Attempt, error) {
	attempt := commit.NewAttempt(trigger)

	if !p.running.CompareAndSwap(false, true) {
		p.logger.Info("commit already in progress", slog.String("trigger", string(trigger)))
		return attempt.Busy().Finished(time.Now()), ErrPipelineBusy
	}
	defer p.running.Store(false)

	attempt, err := p.execute(ctx, attempt)
	attempt = attempt.Finished(time.Now())

	switch {
	case err == nil:
		p.tracker.Reset()
		p.logger.Info("committed changes",
			slog.String("sha", attempt.CommitSHA()),
			slog.String("message", attempt.Message().Text()),
			slog.Int("files", len(attempt.Files())),
			slog.Duration("duration", attempt.Duration()),
		)
	case errors.Is(err, commit.ErrNothingToCommit):
		p.logger.Info("no changes to commit")
	default:
		attempt = attempt.Failed(err)
		p.logger.Error("automatic commit failed",
			slog.String("kind", string(attempt.ErrorKind())),
			slog.Bool("staged_uncommitted", attempt.StagedUncommitted()),
			slog.String("error", err.Error()),
		)
	}

	return p.record(ctx, attempt), err
}

func (p *Pipeline) execute(ctx context.Context, attempt commit.Attempt) (commit.Attempt, error) {
	root, err := p.vcs.ResolveRepositoryRoot(p.start)
	if err != nil {
		return attempt, fmt.Errorf("resolve repository root: %w", err)
	}

	var files []string
	err = p.step(ctx, p.stepTimeout, func(ctx context.Context) error {
		files, err = p.vcs.ModifiedFiles(ctx, root)
		return err
	})
	if err != nil {
		return attempt, fmt.Errorf("list modified files: %w", err)
	}
	if len(files) == 0 {
		return attempt.Nothing(), commit.ErrNothingToCommit
	}
	attempt = attempt.WithFiles(files)

	var doc diff.Document
	err = p.step(ctx, p.stepTimeout, func(ctx context.Context) error {
		doc, err = diff.Extract(ctx, p.vcs, root)
		return err
	})
	if err != nil {
		return attempt, err
	}
	stats := doc.Stats()
	attempt = attempt.WithStats(stats.Additions, stats.Deletions)

	var msg commit.Message
	err = p.step(ctx, p.generationTimeout, func(ctx context.Context) error {
		msg, err = p.summarizer.Summarize(ctx, doc, files)
		return err
	})
	if err != nil {
		return attempt, fmt.Errorf("generate message: %w", err)
	}
	attempt = attempt.WithMessage(msg)

	err = p.step(ctx, p.stepTimeout, func(ctx context.Context) error {
		return p.vcs.StageAndCommit(ctx, root, msg.Text())
	})
	if err != nil {
		if errors.Is(err, commit.ErrStagedUncommitted) {
			attempt = attempt.WithStagedUncommitted(true)
			p.logger.Warn("changes were staged but not committed", slog.String("root", root))
		}
		return attempt, err
	}

	var sha string
	err = p.step(ctx, p.stepTimeout, func(ctx context.Context) error {
		sha, err = p.vcs.HeadCommit(ctx, root)
		return err
	})
	if err != nil {
		p.logger.Warn("failed to read new HEAD", slog.String("error", err.Error()))
	}

	return attempt.Committed(sha), nil
}

func (p *Pipeline) step(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func (p *Pipeline) record(ctx context.Context, attempt commit.Attempt) commit.Attempt {
	if p.recorder == nil {
		return attempt
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.stepTimeout)
	defer cancel()

	saved, err := p.recorder.Save(ctx, attempt)
	if err != nil {
		p.logger.Warn("failed to record commit attempt", slog.String("error", err.Error()))
		return attempt
	}
	return saved
}
