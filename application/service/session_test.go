package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/autocommit/domain/commit"
)

func TestSession_NotifyTriggersAtThreshold(t *testing.T) {
	f := newPipelineFixture(t)
	s := NewSession(f.tracker, f.pipeline, nil)
	ctx := context.Background()

	for range 4 {
		s.Notify(ctx, []string{"main.go"})
	}
	s.Wait()
	assert.Empty(t, f.vcs.committed())
	assert.Equal(t, 4, s.Status().Count)

	s.Notify(ctx, []string{"main.go", "README.md"})
	s.Wait()

	require.Len(t, f.vcs.committed(), 1)
	assert.Equal(t, 0, s.Status().Count)
	assert.Equal(t, 1, f.gen.calls())
}

func TestSession_EmptyBatchIsIgnored(t *testing.T) {
	f := newPipelineFixture(t)
	s := NewSession(f.tracker, f.pipeline, nil)

	for range 10 {
		s.Notify(context.Background(), nil)
	}
	s.Wait()

	assert.Equal(t, 0, s.Status().Count)
	assert.Empty(t, f.vcs.committed())
}

func TestSession_FailureKeepsCountAndRetriggers(t *testing.T) {
	f := newPipelineFixture(t)
	f.pipeline.summarizer = NewMessageGenerator(f.gen, nil)
	s := NewSession(f.tracker, f.pipeline, nil)
	ctx := context.Background()

	for range 5 {
		s.Notify(ctx, []string{"a"})
	}
	s.Wait()
	assert.Equal(t, 5, s.Status().Count)

	s.Notify(ctx, []string{"a"})
	s.Wait()
	assert.Equal(t, 6, s.Status().Count)
	assert.Len(t, f.recorder.all(), 2, "every notification at or past the threshold starts a run")
}

func TestSession_CommitNow(t *testing.T) {
	f := newPipelineFixture(t)
	s := NewSession(f.tracker, f.pipeline, nil)

	attempt, err := s.CommitNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, commit.TriggerManual, attempt.Trigger())
	assert.Equal(t, commit.StatusCommitted, attempt.Status())
}

func TestSession_Status(t *testing.T) {
	f := newPipelineFixture(t)
	s := NewSession(f.tracker, f.pipeline, nil)

	s.SetThreshold(3)
	s.Notify(context.Background(), []string{"x"})

	st := s.Status()
	assert.Equal(t, 1, st.Count)
	assert.Equal(t, 3, st.Threshold)
	assert.False(t, st.Running)
	assert.Equal(t, "/repo", st.RepoRoot)
}
