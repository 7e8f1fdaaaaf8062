package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/autocommit/domain/commit"
	"github.com/helixml/autocommit/infrastructure/persistence"
	"github.com/helixml/autocommit/internal/testdb"
)

func TestAttemptStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewAttemptStore(testdb.New(t))

	attempt := commit.NewAttempt(commit.TriggerThreshold).
		WithFiles([]string{"main.go", "docs/readme.md"}).
		WithStats(3, 1).
		WithMessage(commit.NewMessage("Add greeting", commit.SourceDiff)).
		Committed("abc123").
		Finished(time.Now().Add(1500 * time.Millisecond))

	saved, err := store.Save(ctx, attempt)
	require.NoError(t, err)
	require.NotZero(t, saved.ID())

	got, err := store.FindOne(ctx, persistence.WithStatus(commit.StatusCommitted))
	require.NoError(t, err)

	assert.Equal(t, saved.ID(), got.ID())
	assert.Equal(t, commit.TriggerThreshold, got.Trigger())
	assert.Equal(t, "Add greeting", got.Message().Text())
	assert.Equal(t, commit.SourceDiff, got.Message().Source())
	assert.Equal(t, "abc123", got.CommitSHA())
	assert.Equal(t, []string{"main.go", "docs/readme.md"}, got.Files())
	assert.Equal(t, 3, got.Additions())
	assert.Equal(t, 1, got.Deletions())
	assert.Equal(t, commit.KindNone, got.ErrorKind())
	assert.GreaterOrEqual(t, got.Duration(), 1500*time.Millisecond)
}

func TestAttemptStore_FailedAttempt(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewAttemptStore(testdb.New(t))

	err := errors.Join(commit.ErrStagedUncommitted, errors.New("hook failed"))
	attempt := commit.NewAttempt(commit.TriggerManual).
		Failed(err).
		WithStagedUncommitted(true)

	saved, err := store.Save(ctx, attempt)
	require.NoError(t, err)

	assert.Equal(t, commit.StatusFailed, saved.Status())
	assert.True(t, saved.StagedUncommitted())
	assert.Empty(t, saved.Files())
	assert.Contains(t, saved.ErrorDetail(), "hook failed")
}

func TestAttemptStore_RecentAndFilters(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewAttemptStore(testdb.New(t))

	_, err := store.Save(ctx, commit.NewAttempt(commit.TriggerThreshold).Committed("a"))
	require.NoError(t, err)
	_, err = store.Save(ctx, commit.NewAttempt(commit.TriggerManual).Nothing())
	require.NoError(t, err)
	_, err = store.Save(ctx, commit.NewAttempt(commit.TriggerThreshold).Committed("c"))
	require.NoError(t, err)

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].CommitSHA())
	assert.Equal(t, commit.StatusNothing, recent[1].Status())

	count, err := store.Count(ctx, persistence.WithTrigger(commit.TriggerThreshold))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	nothing, err := store.Find(ctx, persistence.WithStatus(commit.StatusNothing))
	require.NoError(t, err)
	require.Len(t, nothing, 1)
	assert.Equal(t, commit.KindNothingToCommit, nothing[0].ErrorKind())
}
