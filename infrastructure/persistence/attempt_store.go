package persistence

import (
	"context"

	"github.com/helixml/autocommit/domain/commit"
	"github.com/helixml/autocommit/domain/query"
	"github.com/helixml/autocommit/internal/database"
)

// AttemptStore persists commit attempts using GORM.
type AttemptStore struct {
	database.Repository[commit.Attempt, AttemptModel]
}

// NewAttemptStore creates a new AttemptStore.
func NewAttemptStore(db database.Database) AttemptStore {
	return AttemptStore{
		Repository: database.NewRepository[commit.Attempt, AttemptModel](db, AttemptMapper{}, "commit attempt"),
	}
}

// Recent returns up to limit attempts, newest first.
func (s AttemptStore) Recent(ctx context.Context, limit int) ([]commit.Attempt, error) {
	return s.Find(ctx, query.WithOrderDesc("id"), query.WithLimit(limit))
}

// WithTrigger filters attempts by trigger.
func WithTrigger(t commit.Trigger) query.Option {
	return query.WithCondition("trigger_kind", string(t))
}

// WithStatus filters attempts by final status.
func WithStatus(s commit.Status) query.Option {
	return query.WithStatus(string(s))
}
