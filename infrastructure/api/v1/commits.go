// Package v1 provides the v1 API routes.
package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/autocommit/domain/commit"
	"github.com/helixml/autocommit/infrastructure/api/jsonapi"
	"github.com/helixml/autocommit/infrastructure/api/middleware"
)

// Committer runs a manual commit.
type Committer interface {
	CommitNow(ctx context.Context) (commit.Attempt, error)
}

// History lists recorded commit attempts.
type History interface {
	Recent(ctx context.Context, limit int) ([]commit.Attempt, error)
}

// CommitsRouter handles commit API endpoints.
type CommitsRouter struct {
	committer  Committer
	history    History
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewCommitsRouter creates a new CommitsRouter.
func NewCommitsRouter(committer Committer, history History, logger *slog.Logger) *CommitsRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommitsRouter{
		committer:  committer,
		history:    history,
		serializer: jsonapi.NewSerializer(),
		logger:     logger,
	}
}

// Routes returns the chi router for commit endpoints.
func (r *CommitsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Create)
	router.Get("/", r.List)

	return router
}

// Create handles POST /api/v1/commits.
//
// It commits the current working tree regardless of the modification count
// and answers 201 with the recorded attempt. A run already in progress
// yields 409, a clean tree 422 and a failing generation service 502.
func (r *CommitsRouter) Create(w http.ResponseWriter, req *http.Request) {
	attempt, err := r.committer.CommitNow(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteDocument(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.AttemptResource(attempt)))
}

// List handles GET /api/v1/commits.
func (r *CommitsRouter) List(w http.ResponseWriter, req *http.Request) {
	attempts, err := r.history.Recent(req.Context(), ParseLimit(req))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteDocument(w, http.StatusOK, jsonapi.NewListResponse(r.serializer.AttemptResources(attempts)))
}
