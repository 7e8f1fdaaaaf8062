package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/autocommit/application/service"
	"github.com/helixml/autocommit/infrastructure/api/middleware"
)

// StatusReporter reports the modification counter.
type StatusReporter interface {
	Status() service.Status
}

// StatusRouter handles the status endpoint.
type StatusRouter struct {
	reporter StatusReporter
}

// NewStatusRouter creates a new StatusRouter.
func NewStatusRouter(reporter StatusReporter) *StatusRouter {
	return &StatusRouter{reporter: reporter}
}

// Routes returns the chi router for the status endpoint.
func (r *StatusRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.Get)
	return router
}

// Get handles GET /api/v1/status.
func (r *StatusRouter) Get(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, r.reporter.Status())
}
