package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/autocommit/application/service"
	"github.com/helixml/autocommit/domain/commit"
	"github.com/helixml/autocommit/infrastructure/api/jsonapi"
)

// StatusFor maps an error to its HTTP status code and title.
func StatusFor(err error) (int, string) {
	var serviceErr *commit.ServiceError

	switch {
	case errors.Is(err, service.ErrPipelineBusy):
		return http.StatusConflict, "Commit In Progress"
	case errors.Is(err, commit.ErrNothingToCommit):
		return http.StatusUnprocessableEntity, "Nothing To Commit"
	case errors.Is(err, commit.ErrCredentialMissing):
		return http.StatusPreconditionFailed, "API Key Missing"
	case errors.Is(err, commit.ErrRepositoryNotFound):
		return http.StatusNotFound, "Repository Not Found"
	case errors.As(err, &serviceErr):
		return http.StatusBadGateway, "Generation Service Error"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// WriteError writes a JSON:API formatted error response. Server-side
// failures are logged at Error, client-visible conditions at Info.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, title := StatusFor(err)
	requestID := chimiddleware.GetReqID(r.Context())

	if logger != nil {
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			slog.String("request_id", requestID),
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	apiErr := jsonapi.NewError(strconv.Itoa(status), title, err.Error())
	apiErr.ID = requestID
	apiErr.Code = string(commit.KindOf(err))

	writeDocument(w, "application/vnd.api+json", status, jsonapi.NewErrorResponse(apiErr))
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeDocument(w, "application/json", status, data)
}

// WriteDocument writes a JSON:API document.
func WriteDocument(w http.ResponseWriter, status int, doc *jsonapi.Document) {
	writeDocument(w, "application/vnd.api+json", status, doc)
}

func writeDocument(w http.ResponseWriter, contentType string, status int, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
