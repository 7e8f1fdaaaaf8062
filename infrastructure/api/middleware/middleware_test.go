package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/autocommit/application/service"
	"github.com/helixml/autocommit/domain/commit"
	"github.com/helixml/autocommit/infrastructure/api/jsonapi"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"busy", service.ErrPipelineBusy, http.StatusConflict},
		{"nothing", fmt.Errorf("run: %w", commit.ErrNothingToCommit), http.StatusUnprocessableEntity},
		{"credential", commit.ErrCredentialMissing, http.StatusPreconditionFailed},
		{"repository", commit.ErrRepositoryNotFound, http.StatusNotFound},
		{"service", fmt.Errorf("generate message: %w", commit.NewServiceError(429, "quota", nil)), http.StatusBadGateway},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := StatusFor(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/commits", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, commit.NewServiceError(503, "overloaded", nil), logger)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/vnd.api+json", rec.Header().Get("Content-Type"))

	var doc jsonapi.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "502", doc.Errors[0].Status)
	assert.Equal(t, string(commit.KindService), doc.Errors[0].Code)
	assert.Contains(t, doc.Errors[0].Detail, "overloaded")
	assert.Contains(t, logs.String(), "level=ERROR")
}

func TestWriteError_ClientConditionLogsInfo(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/commits", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, service.ErrPipelineBusy, logger)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, logs.String(), "level=INFO")
}

func TestLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	out := logs.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "status=418")

	logs.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.False(t, strings.Contains(logs.String(), "request completed"), "health checks log at debug")
}
