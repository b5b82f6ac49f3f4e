package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func TestChain_LogsRequestWithID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := chimw.RequestID(Chain(logger, errors.NewHTTPErrorAdapter(logger))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/theme", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "HTTP request", line["msg"])
	assert.Equal(t, "/api/theme", line["path"])
	assert.Equal(t, "GET", line["method"])
	assert.InDelta(t, http.StatusTeapot, line["status"], 0)
	assert.NotEmpty(t, line["request.id"])
}

func TestChain_RecoversPanics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := Chain(logger, errors.NewHTTPErrorAdapter(logger))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "internal", body.Code)
}
