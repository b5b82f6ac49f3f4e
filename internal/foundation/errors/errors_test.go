package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError_BuilderAndAccessors(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := WrapError(cause, CategoryDocs, "read page failed").
		Warning().
		Retryable().
		WithContext("file", "guide/intro.md").
		Build()

	assert.Equal(t, CategoryDocs, err.Category())
	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, RetryBackoff, err.RetryStrategy())
	assert.True(t, err.CanRetry())
	assert.False(t, err.IsFatal())
	assert.ErrorIs(t, err, cause)

	file, ok := err.Context().GetString("file")
	require.True(t, ok)
	assert.Equal(t, "guide/intro.md", file)
	assert.Contains(t, err.Error(), "[docs:warning] read page failed: disk on fire")
}

func TestClassifiedError_WithContextDoesNotMutateOriginal(t *testing.T) {
	base := ConfigError("bad").Build()
	derived := base.WithContext("path", "/x/")

	_, ok := base.Context().Get("path")
	assert.False(t, ok)
	v, ok := derived.Context().GetString("path")
	require.True(t, ok)
	assert.Equal(t, "/x/", v)
}

func TestAsClassified_FollowsWrapChain(t *testing.T) {
	inner := ValidationError("sidebar invalid").Build()
	wrapped := fmt.Errorf("build: %w", inner)

	c, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Equal(t, CategoryValidation, c.Category())
	assert.True(t, HasCategory(wrapped, CategoryValidation))
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
		retry    RetryStrategy
	}{
		{"ConfigError", ConfigError("x"), CategoryConfig, SeverityFatal, RetryNever},
		{"ValidationError", ValidationError("x"), CategoryValidation, SeverityFatal, RetryNever},
		{"NotFoundError", NotFoundError("x"), CategoryNotFound, SeverityError, RetryNever},
		{"DocsError", DocsError("x"), CategoryDocs, SeverityFatal, RetryNever},
		{"FileSystemError", FileSystemError("x"), CategoryFileSystem, SeverityError, RetryBackoff},
		{"StoreError", StoreError("x"), CategoryStore, SeverityError, RetryBackoff},
		{"EventsError", EventsError("x"), CategoryEvents, SeverityWarning, RetryBackoff},
		{"RuntimeError", RuntimeError("x"), CategoryRuntime, SeverityFatal, RetryNever},
		{"InternalError", InternalError("x"), CategoryInternal, SeverityFatal, RetryNever},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.builder.Build()
			assert.Equal(t, tt.category, err.Category())
			assert.Equal(t, tt.severity, err.Severity())
			assert.Equal(t, tt.retry, err.RetryStrategy())
		})
	}
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	assert.Equal(t, 0, a.ExitCodeFor(nil))
	assert.Equal(t, 1, a.ExitCodeFor(stderrors.New("plain")))
	assert.Equal(t, 2, a.ExitCodeFor(ValidationError("x").Build()))
	assert.Equal(t, 7, a.ExitCodeFor(ConfigError("x").Build()))
	assert.Equal(t, 8, a.ExitCodeFor(StoreError("x").Build()))
	assert.Equal(t, 11, a.ExitCodeFor(DocsError("x").Build()))
	assert.Equal(t, 10, a.ExitCodeFor(InternalError("x").Build()))
}

func TestCLIErrorAdapter_Handle(t *testing.T) {
	var logs, out bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.out = &out

	code := a.Handle(ValidationError("2 sidebar violations").WithContext("locale", "/ru/").Build())
	assert.Equal(t, 2, code)
	assert.Contains(t, out.String(), "2 sidebar violations")
	assert.Contains(t, logs.String(), "locale=/ru/")

	out.Reset()
	a.Handle(InternalError("boom").Build())
	assert.Contains(t, out.String(), "use -v for details")
}

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", ValidationError("x").Build(), http.StatusBadRequest},
		{"not found", NotFoundError("x").Build(), http.StatusNotFound},
		{"store", StoreError("x").Build(), http.StatusBadGateway},
		{"docs", DocsError("x").Build(), http.StatusUnprocessableEntity},
		{"runtime", RuntimeError("x").Build(), http.StatusServiceUnavailable},
		{"plain", stderrors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.StatusCodeFor(tt.err))
		})
	}
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	a := NewHTTPErrorAdapter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/nope", nil)

	a.WriteErrorResponse(rec, req, NotFoundError("snapshot not found").WithContext("id", "nope").Build())

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "snapshot not found", body.Error)
	assert.Equal(t, "not_found", body.Code)
	assert.Equal(t, "nope", body.Details["id"])
	assert.False(t, body.Retryable)
}
