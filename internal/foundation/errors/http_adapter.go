package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter handles error presentation and status code determination for HTTP handlers.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter creates a new HTTP error adapter.
// If logger is nil, the default logger is used.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// HTTPErrorResponse is the canonical JSON error payload.
type HTTPErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

// StatusCodeFor determines the HTTP status code for a given error based on
// its classification. Unknown errors map to 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	c, ok := AsClassified(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch c.Category() {
	case CategoryValidation, CategoryConfig:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryStore, CategoryEvents:
		return http.StatusBadGateway
	case CategoryDocs, CategoryRoutes, CategorySearch:
		return http.StatusUnprocessableEntity
	case CategoryRuntime:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes a JSON error response and logs with the matching level.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	status := a.StatusCodeFor(err)
	b, jerr := json.Marshal(a.FormatErrorResponse(err))
	if jerr != nil {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)

	if c, ok := AsClassified(err); ok {
		a.logger.Log(r.Context(), slogLevelFromSeverity(c.Severity()), c.Error(), "status", status)
		return
	}
	a.logger.ErrorContext(r.Context(), err.Error(), "status", status)
}

// FormatErrorResponse converts known errors into the canonical error payload.
func (a *HTTPErrorAdapter) FormatErrorResponse(err error) HTTPErrorResponse {
	if err == nil {
		return HTTPErrorResponse{}
	}
	c, ok := AsClassified(err)
	if !ok {
		return HTTPErrorResponse{Error: err.Error()}
	}
	resp := HTTPErrorResponse{Error: c.Message(), Code: string(c.Category())}
	if len(c.Context()) > 0 {
		resp.Details = map[string]any(c.Context())
	}
	resp.Retryable = c.CanRetry()
	return resp
}
