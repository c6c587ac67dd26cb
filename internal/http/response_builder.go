package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"financaszen/internal/core"
	"financaszen/internal/finance"
	"financaszen/internal/google"
	"financaszen/internal/log"
	"financaszen/internal/storage"
)

// JSONResponse is a small fluent builder for JSON replies.
type JSONResponse struct {
	status  int
	headers map[string]string
	body    any
}

func NewJSONResponse() *JSONResponse {
	return &JSONResponse{status: http.StatusOK, headers: map[string]string{}}
}

func (b *JSONResponse) Status(code int) *JSONResponse {
	b.status = code
	return b
}

func (b *JSONResponse) Header(name, value string) *JSONResponse {
	b.headers[name] = value
	return b
}

func (b *JSONResponse) Body(v any) *JSONResponse {
	b.body = v
	return b
}

func (b *JSONResponse) Write(w http.ResponseWriter) {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	if b.body == nil && b.status == http.StatusNoContent {
		w.WriteHeader(b.status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.status)
	_ = json.NewEncoder(w).Encode(b.body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

type errorBody struct {
	Error string `json:"error"`
}

// errGoogleDisabled answers the Google routes when no OAuth client is configured.
var errGoogleDisabled = errors.New("google integration not configured")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case core.IsValidation(err),
		errors.Is(err, finance.ErrInvalidInput),
		errors.Is(err, google.ErrEventTitle),
		errors.Is(err, google.ErrEventTimes),
		errors.Is(err, google.ErrTimeZone):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, google.ErrNoToken):
		return http.StatusUnauthorized
	case errors.Is(err, google.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, errGoogleDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends {"error": ...}. Server errors are logged and their detail
// withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case status >= 500:
		s.logger.ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, status)
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	case status == http.StatusNotFound:
		msg = "not found"
	}
	writeJSON(w, status, errorBody{Error: msg})
}
