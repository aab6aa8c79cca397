package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tableside/internal/backend"
	"tableside/internal/middleware"
	"tableside/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already on the wire; an encode failure here cannot
	// be reported to the client.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps an error to a status code and a standardised body. Backend
// rejections pass through with their own status and verbatim message; domain
// errors carry their stable code; anything else is treated as a connectivity
// or internal failure.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, code, message := classify(err)

	logger.Error().
		Err(err).
		Int("status", status).
		Str("code", code).
		Str("request_id", middleware.RequestIDFrom(r.Context())).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.RequestIDFrom(r.Context()),
	})
}

func classify(err error) (int, string, string) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Code, apiErr.Message
	}

	var unsatisfied *model.GroupUnsatisfiedError
	if errors.As(err, &unsatisfied) {
		return http.StatusBadRequest, model.ErrCodeGroupUnsatisfied, unsatisfied.Error()
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		switch domainErr.Code {
		case model.ErrCodeLineNotFound:
			status = http.StatusNotFound
		case model.ErrCodeConfirmRemoval, model.ErrCodeItemUnavailable:
			status = http.StatusConflict
		case model.ErrCodeStaleCatalog:
			status = http.StatusGone
		}
		return status, domainErr.Code, domainErr.Message
	}

	return http.StatusBadGateway, model.ErrCodeInternalError, "ordering backend is unreachable, please try again"
}

// sessionID extracts the caller's session identifier. Carts and checkout
// state are scoped to it.
func sessionID(r *http.Request) string {
	return r.Header.Get("X-Session-ID")
}

var errMissingSession = model.NewDomainError(model.ErrCodeMissingSession, "X-Session-ID header is required")

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	}
	return nil
}
