package handler

import (
	"net/http"

	"tableside/internal/session"

	"github.com/rs/zerolog"
)

// SessionHandler reads and updates the per-session ordering context.
type SessionHandler struct {
	sessions *session.Store
	logger   zerolog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.Store, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With().Str("handler", "session").Logger(),
	}
}

type updateSessionRequest struct {
	TableID       *string `json:"table_id,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
}

// Get handles GET /api/session requests.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.Get(r.Context(), sid))
}

// Update handles PUT /api/session requests.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}

	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if req.TableID != nil {
		if err := h.sessions.SetTable(r.Context(), sid, *req.TableID); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}
	if req.PaymentMethod != nil {
		if err := h.sessions.SetPaymentMethod(r.Context(), sid, *req.PaymentMethod); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}

	writeJSON(w, http.StatusOK, h.sessions.Get(r.Context(), sid))
}
