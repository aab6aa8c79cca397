package handler

import (
	"context"
	"net/http"

	"tableside/internal/cart"
	"tableside/internal/model"
	"tableside/internal/selection"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// ItemFetcher retrieves one catalogue item with its option groups.
type ItemFetcher interface {
	Item(ctx context.Context, id string) (*model.MenuItem, error)
}

// CartHandler exposes the cart over HTTP. The confirmation policy for
// destructive mutations lives here: a decrement that would empty a line
// answers 409 CONFIRM_REMOVAL and the client re-issues an explicit DELETE.
type CartHandler struct {
	store  *cart.Store
	items  ItemFetcher
	policy selection.Policy
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(store *cart.Store, items ItemFetcher, policy selection.Policy, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		store:  store,
		items:  items,
		policy: policy,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

type cartResponse struct {
	Lines []model.CartLine `json:"lines"`
	Total int64            `json:"total"`
}

type addLineRequest struct {
	ItemID   string   `json:"item_id"`
	Quantity int      `json:"quantity"`
	Note     string   `json:"note,omitempty"`
	Options  []string `json:"options,omitempty"`
}

type updateLineRequest struct {
	Action string  `json:"action,omitempty"` // "increment" or "decrement"
	Note   *string `json:"note,omitempty"`
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}

	lines := h.store.Lines(r.Context(), sid)
	writeJSON(w, http.StatusOK, cartResponse{Lines: lines, Total: h.store.Total(r.Context(), sid)})
}

// AddLine handles POST /api/cart/lines requests. The submitted option ids
// are validated against the item's groups before the line is created.
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}

	var req addLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Quantity < 1 {
		writeError(w, r, model.ErrInvalidQuantity, h.logger)
		return
	}

	item, err := h.items.Item(r.Context(), req.ItemID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if !item.Available {
		writeError(w, r, model.ErrItemUnavailable, h.logger)
		return
	}

	engine := selection.New(*item, h.policy)
	if err := engine.Apply(req.Options); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := engine.Validate(); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if _, err := h.store.AddLine(r.Context(), sid, *item, engine.Selected(), req.Quantity, req.Note); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, cartResponse{
		Lines: h.store.Lines(r.Context(), sid),
		Total: h.store.Total(r.Context(), sid),
	})
}

// UpdateLine handles PATCH /api/cart/lines/{id} requests: quantity steps and
// note changes.
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}

	lineID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, model.NewDomainError(model.ErrCodeInvalidJSON, "invalid cart line id"), h.logger)
		return
	}

	var req updateLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var line model.CartLine
	switch {
	case req.Note != nil:
		line, err = h.store.UpdateNote(r.Context(), sid, lineID, *req.Note)
	case req.Action == "increment":
		line, err = h.store.IncrementQuantity(r.Context(), sid, lineID)
	case req.Action == "decrement":
		line, err = h.store.DecrementQuantity(r.Context(), sid, lineID)
	default:
		err = model.NewDomainError(model.ErrCodeInvalidJSON, "action must be increment or decrement, or a note must be given")
	}
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Line  model.CartLine `json:"line"`
		Total int64          `json:"total"`
	}{Line: line, Total: h.store.Total(r.Context(), sid)})
}

// RemoveLine handles DELETE /api/cart/lines/{id} requests, the explicit
// confirmation of a removal.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}

	lineID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, model.NewDomainError(model.ErrCodeInvalidJSON, "invalid cart line id"), h.logger)
		return
	}

	h.store.RemoveLine(r.Context(), sid, lineID)
	writeJSON(w, http.StatusOK, cartResponse{
		Lines: h.store.Lines(r.Context(), sid),
		Total: h.store.Total(r.Context(), sid),
	})
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}

	h.store.Clear(r.Context(), sid)
	writeJSON(w, http.StatusOK, cartResponse{Lines: nil, Total: 0})
}
