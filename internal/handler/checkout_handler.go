package handler

import (
	"net/http"

	"tableside/internal/cart"
	"tableside/internal/checkout"
	"tableside/internal/session"

	"github.com/rs/zerolog"
)

// CheckoutHandler exposes coupon validation, the pre-submission summary and
// order submission.
type CheckoutHandler struct {
	composer *checkout.Composer
	verifier *checkout.CouponVerifier
	store    *cart.Store
	sessions *session.Store
	logger   zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(
	composer *checkout.Composer,
	verifier *checkout.CouponVerifier,
	store *cart.Store,
	sessions *session.Store,
	logger zerolog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		composer: composer,
		verifier: verifier,
		store:    store,
		sessions: sessions,
		logger:   logger.With().Str("handler", "checkout").Logger(),
	}
}

type validateCouponRequest struct {
	Code string `json:"code"`
}

// ValidateCoupon handles POST /api/coupons/validate requests. An accepted
// coupon is remembered in the session so checkout applies it.
func (h *CheckoutHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}

	var req validateCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	total := h.store.Total(r.Context(), sid)
	applied, err := h.verifier.Validate(r.Context(), req.Code, total)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.sessions.SetCoupon(r.Context(), sid, applied); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, applied)
}

// Summary handles GET /api/checkout/summary requests.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}

	summary, err := h.composer.Summary(r.Context(), sid)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Submit handles POST /api/checkout requests.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, r, errMissingSession, h.logger)
		return
	}

	result, err := h.composer.Checkout(r.Context(), sid)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
