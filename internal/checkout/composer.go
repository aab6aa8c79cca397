package checkout

import (
	"context"
	"errors"
	"fmt"

	"tableside/internal/backend"
	"tableside/internal/cart"
	"tableside/internal/model"
	"tableside/internal/pricing"
	"tableside/internal/session"

	"github.com/rs/zerolog"
)

// Composer assembles order submissions from the cart and session state.
type Composer struct {
	cart     *cart.Store
	sessions *session.Store
	backend  Backend
	logger   zerolog.Logger
}

// NewComposer creates an order composer.
func NewComposer(cartStore *cart.Store, sessions *session.Store, b Backend, logger zerolog.Logger) *Composer {
	return &Composer{
		cart:     cartStore,
		sessions: sessions,
		backend:  b,
		logger:   logger.With().Str("component", "order-composer").Logger(),
	}
}

// Summary is what the user sees before submitting: the new cart, any unpaid
// balance from a prior round, the coupon discount and the accumulated total.
type Summary struct {
	Lines          []model.CartLine     `json:"lines"`
	CartTotal      int64                `json:"cart_total"`
	AppliedCoupon  *model.AppliedCoupon `json:"applied_coupon,omitempty"`
	PendingInvoice *model.Invoice       `json:"pending_invoice,omitempty"`
	GrandTotal     int64                `json:"grand_total"`
}

// Result reports a successful submission.
type Result struct {
	InvoiceID  string       `json:"invoice_id"`
	Order      *model.Order `json:"order"`
	CartTotal  int64        `json:"cart_total"`
	Discount   int64        `json:"discount"`
	FinalTotal int64        `json:"final_total"`
}

// Summary computes the pre-submission totals. An unpaid prior invoice's
// balance accumulates with the new cart rather than being replaced by it.
func (c *Composer) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	lines := c.cart.Lines(ctx, sessionID)
	cartTotal := pricing.CartTotal(lines)
	sc := c.sessions.Get(ctx, sessionID)

	pending, err := c.resolvePending(ctx, sc)
	if err != nil {
		return nil, err
	}

	applied := c.currentCoupon(sc, cartTotal)

	var prior, discount int64
	if pending != nil {
		prior = pending.FinalTotal
	}
	if applied != nil {
		discount = applied.Discount
	}

	return &Summary{
		Lines:          lines,
		CartTotal:      cartTotal,
		AppliedCoupon:  applied,
		PendingInvoice: pending,
		GrandTotal:     pricing.GrandTotal(prior, cartTotal, discount),
	}, nil
}

// currentCoupon re-derives the session coupon's discount against the current
// cart total. The discount cached at validation time can exceed the total
// once lines are removed; the coupon's rules are re-applied so the final
// total cannot go negative, and a coupon the cart no longer qualifies for is
// treated as not applied.
func (c *Composer) currentCoupon(sc session.Context, cartTotal int64) *model.AppliedCoupon {
	if sc.AppliedCoupon == nil {
		return nil
	}
	discount, err := pricing.CouponDiscount(cartTotal, sc.AppliedCoupon.Coupon)
	if err != nil {
		c.logger.Warn().
			Str("coupon_code", sc.AppliedCoupon.Coupon.Code).
			Int64("cart_total", cartTotal).
			Msg("applied coupon no longer qualifies, dropping discount")
		return nil
	}
	return &model.AppliedCoupon{Coupon: sc.AppliedCoupon.Coupon, Discount: discount}
}

// Checkout submits the cart as an order. The target invoice is resolved in
// order: the session's cached unpaid invoice, then the backend's pending
// invoice for the table, then a newly created invoice. On success the cart
// and the cached invoice pointer are cleared; on a stale-catalog rejection
// the cart is cleared and ErrStaleCatalog returned so the caller restarts the
// flow; on any other backend error the cart stays intact for a retry.
func (c *Composer) Checkout(ctx context.Context, sessionID string) (*Result, error) {
	lines := c.cart.Lines(ctx, sessionID)
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	sc := c.sessions.Get(ctx, sessionID)
	if sc.TableID == "" {
		return nil, model.ErrMissingTable
	}

	items := make([]model.OrderItem, len(lines))
	for i, line := range lines {
		if line.ItemID == "" {
			return nil, model.ErrStaleCatalog
		}
		options := make([]model.OrderItemOption, len(line.Options))
		for j, opt := range line.Options {
			options[j] = model.OrderItemOption{OptionID: opt.OptionID}
		}
		items[i] = model.OrderItem{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Total:    line.TotalPrice,
			Note:     line.Note,
			Options:  options,
		}
	}

	cartTotal := pricing.CartTotal(lines)
	var discount int64
	var couponID string
	if applied := c.currentCoupon(sc, cartTotal); applied != nil {
		discount = applied.Discount
		couponID = applied.Coupon.ID
	}

	invoiceID, firstOrder, err := c.resolveInvoice(ctx, sessionID, sc, cartTotal, discount, couponID)
	if err != nil {
		return nil, err
	}

	sub := model.OrderSubmission{
		InvoiceID: invoiceID,
		TableID:   sc.TableID,
		CouponID:  couponID,
		Items:     items,
	}

	order, err := c.backend.SubmitOrder(ctx, sub)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Code == backend.CodeItemNotFound {
			// The cart references catalogue entries that no longer exist;
			// keeping it would only fail again.
			c.cart.Clear(ctx, sessionID)
			c.logger.Warn().
				Str("session_id", sessionID).
				Str("invoice_id", invoiceID).
				Msg("order rejected for stale items, cart cleared")
			return nil, model.ErrStaleCatalog
		}
		return nil, err
	}

	c.cart.Clear(ctx, sessionID)
	if err := c.sessions.ResetAfterOrder(ctx, sessionID); err != nil {
		c.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to reset session after order")
	}

	if firstOrder {
		if err := c.backend.SetTableState(ctx, sc.TableID, model.TableStateOccupied); err != nil {
			// The order went through; the table flip is best-effort.
			c.logger.Warn().Err(err).Str("table_id", sc.TableID).Msg("failed to mark table occupied")
		}
	}

	c.logger.Info().
		Str("session_id", sessionID).
		Str("invoice_id", invoiceID).
		Str("order_id", order.ID).
		Int("item_count", len(items)).
		Int64("cart_total", cartTotal).
		Int64("discount", discount).
		Msg("order submitted")

	return &Result{
		InvoiceID:  invoiceID,
		Order:      order,
		CartTotal:  cartTotal,
		Discount:   discount,
		FinalTotal: cartTotal - discount,
	}, nil
}

// resolveInvoice picks the invoice to order against. firstOrder is true when
// a fresh invoice was created, meaning this is the table's first round.
func (c *Composer) resolveInvoice(ctx context.Context, sessionID string, sc session.Context, cartTotal, discount int64, couponID string) (string, bool, error) {
	if sc.CurrentInvoice != nil && !sc.CurrentInvoice.Paid {
		return sc.CurrentInvoice.ID, false, nil
	}

	pending, err := c.backend.PendingInvoiceByTable(ctx, sc.TableID)
	if err != nil {
		return "", false, fmt.Errorf("resolve pending invoice: %w", err)
	}
	if pending != nil {
		if err := c.sessions.SetInvoice(ctx, sessionID, pending); err != nil {
			c.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to cache pending invoice")
		}
		return pending.ID, false, nil
	}

	invoiceID, err := c.backend.CreateInvoice(ctx, backend.CreateInvoiceRequest{
		TableID:    sc.TableID,
		CouponID:   couponID,
		Total:      cartTotal,
		Discount:   discount,
		FinalTotal: cartTotal - discount,
	})
	if err != nil {
		return "", false, fmt.Errorf("create invoice: %w", err)
	}

	// Cache the new invoice so a retry after a failed submission reuses it
	// instead of opening another one.
	created := &model.Invoice{
		ID:         invoiceID,
		TableID:    sc.TableID,
		CouponID:   couponID,
		Total:      cartTotal,
		Discount:   discount,
		FinalTotal: cartTotal - discount,
	}
	if err := c.sessions.SetInvoice(ctx, sessionID, created); err != nil {
		c.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to cache created invoice")
	}

	return invoiceID, true, nil
}

func (c *Composer) resolvePending(ctx context.Context, sc session.Context) (*model.Invoice, error) {
	if sc.CurrentInvoice != nil && !sc.CurrentInvoice.Paid {
		return sc.CurrentInvoice, nil
	}
	if sc.TableID == "" {
		return nil, nil
	}
	pending, err := c.backend.PendingInvoiceByTable(ctx, sc.TableID)
	if err != nil {
		return nil, fmt.Errorf("resolve pending invoice: %w", err)
	}
	return pending, nil
}
