// Package checkout turns a cart plus session context into a backend order
// submission, reconciling with any pending invoice for the table.
package checkout

import (
	"context"

	"tableside/internal/backend"
	"tableside/internal/model"
)

// Backend is the slice of the backend API the checkout flow depends on.
type Backend interface {
	// ValidateCoupon authoritatively validates a coupon for an order total.
	ValidateCoupon(ctx context.Context, code string, totalAmount int64) (*model.Coupon, int64, error)

	// PendingInvoiceByTable returns the unpaid invoice open for a table,
	// or (nil, nil) when there is none.
	PendingInvoiceByTable(ctx context.Context, tableID string) (*model.Invoice, error)

	// CreateInvoice opens a new invoice and returns its id.
	CreateInvoice(ctx context.Context, req backend.CreateInvoiceRequest) (string, error)

	// SubmitOrder submits an order round against an invoice.
	SubmitOrder(ctx context.Context, sub model.OrderSubmission) (*model.Order, error)

	// SetTableState updates a table's state.
	SetTableState(ctx context.Context, tableID, state string) error
}
