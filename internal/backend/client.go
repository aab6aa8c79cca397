// Package backend is the REST client for the external ordering backend, the
// source of truth for the catalogue, pricing, coupons and payment state.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tableside/internal/model"

	"github.com/rs/zerolog"
)

// Backend error codes this client gives special meaning to.
const (
	// CodeItemNotFound marks an order rejection caused by cart lines that
	// reference items no longer in the catalogue.
	CodeItemNotFound = "ITEM_NOT_FOUND"
)

// APIError is a non-2xx backend response. Message is surfaced to the user
// verbatim; the backend's word is final.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Client calls the backend REST API. There is no client-side retry; a failed
// call surfaces immediately and the user re-triggers the action.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a backend client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "backend-client").Logger(),
	}
}

// Items retrieves the full item catalogue.
func (c *Client) Items(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := c.do(ctx, http.MethodGet, "/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Item retrieves a single item with its option groups.
func (c *Client) Item(ctx context.Context, id string) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := c.do(ctx, http.MethodGet, "/items/"+id, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Categories retrieves the menu categories.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Tables retrieves the tables.
func (c *Client) Tables(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	if err := c.do(ctx, http.MethodGet, "/tables", nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// Coupons retrieves the coupon catalogue.
func (c *Client) Coupons(ctx context.Context) ([]model.Coupon, error) {
	var coupons []model.Coupon
	if err := c.do(ctx, http.MethodGet, "/coupons", nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// couponValidation mirrors POST /coupons/validate.
type couponValidation struct {
	Code        string `json:"code"`
	TotalAmount int64  `json:"total_amount"`
}

type couponValidationResult struct {
	Coupon   model.Coupon `json:"coupon"`
	Discount int64        `json:"discount"`
}

// ValidateCoupon asks the backend to authoritatively validate a coupon
// against the current order total and compute the discount.
func (c *Client) ValidateCoupon(ctx context.Context, code string, totalAmount int64) (*model.Coupon, int64, error) {
	var result couponValidationResult
	err := c.do(ctx, http.MethodPost, "/coupons/validate", couponValidation{Code: code, TotalAmount: totalAmount}, &result)
	if err != nil {
		return nil, 0, err
	}
	return &result.Coupon, result.Discount, nil
}

// PendingInvoiceByTable retrieves the unpaid invoice open for a table, or
// (nil, nil) when the table has none.
func (c *Client) PendingInvoiceByTable(ctx context.Context, tableID string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := c.do(ctx, http.MethodGet, "/invoices/pending-by-table/"+tableID, nil, &invoice)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// CreateInvoiceRequest mirrors POST /invoices.
type CreateInvoiceRequest struct {
	TableID    string `json:"table_id"`
	CouponID   string `json:"coupon_id,omitempty"`
	Total      int64  `json:"total"`
	Discount   int64  `json:"discount"`
	FinalTotal int64  `json:"final_total"`
}

type createInvoiceResult struct {
	InvoiceID string `json:"invoice_id"`
}

// CreateInvoice opens a new invoice and returns its id.
func (c *Client) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (string, error) {
	var result createInvoiceResult
	if err := c.do(ctx, http.MethodPost, "/invoices", req, &result); err != nil {
		return "", err
	}
	return result.InvoiceID, nil
}

// PayInvoice marks an invoice paid.
func (c *Client) PayInvoice(ctx context.Context, invoiceID string) error {
	return c.do(ctx, http.MethodPatch, "/invoices/"+invoiceID+"/pay", nil, nil)
}

// SubmitOrder submits an order round against an invoice.
func (c *Client) SubmitOrder(ctx context.Context, sub model.OrderSubmission) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPost, "/orders", sub, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderState transitions an order to a new state.
func (c *Client) UpdateOrderState(ctx context.Context, orderID, state string) error {
	body := struct {
		State string `json:"state"`
	}{State: state}
	return c.do(ctx, http.MethodPatch, "/orders/"+orderID, body, nil)
}

// DeleteOrder cancels an order.
func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+orderID, nil, nil)
}

// SetTableState updates a table's state, e.g. flipping it to occupied after
// its first order.
func (c *Client) SetTableState(ctx context.Context, tableID, state string) error {
	body := struct {
		State string `json:"state"`
	}{State: state}
	return c.do(ctx, http.MethodPut, "/tables/"+tableID, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("backend unreachable")
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
