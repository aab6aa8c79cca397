package model

// Invoice represents a bill for a table. An unpaid invoice from a previous
// ordering round accumulates further orders until it is paid.
type Invoice struct {
	ID         string  `json:"id"`
	TableID    string  `json:"table_id"`
	CouponID   string  `json:"coupon_id,omitempty"`
	Total      int64   `json:"total"`
	Discount   int64   `json:"discount"`
	FinalTotal int64   `json:"final_total"`
	Paid       bool    `json:"paid"`
	Orders     []Order `json:"orders,omitempty"`
}

// Order is one submitted ordering round against an invoice.
type Order struct {
	ID        string      `json:"id"`
	InvoiceID string      `json:"invoice_id"`
	TableID   string      `json:"table_id"`
	State     string      `json:"state"`
	Items     []OrderItem `json:"items"`
}

// OrderItem is a line in an order submission. Only option ids are sent; the
// backend recomputes pricing authoritatively at submission time.
type OrderItem struct {
	ItemID   string            `json:"item_id"`
	Quantity int               `json:"quantity"`
	Total    int64             `json:"total"`
	Note     string            `json:"note,omitempty"`
	Options  []OrderItemOption `json:"options,omitempty"`
}

// OrderItemOption references a selected option by id.
type OrderItemOption struct {
	OptionID string `json:"option_id"`
}

// OrderSubmission is the payload for creating an order against an invoice.
type OrderSubmission struct {
	InvoiceID string      `json:"invoice_id"`
	TableID   string      `json:"table_id"`
	CouponID  string      `json:"coupon_id,omitempty"`
	Items     []OrderItem `json:"items"`
}
