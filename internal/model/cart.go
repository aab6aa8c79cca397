package model

import "github.com/google/uuid"

// SelectedOption is a price snapshot of a chosen option, captured when the
// line is added to the cart. It deliberately carries no live reference so the
// line's price history survives catalogue changes during the cart's lifetime.
type SelectedOption struct {
	OptionID        string `json:"option_id"`
	GroupName       string `json:"group_name"`
	OptionName      string `json:"option_name"`
	AdditionalPrice int64  `json:"additional_price"`
}

// CartLine is one orderable row in a cart. ItemID is the single canonical
// item identifier, populated once at construction. TotalPrice is denormalized
// and must be recomputed immediately after any mutation.
type CartLine struct {
	ID         uuid.UUID        `json:"id"`
	ItemID     string           `json:"item_id"`
	ItemName   string           `json:"item_name"`
	BasePrice  int64            `json:"base_price"`
	ImageURL   string           `json:"image_url,omitempty"`
	Quantity   int              `json:"quantity"`
	Options    []SelectedOption `json:"options,omitempty"`
	Note       string           `json:"note,omitempty"`
	TotalPrice int64            `json:"total_price"`
}
