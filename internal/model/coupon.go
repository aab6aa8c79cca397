package model

import "time"

// DiscountType distinguishes percentage coupons from fixed-amount ones.
type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED_AMOUNT"
)

// Coupon is a discount rule. Codes are unique and stored uppercase. The
// validity window is [StartDate, EndDate). All constraints are authoritative
// on the backend; this side only performs an optimistic pre-check.
type Coupon struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	Type        DiscountType `json:"type"`
	Value       int64        `json:"value"`
	MaxDiscount *int64       `json:"max_discount,omitempty"`
	MinAmount   int64        `json:"min_amount"`
	UsageLimit  *int         `json:"usage_limit,omitempty"`
	UsedCount   int          `json:"used_count"`
	Active      bool         `json:"active"`
	StartDate   time.Time    `json:"start_date"`
	EndDate     time.Time    `json:"end_date"`
}

// AppliedCoupon is a coupon the backend has accepted for the current cart,
// together with the discount it computed.
type AppliedCoupon struct {
	Coupon   Coupon `json:"coupon"`
	Discount int64  `json:"discount"`
}
