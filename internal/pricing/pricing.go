// Package pricing holds the pure monetary arithmetic for carts and coupons.
// All amounts are integer VND; there are no fractional minor units.
package pricing

import (
	"time"

	"tableside/internal/model"
)

// LineTotal computes the price of one cart line:
// (base price + sum of selected option surcharges) * quantity.
// Callers must not invoke it with quantity < 1.
func LineTotal(basePrice int64, options []model.SelectedOption, quantity int) int64 {
	unit := basePrice
	for _, opt := range options {
		unit += opt.AdditionalPrice
	}
	return unit * int64(quantity)
}

// CartTotal sums the denormalized totals already carried by each line. It
// deliberately does not recompute from option data; the cart store keeps
// line totals correct after every mutation.
func CartTotal(lines []model.CartLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.TotalPrice
	}
	return total
}

// CouponDiscount computes the discount a coupon yields on orderTotal.
// PERCENT discounts are clamped to the coupon's max-discount cap when set;
// FIXED_AMOUNT discounts are clamped to the order total so the final total
// can never go negative. Returns ErrCouponNotApplicable when the order is
// below the coupon's minimum amount.
func CouponDiscount(orderTotal int64, c model.Coupon) (int64, error) {
	if orderTotal < c.MinAmount {
		return 0, model.ErrCouponNotApplicable
	}

	var discount int64
	switch c.Type {
	case model.DiscountPercent:
		discount = orderTotal * c.Value / 100
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	case model.DiscountFixed:
		discount = c.Value
		if discount > orderTotal {
			discount = orderTotal
		}
	}

	return discount, nil
}

// CouponUsable is the optimistic pre-check of a coupon's own constraints:
// active flag, [start, end) validity window and usage limit. The backend
// remains the final word; a backend rejection overrides this check.
func CouponUsable(c model.Coupon, now time.Time) error {
	if !c.Active {
		return model.ErrCouponNotApplicable
	}
	if now.Before(c.StartDate) || !now.Before(c.EndDate) {
		return model.ErrCouponNotApplicable
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return model.ErrCouponNotApplicable
	}
	return nil
}

// GrandTotal is the amount shown to the user before submission: the balance
// of an unpaid prior invoice accumulates with the new cart rather than being
// replaced by it.
func GrandTotal(pendingFinalTotal, cartTotal, discount int64) int64 {
	return pendingFinalTotal + cartTotal - discount
}
