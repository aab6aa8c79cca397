package checkout

import (
	"context"
	"strings"
	"sync/atomic"

	"tableside/internal/model"

	"github.com/rs/zerolog"
)

// CouponVerifier wraps backend coupon validation with a monotonic request
// sequence. Rapid re-validation can leave an older, slower response arriving
// after a newer one; responses that are no longer the latest issued request
// are discarded instead of overwriting the newer result.
type CouponVerifier struct {
	backend Backend
	seq     atomic.Uint64
	logger  zerolog.Logger
}

// NewCouponVerifier creates a coupon verifier.
func NewCouponVerifier(b Backend, logger zerolog.Logger) *CouponVerifier {
	return &CouponVerifier{
		backend: b,
		logger:  logger.With().Str("component", "coupon-verifier").Logger(),
	}
}

// Validate normalises the code (trimmed, uppercase) and asks the backend to
// validate it against the order total. Returns ErrCouponSuperseded when a
// newer validation was issued while this one was in flight.
func (v *CouponVerifier) Validate(ctx context.Context, code string, orderTotal int64) (*model.AppliedCoupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, model.ErrCouponCodeEmpty
	}

	id := v.seq.Add(1)

	coupon, discount, err := v.backend.ValidateCoupon(ctx, code, orderTotal)

	if id != v.seq.Load() {
		v.logger.Debug().
			Str("code", code).
			Uint64("request_id", id).
			Msg("discarding superseded coupon validation")
		return nil, model.ErrCouponSuperseded
	}
	if err != nil {
		return nil, err
	}

	v.logger.Debug().
		Str("code", code).
		Int64("order_total", orderTotal).
		Int64("discount", discount).
		Msg("coupon validated")

	return &model.AppliedCoupon{Coupon: *coupon, Discount: discount}, nil
}
