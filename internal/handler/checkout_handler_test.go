package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"tableside/internal/backend"
	"tableside/internal/cart"
	"tableside/internal/checkout"
	"tableside/internal/model"
	"tableside/internal/session"
	"tableside/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend fakes the backend API with per-call hooks.
type stubBackend struct {
	validateCoupon func(code string, total int64) (*model.Coupon, int64, error)
	submitOrder    func(sub model.OrderSubmission) (*model.Order, error)
}

func (s *stubBackend) ValidateCoupon(ctx context.Context, code string, totalAmount int64) (*model.Coupon, int64, error) {
	return s.validateCoupon(code, totalAmount)
}

func (s *stubBackend) PendingInvoiceByTable(ctx context.Context, tableID string) (*model.Invoice, error) {
	return nil, nil
}

func (s *stubBackend) CreateInvoice(ctx context.Context, req backend.CreateInvoiceRequest) (string, error) {
	return "INV-1", nil
}

func (s *stubBackend) SubmitOrder(ctx context.Context, sub model.OrderSubmission) (*model.Order, error) {
	return s.submitOrder(sub)
}

func (s *stubBackend) SetTableState(ctx context.Context, tableID, state string) error {
	return nil
}

type checkoutFixture struct {
	handler  *CheckoutHandler
	cart     *cart.Store
	sessions *session.Store
	backend  *stubBackend
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	kv := storage.NewMemory()
	cartStore := cart.NewStore(kv, 4*time.Hour, zerolog.Nop())
	sessions := session.NewStore(kv, zerolog.Nop())
	b := &stubBackend{}
	composer := checkout.NewComposer(cartStore, sessions, b, zerolog.Nop())
	verifier := checkout.NewCouponVerifier(b, zerolog.Nop())
	return &checkoutFixture{
		handler:  NewCheckoutHandler(composer, verifier, cartStore, sessions, zerolog.Nop()),
		cart:     cartStore,
		sessions: sessions,
		backend:  b,
	}
}

func (f *checkoutFixture) seedCart(t *testing.T) {
	t.Helper()
	_, err := f.cart.AddLine(context.Background(), testSession,
		model.MenuItem{ID: "I001", Name: "Pho Bo", BasePrice: 50_000}, nil, 2, "")
	require.NoError(t, err)
}

func TestCheckoutHandler_ValidateCoupon(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t)
	f.backend.validateCoupon = func(code string, total int64) (*model.Coupon, int64, error) {
		assert.Equal(t, "SAVE10", code)
		assert.Equal(t, int64(100_000), total)
		return &model.Coupon{ID: "C1", Code: code, Type: model.DiscountPercent, Value: 10}, 10_000, nil
	}

	rec := doRequest(f.handler.ValidateCoupon, http.MethodPost, "/api/coupons/validate",
		`{"code":" save10 "}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var applied model.AppliedCoupon
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	assert.Equal(t, int64(10_000), applied.Discount)

	sc := f.sessions.Get(context.Background(), testSession)
	require.NotNil(t, sc.AppliedCoupon)
	assert.Equal(t, "C1", sc.AppliedCoupon.Coupon.ID)
}

func TestCheckoutHandler_ValidateCoupon_EmptyCode(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := doRequest(f.handler.ValidateCoupon, http.MethodPost, "/api/coupons/validate",
		`{"code":"  "}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrCodeCouponCodeEmpty, decodeError(t, rec).Error)
}

func TestCheckoutHandler_ValidateCoupon_BackendRejection(t *testing.T) {
	f := newCheckoutFixture(t)
	f.backend.validateCoupon = func(code string, total int64) (*model.Coupon, int64, error) {
		return nil, 0, &backend.APIError{
			Status:  http.StatusBadRequest,
			Code:    "COUPON_EXPIRED",
			Message: "coupon expired on 2026-01-01",
		}
	}

	rec := doRequest(f.handler.ValidateCoupon, http.MethodPost, "/api/coupons/validate",
		`{"code":"OLD"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "COUPON_EXPIRED", resp.Error)
	assert.Equal(t, "coupon expired on 2026-01-01", resp.Message)
}

func TestCheckoutHandler_Submit(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t)
	require.NoError(t, f.sessions.SetTable(context.Background(), testSession, "T1"))
	f.backend.submitOrder = func(sub model.OrderSubmission) (*model.Order, error) {
		assert.Equal(t, "INV-1", sub.InvoiceID)
		return &model.Order{ID: "O1", InvoiceID: sub.InvoiceID}, nil
	}

	rec := doRequest(f.handler.Submit, http.MethodPost, "/api/checkout", "", nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var result checkout.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "INV-1", result.InvoiceID)
	assert.Equal(t, int64(100_000), result.FinalTotal)
	assert.Empty(t, f.cart.Lines(context.Background(), testSession))
}

func TestCheckoutHandler_Submit_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := doRequest(f.handler.Submit, http.MethodPost, "/api/checkout", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrCodeEmptyCart, decodeError(t, rec).Error)
}

func TestCheckoutHandler_Submit_MissingTable(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t)

	rec := doRequest(f.handler.Submit, http.MethodPost, "/api/checkout", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrCodeMissingTable, decodeError(t, rec).Error)
}

func TestCheckoutHandler_Submit_StaleCatalog(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t)
	require.NoError(t, f.sessions.SetTable(context.Background(), testSession, "T1"))
	f.backend.submitOrder = func(sub model.OrderSubmission) (*model.Order, error) {
		return nil, &backend.APIError{
			Status:  http.StatusNotFound,
			Code:    backend.CodeItemNotFound,
			Message: "item I001 not found",
		}
	}

	rec := doRequest(f.handler.Submit, http.MethodPost, "/api/checkout", "", nil)

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, model.ErrCodeStaleCatalog, decodeError(t, rec).Error)
	assert.Empty(t, f.cart.Lines(context.Background(), testSession))
}

func TestCheckoutHandler_Summary(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedCart(t)
	require.NoError(t, f.sessions.SetTable(context.Background(), testSession, "T1"))

	rec := doRequest(f.handler.Summary, http.MethodGet, "/api/checkout/summary", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var summary checkout.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, int64(100_000), summary.CartTotal)
	assert.Equal(t, int64(100_000), summary.GrandTotal)
}
