// Package session holds the explicit per-session context that the ordering
// flow threads through checkout: the table, the locally tracked unpaid
// invoice and the applied coupon. It replaces ad-hoc global state with a
// value read and written through an injectable KV store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tableside/internal/model"
	"tableside/internal/storage"

	"github.com/rs/zerolog"
)

const keyPrefix = "session:"

// Context is the durable state of one browsing session.
type Context struct {
	TableID        string               `json:"table_id,omitempty"`
	PaymentMethod  string               `json:"payment_method,omitempty"`
	CurrentInvoice *model.Invoice       `json:"current_invoice,omitempty"`
	AppliedCoupon  *model.AppliedCoupon `json:"applied_coupon,omitempty"`
}

// Store persists session contexts through a storage.KV. Like the cart store,
// read failures degrade to an empty context instead of breaking the flow.
type Store struct {
	kv     storage.KV
	logger zerolog.Logger
}

// NewStore creates a session store.
func NewStore(kv storage.KV, logger zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger.With().Str("component", "session-store").Logger(),
	}
}

// Get returns the session context, or a zero context when none is persisted
// or the persisted state is unreadable.
func (s *Store) Get(ctx context.Context, sessionID string) Context {
	raw, err := s.kv.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("session storage read failed, starting empty")
		}
		return Context{}
	}

	var sc Context
	if err := json.Unmarshal(raw, &sc); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("persisted session is corrupt, discarding")
		return Context{}
	}
	return sc
}

// Put persists the session context.
func (s *Store) Put(ctx context.Context, sessionID string, sc Context) error {
	raw, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, keyPrefix+sessionID, raw); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// SetTable records the table the session is browsing from.
func (s *Store) SetTable(ctx context.Context, sessionID, tableID string) error {
	sc := s.Get(ctx, sessionID)
	sc.TableID = tableID
	return s.Put(ctx, sessionID, sc)
}

// SetPaymentMethod records the chosen payment method.
func (s *Store) SetPaymentMethod(ctx context.Context, sessionID, method string) error {
	sc := s.Get(ctx, sessionID)
	sc.PaymentMethod = method
	return s.Put(ctx, sessionID, sc)
}

// SetInvoice caches the invoice the session is currently ordering against.
func (s *Store) SetInvoice(ctx context.Context, sessionID string, invoice *model.Invoice) error {
	sc := s.Get(ctx, sessionID)
	sc.CurrentInvoice = invoice
	return s.Put(ctx, sessionID, sc)
}

// SetCoupon records the coupon the backend accepted for the current cart.
func (s *Store) SetCoupon(ctx context.Context, sessionID string, applied *model.AppliedCoupon) error {
	sc := s.Get(ctx, sessionID)
	sc.AppliedCoupon = applied
	return s.Put(ctx, sessionID, sc)
}

// ResetAfterOrder discards the cached invoice pointer and the applied coupon
// once an order round completes. Table and payment method survive.
func (s *Store) ResetAfterOrder(ctx context.Context, sessionID string) error {
	sc := s.Get(ctx, sessionID)
	sc.CurrentInvoice = nil
	sc.AppliedCoupon = nil
	return s.Put(ctx, sessionID, sc)
}
