// Package cart implements the durable, expiring, session-scoped cart store.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tableside/internal/model"
	"tableside/internal/pricing"
	"tableside/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const keyPrefix = "cart:"

// state is the persisted envelope. SavedAt is refreshed on every mutation,
// so the expiration window is time since last activity, not time since the
// first item was added.
type state struct {
	Lines   []model.CartLine `json:"lines"`
	SavedAt time.Time        `json:"saved_at"`
}

// Store reads and mutates carts through a storage.KV. Storage failures and
// corrupt persisted state degrade to an empty cart rather than propagating;
// losing a cart is preferable to breaking the page.
type Store struct {
	kv     storage.KV
	expiry time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewStore creates a cart store. Carts untouched for longer than expiry are
// discarded on the next load.
func NewStore(kv storage.KV, expiry time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		expiry: expiry,
		now:    time.Now,
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
}

// Lines returns the cart's lines in display (append) order. Expiration is
// checked lazily here, before anything else consumes the cart.
func (s *Store) Lines(ctx context.Context, sessionID string) []model.CartLine {
	return s.load(ctx, sessionID).Lines
}

// Total returns the sum of the denormalized line totals.
func (s *Store) Total(ctx context.Context, sessionID string) int64 {
	return pricing.CartTotal(s.Lines(ctx, sessionID))
}

// AddLine constructs a line with a fresh stable id, snapshots the selected
// option prices, computes the total and appends it to the cart.
func (s *Store) AddLine(ctx context.Context, sessionID string, item model.MenuItem, selected []model.SelectedOption, quantity int, note string) (model.CartLine, error) {
	if quantity < 1 {
		return model.CartLine{}, model.ErrInvalidQuantity
	}

	line := model.CartLine{
		ID:        uuid.New(),
		ItemID:    item.ID,
		ItemName:  item.Name,
		BasePrice: item.BasePrice,
		ImageURL:  item.ImageURL,
		Quantity:  quantity,
		Options:   selected,
		Note:      note,
	}
	line.TotalPrice = pricing.LineTotal(line.BasePrice, line.Options, line.Quantity)

	st := s.load(ctx, sessionID)
	st.Lines = append(st.Lines, line)
	s.save(ctx, sessionID, st)

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("line_id", line.ID.String()).
		Str("item_id", line.ItemID).
		Int64("total_price", line.TotalPrice).
		Msg("cart line added")

	return line, nil
}

// IncrementQuantity raises a line's quantity by one and recomputes its total.
func (s *Store) IncrementQuantity(ctx context.Context, sessionID string, lineID uuid.UUID) (model.CartLine, error) {
	return s.mutateLine(ctx, sessionID, lineID, func(line *model.CartLine) error {
		line.Quantity++
		return nil
	})
}

// DecrementQuantity lowers a line's quantity by one. It never removes the
// line: when the quantity would drop to zero it returns ErrConfirmRemoval
// unchanged, and the caller decides whether to confirm an explicit
// RemoveLine. The removal policy lives at the call site, not in the store.
func (s *Store) DecrementQuantity(ctx context.Context, sessionID string, lineID uuid.UUID) (model.CartLine, error) {
	return s.mutateLine(ctx, sessionID, lineID, func(line *model.CartLine) error {
		if line.Quantity <= 1 {
			return model.ErrConfirmRemoval
		}
		line.Quantity--
		return nil
	})
}

// UpdateNote replaces a line's free-text note. The total is unaffected.
func (s *Store) UpdateNote(ctx context.Context, sessionID string, lineID uuid.UUID, note string) (model.CartLine, error) {
	return s.mutateLine(ctx, sessionID, lineID, func(line *model.CartLine) error {
		line.Note = note
		return nil
	})
}

// RemoveLine removes a line by id. Removing an absent line is a no-op.
func (s *Store) RemoveLine(ctx context.Context, sessionID string, lineID uuid.UUID) {
	st := s.load(ctx, sessionID)

	kept := st.Lines[:0]
	removed := false
	for _, line := range st.Lines {
		if line.ID == lineID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return
	}

	st.Lines = kept
	s.save(ctx, sessionID, st)

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("line_id", lineID.String()).
		Msg("cart line removed")
}

// Clear empties the cart and removes the persisted state.
func (s *Store) Clear(ctx context.Context, sessionID string) {
	if err := s.kv.Delete(ctx, keyPrefix+sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to clear persisted cart")
	}
}

// mutateLine applies fn to the identified line, recomputes its total and
// re-persists the cart.
func (s *Store) mutateLine(ctx context.Context, sessionID string, lineID uuid.UUID, fn func(*model.CartLine) error) (model.CartLine, error) {
	st := s.load(ctx, sessionID)

	for i := range st.Lines {
		if st.Lines[i].ID != lineID {
			continue
		}
		if err := fn(&st.Lines[i]); err != nil {
			return st.Lines[i], err
		}
		st.Lines[i].TotalPrice = pricing.LineTotal(st.Lines[i].BasePrice, st.Lines[i].Options, st.Lines[i].Quantity)
		s.save(ctx, sessionID, st)
		return st.Lines[i], nil
	}

	return model.CartLine{}, model.ErrLineNotFound
}

func (s *Store) load(ctx context.Context, sessionID string) state {
	raw, err := s.kv.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("cart storage read failed, starting empty")
		}
		return state{}
	}

	var st state
	if err := json.Unmarshal(raw, &st); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("persisted cart is corrupt, discarding")
		return state{}
	}

	if s.now().Sub(st.SavedAt) > s.expiry {
		s.logger.Info().
			Str("session_id", sessionID).
			Time("saved_at", st.SavedAt).
			Msg("cart expired, discarding")
		if err := s.kv.Delete(ctx, keyPrefix+sessionID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to delete expired cart")
		}
		return state{}
	}

	return st
}

func (s *Store) save(ctx context.Context, sessionID string, st state) {
	st.SavedAt = s.now()

	raw, err := json.Marshal(st)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to encode cart")
		return
	}
	if err := s.kv.Set(ctx, keyPrefix+sessionID, raw); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("cart storage write failed")
	}
}
