package cart

import (
	"context"
	"testing"
	"time"

	"tableside/internal/model"
	"tableside/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionID = "table-7"

var testItem = model.MenuItem{
	ID:        "I001",
	Name:      "Pho Bo",
	BasePrice: 50_000,
	Available: true,
}

var testOptions = []model.SelectedOption{
	{OptionID: "SIZE-M", GroupName: "Size", OptionName: "Size M", AdditionalPrice: 0},
	{OptionID: "TOP-1", GroupName: "Toppings", OptionName: "Extra beef", AdditionalPrice: 10_000},
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(storage.NewMemory(), 4*time.Hour, zerolog.Nop())
}

func TestStore_AddLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	line, err := s.AddLine(ctx, sessionID, testItem, testOptions, 2, "less spicy")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, line.ID)
	assert.Equal(t, "I001", line.ItemID)
	assert.Equal(t, int64(120_000), line.TotalPrice)
	assert.Equal(t, "less spicy", line.Note)

	lines := s.Lines(ctx, sessionID)
	require.Len(t, lines, 1)
	assert.Equal(t, line, lines[0])
	assert.Equal(t, int64(120_000), s.Total(ctx, sessionID))
}

func TestStore_AddLine_InvalidQuantity(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddLine(context.Background(), sessionID, testItem, nil, 0, "")
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}

func TestStore_AppendOrderIsDisplayOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.AddLine(ctx, sessionID, testItem, nil, 1, "")
	require.NoError(t, err)
	second, err := s.AddLine(ctx, sessionID, model.MenuItem{ID: "I002", Name: "Banh Mi", BasePrice: 30_000}, nil, 1, "")
	require.NoError(t, err)

	lines := s.Lines(ctx, sessionID)
	require.Len(t, lines, 2)
	assert.Equal(t, first.ID, lines[0].ID)
	assert.Equal(t, second.ID, lines[1].ID)
}

func TestStore_QuantityMutations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	line, err := s.AddLine(ctx, sessionID, testItem, testOptions, 1, "")
	require.NoError(t, err)

	updated, err := s.IncrementQuantity(ctx, sessionID, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)
	assert.Equal(t, int64(120_000), updated.TotalPrice)

	updated, err = s.DecrementQuantity(ctx, sessionID, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)
	assert.Equal(t, int64(60_000), updated.TotalPrice)

	// Decrementing past one is a removal decision, not a silent floor.
	kept, err := s.DecrementQuantity(ctx, sessionID, line.ID)
	assert.ErrorIs(t, err, model.ErrConfirmRemoval)
	assert.Equal(t, 1, kept.Quantity)
	require.Len(t, s.Lines(ctx, sessionID), 1)
}

func TestStore_MutateAbsentLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.IncrementQuantity(ctx, sessionID, uuid.New())
	assert.ErrorIs(t, err, model.ErrLineNotFound)

	_, err = s.UpdateNote(ctx, sessionID, uuid.New(), "hello")
	assert.ErrorIs(t, err, model.ErrLineNotFound)
}

func TestStore_UpdateNote(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	line, err := s.AddLine(ctx, sessionID, testItem, testOptions, 2, "")
	require.NoError(t, err)

	updated, err := s.UpdateNote(ctx, sessionID, line.ID, "no onions")
	require.NoError(t, err)
	assert.Equal(t, "no onions", updated.Note)
	assert.Equal(t, line.TotalPrice, updated.TotalPrice)
}

func TestStore_RemoveLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	line, err := s.AddLine(ctx, sessionID, testItem, nil, 1, "")
	require.NoError(t, err)

	s.RemoveLine(ctx, sessionID, line.ID)
	assert.Empty(t, s.Lines(ctx, sessionID))

	// Removing an absent line is a no-op, not an error.
	s.RemoveLine(ctx, sessionID, line.ID)
	assert.Empty(t, s.Lines(ctx, sessionID))
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.AddLine(ctx, sessionID, testItem, nil, 1, "")
	require.NoError(t, err)

	s.Clear(ctx, sessionID)
	assert.Empty(t, s.Lines(ctx, sessionID))
}

func TestStore_Expiration(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	_, err := s.AddLine(ctx, sessionID, testItem, testOptions, 2, "")
	require.NoError(t, err)

	// Just inside the window: lines come back unchanged.
	s.now = func() time.Time { return base.Add(4*time.Hour - time.Minute) }
	require.Len(t, s.Lines(ctx, sessionID), 1)

	// Reading refreshes nothing; only mutations refresh the timestamp.
	s.now = func() time.Time { return base.Add(4*time.Hour + time.Minute) }
	assert.Empty(t, s.Lines(ctx, sessionID))

	// The expired cart was discarded from storage as well.
	s.now = func() time.Time { return base }
	assert.Empty(t, s.Lines(ctx, sessionID))
}

func TestStore_MutationRefreshesExpirationWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	line, err := s.AddLine(ctx, sessionID, testItem, nil, 1, "")
	require.NoError(t, err)

	// Activity three hours in pushes the window forward.
	s.now = func() time.Time { return base.Add(3 * time.Hour) }
	_, err = s.IncrementQuantity(ctx, sessionID, line.ID)
	require.NoError(t, err)

	// Six hours after creation but only three after the last mutation.
	s.now = func() time.Time { return base.Add(6 * time.Hour) }
	require.Len(t, s.Lines(ctx, sessionID), 1)
}

func TestStore_CorruptStateDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := NewStore(kv, 4*time.Hour, zerolog.Nop())

	require.NoError(t, kv.Set(ctx, "cart:"+sessionID, []byte("{not json")))

	assert.Empty(t, s.Lines(ctx, sessionID))

	// The cart is usable again after the corrupt state is ignored.
	_, err := s.AddLine(ctx, sessionID, testItem, nil, 1, "")
	require.NoError(t, err)
	assert.Len(t, s.Lines(ctx, sessionID), 1)
}

func TestStore_RedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := storage.NewRedis(client, 4*time.Hour)
	s := NewStore(kv, 4*time.Hour, zerolog.Nop())

	line, err := s.AddLine(ctx, sessionID, testItem, testOptions, 2, "extra sauce")
	require.NoError(t, err)

	// A second store over the same Redis sees the persisted cart unchanged.
	reloaded := NewStore(kv, 4*time.Hour, zerolog.Nop())
	lines := reloaded.Lines(ctx, sessionID)
	require.Len(t, lines, 1)
	assert.Equal(t, line, lines[0])
	assert.Equal(t, int64(120_000), reloaded.Total(ctx, sessionID))
}
