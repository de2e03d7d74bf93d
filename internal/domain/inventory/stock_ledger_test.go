package inventory

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kg(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustMovement(t *testing.T, tenantID, itemID uuid.UUID, dir Direction, q Quantity) StockMovement {
	t.Helper()
	m, err := NewStockMovement(tenantID, itemID, dir, q, ManualReference("test"))
	require.NoError(t, err)
	return *m
}

func TestQuantity_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       Quantity
		wantErr bool
	}{
		{"weight only", Weight(kg("12.5")), false},
		{"crates only", NewQuantity(decimal.Zero, 4, 0), false},
		{"zero vector", ZeroQuantity(), true},
		{"negative weight", Weight(kg("-1")), true},
		{"negative boxes", NewQuantity(kg("1"), 0, -2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, shared.ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewStockMovement(t *testing.T) {
	tenantID := uuid.New()
	itemID := uuid.New()

	t.Run("invoice movement requires source id", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, itemID, DirectionIn, Weight(kg("10")), Reference{SourceType: SourceTypeInvoice})
		assert.Error(t, err)
	})

	t.Run("rounds weight", func(t *testing.T) {
		m, err := NewStockMovement(tenantID, itemID, DirectionIn, Weight(kg("10.12345")), InvoiceReference(uuid.New(), "PI-1"))
		require.NoError(t, err)
		assert.Equal(t, "10.123", m.Weight.String())
		assert.Equal(t, "PI-1", m.Reference)
	})

	t.Run("invalid direction", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, itemID, Direction("SIDEWAYS"), Weight(kg("1")), ManualReference(""))
		assert.Error(t, err)
	})
}

func TestReplay_SumsAndClamps(t *testing.T) {
	tenantID := uuid.New()
	itemID := uuid.New()

	log := []StockMovement{
		mustMovement(t, tenantID, itemID, DirectionIn, NewQuantity(kg("100"), 10, 2)),
		mustMovement(t, tenantID, itemID, DirectionOut, NewQuantity(kg("30"), 3, 0)),
		mustMovement(t, tenantID, itemID, DirectionIn, NewQuantity(kg("5.5"), 0, 1)),
	}

	f := Replay(log)
	assert.True(t, f.Raw.Equal(NewQuantity(kg("75.5"), 7, 3)))
	assert.Equal(t, int64(3), f.Count)
	require.NotNil(t, f.LastAt)

	t.Run("negative raw sums are floored on read", func(t *testing.T) {
		legacy := append(log, mustMovement(t, tenantID, itemID, DirectionOut, NewQuantity(kg("80"), 0, 0)))
		f := Replay(legacy)
		assert.True(t, f.Raw.Weight.Equal(kg("-4.5")))
		assert.True(t, f.Available().Weight.IsZero())
		assert.Equal(t, int64(7), f.Available().Crates)
	})
}

func TestStockBalance_IncrementalEqualsReplay(t *testing.T) {
	tenantID := uuid.New()
	itemID := uuid.New()
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		balance := NewStockBalance(tenantID, itemID)
		var log []StockMovement

		for i := 0; i < 50; i++ {
			q := NewQuantity(decimal.NewFromInt(int64(rng.Intn(50))).Div(decimal.NewFromInt(4)), int64(rng.Intn(5)), int64(rng.Intn(3)))
			if q.IsZero() {
				continue
			}
			dir := DirectionIn
			if rng.Intn(2) == 0 {
				if CheckAvailability(itemID, balance.Available(), q) != nil {
					continue
				}
				dir = DirectionOut
			}
			m := mustMovement(t, tenantID, itemID, dir, q)
			balance.Apply(&m)
			log = append(log, m)
		}

		f := Replay(log)
		assert.True(t, balance.Matches(f), "run %d: cache %s vs replay %s", run, balance.Raw, f.Raw)
		assert.False(t, f.Raw.Weight.IsNegative())
		assert.GreaterOrEqual(t, f.Raw.Crates, int64(0))
		assert.GreaterOrEqual(t, f.Raw.Boxes, int64(0))

		rebuilt := NewStockBalance(tenantID, itemID)
		rebuilt.Reset(f)
		assert.True(t, rebuilt.Raw.Equal(balance.Raw))
	}
}

func TestCheckAvailability(t *testing.T) {
	itemID := uuid.New()
	available := NewQuantity(kg("30"), 5, 0)

	t.Run("fits", func(t *testing.T) {
		assert.NoError(t, CheckAvailability(itemID, available, NewQuantity(kg("30"), 5, 0)))
	})

	t.Run("50 kg against 30 kg", func(t *testing.T) {
		err := CheckAvailability(itemID, available, Weight(kg("50")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

		var stockErr *shared.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, DimensionWeight, stockErr.Dimension)
		assert.Equal(t, "50", stockErr.Requested)
		assert.Equal(t, "30", stockErr.Available)
		assert.Equal(t, itemID, stockErr.ItemID)
	})

	t.Run("each dimension is checked", func(t *testing.T) {
		err := CheckAvailability(itemID, available, NewQuantity(kg("1"), 0, 1))
		var stockErr *shared.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, DimensionBoxes, stockErr.Dimension)
	})
}
