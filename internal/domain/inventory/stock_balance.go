package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// StockBalance is the cached fold of an item's movement log. It holds the
// raw signed sums so that incremental maintenance and a full replay produce
// the same row; reads apply the zero floor.
type StockBalance struct {
	shared.TenantAggregateRoot
	ItemID         uuid.UUID `gorm:"type:uuid;not null"`
	Raw            Quantity  `gorm:"embedded;embeddedPrefix:raw_"`
	MovementCount  int64     `gorm:"not null;default:0"`
	LastMovementAt *time.Time
}

// TableName returns the table name for GORM
func (StockBalance) TableName() string {
	return "stock_balances"
}

// NewStockBalance creates an empty cache row for an item
func NewStockBalance(tenantID, itemID uuid.UUID) *StockBalance {
	return &StockBalance{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ItemID:              itemID,
		Raw:                 ZeroQuantity(),
	}
}

// Available returns the balance floored at zero per dimension
func (b *StockBalance) Available() Quantity {
	return b.Raw.ClampZero()
}

// Apply folds one movement into the cache
func (b *StockBalance) Apply(m *StockMovement) {
	b.Raw = b.Raw.Add(m.Signed())
	b.MovementCount++
	at := m.OccurredAt
	b.LastMovementAt = &at
	b.UpdatedAt = time.Now().UTC()
}

// Reset replaces the cache with a replayed fold
func (b *StockBalance) Reset(f Fold) {
	b.Raw = f.Raw
	b.MovementCount = f.Count
	b.LastMovementAt = f.LastAt
	b.UpdatedAt = time.Now().UTC()
}

// Matches reports whether the cache agrees with a replayed fold
func (b *StockBalance) Matches(f Fold) bool {
	return b.Raw.Equal(f.Raw) && b.MovementCount == f.Count
}

// EntityName implements shared.Named
func (StockBalance) EntityName() string { return "stock_balance" }

// Fold is the result of replaying a movement log
type Fold struct {
	Raw    Quantity
	Count  int64
	LastAt *time.Time
}

// Available returns the folded balance floored at zero per dimension
func (f Fold) Available() Quantity {
	return f.Raw.ClampZero()
}

// Replay folds movements into a balance: ΣIN − ΣOUT per dimension.
func Replay(movements []StockMovement) Fold {
	f := Fold{Raw: ZeroQuantity()}
	for i := range movements {
		m := &movements[i]
		f.Raw = f.Raw.Add(m.Signed())
		f.Count++
		if f.LastAt == nil || m.OccurredAt.After(*f.LastAt) {
			at := m.OccurredAt
			f.LastAt = &at
		}
	}
	return f
}

// CheckAvailability returns an InsufficientStockError when requested
// exceeds available in any dimension.
func CheckAvailability(itemID uuid.UUID, available, requested Quantity) error {
	dim, req, have := requested.Exceeding(available)
	if dim == "" {
		return nil
	}
	return &shared.InsufficientStockError{
		ItemID:    itemID,
		Dimension: dim,
		Requested: req,
		Available: have,
	}
}
