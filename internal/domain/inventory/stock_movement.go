package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// Direction of a stock movement
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// SourceType identifies what produced a stock movement
type SourceType string

const (
	SourceTypeInvoice SourceType = "INVOICE"
	SourceTypeManual  SourceType = "MANUAL"
)

// IsValid returns true if the source type is valid
func (s SourceType) IsValid() bool {
	return s == SourceTypeInvoice || s == SourceTypeManual
}

// Reference points a movement at the invoice or manual entry that caused it
type Reference struct {
	SourceType SourceType
	SourceID   *uuid.UUID
	Number     string
}

// InvoiceReference references an invoice by id and number
func InvoiceReference(invoiceID uuid.UUID, number string) Reference {
	return Reference{SourceType: SourceTypeInvoice, SourceID: &invoiceID, Number: number}
}

// ManualReference references a manual entry with a free-text note
func ManualReference(note string) Reference {
	return Reference{SourceType: SourceTypeManual, Number: note}
}

// StockMovement is an immutable entry of the per-item movement log. The log
// is the source of truth for stock; corrections are compensating movements.
type StockMovement struct {
	shared.TenantEntity
	ItemID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Direction  Direction  `gorm:"type:varchar(3);not null"`
	Quantity   `gorm:"embedded"`
	SourceType SourceType `gorm:"type:varchar(20);not null"`
	SourceID   *uuid.UUID `gorm:"type:uuid;index"`
	Reference  string     `gorm:"type:varchar(100)"`
	OccurredAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement validates and creates a movement. It does not check
// availability; that needs the current balance.
func NewStockMovement(tenantID, itemID uuid.UUID, direction Direction, qty Quantity, ref Reference) (*StockMovement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("item_id", "cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewValidationError("direction", "must be IN or OUT").WithExpected("IN|OUT", string(direction))
	}
	if err := qty.Validate(); err != nil {
		return nil, err
	}
	if !ref.SourceType.IsValid() {
		return nil, shared.NewValidationError("source_type", "must be INVOICE or MANUAL")
	}
	if ref.SourceType == SourceTypeInvoice && (ref.SourceID == nil || *ref.SourceID == uuid.Nil) {
		return nil, shared.NewValidationError("source_id", "is required for invoice movements")
	}

	return &StockMovement{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ItemID:       itemID,
		Direction:    direction,
		Quantity:     NewQuantity(qty.Weight, qty.Crates, qty.Boxes),
		SourceType:   ref.SourceType,
		SourceID:     ref.SourceID,
		Reference:    ref.Number,
		OccurredAt:   time.Now().UTC(),
	}, nil
}

// Signed returns the movement quantity with OUT movements negated
func (m *StockMovement) Signed() Quantity {
	if m.Direction == DirectionOut {
		return ZeroQuantity().Sub(m.Quantity)
	}
	return m.Quantity
}

// EntityName implements shared.Named
func (StockMovement) EntityName() string { return "stock_movement" }
