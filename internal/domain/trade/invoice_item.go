package trade

import (
	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RateUnit says which quantity dimension a line's rate applies to
type RateUnit string

const (
	RatePerKg    RateUnit = "PER_KG"
	RatePerCrate RateUnit = "PER_CRATE"
	RatePerBox   RateUnit = "PER_BOX"
)

// IsValid returns true if the rate unit is valid
func (u RateUnit) IsValid() bool {
	switch u {
	case RatePerKg, RatePerCrate, RatePerBox:
		return true
	}
	return false
}

// InvoiceItem is one line of an invoice. Its quantity also becomes a stock
// movement of the item when the invoice is created.
type InvoiceItem struct {
	shared.TenantEntity
	InvoiceID          uuid.UUID `gorm:"type:uuid;not null;index"`
	LineNo             int       `gorm:"not null"`
	ItemID             uuid.UUID `gorm:"type:uuid;not null;index"`
	ItemDescription    string    `gorm:"type:varchar(300)"`
	inventory.Quantity `gorm:"embedded"`
	Rate               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RateUnit           RateUnit        `gorm:"type:varchar(20);not null"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// LineInput is a validated invoice line payload
type LineInput struct {
	Item     *catalog.Item
	Quantity inventory.Quantity
	Rate     decimal.Decimal
	RateUnit RateUnit
}

func newInvoiceItem(tenantID, invoiceID uuid.UUID, lineNo int, in LineInput) (*InvoiceItem, error) {
	if in.Item == nil {
		return nil, shared.NewValidationError("items.item_id", "is required")
	}
	if err := in.Quantity.Validate(); err != nil {
		return nil, err
	}
	if !in.RateUnit.IsValid() {
		return nil, shared.NewValidationError("items.rate_unit", "must be PER_KG, PER_CRATE or PER_BOX").
			WithExpected("PER_KG|PER_CRATE|PER_BOX", string(in.RateUnit))
	}
	if in.Rate.IsNegative() {
		return nil, shared.NewValidationError("items.rate", "cannot be negative")
	}

	qty := inventory.NewQuantity(in.Quantity.Weight, in.Quantity.Crates, in.Quantity.Boxes)
	var billed decimal.Decimal
	switch in.RateUnit {
	case RatePerKg:
		billed = qty.Weight
	case RatePerCrate:
		billed = decimal.NewFromInt(qty.Crates)
	case RatePerBox:
		billed = decimal.NewFromInt(qty.Boxes)
	}
	if !billed.IsPositive() {
		return nil, shared.NewValidationError("items.quantity", "billed dimension must be positive for rate unit "+string(in.RateUnit))
	}

	return &InvoiceItem{
		TenantEntity:    shared.NewTenantEntity(tenantID),
		InvoiceID:       invoiceID,
		LineNo:          lineNo,
		ItemID:          in.Item.ID,
		ItemDescription: in.Item.Descriptor(),
		Quantity:        qty,
		Rate:            in.Rate,
		RateUnit:        in.RateUnit,
		Amount:          shared.RoundMoney(in.Rate.Mul(billed)),
	}, nil
}
