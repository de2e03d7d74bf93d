package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Invoice is a purchase invoice against a vendor or a sales invoice against
// a retailer. Kind is the variant tag; exactly one of VendorID and
// RetailerID is set, matching it.
//
// BalanceAmount is always Total - PaidAmount - ShortfallAmount and Status is
// derived from PaidAmount and Total, except after a forced override.
type Invoice struct {
	shared.TenantAggregateRoot
	Kind              InvoiceKind     `gorm:"type:varchar(20);not null;index"`
	InvoiceNumber     string          `gorm:"type:varchar(50);not null"`
	VendorID          *uuid.UUID      `gorm:"type:uuid;index"`
	RetailerID        *uuid.UUID      `gorm:"type:uuid;index"`
	InvoiceDate       time.Time       `gorm:"not null"`
	SubTotal          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CommissionPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CommissionAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Charges           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BalanceAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status            InvoiceStatus   `gorm:"type:varchar(20);not null;index"`
	ForcedPaid        bool            `gorm:"not null;default:false"`
	ShortfallAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ForcedPaidAt      *time.Time
	Notes             string        `gorm:"type:text"`
	Items             []InvoiceItem `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// PurchaseTerms are the deductions on a purchase invoice
type PurchaseTerms struct {
	// CommissionPercent overrides the vendor's default when set
	CommissionPercent *decimal.Decimal
	Charges           decimal.Decimal
}

// SalesTerms are the adjustments on a sales invoice
type SalesTerms struct {
	Charges  decimal.Decimal
	Discount decimal.Decimal
}

// Header carries the optional identity fields of a new invoice
type Header struct {
	Number string
	Date   time.Time
	Notes  string
}

// NewPurchaseInvoice creates a purchase invoice. The vendor's commission is
// deducted from the gross, then charges (labour, freight):
// total = subtotal - commission - charges.
func NewPurchaseInvoice(tenantID uuid.UUID, vendor *partner.Vendor, header Header, lines []LineInput, terms PurchaseTerms) (*Invoice, error) {
	if vendor == nil {
		return nil, shared.NewValidationError("vendor_id", "is required")
	}
	if err := shared.NewTenantGuard(tenantID).Check(vendor); err != nil {
		return nil, err
	}
	if !vendor.IsActive() {
		return nil, shared.NewValidationError("vendor_id", "vendor is inactive")
	}

	inv, err := newInvoice(tenantID, InvoiceKindPurchase, header, lines)
	if err != nil {
		return nil, err
	}
	vendorID := vendor.ID
	inv.VendorID = &vendorID

	pct := vendor.CommissionPercent
	if terms.CommissionPercent != nil {
		pct = *terms.CommissionPercent
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return nil, shared.NewValidationError("commission_percent", "must be between 0 and 100").
			WithExpected("0..100", pct.String())
	}
	if terms.Charges.IsNegative() {
		return nil, shared.NewValidationError("charges", "cannot be negative")
	}

	inv.CommissionPercent = pct
	inv.CommissionAmount = shared.RoundMoney(inv.SubTotal.Mul(pct).Div(hundred))
	inv.Charges = shared.RoundMoney(terms.Charges)
	inv.Total = inv.SubTotal.Sub(inv.CommissionAmount).Sub(inv.Charges)
	if err := inv.finalizeTotal(); err != nil {
		return nil, err
	}
	return inv, nil
}

// NewSalesInvoice creates a sales invoice: total = subtotal + charges - discount.
func NewSalesInvoice(tenantID uuid.UUID, retailer *partner.Retailer, header Header, lines []LineInput, terms SalesTerms) (*Invoice, error) {
	if retailer == nil {
		return nil, shared.NewValidationError("retailer_id", "is required")
	}
	if err := shared.NewTenantGuard(tenantID).Check(retailer); err != nil {
		return nil, err
	}
	if !retailer.IsActive() {
		return nil, shared.NewValidationError("retailer_id", "retailer is inactive")
	}

	inv, err := newInvoice(tenantID, InvoiceKindSales, header, lines)
	if err != nil {
		return nil, err
	}
	retailerID := retailer.ID
	inv.RetailerID = &retailerID

	if terms.Charges.IsNegative() {
		return nil, shared.NewValidationError("charges", "cannot be negative")
	}
	if terms.Discount.IsNegative() {
		return nil, shared.NewValidationError("discount", "cannot be negative")
	}
	inv.Charges = shared.RoundMoney(terms.Charges)
	inv.Discount = shared.RoundMoney(terms.Discount)
	inv.Total = inv.SubTotal.Add(inv.Charges).Sub(inv.Discount)
	if err := inv.finalizeTotal(); err != nil {
		return nil, err
	}
	return inv, nil
}

func newInvoice(tenantID uuid.UUID, kind InvoiceKind, header Header, lines []LineInput) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("items", "invoice must have at least one line item")
	}

	guard := shared.NewTenantGuard(tenantID)
	for i := range lines {
		if lines[i].Item == nil {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].item_id", i), "is required")
		}
		if err := guard.Check(lines[i].Item); err != nil {
			return nil, err
		}
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		InvoiceDate:         truncateDay(header.Date),
		CommissionPercent:   decimal.Zero,
		CommissionAmount:    decimal.Zero,
		Charges:             decimal.Zero,
		Discount:            decimal.Zero,
		PaidAmount:          decimal.Zero,
		ShortfallAmount:     decimal.Zero,
		Notes:               header.Notes,
	}

	number := strings.TrimSpace(header.Number)
	if number == "" {
		number = GenerateInvoiceNumber(kind, inv.InvoiceDate, inv.ID)
	}
	if len(number) > 50 {
		return nil, shared.NewValidationError("invoice_number", "cannot exceed 50 characters")
	}
	inv.InvoiceNumber = number

	subTotal := decimal.Zero
	inv.Items = make([]InvoiceItem, 0, len(lines))
	for i, line := range lines {
		item, err := newInvoiceItem(tenantID, inv.ID, i+1, line)
		if err != nil {
			return nil, err
		}
		subTotal = subTotal.Add(item.Amount)
		inv.Items = append(inv.Items, *item)
	}
	inv.SubTotal = subTotal
	return inv, nil
}

func (i *Invoice) finalizeTotal() error {
	i.Total = shared.RoundMoney(i.Total)
	if !i.Total.IsPositive() {
		return shared.NewValidationError("total", "invoice total must be greater than zero").
			WithExpected("> 0", i.Total.StringFixed(2))
	}
	i.recalculate()
	return nil
}

// recalculate derives balance and status from the amounts
func (i *Invoice) recalculate() {
	i.BalanceAmount = i.Total.Sub(i.PaidAmount).Sub(i.ShortfallAmount)
	if i.ForcedPaid {
		i.Status = InvoiceStatusPaid
		return
	}
	i.Status = StatusFor(i.PaidAmount, i.Total)
}

// GenerateInvoiceNumber builds a number such as SI-20260314-4F2A9C
func GenerateInvoiceNumber(kind InvoiceKind, date time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", kind.NumberPrefix(), date.Format("20060102"), suffix)
}

// Party returns the vendor or retailer the invoice is raised against
func (i *Invoice) Party() partner.PartyRef {
	switch i.Kind {
	case InvoiceKindPurchase:
		if i.VendorID != nil {
			return partner.VendorParty(*i.VendorID)
		}
	case InvoiceKindSales:
		if i.RetailerID != nil {
			return partner.RetailerParty(*i.RetailerID)
		}
	}
	return partner.PartyRef{}
}

// IsPurchase returns true for purchase invoices
func (i *Invoice) IsPurchase() bool { return i.Kind == InvoiceKindPurchase }

// IsSales returns true for sales invoices
func (i *Invoice) IsSales() bool { return i.Kind == InvoiceKindSales }

// StockDirection is the movement direction the invoice lines produce
func (i *Invoice) StockDirection() inventory.Direction {
	if i.IsPurchase() {
		return inventory.DirectionIn
	}
	return inventory.DirectionOut
}

// StockReference references the invoice on its stock movements
func (i *Invoice) StockReference() inventory.Reference {
	return inventory.InvoiceReference(i.ID, i.InvoiceNumber)
}

// ApplyPayment adds a payment to the invoice and re-derives balance and
// status. Payments beyond the balance and payments on a paid invoice are
// rejected.
func (i *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if err := shared.RequirePositive("amount", amount); err != nil {
		return err
	}
	if i.Status == InvoiceStatusPaid {
		return shared.NewValidationError("invoice_id", "invoice is already paid").
			WithExpected("UNPAID|PARTIALLY_PAID", string(i.Status))
	}
	if amount.GreaterThan(i.BalanceAmount) {
		return shared.NewValidationError("amount", "exceeds invoice balance").
			WithExpected("<= "+i.BalanceAmount.StringFixed(2), amount.StringFixed(2))
	}

	i.PaidAmount = i.PaidAmount.Add(amount)
	i.recalculate()
	i.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkForcedPaid closes a sales invoice whose balance will not be
// recovered. The remaining balance becomes the shortfall; PaidAmount is left
// as is. Returns the amount written off.
func (i *Invoice) MarkForcedPaid() (decimal.Decimal, error) {
	if !i.IsSales() {
		return decimal.Zero, shared.NewValidationError("invoice_id", "only sales invoices can be force-paid").
			WithExpected(string(InvoiceKindSales), string(i.Kind))
	}
	if i.ForcedPaid {
		return decimal.Zero, shared.NewValidationError("invoice_id", "invoice is already force-paid")
	}
	if !i.BalanceAmount.IsPositive() {
		return decimal.Zero, shared.NewValidationError("invoice_id", "invoice has no balance to write off").
			WithExpected("> 0", i.BalanceAmount.StringFixed(2))
	}

	remainder := i.BalanceAmount
	now := time.Now().UTC()
	i.ShortfallAmount = i.ShortfallAmount.Add(remainder)
	i.ForcedPaid = true
	i.ForcedPaidAt = &now
	i.recalculate()
	i.UpdatedAt = now
	return remainder, nil
}

// EntityName implements shared.Named
func (Invoice) EntityName() string { return "invoice" }

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
