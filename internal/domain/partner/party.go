package partner

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PartyType tags which kind of counterparty a reference points to
type PartyType string

const (
	PartyTypeVendor   PartyType = "VENDOR"
	PartyTypeRetailer PartyType = "RETAILER"
)

// String returns the string representation of PartyType
func (t PartyType) String() string {
	return string(t)
}

// IsValid returns true if the party type is valid
func (t PartyType) IsValid() bool {
	switch t {
	case PartyTypeVendor, PartyTypeRetailer:
		return true
	}
	return false
}

// PartyRef identifies exactly one vendor or one retailer. The zero value is
// invalid; build it with NewPartyRef, VendorParty or RetailerParty.
type PartyRef struct {
	typ PartyType
	id  uuid.UUID
}

// NewPartyRef builds a reference from a loosely shaped payload. Exactly one
// of retailerID and vendorID must be set, matching partyType.
func NewPartyRef(partyType PartyType, retailerID, vendorID *uuid.UUID) (PartyRef, error) {
	hasRetailer := retailerID != nil && *retailerID != uuid.Nil
	hasVendor := vendorID != nil && *vendorID != uuid.Nil

	switch {
	case hasRetailer && hasVendor:
		return PartyRef{}, shared.NewValidationError("party", "exactly one of retailer_id and vendor_id must be set").
			WithExpected("one id", "both")
	case !hasRetailer && !hasVendor:
		return PartyRef{}, shared.NewValidationError("party", "exactly one of retailer_id and vendor_id must be set").
			WithExpected("one id", "none")
	}

	switch partyType {
	case PartyTypeRetailer:
		if !hasRetailer {
			return PartyRef{}, shared.NewValidationError("party_type", "does not match the id provided").
				WithExpected("retailer_id", "vendor_id")
		}
		return RetailerParty(*retailerID), nil
	case PartyTypeVendor:
		if !hasVendor {
			return PartyRef{}, shared.NewValidationError("party_type", "does not match the id provided").
				WithExpected("vendor_id", "retailer_id")
		}
		return VendorParty(*vendorID), nil
	default:
		return PartyRef{}, shared.NewValidationError("party_type", "must be VENDOR or RETAILER").
			WithExpected("VENDOR|RETAILER", string(partyType))
	}
}

// VendorParty references a vendor
func VendorParty(id uuid.UUID) PartyRef {
	return PartyRef{typ: PartyTypeVendor, id: id}
}

// RetailerParty references a retailer
func RetailerParty(id uuid.UUID) PartyRef {
	return PartyRef{typ: PartyTypeRetailer, id: id}
}

// Type returns the party kind
func (p PartyRef) Type() PartyType { return p.typ }

// ID returns the vendor or retailer ID
func (p PartyRef) ID() uuid.UUID { return p.id }

// IsZero reports whether the reference was never set
func (p PartyRef) IsZero() bool { return p.typ == "" }

// VendorID returns the vendor ID, or nil for a retailer reference
func (p PartyRef) VendorID() *uuid.UUID {
	if p.typ != PartyTypeVendor {
		return nil
	}
	id := p.id
	return &id
}

// RetailerID returns the retailer ID, or nil for a vendor reference
func (p PartyRef) RetailerID() *uuid.UUID {
	if p.typ != PartyTypeRetailer {
		return nil
	}
	id := p.id
	return &id
}

func (p PartyRef) String() string {
	return fmt.Sprintf("%s:%s", strings.ToLower(string(p.typ)), p.id)
}

// Party is the behavior shared by vendors and retailers that the ledger
// components mutate.
type Party interface {
	shared.TenantScoped
	shared.Named
	Ref() PartyRef
	GetBalances() *Balances
}

// Balances holds the running balances common to every party.
// Balance is the monetary amount outstanding with the party: what we owe a
// vendor, or what a retailer owes us.
type Balances struct {
	Balance             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CrateBalance        int64           `gorm:"not null;default:0"`
	CrateDepositBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// AddBalance increases the monetary balance (a new invoice on the party)
func (b *Balances) AddBalance(amount decimal.Decimal) (before, after decimal.Decimal) {
	before = b.Balance
	b.Balance = b.Balance.Add(amount)
	return before, b.Balance
}

// ReduceBalance decreases the monetary balance (payment or write-off)
func (b *Balances) ReduceBalance(amount decimal.Decimal) (before, after decimal.Decimal) {
	before = b.Balance
	b.Balance = b.Balance.Sub(amount)
	return before, b.Balance
}

// ApplyCrates moves the crate count by delta. With allowNegative false, a
// delta that would leave the party holding fewer than zero crates is
// rejected and the balance is left unchanged.
func (b *Balances) ApplyCrates(delta int64, allowNegative bool) (before, after int64, err error) {
	before = b.CrateBalance
	after = before + delta
	if after < 0 && !allowNegative {
		return before, before, shared.NewValidationError("quantity", "exceeds crates held by party").
			WithExpected(fmt.Sprintf("<= %d", before), fmt.Sprintf("%d", -delta))
	}
	b.CrateBalance = after
	return before, after, nil
}

// ApplyCrateDeposit moves the refundable deposit held for the party.
// Refunds larger than the deposit held are rejected.
func (b *Balances) ApplyCrateDeposit(delta decimal.Decimal) error {
	next := b.CrateDepositBalance.Add(delta)
	if next.IsNegative() {
		return shared.NewValidationError("deposit_amount", "refund exceeds deposit held").
			WithExpected("<= "+b.CrateDepositBalance.StringFixed(2), delta.Neg().StringFixed(2))
	}
	b.CrateDepositBalance = next
	return nil
}

func validatePartyName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.NewValidationError("name", "cannot be empty")
	}
	if len(name) > 200 {
		return "", shared.NewValidationError("name", "cannot exceed 200 characters")
	}
	return name, nil
}
