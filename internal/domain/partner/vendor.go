package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PartyStatus represents whether a party can be used on new transactions
type PartyStatus string

const (
	PartyStatusActive   PartyStatus = "active"
	PartyStatusInactive PartyStatus = "inactive"
)

// Vendor is a grower or supplier whose produce the trader sells on
// commission. Balance is what the trader owes the vendor.
type Vendor struct {
	shared.TenantAggregateRoot
	Name    string      `gorm:"type:varchar(200);not null"`
	Phone   string      `gorm:"type:varchar(50)"`
	Address string      `gorm:"type:text"`
	Status  PartyStatus `gorm:"type:varchar(20);not null;default:'active'"`
	// Commission percentage applied to purchase invoices unless overridden.
	CommissionPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Balances          `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates a new vendor with zero balances
func NewVendor(tenantID uuid.UUID, name string) (*Vendor, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	name, err := validatePartyName(name)
	if err != nil {
		return nil, err
	}
	return &Vendor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Status:              PartyStatusActive,
		CommissionPercent:   decimal.Zero,
		Balances: Balances{
			Balance:             decimal.Zero,
			CrateDepositBalance: decimal.Zero,
		},
	}, nil
}

// SetContact sets phone and address
func (v *Vendor) SetContact(phone, address string) {
	v.Phone = phone
	v.Address = address
	v.touch()
}

// SetCommissionPercent sets the default commission charged on purchases
func (v *Vendor) SetCommissionPercent(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("commission_percent", "must be between 0 and 100").
			WithExpected("0..100", percent.String())
	}
	v.CommissionPercent = percent
	v.touch()
	return nil
}

// Deactivate prevents new invoices against the vendor
func (v *Vendor) Deactivate() {
	v.Status = PartyStatusInactive
	v.touch()
}

// IsActive returns true if the vendor accepts new transactions
func (v *Vendor) IsActive() bool {
	return v.Status == PartyStatusActive
}

// Ref returns the party reference of the vendor
func (v *Vendor) Ref() PartyRef { return VendorParty(v.ID) }

// GetBalances returns the mutable balances
func (v *Vendor) GetBalances() *Balances { return &v.Balances }

// EntityName implements shared.Named
func (Vendor) EntityName() string { return "vendor" }

func (v *Vendor) touch() {
	v.UpdatedAt = time.Now().UTC()
}
