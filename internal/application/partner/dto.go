package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreatePartyInput represents input for creating a vendor or retailer
type CreatePartyInput struct {
	TenantID uuid.UUID
	Name     string
	Phone    string
	Address  string
	// CommissionPercent applies to vendors only
	CommissionPercent decimal.Decimal
	// CreditLimit applies to retailers only; zero means unlimited
	CreditLimit decimal.Decimal
}

// PartyListFilter narrows a party listing
type PartyListFilter struct {
	Search   string
	Page     int
	PageSize int
}

// ToSharedFilter converts to the repository filter, clamping paging
func (f PartyListFilter) ToSharedFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 && f.PageSize <= 100 {
		filter.PageSize = f.PageSize
	}
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.Search = f.Search
	return filter
}

// PartyDTO represents a vendor or a retailer with its balances
type PartyDTO struct {
	ID                  uuid.UUID           `json:"id"`
	Type                partner.PartyType   `json:"type"`
	Name                string              `json:"name"`
	Phone               string              `json:"phone,omitempty"`
	Address             string              `json:"address,omitempty"`
	Status              partner.PartyStatus `json:"status"`
	Balance             decimal.Decimal     `json:"balance"`
	CrateBalance        int64               `json:"crate_balance"`
	CrateDepositBalance decimal.Decimal     `json:"crate_deposit_balance"`
	CommissionPercent   *decimal.Decimal    `json:"commission_percent,omitempty"`
	CreditLimit         *decimal.Decimal    `json:"credit_limit,omitempty"`
	OutstandingCredit   *decimal.Decimal    `json:"outstanding_credit,omitempty"`
	ShortfallBalance    *decimal.Decimal    `json:"shortfall_balance,omitempty"`
	Version             int                 `json:"version"`
	CreatedAt           time.Time           `json:"created_at"`
}

// PartyTransactionDTO represents one line of a party ledger
type PartyTransactionDTO struct {
	ID              uuid.UUID                    `json:"id"`
	TransactionType partner.PartyTransactionType `json:"transaction_type"`
	Account         partner.PartyAccount         `json:"account"`
	Amount          decimal.Decimal              `json:"amount"`
	BalanceBefore   decimal.Decimal              `json:"balance_before"`
	BalanceAfter    decimal.Decimal              `json:"balance_after"`
	SourceType      string                       `json:"source_type,omitempty"`
	SourceID        *uuid.UUID                   `json:"source_id,omitempty"`
	Reference       string                       `json:"reference,omitempty"`
	Remark          string                       `json:"remark,omitempty"`
	TransactionDate time.Time                    `json:"transaction_date"`
}

// PartyLedgerDTO is a party with a page of its ledger
type PartyLedgerDTO struct {
	Party        PartyDTO                              `json:"party"`
	Transactions shared.Paginated[PartyTransactionDTO] `json:"transactions"`
}

func toVendorDTO(v *partner.Vendor) PartyDTO {
	commission := v.CommissionPercent
	return PartyDTO{
		ID:                  v.ID,
		Type:                partner.PartyTypeVendor,
		Name:                v.Name,
		Phone:               v.Phone,
		Address:             v.Address,
		Status:              v.Status,
		Balance:             v.Balance,
		CrateBalance:        v.CrateBalance,
		CrateDepositBalance: v.CrateDepositBalance,
		CommissionPercent:   &commission,
		Version:             v.Version,
		CreatedAt:           v.CreatedAt,
	}
}

func toRetailerDTO(r *partner.Retailer) PartyDTO {
	limit, credit, shortfall := r.CreditLimit, r.OutstandingCredit, r.ShortfallBalance
	return PartyDTO{
		ID:                  r.ID,
		Type:                partner.PartyTypeRetailer,
		Name:                r.Name,
		Phone:               r.Phone,
		Address:             r.Address,
		Status:              r.Status,
		Balance:             r.Balance,
		CrateBalance:        r.CrateBalance,
		CrateDepositBalance: r.CrateDepositBalance,
		CreditLimit:         &limit,
		OutstandingCredit:   &credit,
		ShortfallBalance:    &shortfall,
		Version:             r.Version,
		CreatedAt:           r.CreatedAt,
	}
}

func toPartyTransactionDTO(t *partner.PartyTransaction) PartyTransactionDTO {
	return PartyTransactionDTO{
		ID:              t.ID,
		TransactionType: t.TransactionType,
		Account:         t.Account,
		Amount:          t.Amount,
		BalanceBefore:   t.BalanceBefore,
		BalanceAfter:    t.BalanceAfter,
		SourceType:      t.SourceType,
		SourceID:        t.SourceID,
		Reference:       t.Reference,
		Remark:          t.Remark,
		TransactionDate: t.TransactionDate,
	}
}
