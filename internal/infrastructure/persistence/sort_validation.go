package persistence

import (
	"strings"

	"github.com/mandibooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderBy applies a whitelisted ORDER BY. The id tiebreak keeps pages stable.
func orderBy(filter shared.Filter, allowed map[string]bool, defaultField string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := ValidateSortField(filter.OrderBy, allowed, defaultField)
		return db.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id")
	}
}

// TenantSortFields contains allowed sort fields for tenants
var TenantSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"status":     true,
}

// PartySortFields contains allowed sort fields for vendors and retailers
var PartySortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"status":        true,
	"balance":       true,
	"crate_balance": true,
}

// PartyTransactionSortFields contains allowed sort fields for party ledgers
var PartyTransactionSortFields = map[string]bool{
	"created_at":       true,
	"transaction_date": true,
	"amount":           true,
}

// ItemSortFields contains allowed sort fields for items
var ItemSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"quality":    true,
	"unit":       true,
}

// StockMovementSortFields contains allowed sort fields for stock movements
var StockMovementSortFields = map[string]bool{
	"created_at":  true,
	"occurred_at": true,
	"direction":   true,
}

// CrateTransactionSortFields contains allowed sort fields for crate ledgers
var CrateTransactionSortFields = map[string]bool{
	"created_at":       true,
	"transaction_date": true,
	"quantity":         true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"invoice_date":   true,
	"total":          true,
	"balance_amount": true,
	"status":         true,
}

// BankAccountSortFields contains allowed sort fields for bank accounts
var BankAccountSortFields = map[string]bool{
	"created_at": true,
	"bank_name":  true,
	"is_default": true,
	"balance":    true,
}

// ExpenseSortFields contains allowed sort fields for expenses
var ExpenseSortFields = map[string]bool{
	"created_at":   true,
	"expense_date": true,
	"amount":       true,
	"category":     true,
}
