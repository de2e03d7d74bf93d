package trade

import "github.com/shopspring/decimal"

// InvoiceKind is the invoice variant
type InvoiceKind string

const (
	// InvoiceKindPurchase is produce bought from (or sold on behalf of) a vendor
	InvoiceKindPurchase InvoiceKind = "PURCHASE"
	// InvoiceKindSales is produce sold to a retailer
	InvoiceKindSales InvoiceKind = "SALES"
)

// String returns the string representation of InvoiceKind
func (k InvoiceKind) String() string {
	return string(k)
}

// IsValid returns true if the kind is valid
func (k InvoiceKind) IsValid() bool {
	return k == InvoiceKindPurchase || k == InvoiceKindSales
}

// NumberPrefix is the prefix of generated invoice numbers
func (k InvoiceKind) NumberPrefix() string {
	if k == InvoiceKindPurchase {
		return "PI"
	}
	return "SI"
}

// InvoiceStatus is derived from paid amount and total
type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "UNPAID"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
)

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid, InvoiceStatusPaid:
		return true
	}
	return false
}

// StatusFor is the status function of an invoice:
// zero balance is Paid, positive balance with a positive paid amount is
// PartiallyPaid, anything else is Unpaid.
func StatusFor(paid, total decimal.Decimal) InvoiceStatus {
	balance := total.Sub(paid)
	switch {
	case !balance.IsPositive():
		return InvoiceStatusPaid
	case paid.IsPositive():
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusUnpaid
	}
}
