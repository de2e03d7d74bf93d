package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// LineItemInput is one invoice line as submitted
type LineItemInput struct {
	ItemID   uuid.UUID
	Weight   decimal.Decimal
	Crates   int64
	Boxes    int64
	Rate     decimal.Decimal
	RateUnit trade.RateUnit
}

// CreateInvoiceInput represents input for creating an invoice with its items
type CreateInvoiceInput struct {
	TenantID   uuid.UUID
	Kind       trade.InvoiceKind
	VendorID   *uuid.UUID
	RetailerID *uuid.UUID
	Number     string
	Date       time.Time
	Notes      string
	Items      []LineItemInput

	// Purchase terms
	CommissionPercent *decimal.Decimal
	// Purchase and sales
	Charges decimal.Decimal
	// Sales terms
	Discount decimal.Decimal

	// Crates handed over or taken back with the goods
	CratesGiven    int64
	CratesReceived int64
}

// InvoiceListFilter narrows an invoice listing
type InvoiceListFilter struct {
	Kind     trade.InvoiceKind
	Status   trade.InvoiceStatus
	PartyID  *uuid.UUID
	Page     int
	PageSize int
}

// ToDomainFilter converts the listing filter, clamping paging
func (f InvoiceListFilter) ToDomainFilter() trade.InvoiceFilter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 && f.PageSize <= 100 {
		filter.PageSize = f.PageSize
	}
	filter.OrderBy = "invoice_date"
	return trade.InvoiceFilter{
		Filter:  filter,
		Kind:    f.Kind,
		Status:  f.Status,
		PartyID: f.PartyID,
	}
}

// InvoiceItemDTO represents one invoice line
type InvoiceItemDTO struct {
	LineNo          int                `json:"line_no"`
	ItemID          uuid.UUID          `json:"item_id"`
	ItemDescription string             `json:"item_description"`
	Quantity        inventory.Quantity `json:"quantity"`
	Rate            decimal.Decimal    `json:"rate"`
	RateUnit        trade.RateUnit     `json:"rate_unit"`
	Amount          decimal.Decimal    `json:"amount"`
}

// InvoiceDTO represents an invoice
type InvoiceDTO struct {
	ID                uuid.UUID           `json:"id"`
	Kind              trade.InvoiceKind   `json:"kind"`
	InvoiceNumber     string              `json:"invoice_number"`
	VendorID          *uuid.UUID          `json:"vendor_id,omitempty"`
	RetailerID        *uuid.UUID          `json:"retailer_id,omitempty"`
	InvoiceDate       time.Time           `json:"invoice_date"`
	SubTotal          decimal.Decimal     `json:"sub_total"`
	CommissionPercent decimal.Decimal     `json:"commission_percent"`
	CommissionAmount  decimal.Decimal     `json:"commission_amount"`
	Charges           decimal.Decimal     `json:"charges"`
	Discount          decimal.Decimal     `json:"discount"`
	Total             decimal.Decimal     `json:"total"`
	PaidAmount        decimal.Decimal     `json:"paid_amount"`
	BalanceAmount     decimal.Decimal     `json:"balance_amount"`
	Status            trade.InvoiceStatus `json:"status"`
	ForcedPaid        bool                `json:"forced_paid"`
	ShortfallAmount   decimal.Decimal     `json:"shortfall_amount"`
	ForcedPaidAt      *time.Time          `json:"forced_paid_at,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	Items             []InvoiceItemDTO    `json:"items,omitempty"`
	Version           int                 `json:"version"`
	CreatedAt         time.Time           `json:"created_at"`
}

func toInvoiceDTO(inv *trade.Invoice) *InvoiceDTO {
	dto := &InvoiceDTO{
		ID:                inv.ID,
		Kind:              inv.Kind,
		InvoiceNumber:     inv.InvoiceNumber,
		VendorID:          inv.VendorID,
		RetailerID:        inv.RetailerID,
		InvoiceDate:       inv.InvoiceDate,
		SubTotal:          inv.SubTotal,
		CommissionPercent: inv.CommissionPercent,
		CommissionAmount:  inv.CommissionAmount,
		Charges:           inv.Charges,
		Discount:          inv.Discount,
		Total:             inv.Total,
		PaidAmount:        inv.PaidAmount,
		BalanceAmount:     inv.BalanceAmount,
		Status:            inv.Status,
		ForcedPaid:        inv.ForcedPaid,
		ShortfallAmount:   inv.ShortfallAmount,
		ForcedPaidAt:      inv.ForcedPaidAt,
		Notes:             inv.Notes,
		Version:           inv.Version,
		CreatedAt:         inv.CreatedAt,
	}
	if len(inv.Items) > 0 {
		dto.Items = make([]InvoiceItemDTO, len(inv.Items))
		for i, item := range inv.Items {
			dto.Items[i] = InvoiceItemDTO{
				LineNo:          item.LineNo,
				ItemID:          item.ItemID,
				ItemDescription: item.ItemDescription,
				Quantity:        item.Quantity,
				Rate:            item.Rate,
				RateUnit:        item.RateUnit,
				Amount:          item.Amount,
			}
		}
	}
	return dto
}
