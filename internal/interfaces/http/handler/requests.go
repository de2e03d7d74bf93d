package handler

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// PaymentModeRequest is the flat wire form of a payment mode. Only the
// fields of the chosen mode may be set.
type PaymentModeRequest struct {
	Mode          string     `json:"mode" binding:"omitempty,oneof=CASH BANK CHEQUE UPI PAYMENT_LINK"`
	BankAccountID *uuid.UUID `json:"bank_account_id"`
	ChequeNumber  string     `json:"cheque_number" binding:"max=50"`
	UPIReference  string     `json:"upi_reference" binding:"max=100"`
	PaymentLinkID string     `json:"payment_link_id" binding:"max=100"`
}

// toMode builds the domain payment mode. The mode must be named.
func (r PaymentModeRequest) toMode() (finance.PaymentMode, error) {
	kind := finance.PaymentModeKind(strings.ToUpper(strings.TrimSpace(r.Mode)))
	if kind == "" {
		return nil, shared.NewValidationError("mode", "is required")
	}
	return finance.NewPaymentMode(kind, finance.ModeFields{
		BankAccountID: r.BankAccountID,
		ChequeNumber:  r.ChequeNumber,
		UPIReference:  r.UPIReference,
		PaymentLinkID: r.PaymentLinkID,
	})
}
