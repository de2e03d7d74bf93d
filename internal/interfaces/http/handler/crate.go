package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	crateapp "github.com/mandibooks/backend/internal/application/crate"
	"github.com/mandibooks/backend/internal/domain/crate"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// CrateHandler records crate exchanges outside invoices
type CrateHandler struct {
	BaseHandler
	crates *crateapp.CrateService
}

// NewCrateHandler creates a new CrateHandler. metrics may be nil.
func NewCrateHandler(crates *crateapp.CrateService, metrics *telemetry.LedgerMetrics) *CrateHandler {
	return &CrateHandler{BaseHandler: BaseHandler{metrics: metrics}, crates: crates}
}

// RecordCrateRequest is the body of POST /crates. The deposit mode fields
// apply only when a deposit is collected or refunded.
type RecordCrateRequest struct {
	PaymentModeRequest
	PartyType     string          `json:"party_type" binding:"required,oneof=VENDOR RETAILER"`
	RetailerID    *uuid.UUID      `json:"retailer_id"`
	VendorID      *uuid.UUID      `json:"vendor_id"`
	Direction     string          `json:"direction" binding:"required,oneof=GIVEN RECEIVED RETURNED"`
	Quantity      int64           `json:"quantity" binding:"required,gt=0"`
	DepositAmount decimal.Decimal `json:"deposit_amount" binding:"gte=0"`
	InvoiceID     *uuid.UUID      `json:"invoice_id"`
	Date          string          `json:"transaction_date"`
	Remark        string          `json:"remark" binding:"max=500"`
}

// Record handles POST /crates
func (h *CrateHandler) Record(c *gin.Context) {
	var req RecordCrateRequest
	if !h.bind(c, &req) {
		return
	}
	date, err := parseDate("transaction_date", req.Date)
	if err != nil {
		h.HandleError(c, "record_crate_transaction", err)
		return
	}

	var mode finance.PaymentMode
	if req.DepositAmount.IsPositive() {
		if mode, err = req.toMode(); err != nil {
			h.HandleError(c, "record_crate_transaction", err)
			return
		}
	}

	tenant := tenantID(c)
	tx, err := h.crates.RecordCrateTransaction(c.Request.Context(), crateapp.RecordInput{
		TenantID:      tenant,
		PartyType:     partner.PartyType(req.PartyType),
		RetailerID:    req.RetailerID,
		VendorID:      req.VendorID,
		Direction:     crate.Direction(req.Direction),
		Quantity:      req.Quantity,
		DepositAmount: req.DepositAmount,
		DepositMode:   mode,
		InvoiceID:     req.InvoiceID,
		Date:          date,
		Remark:        req.Remark,
	})
	if err != nil {
		h.HandleError(c, "record_crate_transaction", err)
		return
	}
	h.metrics.RecordCrateMovement(c.Request.Context(), tenant, string(tx.Direction), tx.Quantity)
	h.Created(c, tx)
}
