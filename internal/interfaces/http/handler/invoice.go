package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/mandibooks/backend/internal/application/finance"
	tradeapp "github.com/mandibooks/backend/internal/application/trade"
	"github.com/mandibooks/backend/internal/domain/trade"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/mandibooks/backend/internal/interfaces/http/dto"
	"github.com/mandibooks/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// InvoiceHandler serves invoices and the payments applied to them
type InvoiceHandler struct {
	BaseHandler
	invoices *tradeapp.InvoiceService
	payments *financeapp.PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler. metrics may be nil.
func NewInvoiceHandler(invoices *tradeapp.InvoiceService, payments *financeapp.PaymentService, metrics *telemetry.LedgerMetrics) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: BaseHandler{metrics: metrics},
		invoices:    invoices,
		payments:    payments,
	}
}

// InvoiceLineRequest is one line of CreateInvoiceRequest
type InvoiceLineRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Weight   decimal.Decimal `json:"weight" binding:"gte=0"`
	Crates   int64           `json:"crates" binding:"gte=0"`
	Boxes    int64           `json:"boxes" binding:"gte=0"`
	Rate     decimal.Decimal `json:"rate" binding:"gte=0"`
	RateUnit string          `json:"rate_unit" binding:"required,oneof=PER_KG PER_CRATE PER_BOX"`
}

// CreateInvoiceRequest is the body of POST /invoices
type CreateInvoiceRequest struct {
	Kind       string               `json:"kind" binding:"required,oneof=PURCHASE SALES"`
	VendorID   *uuid.UUID           `json:"vendor_id"`
	RetailerID *uuid.UUID           `json:"retailer_id"`
	Number     string               `json:"invoice_number" binding:"max=50"`
	Date       string               `json:"invoice_date"`
	Notes      string               `json:"notes" binding:"max=1000"`
	Items      []InvoiceLineRequest `json:"items" binding:"required,min=1,max=200,dive"`

	CommissionPercent *decimal.Decimal `json:"commission_percent"`
	Charges           decimal.Decimal  `json:"charges" binding:"gte=0"`
	Discount          decimal.Decimal  `json:"discount" binding:"gte=0"`
	CratesGiven       int64            `json:"crates_given" binding:"gte=0"`
	CratesReceived    int64            `json:"crates_received" binding:"gte=0"`
}

// ForcedPaidRequest is the body of POST /invoices/:id/forced-paid
type ForcedPaidRequest struct {
	Remark string `json:"remark" binding:"max=500"`
}

// ApplyPaymentRequest is the body of POST /invoices/:id/payments
type ApplyPaymentRequest struct {
	PaymentModeRequest
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Date   string          `json:"payment_date"`
	Remark string          `json:"remark" binding:"max=500"`
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if !h.bind(c, &req) {
		return
	}
	date, err := parseDate("invoice_date", req.Date)
	if err != nil {
		h.HandleError(c, "create_invoice", err)
		return
	}

	lines := make([]tradeapp.LineItemInput, len(req.Items))
	for i, l := range req.Items {
		lines[i] = tradeapp.LineItemInput{
			ItemID:   l.ItemID,
			Weight:   l.Weight,
			Crates:   l.Crates,
			Boxes:    l.Boxes,
			Rate:     l.Rate,
			RateUnit: trade.RateUnit(l.RateUnit),
		}
	}

	invoice, err := h.invoices.CreateInvoiceWithItems(c.Request.Context(), tradeapp.CreateInvoiceInput{
		TenantID:          tenantID(c),
		Kind:              trade.InvoiceKind(req.Kind),
		VendorID:          req.VendorID,
		RetailerID:        req.RetailerID,
		Number:            req.Number,
		Date:              date,
		Notes:             req.Notes,
		Items:             lines,
		CommissionPercent: req.CommissionPercent,
		Charges:           req.Charges,
		Discount:          req.Discount,
		CratesGiven:       req.CratesGiven,
		CratesReceived:    req.CratesReceived,
	})
	if err != nil {
		h.HandleError(c, "create_invoice", err)
		return
	}
	h.metrics.RecordInvoiceCreated(c.Request.Context(), tenantID(c), string(invoice.Kind), invoice.Total)
	h.Created(c, invoice)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoices.GetInvoice(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, "get_invoice", err)
		return
	}
	h.Success(c, invoice)
}

// List handles GET /invoices?kind=&status=&party_id=
func (h *InvoiceHandler) List(c *gin.Context) {
	page, pageSize := paging(c)
	filter := tradeapp.InvoiceListFilter{
		Kind:     trade.InvoiceKind(strings.ToUpper(c.Query("kind"))),
		Status:   trade.InvoiceStatus(strings.ToUpper(c.Query("status"))),
		Page:     page,
		PageSize: pageSize,
	}
	if filter.Kind != "" && !filter.Kind.IsValid() {
		h.BadRequest(c, dto.ErrCodeValidation, "kind must be PURCHASE or SALES")
		return
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		h.BadRequest(c, dto.ErrCodeValidation, "status must be UNPAID, PARTIALLY_PAID or PAID")
		return
	}
	if v := c.Query("party_id"); v != "" {
		partyID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, dto.ErrCodeInvalidID, "Invalid party_id")
			return
		}
		filter.PartyID = &partyID
	}

	result, err := h.invoices.ListInvoices(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, "list_invoices", err)
		return
	}
	h.SuccessPage(c, result.Items, result.Total, result.Page, result.PageSize)
}

// MarkForcedPaid handles POST /invoices/:id/forced-paid
func (h *InvoiceHandler) MarkForcedPaid(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ForcedPaidRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	invoice, err := h.invoices.MarkInvoiceForcedPaid(c.Request.Context(), tenantID(c), id, req.Remark)
	if err != nil {
		h.HandleError(c, "mark_forced_paid", err)
		return
	}
	h.Success(c, invoice)
}

// ApplyPayment handles POST /invoices/:id/payments. An Idempotency-Key
// header makes a retried request apply once; the replay answers 200 with
// the original payment instead of 201.
func (h *InvoiceHandler) ApplyPayment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ApplyPaymentRequest
	if !h.bind(c, &req) {
		return
	}
	mode, err := req.toMode()
	if err != nil {
		h.HandleError(c, "apply_payment", err)
		return
	}
	date, err := parseDate("payment_date", req.Date)
	if err != nil {
		h.HandleError(c, "apply_payment", err)
		return
	}

	tenant := tenantID(c)
	result, err := h.payments.ApplyPayment(c.Request.Context(), financeapp.ApplyPaymentInput{
		TenantID:       tenant,
		InvoiceID:      id,
		Amount:         req.Amount,
		Mode:           mode,
		Date:           date,
		Remark:         req.Remark,
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		h.HandleError(c, "apply_payment", err)
		return
	}

	h.metrics.RecordPayment(c.Request.Context(), tenant, string(mode.Kind()), result.Payment.Amount, result.Replayed)
	if result.Replayed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// ListPayments handles GET /invoices/:id/payments
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.payments.ListInvoicePayments(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, "list_payments", err)
		return
	}
	h.Success(c, payments)
}
