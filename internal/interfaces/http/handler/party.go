package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	crateapp "github.com/mandibooks/backend/internal/application/crate"
	partnerapp "github.com/mandibooks/backend/internal/application/partner"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// PartyHandler serves vendors, retailers and their ledgers
type PartyHandler struct {
	BaseHandler
	parties *partnerapp.PartyService
	crates  *crateapp.CrateService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(parties *partnerapp.PartyService, crates *crateapp.CrateService) *PartyHandler {
	return &PartyHandler{parties: parties, crates: crates}
}

// CreatePartyRequest is the body of POST /vendors and POST /retailers
type CreatePartyRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"max=20"`
	Address string `json:"address" binding:"max=500"`
	// vendors only
	CommissionPercent decimal.Decimal `json:"commission_percent" binding:"gte=0,lte=100"`
	// retailers only, zero is unlimited
	CreditLimit decimal.Decimal `json:"credit_limit" binding:"gte=0"`
}

// AdjustCreditRequest is the body of POST /retailers/:id/credit
type AdjustCreditRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note" binding:"max=500"`
}

func (r CreatePartyRequest) toInput(tenant uuid.UUID) partnerapp.CreatePartyInput {
	return partnerapp.CreatePartyInput{
		TenantID:          tenant,
		Name:              r.Name,
		Phone:             r.Phone,
		Address:           r.Address,
		CommissionPercent: r.CommissionPercent,
		CreditLimit:       r.CreditLimit,
	}
}

// CreateVendor handles POST /vendors
func (h *PartyHandler) CreateVendor(c *gin.Context) {
	var req CreatePartyRequest
	if !h.bind(c, &req) {
		return
	}
	party, err := h.parties.CreateVendor(c.Request.Context(), req.toInput(tenantID(c)))
	if err != nil {
		h.HandleError(c, "create_vendor", err)
		return
	}
	h.Created(c, party)
}

// CreateRetailer handles POST /retailers
func (h *PartyHandler) CreateRetailer(c *gin.Context) {
	var req CreatePartyRequest
	if !h.bind(c, &req) {
		return
	}
	party, err := h.parties.CreateRetailer(c.Request.Context(), req.toInput(tenantID(c)))
	if err != nil {
		h.HandleError(c, "create_retailer", err)
		return
	}
	h.Created(c, party)
}

// ListVendors handles GET /vendors?search=
func (h *PartyHandler) ListVendors(c *gin.Context) {
	page, pageSize := paging(c)
	parties, err := h.parties.ListVendors(c.Request.Context(), tenantID(c), partnerapp.PartyListFilter{
		Search: c.Query("search"), Page: page, PageSize: pageSize,
	})
	if err != nil {
		h.HandleError(c, "list_vendors", err)
		return
	}
	h.Success(c, parties)
}

// ListRetailers handles GET /retailers?search=
func (h *PartyHandler) ListRetailers(c *gin.Context) {
	page, pageSize := paging(c)
	parties, err := h.parties.ListRetailers(c.Request.Context(), tenantID(c), partnerapp.PartyListFilter{
		Search: c.Query("search"), Page: page, PageSize: pageSize,
	})
	if err != nil {
		h.HandleError(c, "list_retailers", err)
		return
	}
	h.Success(c, parties)
}

// GetVendor handles GET /vendors/:id
func (h *PartyHandler) GetVendor(c *gin.Context) {
	h.getParty(c, partner.VendorParty)
}

// GetRetailer handles GET /retailers/:id
func (h *PartyHandler) GetRetailer(c *gin.Context) {
	h.getParty(c, partner.RetailerParty)
}

func (h *PartyHandler) getParty(c *gin.Context, ref func(uuid.UUID) partner.PartyRef) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	party, err := h.parties.GetParty(c.Request.Context(), tenantID(c), ref(id))
	if err != nil {
		h.HandleError(c, "get_party", err)
		return
	}
	h.Success(c, party)
}

// VendorLedger handles GET /vendors/:id/ledger
func (h *PartyHandler) VendorLedger(c *gin.Context) {
	h.partyLedger(c, partner.VendorParty)
}

// RetailerLedger handles GET /retailers/:id/ledger
func (h *PartyHandler) RetailerLedger(c *gin.Context) {
	h.partyLedger(c, partner.RetailerParty)
}

func (h *PartyHandler) partyLedger(c *gin.Context, ref func(uuid.UUID) partner.PartyRef) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	page, pageSize := paging(c)
	ledger, err := h.parties.PartyLedger(c.Request.Context(), tenantID(c), ref(id), page, pageSize)
	if err != nil {
		h.HandleError(c, "party_ledger", err)
		return
	}
	h.Success(c, ledger)
}

// VendorCrates handles GET /vendors/:id/crates
func (h *PartyHandler) VendorCrates(c *gin.Context) {
	h.crateLedger(c, partner.VendorParty)
}

// RetailerCrates handles GET /retailers/:id/crates
func (h *PartyHandler) RetailerCrates(c *gin.Context) {
	h.crateLedger(c, partner.RetailerParty)
}

func (h *PartyHandler) crateLedger(c *gin.Context, ref func(uuid.UUID) partner.PartyRef) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	page, pageSize := paging(c)
	ledger, err := h.crates.PartyCrateLedger(c.Request.Context(), tenantID(c), ref(id), page, pageSize)
	if err != nil {
		h.HandleError(c, "party_crate_ledger", err)
		return
	}
	h.Success(c, ledger)
}

// AdjustCredit handles POST /retailers/:id/credit. A positive amount extends
// udhaar, a negative one settles it.
func (h *PartyHandler) AdjustCredit(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req AdjustCreditRequest
	if !h.bind(c, &req) {
		return
	}
	party, err := h.parties.AdjustOutstandingCredit(c.Request.Context(), tenantID(c), id, req.Amount, req.Note)
	if err != nil {
		h.HandleError(c, "adjust_outstanding_credit", err)
		return
	}
	h.Success(c, party)
}
