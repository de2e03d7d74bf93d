package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/mandibooks/backend/internal/application/identity"
)

// TenantHandler manages tenants. Everything but Current needs the tenant
// administration permission.
type TenantHandler struct {
	BaseHandler
	tenants *identityapp.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenants *identityapp.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// CreateTenantRequest is the body of POST /admin/tenants
type CreateTenantRequest struct {
	Code string `json:"code" binding:"required,min=2,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// Current handles GET /tenant, the tenant of the caller's token
func (h *TenantHandler) Current(c *gin.Context) {
	tenant, err := h.tenants.GetByID(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, "get_tenant", err)
		return
	}
	h.Success(c, tenant)
}

// Create handles POST /admin/tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if !h.bind(c, &req) {
		return
	}
	tenant, err := h.tenants.Create(c.Request.Context(), identityapp.CreateTenantInput{Code: req.Code, Name: req.Name})
	if err != nil {
		h.HandleError(c, "create_tenant", err)
		return
	}
	h.Created(c, tenant)
}

// Get handles GET /admin/tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenants.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, "get_tenant", err)
		return
	}
	h.Success(c, tenant)
}

// Suspend handles POST /admin/tenants/:id/suspend
func (h *TenantHandler) Suspend(c *gin.Context) {
	h.setStatus(c, "suspend_tenant", h.tenants.Suspend)
}

// Activate handles POST /admin/tenants/:id/activate
func (h *TenantHandler) Activate(c *gin.Context) {
	h.setStatus(c, "activate_tenant", h.tenants.Activate)
}

func (h *TenantHandler) setStatus(c *gin.Context, operation string, apply func(context.Context, uuid.UUID) (*identityapp.TenantDTO, error)) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tenant, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, operation, err)
		return
	}
	h.Success(c, tenant)
}
