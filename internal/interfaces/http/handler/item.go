package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/mandibooks/backend/internal/application/catalog"
	"github.com/mandibooks/backend/internal/domain/catalog"
)

// ItemHandler serves the produce catalog
type ItemHandler struct {
	BaseHandler
	items *catalogapp.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(items *catalogapp.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// CreateItemRequest is the body of POST /items
type CreateItemRequest struct {
	Name              string     `json:"name" binding:"required,min=1,max=200"`
	Quality           string     `json:"quality" binding:"max=50"`
	Unit              string     `json:"unit" binding:"required,oneof=KG CRATE BOX kg crate box"`
	PreferredVendorID *uuid.UUID `json:"preferred_vendor_id"`
}

// Create handles POST /items
func (h *ItemHandler) Create(c *gin.Context) {
	var req CreateItemRequest
	if !h.bind(c, &req) {
		return
	}
	item, err := h.items.CreateItem(c.Request.Context(), catalogapp.CreateItemInput{
		TenantID:          tenantID(c),
		Name:              req.Name,
		Quality:           req.Quality,
		Unit:              catalog.Unit(strings.ToUpper(req.Unit)),
		PreferredVendorID: req.PreferredVendorID,
	})
	if err != nil {
		h.HandleError(c, "create_item", err)
		return
	}
	h.Created(c, item)
}

// Get handles GET /items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.items.GetItem(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, "get_item", err)
		return
	}
	h.Success(c, item)
}

// List handles GET /items?search=
func (h *ItemHandler) List(c *gin.Context) {
	page, pageSize := paging(c)
	items, err := h.items.ListItems(c.Request.Context(), tenantID(c), c.Query("search"), page, pageSize)
	if err != nil {
		h.HandleError(c, "list_items", err)
		return
	}
	h.Success(c, items)
}
