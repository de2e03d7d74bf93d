package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/mandibooks/backend/internal/application/inventory"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockHandler serves stock balances and the movement log
type StockHandler struct {
	BaseHandler
	stock *inventoryapp.StockLedgerService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stock *inventoryapp.StockLedgerService) *StockHandler {
	return &StockHandler{stock: stock}
}

// StockMovementRequest is the body of POST /stock/movements, a manual
// adjustment such as spoilage or an opening stock count
type StockMovementRequest struct {
	ItemID    uuid.UUID       `json:"item_id" binding:"required"`
	Direction string          `json:"direction" binding:"required,oneof=IN OUT"`
	Weight    decimal.Decimal `json:"weight" binding:"gte=0"`
	Crates    int64           `json:"crates" binding:"gte=0"`
	Boxes     int64           `json:"boxes" binding:"gte=0"`
	Note      string          `json:"note" binding:"max=500"`
}

// ListBalances handles GET /stock
func (h *StockHandler) ListBalances(c *gin.Context) {
	balances, err := h.stock.ListBalances(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, "list_stock", err)
		return
	}
	h.Success(c, balances)
}

// GetBalance handles GET /stock/:item_id
func (h *StockHandler) GetBalance(c *gin.Context) {
	itemID, ok := h.pathID(c, "item_id")
	if !ok {
		return
	}
	balance, err := h.stock.CurrentBalance(c.Request.Context(), tenantID(c), itemID)
	if err != nil {
		h.HandleError(c, "current_stock_balance", err)
		return
	}
	h.Success(c, balance)
}

// ListMovements handles GET /stock/:item_id/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	itemID, ok := h.pathID(c, "item_id")
	if !ok {
		return
	}
	page, pageSize := paging(c)
	result, err := h.stock.ListMovements(c.Request.Context(), tenantID(c), itemID, page, pageSize)
	if err != nil {
		h.HandleError(c, "list_stock_movements", err)
		return
	}
	h.SuccessPage(c, result.Items, result.Total, result.Page, result.PageSize)
}

// RecordMovement handles POST /stock/movements
func (h *StockHandler) RecordMovement(c *gin.Context) {
	var req StockMovementRequest
	if !h.bind(c, &req) {
		return
	}
	movement, err := h.stock.RecordMovement(c.Request.Context(), inventoryapp.RecordMovementInput{
		TenantID:  tenantID(c),
		ItemID:    req.ItemID,
		Direction: inventory.Direction(req.Direction),
		Quantity:  inventory.NewQuantity(req.Weight, req.Crates, req.Boxes),
		Note:      req.Note,
	})
	if err != nil {
		h.HandleError(c, "record_stock_movement", err)
		return
	}
	h.Created(c, movement)
}

// Verify handles GET /stock/:item_id/verify. It compares the cached balance
// with a replay of the movement log.
func (h *StockHandler) Verify(c *gin.Context) {
	itemID, ok := h.pathID(c, "item_id")
	if !ok {
		return
	}
	result, err := h.stock.VerifyBalance(c.Request.Context(), tenantID(c), itemID)
	if err != nil {
		h.HandleError(c, "verify_stock_balance", err)
		return
	}
	h.Success(c, result)
}

// Rebuild handles POST /stock/:item_id/rebuild
func (h *StockHandler) Rebuild(c *gin.Context) {
	itemID, ok := h.pathID(c, "item_id")
	if !ok {
		return
	}
	balance, err := h.stock.RebuildBalance(c.Request.Context(), tenantID(c), itemID)
	if err != nil {
		h.HandleError(c, "rebuild_stock_balance", err)
		return
	}
	h.Success(c, balance)
}
