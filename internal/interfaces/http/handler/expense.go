package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/mandibooks/backend/internal/application/finance"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// ExpenseHandler records business expenses
type ExpenseHandler struct {
	BaseHandler
	expenses *financeapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenses *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// RecordExpenseRequest is the body of POST /expenses
type RecordExpenseRequest struct {
	PaymentModeRequest
	Category    string          `json:"category" binding:"required,oneof=LABOUR TRANSPORT RENT MANDI_FEE UTILITIES OTHER"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        string          `json:"expense_date"`
	Description string          `json:"description" binding:"max=500"`
}

// Record handles POST /expenses
func (h *ExpenseHandler) Record(c *gin.Context) {
	var req RecordExpenseRequest
	if !h.bind(c, &req) {
		return
	}
	mode, err := req.toMode()
	if err != nil {
		h.HandleError(c, "record_expense", err)
		return
	}
	date, err := parseDate("expense_date", req.Date)
	if err != nil {
		h.HandleError(c, "record_expense", err)
		return
	}
	expense, err := h.expenses.RecordExpense(c.Request.Context(), financeapp.RecordExpenseInput{
		TenantID:    tenantID(c),
		Category:    finance.ExpenseCategory(req.Category),
		Amount:      req.Amount,
		Mode:        mode,
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, "record_expense", err)
		return
	}
	h.Created(c, expense)
}

// List handles GET /expenses?from=&to=
func (h *ExpenseHandler) List(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		h.HandleError(c, "list_expenses", err)
		return
	}
	page, pageSize := paging(c)
	result, err := h.expenses.ListExpenses(c.Request.Context(), tenantID(c), financeapp.ExpenseListFilter{
		From: from, To: to, Page: page, PageSize: pageSize,
	})
	if err != nil {
		h.HandleError(c, "list_expenses", err)
		return
	}
	h.SuccessPage(c, result.Items, result.Total, result.Page, result.PageSize)
}
