package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/mandibooks/backend/internal/application/finance"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// BookHandler serves the cashbook, the bankbooks and the accounts behind them
type BookHandler struct {
	BaseHandler
	ledger   *financeapp.LedgerService
	accounts *financeapp.AccountService
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(ledger *financeapp.LedgerService, accounts *financeapp.AccountService) *BookHandler {
	return &BookHandler{ledger: ledger, accounts: accounts}
}

// ManualEntryRequest is the body of POST /books/entries. Positive amounts
// are money in.
type ManualEntryRequest struct {
	Book          string          `json:"book" binding:"required,oneof=CASHBOOK BANKBOOK"`
	BankAccountID *uuid.UUID      `json:"bank_account_id"`
	Date          string          `json:"entry_date"`
	Description   string          `json:"description" binding:"required,max=500"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

// CreateBankAccountRequest is the body of POST /bank-accounts
type CreateBankAccountRequest struct {
	BankName       string          `json:"bank_name" binding:"required,max=100"`
	AccountNumber  string          `json:"account_number" binding:"required,max=34"`
	IFSC           string          `json:"ifsc" binding:"omitempty,len=11"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	IsDefault      bool            `json:"is_default"`
}

// Cashbook handles GET /books/cash?from=&to=
func (h *BookHandler) Cashbook(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		h.HandleError(c, "cashbook", err)
		return
	}
	book, err := h.ledger.Cashbook(c.Request.Context(), financeapp.BookQuery{
		TenantID: tenantID(c), From: from, To: to,
	})
	if err != nil {
		h.HandleError(c, "cashbook", err)
		return
	}
	h.Success(c, book)
}

// Bankbook handles GET /books/bank/:account_id?from=&to=
func (h *BookHandler) Bankbook(c *gin.Context) {
	accountID, ok := h.pathID(c, "account_id")
	if !ok {
		return
	}
	from, to, err := parseRange(c)
	if err != nil {
		h.HandleError(c, "bankbook", err)
		return
	}
	book, err := h.ledger.Bankbook(c.Request.Context(), financeapp.BookQuery{
		TenantID: tenantID(c), BankAccountID: accountID, From: from, To: to,
	})
	if err != nil {
		h.HandleError(c, "bankbook", err)
		return
	}
	h.Success(c, book)
}

// AppendEntry handles POST /books/entries
func (h *BookHandler) AppendEntry(c *gin.Context) {
	var req ManualEntryRequest
	if !h.bind(c, &req) {
		return
	}
	date, err := parseDate("entry_date", req.Date)
	if err != nil {
		h.HandleError(c, "append_entry", err)
		return
	}
	entry, err := h.ledger.AppendEntry(c.Request.Context(), financeapp.ManualEntryInput{
		TenantID:      tenantID(c),
		Book:          finance.LedgerBook(req.Book),
		BankAccountID: req.BankAccountID,
		Date:          date,
		Description:   req.Description,
		Amount:        req.Amount,
	})
	if err != nil {
		h.HandleError(c, "append_entry", err)
		return
	}
	h.Created(c, entry)
}

// CashAccount handles GET /cash-account
func (h *BookHandler) CashAccount(c *gin.Context) {
	account, err := h.accounts.GetCashAccount(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, "get_cash_account", err)
		return
	}
	h.Success(c, account)
}

// CreateBankAccount handles POST /bank-accounts
func (h *BookHandler) CreateBankAccount(c *gin.Context) {
	var req CreateBankAccountRequest
	if !h.bind(c, &req) {
		return
	}
	if req.OpeningBalance.IsNegative() {
		h.BadRequest(c, dto.ErrCodeValidation, "opening_balance cannot be negative")
		return
	}
	account, err := h.accounts.CreateBankAccount(c.Request.Context(), financeapp.CreateBankAccountInput{
		TenantID:       tenantID(c),
		BankName:       req.BankName,
		AccountNumber:  req.AccountNumber,
		IFSC:           req.IFSC,
		OpeningBalance: req.OpeningBalance,
		IsDefault:      req.IsDefault,
	})
	if err != nil {
		h.HandleError(c, "create_bank_account", err)
		return
	}
	h.Created(c, account)
}

// ListBankAccounts handles GET /bank-accounts
func (h *BookHandler) ListBankAccounts(c *gin.Context) {
	accounts, err := h.accounts.ListBankAccounts(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, "list_bank_accounts", err)
		return
	}
	h.Success(c, accounts)
}

// SetDefaultBankAccount handles POST /bank-accounts/:account_id/default
func (h *BookHandler) SetDefaultBankAccount(c *gin.Context) {
	accountID, ok := h.pathID(c, "account_id")
	if !ok {
		return
	}
	account, err := h.accounts.SetDefaultBankAccount(c.Request.Context(), tenantID(c), accountID)
	if err != nil {
		h.HandleError(c, "set_default_bank_account", err)
		return
	}
	h.Success(c, account)
}
