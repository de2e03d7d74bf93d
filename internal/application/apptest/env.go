// Package apptest wires the application services over an isolated SQLite
// database, with helpers that seed the parties, items and invoices most
// tests start from.
package apptest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/mandibooks/backend/internal/application/catalog"
	crateapp "github.com/mandibooks/backend/internal/application/crate"
	financeapp "github.com/mandibooks/backend/internal/application/finance"
	identityapp "github.com/mandibooks/backend/internal/application/identity"
	inventoryapp "github.com/mandibooks/backend/internal/application/inventory"
	partnerapp "github.com/mandibooks/backend/internal/application/partner"
	tradeapp "github.com/mandibooks/backend/internal/application/trade"
	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/trade"
	"github.com/mandibooks/backend/internal/infrastructure/cache"
	"github.com/mandibooks/backend/internal/infrastructure/persistence"
	"github.com/mandibooks/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Env holds one tenant and every application service over a private database
type Env struct {
	DB     *gorm.DB
	Tenant uuid.UUID

	Tenants  *identityapp.TenantService
	Items    *catalogapp.ItemService
	Parties  *partnerapp.PartyService
	Stock    *inventoryapp.StockLedgerService
	Crates   *crateapp.CrateService
	Invoices *tradeapp.InvoiceService
	Payments *financeapp.PaymentService
	Accounts *financeapp.AccountService
	Ledger   *financeapp.LedgerService
	Expenses *financeapp.ExpenseService
}

type options struct {
	crate   crateapp.Config
	payment financeapp.PaymentConfig
}

// Option adjusts the services New builds
type Option func(*options)

// WithCrateConfig sets the crate policy
func WithCrateConfig(cfg crateapp.Config) Option {
	return func(o *options) { o.crate = cfg }
}

// WithPaymentConfig sets the payment configuration
func WithPaymentConfig(cfg financeapp.PaymentConfig) Option {
	return func(o *options) { o.payment = cfg }
}

// New builds an Env with one active tenant
func New(t testing.TB, opts ...Option) *Env {
	t.Helper()

	o := options{payment: financeapp.DefaultPaymentConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	db := persistencetest.NewDB(t)
	log := zap.NewNop()
	scope := persistence.NewGormTransactionScope(db)
	recorder := financeapp.NewBookRecorder(log)
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })

	stock := inventoryapp.NewStockLedgerService(scope, log)
	crates := crateapp.NewCrateService(scope, recorder, o.crate, log)
	env := &Env{
		DB:       db,
		Tenants:  identityapp.NewTenantService(scope, log),
		Items:    catalogapp.NewItemService(scope, log),
		Parties:  partnerapp.NewPartyService(scope, log),
		Stock:    stock,
		Crates:   crates,
		Invoices: tradeapp.NewInvoiceService(scope, stock, crates, log),
		Payments: financeapp.NewPaymentService(scope, recorder, idem, cache.NewLocalLocker(), o.payment, log),
		Accounts: financeapp.NewAccountService(scope, recorder, log),
		Ledger:   financeapp.NewLedgerService(scope, recorder, log),
		Expenses: financeapp.NewExpenseService(scope, recorder, log),
	}

	tenant, err := env.Tenants.Create(context.Background(), identityapp.CreateTenantInput{
		Code: "T" + uuid.NewString()[:8],
		Name: "Test Traders",
	})
	require.NoError(t, err)
	env.Tenant = tenant.ID
	return env
}

// D parses a decimal literal
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Vendor creates a vendor with no commission
func (e *Env) Vendor(t testing.TB, name string) uuid.UUID {
	t.Helper()
	v, err := e.Parties.CreateVendor(context.Background(), partnerapp.CreatePartyInput{TenantID: e.Tenant, Name: name})
	require.NoError(t, err)
	return v.ID
}

// Retailer creates a retailer with unlimited credit
func (e *Env) Retailer(t testing.TB, name string) uuid.UUID {
	t.Helper()
	r, err := e.Parties.CreateRetailer(context.Background(), partnerapp.CreatePartyInput{TenantID: e.Tenant, Name: name})
	require.NoError(t, err)
	return r.ID
}

// Item creates an item sold by weight
func (e *Env) Item(t testing.TB, name string) uuid.UUID {
	t.Helper()
	item, err := e.Items.CreateItem(context.Background(), catalogapp.CreateItemInput{TenantID: e.Tenant, Name: name, Unit: catalog.UnitKg})
	require.NoError(t, err)
	return item.ID
}

// BankAccount creates a bank account
func (e *Env) BankAccount(t testing.TB, number string) uuid.UUID {
	t.Helper()
	acc, err := e.Accounts.CreateBankAccount(context.Background(), financeapp.CreateBankAccountInput{
		TenantID: e.Tenant, BankName: "SBI", AccountNumber: number,
	})
	require.NoError(t, err)
	return acc.ID
}

// Purchase buys kg of item from vendor at rate per kg
func (e *Env) Purchase(t testing.TB, vendor, item uuid.UUID, kg, rate string) *tradeapp.InvoiceDTO {
	t.Helper()
	inv, err := e.Invoices.CreateInvoiceWithItems(context.Background(), e.ByWeight(trade.InvoiceKindPurchase, vendor, item, kg, rate))
	require.NoError(t, err)
	return inv
}

// Sale sells kg of item to retailer at rate per kg
func (e *Env) Sale(t testing.TB, retailer, item uuid.UUID, kg, rate string) *tradeapp.InvoiceDTO {
	t.Helper()
	inv, err := e.Invoices.CreateInvoiceWithItems(context.Background(), e.ByWeight(trade.InvoiceKindSales, retailer, item, kg, rate))
	require.NoError(t, err)
	return inv
}

// ByWeight is the input of a one-line invoice priced per kg
func (e *Env) ByWeight(kind trade.InvoiceKind, party, item uuid.UUID, kg, rate string) tradeapp.CreateInvoiceInput {
	in := tradeapp.CreateInvoiceInput{
		TenantID: e.Tenant,
		Kind:     kind,
		Items: []tradeapp.LineItemInput{{
			ItemID: item, Weight: D(kg), Rate: D(rate), RateUnit: trade.RatePerKg,
		}},
	}
	if kind == trade.InvoiceKindPurchase {
		in.VendorID = &party
	} else {
		in.RetailerID = &party
	}
	return in
}
