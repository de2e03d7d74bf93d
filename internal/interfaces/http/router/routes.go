package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mandibooks/backend/internal/infrastructure/auth"
	"github.com/mandibooks/backend/internal/infrastructure/config"
	"github.com/mandibooks/backend/internal/infrastructure/logger"
	"github.com/mandibooks/backend/internal/interfaces/http/handler"
	"github.com/mandibooks/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers holds one handler per area of the API
type Handlers struct {
	System   *handler.SystemHandler
	Tenants  *handler.TenantHandler
	Parties  *handler.PartyHandler
	Items    *handler.ItemHandler
	Invoices *handler.InvoiceHandler
	Crates   *handler.CrateHandler
	Stock    *handler.StockHandler
	Books    *handler.BookHandler
	Expenses *handler.ExpenseHandler
}

// Options configures the engine around the handlers
type Options struct {
	ServiceName    string
	HTTP           config.HTTPConfig
	TracingEnabled bool
	// Meter records HTTP request metrics. Nil disables them.
	Meter   metric.Meter
	Tokens  middleware.TokenValidator
	Tenants middleware.TenantChecker
	Logger  *zap.Logger
}

// New builds the gin engine with the middleware chain and every route.
//
// Bookkeeping routes need a token with the books permission for an active
// tenant. Tenant administration only needs the tenants permission, so a
// suspended tenant can still be reactivated.
func New(opts Options, h Handlers) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			return nil, err
		}
	}

	engine.Use(
		logger.Recovery(opts.Logger),
		middleware.RequestID(),
		middleware.Tracing(opts.ServiceName, opts.TracingEnabled),
	)
	if opts.Meter != nil {
		httpMetrics, err := middleware.HTTPMetrics(opts.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(httpMetrics)
	}
	engine.Use(
		logger.GinMiddleware(opts.Logger),
		middleware.Secure(),
		middleware.CORS(middleware.DefaultCORSConfig(opts.HTTP.CORSOrigins)),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(systemRoutes(h))
	r.Register(bookRoutes(opts, h))
	r.Register(adminRoutes(opts, h))
	r.Setup()

	return engine, nil
}

func systemRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.System.Info)
}

func bookRoutes(opts Options, h Handlers) *DomainGroup {
	books := NewDomainGroup("books", "").Use(
		middleware.JWTAuth(opts.Tokens, opts.Logger),
		middleware.ActiveTenant(opts.Tenants, opts.Logger),
		middleware.SpanAttributes(),
		middleware.RequirePermission(auth.PermissionBooks),
	)

	books.GET("/tenant", h.Tenants.Current)

	books.Group("vendors", "/vendors").
		POST("", h.Parties.CreateVendor).
		GET("", h.Parties.ListVendors).
		GET("/:id", h.Parties.GetVendor).
		GET("/:id/ledger", h.Parties.VendorLedger).
		GET("/:id/crates", h.Parties.VendorCrates)

	books.Group("retailers", "/retailers").
		POST("", h.Parties.CreateRetailer).
		GET("", h.Parties.ListRetailers).
		GET("/:id", h.Parties.GetRetailer).
		GET("/:id/ledger", h.Parties.RetailerLedger).
		GET("/:id/crates", h.Parties.RetailerCrates).
		POST("/:id/credit", h.Parties.AdjustCredit)

	books.Group("items", "/items").
		POST("", h.Items.Create).
		GET("", h.Items.List).
		GET("/:id", h.Items.Get)

	books.Group("invoices", "/invoices").
		POST("", h.Invoices.Create).
		GET("", h.Invoices.List).
		GET("/:id", h.Invoices.Get).
		POST("/:id/forced-paid", h.Invoices.MarkForcedPaid).
		POST("/:id/payments", h.Invoices.ApplyPayment).
		GET("/:id/payments", h.Invoices.ListPayments)

	books.Group("crates", "/crates").
		POST("", h.Crates.Record)

	books.Group("stock", "/stock").
		GET("", h.Stock.ListBalances).
		POST("/movements", h.Stock.RecordMovement).
		GET("/:item_id", h.Stock.GetBalance).
		GET("/:item_id/movements", h.Stock.ListMovements).
		GET("/:item_id/verify", h.Stock.Verify).
		POST("/:item_id/rebuild", h.Stock.Rebuild)

	books.Group("books", "/books").
		GET("/cash", h.Books.Cashbook).
		GET("/bank/:account_id", h.Books.Bankbook).
		POST("/entries", h.Books.AppendEntry)

	books.Group("bank-accounts", "/bank-accounts").
		POST("", h.Books.CreateBankAccount).
		GET("", h.Books.ListBankAccounts).
		POST("/:account_id/default", h.Books.SetDefaultBankAccount)

	books.GET("/cash-account", h.Books.CashAccount)

	books.Group("expenses", "/expenses").
		POST("", h.Expenses.Record).
		GET("", h.Expenses.List)

	return books
}

func adminRoutes(opts Options, h Handlers) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(
		middleware.JWTAuth(opts.Tokens, opts.Logger),
		middleware.SpanAttributes(),
		middleware.RequirePermission(auth.PermissionTenants),
	)
	admin.Group("tenants", "/tenants").
		POST("", h.Tenants.Create).
		GET("/:id", h.Tenants.Get).
		POST("/:id/suspend", h.Tenants.Suspend).
		POST("/:id/activate", h.Tenants.Activate)
	return admin
}
