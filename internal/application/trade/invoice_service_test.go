package trade_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/apptest"
	financeapp "github.com/mandibooks/backend/internal/application/finance"
	partnerapp "github.com/mandibooks/backend/internal/application/partner"
	tradeapp "github.com/mandibooks/backend/internal/application/trade"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoice_PurchaseAppliesVendorCommission(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()

	vendor, err := env.Parties.CreateVendor(ctx, partnerapp.CreatePartyInput{
		TenantID: env.Tenant, Name: "Kullu Orchards", CommissionPercent: apptest.D("5"),
	})
	require.NoError(t, err)
	item := env.Item(t, "Apple")

	in := env.ByWeight(trade.InvoiceKindPurchase, vendor.ID, item, "100", "40")
	in.Charges = apptest.D("150")
	inv, err := env.Invoices.CreateInvoiceWithItems(ctx, in)
	require.NoError(t, err)

	// 4000 - 5% commission - 150 charges
	assert.True(t, inv.SubTotal.Equal(apptest.D("4000")))
	assert.True(t, inv.CommissionAmount.Equal(apptest.D("200")))
	assert.True(t, inv.Total.Equal(apptest.D("3650")))
	assert.Equal(t, trade.InvoiceStatusUnpaid, inv.Status)
	assert.NotEmpty(t, inv.InvoiceNumber)

	override := apptest.D("0")
	in.CommissionPercent = &override
	in.Charges = apptest.D("0")
	inv, err = env.Invoices.CreateInvoiceWithItems(ctx, in)
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(apptest.D("4000")))

	stock, err := env.Stock.CurrentBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.True(t, stock.Available.Weight.Equal(apptest.D("200")))
	assert.EqualValues(t, 2, stock.MovementCount)

	party, err := env.Parties.GetParty(ctx, env.Tenant, partner.VendorParty(vendor.ID))
	require.NoError(t, err)
	assert.True(t, party.Balance.Equal(apptest.D("7650")))
}

func TestCreateInvoice_OversellLeavesNoTrace(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	vendor := env.Vendor(t, "Ramesh Farms")
	retailer := env.Retailer(t, "Gupta Fruits")
	item := env.Item(t, "Apple")
	env.Purchase(t, vendor, item, "30", "40")

	in := env.ByWeight(trade.InvoiceKindSales, retailer, item, "50", "50")
	in.CratesGiven = 5
	_, err := env.Invoices.CreateInvoiceWithItems(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	var stockErr *shared.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	stock, err := env.Stock.CurrentBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.True(t, stock.Available.Weight.Equal(apptest.D("30")))

	party, err := env.Parties.GetParty(ctx, env.Tenant, partner.RetailerParty(retailer))
	require.NoError(t, err)
	assert.True(t, party.Balance.IsZero())
	assert.Zero(t, party.CrateBalance)

	sales, err := env.Invoices.ListInvoices(ctx, env.Tenant, tradeapp.InvoiceListFilter{Kind: trade.InvoiceKindSales})
	require.NoError(t, err)
	assert.Zero(t, sales.Total)

	ledger, err := env.Parties.PartyLedger(ctx, env.Tenant, partner.RetailerParty(retailer), 1, 20)
	require.NoError(t, err)
	assert.Zero(t, ledger.Transactions.Total)
}

func TestCreateInvoice_SalesExchangesCrates(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	vendor := env.Vendor(t, "Ramesh Farms")
	retailer := env.Retailer(t, "Gupta Fruits")
	item := env.Item(t, "Kinnow")
	env.Purchase(t, vendor, item, "100", "20")

	in := env.ByWeight(trade.InvoiceKindSales, retailer, item, "40", "30")
	in.Charges = apptest.D("50")
	in.Discount = apptest.D("20")
	in.CratesGiven = 8
	in.CratesReceived = 3
	inv, err := env.Invoices.CreateInvoiceWithItems(ctx, in)
	require.NoError(t, err)
	// 1200 + 50 charges - 20 discount
	assert.True(t, inv.Total.Equal(apptest.D("1230")))

	ledger, err := env.Crates.PartyCrateLedger(ctx, env.Tenant, partner.RetailerParty(retailer), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 5, ledger.CrateBalance)
	assert.EqualValues(t, 5, ledger.LogBalance)
	require.Len(t, ledger.Transactions.Items, 2)
	for _, tx := range ledger.Transactions.Items {
		require.NotNil(t, tx.InvoiceID)
		assert.Equal(t, inv.ID, *tx.InvoiceID)
	}

	partyLedger, err := env.Parties.PartyLedger(ctx, env.Tenant, partner.RetailerParty(retailer), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, partyLedger.Transactions.Total, "the invoice and both crate moves")
}

func TestCreateInvoice_PartyMustMatchKind(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	vendor := env.Vendor(t, "Ramesh Farms")
	retailer := env.Retailer(t, "Gupta Fruits")
	item := env.Item(t, "Apple")

	in := env.ByWeight(trade.InvoiceKindSales, retailer, item, "1", "1")
	in.VendorID = &vendor
	_, err := env.Invoices.CreateInvoiceWithItems(ctx, in)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	// a retailer id passed as the vendor of a purchase is simply unknown
	_, err = env.Invoices.CreateInvoiceWithItems(ctx, env.ByWeight(trade.InvoiceKindPurchase, retailer, item, "1", "1"))
	assert.True(t, shared.IsNotFound(err))

	_, err = env.Invoices.CreateInvoiceWithItems(ctx, env.ByWeight(trade.InvoiceKindPurchase, vendor, uuid.New(), "1", "1"))
	assert.True(t, shared.IsNotFound(err))
}

func TestMarkInvoiceForcedPaid_WritesOffRemainder(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	vendor := env.Vendor(t, "Ramesh Farms")
	retailer := env.Retailer(t, "Gupta Fruits")
	item := env.Item(t, "Apple")
	purchase := env.Purchase(t, vendor, item, "50", "30")
	sale := env.Sale(t, retailer, item, "25", "40")
	require.True(t, sale.Total.Equal(apptest.D("1000")))

	_, err := env.Payments.ApplyPayment(ctx, financeapp.ApplyPaymentInput{
		TenantID: env.Tenant, InvoiceID: sale.ID, Amount: apptest.D("750"), Mode: finance.Cash{},
	})
	require.NoError(t, err)

	inv, err := env.Invoices.MarkInvoiceForcedPaid(ctx, env.Tenant, sale.ID, "retailer shop closed")
	require.NoError(t, err)
	assert.Equal(t, trade.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.ForcedPaid)
	assert.NotNil(t, inv.ForcedPaidAt)
	assert.True(t, inv.ShortfallAmount.Equal(apptest.D("250")))
	assert.True(t, inv.PaidAmount.Equal(apptest.D("750")))

	party, err := env.Parties.GetParty(ctx, env.Tenant, partner.RetailerParty(retailer))
	require.NoError(t, err)
	assert.True(t, party.Balance.IsZero())
	require.NotNil(t, party.ShortfallBalance)
	assert.True(t, party.ShortfallBalance.Equal(apptest.D("250")))

	ledger, err := env.Parties.PartyLedger(ctx, env.Tenant, partner.RetailerParty(retailer), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, ledger.Transactions.Total)

	// force-paid closes the invoice for good
	_, err = env.Invoices.MarkInvoiceForcedPaid(ctx, env.Tenant, sale.ID, "")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = env.Payments.ApplyPayment(ctx, financeapp.ApplyPaymentInput{
		TenantID: env.Tenant, InvoiceID: sale.ID, Amount: apptest.D("1"), Mode: finance.Cash{},
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = env.Invoices.MarkInvoiceForcedPaid(ctx, env.Tenant, purchase.ID, "")
	assert.True(t, errors.Is(err, shared.ErrValidation), "purchases cannot be force-paid")

	// no money moved on the write-off
	cashbook, err := env.Ledger.Cashbook(ctx, financeapp.BookQuery{TenantID: env.Tenant})
	require.NoError(t, err)
	assert.True(t, cashbook.ClosingBalance.Equal(apptest.D("750")))
}
