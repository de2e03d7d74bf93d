package partner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mandibooks/backend/internal/application/apptest"
	financeapp "github.com/mandibooks/backend/internal/application/finance"
	partnerapp "github.com/mandibooks/backend/internal/application/partner"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateParties(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()

	vendor, err := env.Parties.CreateVendor(ctx, partnerapp.CreatePartyInput{
		TenantID: env.Tenant, Name: "  Kullu Orchards ", Phone: "9800000001", CommissionPercent: apptest.D("6"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kullu Orchards", vendor.Name)
	assert.Equal(t, partner.PartyTypeVendor, vendor.Type)
	require.NotNil(t, vendor.CommissionPercent)
	assert.True(t, vendor.CommissionPercent.Equal(apptest.D("6")))
	assert.Nil(t, vendor.CreditLimit)

	_, err = env.Parties.CreateVendor(ctx, partnerapp.CreatePartyInput{TenantID: env.Tenant, Name: "Kullu Orchards"})
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))

	// names are unique per party type, not across them
	retailer, err := env.Parties.CreateRetailer(ctx, partnerapp.CreatePartyInput{
		TenantID: env.Tenant, Name: "Kullu Orchards", CreditLimit: apptest.D("5000"),
	})
	require.NoError(t, err)
	require.NotNil(t, retailer.CreditLimit)
	assert.True(t, retailer.CreditLimit.Equal(apptest.D("5000")))

	_, err = env.Parties.CreateVendor(ctx, partnerapp.CreatePartyInput{TenantID: env.Tenant, Name: " "})
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = env.Parties.CreateVendor(ctx, partnerapp.CreatePartyInput{TenantID: env.Tenant, Name: "X", CommissionPercent: apptest.D("101")})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestListRetailers_Search(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	env.Retailer(t, "Gupta Fruits")
	env.Retailer(t, "Agarwal Fruit Co")
	env.Retailer(t, "Sharma Vegetables")

	all, err := env.Parties.ListRetailers(ctx, env.Tenant, partnerapp.PartyListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Agarwal Fruit Co", all[0].Name)

	fruit, err := env.Parties.ListRetailers(ctx, env.Tenant, partnerapp.PartyListFilter{Search: "FRUIT"})
	require.NoError(t, err)
	assert.Len(t, fruit, 2)
}

func TestAdjustOutstandingCredit(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	retailer, err := env.Parties.CreateRetailer(ctx, partnerapp.CreatePartyInput{
		TenantID: env.Tenant, Name: "Gupta Fruits", CreditLimit: apptest.D("1000"),
	})
	require.NoError(t, err)

	party, err := env.Parties.AdjustOutstandingCredit(ctx, env.Tenant, retailer.ID, apptest.D("600"), "cash advance")
	require.NoError(t, err)
	assert.True(t, party.OutstandingCredit.Equal(apptest.D("600")))
	assert.True(t, party.Balance.IsZero(), "udhaar is tracked apart from invoice balance")

	_, err = env.Parties.AdjustOutstandingCredit(ctx, env.Tenant, retailer.ID, apptest.D("500"), "")
	assert.True(t, errors.Is(err, shared.ErrValidation), "over the credit limit")

	_, err = env.Parties.AdjustOutstandingCredit(ctx, env.Tenant, retailer.ID, apptest.D("-700"), "")
	assert.True(t, errors.Is(err, shared.ErrValidation), "cannot settle more than is owed")

	party, err = env.Parties.AdjustOutstandingCredit(ctx, env.Tenant, retailer.ID, apptest.D("-600"), "settled")
	require.NoError(t, err)
	assert.True(t, party.OutstandingCredit.IsZero())

	ledger, err := env.Parties.PartyLedger(ctx, env.Tenant, partner.RetailerParty(retailer.ID), 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, ledger.Transactions.Total)
	for _, tx := range ledger.Transactions.Items {
		assert.Equal(t, partner.PartyTxCreditAdjustment, tx.TransactionType)
	}
}

func TestPartyLedger_RecordsEveryBalanceMove(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	vendor := env.Vendor(t, "Ramesh Farms")
	item := env.Item(t, "Apple")
	purchase := env.Purchase(t, vendor, item, "10", "40")

	_, err := env.Payments.ApplyPayment(ctx, financeapp.ApplyPaymentInput{
		TenantID: env.Tenant, InvoiceID: purchase.ID, Amount: apptest.D("150"), Mode: finance.Cash{},
	})
	require.NoError(t, err)

	ledger, err := env.Parties.PartyLedger(ctx, env.Tenant, partner.VendorParty(vendor), 1, 20)
	require.NoError(t, err)
	assert.True(t, ledger.Party.Balance.Equal(apptest.D("250")))
	require.Len(t, ledger.Transactions.Items, 2)

	byType := map[partner.PartyTransactionType]partnerapp.PartyTransactionDTO{}
	for _, tx := range ledger.Transactions.Items {
		byType[tx.TransactionType] = tx
	}
	assert.True(t, byType[partner.PartyTxInvoice].Amount.Equal(apptest.D("400")))
	assert.True(t, byType[partner.PartyTxPayment].Amount.Equal(apptest.D("-150")))
	assert.True(t, byType[partner.PartyTxPayment].BalanceAfter.Equal(apptest.D("250")))

	// paying a vendor is money going out of the cashbook
	cashbook, err := env.Ledger.Cashbook(ctx, financeapp.BookQuery{TenantID: env.Tenant})
	require.NoError(t, err)
	assert.True(t, cashbook.ClosingBalance.Equal(apptest.D("-150")))
}
