package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	tenantID uuid.UUID
	vendor   *partner.Vendor
	retailer *partner.Retailer
	apple    *catalog.Item
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tenantID := uuid.New()
	vendor, err := partner.NewVendor(tenantID, "Kisan Farms")
	require.NoError(t, err)
	retailer, err := partner.NewRetailer(tenantID, "Sharma Fruit Mart")
	require.NoError(t, err)
	apple, err := catalog.NewItem(tenantID, "Apple Shimla", "A", catalog.UnitCrate)
	require.NoError(t, err)
	return fixture{tenantID: tenantID, vendor: vendor, retailer: retailer, apple: apple}
}

// salesInvoice builds a sales invoice with the given total (10 crates at total/10).
func salesInvoice(t *testing.T, f fixture, total string) *Invoice {
	t.Helper()
	rate := dec(total).Div(decimal.NewFromInt(10))
	inv, err := NewSalesInvoice(f.tenantID, f.retailer, Header{}, []LineInput{
		{Item: f.apple, Quantity: inventory.NewQuantity(dec("200"), 10, 0), Rate: rate, RateUnit: RatePerCrate},
	}, SalesTerms{})
	require.NoError(t, err)
	return inv
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		paid, total string
		want        InvoiceStatus
	}{
		{"0", "1000", InvoiceStatusUnpaid},
		{"400", "1000", InvoiceStatusPartiallyPaid},
		{"1000", "1000", InvoiceStatusPaid},
		{"0", "0", InvoiceStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.paid+"/"+tt.total, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(dec(tt.paid), dec(tt.total)))
		})
	}
}

func TestNewPurchaseInvoice(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.vendor.SetCommissionPercent(dec("6")))

	t.Run("deducts commission and charges", func(t *testing.T) {
		inv, err := NewPurchaseInvoice(f.tenantID, f.vendor, Header{Date: time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)}, []LineInput{
			{Item: f.apple, Quantity: inventory.NewQuantity(dec("500"), 25, 0), Rate: dec("40"), RateUnit: RatePerCrate},
			{Item: f.apple, Quantity: inventory.Weight(dec("12.5")), Rate: dec("80"), RateUnit: RatePerKg},
		}, PurchaseTerms{Charges: dec("150")})
		require.NoError(t, err)

		assert.Equal(t, InvoiceKindPurchase, inv.Kind)
		assert.True(t, inv.SubTotal.Equal(dec("2000")))
		assert.True(t, inv.CommissionAmount.Equal(dec("120")))
		assert.True(t, inv.Total.Equal(dec("1730")))
		assert.True(t, inv.BalanceAmount.Equal(inv.Total))
		assert.True(t, inv.PaidAmount.IsZero())
		assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
		assert.Equal(t, inventory.DirectionIn, inv.StockDirection())
		assert.Equal(t, partner.VendorParty(f.vendor.ID), inv.Party())
		assert.Contains(t, inv.InvoiceNumber, "PI-20260314-")
		assert.Len(t, inv.Items, 2)
		assert.Equal(t, 2, inv.Items[1].LineNo)
		assert.Equal(t, inv.ID, inv.Items[0].InvoiceID)
	})

	t.Run("override commission", func(t *testing.T) {
		zero := decimal.Zero
		inv, err := NewPurchaseInvoice(f.tenantID, f.vendor, Header{Number: "V-77"}, []LineInput{
			{Item: f.apple, Quantity: inventory.NewQuantity(decimal.Zero, 10, 0), Rate: dec("50"), RateUnit: RatePerCrate},
		}, PurchaseTerms{CommissionPercent: &zero})
		require.NoError(t, err)
		assert.True(t, inv.Total.Equal(dec("500")))
		assert.Equal(t, "V-77", inv.InvoiceNumber)
	})

	t.Run("deductions cannot exceed subtotal", func(t *testing.T) {
		_, err := NewPurchaseInvoice(f.tenantID, f.vendor, Header{}, []LineInput{
			{Item: f.apple, Quantity: inventory.NewQuantity(decimal.Zero, 1, 0), Rate: dec("50"), RateUnit: RatePerCrate},
		}, PurchaseTerms{Charges: dec("100")})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("foreign item rejected", func(t *testing.T) {
		foreign, err := catalog.NewItem(uuid.New(), "Mango", "", catalog.UnitBox)
		require.NoError(t, err)
		_, err = NewPurchaseInvoice(f.tenantID, f.vendor, Header{}, []LineInput{
			{Item: foreign, Quantity: inventory.NewQuantity(decimal.Zero, 0, 4), Rate: dec("50"), RateUnit: RatePerBox},
		}, PurchaseTerms{})
		assert.True(t, errors.Is(err, shared.ErrTenantMismatch))
	})

	t.Run("foreign vendor rejected", func(t *testing.T) {
		_, err := NewPurchaseInvoice(uuid.New(), f.vendor, Header{}, nil, PurchaseTerms{})
		assert.True(t, errors.Is(err, shared.ErrTenantMismatch))
	})

	t.Run("billed dimension must be present", func(t *testing.T) {
		_, err := NewPurchaseInvoice(f.tenantID, f.vendor, Header{}, []LineInput{
			{Item: f.apple, Quantity: inventory.Weight(dec("10")), Rate: dec("50"), RateUnit: RatePerCrate},
		}, PurchaseTerms{})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestNewSalesInvoice(t *testing.T) {
	f := newFixture(t)

	inv, err := NewSalesInvoice(f.tenantID, f.retailer, Header{}, []LineInput{
		{Item: f.apple, Quantity: inventory.NewQuantity(decimal.Zero, 20, 0), Rate: dec("60"), RateUnit: RatePerCrate},
	}, SalesTerms{Charges: dec("40"), Discount: dec("15.50")})
	require.NoError(t, err)

	assert.True(t, inv.Total.Equal(dec("1224.50")))
	assert.Equal(t, inventory.DirectionOut, inv.StockDirection())
	assert.Equal(t, partner.RetailerParty(f.retailer.ID), inv.Party())
	assert.Contains(t, inv.InvoiceNumber, "SI-")

	t.Run("no lines", func(t *testing.T) {
		_, err := NewSalesInvoice(f.tenantID, f.retailer, Header{}, nil, SalesTerms{})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestInvoice_ApplyPayment(t *testing.T) {
	f := newFixture(t)

	t.Run("payments accumulate", func(t *testing.T) {
		inv := salesInvoice(t, f, "1000.00")
		paid := decimal.Zero
		for _, amt := range []string{"100", "250.25", "0.75", "649"} {
			require.NoError(t, inv.ApplyPayment(dec(amt)))
			paid = paid.Add(dec(amt))
			assert.True(t, inv.PaidAmount.Equal(paid))
			assert.True(t, inv.BalanceAmount.Equal(inv.Total.Sub(inv.PaidAmount)))
			assert.Equal(t, StatusFor(inv.PaidAmount, inv.Total), inv.Status)
		}
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("rejects overpayment", func(t *testing.T) {
		inv := salesInvoice(t, f, "1000.00")
		err := inv.ApplyPayment(dec("1000.01"))
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.True(t, inv.PaidAmount.IsZero())
	})

	t.Run("rejects non-positive", func(t *testing.T) {
		inv := salesInvoice(t, f, "1000.00")
		assert.Error(t, inv.ApplyPayment(decimal.Zero))
		assert.Error(t, inv.ApplyPayment(dec("-5")))
	})

	t.Run("rejects payment on paid invoice", func(t *testing.T) {
		inv := salesInvoice(t, f, "100.00")
		require.NoError(t, inv.ApplyPayment(dec("100")))
		assert.Error(t, inv.ApplyPayment(dec("1")))
	})
}

func TestInvoice_MarkForcedPaid(t *testing.T) {
	f := newFixture(t)

	t.Run("writes off remainder", func(t *testing.T) {
		inv := salesInvoice(t, f, "1000.00")
		require.NoError(t, inv.ApplyPayment(dec("750")))

		remainder, err := inv.MarkForcedPaid()
		require.NoError(t, err)
		assert.True(t, remainder.Equal(dec("250")))
		assert.True(t, inv.BalanceAmount.IsZero())
		assert.True(t, inv.ShortfallAmount.Equal(dec("250")))
		assert.True(t, inv.PaidAmount.Equal(dec("750")))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.ForcedPaid)
		assert.NotNil(t, inv.ForcedPaidAt)
	})

	t.Run("paid invoice has nothing to write off", func(t *testing.T) {
		inv := salesInvoice(t, f, "100.00")
		require.NoError(t, inv.ApplyPayment(dec("100")))
		_, err := inv.MarkForcedPaid()
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("purchase invoices cannot be force-paid", func(t *testing.T) {
		inv, err := NewPurchaseInvoice(f.tenantID, f.vendor, Header{}, []LineInput{
			{Item: f.apple, Quantity: inventory.NewQuantity(decimal.Zero, 10, 0), Rate: dec("50"), RateUnit: RatePerCrate},
		}, PurchaseTerms{})
		require.NoError(t, err)
		_, err = inv.MarkForcedPaid()
		assert.Error(t, err)
	})

	t.Run("forced invoice rejects further payment", func(t *testing.T) {
		inv := salesInvoice(t, f, "300.00")
		_, err := inv.MarkForcedPaid()
		require.NoError(t, err)
		assert.Error(t, inv.ApplyPayment(dec("1")))
	})
}
