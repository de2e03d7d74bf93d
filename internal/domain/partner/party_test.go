package partner

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartyRef(t *testing.T) {
	retailerID := uuid.New()
	vendorID := uuid.New()
	nilID := uuid.Nil

	t.Run("retailer reference", func(t *testing.T) {
		ref, err := NewPartyRef(PartyTypeRetailer, &retailerID, nil)
		require.NoError(t, err)
		assert.Equal(t, PartyTypeRetailer, ref.Type())
		assert.Equal(t, retailerID, ref.ID())
		assert.Equal(t, &retailerID, ref.RetailerID())
		assert.Nil(t, ref.VendorID())
	})

	t.Run("vendor reference ignores nil uuid on the other side", func(t *testing.T) {
		ref, err := NewPartyRef(PartyTypeVendor, &nilID, &vendorID)
		require.NoError(t, err)
		assert.Equal(t, vendorID, ref.ID())
	})

	tests := []struct {
		name      string
		partyType PartyType
		retailer  *uuid.UUID
		vendor    *uuid.UUID
		field     string
	}{
		{"both ids", PartyTypeRetailer, &retailerID, &vendorID, "party"},
		{"neither id", PartyTypeRetailer, nil, nil, "party"},
		{"type says vendor but retailer given", PartyTypeVendor, &retailerID, nil, "party_type"},
		{"type says retailer but vendor given", PartyTypeRetailer, nil, &vendorID, "party_type"},
		{"unknown type", PartyType("BROKER"), &retailerID, nil, "party_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := NewPartyRef(tt.partyType, tt.retailer, tt.vendor)
			require.Error(t, err)
			assert.True(t, ref.IsZero())

			var verr *shared.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestBalances_ApplyCrates(t *testing.T) {
	t.Run("given then returned", func(t *testing.T) {
		var b Balances
		_, after, err := b.ApplyCrates(10, false)
		require.NoError(t, err)
		assert.Equal(t, int64(10), after)

		before, after, err := b.ApplyCrates(-4, false)
		require.NoError(t, err)
		assert.Equal(t, int64(10), before)
		assert.Equal(t, int64(6), after)
	})

	t.Run("over-return rejected unless allowed", func(t *testing.T) {
		b := Balances{CrateBalance: 3}
		_, _, err := b.ApplyCrates(-5, false)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Equal(t, int64(3), b.CrateBalance)

		_, after, err := b.ApplyCrates(-5, true)
		require.NoError(t, err)
		assert.Equal(t, int64(-2), after)
	})
}

func TestBalances_ApplyCrateDeposit(t *testing.T) {
	b := Balances{CrateDepositBalance: decimal.Zero}
	require.NoError(t, b.ApplyCrateDeposit(decimal.NewFromInt(500)))
	require.NoError(t, b.ApplyCrateDeposit(decimal.NewFromInt(-200)))
	assert.True(t, b.CrateDepositBalance.Equal(decimal.NewFromInt(300)))

	err := b.ApplyCrateDeposit(decimal.NewFromInt(-301))
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.True(t, b.CrateDepositBalance.Equal(decimal.NewFromInt(300)))
}

func TestRetailer_Balances(t *testing.T) {
	tenantID := uuid.New()

	t.Run("write off moves remainder to shortfall", func(t *testing.T) {
		r, err := NewRetailer(tenantID, "Sharma Fruit Mart")
		require.NoError(t, err)
		r.AddBalance(decimal.RequireFromString("1000.00"))

		before, after, err := r.WriteOffShortfall(decimal.RequireFromString("250.00"))
		require.NoError(t, err)
		assert.True(t, before.Equal(decimal.RequireFromString("1000.00")))
		assert.True(t, after.Equal(decimal.RequireFromString("750.00")))
		assert.True(t, r.ShortfallBalance.Equal(decimal.RequireFromString("250.00")))
	})

	t.Run("outstanding credit cannot go negative", func(t *testing.T) {
		r, err := NewRetailer(tenantID, "Gupta Stores")
		require.NoError(t, err)

		_, after, err := r.AdjustOutstandingCredit(decimal.NewFromInt(400))
		require.NoError(t, err)
		assert.True(t, after.Equal(decimal.NewFromInt(400)))

		_, _, err = r.AdjustOutstandingCredit(decimal.NewFromInt(-401))
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.True(t, r.OutstandingCredit.Equal(decimal.NewFromInt(400)))
	})

	t.Run("outstanding credit respects limit", func(t *testing.T) {
		r, err := NewRetailer(tenantID, "Verma & Sons")
		require.NoError(t, err)
		require.NoError(t, r.SetCreditLimit(decimal.NewFromInt(1000)))

		_, _, err = r.AdjustOutstandingCredit(decimal.NewFromInt(1500))
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := NewRetailer(tenantID, " ")
		assert.Error(t, err)
	})
}

func TestVendor_SetCommissionPercent(t *testing.T) {
	v, err := NewVendor(uuid.New(), "Kisan Farms")
	require.NoError(t, err)

	assert.NoError(t, v.SetCommissionPercent(decimal.NewFromInt(6)))
	assert.Error(t, v.SetCommissionPercent(decimal.NewFromInt(101)))
	assert.Error(t, v.SetCommissionPercent(decimal.NewFromInt(-1)))
	assert.Equal(t, PartyTypeVendor, v.Ref().Type())
}

func TestNewPartyTransaction(t *testing.T) {
	tenantID := uuid.New()
	party := RetailerParty(uuid.New())

	t.Run("records chained balance", func(t *testing.T) {
		tx, err := NewPartyTransaction(tenantID, party, PartyTxPayment, PartyAccountBalance,
			decimal.NewFromInt(-400), decimal.NewFromInt(1000), decimal.NewFromInt(600))
		require.NoError(t, err)
		assert.Equal(t, party, tx.Party())
	})

	t.Run("rejects inconsistent balances", func(t *testing.T) {
		_, err := NewPartyTransaction(tenantID, party, PartyTxPayment, PartyAccountBalance,
			decimal.NewFromInt(-400), decimal.NewFromInt(1000), decimal.NewFromInt(700))
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects zero party", func(t *testing.T) {
		_, err := NewPartyTransaction(tenantID, PartyRef{}, PartyTxPayment, PartyAccountBalance,
			decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}
