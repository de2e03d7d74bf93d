package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/apptest"
	identityapp "github.com/mandibooks/backend/internal/application/identity"
	inventoryapp "github.com/mandibooks/backend/internal/application/inventory"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBalance_FollowsInvoices(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	vendor := env.Vendor(t, "Ramesh Farms")
	retailer := env.Retailer(t, "Gupta Fruits")
	item := env.Item(t, "Apple")

	balance, err := env.Stock.CurrentBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.True(t, balance.Available.IsZero())

	env.Purchase(t, vendor, item, "50", "40")
	env.Sale(t, retailer, item, "20", "50")

	balance, err = env.Stock.CurrentBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.True(t, balance.Available.Weight.Equal(apptest.D("30")))
	assert.EqualValues(t, 2, balance.MovementCount)

	movements, err := env.Stock.ListMovements(ctx, env.Tenant, item, 1, 20)
	require.NoError(t, err)
	require.Len(t, movements.Items, 2)
	dirs := []inventory.Direction{movements.Items[0].Direction, movements.Items[1].Direction}
	assert.ElementsMatch(t, []inventory.Direction{inventory.DirectionIn, inventory.DirectionOut}, dirs)

	_, err = env.Stock.CurrentBalance(ctx, env.Tenant, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}

func TestRecordMovement_ManualAdjustments(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	item := env.Item(t, "Pomegranate")

	_, err := env.Stock.RecordMovement(ctx, inventoryapp.RecordMovementInput{
		TenantID:  env.Tenant,
		ItemID:    item,
		Direction: inventory.DirectionIn,
		Quantity:  inventory.NewQuantity(apptest.D("12.5"), 4, 0),
		Note:      "opening stock",
	})
	require.NoError(t, err)

	_, err = env.Stock.RecordMovement(ctx, inventoryapp.RecordMovementInput{
		TenantID:  env.Tenant,
		ItemID:    item,
		Direction: inventory.DirectionOut,
		Quantity:  inventory.NewQuantity(apptest.D("2"), 5, 0),
		Note:      "spoilage",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock), "crates are checked on their own")

	_, err = env.Stock.RecordMovement(ctx, inventoryapp.RecordMovementInput{
		TenantID:  env.Tenant,
		ItemID:    item,
		Direction: inventory.DirectionOut,
		Quantity:  inventory.NewQuantity(apptest.D("2.5"), 1, 0),
		Note:      "spoilage",
	})
	require.NoError(t, err)

	balance, err := env.Stock.CurrentBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.True(t, balance.Available.Weight.Equal(apptest.D("10")))
	assert.EqualValues(t, 3, balance.Available.Crates)
}

func TestVerifyAndRebuildBalance(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	vendor := env.Vendor(t, "Ramesh Farms")
	item := env.Item(t, "Apple")
	env.Purchase(t, vendor, item, "50", "40")
	env.Purchase(t, vendor, item, "25", "40")

	check, err := env.Stock.VerifyBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.True(t, check.Replayed.Weight.Equal(apptest.D("75")))

	// knock the cache out of step with the log
	require.NoError(t, env.DB.Model(&inventory.StockBalance{}).
		Where("tenant_id = ? AND item_id = ?", env.Tenant, item).
		Update("movement_count", 7).Error)

	check, err = env.Stock.VerifyBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.False(t, check.Consistent)

	rebuilt, err := env.Stock.RebuildBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rebuilt.MovementCount)
	assert.True(t, rebuilt.Available.Weight.Equal(apptest.D("75")))

	check, err = env.Stock.VerifyBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
}

func TestListBalances_ScopedToTenant(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	tenant, err := env.Tenants.Create(ctx, identityapp.CreateTenantInput{Code: "NEIGHBOUR", Name: "Neighbour Traders"})
	require.NoError(t, err)
	other := *env
	other.Tenant = tenant.ID

	env.Purchase(t, env.Vendor(t, "Ramesh Farms"), env.Item(t, "Apple"), "10", "40")
	other.Purchase(t, other.Vendor(t, "Hill Orchards"), other.Item(t, "Pear"), "5", "60")

	balances, err := env.Stock.ListBalances(ctx, env.Tenant)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Available.Weight.Equal(apptest.D("10")))
}
