package inventory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mandibooks/backend/internal/application/apptest"
	inventoryapp "github.com/mandibooks/backend/internal/application/inventory"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMovement_ConcurrentStockOutNeverOversells(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	item := env.Item(t, "Apple")
	env.Purchase(t, env.Vendor(t, "Ramesh Farms"), item, "50", "40")

	// 8 x 10 kg racing for 50 kg
	const workers = 8
	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		start    = make(chan struct{})
		errs     = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.Stock.RecordMovement(ctx, inventoryapp.RecordMovementInput{
				TenantID:  env.Tenant,
				ItemID:    item,
				Direction: inventory.DirectionOut,
				Quantity:  inventory.NewQuantity(apptest.D("10"), 0, 0),
				Note:      "loaded for market",
			})
			if err != nil {
				errs <- err
				return
			}
			accepted.Add(1)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock), "late stock-outs are refused, got %v", err)
	}
	assert.EqualValues(t, 5, accepted.Load())

	balance, err := env.Stock.CurrentBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.True(t, balance.Available.Weight.IsZero(), balance.Available.Weight.String())
	assert.EqualValues(t, 6, balance.MovementCount)

	check, err := env.Stock.VerifyBalance(ctx, env.Tenant, item)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.False(t, check.Replayed.Weight.IsNegative())
}
