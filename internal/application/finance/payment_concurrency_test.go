package finance_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mandibooks/backend/internal/application/apptest"
	financeapp "github.com/mandibooks/backend/internal/application/finance"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPayment_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	retailer, invoice := seedSale(t, env)

	// 12 x 100 racing against a 1000.00 invoice
	const workers = 12
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
			_, err := env.Payments.ApplyPayment(ctx, financeapp.ApplyPaymentInput{
				TenantID: env.Tenant, InvoiceID: invoice, Amount: apptest.D("100"), Mode: cash(),
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
		assert.True(t, errors.Is(err, shared.ErrValidation), "late payments fail validation, got %v", err)
	}
	assert.EqualValues(t, 10, accepted.Load())

	inv, err := env.Invoices.GetInvoice(ctx, env.Tenant, invoice)
	require.NoError(t, err)
	assert.True(t, inv.PaidAmount.Equal(inv.Total), inv.PaidAmount.String())
	assert.True(t, inv.BalanceAmount.IsZero())
	assert.Equal(t, trade.InvoiceStatusPaid, inv.Status)

	cashbook, err := env.Ledger.Cashbook(ctx, financeapp.BookQuery{TenantID: env.Tenant})
	require.NoError(t, err)
	assert.Len(t, cashbook.Entries, 10)
	assert.True(t, cashbook.ClosingBalance.Equal(inv.PaidAmount), cashbook.ClosingBalance.String())

	payments, err := env.Payments.ListInvoicePayments(ctx, env.Tenant, invoice)
	require.NoError(t, err)
	assert.Len(t, payments, 10)

	party, err := env.Parties.GetParty(ctx, env.Tenant, partner.RetailerParty(retailer))
	require.NoError(t, err)
	assert.True(t, party.Balance.IsZero(), party.Balance.String())
}
