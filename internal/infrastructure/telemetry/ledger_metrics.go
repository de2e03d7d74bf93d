package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when LedgerMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// LedgerMetrics counts bookkeeping activity: invoices, payments, crate
// exchanges and rejected mutations.
type LedgerMetrics struct {
	invoicesCreated *Counter
	invoiceTotal    *Histogram
	payments        *Counter
	paymentAmount   *Histogram
	crateMovements  *Counter
	rejections      *Counter
}

var amountBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000}

// NewLedgerMetrics registers the bookkeeping instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &LedgerMetrics{}
	var err error
	if m.invoicesCreated, err = NewCounter(meter, "mandi_invoices_created_total", "Invoices created", "{invoices}"); err != nil {
		return nil, err
	}
	if m.invoiceTotal, err = NewHistogram(meter, HistogramOpts{
		Name: "mandi_invoice_total", Description: "Invoice totals", Unit: "{rupees}", Boundaries: amountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.payments, err = NewCounter(meter, "mandi_payments_total", "Payments applied", "{payments}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewHistogram(meter, HistogramOpts{
		Name: "mandi_payment_amount", Description: "Payment amounts", Unit: "{rupees}", Boundaries: amountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.crateMovements, err = NewCounter(meter, "mandi_crates_moved_total", "Crates lent or taken back", "{crates}"); err != nil {
		return nil, err
	}
	if m.rejections, err = NewCounter(meter, "mandi_rejections_total", "Mutations rejected by the ledger", "{errors}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordInvoiceCreated counts a new invoice and its total
func (m *LedgerMetrics) RecordInvoiceCreated(ctx context.Context, tenantID uuid.UUID, kind string, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrInvoiceKind.String(kind))
	m.invoiceTotal.Record(ctx, total.InexactFloat64(), AttrInvoiceKind.String(kind))
}

// RecordPayment counts an applied or replayed payment
func (m *LedgerMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, mode string, amount decimal.Decimal, replayed bool) {
	if m == nil {
		return
	}
	m.payments.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrPaymentMode.String(mode), AttrReplayed.Bool(replayed))
	if !replayed {
		m.paymentAmount.Record(ctx, amount.InexactFloat64(), AttrPaymentMode.String(mode))
	}
}

// RecordCrateMovement counts crates moved in one exchange
func (m *LedgerMetrics) RecordCrateMovement(ctx context.Context, tenantID uuid.UUID, direction string, quantity int64) {
	if m == nil {
		return
	}
	m.crateMovements.Add(ctx, quantity, AttrTenantID.String(tenantID.String()), AttrDirection.String(direction))
}

// RecordRejection counts a mutation that failed with a domain error code
func (m *LedgerMetrics) RecordRejection(ctx context.Context, operation, code string) {
	if m == nil || code == "" {
		return
	}
	m.rejections.Inc(ctx, AttrOperation.String(operation), AttrErrorCode.String(code))
}
