package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewPaymentMode(t *testing.T) {
	bankID := uuid.New()

	valid := []struct {
		name   string
		kind   PaymentModeKind
		fields ModeFields
		want   PaymentMode
	}{
		{"cash", ModeCash, ModeFields{}, Cash{}},
		{"bank", ModeBank, ModeFields{BankAccountID: &bankID}, Bank{BankAccountID: bankID}},
		{"cheque without account", ModeCheque, ModeFields{ChequeNumber: " 004512 "}, Cheque{ChequeNumber: "004512"}},
		{"upi with account", ModeUPI, ModeFields{UPIReference: "UPI123", BankAccountID: &bankID}, UPI{TxnReference: "UPI123", BankAccountID: &bankID}},
		{"payment link", ModePaymentLink, ModeFields{PaymentLinkID: "plink_9"}, PaymentLink{LinkID: "plink_9"}},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := NewPaymentMode(tt.kind, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
			assert.Equal(t, tt.kind, mode.Kind())
		})
	}

	invalid := []struct {
		name   string
		kind   PaymentModeKind
		fields ModeFields
		field  string
	}{
		{"bank without account", ModeBank, ModeFields{}, "bank_account_id"},
		{"bank with nil uuid", ModeBank, ModeFields{BankAccountID: &uuid.Nil}, "bank_account_id"},
		{"cheque without number", ModeCheque, ModeFields{}, "cheque_number"},
		{"upi without reference", ModeUPI, ModeFields{UPIReference: "  "}, "upi_reference"},
		{"link without id", ModePaymentLink, ModeFields{}, "payment_link_id"},
		{"cash with bank account", ModeCash, ModeFields{BankAccountID: &bankID}, "bank_account_id"},
		{"cash with cheque number", ModeCash, ModeFields{ChequeNumber: "1"}, "cheque_number"},
		{"upi with link id", ModeUPI, ModeFields{UPIReference: "U1", PaymentLinkID: "L1"}, "payment_link_id"},
		{"unknown", PaymentModeKind("BARTER"), ModeFields{}, "mode"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPaymentMode(tt.kind, tt.fields)
			var verr *shared.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("first stray field is named", func(t *testing.T) {
		stray := ModeFields{ChequeNumber: "1", UPIReference: "U1", PaymentLinkID: "L1"}
		for i := 0; i < 20; i++ {
			_, err := NewPaymentMode(ModeCash, stray)
			var verr *shared.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "cheque_number", verr.Field)

			_, err = NewPaymentMode(ModeCheque, stray)
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "upi_reference", verr.Field)
		}
	})
}

func TestBook(t *testing.T) {
	assert.Equal(t, BookCash, Book(Cash{}))
	assert.Equal(t, BookBank, Book(Bank{BankAccountID: uuid.New()}))
	assert.Equal(t, BookBank, Book(UPI{TxnReference: "x"}))
}

func TestNewPayment(t *testing.T) {
	tenantID := uuid.New()
	invoiceID := uuid.New()
	bankID := uuid.New()

	t.Run("sales payment is an inflow", func(t *testing.T) {
		p, err := NewPayment(tenantID, invoiceID, partner.RetailerParty(uuid.New()), dec("400.00"), Cash{}, nil)
		require.NoError(t, err)
		assert.Equal(t, PaymentReceived, p.Direction)
		assert.True(t, p.SignedAmount().Equal(dec("400")))
		assert.Equal(t, Cash{}, p.Mode())
	})

	t.Run("purchase payment is an outflow", func(t *testing.T) {
		p, err := NewPayment(tenantID, invoiceID, partner.VendorParty(uuid.New()), dec("250"), Cheque{ChequeNumber: "77"}, &bankID)
		require.NoError(t, err)
		assert.Equal(t, PaymentMade, p.Direction)
		assert.True(t, p.SignedAmount().Equal(dec("-250")))
		assert.Equal(t, Cheque{ChequeNumber: "77", BankAccountID: &bankID}, p.Mode())
	})

	t.Run("bank book needs resolved account", func(t *testing.T) {
		_, err := NewPayment(tenantID, invoiceID, partner.RetailerParty(uuid.New()), dec("10"), UPI{TxnReference: "u"}, nil)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("amount must be positive", func(t *testing.T) {
		_, err := NewPayment(tenantID, invoiceID, partner.RetailerParty(uuid.New()), dec("0.001"), Cash{}, nil)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestNewLedgerEntry(t *testing.T) {
	tenantID := uuid.New()
	pool := Pool{Book: BookCash, AccountID: uuid.New()}

	t.Run("splits signed amount", func(t *testing.T) {
		in, err := NewLedgerEntry(tenantID, pool, time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC), "receipt", dec("400"), LedgerReference{Type: RefPayment})
		require.NoError(t, err)
		assert.True(t, in.Inflow.Equal(dec("400")))
		assert.True(t, in.Outflow.IsZero())
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), in.EntryDate)

		out, err := NewLedgerEntry(tenantID, pool, time.Now(), "rent", dec("-150"), LedgerReference{Type: RefExpense})
		require.NoError(t, err)
		assert.True(t, out.Outflow.Equal(dec("150")))
		assert.True(t, out.SignedAmount().Equal(dec("-150")))
	})

	t.Run("rejects zero", func(t *testing.T) {
		_, err := NewLedgerEntry(tenantID, pool, time.Now(), "", decimal.Zero, LedgerReference{Type: RefManual})
		assert.Error(t, err)
	})

	t.Run("rejects missing pool", func(t *testing.T) {
		_, err := NewLedgerEntry(tenantID, Pool{Book: BookBank}, time.Now(), "", dec("1"), LedgerReference{Type: RefManual})
		assert.Error(t, err)
	})
}

func TestRechain(t *testing.T) {
	tenantID := uuid.New()
	pool := Pool{Book: BookBank, AccountID: uuid.New()}
	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }

	var entries []*LedgerEntry
	for i, amt := range []string{"1000", "-250.50", "75.25", "-24.75"} {
		e, err := NewLedgerEntry(tenantID, pool, day(i+1), "", dec(amt), LedgerReference{Type: RefManual})
		require.NoError(t, err)
		e.Sequence = int64(i + 1)
		entries = append(entries, e)
	}

	last := Rechain(dec("500"), entries)
	assert.True(t, last.Equal(dec("1300")))

	prev := dec("500")
	for _, e := range entries {
		assert.True(t, e.Balance.Equal(prev.Add(e.SignedAmount())))
		prev = e.Balance
	}
	assert.True(t, entries[0].Before(entries[1]))
}

func TestNewExpense(t *testing.T) {
	tenantID := uuid.New()

	t.Run("cash expense", func(t *testing.T) {
		e, err := NewExpense(tenantID, ExpenseLabour, dec("300"), Cash{}, time.Now(), "hamali")
		require.NoError(t, err)
		assert.Equal(t, BookCash, e.Book)
		assert.Nil(t, e.BankAccountID)
	})

	t.Run("bank expense", func(t *testing.T) {
		bankID := uuid.New()
		e, err := NewExpense(tenantID, ExpenseRent, dec("15000"), Bank{BankAccountID: bankID}, time.Now(), "shop rent")
		require.NoError(t, err)
		assert.Equal(t, BookBank, e.Book)
		assert.Equal(t, bankID, *e.BankAccountID)
	})

	t.Run("upi not accepted", func(t *testing.T) {
		_, err := NewExpense(tenantID, ExpenseOther, dec("10"), UPI{TxnReference: "x"}, time.Now(), "")
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := NewExpense(tenantID, ExpenseCategory("BRIBE"), dec("10"), Cash{}, time.Now(), "")
		assert.Error(t, err)
	})
}

func TestAccounts(t *testing.T) {
	tenantID := uuid.New()

	cash, err := NewCashAccount(tenantID, dec("100"))
	require.NoError(t, err)
	assert.Equal(t, BookCash, cash.Pool().Book)
	assert.True(t, cash.Balance.Equal(dec("100")))
	assert.Equal(t, int64(1), cash.State().NextSequence())
	assert.Equal(t, int64(2), cash.State().NextSequence())

	bank, err := NewBankAccount(tenantID, "SBI", "1234 5678 90", "sbin0001", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", bank.AccountNumber)
	assert.Equal(t, "SBIN0001", bank.IFSC)
	assert.Equal(t, Pool{Book: BookBank, AccountID: bank.ID}, bank.Pool())

	_, err = NewBankAccount(tenantID, "SBI", "  ", "", decimal.Zero)
	assert.Error(t, err)
}
