package shared

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places kept for currency amounts.
const MoneyScale = 2

// RoundMoney rounds a currency amount half away from zero to MoneyScale places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// RequirePositive returns a ValidationError unless amount > 0.
func RequirePositive(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError(field, "must be greater than zero").
			WithExpected("> 0", amount.String())
	}
	return nil
}
