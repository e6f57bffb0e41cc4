package valueobject

import (
	"github.com/shopspring/decimal"
)

// ExchangeRate converts amounts between the primary and secondary currency
// using one fixed rate (units of primary per one unit of secondary). The rate
// is read once at startup and never changes for the process lifetime.
//
// Conversions always start from the authoritative source amount; a converted
// value is never converted back, so rounding error does not compound.
type ExchangeRate struct {
	rate decimal.Decimal
}

// NewExchangeRate creates an exchange rate. The rate must be positive.
func NewExchangeRate(rate decimal.Decimal) (ExchangeRate, error) {
	if !rate.IsPositive() {
		return ExchangeRate{}, NewInvalidRateError(rate)
	}
	return ExchangeRate{rate: rate}, nil
}

// Rate returns the raw rate (primary units per secondary unit)
func (r ExchangeRate) Rate() decimal.Decimal {
	return r.rate
}

// ToSecondary converts a primary-currency amount to the secondary currency,
// rounded to two decimal places.
func (r ExchangeRate) ToSecondary(primary decimal.Decimal) decimal.Decimal {
	return primary.DivRound(r.rate, 2)
}

// ToPrimary converts a secondary-currency amount to the primary currency,
// rounded to the currency's natural unit (whole units).
func (r ExchangeRate) ToPrimary(secondary decimal.Decimal) decimal.Decimal {
	return secondary.Mul(r.rate).Round(0)
}

// InvalidRateError reports a non-positive exchange rate
type InvalidRateError struct {
	Rate decimal.Decimal
}

// NewInvalidRateError creates an InvalidRateError
func NewInvalidRateError(rate decimal.Decimal) *InvalidRateError {
	return &InvalidRateError{Rate: rate}
}

// Error implements the error interface
func (e *InvalidRateError) Error() string {
	return "exchange rate must be positive, got " + e.Rate.String()
}
