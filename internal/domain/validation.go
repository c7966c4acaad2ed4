package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency   = errors.New("invalid currency code")
	ErrInvalidLeaseNo    = errors.New("invalid lease number")
	ErrRateOutOfRange    = errors.New("discount rate out of range")
	ErrPaymentOutOfRange = errors.New("lease payment out of range")
)

// Validation constants
const (
	MaxLeaseNumberLength = 64
	MaxDiscountRate      = "1"             // 100% per annum
	MaxLeasePayment      = "1000000000000" // 1 trillion
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"IDR": true, "DKK": true, "PLN": true, "AED": true,
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateLeaseNumber validates the human-facing lease number.
func ValidateLeaseNumber(number string) error {
	number = strings.TrimSpace(number)

	if number == "" {
		return fmt.Errorf("%w: lease number cannot be empty", ErrInvalidLeaseNo)
	}

	if len(number) > MaxLeaseNumberLength {
		return fmt.Errorf("%w: lease number exceeds %d characters", ErrInvalidLeaseNo, MaxLeaseNumberLength)
	}

	return nil
}

// ValidateDiscountRate checks an annual rate expressed as a fraction (0.06 = 6%).
func ValidateDiscountRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: rate cannot be negative", ErrRateOutOfRange)
	}

	maxRate := decimal.RequireFromString(MaxDiscountRate)
	if rate.GreaterThan(maxRate) {
		return fmt.Errorf("%w: rate must be a fraction not above %s", ErrRateOutOfRange, MaxDiscountRate)
	}

	return nil
}

// ValidateLeasePayment checks the periodic payment amount.
func ValidateLeasePayment(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: payment cannot be negative", ErrPaymentOutOfRange)
	}

	maxAmount := decimal.RequireFromString(MaxLeasePayment)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum payment is %s", ErrPaymentOutOfRange, MaxLeasePayment)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
