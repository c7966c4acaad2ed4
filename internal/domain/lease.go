package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentFrequency is the number of months between two lease payments.
type PaymentFrequency int

const (
	FrequencyMonthly      PaymentFrequency = 1
	FrequencyQuarterly    PaymentFrequency = 3
	FrequencySemiAnnually PaymentFrequency = 6
	FrequencyAnnually     PaymentFrequency = 12
)

// Valid reports whether f is one of the supported payment intervals.
func (f PaymentFrequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiAnnually, FrequencyAnnually:
		return true
	}
	return false
}

// Months returns the payment interval in months.
func (f PaymentFrequency) Months() int {
	return int(f)
}

// PaymentsPerYear returns how many payments fall in one year.
func (f PaymentFrequency) PaymentsPerYear() int {
	return 12 / int(f)
}

func (f PaymentFrequency) String() string {
	switch f {
	case FrequencyMonthly:
		return "monthly"
	case FrequencyQuarterly:
		return "quarterly"
	case FrequencySemiAnnually:
		return "semi_annually"
	case FrequencyAnnually:
		return "annually"
	default:
		return fmt.Sprintf("frequency(%d)", int(f))
	}
}

// ParsePaymentFrequency accepts either the interval in months or its name.
func ParsePaymentFrequency(s string) (PaymentFrequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "monthly":
		return FrequencyMonthly, nil
	case "3", "quarterly":
		return FrequencyQuarterly, nil
	case "6", "semi_annually", "semiannually":
		return FrequencySemiAnnually, nil
	case "12", "annually", "annual":
		return FrequencyAnnually, nil
	}
	return 0, fmt.Errorf("%w: unknown payment frequency %q", ErrInvalidLease, s)
}

// LeaseStatus is the lifecycle state of a lease.
type LeaseStatus string

const (
	LeaseStatusDraft      LeaseStatus = "draft"
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusTerminated LeaseStatus = "terminated"
	LeaseStatusModified   LeaseStatus = "modified"
)

// Lease holds the contractual terms of a lease. Terms are immutable once active.
type Lease struct {
	ID                    string
	TenantID              string
	LeaseNumber           string
	AssetDescription      string
	CommencementDate      time.Time
	EndDate               time.Time
	LeasePayment          decimal.Decimal
	PaymentFrequency      PaymentFrequency
	DiscountRate          decimal.Decimal
	InitialROUAsset       decimal.Decimal
	InitialLeaseLiability decimal.Decimal
	Currency              string
	ERPAssetID            string
	Status                LeaseStatus
	CreatedAt             time.Time
	LastCalculationDate   *time.Time
}

// Validate checks the preconditions the schedule calculator relies on.
func (l *Lease) Validate() error {
	if err := ValidateLeaseNumber(l.LeaseNumber); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLease, err)
	}
	if !l.PaymentFrequency.Valid() {
		return fmt.Errorf("%w: payment frequency must be 1, 3, 6 or 12 months", ErrInvalidLease)
	}
	if l.CommencementDate.IsZero() || l.EndDate.IsZero() {
		return fmt.Errorf("%w: commencement and end dates are required", ErrInvalidLease)
	}
	if l.EndDate.Before(l.CommencementDate) {
		return fmt.Errorf("%w: end date is before commencement date", ErrInvalidLease)
	}
	if err := ValidateLeasePayment(l.LeasePayment); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLease, err)
	}
	if err := ValidateDiscountRate(l.DiscountRate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLease, err)
	}
	if err := ValidateCurrency(l.Currency); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLease, err)
	}
	return nil
}

// CoversPeriod reports whether the lease is active and its term includes date.
func (l *Lease) CoversPeriod(date time.Time) bool {
	if l.Status != LeaseStatusActive {
		return false
	}
	return !l.CommencementDate.After(date) && !l.EndDate.Before(date)
}

// Activate moves a draft lease to active.
func (l *Lease) Activate() error {
	if l.Status != LeaseStatusDraft {
		return fmt.Errorf("%w: cannot activate lease in status %s", ErrInvalidLeaseStatus, l.Status)
	}
	l.Status = LeaseStatusActive
	return nil
}

// Terminate ends an active lease.
func (l *Lease) Terminate() error {
	if l.Status != LeaseStatusActive {
		return fmt.Errorf("%w: cannot terminate lease in status %s", ErrInvalidLeaseStatus, l.Status)
	}
	l.Status = LeaseStatusTerminated
	return nil
}
