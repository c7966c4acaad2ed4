// Package schedule implements the IFRS16 amortization schedule engine: the
// present value of the lease liability, straight-line right-of-use amortization
// and effective-interest accretion of the liability, period by period.
//
// Everything here is pure. Callers validate leases (domain.Lease.Validate) before
// handing them over; malformed terms are not reported as errors.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/leaseledger/internal/domain"
)

// MoneyScale is the number of decimal places kept on every amount the engine
// produces. Balances chain period to period, so each component is rounded before
// it feeds the next one.
const MoneyScale int32 = 4

// RoundMoney rounds d to MoneyScale places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Calculator computes lease schedules. The clock only stamps CalculatedAt.
type Calculator struct {
	now func() time.Time
}

// New creates a Calculator using the wall clock.
func New() *Calculator {
	return &Calculator{now: time.Now}
}

// WithNow overrides the clock for deterministic output.
func (c *Calculator) WithNow(now func() time.Time) *Calculator {
	if now != nil {
		c.now = now
	}
	return c
}

// TotalPeriods returns the number of whole payment intervals in the lease term.
// A trailing partial interval is dropped.
func TotalPeriods(lease *domain.Lease) int {
	interval := lease.PaymentFrequency.Months()
	if interval <= 0 {
		return 0
	}
	return MonthsBetween(lease.CommencementDate, lease.EndDate) / interval
}

// PeriodicRate converts the annual discount rate to the rate of one payment interval.
func PeriodicRate(lease *domain.Lease) decimal.Decimal {
	perYear := lease.PaymentFrequency.PaymentsPerYear()
	if perYear <= 0 {
		return decimal.Zero
	}
	return lease.DiscountRate.Div(decimal.NewFromInt(int64(perYear)))
}

// PresentValue discounts periods equal payments made in arrears at periodicRate.
// The discount factor is accumulated exactly, one interval per iteration; only
// the sum is rounded to MoneyScale.
func PresentValue(payment decimal.Decimal, periods int, periodicRate decimal.Decimal) decimal.Decimal {
	onePlusRate := decimal.NewFromInt(1).Add(periodicRate)
	factor := decimal.NewFromInt(1)
	pv := decimal.Zero

	for k := 1; k <= periods; k++ {
		factor = factor.Mul(onePlusRate)
		if factor.IsZero() {
			break
		}
		pv = pv.Add(payment.Div(factor))
	}

	if pv.IsNegative() {
		return decimal.Zero
	}
	return RoundMoney(pv)
}

// ComputeInitialLiability returns the present value of the lease's payment stream.
func ComputeInitialLiability(lease *domain.Lease) decimal.Decimal {
	return PresentValue(lease.LeasePayment, TotalPeriods(lease), PeriodicRate(lease))
}

// ComputeInitialROU returns the initial right-of-use asset. Prepaid rent and
// initial direct costs are not modelled, so it equals the initial liability.
func ComputeInitialROU(lease *domain.Lease) decimal.Decimal {
	return ComputeInitialLiability(lease)
}

// AmortizationPerPeriod is the straight-line charge for every period.
// A lease shorter than one interval is amortized in its only period.
func AmortizationPerPeriod(lease *domain.Lease) decimal.Decimal {
	total := TotalPeriods(lease)
	if total <= 0 {
		return RoundMoney(lease.InitialROUAsset)
	}
	return RoundMoney(lease.InitialROUAsset.Div(decimal.NewFromInt(int64(total))))
}

// ComputePeriod calculates one period from the given beginning balances.
func (c *Calculator) ComputePeriod(
	lease *domain.Lease,
	periodDate time.Time,
	beginningROU, beginningLiability decimal.Decimal,
) *domain.LeaseCalculation {
	interest := RoundMoney(beginningLiability.Mul(PeriodicRate(lease)))
	payment := lease.LeasePayment
	amortization := AmortizationPerPeriod(lease)

	endingLiability := RoundMoney(decimal.Max(decimal.Zero, beginningLiability.Add(interest).Sub(payment)))
	endingROU := RoundMoney(decimal.Max(decimal.Zero, beginningROU.Sub(amortization)))

	return &domain.LeaseCalculation{
		LeaseID:                 lease.ID,
		TenantID:                lease.TenantID,
		PeriodDate:              periodDate,
		BeginningROUAsset:       beginningROU,
		BeginningLeaseLiability: beginningLiability,
		LeasePayment:            payment,
		InterestExpense:         interest,
		AmortizationExpense:     amortization,
		EndingROUAsset:          endingROU,
		EndingLeaseLiability:    endingLiability,
		CalculatedAt:            c.now().UTC(),
		Status:                  domain.CalculationStatusCalculated,
		PostedToERP:             false,
	}
}

// PeriodDates lists the period dates from commencement to end date inclusive,
// one payment interval apart.
func PeriodDates(lease *domain.Lease) []time.Time {
	interval := lease.PaymentFrequency.Months()
	if interval <= 0 || lease.EndDate.Before(lease.CommencementDate) {
		return nil
	}

	var dates []time.Time
	for k := 0; ; k++ {
		date := AddMonths(lease.CommencementDate, k*interval)
		if date.After(lease.EndDate) {
			break
		}
		dates = append(dates, date)
	}
	return dates
}

// ComputeSchedule calculates every period of the lease, chaining each period's
// ending balances into the next one. The end date itself is a period when it
// falls on an interval boundary.
func (c *Calculator) ComputeSchedule(lease *domain.Lease) []*domain.LeaseCalculation {
	dates := PeriodDates(lease)
	calcs := make([]*domain.LeaseCalculation, 0, len(dates))

	rou := lease.InitialROUAsset
	liability := lease.InitialLeaseLiability

	for _, date := range dates {
		calc := c.ComputePeriod(lease, date, rou, liability)
		calcs = append(calcs, calc)

		rou = calc.EndingROUAsset
		liability = calc.EndingLeaseLiability
	}

	return calcs
}
