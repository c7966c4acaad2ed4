package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/usecase"
	"github.com/iho/leaseledger/internal/usecase/mocks"
)

const tenant = "tenant-1"

var fixedNow = time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// activeLease is a 24-month monthly lease: 1000/month at 6%, with round initial
// balances so period values are easy to check.
func activeLease(id, number string) *domain.Lease {
	return &domain.Lease{
		ID:                    id,
		TenantID:              tenant,
		LeaseNumber:           number,
		AssetDescription:      "Office " + number,
		CommencementDate:      date(2024, 1, 1),
		EndDate:               date(2026, 1, 1),
		LeasePayment:          dec("1000"),
		PaymentFrequency:      domain.FrequencyMonthly,
		DiscountRate:          dec("0.06"),
		InitialROUAsset:       dec("24000"),
		InitialLeaseLiability: dec("20000"),
		Currency:              "USD",
		Status:                domain.LeaseStatusActive,
		CreatedAt:             fixedNow,
	}
}

func calculatedRow(id, leaseID string, period time.Time) *domain.LeaseCalculation {
	return &domain.LeaseCalculation{
		ID:                      id,
		LeaseID:                 leaseID,
		TenantID:                tenant,
		PeriodDate:              period,
		BeginningROUAsset:       dec("24000"),
		BeginningLeaseLiability: dec("20000"),
		LeasePayment:            dec("1000"),
		InterestExpense:         dec("100"),
		AmortizationExpense:     dec("1000"),
		EndingROUAsset:          dec("23000"),
		EndingLeaseLiability:    dec("19100"),
		CalculatedAt:            fixedNow,
		Status:                  domain.CalculationStatusCalculated,
	}
}

// failingCalcRepo fails Create for selected leases a given number of times.
type failingCalcRepo struct {
	*mocks.MockCalculationRepository

	mu       sync.Mutex
	failures map[string]int // lease id -> remaining failures, <0 means always
	err      error
}

func newFailingCalcRepo(inner *mocks.MockCalculationRepository, err error) *failingCalcRepo {
	return &failingCalcRepo{
		MockCalculationRepository: inner,
		failures:                  make(map[string]int),
		err:                       err,
	}
}

func (r *failingCalcRepo) failFor(leaseID string, times int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[leaseID] = times
}

func (r *failingCalcRepo) Create(ctx context.Context, tx usecase.Transaction, calc *domain.LeaseCalculation) error {
	r.mu.Lock()
	n, ok := r.failures[calc.LeaseID]
	if ok && n != 0 {
		if n > 0 {
			r.failures[calc.LeaseID] = n - 1
		}
		r.mu.Unlock()
		return r.err
	}
	r.mu.Unlock()
	return r.MockCalculationRepository.Create(ctx, tx, calc)
}

var errDatabaseDown = errors.New("connection reset by peer")

// recordingMetrics captures the last observations.
type recordingMetrics struct {
	mu              sync.Mutex
	periodEnd       []string
	leaseFailures   int
	postings        []string
	erpCallOutcomes []string
}

func (m *recordingMetrics) ObservePeriodEnd(outcome string, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodEnd = append(m.periodEnd, outcome)
}

func (m *recordingMetrics) IncLeaseCalculationFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaseFailures++
}

func (m *recordingMetrics) ObservePosting(outcome string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings = append(m.postings, outcome)
}

func (m *recordingMetrics) ObserveERPCall(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.erpCallOutcomes = append(m.erpCallOutcomes, outcome)
}
