package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
)

// ReconciliationUseCase checks stored calculations against the balance chain
// they are supposed to form.
type ReconciliationUseCase struct {
	leaseRepo LeaseRepository
	calcRepo  CalculationRepository
	now       func() time.Time
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(leaseRepo LeaseRepository, calcRepo CalculationRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		leaseRepo: leaseRepo,
		calcRepo:  calcRepo,
		now:       time.Now,
	}
}

// WithNow overrides the clock used for check timestamps.
func (uc *ReconciliationUseCase) WithNow(now func() time.Time) {
	uc.now = now
}

// ChainBreak describes one inconsistent calculation.
type ChainBreak struct {
	CalculationID string
	PeriodDate    time.Time
	Reason        string
}

// ReconciliationResult is the outcome of checking one lease.
type ReconciliationResult struct {
	LeaseID      string
	LeaseNumber  string
	Periods      int
	Posted       int
	Breaks       []ChainBreak
	IsReconciled bool
	LastChecked  time.Time
}

// ReconcileLease verifies that each stored period starts where the previous one
// ended (the first from the lease's initial values) and that its ending balances
// follow from its components.
func (uc *ReconciliationUseCase) ReconcileLease(ctx context.Context, tenantID, leaseID string) (*ReconciliationResult, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	lease, err := uc.leaseRepo.GetByID(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	calcs, err := uc.calcRepo.ListByLease(ctx, tenantID, leaseID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		LeaseID:     lease.ID,
		LeaseNumber: lease.LeaseNumber,
		Periods:     len(calcs),
		Breaks:      make([]ChainBreak, 0),
		LastChecked: uc.now().UTC(),
	}

	expectROU := lease.InitialROUAsset
	expectLiability := lease.InitialLeaseLiability

	for _, c := range calcs {
		brk := func(format string, args ...any) {
			result.Breaks = append(result.Breaks, ChainBreak{
				CalculationID: c.ID,
				PeriodDate:    c.PeriodDate,
				Reason:        fmt.Sprintf(format, args...),
			})
		}

		if !c.BeginningROUAsset.Equal(expectROU) {
			brk("beginning ROU %s, expected %s", c.BeginningROUAsset, expectROU)
		}
		if !c.BeginningLeaseLiability.Equal(expectLiability) {
			brk("beginning liability %s, expected %s", c.BeginningLeaseLiability, expectLiability)
		}

		wantLiability := schedule.RoundMoney(decimal.Max(decimal.Zero, c.BeginningLeaseLiability.Add(c.InterestExpense).Sub(c.LeasePayment)))
		if !c.EndingLeaseLiability.Equal(wantLiability) {
			brk("ending liability %s, expected %s", c.EndingLeaseLiability, wantLiability)
		}
		wantROU := schedule.RoundMoney(decimal.Max(decimal.Zero, c.BeginningROUAsset.Sub(c.AmortizationExpense)))
		if !c.EndingROUAsset.Equal(wantROU) {
			brk("ending ROU %s, expected %s", c.EndingROUAsset, wantROU)
		}

		if c.PostedToERP {
			result.Posted++
			if c.ERPTransactionID == "" {
				brk("posted without ERP batch id")
			}
		}

		expectROU = c.EndingROUAsset
		expectLiability = c.EndingLeaseLiability
	}

	result.IsReconciled = len(result.Breaks) == 0

	return result, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TenantID         string
	TotalLeases      int
	ReconciledLeases int
	Discrepancies    []*ReconciliationResult
	CheckedAt        time.Time
}

// GenerateReconciliationReport reconciles every lease of the tenant.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context, tenantID string) (*ReconciliationReport, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	limit, offset, _ := domain.ValidatePagination(10000, 0)
	report := &ReconciliationReport{
		TenantID:      tenantID,
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     uc.now().UTC(),
	}

	for {
		leases, err := uc.leaseRepo.List(ctx, tenantID, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, lease := range leases {
			result, err := uc.ReconcileLease(ctx, tenantID, lease.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile lease %s: %w", lease.ID, err)
			}
			report.TotalLeases++
			if result.IsReconciled {
				report.ReconciledLeases++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(leases) < limit {
			break
		}
		offset += limit
	}

	return report, nil
}
