package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
	"github.com/iho/leaseledger/internal/usecase"
	"github.com/iho/leaseledger/internal/usecase/mocks"
)

func storedSchedule(lease *domain.Lease, periods int) []*domain.LeaseCalculation {
	rows := schedule.New().WithNow(func() time.Time { return fixedNow }).ComputeSchedule(lease)[:periods]
	for i, r := range rows {
		r.ID = lease.ID + "-" + r.PeriodDate.Format("2006-01")
		r.TenantID = lease.TenantID
		if i == 0 {
			r.MarkPosted("ERP-B-1", fixedNow)
		}
	}
	return rows
}

func TestReconciliationUseCase_ReconcileLease(t *testing.T) {
	lease := activeLease("lease-1", "L-001")

	t.Run("consistent chain", func(t *testing.T) {
		uc := usecase.NewReconciliationUseCase(
			mocks.NewMockLeaseRepository(lease),
			mocks.NewMockCalculationRepository(storedSchedule(lease, 3)...),
		)
		uc.WithNow(func() time.Time { return fixedNow })

		result, err := uc.ReconcileLease(context.Background(), tenant, "lease-1")
		require.NoError(t, err)
		assert.True(t, result.IsReconciled, "%v", result.Breaks)
		assert.Equal(t, fixedNow.UTC(), result.LastChecked)
		assert.Equal(t, 3, result.Periods)
		assert.Equal(t, 1, result.Posted)
	})

	t.Run("broken chain", func(t *testing.T) {
		rows := storedSchedule(lease, 3)
		rows[1].BeginningLeaseLiability = rows[1].BeginningLeaseLiability.Add(dec("1"))
		rows[2].ERPTransactionID = ""
		rows[2].PostedToERP = true

		uc := usecase.NewReconciliationUseCase(
			mocks.NewMockLeaseRepository(lease),
			mocks.NewMockCalculationRepository(rows...),
		)

		result, err := uc.ReconcileLease(context.Background(), tenant, "lease-1")
		require.NoError(t, err)
		assert.False(t, result.IsReconciled)

		var reasons []string
		for _, b := range result.Breaks {
			reasons = append(reasons, b.CalculationID+": "+b.Reason)
		}
		assert.Contains(t, reasons, "lease-1-2024-02: beginning liability 19101, expected 19100")
		assert.Len(t, result.Breaks, 3)
	})

	t.Run("unknown lease", func(t *testing.T) {
		uc := usecase.NewReconciliationUseCase(mocks.NewMockLeaseRepository(), mocks.NewMockCalculationRepository())
		_, err := uc.ReconcileLease(context.Background(), tenant, "nope")
		assert.ErrorIs(t, err, domain.ErrLeaseNotFound)
	})
}

func TestReconciliationUseCase_GenerateReconciliationReport(t *testing.T) {
	good := activeLease("lease-1", "L-001")
	bad := activeLease("lease-2", "L-002")
	rows := append(storedSchedule(good, 2), storedSchedule(bad, 2)...)
	rows[3].EndingROUAsset = dec("1")

	uc := usecase.NewReconciliationUseCase(
		mocks.NewMockLeaseRepository(good, bad),
		mocks.NewMockCalculationRepository(rows...),
	)
	uc.WithNow(func() time.Time { return fixedNow })

	report, err := uc.GenerateReconciliationReport(context.Background(), tenant)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, report.CheckedAt)
	assert.Equal(t, 2, report.TotalLeases)
	assert.Equal(t, 1, report.ReconciledLeases)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, "lease-2", report.Discrepancies[0].LeaseID)
	assert.Equal(t, fixedNow, report.Discrepancies[0].LastChecked)
}

func TestReconciliationUseCase_PropagatesErrors(t *testing.T) {
	leases := mocks.NewMockLeaseRepository(activeLease("lease-1", "L-001"))
	calcs := mocks.NewMockCalculationRepository()
	calcs.ListByLeaseFunc = func(context.Context, string, string) ([]*domain.LeaseCalculation, error) {
		return nil, errors.New("query failed")
	}

	uc := usecase.NewReconciliationUseCase(leases, calcs)
	_, err := uc.GenerateReconciliationReport(context.Background(), tenant)
	assert.ErrorContains(t, err, "failed to reconcile lease lease-1")

	_, err = uc.GenerateReconciliationReport(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrMissingTenant)
}
