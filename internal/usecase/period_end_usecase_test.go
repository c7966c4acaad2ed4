package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
	"github.com/iho/leaseledger/internal/usecase"
	"github.com/iho/leaseledger/internal/usecase/mocks"
)

type periodEndFixture struct {
	uc      *usecase.PeriodEndUseCase
	leases  *mocks.MockLeaseRepository
	calcs   *mocks.MockCalculationRepository
	failing *failingCalcRepo
	locker  *mocks.MockLocker
	retrier *mocks.MockRetrier
	metrics *recordingMetrics
	txMgr   *mocks.MockTransactionManager
}

func newPeriodEndFixture(concurrency int, leases ...*domain.Lease) *periodEndFixture {
	f := &periodEndFixture{
		leases:  mocks.NewMockLeaseRepository(leases...),
		calcs:   mocks.NewMockCalculationRepository(),
		locker:  mocks.NewMockLocker(),
		retrier: &mocks.MockRetrier{Attempts: 3},
		metrics: &recordingMetrics{},
		txMgr:   mocks.NewMockTransactionManager(),
	}
	f.failing = newFailingCalcRepo(f.calcs, errDatabaseDown)

	f.uc = usecase.NewPeriodEndUseCase(usecase.PeriodEndConfig{
		TxManager:   f.txMgr,
		LeaseRepo:   f.leases,
		CalcRepo:    f.failing,
		IDGen:       mocks.NewMockIDGenerator(),
		Retrier:     f.retrier,
		Locker:      f.locker,
		Calculator:  schedule.New().WithNow(func() time.Time { return fixedNow }),
		Metrics:     f.metrics,
		Logger:      zerolog.Nop(),
		Concurrency: concurrency,
	})
	f.uc.WithNow(func() time.Time { return fixedNow })

	return f
}

func TestPeriodEndUseCase_RunPeriodEnd_FirstPeriodUsesInitialBalances(t *testing.T) {
	f := newPeriodEndFixture(1, activeLease("lease-1", "L-001"), activeLease("lease-2", "L-002"))

	result, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Empty(t, result.Failures)
	assert.Equal(t, "Processed 2 out of 2 leases", result.Message())
	require.Len(t, result.Calculations, 2)

	calc := result.Calculations[0]
	assert.Equal(t, "lease-1", calc.LeaseID)
	assert.NotEmpty(t, calc.ID)
	assert.True(t, calc.BeginningROUAsset.Equal(dec("24000")))
	assert.True(t, calc.BeginningLeaseLiability.Equal(dec("20000")))
	assert.True(t, calc.InterestExpense.Equal(dec("100")), calc.InterestExpense.String())
	assert.True(t, calc.AmortizationExpense.Equal(dec("1000")))
	assert.True(t, calc.EndingLeaseLiability.Equal(dec("19100")))
	assert.True(t, calc.EndingROUAsset.Equal(dec("23000")))
	assert.Equal(t, domain.CalculationStatusCalculated, calc.Status)
	assert.False(t, calc.PostedToERP)

	assert.Len(t, f.calcs.All(), 2)

	stored := f.leases.Get("lease-1")
	require.NotNil(t, stored.LastCalculationDate)
	assert.Equal(t, fixedNow, *stored.LastCalculationDate)
	assert.Equal(t, []string{usecase.OutcomeSuccess}, f.metrics.periodEnd)
}

func TestPeriodEndUseCase_RunPeriodEnd_ChainsFromLatestPriorCalculation(t *testing.T) {
	f := newPeriodEndFixture(1, activeLease("lease-1", "L-001"))

	_, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 1, 1))
	require.NoError(t, err)

	result, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)
	require.Len(t, result.Calculations, 1)

	calc := result.Calculations[0]
	assert.True(t, calc.BeginningROUAsset.Equal(dec("23000")))
	assert.True(t, calc.BeginningLeaseLiability.Equal(dec("19100")))
	assert.True(t, calc.InterestExpense.Equal(dec("95.5")), calc.InterestExpense.String())
	assert.True(t, calc.EndingLeaseLiability.Equal(dec("18195.5")))
	assert.True(t, calc.EndingROUAsset.Equal(dec("22000")))
}

func TestPeriodEndUseCase_RunPeriodEnd_PartialFailure(t *testing.T) {
	f := newPeriodEndFixture(1,
		activeLease("lease-1", "L-001"),
		activeLease("lease-2", "L-002"),
		activeLease("lease-3", "L-003"),
	)
	f.failing.failFor("lease-2", -1)

	result, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)

	assert.False(t, result.Success())
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, "Processed 2 out of 3 leases", result.Message())

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "lease-2", result.Failures[0].LeaseID)
	assert.Equal(t, "L-002", result.Failures[0].LeaseNumber)
	assert.ErrorIs(t, result.Failures[0].Err, errDatabaseDown)

	stored := f.calcs.All()
	require.Len(t, stored, 2)
	assert.Equal(t, "lease-1", stored[0].LeaseID)
	assert.Equal(t, "lease-3", stored[1].LeaseID)

	assert.Nil(t, f.leases.Get("lease-2").LastCalculationDate)
	assert.Equal(t, 1, f.metrics.leaseFailures)
	assert.Equal(t, []string{usecase.OutcomePartial}, f.metrics.periodEnd)
}

func TestPeriodEndUseCase_RunPeriodEnd_RetriesTransientErrors(t *testing.T) {
	f := newPeriodEndFixture(1, activeLease("lease-1", "L-001"))
	f.failing.failFor("lease-1", 2)

	result, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Equal(t, 3, f.retrier.Calls())
	assert.Len(t, f.calcs.All(), 1)
}

func TestPeriodEndUseCase_RunPeriodEnd_RerunSkipsCalculatedLeases(t *testing.T) {
	f := newPeriodEndFixture(1, activeLease("lease-1", "L-001"), activeLease("lease-2", "L-002"))
	ctx := context.Background()

	_, err := f.uc.RunPeriodEnd(ctx, tenant, date(2024, 2, 1))
	require.NoError(t, err)

	result, err := f.uc.RunPeriodEnd(ctx, tenant, date(2024, 2, 1))
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 2, result.Skipped)
	assert.Empty(t, result.Calculations)
	assert.Len(t, f.calcs.All(), 2)
	assert.Contains(t, result.Message(), "2 already calculated")
}

func TestPeriodEndUseCase_RunPeriodEnd_RejectsOverlappingRun(t *testing.T) {
	f := newPeriodEndFixture(1, activeLease("lease-1", "L-001"))
	ok, err := f.locker.Acquire(context.Background(), "period-end:"+tenant+":2024-02-01", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
	assert.Empty(t, f.calcs.All())
}

func TestPeriodEndUseCase_RunPeriodEnd_ReleasesLock(t *testing.T) {
	f := newPeriodEndFixture(1, activeLease("lease-1", "L-001"))

	_, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)
	assert.False(t, f.locker.Held("period-end:"+tenant+":2024-02-01"))
}

func TestPeriodEndUseCase_RunPeriodEnd_Errors(t *testing.T) {
	t.Run("missing tenant", func(t *testing.T) {
		f := newPeriodEndFixture(1)
		_, err := f.uc.RunPeriodEnd(context.Background(), "", date(2024, 2, 1))
		assert.ErrorIs(t, err, domain.ErrMissingTenant)
	})

	t.Run("lease query fails", func(t *testing.T) {
		f := newPeriodEndFixture(1)
		f.leases.GetActiveAsOfFunc = func(context.Context, string, time.Time) ([]*domain.Lease, error) {
			return nil, errDatabaseDown
		}
		_, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
		assert.ErrorIs(t, err, errDatabaseDown)
		assert.Equal(t, []string{usecase.OutcomeFailure}, f.metrics.periodEnd)
	})

	t.Run("lock backend fails", func(t *testing.T) {
		f := newPeriodEndFixture(1)
		f.locker.AcquireFunc = func(context.Context, string, time.Duration) (bool, error) {
			return false, errors.New("redis unavailable")
		}
		_, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrRunInProgress)
	})
}

func TestPeriodEndUseCase_RunPeriodEnd_InvalidLeaseIsReportedNotFatal(t *testing.T) {
	bad := activeLease("lease-1", "L-001")
	bad.PaymentFrequency = 0
	f := newPeriodEndFixture(1, bad, activeLease("lease-2", "L-002"))

	result, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0].Err, domain.ErrInvalidLease)
}

func TestPeriodEndUseCase_RunPeriodEnd_SelectsCoveringLeasesOnly(t *testing.T) {
	ended := activeLease("lease-2", "L-002")
	ended.EndDate = date(2024, 1, 15)
	draft := activeLease("lease-3", "L-003")
	draft.Status = domain.LeaseStatusDraft

	f := newPeriodEndFixture(1, activeLease("lease-1", "L-001"), ended, draft)
	f.leases.GetActiveAsOfFunc = func(context.Context, string, time.Time) ([]*domain.Lease, error) {
		return []*domain.Lease{activeLease("lease-1", "L-001"), ended, draft}, nil
	}

	result, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Succeeded)
}

func TestPeriodEndUseCase_RunPeriodEnd_EmptyTenant(t *testing.T) {
	f := newPeriodEndFixture(1)

	result, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, []string{usecase.OutcomeEmpty}, f.metrics.periodEnd)
}

func TestPeriodEndUseCase_RunPeriodEnd_Concurrent(t *testing.T) {
	var leases []*domain.Lease
	for i := 1; i <= 20; i++ {
		leases = append(leases, activeLease(fmt.Sprintf("lease-%02d", i), fmt.Sprintf("L-%03d", i)))
	}
	f := newPeriodEndFixture(4, leases...)
	f.failing.failFor("lease-07", -1)

	result, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, 20, result.Total)
	assert.Equal(t, 19, result.Succeeded)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "lease-07", result.Failures[0].LeaseID)
	assert.Len(t, f.calcs.All(), 19)
	// three attempts for the failing lease, one for each of the others
	assert.Equal(t, 22, f.txMgr.Begun())
}

func TestPeriodEndUseCase_RunPeriodEnd_BoundsLeaseTransaction(t *testing.T) {
	f := newPeriodEndFixture(1, activeLease("lease-1", "L-001"))

	var deadline time.Time
	f.calcs.CreateFunc = func(ctx context.Context, tx usecase.Transaction, calc *domain.LeaseCalculation) error {
		var ok bool
		deadline, ok = ctx.Deadline()
		assert.True(t, ok, "calculation insert should run under a deadline")
		return nil
	}

	start := time.Now()
	result, err := f.uc.RunPeriodEnd(context.Background(), tenant, date(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.False(t, deadline.After(start.Add(usecase.DefaultTransactionTimeout+time.Second)))
}
