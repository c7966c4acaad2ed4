package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
)

// PeriodEndUseCase advances every active lease of a tenant by one period.
type PeriodEndUseCase struct {
	txManager   TransactionManager
	leaseRepo   LeaseRepository
	calcRepo    CalculationRepository
	idGen       IDGenerator
	retrier     Retrier
	locker      Locker
	calculator  *schedule.Calculator
	metrics     MetricsRecorder
	logger      zerolog.Logger
	concurrency int
	lockTTL     time.Duration
	now         func() time.Time
}

// PeriodEndConfig wires a PeriodEndUseCase. Retrier, Locker, Calculator and
// Metrics are optional.
type PeriodEndConfig struct {
	TxManager   TransactionManager
	LeaseRepo   LeaseRepository
	CalcRepo    CalculationRepository
	IDGen       IDGenerator
	Retrier     Retrier
	Locker      Locker
	Calculator  *schedule.Calculator
	Metrics     MetricsRecorder
	Logger      zerolog.Logger
	Concurrency int // leases processed in parallel; 1 keeps the sequential order
	LockTTL     time.Duration
}

// NewPeriodEndUseCase creates a new PeriodEndUseCase.
func NewPeriodEndUseCase(cfg PeriodEndConfig) *PeriodEndUseCase {
	if cfg.Calculator == nil {
		cfg.Calculator = schedule.New()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}

	return &PeriodEndUseCase{
		txManager:   cfg.TxManager,
		leaseRepo:   cfg.LeaseRepo,
		calcRepo:    cfg.CalcRepo,
		idGen:       cfg.IDGen,
		retrier:     cfg.Retrier,
		locker:      cfg.Locker,
		calculator:  cfg.Calculator,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
		lockTTL:     cfg.LockTTL,
		now:         time.Now,
	}
}

// WithNow overrides the clock used for the last-calculation marker.
func (uc *PeriodEndUseCase) WithNow(now func() time.Time) {
	if now != nil {
		uc.now = now
	}
}

// LeaseFailure describes why one lease could not be advanced.
type LeaseFailure struct {
	LeaseID     string
	LeaseNumber string
	Err         error
}

// PeriodEndResult is the outcome of a period-end run.
type PeriodEndResult struct {
	TenantID     string
	PeriodDate   time.Time
	Total        int
	Succeeded    int
	Skipped      int // already calculated for this period
	Failures     []LeaseFailure
	Calculations []*domain.LeaseCalculation
}

// Success reports whether every selected lease was processed.
func (r *PeriodEndResult) Success() bool {
	return r.Succeeded+r.Skipped == r.Total
}

// Message renders a human-readable summary.
func (r *PeriodEndResult) Message() string {
	msg := fmt.Sprintf("Processed %d out of %d leases", r.Succeeded+r.Skipped, r.Total)
	if r.Skipped > 0 {
		msg += fmt.Sprintf(" (%d already calculated)", r.Skipped)
	}
	return msg
}

// RunPeriodEnd calculates and stores one period for every active lease covering
// periodDate. A failing lease is logged and reported in the result; it never
// stops the others. The returned error is reserved for failures before any lease
// was processed.
func (uc *PeriodEndUseCase) RunPeriodEnd(ctx context.Context, tenantID string, periodDate time.Time) (*PeriodEndResult, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	start := time.Now()
	periodDate = schedule.NormalizeDate(periodDate)
	log := uc.logger.With().
		Str("tenant_id", tenantID).
		Str("period_date", periodDate.Format(time.DateOnly)).
		Logger()

	release, err := uc.lock(ctx, periodEndLockKey(tenantID, periodDate))
	if err != nil {
		return nil, err
	}
	defer release()

	log.Info().Msg("starting period-end calculations")

	leases, err := uc.leaseRepo.GetActiveAsOf(ctx, tenantID, periodDate)
	if err != nil {
		uc.metrics.ObservePeriodEnd(OutcomeFailure, 0, time.Since(start))
		log.Error().Err(err).Msg("failed to load active leases")
		return nil, fmt.Errorf("load active leases: %w", err)
	}

	selected := make([]*domain.Lease, 0, len(leases))
	for _, lease := range leases {
		if lease.CoversPeriod(periodDate) {
			selected = append(selected, lease)
		}
	}

	result := &PeriodEndResult{
		TenantID:   tenantID,
		PeriodDate: periodDate,
		Total:      len(selected),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for _, lease := range selected {
		g.Go(func() error {
			calc, err := uc.processLease(gctx, lease, periodDate)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				result.Succeeded++
				result.Calculations = append(result.Calculations, calc)
			case errors.Is(err, domain.ErrCalculationExists):
				result.Skipped++
				log.Info().
					Str("lease_id", lease.ID).
					Str("lease_number", lease.LeaseNumber).
					Msg("period already calculated for lease")
			default:
				result.Failures = append(result.Failures, LeaseFailure{
					LeaseID:     lease.ID,
					LeaseNumber: lease.LeaseNumber,
					Err:         err,
				})
				uc.metrics.IncLeaseCalculationFailure()
				log.Error().
					Err(err).
					Str("lease_id", lease.ID).
					Str("lease_number", lease.LeaseNumber).
					Msg("error calculating period for lease")
			}

			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Calculations, func(i, j int) bool {
		return result.Calculations[i].LeaseID < result.Calculations[j].LeaseID
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].LeaseID < result.Failures[j].LeaseID
	})

	outcome := OutcomeSuccess
	switch {
	case result.Total == 0:
		outcome = OutcomeEmpty
	case !result.Success() && result.Succeeded+result.Skipped == 0:
		outcome = OutcomeFailure
	case !result.Success():
		outcome = OutcomePartial
	}
	uc.metrics.ObservePeriodEnd(outcome, result.Total, time.Since(start))

	log.Info().
		Int("succeeded", result.Succeeded).
		Int("skipped", result.Skipped).
		Int("failed", len(result.Failures)).
		Int("total", result.Total).
		Msg("completed period-end calculations")

	return result, nil
}

// processLease runs the lookup, calculation, insert and marker update for one
// lease inside a single transaction.
func (uc *PeriodEndUseCase) processLease(ctx context.Context, lease *domain.Lease, periodDate time.Time) (*domain.LeaseCalculation, error) {
	if err := lease.Validate(); err != nil {
		return nil, err
	}

	var calc *domain.LeaseCalculation
	op := func() error {
		c, err := uc.calculateAndStore(ctx, lease, periodDate)
		if err != nil {
			return err
		}
		calc = c
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	return calc, nil
}

func (uc *PeriodEndUseCase) calculateAndStore(ctx context.Context, lease *domain.Lease, periodDate time.Time) (*domain.LeaseCalculation, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	beginningROU := lease.InitialROUAsset
	beginningLiability := lease.InitialLeaseLiability

	prior, err := uc.calcRepo.GetLatestBefore(txCtx, tx, lease.ID, periodDate)
	switch {
	case err == nil:
		beginningROU = prior.EndingROUAsset
		beginningLiability = prior.EndingLeaseLiability
	case errors.Is(err, domain.ErrCalculationNotFound):
	default:
		return nil, fmt.Errorf("load prior calculation: %w", err)
	}

	calc := uc.calculator.ComputePeriod(lease, periodDate, beginningROU, beginningLiability)
	calc.ID = uc.idGen.Generate()

	if err := uc.calcRepo.Create(txCtx, tx, calc); err != nil {
		if errors.Is(err, domain.ErrCalculationExists) {
			return nil, err
		}
		return nil, fmt.Errorf("store calculation: %w", err)
	}

	now := uc.now().UTC()
	updated := *lease
	updated.LastCalculationDate = &now

	if err := uc.leaseRepo.Update(txCtx, tx, &updated); err != nil {
		return nil, fmt.Errorf("update lease: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	lease.LastCalculationDate = &now

	return calc, nil
}

func (uc *PeriodEndUseCase) lock(ctx context.Context, key string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	ok, err := uc.locker.Acquire(ctx, key, uc.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire period-end lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrRunInProgress
	}

	return func() {
		if err := uc.locker.Release(context.WithoutCancel(ctx), key); err != nil {
			uc.logger.Warn().Err(err).Str("key", key).Msg("failed to release period-end lock")
		}
	}, nil
}

func periodEndLockKey(tenantID string, periodDate time.Time) string {
	return "period-end:" + tenantID + ":" + periodDate.Format(time.DateOnly)
}
