package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
)

// PostingUseCase turns stored calculations into balanced ERP journal batches.
type PostingUseCase struct {
	txManager  TransactionManager
	leaseRepo  LeaseRepository
	calcRepo   CalculationRepository
	gateway    ERPGateway
	locker     Locker
	accounts   domain.ChartOfAccounts
	erpTimeout time.Duration
	lockTTL    time.Duration
	metrics    MetricsRecorder
	logger     zerolog.Logger
	now        func() time.Time
}

// PostingConfig wires a PostingUseCase. Locker and Metrics are optional.
type PostingConfig struct {
	TxManager  TransactionManager
	LeaseRepo  LeaseRepository
	CalcRepo   CalculationRepository
	Gateway    ERPGateway
	Locker     Locker
	Accounts   domain.ChartOfAccounts
	ERPTimeout time.Duration
	LockTTL    time.Duration
	Metrics    MetricsRecorder
	Logger     zerolog.Logger
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(cfg PostingConfig) *PostingUseCase {
	if cfg.ERPTimeout <= 0 {
		cfg.ERPTimeout = DefaultERPTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics{}
	}

	return &PostingUseCase{
		txManager:  cfg.TxManager,
		leaseRepo:  cfg.LeaseRepo,
		calcRepo:   cfg.CalcRepo,
		gateway:    cfg.Gateway,
		locker:     cfg.Locker,
		accounts:   cfg.Accounts.WithDefaults(),
		erpTimeout: cfg.ERPTimeout,
		lockTTL:    cfg.LockTTL,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// WithNow overrides the clock used for batch references and posting dates.
func (uc *PostingUseCase) WithNow(now func() time.Time) {
	if now != nil {
		uc.now = now
	}
}

// PostingResult is the outcome of a posting attempt.
type PostingResult struct {
	Success        bool
	Message        string
	BatchID        string
	BatchReference string
	CalculationIDs []string
}

// Posted returns the number of calculations marked as posted.
func (r *PostingResult) Posted() int {
	if !r.Success {
		return 0
	}
	return len(r.CalculationIDs)
}

// BuildTransactions renders up to three balanced entries for one calculation:
// interest accrual, amortization and the lease payment.
func (uc *PostingUseCase) BuildTransactions(calc *domain.LeaseCalculation, lease *domain.Lease) []domain.ERPTransaction {
	return BuildTransactions(uc.accounts, calc, lease)
}

// BuildTransactions renders the journal legs of calc against the given chart.
// Components that are not positive produce no legs.
func BuildTransactions(accounts domain.ChartOfAccounts, calc *domain.LeaseCalculation, lease *domain.Lease) []domain.ERPTransaction {
	accounts = accounts.WithDefaults()
	ref := lease.LeaseNumber + "-" + calc.PeriodDate.Format(PeriodReferenceLayout)

	legs := make([]domain.ERPTransaction, 0, 6)
	pair := func(amount decimal.Decimal, debitCode, debitName, debitDesc, creditCode, creditName, creditDesc string) {
		if !amount.IsPositive() {
			return
		}
		legs = append(legs,
			domain.ERPTransaction{
				TransactionDate: calc.PeriodDate,
				AccountCode:     debitCode,
				AccountName:     debitName,
				DebitAmount:     amount,
				CreditAmount:    decimal.Zero,
				Description:     debitDesc,
				Reference:       ref,
				Currency:        lease.Currency,
			},
			domain.ERPTransaction{
				TransactionDate: calc.PeriodDate,
				AccountCode:     creditCode,
				AccountName:     creditName,
				DebitAmount:     decimal.Zero,
				CreditAmount:    amount,
				Description:     creditDesc,
				Reference:       ref,
				Currency:        lease.Currency,
			},
		)
	}

	pair(calc.InterestExpense,
		accounts.InterestExpense, domain.AccountNameInterestExpense, "Interest expense for lease "+lease.LeaseNumber,
		accounts.LeaseLiability, domain.AccountNameLeaseLiability, "Increase in lease liability for "+lease.LeaseNumber)
	pair(calc.AmortizationExpense,
		accounts.AmortizationExpense, domain.AccountNameAmortizationExpense, "Amortization expense for lease "+lease.LeaseNumber,
		accounts.AccumulatedAmortization, domain.AccountNameAccumulatedAmortization, "Accumulated amortization for "+lease.LeaseNumber)
	pair(calc.LeasePayment,
		accounts.LeaseLiability, domain.AccountNameLeaseLiability, "Lease payment for "+lease.LeaseNumber,
		accounts.Cash, domain.AccountNameCash, "Cash payment for lease "+lease.LeaseNumber)

	return legs
}

// BuildRequest assembles a posting batch from calcs. Calculations whose lease
// cannot be found are left out; the returned slice holds the ones included.
func (uc *PostingUseCase) BuildRequest(ctx context.Context, tenantID string, calcs []*domain.LeaseCalculation) (*domain.PostingRequest, []*domain.LeaseCalculation, error) {
	leases := make(map[string]*domain.Lease)
	included := make([]*domain.LeaseCalculation, 0, len(calcs))
	legs := make([]domain.ERPTransaction, 0, len(calcs)*6)

	for _, calc := range calcs {
		lease, ok := leases[calc.LeaseID]
		if !ok {
			l, err := uc.leaseRepo.GetByID(ctx, tenantID, calc.LeaseID)
			if errors.Is(err, domain.ErrLeaseNotFound) {
				uc.logger.Warn().
					Str("calculation_id", calc.ID).
					Str("lease_id", calc.LeaseID).
					Msg("lease not found for calculation, excluding from batch")
				continue
			}
			if err != nil {
				return nil, nil, fmt.Errorf("load lease %s: %w", calc.LeaseID, err)
			}
			leases[calc.LeaseID] = l
			lease = l
		}

		legs = append(legs, uc.BuildTransactions(calc, lease)...)
		included = append(included, calc)
	}

	if len(included) == 0 {
		return nil, nil, domain.ErrNoValidCalculations
	}

	now := uc.now().UTC()
	req := &domain.PostingRequest{
		Transactions:   legs,
		BatchReference: "IFRS16-" + now.Format(BatchReferenceLayout),
		PostingDate:    included[0].PeriodDate,
		Description:    fmt.Sprintf("IFRS16 Lease Calculations - %d leases", len(included)),
	}

	return req, included, nil
}

// PostBatch submits the given calculations to the ERP in one batch and, only on
// acceptance, marks every one of them as posted in a single transaction. Unknown
// or already posted IDs are skipped.
func (uc *PostingUseCase) PostBatch(ctx context.Context, tenantID string, calculationIDs []string) (*PostingResult, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	ids := uniqueIDs(calculationIDs)

	// Postability is only decided under the locks; a row read before them may
	// have been posted by a concurrent batch in between.
	release, err := uc.lockAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	defer release()

	calcs, err := uc.loadPostable(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	if len(calcs) == 0 {
		uc.logger.Warn().Str("tenant_id", tenantID).Msg("no valid calculations found for posting")
		uc.metrics.ObservePosting(OutcomeEmpty, 0)
		return &PostingResult{Message: "No valid calculations found for posting"}, domain.ErrNoValidCalculations
	}

	return uc.post(ctx, tenantID, calcs)
}

// PostPeriod posts every unposted calculated row of the period. A period with
// nothing left to post is a success.
func (uc *PostingUseCase) PostPeriod(ctx context.Context, tenantID string, periodDate time.Time) (*PostingResult, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	periodDate = schedule.NormalizeDate(periodDate)

	calcs, err := uc.calcRepo.GetForPeriod(ctx, tenantID, periodDate)
	if err != nil {
		return nil, fmt.Errorf("load period calculations: %w", err)
	}

	ids := make([]string, 0, len(calcs))
	for _, calc := range calcs {
		if calc.Postable() {
			ids = append(ids, calc.ID)
		}
	}

	if len(ids) == 0 {
		return &PostingResult{
			Success: true,
			Message: "No unposted calculations found for period " + periodDate.Format(time.DateOnly),
		}, nil
	}

	return uc.PostBatch(ctx, tenantID, ids)
}

func (uc *PostingUseCase) post(ctx context.Context, tenantID string, calcs []*domain.LeaseCalculation) (*PostingResult, error) {
	req, included, err := uc.BuildRequest(ctx, tenantID, calcs)
	if errors.Is(err, domain.ErrNoValidCalculations) {
		uc.metrics.ObservePosting(OutcomeEmpty, 0)
		return &PostingResult{Message: "No valid calculations found for posting"}, err
	}
	if err != nil {
		return nil, err
	}

	log := uc.logger.With().
		Str("tenant_id", tenantID).
		Str("batch_reference", req.BatchReference).
		Int("calculations", len(included)).
		Int("transactions", len(req.Transactions)).
		Logger()

	erpCtx, cancel := context.WithTimeout(ctx, uc.erpTimeout)
	defer cancel()

	start := time.Now()
	resp, err := uc.gateway.PostBatch(erpCtx, req)
	if err != nil {
		uc.metrics.ObserveERPCall(OutcomeFailure, time.Since(start))
		uc.metrics.ObservePosting(OutcomeFailure, len(included))
		log.Error().Err(err).Msg("ERP posting failed")
		return &PostingResult{
			BatchReference: req.BatchReference,
			Message:        "ERP posting failed: " + err.Error(),
		}, fmt.Errorf("%w: %w", domain.ErrIntegration, err)
	}
	if resp == nil || !resp.Success {
		msg := rejectionMessage(resp)
		uc.metrics.ObserveERPCall(OutcomeFailure, time.Since(start))
		uc.metrics.ObservePosting(OutcomeFailure, len(included))
		log.Error().Str("reason", msg).Msg("ERP rejected posting batch")
		return &PostingResult{
			BatchReference: req.BatchReference,
			Message:        msg,
		}, fmt.Errorf("%w: %s", domain.ErrIntegration, msg)
	}
	uc.metrics.ObserveERPCall(OutcomeSuccess, time.Since(start))

	postedAt := uc.now().UTC()
	if err := uc.markPosted(ctx, included, resp.BatchID, postedAt); err != nil {
		uc.metrics.ObservePosting(OutcomeFailure, len(included))
		log.Error().Err(err).Str("batch_id", resp.BatchID).
			Msg("ERP accepted batch but marking calculations as posted failed")
		return nil, err
	}

	ids := make([]string, len(included))
	for i, calc := range included {
		calc.MarkPosted(resp.BatchID, postedAt)
		ids[i] = calc.ID
	}

	uc.metrics.ObservePosting(OutcomeSuccess, len(included))
	log.Info().Str("batch_id", resp.BatchID).Msg("posted calculations to ERP")

	return &PostingResult{
		Success:        true,
		Message:        fmt.Sprintf("Successfully posted %d calculations to ERP", len(included)),
		BatchID:        resp.BatchID,
		BatchReference: req.BatchReference,
		CalculationIDs: ids,
	}, nil
}

func (uc *PostingUseCase) markPosted(ctx context.Context, calcs []*domain.LeaseCalculation, batchID string, postedAt time.Time) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	for _, calc := range calcs {
		if err := uc.calcRepo.MarkPosted(txCtx, tx, calc.ID, batchID, postedAt); err != nil {
			return fmt.Errorf("mark calculation %s posted: %w", calc.ID, err)
		}
	}

	return tx.Commit(txCtx)
}

func (uc *PostingUseCase) loadPostable(ctx context.Context, tenantID string, ids []string) ([]*domain.LeaseCalculation, error) {
	calcs := make([]*domain.LeaseCalculation, 0, len(ids))

	for _, id := range ids {
		calc, err := uc.calcRepo.GetByID(ctx, tenantID, id)
		if errors.Is(err, domain.ErrCalculationNotFound) {
			uc.logger.Debug().Str("calculation_id", id).Msg("calculation not found, skipping")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load calculation %s: %w", id, err)
		}
		if !calc.Postable() {
			uc.logger.Warn().
				Str("calculation_id", id).
				Str("status", string(calc.Status)).
				Bool("posted_to_erp", calc.PostedToERP).
				Msg("calculation not postable, skipping")
			continue
		}

		calcs = append(calcs, calc)
	}

	return calcs, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// lockAll takes a posting lock per calculation in ID order so that two
// overlapping batches cannot deadlock each other.
func (uc *PostingUseCase) lockAll(ctx context.Context, ids []string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "posting:calculation:" + id
	}
	sort.Strings(keys)

	held := make([]string, 0, len(keys))
	release := func() {
		bg := context.WithoutCancel(ctx)
		for _, key := range held {
			if err := uc.locker.Release(bg, key); err != nil {
				uc.logger.Warn().Err(err).Str("key", key).Msg("failed to release posting lock")
			}
		}
	}

	for _, key := range keys {
		ok, err := uc.locker.Acquire(ctx, key, uc.lockTTL)
		if err != nil {
			release()
			return nil, fmt.Errorf("acquire posting lock: %w", err)
		}
		if !ok {
			release()
			return nil, domain.ErrPostingInProgress
		}
		held = append(held, key)
	}

	return release, nil
}

func rejectionMessage(resp *domain.PostingResponse) string {
	if resp == nil {
		return "ERP returned an empty response"
	}
	if len(resp.Errors) > 0 {
		if resp.Message != "" {
			return resp.Message + ": " + strings.Join(resp.Errors, "; ")
		}
		return strings.Join(resp.Errors, "; ")
	}
	if resp.Message != "" {
		return resp.Message
	}
	return "ERP rejected the batch"
}
