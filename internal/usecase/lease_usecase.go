package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
)

// LeaseUseCase handles lease registration, lifecycle and schedule queries.
type LeaseUseCase struct {
	txManager  TransactionManager
	leaseRepo  LeaseRepository
	calcRepo   CalculationRepository
	idGen      IDGenerator
	calculator *schedule.Calculator
	logger     zerolog.Logger
	now        func() time.Time
}

// NewLeaseUseCase creates a new LeaseUseCase. calculator may be nil.
func NewLeaseUseCase(
	txManager TransactionManager,
	leaseRepo LeaseRepository,
	calcRepo CalculationRepository,
	idGen IDGenerator,
	calculator *schedule.Calculator,
	logger zerolog.Logger,
) *LeaseUseCase {
	if calculator == nil {
		calculator = schedule.New()
	}
	return &LeaseUseCase{
		txManager:  txManager,
		leaseRepo:  leaseRepo,
		calcRepo:   calcRepo,
		idGen:      idGen,
		calculator: calculator,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateLeaseInput represents input for registering a lease.
type CreateLeaseInput struct {
	TenantID         string
	LeaseNumber      string
	AssetDescription string
	CommencementDate time.Time
	EndDate          time.Time
	LeasePayment     decimal.Decimal
	PaymentFrequency domain.PaymentFrequency
	DiscountRate     decimal.Decimal
	// Initial values are derived from the payment stream when nil.
	InitialROUAsset       *decimal.Decimal
	InitialLeaseLiability *decimal.Decimal
	Currency              string
	ERPAssetID            string
	Status                domain.LeaseStatus
}

// CreateLease validates and stores a new lease.
func (uc *LeaseUseCase) CreateLease(ctx context.Context, input CreateLeaseInput) (*domain.Lease, error) {
	if input.TenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "USD"
	}
	status := input.Status
	if status == "" {
		status = domain.LeaseStatusDraft
	}
	if status != domain.LeaseStatusDraft && status != domain.LeaseStatusActive {
		return nil, fmt.Errorf("%w: new leases must be draft or active", domain.ErrInvalidLeaseStatus)
	}

	lease := &domain.Lease{
		ID:               uc.idGen.Generate(),
		TenantID:         input.TenantID,
		LeaseNumber:      input.LeaseNumber,
		AssetDescription: input.AssetDescription,
		CommencementDate: schedule.NormalizeDate(input.CommencementDate),
		EndDate:          schedule.NormalizeDate(input.EndDate),
		LeasePayment:     input.LeasePayment,
		PaymentFrequency: input.PaymentFrequency,
		DiscountRate:     input.DiscountRate,
		Currency:         currency,
		ERPAssetID:       input.ERPAssetID,
		Status:           status,
		CreatedAt:        uc.now().UTC(),
	}

	if err := lease.Validate(); err != nil {
		return nil, err
	}

	if input.InitialLeaseLiability != nil {
		lease.InitialLeaseLiability = schedule.RoundMoney(*input.InitialLeaseLiability)
	} else {
		lease.InitialLeaseLiability = schedule.ComputeInitialLiability(lease)
	}
	if input.InitialROUAsset != nil {
		lease.InitialROUAsset = schedule.RoundMoney(*input.InitialROUAsset)
	} else {
		lease.InitialROUAsset = schedule.ComputeInitialROU(lease)
	}
	if lease.InitialROUAsset.IsNegative() || lease.InitialLeaseLiability.IsNegative() {
		return nil, fmt.Errorf("%w: initial balances must not be negative", domain.ErrInvalidLease)
	}

	if err := uc.leaseRepo.Create(ctx, lease); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("tenant_id", lease.TenantID).
		Str("lease_id", lease.ID).
		Str("lease_number", lease.LeaseNumber).
		Msg("lease created")

	return lease, nil
}

// GetLease retrieves a lease by ID.
func (uc *LeaseUseCase) GetLease(ctx context.Context, tenantID, id string) (*domain.Lease, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	return uc.leaseRepo.GetByID(ctx, tenantID, id)
}

// ListLeases lists a tenant's leases with pagination.
func (uc *LeaseUseCase) ListLeases(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Lease, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.leaseRepo.List(ctx, tenantID, limit, offset)
}

// ActivateLease moves a draft lease to active so period-end picks it up.
func (uc *LeaseUseCase) ActivateLease(ctx context.Context, tenantID, id string) (*domain.Lease, error) {
	return uc.transition(ctx, tenantID, id, (*domain.Lease).Activate)
}

// TerminateLease stops an active lease from accruing further periods.
func (uc *LeaseUseCase) TerminateLease(ctx context.Context, tenantID, id string) (*domain.Lease, error) {
	return uc.transition(ctx, tenantID, id, (*domain.Lease).Terminate)
}

func (uc *LeaseUseCase) transition(ctx context.Context, tenantID, id string, apply func(*domain.Lease) error) (*domain.Lease, error) {
	lease, err := uc.GetLease(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	from := lease.Status
	if err := apply(lease); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.leaseRepo.Update(ctx, tx, lease); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("tenant_id", tenantID).
		Str("lease_id", lease.ID).
		Str("from", string(from)).
		Str("to", string(lease.Status)).
		Msg("lease status changed")

	return lease, nil
}

// LeaseSchedule is the full projected schedule of a lease.
type LeaseSchedule struct {
	Lease        *domain.Lease
	TotalPeriods int
	Periods      []*domain.LeaseCalculation
	Summary      schedule.Summary
}

// ComputeSchedule validates lease and projects its schedule without storing it.
func (uc *LeaseUseCase) ComputeSchedule(lease *domain.Lease) (*LeaseSchedule, error) {
	if err := lease.Validate(); err != nil {
		return nil, err
	}

	periods := uc.calculator.ComputeSchedule(lease)

	return &LeaseSchedule{
		Lease:        lease,
		TotalPeriods: schedule.TotalPeriods(lease),
		Periods:      periods,
		Summary:      schedule.Summarize(periods),
	}, nil
}

// GetSchedule projects the schedule of a stored lease.
func (uc *LeaseUseCase) GetSchedule(ctx context.Context, tenantID, id string) (*LeaseSchedule, error) {
	lease, err := uc.GetLease(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return uc.ComputeSchedule(lease)
}

// ListCalculations returns the stored period calculations of a lease.
func (uc *LeaseUseCase) ListCalculations(ctx context.Context, tenantID, leaseID string) ([]*domain.LeaseCalculation, error) {
	if _, err := uc.GetLease(ctx, tenantID, leaseID); err != nil {
		return nil, err
	}
	return uc.calcRepo.ListByLease(ctx, tenantID, leaseID)
}
