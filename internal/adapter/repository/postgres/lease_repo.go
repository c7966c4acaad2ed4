package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/infrastructure/postgres/generated"
	"github.com/iho/leaseledger/internal/usecase"
)

// LeaseRepository implements usecase.LeaseRepository.
type LeaseRepository struct {
	queries *generated.Queries
}

// NewLeaseRepository creates a new LeaseRepository.
func NewLeaseRepository(pool *pgxpool.Pool) *LeaseRepository {
	return newLeaseRepository(pool)
}

func newLeaseRepository(db generated.DBTX) *LeaseRepository {
	return &LeaseRepository{queries: generated.New(db)}
}

// Create inserts a new lease.
func (r *LeaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	err := r.queries.CreateLease(ctx, generated.CreateLeaseParams{
		ID:                    lease.ID,
		TenantID:              lease.TenantID,
		LeaseNumber:           lease.LeaseNumber,
		AssetDescription:      lease.AssetDescription,
		CommencementDate:      dateToPgDate(lease.CommencementDate),
		EndDate:               dateToPgDate(lease.EndDate),
		LeasePayment:          decimalToNumeric(lease.LeasePayment),
		PaymentFrequency:      int16(lease.PaymentFrequency),
		DiscountRate:          decimalToNumeric(lease.DiscountRate),
		InitialRouAsset:       decimalToNumeric(lease.InitialROUAsset),
		InitialLeaseLiability: decimalToNumeric(lease.InitialLeaseLiability),
		Currency:              lease.Currency,
		ErpAssetID:            lease.ERPAssetID,
		Status:                string(lease.Status),
		CreatedAt:             timeToPgTimestamptz(lease.CreatedAt),
	})
	if pgErrorCode(err) == pgErrUniqueViolation {
		return domain.ErrLeaseExists
	}

	return err
}

// GetByID retrieves a tenant's lease by ID.
func (r *LeaseRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Lease, error) {
	row, err := r.queries.GetLeaseByID(ctx, generated.GetLeaseByIDParams{TenantID: tenantID, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeaseNotFound
		}

		return nil, err
	}

	return rowToLease(row), nil
}

// List lists a tenant's leases ordered by lease number.
func (r *LeaseRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Lease, error) {
	rows, err := r.queries.ListLeases(ctx, generated.ListLeasesParams{
		TenantID: tenantID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToLeases(rows), nil
}

// GetActiveAsOf returns the tenant's active leases whose term includes date.
func (r *LeaseRepository) GetActiveAsOf(ctx context.Context, tenantID string, date time.Time) ([]*domain.Lease, error) {
	rows, err := r.queries.ListActiveLeasesAsOf(ctx, generated.ListActiveLeasesAsOfParams{
		TenantID: tenantID,
		AsOf:     dateToPgDate(date),
	})
	if err != nil {
		return nil, err
	}

	return rowsToLeases(rows), nil
}

// Update stores the mutable lease fields. Contract terms are never rewritten.
func (r *LeaseRepository) Update(ctx context.Context, tx usecase.Transaction, lease *domain.Lease) error {
	q, err := queriesFor(r.queries, tx)
	if err != nil {
		return err
	}
	n, err := q.UpdateLease(ctx, generated.UpdateLeaseParams{
		TenantID:            lease.TenantID,
		ID:                  lease.ID,
		AssetDescription:    lease.AssetDescription,
		ErpAssetID:          lease.ERPAssetID,
		Status:              string(lease.Status),
		LastCalculationDate: optionalTimestamptz(lease.LastCalculationDate),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLeaseNotFound
	}

	return nil
}

func rowsToLeases(rows []generated.Lease) []*domain.Lease {
	leases := make([]*domain.Lease, 0, len(rows))
	for _, row := range rows {
		leases = append(leases, rowToLease(row))
	}
	return leases
}

func rowToLease(row generated.Lease) *domain.Lease {
	return &domain.Lease{
		ID:                    row.ID,
		TenantID:              row.TenantID,
		LeaseNumber:           row.LeaseNumber,
		AssetDescription:      row.AssetDescription,
		CommencementDate:      pgDateToTime(row.CommencementDate),
		EndDate:               pgDateToTime(row.EndDate),
		LeasePayment:          numericToDecimal(row.LeasePayment),
		PaymentFrequency:      domain.PaymentFrequency(row.PaymentFrequency),
		DiscountRate:          numericToDecimal(row.DiscountRate),
		InitialROUAsset:       numericToDecimal(row.InitialRouAsset),
		InitialLeaseLiability: numericToDecimal(row.InitialLeaseLiability),
		Currency:              row.Currency,
		ERPAssetID:            row.ErpAssetID,
		Status:                domain.LeaseStatus(row.Status),
		CreatedAt:             row.CreatedAt.Time.UTC(),
		LastCalculationDate:   timestamptzPtr(row.LastCalculationDate),
	}
}
