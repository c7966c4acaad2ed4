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

// CalculationRepository implements usecase.CalculationRepository.
type CalculationRepository struct {
	queries *generated.Queries
}

// NewCalculationRepository creates a new CalculationRepository.
func NewCalculationRepository(pool *pgxpool.Pool) *CalculationRepository {
	return newCalculationRepository(pool)
}

func newCalculationRepository(db generated.DBTX) *CalculationRepository {
	return &CalculationRepository{queries: generated.New(db)}
}

// Create inserts a period calculation. The (lease_id, period_date) unique key
// turns a repeated period into domain.ErrCalculationExists.
func (r *CalculationRepository) Create(ctx context.Context, tx usecase.Transaction, calc *domain.LeaseCalculation) error {
	q, err := queriesFor(r.queries, tx)
	if err != nil {
		return err
	}
	err = q.CreateLeaseCalculation(ctx, generated.CreateLeaseCalculationParams{
		ID:                      calc.ID,
		LeaseID:                 calc.LeaseID,
		TenantID:                calc.TenantID,
		PeriodDate:              dateToPgDate(calc.PeriodDate),
		BeginningRouAsset:       decimalToNumeric(calc.BeginningROUAsset),
		BeginningLeaseLiability: decimalToNumeric(calc.BeginningLeaseLiability),
		LeasePayment:            decimalToNumeric(calc.LeasePayment),
		InterestExpense:         decimalToNumeric(calc.InterestExpense),
		AmortizationExpense:     decimalToNumeric(calc.AmortizationExpense),
		EndingRouAsset:          decimalToNumeric(calc.EndingROUAsset),
		EndingLeaseLiability:    decimalToNumeric(calc.EndingLeaseLiability),
		CalculatedAt:            timeToPgTimestamptz(calc.CalculatedAt),
		Status:                  string(calc.Status),
		Notes:                   calc.Notes,
	})

	switch pgErrorCode(err) {
	case "":
		return err
	case pgErrUniqueViolation:
		return domain.ErrCalculationExists
	case pgErrForeignKeyViolation:
		return domain.ErrLeaseNotFound
	default:
		return err
	}
}

// GetByID retrieves a tenant's calculation by ID.
func (r *CalculationRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.LeaseCalculation, error) {
	row, err := r.queries.GetLeaseCalculationByID(ctx, generated.GetLeaseCalculationByIDParams{TenantID: tenantID, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCalculationNotFound
		}

		return nil, err
	}

	return rowToCalculation(row), nil
}

// GetLatestBefore returns the lease's most recent calculation strictly before date.
func (r *CalculationRepository) GetLatestBefore(ctx context.Context, tx usecase.Transaction, leaseID string, date time.Time) (*domain.LeaseCalculation, error) {
	q, err := queriesFor(r.queries, tx)
	if err != nil {
		return nil, err
	}
	row, err := q.GetLatestCalculationBefore(ctx, generated.GetLatestCalculationBeforeParams{
		LeaseID:    leaseID,
		PeriodDate: dateToPgDate(date),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCalculationNotFound
		}

		return nil, err
	}

	return rowToCalculation(row), nil
}

// GetForPeriod lists a tenant's calculations for one period date.
func (r *CalculationRepository) GetForPeriod(ctx context.Context, tenantID string, date time.Time) ([]*domain.LeaseCalculation, error) {
	rows, err := r.queries.ListCalculationsForPeriod(ctx, generated.ListCalculationsForPeriodParams{
		TenantID:   tenantID,
		PeriodDate: dateToPgDate(date),
	})
	if err != nil {
		return nil, err
	}

	return rowsToCalculations(rows), nil
}

// ListByLease lists a lease's calculations in period order.
func (r *CalculationRepository) ListByLease(ctx context.Context, tenantID, leaseID string) ([]*domain.LeaseCalculation, error) {
	rows, err := r.queries.ListCalculationsByLease(ctx, generated.ListCalculationsByLeaseParams{
		TenantID: tenantID,
		LeaseID:  leaseID,
	})
	if err != nil {
		return nil, err
	}

	return rowsToCalculations(rows), nil
}

// MarkPosted records the ERP batch on an unposted calculation.
func (r *CalculationRepository) MarkPosted(ctx context.Context, tx usecase.Transaction, id, batchID string, postedAt time.Time) error {
	q, err := queriesFor(r.queries, tx)
	if err != nil {
		return err
	}
	n, err := q.MarkCalculationPosted(ctx, generated.MarkCalculationPostedParams{
		ID:               id,
		ErpPostingDate:   timeToPgTimestamptz(postedAt),
		ErpTransactionID: batchID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadyPosted
	}

	return nil
}

func rowsToCalculations(rows []generated.LeaseCalculation) []*domain.LeaseCalculation {
	calcs := make([]*domain.LeaseCalculation, 0, len(rows))
	for _, row := range rows {
		calcs = append(calcs, rowToCalculation(row))
	}
	return calcs
}

func rowToCalculation(row generated.LeaseCalculation) *domain.LeaseCalculation {
	return &domain.LeaseCalculation{
		ID:                      row.ID,
		LeaseID:                 row.LeaseID,
		TenantID:                row.TenantID,
		PeriodDate:              pgDateToTime(row.PeriodDate),
		BeginningROUAsset:       numericToDecimal(row.BeginningRouAsset),
		BeginningLeaseLiability: numericToDecimal(row.BeginningLeaseLiability),
		LeasePayment:            numericToDecimal(row.LeasePayment),
		InterestExpense:         numericToDecimal(row.InterestExpense),
		AmortizationExpense:     numericToDecimal(row.AmortizationExpense),
		EndingROUAsset:          numericToDecimal(row.EndingRouAsset),
		EndingLeaseLiability:    numericToDecimal(row.EndingLeaseLiability),
		CalculatedAt:            row.CalculatedAt.Time.UTC(),
		Status:                  domain.CalculationStatus(row.Status),
		Notes:                   row.Notes,
		PostedToERP:             row.PostedToErp,
		ERPPostingDate:          timestamptzPtr(row.ErpPostingDate),
		ERPTransactionID:        row.ErpTransactionID,
	}
}
