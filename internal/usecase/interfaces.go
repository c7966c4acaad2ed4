package usecase

import (
	"context"
	"time"

	"github.com/iho/leaseledger/internal/domain"
)

// LeaseRepository defines data access for leases. Every lookup is scoped to a tenant.
type LeaseRepository interface {
	Create(ctx context.Context, lease *domain.Lease) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Lease, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Lease, error)
	// GetActiveAsOf returns active leases whose term covers date.
	GetActiveAsOf(ctx context.Context, tenantID string, date time.Time) ([]*domain.Lease, error)
	Update(ctx context.Context, tx Transaction, lease *domain.Lease) error
}

// CalculationRepository defines data access for period calculations.
type CalculationRepository interface {
	// Create inserts calc and sets its ID. Returns domain.ErrCalculationExists when
	// the lease already has a calculation for calc.PeriodDate.
	Create(ctx context.Context, tx Transaction, calc *domain.LeaseCalculation) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.LeaseCalculation, error)
	// GetLatestBefore returns the most recent calculation strictly before date, or
	// domain.ErrCalculationNotFound.
	GetLatestBefore(ctx context.Context, tx Transaction, leaseID string, date time.Time) (*domain.LeaseCalculation, error)
	GetForPeriod(ctx context.Context, tenantID string, date time.Time) ([]*domain.LeaseCalculation, error)
	ListByLease(ctx context.Context, tenantID, leaseID string) ([]*domain.LeaseCalculation, error)
	// MarkPosted sets the posting fields. Returns domain.ErrAlreadyPosted when the
	// row was posted concurrently.
	MarkPosted(ctx context.Context, tx Transaction, id, batchID string, postedAt time.Time) error
}

// ERPGateway submits journal batches to the external ERP.
type ERPGateway interface {
	PostBatch(ctx context.Context, req *domain.PostingRequest) (*domain.PostingResponse, error)
	Ping(ctx context.Context) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Locker provides short-lived mutual exclusion across service instances.
type Locker interface {
	// Acquire returns false when key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
