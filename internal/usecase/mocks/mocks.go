package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/usecase"
)

// MockLeaseRepository is an in-memory implementation of LeaseRepository.
type MockLeaseRepository struct {
	mu     sync.RWMutex
	leases map[string]*domain.Lease

	CreateFunc        func(ctx context.Context, lease *domain.Lease) error
	GetByIDFunc       func(ctx context.Context, tenantID, id string) (*domain.Lease, error)
	ListFunc          func(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Lease, error)
	GetActiveAsOfFunc func(ctx context.Context, tenantID string, date time.Time) ([]*domain.Lease, error)
	UpdateFunc        func(ctx context.Context, tx usecase.Transaction, lease *domain.Lease) error
}

func NewMockLeaseRepository(leases ...*domain.Lease) *MockLeaseRepository {
	m := &MockLeaseRepository{
		leases: make(map[string]*domain.Lease),
	}
	for _, l := range leases {
		m.leases[l.ID] = l
	}
	return m
}

func (m *MockLeaseRepository) Create(ctx context.Context, lease *domain.Lease) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, lease)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leases[lease.ID] = lease
	return nil
}

func (m *MockLeaseRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Lease, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.leases[id]; ok && l.TenantID == tenantID {
		cp := *l
		return &cp, nil
	}
	return nil, domain.ErrLeaseNotFound
}

func (m *MockLeaseRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Lease, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, limit, offset)
	}
	all := m.byTenant(tenantID, func(*domain.Lease) bool { return true })
	if offset >= len(all) {
		return []*domain.Lease{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockLeaseRepository) GetActiveAsOf(ctx context.Context, tenantID string, date time.Time) ([]*domain.Lease, error) {
	if m.GetActiveAsOfFunc != nil {
		return m.GetActiveAsOfFunc(ctx, tenantID, date)
	}
	return m.byTenant(tenantID, func(l *domain.Lease) bool { return l.CoversPeriod(date) }), nil
}

func (m *MockLeaseRepository) Update(ctx context.Context, tx usecase.Transaction, lease *domain.Lease) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, lease)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leases[lease.ID]; !ok {
		return domain.ErrLeaseNotFound
	}
	cp := *lease
	m.leases[lease.ID] = &cp
	return nil
}

// Get returns the stored lease without tenant scoping.
func (m *MockLeaseRepository) Get(id string) *domain.Lease {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.leases[id]
}

func (m *MockLeaseRepository) byTenant(tenantID string, keep func(*domain.Lease) bool) []*domain.Lease {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Lease
	for _, l := range m.leases {
		if l.TenantID == tenantID && keep(l) {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MockCalculationRepository is an in-memory implementation of CalculationRepository.
// Writes made through a transaction become visible only after MockTransaction.Commit
// when the transaction came from MockTransactionManager.
type MockCalculationRepository struct {
	mu    sync.RWMutex
	calcs map[string]*domain.LeaseCalculation

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, calc *domain.LeaseCalculation) error
	GetByIDFunc         func(ctx context.Context, tenantID, id string) (*domain.LeaseCalculation, error)
	GetLatestBeforeFunc func(ctx context.Context, tx usecase.Transaction, leaseID string, date time.Time) (*domain.LeaseCalculation, error)
	GetForPeriodFunc    func(ctx context.Context, tenantID string, date time.Time) ([]*domain.LeaseCalculation, error)
	ListByLeaseFunc     func(ctx context.Context, tenantID, leaseID string) ([]*domain.LeaseCalculation, error)
	MarkPostedFunc      func(ctx context.Context, tx usecase.Transaction, id, batchID string, postedAt time.Time) error
}

func NewMockCalculationRepository(calcs ...*domain.LeaseCalculation) *MockCalculationRepository {
	m := &MockCalculationRepository{
		calcs: make(map[string]*domain.LeaseCalculation),
	}
	for _, c := range calcs {
		m.calcs[c.ID] = c
	}
	return m
}

func (m *MockCalculationRepository) Create(ctx context.Context, tx usecase.Transaction, calc *domain.LeaseCalculation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, calc)
	}
	m.mu.RLock()
	for _, c := range m.calcs {
		if c.LeaseID == calc.LeaseID && c.PeriodDate.Equal(calc.PeriodDate) {
			m.mu.RUnlock()
			return domain.ErrCalculationExists
		}
	}
	m.mu.RUnlock()

	cp := *calc
	return onCommit(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.calcs[cp.ID] = &cp
	})
}

func (m *MockCalculationRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.LeaseCalculation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.calcs[id]; ok && c.TenantID == tenantID {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrCalculationNotFound
}

func (m *MockCalculationRepository) GetLatestBefore(ctx context.Context, tx usecase.Transaction, leaseID string, date time.Time) (*domain.LeaseCalculation, error) {
	if m.GetLatestBeforeFunc != nil {
		return m.GetLatestBeforeFunc(ctx, tx, leaseID, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.LeaseCalculation
	for _, c := range m.calcs {
		if c.LeaseID != leaseID || !c.PeriodDate.Before(date) {
			continue
		}
		if latest == nil || c.PeriodDate.After(latest.PeriodDate) {
			latest = c
		}
	}
	if latest == nil {
		return nil, domain.ErrCalculationNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MockCalculationRepository) GetForPeriod(ctx context.Context, tenantID string, date time.Time) ([]*domain.LeaseCalculation, error) {
	if m.GetForPeriodFunc != nil {
		return m.GetForPeriodFunc(ctx, tenantID, date)
	}
	return m.filter(func(c *domain.LeaseCalculation) bool {
		return c.TenantID == tenantID && c.PeriodDate.Equal(date)
	}), nil
}

func (m *MockCalculationRepository) ListByLease(ctx context.Context, tenantID, leaseID string) ([]*domain.LeaseCalculation, error) {
	if m.ListByLeaseFunc != nil {
		return m.ListByLeaseFunc(ctx, tenantID, leaseID)
	}
	return m.filter(func(c *domain.LeaseCalculation) bool {
		return c.TenantID == tenantID && c.LeaseID == leaseID
	}), nil
}

func (m *MockCalculationRepository) MarkPosted(ctx context.Context, tx usecase.Transaction, id, batchID string, postedAt time.Time) error {
	if m.MarkPostedFunc != nil {
		return m.MarkPostedFunc(ctx, tx, id, batchID, postedAt)
	}
	m.mu.RLock()
	c, ok := m.calcs[id]
	m.mu.RUnlock()
	if !ok {
		return domain.ErrCalculationNotFound
	}
	if c.PostedToERP {
		return domain.ErrAlreadyPosted
	}
	return onCommit(tx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		cp := *c
		cp.MarkPosted(batchID, postedAt)
		m.calcs[id] = &cp
	})
}

// All returns every stored calculation ordered by lease and period.
func (m *MockCalculationRepository) All() []*domain.LeaseCalculation {
	return m.filter(func(*domain.LeaseCalculation) bool { return true })
}

func (m *MockCalculationRepository) filter(keep func(*domain.LeaseCalculation) bool) []*domain.LeaseCalculation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LeaseCalculation
	for _, c := range m.calcs {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LeaseID != out[j].LeaseID {
			return out[i].LeaseID < out[j].LeaseID
		}
		return out[i].PeriodDate.Before(out[j].PeriodDate)
	})
	return out
}

// onCommit defers apply until tx commits when tx is a *MockTransaction.
func onCommit(tx usecase.Transaction, apply func()) error {
	if mt, ok := tx.(*MockTransaction); ok {
		mt.mu.Lock()
		mt.pending = append(mt.pending, apply)
		mt.mu.Unlock()
		return nil
	}
	apply()
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu    sync.Mutex
	begun int

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	m.mu.Lock()
	m.begun++
	m.mu.Unlock()
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// Begun returns how many transactions were started.
func (m *MockTransactionManager) Begun() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.begun
}

// MockTransaction is a mock implementation of Transaction. Writes registered
// by the mock repositories are applied on Commit and dropped on Rollback.
type MockTransaction struct {
	mu        sync.Mutex
	pending   []func()
	committed bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, apply := range m.pending {
		apply()
	}
	m.pending = nil
	m.committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%03d", m.counter)
}

// MockRetrier runs the operation up to Attempts times while it fails.
type MockRetrier struct {
	Attempts int
	calls    int
	mu       sync.Mutex
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	attempts := m.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		m.mu.Lock()
		m.calls++
		m.mu.Unlock()
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}

// Calls returns how many times an operation was run.
func (m *MockRetrier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockLocker is an in-memory Locker.
type MockLocker struct {
	mu   sync.Mutex
	held map[string]bool

	AcquireFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[string]bool)}
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *MockLocker) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}

// Held reports whether key is currently locked.
func (m *MockLocker) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held[key]
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
