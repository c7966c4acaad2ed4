package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/leaseledger/internal/usecase"
)

// DefaultTxOptions runs each period-end and posting unit in a repeatable-read
// snapshot: the prior period's balances read at the start of a transaction are
// the ones the new row chains from. Conflicts surface as 40001 and go to the
// retrier.
var DefaultTxOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead}

type pgxPool interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager on a pgx pool.
type TxManager struct {
	pool pgxPool
	opts pgx.TxOptions
}

// NewTxManager creates a TxManager using DefaultTxOptions.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool, DefaultTxOptions)
}

func newTxManagerWithPool(pool pgxPool, opts pgx.TxOptions) *TxManager {
	return &TxManager{pool: pool, opts: opts}
}

// Begin starts a transaction with the manager's options.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, m.opts)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Rolling back after a commit is a no-op,
// so callers can always defer it.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}

// pgxTxOf unwraps a transaction started by TxManager.
func pgxTxOf(tx usecase.Transaction) (pgx.Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, errForeignTx
	}
	return t.tx, nil
}

var errForeignTx = errors.New("transaction was not started by the postgres TxManager")
