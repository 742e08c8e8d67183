package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Serialization and exclusion-constraint failures both mean another writer
// took the slot first; callers map this to a booking conflict.
var ErrSerializationFailure = errors.New("transaction serialization failure")

const (
	pqSerializationFailure = "40001"
	pqExclusionViolation   = "23P01"
)

type txKey struct{}

// TxManager runs functions inside database transactions. Appointment writes
// use Serializable so the overlap recheck and the insert observe the same
// snapshot.
type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// DoSerializable executes fn inside a SERIALIZABLE transaction. The
// transaction is exposed to repositories through the context; use Executor
// to pick it up.
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return translatePqError(err)
	}

	if err := tx.Commit(); err != nil {
		return translatePqError(err)
	}
	return nil
}

func translatePqError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqSerializationFailure, pqExclusionViolation:
			return fmt.Errorf("%w: %v", ErrSerializationFailure, err)
		}
	}
	return err
}

// Executor is the subset of *sql.DB and *sql.Tx the repositories need.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ExecutorFromContext returns the transaction stored in ctx by DoSerializable,
// or fallback when no transaction is active.
func ExecutorFromContext(ctx context.Context, fallback Executor) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return fallback
}
