// Package dbx provides the transaction handles threaded through every
// archiver and repository call: a minimal interface (DBTX) implemented by
// both *sql.DB and *sql.Tx, typed read/write scopes, and helpers that run a
// function inside a transaction with guaranteed release.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ReadTx is a snapshot-read scope. Archivers only ever receive a ReadTx.
type ReadTx struct {
	DBTX
}

// WriteTx is a mutating scope. Restorers receive a WriteTx and may hand a
// read view of the same transaction to lookups.
type WriteTx struct {
	DBTX
}

// AsRead returns a read view over the same underlying transaction.
func (w WriteTx) AsRead() ReadTx {
	return ReadTx{DBTX: w.DBTX}
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// WithReadTx runs fn inside a read-only transaction so that every lookup of
// one archive pass sees the same snapshot.
func WithReadTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx ReadTx) error) error {
	return WithTx(ctx, db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, ReadTx{DBTX: tx})
	})
}

// WithWriteTx runs fn inside a read-write transaction. Rows written by fn are
// committed only if fn returns nil.
func WithWriteTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx WriteTx) error) error {
	return WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, WriteTx{DBTX: tx})
	})
}
