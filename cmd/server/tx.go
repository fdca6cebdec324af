package main

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "canopy/pkg/domain-errors"
	txcontext "canopy/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// postgresTxRunner wraps each state-mutating operation in a serializable
// transaction. The transaction rides the context, so stores called inside fn
// pick it up through their execer.
type postgresTxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func newPostgresTxRunner(db *sql.DB) *postgresTxRunner {
	return &postgresTxRunner{db: db}
}

func (t *postgresTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// memoryTxRunner serializes state-mutating operations behind one mutex, the
// single global critical section the memory stores need for atomicity.
// There is no rollback: fn must fail before its first write or not at all.
type memoryTxRunner struct {
	mu sync.Mutex
}

func newMemoryTxRunner() *memoryTxRunner {
	return &memoryTxRunner{}
}

func (t *memoryTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
