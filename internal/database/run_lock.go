package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunLockID is the advisory lock identifier held for the duration of a
// migration run. Concurrent runners against the same database fail fast
// instead of racing on the applied-set snapshot.
const RunLockID int64 = 874392610

// RunLock wraps a dedicated pooled connection that holds a session-level
// advisory lock. Call Release to unlock and return the connection to the pool.
type RunLock struct {
	conn *pgxpool.Conn
}

// TryAcquireRunLock attempts to acquire the session-level advisory lock.
// Returns ErrLockNotAcquired if another process already holds it. The caller
// must call Release when done.
func TryAcquireRunLock(ctx context.Context, pool *pgxpool.Pool) (*RunLock, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection for run lock: %w", err)
	}

	var acquired bool

	err = conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", RunLockID).Scan(&acquired)
	if err != nil {
		conn.Release()

		return nil, fmt.Errorf("executing pg_try_advisory_lock: %w", err)
	}

	if !acquired {
		conn.Release()

		return nil, ErrLockNotAcquired
	}

	return &RunLock{conn: conn}, nil
}

// Release unlocks the advisory lock and returns the connection to the pool.
// Safe to call multiple times; subsequent calls are no-ops.
func (l *RunLock) Release(ctx context.Context) error {
	if l == nil || l.conn == nil {
		return nil
	}

	_, err := l.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", RunLockID)
	l.conn.Release()
	l.conn = nil

	if err != nil {
		return fmt.Errorf("releasing run lock: %w", err)
	}

	return nil
}
