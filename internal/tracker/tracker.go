package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AppliedMigration is one row of the schema_migrations table.
type AppliedMigration struct {
	ID        string
	AppliedAt time.Time
}

// Tracker manages the schema_migrations bookkeeping table.
type Tracker struct {
	pool *pgxpool.Pool
}

// New creates a Tracker backed by the given connection pool.
func New(pool *pgxpool.Pool) *Tracker {
	return &Tracker{pool: pool}
}

// EnsureTable creates the schema_migrations table if it does not exist.
// Safe to call on every run.
func (t *Tracker) EnsureTable(ctx context.Context) error {
	_, err := t.pool.Exec(ctx, createSchemaSQL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTableCreation, err)
	}

	return nil
}

// LoadApplied returns the set of migration identities already recorded as
// applied. The set is a point-in-time snapshot; callers load it once per run
// and do not refresh it mid-run. Membership is exact string equality.
func (t *Tracker) LoadApplied(ctx context.Context) (map[string]struct{}, error) {
	rows, err := t.pool.Query(ctx, `SELECT migration_id FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAppliedSetUnavailable, err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})

	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrAppliedSetUnavailable, scanErr)
		}

		applied[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAppliedSetUnavailable, err)
	}

	return applied, nil
}

// ListApplied returns all applied-migration rows ordered by identity.
func (t *Tracker) ListApplied(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := t.pool.Query(ctx,
		`SELECT migration_id, applied_at FROM schema_migrations ORDER BY migration_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	applied, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (AppliedMigration, error) {
		var m AppliedMigration
		if scanErr := row.Scan(&m.ID, &m.AppliedAt); scanErr != nil {
			return AppliedMigration{}, fmt.Errorf("scanning migration row: %w", scanErr)
		}

		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning applied migrations: %w", err)
	}

	return applied, nil
}

// Record inserts the applied record for a migration identity. applied_at is
// set by the database at insertion time. A duplicate identity is a no-op.
func (t *Tracker) Record(ctx context.Context, id string) error {
	_, err := t.pool.Exec(ctx, recordSQL, id)
	if err != nil {
		return fmt.Errorf("recording migration %s as applied: %w", id, err)
	}

	return nil
}

// RecordInTx inserts the applied record inside an open transaction, so the
// record commits or rolls back together with the migration script itself.
func (t *Tracker) RecordInTx(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, recordSQL, id)
	if err != nil {
		return fmt.Errorf("recording migration %s as applied: %w", id, err)
	}

	return nil
}

const recordSQL = `INSERT INTO schema_migrations (migration_id) VALUES ($1) ON CONFLICT DO NOTHING`
