package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srs-assistant/migrate/internal/catalog"
	"github.com/srs-assistant/migrate/internal/database"
	"github.com/srs-assistant/migrate/internal/sqlcheck"
)

// Tracker abstracts schema_migrations operations for testability.
type Tracker interface {
	EnsureTable(ctx context.Context) error
	LoadApplied(ctx context.Context) (map[string]struct{}, error)
	Record(ctx context.Context, id string) error
	RecordInTx(ctx context.Context, tx pgx.Tx, id string) error
}

// lockReleaser is returned by lockFn and must be released when done.
type lockReleaser interface {
	Release(ctx context.Context) error
}

// lockFunc acquires the run lock and returns a releaser.
type lockFunc func(ctx context.Context) (lockReleaser, error)

// applyFunc executes one migration's script and records its identity.
type applyFunc func(ctx context.Context, m catalog.Migration) error

// Runner drives the apply loop: skip already-applied migrations, execute
// pending ones in catalog order inside per-script transactions, and halt on
// the first failure. Migrations run strictly one at a time; schema changes
// are order-dependent and the applied-set snapshot assumes a single writer.
type Runner struct {
	pool        *pgxpool.Pool
	tracker     Tracker
	dryRun      bool
	onStart     func(catalog.Migration)
	onResult    func(Result)
	acquireLock lockFunc
	applySQL    applyFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithDryRun enables dry-run mode: pending migrations are reported as
// would-apply and their bodies are never read or executed.
func WithDryRun(b bool) Option {
	return func(r *Runner) { r.dryRun = b }
}

// WithStartHandler sets a function called before each migration executes.
func WithStartHandler(fn func(catalog.Migration)) Option {
	return func(r *Runner) { r.onStart = fn }
}

// WithResultHandler sets a function called with each migration's Result.
func WithResultHandler(fn func(Result)) Option {
	return func(r *Runner) { r.onResult = fn }
}

// New creates a Runner with the given pool, tracker, and options.
func New(pool *pgxpool.Pool, t Tracker, opts ...Option) *Runner {
	r := &Runner{
		pool:    pool,
		tracker: t,
	}

	for _, opt := range opts {
		opt(r)
	}

	// Set defaults for injectable functions after options are applied,
	// so tests can override them.
	if r.acquireLock == nil {
		r.acquireLock = func(ctx context.Context) (lockReleaser, error) {
			return database.TryAcquireRunLock(ctx, r.pool)
		}
	}

	if r.applySQL == nil {
		r.applySQL = r.executeAndRecord
	}

	return r
}

// Run processes the catalog's migrations in order and returns a Report.
// The returned error is non-nil only for run-level failures (lock not
// acquired, bookkeeping table unusable); an individual migration failure
// is carried in the Report, with the loop halted at that point.
func (r *Runner) Run(ctx context.Context, migrations []catalog.Migration) (Report, error) {
	report := Report{Discovered: len(migrations)}

	lock, err := r.acquireLock(ctx)
	if err != nil {
		return report, fmt.Errorf("acquiring run lock: %w", err)
	}
	defer lock.Release(ctx) //nolint:errcheck // best-effort release on return

	if err := r.tracker.EnsureTable(ctx); err != nil {
		return report, err
	}

	applied, err := r.tracker.LoadApplied(ctx)
	if err != nil {
		return report, err
	}

	for _, m := range migrations {
		res := r.applyOne(ctx, m, applied)
		report.record(res)

		if res.Outcome == OutcomeFailed {
			// Later migrations may assume this one's DDL exists.
			break
		}
	}

	return report, nil
}

// applyOne decides and executes the outcome for a single migration against
// the applied-set snapshot.
func (r *Runner) applyOne(ctx context.Context, m catalog.Migration, applied map[string]struct{}) Result {
	if _, ok := applied[m.ID]; ok {
		return r.finish(Result{Migration: m, Outcome: OutcomeSkipped})
	}

	if r.dryRun {
		return r.finish(Result{Migration: m, Outcome: OutcomeWouldApply})
	}

	if r.onStart != nil {
		r.onStart(m)
	}

	start := time.Now()
	execErr := r.applySQL(ctx, m)
	duration := time.Since(start)

	if execErr != nil {
		return r.finish(Result{
			Migration: m,
			Outcome:   OutcomeFailed,
			Duration:  duration,
			Err:       fmt.Errorf("migration %s: %w", m.ID, execErr),
		})
	}

	return r.finish(Result{Migration: m, Outcome: OutcomeApplied, Duration: duration})
}

func (r *Runner) finish(res Result) Result {
	if r.onResult != nil {
		r.onResult(res)
	}

	return res
}

// executeAndRecord reads the script body, executes it, and records the
// identity. The default path runs body and bookkeeping insert in one
// transaction, so a failed script rolls back with no applied record.
// Scripts containing CREATE INDEX CONCURRENTLY cannot run inside a
// transaction block; they execute directly on the pool and are recorded
// only after success, with per-statement atomicity.
func (r *Runner) executeAndRecord(ctx context.Context, m catalog.Migration) error {
	sql, err := m.ReadSQL()
	if err != nil {
		return err
	}

	info, err := sqlcheck.Check(sql)
	if err != nil {
		return err
	}

	if info.NeedsNoTransaction {
		if err := ExecWithoutTransaction(ctx, r.pool, sql); err != nil {
			return err
		}

		return r.tracker.Record(ctx, m.ID)
	}

	return ExecInTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// Simple protocol: scripts may contain multiple statements.
		if _, err := tx.Exec(ctx, sql, pgx.QueryExecModeSimpleProtocol); err != nil {
			return fmt.Errorf("executing SQL: %w", err)
		}

		return r.tracker.RecordInTx(ctx, tx, m.ID)
	})
}
