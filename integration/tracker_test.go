//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srs-assistant/migrate/internal/tracker"
)

func TestEnsureTable_isIdempotent(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	ctx := context.Background()
	tr := tracker.New(pool)

	require.NoError(t, tr.EnsureTable(ctx))
	require.NoError(t, tr.EnsureTable(ctx))

	assert.True(t, tableExists(t, pool, "schema_migrations"))
}

func TestRecord_andLoadApplied(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	ctx := context.Background()
	tr := tracker.New(pool)
	require.NoError(t, tr.EnsureTable(ctx))

	require.NoError(t, tr.Record(ctx, "001_initial_schema"))

	applied, err := tr.LoadApplied(ctx)
	require.NoError(t, err)
	assert.Contains(t, applied, "001_initial_schema")
	assert.Len(t, applied, 1)
}

func TestRecord_duplicateIdentity_isNoop(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	ctx := context.Background()
	tr := tracker.New(pool)
	require.NoError(t, tr.EnsureTable(ctx))

	require.NoError(t, tr.Record(ctx, "001_initial_schema"))
	require.NoError(t, tr.Record(ctx, "001_initial_schema"))

	assert.Equal(t, 1, bookkeepingCount(t, pool))
}

func TestListApplied_orderedWithTimestamps(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	ctx := context.Background()
	tr := tracker.New(pool)
	require.NoError(t, tr.EnsureTable(ctx))

	require.NoError(t, tr.Record(ctx, "002_chat_and_memory"))
	require.NoError(t, tr.Record(ctx, "001_initial_schema"))

	applied, err := tr.ListApplied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)

	assert.Equal(t, "001_initial_schema", applied[0].ID)
	assert.Equal(t, "002_chat_and_memory", applied[1].ID)

	for _, a := range applied {
		assert.WithinDuration(t, time.Now(), a.AppliedAt, time.Minute)
	}
}

func TestRecordInTx_rollsBackWithTransaction(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	ctx := context.Background()
	tr := tracker.New(pool)
	require.NoError(t, tr.EnsureTable(ctx))

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tr.RecordInTx(ctx, tx, "001_initial_schema"))
	require.NoError(t, tx.Rollback(ctx))

	assert.Zero(t, bookkeepingCount(t, pool), "rolled-back record must not persist")

	tx, err = pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tr.RecordInTx(ctx, tx, "001_initial_schema"))
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, 1, bookkeepingCount(t, pool))
}

func TestLoadApplied_withoutTable_returnsError(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	tr := tracker.New(pool)

	_, err := tr.LoadApplied(context.Background())
	require.ErrorIs(t, err, tracker.ErrAppliedSetUnavailable)
}
