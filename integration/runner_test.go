//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srs-assistant/migrate/internal/catalog"
	"github.com/srs-assistant/migrate/internal/runner"
	"github.com/srs-assistant/migrate/internal/tracker"
)

func TestRun_secondRun_appliesNothing(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	dir := t.TempDir()
	writeScript(t, dir, "001_projects.sql", "CREATE TABLE projects (project_id SERIAL PRIMARY KEY, project_name TEXT NOT NULL);")
	writeScript(t, dir, "002_versions.sql", "CREATE TABLE srs_versions (version_id SERIAL PRIMARY KEY, project_id INTEGER REFERENCES projects(project_id));")
	writeScript(t, dir, "003_facts.sql", "CREATE TABLE memory_facts (fact_id SERIAL PRIMARY KEY, fact_key TEXT NOT NULL);")

	first := runDir(t, pool, dir, false)
	require.True(t, first.Ok())
	assert.Equal(t, 3, first.Applied)

	second := runDir(t, pool, dir, false)
	require.True(t, second.Ok())
	assert.Zero(t, second.Applied)
	assert.Equal(t, 3, second.AlreadyApplied)
	assert.Equal(t, 3, bookkeepingCount(t, pool))
}

func TestRun_failureHaltsAndRecordsNothingFurther(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	dir := t.TempDir()
	writeScript(t, dir, "001_a.sql", "CREATE TABLE table_a (id SERIAL PRIMARY KEY);")
	writeScript(t, dir, "002_b.sql", "CREATE TABLE table_b (id INTEGER REFERENCES no_such_table(id));")
	writeScript(t, dir, "003_c.sql", "CREATE TABLE table_c (id SERIAL PRIMARY KEY);")

	report := runDir(t, pool, dir, false)

	assert.False(t, report.Ok())
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "002_b", report.FailedID)
	require.Error(t, report.Err)

	assert.True(t, tableExists(t, pool, "table_a"))
	assert.False(t, tableExists(t, pool, "table_b"))
	assert.False(t, tableExists(t, pool, "table_c"), "003_c must never be attempted")

	applied, err := tracker.New(pool).LoadApplied(context.Background())
	require.NoError(t, err)
	assert.Contains(t, applied, "001_a")
	assert.NotContains(t, applied, "002_b")
	assert.NotContains(t, applied, "003_c")
}

func TestRun_dryRun_mutatesNothing(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	dir := t.TempDir()
	writeScript(t, dir, "001_projects.sql", "CREATE TABLE projects (project_id SERIAL PRIMARY KEY);")
	writeScript(t, dir, "002_facts.sql", "CREATE TABLE memory_facts (fact_id SERIAL PRIMARY KEY);")

	report := runDir(t, pool, dir, true)

	require.True(t, report.Ok())
	assert.Equal(t, 2, report.WouldApply)
	assert.Zero(t, report.Applied)

	assert.Zero(t, bookkeepingCount(t, pool))
	assert.False(t, tableExists(t, pool, "projects"))
	assert.False(t, tableExists(t, pool, "memory_facts"))
}

func TestRun_partialScriptFailure_isAtomic(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	dir := t.TempDir()
	writeScript(t, dir, "001_two_statements.sql",
		"CREATE TABLE chat_history (chat_id SERIAL PRIMARY KEY);\n"+
			"ALTER TABLE no_such_table ADD COLUMN x INTEGER;")

	report := runDir(t, pool, dir, false)

	assert.False(t, report.Ok())
	assert.False(t, tableExists(t, pool, "chat_history"), "first statement must roll back with the second")
	assert.Zero(t, bookkeepingCount(t, pool))
}

func TestRun_skipGovernedByIdentityNotContent(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	dir := t.TempDir()
	writeScript(t, dir, "007_add_index.sql", "CREATE TABLE indexed (id SERIAL PRIMARY KEY);")

	first := runDir(t, pool, dir, false)
	require.True(t, first.Ok())
	require.Equal(t, 1, first.Applied)

	// Edit the script on disk; identity is unchanged, so it is still skipped.
	writeScript(t, dir, "007_add_index.sql", "CREATE TABLE edited_after_apply (id SERIAL PRIMARY KEY);")

	second := runDir(t, pool, dir, false)
	require.True(t, second.Ok())
	assert.Zero(t, second.Applied)
	assert.Equal(t, 1, second.AlreadyApplied)
	assert.False(t, tableExists(t, pool, "edited_after_apply"))
}

func TestRun_emptyCatalog_completesOk(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)

	report := runDir(t, pool, t.TempDir(), false)

	assert.True(t, report.Ok())
	assert.Zero(t, report.Discovered)
	assert.Zero(t, bookkeepingCount(t, pool), "bookkeeping table exists but is empty")
}

func TestRun_concurrentIndexScript_runsOutsideTransaction(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)
	dir := t.TempDir()
	writeScript(t, dir, "001_projects.sql", "CREATE TABLE projects (project_id SERIAL PRIMARY KEY, project_name TEXT);")
	writeScript(t, dir, "002_index.sql", "CREATE INDEX CONCURRENTLY idx_projects_name ON projects (project_name);")

	report := runDir(t, pool, dir, false)

	require.True(t, report.Ok())
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 2, bookkeepingCount(t, pool))
}

func TestRun_testdataCatalog_appliesFullSchema(t *testing.T) {
	t.Parallel()

	pool, _ := SetupPostgres(t)

	migrations, err := catalog.List("../testdata/migrations")
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	run := runner.New(pool, tracker.New(pool))
	report, err := run.Run(context.Background(), migrations)
	require.NoError(t, err)

	require.True(t, report.Ok())
	assert.Equal(t, 3, report.Applied)

	for _, table := range []string{"projects", "srs_versions", "chat_history", "memory_facts"} {
		assert.True(t, tableExists(t, pool, table), table)
	}
}
