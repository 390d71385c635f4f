//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/srs-assistant/migrate/internal/catalog"
	"github.com/srs-assistant/migrate/internal/runner"
	"github.com/srs-assistant/migrate/internal/tracker"
)

const (
	postgresImage = "postgres:16-alpine"
	testDB        = "srs_assistant"
	testUser      = "srs_user"
	testPassword  = "srs_password"
)

// SetupPostgres starts a PostgreSQL 16 container and returns a connection
// pool plus the DSN it was built from. The container and pool are cleaned up
// when the test completes.
func SetupPostgres(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       testDB,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://" + testUser + ":" + testPassword + "@" + host + ":" + port.Port() + "/" + testDB + "?sslmode=disable"

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	require.NoError(t, pool.Ping(ctx))

	return pool, dsn
}

// writeScript writes a migration script into dir.
func writeScript(t *testing.T, dir, name, sql string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644))
}

// runDir lists dir and runs its migrations against pool, asserting no
// run-level error. Migration failures are carried in the report.
func runDir(t *testing.T, pool *pgxpool.Pool, dir string, dryRun bool) runner.Report {
	t.Helper()

	migrations, err := catalog.List(dir)
	require.NoError(t, err)

	run := runner.New(pool, tracker.New(pool), runner.WithDryRun(dryRun))

	report, err := run.Run(context.Background(), migrations)
	require.NoError(t, err)

	return report
}

// tableExists reports whether a table is present in the public schema.
func tableExists(t *testing.T, pool *pgxpool.Pool, name string) bool {
	t.Helper()

	var exists bool

	err := pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_name = $1)`,
		name,
	).Scan(&exists)
	require.NoError(t, err)

	return exists
}

// bookkeepingCount returns the number of rows in schema_migrations.
func bookkeepingCount(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()

	var count int

	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM schema_migrations`,
	).Scan(&count)
	require.NoError(t, err)

	return count
}
