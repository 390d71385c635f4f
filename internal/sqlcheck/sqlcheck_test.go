package sqlcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srs-assistant/migrate/internal/sqlcheck"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sql         string
		wantErr     bool
		errContains string
		want        sqlcheck.Info
	}{
		{
			name: "empty script",
			sql:  "",
			want: sqlcheck.Info{},
		},
		{
			name: "whitespace-only script",
			sql:  "   \n\t  ",
			want: sqlcheck.Info{},
		},
		{
			name: "single statement",
			sql:  "CREATE TABLE projects (project_id SERIAL PRIMARY KEY);",
			want: sqlcheck.Info{Statements: 1},
		},
		{
			name: "multiple statements",
			sql: `CREATE TABLE projects (project_id SERIAL PRIMARY KEY);
CREATE TABLE srs_versions (version_id SERIAL PRIMARY KEY);
ALTER TABLE projects ADD COLUMN description TEXT;`,
			want: sqlcheck.Info{Statements: 3},
		},
		{
			name: "concurrent index needs no transaction",
			sql:  "CREATE INDEX CONCURRENTLY idx_projects_name ON projects (project_name);",
			want: sqlcheck.Info{Statements: 1, NeedsNoTransaction: true},
		},
		{
			name: "plain index runs in a transaction",
			sql:  "CREATE INDEX idx_projects_name ON projects (project_name);",
			want: sqlcheck.Info{Statements: 1},
		},
		{
			name:        "syntax error",
			sql:         "CREATE TABEL broken (id INT);",
			wantErr:     true,
			errContains: "parsing SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info, err := sqlcheck.Check(tt.sql)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, info)
		})
	}
}
