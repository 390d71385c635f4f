package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srs-assistant/migrate/internal/catalog"
	"github.com/srs-assistant/migrate/internal/logger"
	"github.com/srs-assistant/migrate/internal/sqlcheck"
)

// errCheckFailed is returned when any migration script fails to parse.
var errCheckFailed = errors.New("one or more migration scripts failed the check")

var checkCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "check",
	Short: "Parse all migration scripts without touching the database",
	Long: `Parse every migration script with the real PostgreSQL parser and
report syntax errors before anything runs against a database.`,
	RunE: runCheck,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	log := logger.New(cmd.OutOrStdout())

	migrations, err := catalog.List(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	failures := 0

	for _, m := range migrations {
		sql, err := m.ReadSQL()
		if err != nil {
			log.Errorf("%s: %v", m.Filename, err)

			failures++

			continue
		}

		info, err := sqlcheck.Check(sql)
		if err != nil {
			log.Errorf("%s: %v", m.Filename, err)

			failures++

			continue
		}

		if info.NeedsNoTransaction {
			log.Infof("%s: ok, %d statement(s), runs outside a transaction", m.Filename, info.Statements)
		} else {
			log.Infof("%s: ok, %d statement(s)", m.Filename, info.Statements)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%w: %d of %d", errCheckFailed, failures, len(migrations))
	}

	log.Successf("All %d migration script(s) parse cleanly", len(migrations))

	return nil
}
