package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srs-assistant/migrate/internal/catalog"
	"github.com/srs-assistant/migrate/internal/database"
	"github.com/srs-assistant/migrate/internal/tracker"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE:  runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()

	migrations, err := catalog.List(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := database.NewPool(ctx, cfg.DSN(), cfg.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	t := tracker.New(pool)

	if err := t.EnsureTable(ctx); err != nil {
		return err
	}

	applied, err := t.ListApplied(ctx)
	if err != nil {
		return err
	}

	appliedAt := make(map[string]string, len(applied))
	for _, a := range applied {
		appliedAt[a.ID] = a.AppliedAt.Format("2006-01-02 15:04:05")
	}

	pending := 0

	for _, m := range migrations {
		if at, ok := appliedAt[m.ID]; ok {
			fmt.Fprintf(out, "applied  %-40s %s\n", m.ID, at)
		} else {
			fmt.Fprintf(out, "pending  %s\n", m.ID)
			pending++
		}
	}

	fmt.Fprintf(out, "\n%d applied, %d pending\n", len(applied), pending)

	return nil
}
