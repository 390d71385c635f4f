package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/srs-assistant/migrate/internal/catalog"
	"github.com/srs-assistant/migrate/internal/database"
	"github.com/srs-assistant/migrate/internal/logger"
	"github.com/srs-assistant/migrate/internal/runner"
	"github.com/srs-assistant/migrate/internal/tracker"
)

var upCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply pending migration scripts in filename order. Each script runs
in its own transaction together with its bookkeeping record; the run halts
on the first failure. With --dry-run nothing is read or executed.`,
	RunE: runUp,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	upCmd.Flags().Bool("dry-run", false, "report what would be applied without executing")
	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	log := logger.New(cmd.OutOrStdout())
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	migrations, err := catalog.List(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	log.Infof("Found %d migration file(s)", len(migrations))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log.Infof("Connecting to %s", cfg.Redacted())

	pool, err := database.NewPool(ctx, cfg.DSN(), cfg.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if dryRun {
		log.Infof("Dry run: no changes will be made")
	}

	run := runner.New(pool, tracker.New(pool),
		runner.WithDryRun(dryRun),
		runner.WithStartHandler(func(m catalog.Migration) {
			log.Infof("Applying %s ...", m.Filename)
		}),
		runner.WithResultHandler(func(res runner.Result) {
			switch res.Outcome {
			case runner.OutcomeSkipped:
				log.Infof("Skipping (already applied): %s", res.Migration.Filename)
			case runner.OutcomeWouldApply:
				log.Infof("Would apply: %s", res.Migration.Filename)
			case runner.OutcomeApplied:
				log.Successf("Applied %s (%s)", res.Migration.Filename,
					res.Duration.Truncate(time.Millisecond))
			case runner.OutcomeFailed:
				log.Errorf("Failed %s: %v", res.Migration.Filename, res.Err)
			}
		}),
	)

	report, err := run.Run(ctx, migrations)
	if err != nil {
		return err
	}

	printSummary(log, report, dryRun)

	if !report.Ok() {
		return fmt.Errorf("migration run halted: %w", report.Err)
	}

	return nil
}

func printSummary(log logger.Logger, report runner.Report, dryRun bool) {
	log.Infof("")
	log.Infof("Discovered: %d, already applied: %d", report.Discovered, report.AlreadyApplied)

	if dryRun {
		log.Infof("Would apply: %d migration(s)", report.WouldApply)

		return
	}

	log.Successf("Applied: %d migration(s)", report.Applied)

	if report.Failed > 0 {
		log.Errorf("Failed: %d migration(s), stopped at %s", report.Failed, report.FailedID)
	}
}
