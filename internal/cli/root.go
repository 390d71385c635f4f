package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/srs-assistant/migrate/internal/config"
)

const version = "0.1.0"

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// rootCmd is the base command for the srs-migrate CLI.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "srs-migrate",
	Version: version,
	Short:   "PostgreSQL schema migration runner for the SRS assistant database",
	Long: `srs-migrate applies versioned .sql schema scripts in filename order,
records each applied script in the schema_migrations table, and stops on
the first failure. Already-applied scripts are skipped by identity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.PersistentFlags().String("config", "srs-migrate.yml", "path to configuration file")
	rootCmd.PersistentFlags().String("migrations-dir", "", "path to migration scripts")
	rootCmd.PersistentFlags().String("host", "", "database host")
	rootCmd.PersistentFlags().Int("port", 0, "database port")
	rootCmd.PersistentFlags().String("database", "", "database name")
	rootCmd.PersistentFlags().String("user", "", "database user")
	rootCmd.PersistentFlags().String("password", "", "database password")
	rootCmd.PersistentFlags().Duration("connect-timeout", 0, "connection establishment timeout")
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration with precedence: flag > env > file.
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.MergeEnv(cfg)
	mergeFlags(cmd, cfg)

	AppConfig = cfg

	return nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("migrations-dir") {
		cfg.MigrationsDir, _ = cmd.Flags().GetString("migrations-dir")
	}

	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}

	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	if cmd.Flags().Changed("database") {
		cfg.Database, _ = cmd.Flags().GetString("database")
	}

	if cmd.Flags().Changed("user") {
		cfg.User, _ = cmd.Flags().GetString("user")
	}

	if cmd.Flags().Changed("password") {
		cfg.Password, _ = cmd.Flags().GetString("password")
	}

	if cmd.Flags().Changed("connect-timeout") {
		cfg.ConnectTimeout, _ = cmd.Flags().GetDuration("connect-timeout")
	}
}
