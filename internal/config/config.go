package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for configuration fields.
const (
	DefaultHost           = "localhost"
	DefaultPort           = 5432
	DefaultDatabase       = "srs_assistant"
	DefaultUser           = "srs_user"
	DefaultPassword       = "srs_password_change_me"
	DefaultConnectTimeout = 10 * time.Second
	DefaultMigrationsDir  = "./migrations"
)

// Config holds the runner configuration, assembled once at process entry
// from file, environment, and flags, then passed down.
type Config struct {
	Host           string
	Port           int
	Database       string
	User           string
	Password       string
	ConnectTimeout time.Duration
	MigrationsDir  string
}

// yamlConfig is the raw YAML file representation with string durations.
type yamlConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Database       string `yaml:"database"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	ConnectTimeout string `yaml:"connect_timeout"`
	MigrationsDir  string `yaml:"migrations_dir"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		Database:       DefaultDatabase,
		User:           DefaultUser,
		Password:       DefaultPassword,
		ConnectTimeout: DefaultConnectTimeout,
		MigrationsDir:  DefaultMigrationsDir,
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if raw.Host != "" {
		cfg.Host = raw.Host
	}

	if raw.Port != 0 {
		cfg.Port = raw.Port
	}

	if raw.Database != "" {
		cfg.Database = raw.Database
	}

	if raw.User != "" {
		cfg.User = raw.User
	}

	if raw.Password != "" {
		cfg.Password = raw.Password
	}

	if raw.ConnectTimeout != "" {
		d, err := time.ParseDuration(raw.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing connect_timeout %q: %w", raw.ConnectTimeout, err)
		}

		cfg.ConnectTimeout = d
	}

	if raw.MigrationsDir != "" {
		cfg.MigrationsDir = raw.MigrationsDir
	}

	return cfg, nil
}

// MergeEnv overrides config fields from environment variables. The POSTGRES_*
// names match what the rest of the deployment already exports for the database
// containers.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.Host = v
	}

	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}

	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.Database = v
	}

	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.User = v
	}

	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Password = v
	}

	if v := os.Getenv("POSTGRES_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ConnectTimeout = d
		}
	}

	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		cfg.MigrationsDir = v
	}
}
