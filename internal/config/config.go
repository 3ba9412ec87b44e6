// Package config loads the ledger service configuration.
// Defaults are overlaid by an optional YAML file, then by environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	DefaultRatesPrimaryURL  = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1"
	DefaultRatesFallbackURL = "https://latest.currency-api.pages.dev/v1"
)

// Config represents the application configuration.
type Config struct {
	GRPCAddr     string      `yaml:"grpc_addr"`
	APIToken     string      `yaml:"api_token"`
	Store        StoreConfig `yaml:"store"`
	Rates        RatesConfig `yaml:"rates"`
	Log          LogConfig   `yaml:"log"`
	SeedDemo     bool        `yaml:"seed_demo"`
	BackupBucket string      `yaml:"backup_bucket"`
}

// StoreConfig selects and configures the ledger state repository.
type StoreConfig struct {
	Driver     string `yaml:"driver"`
	BoltPath   string `yaml:"bolt_path"`
	SQLitePath string `yaml:"sqlite_path"`
	DBConnStr  string `yaml:"db_conn_str"`
}

// RatesConfig configures the conversion rate provider.
type RatesConfig struct {
	PrimaryURL  string        `yaml:"primary_url"`
	FallbackURL string        `yaml:"fallback_url"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		GRPCAddr: ":8080",
		APIToken: "dev-token",
		Store: StoreConfig{
			Driver:     DriverBolt,
			BoltPath:   "orbital-ledger.db",
			SQLitePath: "orbital-ledger.sqlite",
		},
		Rates: RatesConfig{
			PrimaryURL:  DefaultRatesPrimaryURL,
			FallbackURL: DefaultRatesFallbackURL,
			CacheTTL:    time.Hour,
			Timeout:     10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from defaults, the YAML file named by LEDGER_CONFIG_FILE
// and environment variables, in that order of precedence (last wins).
// It loads a .env file from the current directory if available;
// you can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	// Load .env file
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	cfg := Default()

	if path := os.Getenv("LEDGER_CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadYAML overlays the file's values onto cfg
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.GRPCAddr = getEnvOrDefault("GRPC_ADDR", c.GRPCAddr)
	c.APIToken = getEnvOrDefault("API_TOKEN", c.APIToken)

	c.Store.Driver = strings.ToLower(getEnvOrDefault("STORE_DRIVER", c.Store.Driver))
	c.Store.BoltPath = getEnvOrDefault("BOLT_PATH", c.Store.BoltPath)
	c.Store.SQLitePath = getEnvOrDefault("SQLITE_PATH", c.Store.SQLitePath)
	c.Store.DBConnStr = getEnvOrDefault("DB_CONN_STR", c.Store.DBConnStr)
	if c.Store.DBConnStr == "" && c.Store.Driver == DriverPostgres {
		c.Store.DBConnStr = postgresConnStrFromEnv()
	}

	c.Rates.PrimaryURL = getEnvOrDefault("RATES_PRIMARY_URL", c.Rates.PrimaryURL)
	c.Rates.FallbackURL = getEnvOrDefault("RATES_FALLBACK_URL", c.Rates.FallbackURL)

	var err error
	if c.Rates.CacheTTL, err = parseDurationEnv("RATES_CACHE_TTL", c.Rates.CacheTTL); err != nil {
		return fmt.Errorf("invalid RATES_CACHE_TTL: %w", err)
	}
	if c.Rates.Timeout, err = parseDurationEnv("RATES_TIMEOUT", c.Rates.Timeout); err != nil {
		return fmt.Errorf("invalid RATES_TIMEOUT: %w", err)
	}

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)

	if c.SeedDemo, err = parseBoolEnv("SEED_DEMO", c.SeedDemo); err != nil {
		return fmt.Errorf("invalid SEED_DEMO: %w", err)
	}
	c.BackupBucket = getEnvOrDefault("BACKUP_BUCKET", c.BackupBucket)

	return nil
}

// postgresConnStrFromEnv builds a connection string from individual vars (Docker friendly)
func postgresConnStrFromEnv() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvOrDefault("DB_PORT", "5432"),
		getEnvOrDefault("DB_USER", "postgres"),
		getEnvOrDefault("DB_PASSWORD", "postgres"),
		getEnvOrDefault("DB_NAME", "orbital_ledger"),
	)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []string

	if c.GRPCAddr == "" {
		problems = append(problems, "GRPC_ADDR is empty")
	}
	if c.APIToken == "" {
		problems = append(problems, "API_TOKEN is empty")
	}

	switch c.Store.Driver {
	case DriverBolt:
		if c.Store.BoltPath == "" {
			problems = append(problems, "BOLT_PATH is required for the bolt driver")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.DBConnStr == "" {
			problems = append(problems, "DB_CONN_STR is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	if c.Rates.PrimaryURL == "" && c.Rates.FallbackURL == "" {
		problems = append(problems, "at least one of RATES_PRIMARY_URL and RATES_FALLBACK_URL is required")
	}
	if c.Rates.CacheTTL <= 0 {
		problems = append(problems, "RATES_CACHE_TTL must be positive")
	}
	if c.Rates.Timeout <= 0 {
		problems = append(problems, "RATES_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(value)
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(value)
}
