// Package config loads service settings from an optional .env file, an optional
// YAML file named by CONFIG_FILE and the process environment, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// SeedAccount is created at startup when the in-memory store is used.
type SeedAccount struct {
	Name    string
	Balance decimal.Decimal
}

type Config struct {
	Port                  string
	Store                 string
	DBConnectionString    string
	DBAutoMigrate         bool
	SupabaseURL           string
	SupabaseAnonKey       string
	SupabaseJWTSecret     string
	LogLevel              slog.Level
	LogFormat             string
	AuthRequired          bool
	ExposeErrors          bool
	CORSAllowedOrigin     string
	RequestTimeout        time.Duration
	BalanceRetries        int
	RefundPendingOnDelete bool
	OverdueSweepSchedule  string
	SeedAccounts          []SeedAccount
}

// fileConfig mirrors the YAML layout. Pointer fields distinguish "unset" from zero values.
type fileConfig struct {
	Server struct {
		Port           string `yaml:"port"`
		RequestTimeout string `yaml:"request_timeout"`
		AuthRequired   *bool  `yaml:"auth_required"`
		ExposeErrors   *bool  `yaml:"expose_errors"`
		CORSOrigin     string `yaml:"cors_allowed_origin"`
	} `yaml:"server"`
	Database struct {
		Store            string `yaml:"store"`
		ConnectionString string `yaml:"connection_string"`
		AutoMigrate      *bool  `yaml:"auto_migrate"`
	} `yaml:"database"`
	Supabase struct {
		URL       string `yaml:"url"`
		AnonKey   string `yaml:"anon_key"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"supabase"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Ledger struct {
		BalanceRetries        int    `yaml:"balance_cas_retries"`
		RefundPendingOnDelete *bool  `yaml:"refund_pending_on_delete"`
		OverdueSweepSchedule  string `yaml:"overdue_sweep_schedule"`
		SeedAccounts          []struct {
			Name    string `yaml:"name"`
			Balance string `yaml:"balance"`
		} `yaml:"seed_accounts"`
	} `yaml:"ledger"`
}

func defaults() *Config {
	return &Config{
		Port:                 "8080",
		Store:                StorePostgres,
		LogLevel:             slog.LevelInfo,
		LogFormat:            "json",
		AuthRequired:         true,
		CORSAllowedOrigin:    "*",
		RequestTimeout:       15 * time.Second,
		BalanceRetries:       5,
		OverdueSweepSchedule: "@every 1h",
	}
}

// Load reads .env when present and builds the configuration from the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, continuing with system environment variables")
	}
	return FromLookup(os.LookupEnv)
}

func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := defaults()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file %s: %w", path, err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	setString(&c.Port, file.Server.Port)
	setString(&c.CORSAllowedOrigin, file.Server.CORSOrigin)
	setBool(&c.AuthRequired, file.Server.AuthRequired)
	setBool(&c.ExposeErrors, file.Server.ExposeErrors)
	if file.Server.RequestTimeout != "" {
		if c.RequestTimeout, err = time.ParseDuration(file.Server.RequestTimeout); err != nil {
			return fmt.Errorf("invalid server.request_timeout: %w", err)
		}
	}

	setString(&c.Store, file.Database.Store)
	setString(&c.DBConnectionString, file.Database.ConnectionString)
	setBool(&c.DBAutoMigrate, file.Database.AutoMigrate)

	setString(&c.SupabaseURL, file.Supabase.URL)
	setString(&c.SupabaseAnonKey, file.Supabase.AnonKey)
	setString(&c.SupabaseJWTSecret, file.Supabase.JWTSecret)

	if file.Log.Level != "" {
		if err := c.LogLevel.UnmarshalText([]byte(file.Log.Level)); err != nil {
			return fmt.Errorf("invalid log.level: %w", err)
		}
	}
	setString(&c.LogFormat, file.Log.Format)

	if file.Ledger.BalanceRetries != 0 {
		c.BalanceRetries = file.Ledger.BalanceRetries
	}
	setBool(&c.RefundPendingOnDelete, file.Ledger.RefundPendingOnDelete)
	setString(&c.OverdueSweepSchedule, file.Ledger.OverdueSweepSchedule)

	for _, seed := range file.Ledger.SeedAccounts {
		balance, err := decimal.NewFromString(seed.Balance)
		if err != nil {
			return fmt.Errorf("invalid balance %q for seed account %q: %w", seed.Balance, seed.Name, err)
		}
		c.SeedAccounts = append(c.SeedAccounts, SeedAccount{Name: seed.Name, Balance: balance})
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, target *string) {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}
	boolean := func(key string, target *bool) error {
		value, ok := lookup(key)
		if !ok || value == "" {
			return nil
		}
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*target = parsed
		return nil
	}

	str("PORT", &c.Port)
	str("STORE", &c.Store)
	str("DB_CONNECTION_STRING", &c.DBConnectionString)
	str("SUPABASE_URL", &c.SupabaseURL)
	str("SUPABASE_ANON_KEY", &c.SupabaseAnonKey)
	str("SUPABASE_JWT_SECRET", &c.SupabaseJWTSecret)
	str("LOG_FORMAT", &c.LogFormat)
	str("CORS_ALLOWED_ORIGIN", &c.CORSAllowedOrigin)
	str("OVERDUE_SWEEP_SCHEDULE", &c.OverdueSweepSchedule)

	for key, target := range map[string]*bool{
		"DB_AUTO_MIGRATE":                 &c.DBAutoMigrate,
		"AUTH_REQUIRED":                   &c.AuthRequired,
		"HTTP_EXPOSE_ERRORS":              &c.ExposeErrors,
		"LEDGER_REFUND_PENDING_ON_DELETE": &c.RefundPendingOnDelete,
	} {
		if err := boolean(key, target); err != nil {
			return err
		}
	}

	if value, ok := lookup("LOG_LEVEL"); ok && value != "" {
		if err := c.LogLevel.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	if value, ok := lookup("HTTP_REQUEST_TIMEOUT"); ok && value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid HTTP_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = timeout
	}
	if value, ok := lookup("LEDGER_BALANCE_CAS_RETRIES"); ok && value != "" {
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_BALANCE_CAS_RETRIES: %w", err)
		}
		c.BalanceRetries = retries
	}
	return nil
}

func (c *Config) Validate() error {
	var problems []string
	c.Store = strings.ToLower(c.Store)
	switch c.Store {
	case StorePostgres:
		if c.DBConnectionString == "" {
			problems = append(problems, "DB_CONNECTION_STRING is required when STORE=postgres")
		}
	case StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("STORE must be %q or %q", StorePostgres, StoreMemory))
	}
	if c.SupabaseURL == "" {
		problems = append(problems, "SUPABASE_URL is required")
	}
	if c.SupabaseAnonKey == "" {
		problems = append(problems, "SUPABASE_ANON_KEY is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		problems = append(problems, "LOG_FORMAT must be json or text")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "HTTP_REQUEST_TIMEOUT must be positive")
	}
	if c.BalanceRetries <= 0 {
		problems = append(problems, "LEDGER_BALANCE_CAS_RETRIES must be positive")
	}
	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func setBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}
