// Package config loads the service configuration.
//
// Values come from Default, then the YAML file named by the --config flag or
// APP_CONFIG, then environment variables. The file is optional; a missing
// database DSN is not.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the file to load when no --config flag is given.
const ConfigEnv = "APP_CONFIG"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Address           string        `yaml:"address"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is "pgx" for Postgres or "sqlite".
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	// TxTimeout aborts a transaction that runs longer. Zero disables it.
	TxTimeout time.Duration `yaml:"tx_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:           ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "pgx",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			TxTimeout:       10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from path (may be empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironment lets the deployment environment override the file.
// POSTGRES_CONN alone selects the Postgres driver.
func (c *Config) applyEnvironment() {
	if v, ok := os.LookupEnv("SERVER_ADDRESS"); ok && v != "" {
		c.Server.Address = v
	}
	if v, ok := os.LookupEnv("POSTGRES_CONN"); ok && v != "" {
		c.Database.DSN = v
		c.Database.Driver = "pgx"
	}
	if v, ok := os.LookupEnv("DATABASE_DRIVER"); ok && v != "" {
		c.Database.Driver = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}

	switch c.Database.Driver {
	case "pgx", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not one of pgx, sqlite", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required (or set POSTGRES_CONN)"))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database connection limits must not be negative"))
	}
	if c.Database.TxTimeout < 0 {
		errs = append(errs, errors.New("database.tx_timeout must not be negative"))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// NewLogger builds the process logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}

	return level, nil
}
