package journal

import (
	"errors"
	"fmt"
	"time"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrInvalidDriver       = errors.New("invalid journal driver")
	ErrMissingDSN          = errors.New("journal dsn is required")
	ErrInvalidMaxOpenConns = errors.New("max open connections must be >= 0")
	ErrInvalidTimeout      = errors.New("timeout must be positive")
)

// Config contains journal database settings
type Config struct {
	Driver string `mapstructure:"driver" toml:"driver"`

	// DSN is a file path for sqlite and a connection string for postgres
	DSN string `mapstructure:"dsn" toml:"dsn"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" toml:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" toml:"conn_max_lifetime"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout" toml:"default_timeout"`
}

// SQLiteConfig returns a configuration for a sqlite file at path.
func SQLiteConfig(path string) Config {
	return Config{
		Driver: DriverSQLite,
		DSN:    path,
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		MaxOpenConns:   1,
		DefaultTimeout: 10 * time.Second,
	}
}

// PostgresConfig returns a configuration for a postgres connection string.
func PostgresConfig(dsn string) Config {
	return Config{
		Driver:          DriverPostgres,
		DSN:             dsn,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  30 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Driver)
	}
	if c.DSN == "" {
		return ErrMissingDSN
	}
	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
