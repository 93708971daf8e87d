package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/LeJamon/coveredcall/internal/storage"
	"github.com/LeJamon/coveredcall/internal/storage/compression"
	"github.com/LeJamon/coveredcall/internal/storage/journal"
)

// StorageConfig represents the [storage] section
type StorageConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	Compression string `toml:"compression" mapstructure:"compression"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
}

// Validate performs validation on the storage configuration
func (s *StorageConfig) Validate() error {
	known := false
	for _, b := range storage.Backends() {
		if s.Backend == b {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown backend %q (valid options: %v)", s.Backend, storage.Backends())
	}
	if _, err := compression.Get(s.Compression); err != nil {
		return fmt.Errorf("unknown compression %q (valid options: %v)", s.Compression, compression.Available())
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", s.CacheSize)
	}
	return nil
}

// JournalConfig represents the [journal] section
type JournalConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Driver  string `toml:"driver" mapstructure:"driver"`

	// DSN defaults to journal.db under the data directory for sqlite
	DSN string `toml:"dsn" mapstructure:"dsn"`

	MaxOpenConns    int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	Timeout         time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// JournalConfig converts the section into the journal's own configuration.
func (c *Config) JournalConfig() journal.Config {
	j := c.Journal
	dsn := j.DSN
	if dsn == "" && j.Driver == journal.DriverSQLite {
		dsn = filepath.Join(c.DataDir, "journal.db")
	}
	maxOpen := j.MaxOpenConns
	if j.Driver == journal.DriverSQLite {
		maxOpen = 1
	}
	return journal.Config{
		Driver:          j.Driver,
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		ConnMaxLifetime: j.ConnMaxLifetime,
		DefaultTimeout:  j.Timeout,
	}
}
