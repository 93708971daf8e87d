package config

import (
	"path/filepath"
)

// Config represents the complete coveredcalld configuration
type Config struct {
	// DataDir holds the ledger database and, by default, the journal
	DataDir string `toml:"data_dir" mapstructure:"data_dir"`

	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`
	Logging LogConfig     `toml:"logging" mapstructure:"logging"`
	RPC     RPCConfig     `toml:"rpc" mapstructure:"rpc"`
	Genesis GenesisConfig `toml:"genesis" mapstructure:"genesis"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ConfigPaths holds the paths to configuration files
type ConfigPaths struct {
	Main string
}

// DefaultConfigPaths returns the default configuration file paths
func DefaultConfigPaths() ConfigPaths {
	return ConfigPaths{
		Main: "coveredcalld.toml",
	}
}

// ConfigPathsFromDir creates config paths from a directory
func ConfigPathsFromDir(configDir string) ConfigPaths {
	return ConfigPaths{
		Main: filepath.Join(configDir, "coveredcalld.toml"),
	}
}

// GetConfigPath returns the path the configuration was loaded from, empty
// when only defaults and the environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// StoragePath returns the directory of the ledger database.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return c.DataDir
}
