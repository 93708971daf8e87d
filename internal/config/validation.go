package config

import (
	"fmt"
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if config.DataDir == "" && config.Storage.Backend != "memory" {
		return fmt.Errorf("data_dir is required for the %s backend", config.Storage.Backend)
	}

	if err := config.Storage.Validate(); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}

	if config.Journal.Enabled {
		if err := config.JournalConfig().Validate(); err != nil {
			return fmt.Errorf("journal validation failed: %w", err)
		}
	}

	if err := config.Engine.Validate(); err != nil {
		return fmt.Errorf("engine validation failed: %w", err)
	}

	if err := config.Logging.Validate(); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	if err := config.RPC.Validate(); err != nil {
		return fmt.Errorf("rpc validation failed: %w", err)
	}

	if err := config.Genesis.Validate(); err != nil {
		return fmt.Errorf("genesis validation failed: %w", err)
	}

	return nil
}
