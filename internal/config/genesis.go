package config

import (
	"fmt"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/genesis"
)

// GenesisConfig represents the [genesis] section
type GenesisConfig struct {
	Supply uint64 `toml:"supply" mapstructure:"supply"`
	// CloseTime is unix seconds
	CloseTime int64             `toml:"close_time" mapstructure:"close_time"`
	Accounts  []genesis.Account `toml:"accounts" mapstructure:"accounts"`
}

// Validate performs validation on the genesis configuration
func (g *GenesisConfig) Validate() error {
	if g.Supply == 0 {
		return fmt.Errorf("supply must be positive")
	}
	return nil
}

// ToGenesis converts the section for genesis.Apply.
func (g *GenesisConfig) ToGenesis() genesis.Config {
	return genesis.Config{
		Supply:    g.Supply,
		Accounts:  g.Accounts,
		CloseTime: time.Unix(g.CloseTime, 0).UTC(),
	}
}
