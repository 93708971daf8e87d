package config

import (
	"fmt"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/oracle"
	"github.com/LeJamon/coveredcall/internal/core/tx"
)

// EngineConfig represents the [engine] section
type EngineConfig struct {
	// SettlementPolicy is "oracle" (European, cash-settled against the
	// expiry mark) or "physical" (American, quote for base)
	SettlementPolicy string        `toml:"settlement_policy" mapstructure:"settlement_policy"`
	MarkWindow       time.Duration `toml:"mark_window" mapstructure:"mark_window"`
	MaxPriceAge      time.Duration `toml:"max_price_age" mapstructure:"max_price_age"`

	Deposits DepositsConfig `toml:"deposits" mapstructure:"deposits"`
	MarkFeed MarkFeedConfig `toml:"mark_feed" mapstructure:"mark_feed"`
}

// MarkFeedConfig represents the [engine.mark_feed] section: the one price
// feed expiry marks are read from. Left empty, no expiry can be marked.
type MarkFeedConfig struct {
	Publisher string `toml:"publisher" mapstructure:"publisher"`
	FeedID    string `toml:"feed_id" mapstructure:"feed_id"`
}

// IsSet reports whether any mark feed field is set.
func (m *MarkFeedConfig) IsSet() bool {
	return m.Publisher != "" || m.FeedID != ""
}

// Feed decodes the configured feed.
func (m *MarkFeedConfig) Feed() (oracle.Feed, error) {
	if !m.IsSet() {
		return oracle.Feed{}, nil
	}
	publisher, err := tx.DecodeAddress("publisher", m.Publisher)
	if err != nil {
		return oracle.Feed{}, fmt.Errorf("mark_feed: %w", err)
	}
	id, err := tx.DecodeHash("feed_id", m.FeedID)
	if err != nil {
		return oracle.Feed{}, fmt.Errorf("mark_feed: %w", err)
	}
	return oracle.Feed{Publisher: publisher, ID: id}, nil
}

// DepositsConfig represents the [engine.deposits] section, in native minor units
type DepositsConfig struct {
	Holding   uint64 `toml:"holding" mapstructure:"holding"`
	Option    uint64 `toml:"option" mapstructure:"option"`
	Mark      uint64 `toml:"mark" mapstructure:"mark"`
	Mint      uint64 `toml:"mint" mapstructure:"mint"`
	PriceFeed uint64 `toml:"price_feed" mapstructure:"price_feed"`
}

// Validate performs validation on the engine configuration
func (e *EngineConfig) Validate() error {
	if _, err := tx.ParseSettlementPolicy(e.SettlementPolicy); err != nil {
		return err
	}
	if e.MarkWindow <= 0 {
		return fmt.Errorf("mark_window must be positive, got %s", e.MarkWindow)
	}
	if e.MaxPriceAge <= 0 {
		return fmt.Errorf("max_price_age must be positive, got %s", e.MaxPriceAge)
	}
	if _, err := e.MarkFeed.Feed(); err != nil {
		return err
	}
	return nil
}

// ToEngineConfig converts the section for tx.NewEngine.
func (e *EngineConfig) ToEngineConfig() (tx.EngineConfig, error) {
	policy, err := tx.ParseSettlementPolicy(e.SettlementPolicy)
	if err != nil {
		return tx.EngineConfig{}, err
	}
	feed, err := e.MarkFeed.Feed()
	if err != nil {
		return tx.EngineConfig{}, err
	}
	return tx.EngineConfig{
		Deposits: tx.DepositSchedule{
			Holding:   e.Deposits.Holding,
			Option:    e.Deposits.Option,
			Mark:      e.Deposits.Mark,
			Mint:      e.Deposits.Mint,
			PriceFeed: e.Deposits.PriceFeed,
		},
		SettlementPolicy: policy,
		MarkWindow:       e.MarkWindow,
		MaxPriceAge:      e.MaxPriceAge,
		MarkFeed:         feed,
	}, nil
}
