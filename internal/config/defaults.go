package config

import (
	"github.com/LeJamon/coveredcall/internal/core/ledger/genesis"
	"github.com/LeJamon/coveredcall/internal/core/ledger/store"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/spf13/viper"
)

// setDefaults sets every default value. Every key has a default so that
// environment variables can override any of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")

	// Storage
	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.compression", "lz4")
	v.SetDefault("storage.cache_size", store.DefaultCacheSize)

	// Journal
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "")
	v.SetDefault("journal.max_open_conns", 10)
	v.SetDefault("journal.conn_max_lifetime", "1h")
	v.SetDefault("journal.timeout", "30s")

	// Engine
	engine := tx.DefaultEngineConfig()
	v.SetDefault("engine.settlement_policy", string(engine.SettlementPolicy))
	v.SetDefault("engine.mark_window", engine.MarkWindow.String())
	v.SetDefault("engine.max_price_age", engine.MaxPriceAge.String())
	v.SetDefault("engine.deposits.holding", engine.Deposits.Holding)
	v.SetDefault("engine.deposits.option", engine.Deposits.Option)
	v.SetDefault("engine.deposits.mark", engine.Deposits.Mark)
	v.SetDefault("engine.deposits.mint", engine.Deposits.Mint)
	v.SetDefault("engine.deposits.price_feed", engine.Deposits.PriceFeed)
	v.SetDefault("engine.mark_feed.publisher", "")
	v.SetDefault("engine.mark_feed.feed_id", "")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")

	// RPC
	v.SetDefault("rpc.listen", "127.0.0.1:5005")
	v.SetDefault("rpc.websocket", true)
	v.SetDefault("rpc.read_timeout", "10s")
	v.SetDefault("rpc.write_timeout", "10s")
	v.SetDefault("rpc.max_body_bytes", 1<<20)
	v.SetDefault("rpc.request_timeout", "30s")
	v.SetDefault("rpc.admin_loopback", true)

	// Genesis
	v.SetDefault("genesis.supply", genesis.InitialSupply)
	v.SetDefault("genesis.close_time", 0)
}
