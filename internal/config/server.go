package config

import (
	"fmt"
	"net"
	"time"
)

// RPCConfig represents the [rpc] section
type RPCConfig struct {
	Listen       string        `toml:"listen" mapstructure:"listen"`
	WebSocket    bool          `toml:"websocket" mapstructure:"websocket"`
	ReadTimeout  time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes" mapstructure:"max_body_bytes"`
	// RequestTimeout bounds a single method call.
	RequestTimeout time.Duration `toml:"request_timeout" mapstructure:"request_timeout"`
	// AdminLoopback trusts clients connecting from a loopback address.
	AdminLoopback bool `toml:"admin_loopback" mapstructure:"admin_loopback"`
}

// Validate performs validation on the RPC configuration
func (r *RPCConfig) Validate() error {
	if _, _, err := net.SplitHostPort(r.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", r.Listen, err)
	}
	if r.ReadTimeout <= 0 || r.WriteTimeout <= 0 || r.RequestTimeout <= 0 {
		return fmt.Errorf("read_timeout, write_timeout and request_timeout must be positive")
	}
	if r.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", r.MaxBodyBytes)
	}
	return nil
}
