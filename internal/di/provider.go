package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/LeJamon/coveredcall/internal/config"
	"github.com/LeJamon/coveredcall/internal/core/ledger/genesis"
	"github.com/LeJamon/coveredcall/internal/core/ledger/store"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/rpc"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
	"github.com/LeJamon/coveredcall/internal/storage"
	"github.com/LeJamon/coveredcall/internal/storage/journal"
	"github.com/sirupsen/logrus"

	// Registers every transaction type with the engine.
	_ "github.com/LeJamon/coveredcall/internal/core/tx/all"
)

// Provider configures and registers services in the container.
type Provider struct {
	container *Container
	config    *config.Config
	version   string
}

// NewProvider creates a new service provider. version is reported by
// server_info.
func NewProvider(container *Container, cfg *config.Config, version string) *Provider {
	return &Provider{
		container: container,
		config:    cfg,
		version:   version,
	}
}

// RegisterAll registers all services.
func (p *Provider) RegisterAll() error {
	if p.config == nil {
		return errors.New("provider requires a configuration")
	}
	p.container.Register(ServiceConfig, p.config)

	p.registerLoggingBuilders()
	p.registerStorageBuilders()
	p.registerEngineBuilders()
	p.registerRPCBuilders()
	return nil
}

func (p *Provider) registerLoggingBuilders() {
	p.container.RegisterBuilder(ServiceLogger, func(c *Container) (interface{}, error) {
		logger := logrus.New()
		closer, err := p.config.Logging.Apply(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to configure logging: %w", err)
		}
		// Closed after every service that logs.
		c.Register(ServiceLogOutput, closer)
		return logger, nil
	})
}

// registerStorageBuilders registers the ledger store, genesis and journal.
func (p *Provider) registerStorageBuilders() {
	p.container.RegisterBuilder(ServiceStore, func(c *Container) (interface{}, error) {
		log, err := p.entry("store")
		if err != nil {
			return nil, err
		}
		cfg := p.config.Storage
		db, err := storage.OpenDB(cfg.Backend, p.config.StoragePath())
		if err != nil {
			return nil, err
		}
		s, err := store.New(db, store.Options{
			Compression: cfg.Compression,
			CacheSize:   cfg.CacheSize,
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"backend":     cfg.Backend,
			"path":        p.config.StoragePath(),
			"compression": cfg.Compression,
		}).Info("ledger store opened")
		return s, nil
	})

	// Genesis is written on first start and loaded afterwards.
	p.container.RegisterBuilder(ServiceGenesis, func(c *Container) (interface{}, error) {
		s, err := p.Store()
		if err != nil {
			return nil, err
		}
		log, err := p.entry("genesis")
		if err != nil {
			return nil, err
		}
		info, err := genesis.Apply(context.Background(), s, p.config.Genesis.ToGenesis())
		switch {
		case errors.Is(err, genesis.ErrAlreadyInitialized):
			log.WithField("hash", info.Hash).Debug("existing genesis loaded")
		case err != nil:
			return nil, err
		default:
			log.WithFields(logrus.Fields{
				"hash":     info.Hash,
				"master":   info.Master,
				"accounts": info.Accounts,
			}).Info("genesis ledger created")
		}
		return info, nil
	})

	// The journal is nil when disabled.
	p.container.RegisterBuilder(ServiceJournal, func(c *Container) (interface{}, error) {
		if !p.config.Journal.Enabled {
			return (*journal.Journal)(nil), nil
		}
		log, err := p.entry("journal")
		if err != nil {
			return nil, err
		}
		jcfg := p.config.JournalConfig()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		j, err := journal.Open(ctx, jcfg)
		if err != nil {
			return nil, err
		}
		log.WithField("driver", jcfg.Driver).Info("transaction journal opened")
		return j, nil
	})
}

func (p *Provider) registerEngineBuilders() {
	p.container.RegisterBuilder(ServiceTxEngine, func(c *Container) (interface{}, error) {
		s, err := p.Store()
		if err != nil {
			return nil, err
		}
		// The ledger must have a genesis before anything is applied.
		if _, err := p.Genesis(); err != nil {
			return nil, err
		}
		j, err := p.Journal()
		if err != nil {
			return nil, err
		}
		log, err := p.entry("engine")
		if err != nil {
			return nil, err
		}
		cfg, err := p.config.Engine.ToEngineConfig()
		if err != nil {
			return nil, err
		}

		opts := []tx.EngineOption{tx.WithLogger(log)}
		if j != nil {
			opts = append(opts, tx.WithJournal(j))
		}
		if p.config.RPC.WebSocket {
			ws, err := p.WebSocket()
			if err != nil {
				return nil, err
			}
			opts = append(opts, tx.WithObserver(ws))
		}
		engine := tx.NewEngine(s, cfg, opts...)

		// The RPC services were built before the engine existed.
		services, err := p.services(c)
		if err != nil {
			return nil, err
		}
		services.Engine = engine
		return engine, nil
	})
}

func (p *Provider) registerRPCBuilders() {
	p.container.RegisterBuilder(ServiceRPCServices, func(c *Container) (interface{}, error) {
		s, err := p.Store()
		if err != nil {
			return nil, err
		}
		info, err := p.Genesis()
		if err != nil {
			return nil, err
		}
		j, err := p.Journal()
		if err != nil {
			return nil, err
		}
		services := &rpc_types.ServiceContainer{
			Ledger:    s,
			Genesis:   info,
			StartTime: time.Now(),
			Version:   p.version,
		}
		if j != nil {
			services.History = j
		}
		return services, nil
	})

	p.container.RegisterBuilder(ServiceRPCServer, func(c *Container) (interface{}, error) {
		services, err := p.services(c)
		if err != nil {
			return nil, err
		}
		log, err := p.entry("rpc")
		if err != nil {
			return nil, err
		}
		cfg := p.config.RPC
		return rpc.NewServer(services, rpc.Options{
			Timeout:       cfg.RequestTimeout,
			MaxBodyBytes:  cfg.MaxBodyBytes,
			AdminLoopback: cfg.AdminLoopback,
			Logger:        log,
		}), nil
	})

	p.container.RegisterBuilder(ServiceWebSocket, func(c *Container) (interface{}, error) {
		server, err := p.RPCServer()
		if err != nil {
			return nil, err
		}
		return rpc.NewWebSocketServer(server), nil
	})
}

func (p *Provider) entry(component string) (*logrus.Entry, error) {
	logger, err := p.Logger()
	if err != nil {
		return nil, err
	}
	return logger.WithField("component", component), nil
}

func (p *Provider) services(c *Container) (*rpc_types.ServiceContainer, error) {
	svc, err := c.Get(ServiceRPCServices)
	if err != nil {
		return nil, err
	}
	return svc.(*rpc_types.ServiceContainer), nil
}

// GetConfig returns the configuration from the container.
func (p *Provider) GetConfig() *config.Config {
	return p.config
}

// Logger returns the configured root logger.
func (p *Provider) Logger() (*logrus.Logger, error) {
	svc, err := p.container.Get(ServiceLogger)
	if err != nil {
		return nil, err
	}
	return svc.(*logrus.Logger), nil
}

// Store returns the ledger store.
func (p *Provider) Store() (*store.Store, error) {
	svc, err := p.container.Get(ServiceStore)
	if err != nil {
		return nil, err
	}
	return svc.(*store.Store), nil
}

// Genesis returns the ledger's genesis, creating it on an empty store.
func (p *Provider) Genesis() (*genesis.Info, error) {
	svc, err := p.container.Get(ServiceGenesis)
	if err != nil {
		return nil, err
	}
	return svc.(*genesis.Info), nil
}

// Journal returns the transaction journal, or nil when it is disabled.
func (p *Provider) Journal() (*journal.Journal, error) {
	svc, err := p.container.Get(ServiceJournal)
	if err != nil {
		return nil, err
	}
	return svc.(*journal.Journal), nil
}

// Engine returns the transaction engine.
func (p *Provider) Engine() (*tx.Engine, error) {
	svc, err := p.container.Get(ServiceTxEngine)
	if err != nil {
		return nil, err
	}
	return svc.(*tx.Engine), nil
}

// RPCServer returns the JSON-RPC server. Its submit method is available once
// Engine has been resolved.
func (p *Provider) RPCServer() (*rpc.Server, error) {
	svc, err := p.container.Get(ServiceRPCServer)
	if err != nil {
		return nil, err
	}
	return svc.(*rpc.Server), nil
}

// WebSocket returns the WebSocket front end.
func (p *Provider) WebSocket() (*rpc.WebSocketServer, error) {
	svc, err := p.container.Get(ServiceWebSocket)
	if err != nil {
		return nil, err
	}
	return svc.(*rpc.WebSocketServer), nil
}

// Node resolves every service a running node needs.
func (p *Provider) Node() (*Node, error) {
	engine, err := p.Engine()
	if err != nil {
		return nil, err
	}
	server, err := p.RPCServer()
	if err != nil {
		return nil, err
	}
	logger, err := p.Logger()
	if err != nil {
		return nil, err
	}
	info, err := p.Genesis()
	if err != nil {
		return nil, err
	}
	node := &Node{
		Config:  p.config,
		Logger:  logger,
		Genesis: info,
		Engine:  engine,
		RPC:     server,
	}
	if p.config.RPC.WebSocket {
		if node.WebSocket, err = p.WebSocket(); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// Node is a fully wired node.
type Node struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Genesis   *genesis.Info
	Engine    *tx.Engine
	RPC       *rpc.Server
	WebSocket *rpc.WebSocketServer
}

// Handler serves JSON-RPC and, when enabled, WebSocket.
func (n *Node) Handler() http.Handler {
	return rpc.Handler(n.RPC, n.WebSocket)
}
