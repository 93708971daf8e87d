// Package di wires the node's services together from configuration.
package di

import (
	"errors"
	"io"
	"sync"
)

// Container is the dependency injection container.
// It manages service registration and resolution. Services are built on
// first use; resolve them from one goroutine while starting up.
type Container struct {
	mu       sync.RWMutex
	services map[string]interface{}
	builders map[string]Builder
	// order lists built and registered services so Close can release them
	// in reverse.
	order []string
}

// Builder is a function that creates a service instance.
type Builder func(c *Container) (interface{}, error)

// New creates a new dependency injection container.
func New() *Container {
	return &Container{
		services: make(map[string]interface{}),
		builders: make(map[string]Builder),
	}
}

// Register registers a service instance.
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.services[name]; !exists {
		c.order = append(c.order, name)
	}
	c.services[name] = service
}

// RegisterBuilder registers a builder function for lazy instantiation.
func (c *Container) RegisterBuilder(name string, builder Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = builder
}

// Get retrieves a service by name, building it if needed. Builders may
// resolve their own dependencies through c.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	service, exists := c.services[name]
	builder, hasBuilder := c.builders[name]
	c.mu.RUnlock()

	if exists {
		return service, nil
	}
	if !hasBuilder {
		return nil, errors.New("service not found: " + name)
	}

	service, err := builder(c)
	if err != nil {
		return nil, err
	}
	c.Register(name, service)
	return service, nil
}

// MustGet retrieves a service or panics if not found.
func (c *Container) MustGet(name string) interface{} {
	service, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return service
}

// Has checks if a service is registered.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.services[name]
	if exists {
		return true
	}
	_, exists = c.builders[name]
	return exists
}

// Close closes every service implementing io.Closer, newest first, and
// forgets all services. Builders stay registered.
func (c *Container) Close() error {
	c.mu.Lock()
	order := c.order
	services := c.services
	c.order = nil
	c.services = make(map[string]interface{})
	c.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if closer, ok := services[order[i]].(io.Closer); ok && closer != nil {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Service names constants for type-safe access.
const (
	ServiceConfig      = "config"
	ServiceLogger      = "logger"
	ServiceLogOutput   = "logger.output"
	ServiceStore       = "ledger.store"
	ServiceGenesis     = "ledger.genesis"
	ServiceJournal     = "journal"
	ServiceTxEngine    = "tx.engine"
	ServiceRPCServices = "rpc.services"
	ServiceRPCServer   = "rpc.server"
	ServiceWebSocket   = "rpc.websocket"
)
