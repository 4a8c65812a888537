package stageconfig

import (
	"github.com/goliatone/go-stageconfig/internal/di"
	"github.com/goliatone/go-stageconfig/internal/resolver"
	"github.com/goliatone/go-stageconfig/internal/restart"
	"github.com/goliatone/go-stageconfig/pkg/commands"
	"github.com/goliatone/go-stageconfig/pkg/config"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/compute"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/metadata"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/paramstore"
)

// Re-export service value types so hosts need not import internal packages.
type (
	Parameter = resolver.Parameter
	Secret    = resolver.Secret
	Report    = restart.Report
)

// ModuleOptions configure the stage config module facade.
type ModuleOptions struct {
	Config   config.Config
	Store    paramstore.Store
	Compute  compute.API
	Metadata metadata.Provider
	// Broadcasters all receive every domain event; they are composed into a
	// fan-out channel so hosts can pair the IoT publisher with audit sinks.
	Broadcasters []broadcaster.Broadcaster
	Logger       logger.Logger
}

// Module bundles the container and exposes high-level accessors.
type Module struct {
	container *di.Container
	manager   *Manager
}

// NewModule assembles the resolver, restarter, manager, and commands.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:       opts.Config,
		Store:        opts.Store,
		Compute:      opts.Compute,
		Metadata:     opts.Metadata,
		Broadcasters: opts.Broadcasters,
		Logger:       opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	manager, err := NewManager(ManagerDependencies{
		Resolver:  container.Resolver,
		Restarter: container.Restarter,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Module{container: container, manager: manager}, nil
}

// Manager returns the high-level secret manager.
func (m *Module) Manager() *Manager {
	if m == nil || m.container == nil {
		return nil
	}
	return m.manager
}

// Resolver returns the parameter resolver service.
func (m *Module) Resolver() *resolver.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Resolver
}

// Restarter returns the dependent restart service.
func (m *Module) Restarter() *restart.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Restarter
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct service access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}
