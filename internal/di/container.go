package di

import (
	"reflect"

	"github.com/goliatone/go-stageconfig/internal/resolver"
	"github.com/goliatone/go-stageconfig/internal/restart"
	"github.com/goliatone/go-stageconfig/internal/storage/memory"
	"github.com/goliatone/go-stageconfig/pkg/commands"
	"github.com/goliatone/go-stageconfig/pkg/config"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/compute"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/metadata"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/paramstore"
)

// Options configure the DI container.
type Options struct {
	Config   config.Config
	Store    paramstore.Store
	Compute  compute.API
	Metadata metadata.Provider
	// Broadcasters are composed into a single fan-out channel; zero entries
	// fall back to a no-op broadcaster.
	Broadcasters []broadcaster.Broadcaster
	Logger       logger.Logger
}

// Container wires the resolver, restarter, and command registry.
type Container struct {
	Config    config.Config
	Resolver  *resolver.Service
	Restarter *restart.Service
	Commands  *commands.Registry
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options. Missing
// collaborators fall back to in-memory or no-op implementations so the
// container is usable in tests and local tooling without AWS access.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store = memory.NewParameterStore()
	}

	api := opts.Compute
	if api == nil {
		api = memory.NewComputeAPI()
	}

	provider := opts.Metadata
	if provider == nil {
		provider = memory.NewMetadataProvider()
	}

	b := broadcaster.Compose(opts.Broadcasters...)

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	resolverSvc, err := resolver.New(resolver.Dependencies{
		Config:      cfg,
		Store:       store,
		Broadcaster: b,
		Logger:      lgr,
	})
	if err != nil {
		return nil, err
	}

	restartSvc, err := restart.New(restart.Dependencies{
		Config:   cfg,
		Compute:  api,
		Metadata: provider,
		Logger:   lgr,
	})
	if err != nil {
		return nil, err
	}

	cmdRegistry, err := commands.New(commands.Dependencies{
		Resolver:  resolverSvc,
		Restarter: restartSvc,
		Logger:    lgr,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:    cfg,
		Resolver:  resolverSvc,
		Restarter: restartSvc,
		Commands:  cmdRegistry,
	}, nil
}
