package commands

import (
	"errors"

	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-stageconfig/internal/commands"
	"github.com/goliatone/go-stageconfig/internal/resolver"
	"github.com/goliatone/go-stageconfig/internal/restart"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
)

// Re-export request types so consumers need not import internal packages.
type (
	SetSecret         = internalcommands.SetSecret
	RemoveSecret      = internalcommands.RemoveSecret
	SetParameter      = internalcommands.SetParameter
	RemoveParameter   = internalcommands.RemoveParameter
	RestartDependents = internalcommands.RestartDependents
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog           *internalcommands.Catalog
	SetSecret         command.Commander[SetSecret]
	RemoveSecret      command.Commander[RemoveSecret]
	SetParameter      command.Commander[SetParameter]
	RemoveParameter   command.Commander[RemoveParameter]
	RestartDependents command.Commander[RestartDependents]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Resolver  *resolver.Service
	Restarter *restart.Service
	Logger    logger.Logger
}

// New builds the registry using the provided dependencies. The nil checks
// happen here, on the concrete pointers: a nil *Service wrapped into the
// catalog's interface fields would slip past the interface nil checks.
func New(deps Dependencies) (*Registry, error) {
	if deps.Resolver == nil {
		return nil, errors.New("commands: resolver service is required")
	}
	if deps.Restarter == nil {
		return nil, errors.New("commands: restart service is required")
	}
	catalog, err := internalcommands.NewCatalog(internalcommands.Dependencies{
		Resolver:  deps.Resolver,
		Restarter: deps.Restarter,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:           catalog,
		SetSecret:         catalog.SetSecret,
		RemoveSecret:      catalog.RemoveSecret,
		SetParameter:      catalog.SetParameter,
		RemoveParameter:   catalog.RemoveParameter,
		RestartDependents: catalog.RestartDependents,
	}, nil
}
