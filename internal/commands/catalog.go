package commands

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-stageconfig/internal/restart"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
	SetSecret         command.Commander[SetSecret]
	RemoveSecret      command.Commander[RemoveSecret]
	SetParameter      command.Commander[SetParameter]
	RemoveParameter   command.Commander[RemoveParameter]
	RestartDependents command.Commander[RestartDependents]
}

type configService interface {
	SetSecret(ctx context.Context, key, value string, fallback bool) error
	RemoveSecret(ctx context.Context, key string, fallback bool) error
	SetParameter(ctx context.Context, id, prop, value string) error
	RemoveParameter(ctx context.Context, id, prop string) error
}

type restartService interface {
	Restart(ctx context.Context, keys []string) (*restart.Report, error)
}

// Dependencies wires the resolver and restarter into the command catalog.
type Dependencies struct {
	Resolver  configService
	Restarter restartService
	Logger    logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Resolver == nil {
		return nil, errors.New("commands: resolver service is required")
	}
	if deps.Restarter == nil {
		return nil, errors.New("commands: restart service is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		SetSecret:         setSecretCommand{svc: deps.Resolver},
		RemoveSecret:      removeSecretCommand{svc: deps.Resolver},
		SetParameter:      setParameterCommand{svc: deps.Resolver},
		RemoveParameter:   removeParameterCommand{svc: deps.Resolver},
		RestartDependents: restartCommand{svc: deps.Restarter, logger: deps.Logger},
	}, nil
}

// SetSecret upserts one secret in the stage or fallback tier.
type SetSecret struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Fallback bool   `json:"fallback"`
}

type setSecretCommand struct {
	svc configService
}

func (c setSecretCommand) Execute(ctx context.Context, msg SetSecret) error {
	msg.Name = strings.TrimSpace(msg.Name)
	if msg.Name == "" {
		return errors.New("commands: secret name is required")
	}
	return c.svc.SetSecret(ctx, msg.Name, msg.Value, msg.Fallback)
}

// RemoveSecret deletes one secret tier.
type RemoveSecret struct {
	Name     string `json:"name"`
	Fallback bool   `json:"fallback"`
}

type removeSecretCommand struct {
	svc configService
}

func (c removeSecretCommand) Execute(ctx context.Context, msg RemoveSecret) error {
	msg.Name = strings.TrimSpace(msg.Name)
	if msg.Name == "" {
		return errors.New("commands: secret name is required")
	}
	return c.svc.RemoveSecret(ctx, msg.Name, msg.Fallback)
}

// SetParameter upserts one stage-scoped parameter property.
type SetParameter struct {
	ID    string `json:"id"`
	Prop  string `json:"prop"`
	Value string `json:"value"`
}

type setParameterCommand struct {
	svc configService
}

func (c setParameterCommand) Execute(ctx context.Context, msg SetParameter) error {
	if strings.TrimSpace(msg.ID) == "" || strings.TrimSpace(msg.Prop) == "" {
		return errors.New("commands: parameter id and prop are required")
	}
	return c.svc.SetParameter(ctx, msg.ID, msg.Prop, msg.Value)
}

// RemoveParameter deletes one stage-scoped parameter property.
type RemoveParameter struct {
	ID   string `json:"id"`
	Prop string `json:"prop"`
}

type removeParameterCommand struct {
	svc configService
}

func (c removeParameterCommand) Execute(ctx context.Context, msg RemoveParameter) error {
	if strings.TrimSpace(msg.ID) == "" || strings.TrimSpace(msg.Prop) == "" {
		return errors.New("commands: parameter id and prop are required")
	}
	return c.svc.RemoveParameter(ctx, msg.ID, msg.Prop)
}

// RestartDependents propagates changed secret keys to dependent compute.
type RestartDependents struct {
	Keys []string `json:"keys"`
}

type restartCommand struct {
	svc    restartService
	logger logger.Logger
}

func (c restartCommand) Execute(ctx context.Context, msg RestartDependents) error {
	if len(msg.Keys) == 0 {
		return errors.New("commands: at least one key is required")
	}
	report, err := c.svc.Restart(ctx, msg.Keys)
	if report != nil {
		c.logger.Info("restart report",
			logger.F("restarted_functions", len(report.RestartedFunctions)),
			logger.F("restarted_sites", len(report.RestartedSites)),
			logger.F("edge_sites", len(report.EdgeSites)),
			logger.F("placeholder_sites", len(report.PlaceholderSites)),
			logger.F("prefetch_sites", len(report.PrefetchSites)),
			logger.F("prefetch_functions", len(report.PrefetchFunctions)),
			logger.F("not_found", len(report.NotFound)))
	}
	return err
}
