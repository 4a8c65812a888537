package stageconfig

import (
	"context"
	"errors"

	"github.com/goliatone/go-stageconfig/internal/resolver"
	"github.com/goliatone/go-stageconfig/internal/restart"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
)

// Manager orchestrates secret writes with dependent restart propagation.
type Manager struct {
	resolver  *resolver.Service
	restarter *restart.Service
	logger    logger.Logger
}

// ManagerDependencies bundles the services required by the manager.
type ManagerDependencies struct {
	Resolver  *resolver.Service
	Restarter *restart.Service
	Logger    logger.Logger
}

var (
	ErrMissingResolver  = errors.New("stageconfig: resolver service is required")
	ErrMissingRestarter = errors.New("stageconfig: restart service is required")
)

// NewManager constructs the manager from already-built services.
func NewManager(deps ManagerDependencies) (*Manager, error) {
	if deps.Resolver == nil {
		return nil, ErrMissingResolver
	}
	if deps.Restarter == nil {
		return nil, ErrMissingRestarter
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Manager{
		resolver:  deps.Resolver,
		restarter: deps.Restarter,
		logger:    deps.Logger,
	}, nil
}

// ApplySecret stores a secret value and restarts every dependent resource.
// The write happens first; a restart failure never rolls back the value.
func (m *Manager) ApplySecret(ctx context.Context, name, value string, fallback bool) (*Report, error) {
	if name == "" {
		return nil, errors.New("stageconfig: secret name is required")
	}
	if err := m.resolver.SetSecret(ctx, name, value, fallback); err != nil {
		return nil, err
	}
	return m.restarter.Restart(ctx, []string{name})
}

// DiscardSecret removes a secret tier and restarts every dependent resource
// so deployed code stops seeing the stale value.
func (m *Manager) DiscardSecret(ctx context.Context, name string, fallback bool) (*Report, error) {
	if name == "" {
		return nil, errors.New("stageconfig: secret name is required")
	}
	if err := m.resolver.RemoveSecret(ctx, name, fallback); err != nil {
		return nil, err
	}
	return m.restarter.Restart(ctx, []string{name})
}

// Environment resolves the merged runtime environment for the configured
// app and stage.
func (m *Manager) Environment(ctx context.Context) (map[string]string, error) {
	return m.resolver.BuildEnvironment(ctx)
}
