package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-stageconfig/pkg/config"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/paramstore"
	"github.com/goliatone/go-stageconfig/pkg/mask"
	"github.com/google/uuid"
)

// SecretUpdatedEvent is published after every successful secret write.
const SecretUpdatedEvent = "config.secret.updated"

// SecretUpdatedPayload names the secret that changed.
type SecretUpdatedPayload struct {
	Name string `json:"name"`
}

// Parameter is one resolved entry from the store.
type Parameter struct {
	Kind     Kind
	ID       string
	Prop     string
	Value    string
	Fallback bool
}

// Secret combines the stage and fallback tiers of one logical secret. A
// secret is present even when only the fallback tier is set.
type Secret struct {
	Value    *string
	Fallback *string
}

// Dependencies wires the store, event channel, and logger into the resolver.
type Dependencies struct {
	Config      config.Config
	Store       paramstore.Store
	Broadcaster broadcaster.Broadcaster
	Logger      logger.Logger
}

// Service resolves stage-qualified configuration with fallback precedence.
type Service struct {
	cfg    config.Config
	store  paramstore.Store
	bcast  broadcaster.Broadcaster
	logger logger.Logger
	paths  Paths
}

var ErrMissingStore = errors.New("resolver: parameter store is required")

// New builds the resolver service.
func New(deps Dependencies) (*Service, error) {
	if deps.Store == nil {
		return nil, ErrMissingStore
	}
	if err := deps.Config.Validate(); err != nil {
		return nil, fmt.Errorf("resolver: config: %w", err)
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = &broadcaster.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Service{
		cfg:    deps.Config,
		store:  deps.Store,
		bcast:  deps.Broadcaster,
		logger: deps.Logger,
		paths:  NewPaths(deps.Config),
	}, nil
}

// Paths exposes the path builder bound to this service's app/stage.
func (s *Service) Paths() Paths { return s.paths }

// ListParameters returns every non-secret parameter, fallback entries first,
// then stage entries. Consumers that fold the result into a map rely on stage
// entries appearing later so they win on key collision. Secrets never appear
// here; they are resolved through ListSecrets only.
func (s *Service) ListParameters(ctx context.Context) ([]Parameter, error) {
	fallback, err := s.scanScope(ctx, true)
	if err != nil {
		return nil, err
	}
	stage, err := s.scanScope(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]Parameter, 0, len(fallback)+len(stage))
	for _, p := range append(fallback, stage...) {
		if p.Kind == KindSecret {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ListSecrets returns every secret id with whichever tiers are set.
func (s *Service) ListSecrets(ctx context.Context) (map[string]Secret, error) {
	out := map[string]Secret{}

	stage, err := s.scanScope(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, p := range stage {
		if p.Kind != KindSecret {
			continue
		}
		value := p.Value
		entry := out[p.ID]
		entry.Value = &value
		out[p.ID] = entry
	}

	fallback, err := s.scanScope(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, p := range fallback {
		if p.Kind != KindSecret {
			continue
		}
		value := p.Value
		entry := out[p.ID]
		entry.Fallback = &value
		out[p.ID] = entry
	}

	return out, nil
}

// BuildEnvironment assembles the runtime environment map: the two process
// identity entries plus one entry per resolved parameter. Stage values
// overwrite fallback values for the same key.
func (s *Service) BuildEnvironment(ctx context.Context) (map[string]string, error) {
	params, err := s.ListParameters(ctx)
	if err != nil {
		return nil, err
	}
	env := map[string]string{
		"SST_APP":   s.cfg.App,
		"SST_STAGE": s.cfg.Stage,
	}
	for _, p := range params {
		env[EnvVarName(p.Kind, p.Prop, p.ID)] = p.Value
	}
	return env, nil
}

// SetSecret upserts the secret's value in the given tier and publishes
// config.secret.updated. Publishing is the sole notification; restarting
// dependents is a separate explicit operation.
func (s *Service) SetSecret(ctx context.Context, key, value string, fallback bool) error {
	path := s.paths.ForSecret(key, fallback)
	if err := s.store.Put(ctx, path, value); err != nil {
		return fmt.Errorf("resolver: set secret %s: %w", key, err)
	}
	s.logger.Info("secret updated",
		logger.F("name", key),
		logger.F("value", mask.Value(value)),
		logger.F("fallback", fallback))

	evt := broadcaster.Event{
		ID:      uuid.NewString(),
		Topic:   s.cfg.EventTopic(),
		Name:    SecretUpdatedEvent,
		Payload: SecretUpdatedPayload{Name: key},
	}
	if err := s.bcast.Broadcast(ctx, evt); err != nil {
		return fmt.Errorf("resolver: publish %s: %w", SecretUpdatedEvent, err)
	}
	return nil
}

// GetSecret reads the secret's value in the given tier.
func (s *Service) GetSecret(ctx context.Context, key string, fallback bool) (string, bool, error) {
	value, ok, err := s.store.Get(ctx, s.paths.ForSecret(key, fallback))
	if err != nil {
		return "", false, fmt.Errorf("resolver: get secret %s: %w", key, err)
	}
	return value, ok, nil
}

// RemoveSecret deletes the secret's value in the given tier.
func (s *Service) RemoveSecret(ctx context.Context, key string, fallback bool) error {
	if err := s.store.Delete(ctx, s.paths.ForSecret(key, fallback)); err != nil {
		return fmt.Errorf("resolver: remove secret %s: %w", key, err)
	}
	s.logger.Info("secret removed", logger.F("name", key), logger.F("fallback", fallback))
	return nil
}

// SetParameter upserts a plain stage-scoped parameter property.
func (s *Service) SetParameter(ctx context.Context, id, prop, value string) error {
	path := s.paths.For(KindParameter, id, prop, false)
	if err := s.store.Put(ctx, path, value); err != nil {
		return fmt.Errorf("resolver: set parameter %s/%s: %w", id, prop, err)
	}
	return nil
}

// RemoveParameter deletes a plain stage-scoped parameter property.
func (s *Service) RemoveParameter(ctx context.Context, id, prop string) error {
	if err := s.store.Delete(ctx, s.paths.For(KindParameter, id, prop, false)); err != nil {
		return fmt.Errorf("resolver: remove parameter %s/%s: %w", id, prop, err)
	}
	return nil
}

func (s *Service) scanScope(ctx context.Context, fallback bool) ([]Parameter, error) {
	var out []Parameter
	for raw, err := range s.store.Scan(ctx, s.cfg.ScopePrefix(fallback)) {
		if err != nil {
			return nil, fmt.Errorf("resolver: scan: %w", err)
		}
		kind, id, prop, ok := s.paths.Parse(raw.Name, fallback)
		if !ok {
			continue
		}
		out = append(out, Parameter{
			Kind:     kind,
			ID:       id,
			Prop:     prop,
			Value:    raw.Value,
			Fallback: fallback,
		})
	}
	return out, nil
}
