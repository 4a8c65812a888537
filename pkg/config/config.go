package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-config/cfgx"
)

// Config captures module-level configuration knobs. Feature packages
// (resolver, restart, adapters) pull from these fields.
type Config struct {
	// App and Stage identify the deployment this process belongs to.
	App   string `mapstructure:"app" json:"app"`
	Stage string `mapstructure:"stage" json:"stage"`

	// FallbackStage is the pseudo-stage shared across all real stages of an
	// app; values written there act as defaults for every stage.
	FallbackStage string `mapstructure:"fallback_stage" json:"fallback_stage"`

	// PathPrefix roots every parameter path in the hierarchical store.
	PathPrefix string `mapstructure:"path_prefix" json:"path_prefix"`

	// EventPrefix roots the pub/sub topic used for domain events. Empty means
	// "{app}/{stage}".
	EventPrefix string `mapstructure:"event_prefix" json:"event_prefix"`

	Restart RestartConfig `mapstructure:"restart" json:"restart"`
}

// RestartConfig tunes the restart fan-out.
type RestartConfig struct {
	MaxWorkers int `mapstructure:"max_workers" json:"max_workers"`
}

// Defaults returns the baseline configuration. App and Stage stay empty; the
// embedding process must supply them.
func Defaults() Config {
	return Config{
		FallbackStage: ".fallback",
		PathPrefix:    "/sst",
		Restart: RestartConfig{
			MaxWorkers: 4,
		},
	}
}

// ScopePrefix returns the parameter path prefix for the stage or fallback tier.
func (c Config) ScopePrefix(fallback bool) string {
	stage := c.Stage
	if fallback {
		stage = c.FallbackStage
	}
	return fmt.Sprintf("%s/%s/%s/", c.PathPrefix, c.App, stage)
}

// EventTopic returns the pub/sub topic domain events are published on.
func (c Config) EventTopic() string {
	prefix := c.EventPrefix
	if prefix == "" {
		prefix = fmt.Sprintf("%s/%s", c.App, c.Stage)
	}
	return prefix + "/events"
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.App) == "" {
		return errors.New("app is required")
	}
	if strings.TrimSpace(c.Stage) == "" {
		return errors.New("stage is required")
	}
	if c.Stage == c.FallbackStage {
		return fmt.Errorf("stage %q collides with the fallback stage", c.Stage)
	}
	if !strings.HasPrefix(c.PathPrefix, "/") {
		return fmt.Errorf("path_prefix must start with /, got %q", c.PathPrefix)
	}
	if strings.HasSuffix(c.PathPrefix, "/") {
		return fmt.Errorf("path_prefix must not end with /, got %q", c.PathPrefix)
	}
	if c.Restart.MaxWorkers <= 0 {
		return fmt.Errorf("restart.max_workers must be > 0")
	}
	return nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// While cfgx.Build still returns zero values, we fallback to a lightweight
// decoder to keep smoke tests meaningful. Once cfgx is fully implemented we
// can drop the fallback.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.FallbackStage == "" {
		c.FallbackStage = defaults.FallbackStage
	}
	if c.PathPrefix == "" {
		c.PathPrefix = defaults.PathPrefix
	}
	if c.Restart.MaxWorkers == 0 {
		c.Restart.MaxWorkers = defaults.Restart.MaxWorkers
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
