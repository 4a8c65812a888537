package resolver

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-stageconfig/pkg/config"
)

// Kind identifies the top segment of a config path.
type Kind string

const (
	KindSecret    Kind = "Secret"
	KindParameter Kind = "Parameter"
)

// secretValueProp is the single property a secret stores per tier.
const secretValueProp = "value"

// NormalizeID replaces every dash with an underscore so logical names stay
// valid as path and environment variable segments. Idempotent.
func NormalizeID(id string) string {
	return strings.ReplaceAll(id, "-", "_")
}

// EnvVarName builds the environment variable a parameter resolves to:
// SST_{kind}_{prop}_{normalizedId}.
func EnvVarName(kind Kind, prop, id string) string {
	return fmt.Sprintf("SST_%s_%s_%s", kind, prop, NormalizeID(id))
}

// Paths builds and parses hierarchical parameter paths for one app/stage.
type Paths struct {
	cfg config.Config
}

// NewPaths binds the path builder to the app/stage in cfg.
func NewPaths(cfg config.Config) Paths {
	return Paths{cfg: cfg}
}

// For returns {scopePrefix}{kind}/{normalizedId}/{prop}. Pure and total for
// all inputs; the fallback flag selects only the scope prefix segment.
func (p Paths) For(kind Kind, id, prop string, fallback bool) string {
	return p.cfg.ScopePrefix(fallback) + string(kind) + "/" + NormalizeID(id) + "/" + prop
}

// ForSecret returns the value path of a secret in the given tier.
func (p Paths) ForSecret(key string, fallback bool) string {
	return p.For(KindSecret, key, secretValueProp, fallback)
}

// Parse splits a raw store path back into kind, id, and prop. The prop keeps
// any embedded slashes. ok is false when the path does not belong to the
// given scope or is too shallow to be a parameter.
func (p Paths) Parse(name string, fallback bool) (kind Kind, id, prop string, ok bool) {
	rest, found := strings.CutPrefix(name, p.cfg.ScopePrefix(fallback))
	if !found {
		return "", "", "", false
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return Kind(parts[0]), parts[1], parts[2], true
}
