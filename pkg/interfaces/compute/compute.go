package compute

import (
	"context"
	"errors"
)

// FunctionConfig is the mutable slice of a compute resource's configuration.
type FunctionConfig struct {
	Environment map[string]string
}

// Clone returns a deep copy so callers can mutate safely.
func (c FunctionConfig) Clone() FunctionConfig {
	out := FunctionConfig{Environment: make(map[string]string, len(c.Environment))}
	for k, v := range c.Environment {
		out.Environment[k] = v
	}
	return out
}

// ErrFunctionNotFound signals the identifier no longer resolves to a live
// resource. Callers treat it as benign during restart propagation.
var ErrFunctionNotFound = errors.New("compute: function not found")

// API is the compute configuration contract used to force restarts.
type API interface {
	GetConfiguration(ctx context.Context, id string) (FunctionConfig, error)
	UpdateConfiguration(ctx context.Context, id string, cfg FunctionConfig) error
}

// Nop API reports every function as missing and ignores updates.
type Nop struct{}

var _ API = (*Nop)(nil)

func (n *Nop) GetConfiguration(ctx context.Context, id string) (FunctionConfig, error) {
	return FunctionConfig{}, ErrFunctionNotFound
}

func (n *Nop) UpdateConfiguration(ctx context.Context, id string, cfg FunctionConfig) error {
	return nil
}
