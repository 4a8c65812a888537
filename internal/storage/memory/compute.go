package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-stageconfig/pkg/interfaces/compute"
)

// ComputeAPI keeps function configurations in memory.
type ComputeAPI struct {
	mu        sync.RWMutex
	functions map[string]compute.FunctionConfig
}

var _ compute.API = (*ComputeAPI)(nil)

// NewComputeAPI builds an empty in-memory compute API.
func NewComputeAPI() *ComputeAPI {
	return &ComputeAPI{functions: make(map[string]compute.FunctionConfig)}
}

// SetFunction registers or replaces a function configuration.
func (a *ComputeAPI) SetFunction(id string, cfg compute.FunctionConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.functions[id] = cfg.Clone()
}

// RemoveFunction forgets a function, simulating a deleted resource.
func (a *ComputeAPI) RemoveFunction(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.functions, id)
}

func (a *ComputeAPI) GetConfiguration(ctx context.Context, id string) (compute.FunctionConfig, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	cfg, ok := a.functions[id]
	if !ok {
		return compute.FunctionConfig{}, compute.ErrFunctionNotFound
	}
	return cfg.Clone(), nil
}

func (a *ComputeAPI) UpdateConfiguration(ctx context.Context, id string, cfg compute.FunctionConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.functions[id]; !ok {
		return compute.ErrFunctionNotFound
	}
	a.functions[id] = cfg.Clone()
	return nil
}
