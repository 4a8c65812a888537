package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-stageconfig/pkg/interfaces/metadata"
)

// MetadataProvider serves a static deployment snapshot.
type MetadataProvider struct {
	mu        sync.RWMutex
	resources []metadata.Resource
}

var _ metadata.Provider = (*MetadataProvider)(nil)

// NewMetadataProvider builds a provider over the given resources.
func NewMetadataProvider(resources ...metadata.Resource) *MetadataProvider {
	return &MetadataProvider{resources: resources}
}

// SetResources replaces the snapshot served to callers.
func (p *MetadataProvider) SetResources(resources ...metadata.Resource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resources = resources
}

func (p *MetadataProvider) Snapshot(ctx context.Context) ([]metadata.Resource, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]metadata.Resource, len(p.resources))
	copy(out, p.resources)
	return out, nil
}
