package commands

import (
	"context"
	"testing"

	"github.com/goliatone/go-stageconfig/internal/resolver"
	"github.com/goliatone/go-stageconfig/internal/restart"
	"github.com/goliatone/go-stageconfig/internal/storage/memory"
	"github.com/goliatone/go-stageconfig/pkg/config"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.App = "myapp"
	cfg.Stage = "dev"
	return cfg
}

func TestNewRejectsNilServices(t *testing.T) {
	res, err := resolver.New(resolver.Dependencies{Config: testConfig(), Store: memory.NewParameterStore()})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	rst, err := restart.New(restart.Dependencies{
		Config:   testConfig(),
		Compute:  memory.NewComputeAPI(),
		Metadata: memory.NewMetadataProvider(),
	})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}

	// A typed nil pointer must be caught before it hides inside an interface.
	if _, err := New(Dependencies{Resolver: nil, Restarter: rst}); err == nil {
		t.Fatalf("nil resolver must be rejected")
	}
	if _, err := New(Dependencies{Resolver: res, Restarter: nil}); err == nil {
		t.Fatalf("nil restarter must be rejected")
	}

	registry, err := New(Dependencies{Resolver: res, Restarter: rst})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := registry.SetSecret.Execute(context.Background(), SetSecret{Name: "k", Value: "v"}); err != nil {
		t.Fatalf("registry must be usable: %v", err)
	}
}
