package commands

import (
	"context"
	"testing"

	"github.com/goliatone/go-stageconfig/internal/resolver"
	"github.com/goliatone/go-stageconfig/internal/restart"
	"github.com/goliatone/go-stageconfig/internal/storage/memory"
	"github.com/goliatone/go-stageconfig/pkg/config"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/compute"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/metadata"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.App = "myapp"
	cfg.Stage = "dev"
	return cfg
}

func newCatalog(t *testing.T, store *memory.ParameterStore, api *memory.ComputeAPI, provider *memory.MetadataProvider) *Catalog {
	t.Helper()
	res, err := resolver.New(resolver.Dependencies{Config: testConfig(), Store: store})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	rst, err := restart.New(restart.Dependencies{Config: testConfig(), Compute: api, Metadata: provider})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	catalog, err := NewCatalog(Dependencies{Resolver: res, Restarter: rst})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return catalog
}

func TestSetSecretCommand(t *testing.T) {
	store := memory.NewParameterStore()
	catalog := newCatalog(t, store, memory.NewComputeAPI(), memory.NewMetadataProvider())

	err := catalog.SetSecret.Execute(context.Background(), SetSecret{Name: "db-password", Value: "hunter2"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), "/sst/myapp/dev/Secret/db_password/value"); !ok {
		t.Fatalf("secret not written")
	}
}

func TestSetSecretCommandRequiresName(t *testing.T) {
	catalog := newCatalog(t, memory.NewParameterStore(), memory.NewComputeAPI(), memory.NewMetadataProvider())
	if err := catalog.SetSecret.Execute(context.Background(), SetSecret{Name: "  "}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestRemoveSecretCommand(t *testing.T) {
	store := memory.NewParameterStore()
	store.Seed(map[string]string{"/sst/myapp/dev/Secret/k/value": "v"})
	catalog := newCatalog(t, store, memory.NewComputeAPI(), memory.NewMetadataProvider())

	if err := catalog.RemoveSecret.Execute(context.Background(), RemoveSecret{Name: "k"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("secret not removed")
	}
}

func TestRestartDependentsCommand(t *testing.T) {
	api := memory.NewComputeAPI()
	api.SetFunction("fn", compute.FunctionConfig{})
	provider := memory.NewMetadataProvider(
		metadata.Resource{Kind: metadata.KindFunction, Arn: "fn", Secrets: []string{"k"}},
	)
	catalog := newCatalog(t, memory.NewParameterStore(), api, provider)

	if err := catalog.RestartDependents.Execute(context.Background(), RestartDependents{Keys: []string{"k"}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	cfg, err := api.GetConfiguration(context.Background(), "fn")
	if err != nil {
		t.Fatalf("get configuration: %v", err)
	}
	if cfg.Environment[restart.RestartedAtKey] == "" {
		t.Fatalf("function was not restarted")
	}
}

func TestRestartDependentsRequiresKeys(t *testing.T) {
	catalog := newCatalog(t, memory.NewParameterStore(), memory.NewComputeAPI(), memory.NewMetadataProvider())
	if err := catalog.RestartDependents.Execute(context.Background(), RestartDependents{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParameterCommands(t *testing.T) {
	store := memory.NewParameterStore()
	catalog := newCatalog(t, store, memory.NewComputeAPI(), memory.NewMetadataProvider())
	ctx := context.Background()

	if err := catalog.SetParameter.Execute(ctx, SetParameter{ID: "db", Prop: "host", Value: "h"}); err != nil {
		t.Fatalf("set parameter: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "/sst/myapp/dev/Parameter/db/host"); !ok {
		t.Fatalf("parameter not written")
	}
	if err := catalog.RemoveParameter.Execute(ctx, RemoveParameter{ID: "db", Prop: "host"}); err != nil {
		t.Fatalf("remove parameter: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("parameter not removed")
	}
}
