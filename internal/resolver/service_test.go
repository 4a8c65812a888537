package resolver

import (
	"context"
	"testing"

	"github.com/goliatone/go-stageconfig/internal/storage/memory"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/broadcaster"
)

func newService(t *testing.T, store *memory.ParameterStore, bcast broadcaster.Broadcaster) *Service {
	t.Helper()
	svc, err := New(Dependencies{
		Config:      testConfig(),
		Store:       store,
		Broadcaster: bcast,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestBuildEnvironmentStageWins(t *testing.T) {
	store := memory.NewParameterStore()
	store.Seed(map[string]string{
		"/sst/myapp/.fallback/Parameter/db/host": "fallback.example",
		"/sst/myapp/dev/Parameter/db/host":       "stage.example",
		"/sst/myapp/.fallback/Parameter/api/url": "https://api.example",
	})
	svc := newService(t, store, nil)

	env, err := svc.BuildEnvironment(context.Background())
	if err != nil {
		t.Fatalf("build environment: %v", err)
	}
	if env["SST_Parameter_host_db"] != "stage.example" {
		t.Fatalf("stage must win, got %s", env["SST_Parameter_host_db"])
	}
	if env["SST_Parameter_url_api"] != "https://api.example" {
		t.Fatalf("fallback-only entries must survive, got %s", env["SST_Parameter_url_api"])
	}
	if env["SST_APP"] != "myapp" || env["SST_STAGE"] != "dev" {
		t.Fatalf("process identity entries missing: %v", env)
	}
}

func TestListParametersExcludesSecrets(t *testing.T) {
	store := memory.NewParameterStore()
	store.Seed(map[string]string{
		"/sst/myapp/dev/Secret/db_password/value":       "hunter2",
		"/sst/myapp/.fallback/Secret/api_token/value":   "tok",
		"/sst/myapp/dev/Parameter/db/host":              "stage.example",
		"/sst/myapp/.fallback/Parameter/queue/endpoint": "sqs.example",
	})
	svc := newService(t, store, nil)

	params, err := svc.ListParameters(context.Background())
	if err != nil {
		t.Fatalf("list parameters: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(params))
	}
	for _, p := range params {
		if p.Kind == KindSecret {
			t.Fatalf("secret leaked through parameter listing: %+v", p)
		}
	}
}

func TestListParametersOrdersFallbackFirst(t *testing.T) {
	store := memory.NewParameterStore()
	store.Seed(map[string]string{
		"/sst/myapp/dev/Parameter/db/host":       "stage.example",
		"/sst/myapp/.fallback/Parameter/db/host": "fallback.example",
	})
	svc := newService(t, store, nil)

	params, err := svc.ListParameters(context.Background())
	if err != nil {
		t.Fatalf("list parameters: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("both tiers must be returned, got %d", len(params))
	}
	if !params[0].Fallback || params[1].Fallback {
		t.Fatalf("fallback entries must come first: %+v", params)
	}
}

func TestListSecretsMergesTiers(t *testing.T) {
	store := memory.NewParameterStore()
	store.Seed(map[string]string{
		"/sst/myapp/dev/Secret/both/value":           "stage-val",
		"/sst/myapp/.fallback/Secret/both/value":     "fallback-val",
		"/sst/myapp/dev/Secret/stage_only/value":     "s",
		"/sst/myapp/.fallback/Secret/fb_only/value":  "f",
		"/sst/myapp/dev/Parameter/not_a_secret/prop": "x",
	})
	svc := newService(t, store, nil)

	secrets, err := svc.ListSecrets(context.Background())
	if err != nil {
		t.Fatalf("list secrets: %v", err)
	}
	if len(secrets) != 3 {
		t.Fatalf("expected 3 secrets, got %d", len(secrets))
	}

	both := secrets["both"]
	if both.Value == nil || *both.Value != "stage-val" {
		t.Fatalf("stage tier missing: %+v", both)
	}
	if both.Fallback == nil || *both.Fallback != "fallback-val" {
		t.Fatalf("fallback tier missing: %+v", both)
	}

	if s := secrets["stage_only"]; s.Value == nil || s.Fallback != nil {
		t.Fatalf("stage_only wrong tiers: %+v", s)
	}
	if s := secrets["fb_only"]; s.Fallback == nil || s.Value != nil {
		t.Fatalf("fb_only must be present via fallback alone: %+v", s)
	}
}

func TestSetSecretPublishesEvent(t *testing.T) {
	store := memory.NewParameterStore()
	var published []broadcaster.Event
	capture := broadcaster.Func(func(ctx context.Context, evt broadcaster.Event) error {
		published = append(published, evt)
		return nil
	})
	svc := newService(t, store, capture)

	if err := svc.SetSecret(context.Background(), "db-password", "hunter2", false); err != nil {
		t.Fatalf("set secret: %v", err)
	}

	value, ok, err := store.Get(context.Background(), "/sst/myapp/dev/Secret/db_password/value")
	if err != nil || !ok {
		t.Fatalf("secret not stored: ok=%v err=%v", ok, err)
	}
	if value != "hunter2" {
		t.Fatalf("stored value %s", value)
	}

	if len(published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(published))
	}
	evt := published[0]
	if evt.Name != SecretUpdatedEvent {
		t.Fatalf("event name %s", evt.Name)
	}
	if evt.Topic != "myapp/dev/events" {
		t.Fatalf("event topic %s", evt.Topic)
	}
	payload, ok := evt.Payload.(SecretUpdatedPayload)
	if !ok || payload.Name != "db-password" {
		t.Fatalf("event payload %+v", evt.Payload)
	}
	if evt.ID == "" {
		t.Fatalf("event must carry an id")
	}
}

func TestSetSecretFallbackTier(t *testing.T) {
	store := memory.NewParameterStore()
	svc := newService(t, store, nil)

	if err := svc.SetSecret(context.Background(), "api-token", "tok", true); err != nil {
		t.Fatalf("set fallback secret: %v", err)
	}
	_, ok, _ := store.Get(context.Background(), "/sst/myapp/.fallback/Secret/api_token/value")
	if !ok {
		t.Fatalf("fallback secret not stored at fallback scope")
	}
}

func TestGetAndRemoveSecret(t *testing.T) {
	store := memory.NewParameterStore()
	svc := newService(t, store, nil)
	ctx := context.Background()

	if err := svc.SetSecret(ctx, "k", "v", false); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := svc.GetSecret(ctx, "k", false)
	if err != nil || !ok || value != "v" {
		t.Fatalf("get: value=%s ok=%v err=%v", value, ok, err)
	}

	if err := svc.RemoveSecret(ctx, "k", false); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := svc.GetSecret(ctx, "k", false); ok {
		t.Fatalf("secret must be gone after remove")
	}
	// Removing again stays silent; delete is idempotent.
	if err := svc.RemoveSecret(ctx, "k", false); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestSetParameter(t *testing.T) {
	store := memory.NewParameterStore()
	svc := newService(t, store, nil)
	ctx := context.Background()

	if err := svc.SetParameter(ctx, "db", "host", "stage.example"); err != nil {
		t.Fatalf("set parameter: %v", err)
	}
	env, err := svc.BuildEnvironment(ctx)
	if err != nil {
		t.Fatalf("build environment: %v", err)
	}
	if env["SST_Parameter_host_db"] != "stage.example" {
		t.Fatalf("parameter not resolved into environment: %v", env)
	}

	if err := svc.RemoveParameter(ctx, "db", "host"); err != nil {
		t.Fatalf("remove parameter: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("store should be empty, has %d", store.Len())
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Dependencies{Config: testConfig()}); err != ErrMissingStore {
		t.Fatalf("expected ErrMissingStore, got %v", err)
	}
}
