package di

import (
	"context"
	"testing"

	"github.com/goliatone/go-stageconfig/pkg/config"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/broadcaster"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.App = "myapp"
	cfg.Stage = "dev"
	return cfg
}

func TestNewDefaultsCollaborators(t *testing.T) {
	container, err := New(Options{Config: testConfig()})
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if container.Resolver == nil || container.Restarter == nil || container.Commands == nil {
		t.Fatalf("container has nil services: %+v", container)
	}

	// In-memory defaults make the container usable end to end.
	ctx := context.Background()
	if err := container.Resolver.SetSecret(ctx, "k", "v", false); err != nil {
		t.Fatalf("set secret via default store: %v", err)
	}
	value, ok, err := container.Resolver.GetSecret(ctx, "k", false)
	if err != nil || !ok || value != "v" {
		t.Fatalf("get secret: value=%s ok=%v err=%v", value, ok, err)
	}
}

func TestNewComposesBroadcasters(t *testing.T) {
	var topics, audit []string
	container, err := New(Options{
		Config: testConfig(),
		Broadcasters: []broadcaster.Broadcaster{
			broadcaster.Func(func(ctx context.Context, evt broadcaster.Event) error {
				topics = append(topics, evt.Topic)
				return nil
			}),
			nil,
			broadcaster.Func(func(ctx context.Context, evt broadcaster.Event) error {
				audit = append(audit, evt.Name)
				return nil
			}),
		},
	})
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	if err := container.Resolver.SetSecret(context.Background(), "k", "v", false); err != nil {
		t.Fatalf("set secret: %v", err)
	}
	if len(topics) != 1 || topics[0] != "myapp/dev/events" {
		t.Fatalf("first channel must receive the event: %v", topics)
	}
	if len(audit) != 1 || audit[0] != "config.secret.updated" {
		t.Fatalf("second channel must receive the event: %v", audit)
	}
}

func TestNewRequiresAppAndStage(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("zero config must fail validation")
	}
	cfg := config.Defaults()
	cfg.App = "myapp"
	if _, err := New(Options{Config: cfg}); err == nil {
		t.Fatalf("missing stage must fail validation")
	}
}
