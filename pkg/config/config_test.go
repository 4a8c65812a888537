package config

import "testing"

func TestLoadFromMap(t *testing.T) {
	input := map[string]any{
		"app":   "myapp",
		"stage": "dev",
		"restart": map[string]any{
			"max_workers": 2,
		},
	}

	cfg, err := Load(input)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.App != "myapp" {
		t.Fatalf("expected app myapp, got %s", cfg.App)
	}
	if cfg.Restart.MaxWorkers != 2 {
		t.Fatalf("expected workers 2, got %d", cfg.Restart.MaxWorkers)
	}
	if cfg.FallbackStage != ".fallback" {
		t.Fatalf("expected default fallback stage, got %s", cfg.FallbackStage)
	}
	if cfg.PathPrefix != "/sst" {
		t.Fatalf("expected default path prefix, got %s", cfg.PathPrefix)
	}
}

func TestLoadFromStruct(t *testing.T) {
	input := Config{App: "myapp", Stage: "prod", EventPrefix: "custom/prod"}

	cfg, err := Load(input)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Stage != "prod" {
		t.Fatalf("expected stage prod, got %s", cfg.Stage)
	}
	if cfg.EventTopic() != "custom/prod/events" {
		t.Fatalf("unexpected event topic %s", cfg.EventTopic())
	}
	if cfg.Restart.MaxWorkers != 4 {
		t.Fatalf("expected default workers, got %d", cfg.Restart.MaxWorkers)
	}
}

func TestValidateRejectsFallbackStageCollision(t *testing.T) {
	cfg := Defaults()
	cfg.App = "myapp"
	cfg.Stage = ".fallback"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected collision error")
	}
}

func TestScopePrefix(t *testing.T) {
	cfg := Defaults()
	cfg.App = "myapp"
	cfg.Stage = "dev"

	if got := cfg.ScopePrefix(false); got != "/sst/myapp/dev/" {
		t.Fatalf("stage prefix: %s", got)
	}
	if got := cfg.ScopePrefix(true); got != "/sst/myapp/.fallback/" {
		t.Fatalf("fallback prefix: %s", got)
	}
}

func TestEventTopicDefaultsToAppStage(t *testing.T) {
	cfg := Defaults()
	cfg.App = "myapp"
	cfg.Stage = "dev"
	if got := cfg.EventTopic(); got != "myapp/dev/events" {
		t.Fatalf("event topic: %s", got)
	}
}
