package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MODEL_ID", "HTTP_ADDR", "MAX_BODY_BYTES", "NATS_URL", "HEARTBEAT_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ModelID != DefaultModelID {
		t.Errorf("expected default model id, got %s", cfg.ModelID)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("expected 1MiB body cap, got %d", cfg.MaxBodyBytes)
	}
	if cfg.NatsURL != "" {
		t.Errorf("NATS should be disabled by default, got %s", cfg.NatsURL)
	}
	if cfg.HeartbeatInterval != 30*time.Second {
		t.Errorf("expected 30s heartbeat, got %s", cfg.HeartbeatInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MODEL_ID", "acme/custom-classifier")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("HEARTBEAT_INTERVAL", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ModelID != "acme/custom-classifier" {
		t.Errorf("MODEL_ID override ignored: %s", cfg.ModelID)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTP_ADDR override ignored: %s", cfg.HTTPAddr)
	}
	if cfg.MaxBodyBytes != 2048 {
		t.Errorf("MAX_BODY_BYTES override ignored: %d", cfg.MaxBodyBytes)
	}
	if cfg.HeartbeatInterval != 5*time.Second {
		t.Errorf("HEARTBEAT_INTERVAL override ignored: %s", cfg.HeartbeatInterval)
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("MAX_BODY_BYTES", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("expected fallback to default, got %d", cfg.MaxBodyBytes)
	}
}

func TestModelName(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english", "distilbert-base-uncased-finetuned-sst-2-english"},
		{"data/models/my-model", "my-model"},
		{"plainname", "plainname"},
		{"", "default"},
	}

	for _, c := range cases {
		cfg := &Config{ModelID: c.id}
		if got := cfg.ModelName(); got != c.want {
			t.Errorf("ModelName(%q) = %q, want %q", c.id, got, c.want)
		}
	}
}

func TestHealthSubjects(t *testing.T) {
	cfg := &Config{ModelID: "acme/my-classifier"}

	if got := cfg.HealthSubject(); got != "models.my-classifier.health" {
		t.Errorf("unexpected health subject: %s", got)
	}
	if got := cfg.HeartbeatSubject(); got != "models.my-classifier.heartbeat" {
		t.Errorf("unexpected heartbeat subject: %s", got)
	}
}
