package client

import (
	"testing"

	"github.com/textml/classifier-service/internal/config"
)

// The health subject the client queries must be the one the health service
// subscribes on, which is derived from MODEL_ID, not from the
// classification subject.
func TestHealthSubjectMatchesService(t *testing.T) {
	cfg := &config.Config{ModelID: config.DefaultModelID}

	if got, want := healthSubject(cfg.ModelName()), cfg.HealthSubject(); got != want {
		t.Errorf("client health subject %q does not match service subject %q", got, want)
	}
}

func TestHealthSubject(t *testing.T) {
	if got := healthSubject("distilbert-base-uncased-finetuned-sst-2-english"); got != "models.distilbert-base-uncased-finetuned-sst-2-english.health" {
		t.Errorf("unexpected health subject: %s", got)
	}
}
