package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/textml/classifier-service/internal/models"
	"github.com/textml/classifier-service/internal/repository"
	"github.com/textml/classifier-service/internal/services"
)

type stubClassifier struct{}

func (stubClassifier) Predict(text string) ([]models.Prediction, error) {
	return []models.Prediction{
		{Label: "negative", Score: 0.5},
		{Label: "positive", Score: 0.5},
	}, nil
}

func (stubClassifier) Labels() []string { return []string{"negative", "positive"} }

type nopRepo struct{}

func (nopRepo) Request() repository.RequestRepositoryInterface { return nopRepo{} }
func (nopRepo) Event() repository.EventRepositoryInterface     { return nopRepo{} }
func (nopRepo) LogRequest(ctx context.Context, req *models.RequestLog) error {
	return nil
}
func (nopRepo) GetRequestLogs(ctx context.Context, limit int) ([]*models.RequestLog, error) {
	return nil, nil
}
func (nopRepo) LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error {
	return nil
}

func newTestServer(t *testing.T, maxBody int64) *httptest.Server {
	t.Helper()
	svc := services.NewInferenceService(stubClassifier{}, nopRepo{})
	ts := httptest.NewServer(NewServer(":0", maxBody, svc).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestPingThroughServer(t *testing.T) {
	ts := newTestServer(t, 1<<20)

	resp, err := http.Get(ts.URL + "/ping")
	if err != nil {
		t.Fatalf("ping failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("expected empty body, got %q", body)
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	ts := newTestServer(t, 64)

	body := []byte(`{"text": "` + strings.Repeat("a", 512) + `"}`)
	resp, err := http.Post(ts.URL+"/invocations", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", resp.StatusCode)
	}
}

func TestBodyWithinLimitAccepted(t *testing.T) {
	ts := newTestServer(t, 1<<20)

	resp, err := http.Post(ts.URL+"/invocations", "application/json", strings.NewReader(`{"text": "fine"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
