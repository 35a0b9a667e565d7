package repository

import (
	"context"
	"testing"
	"time"

	"github.com/textml/classifier-service/internal/models"
	"github.com/textml/classifier-service/internal/store"
)

func openTestRepo(t *testing.T) Repository {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteRepository(db)
}

func TestRequestLogRoundtrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	logs := []*models.RequestLog{
		{Timestamp: time.Now(), ReqID: "r1", WorkerID: "w1", Source: "http.invocations", InputLen: 12, DurationMs: 31, Status: "ok"},
		{Timestamp: time.Now(), ReqID: "r2", WorkerID: "w1", Source: "nats.classify.request.default", InputLen: 0, DurationMs: 8, Status: "error", Error: "inference failed"},
	}
	for _, l := range logs {
		if err := repo.Request().LogRequest(ctx, l); err != nil {
			t.Fatalf("log request: %v", err)
		}
	}

	got, err := repo.Request().GetRequestLogs(ctx, 10)
	if err != nil {
		t.Fatalf("get request logs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}

	// Newest first.
	if got[0].ReqID != "r2" {
		t.Errorf("expected r2 first, got %s", got[0].ReqID)
	}
	if got[0].Status != "error" || got[0].Error != "inference failed" {
		t.Errorf("error row not round-tripped: %+v", got[0])
	}
	if got[1].InputLen != 12 || got[1].DurationMs != 31 {
		t.Errorf("metrics not round-tripped: %+v", got[1])
	}
}

func TestRequestLogLimit(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		repo.Request().LogRequest(ctx, &models.RequestLog{Timestamp: time.Now(), ReqID: "r", Status: "ok"})
	}

	got, err := repo.Request().GetRequestLogs(ctx, 3)
	if err != nil {
		t.Fatalf("get request logs: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 rows, got %d", len(got))
	}
}

func TestLogEvent(t *testing.T) {
	repo := openTestRepo(t)

	err := repo.Event().LogEvent(context.Background(), "info", "model.loaded", "Model loaded successfully", map[string]interface{}{
		"model_id": "test/model",
	})
	if err != nil {
		t.Fatalf("log event: %v", err)
	}
}
