package model

import (
	"errors"
	"testing"

	"github.com/knights-analytics/hugot/pipelines"
)

func TestLoadUnresolvableIdentifier(t *testing.T) {
	// Neither a local directory nor a hub identifier: fails before any
	// runtime session is created.
	_, err := Load(Config{ModelID: "no-such-model", ModelDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected load to fail for unresolvable identifier")
	}
	if !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
}

func TestResolveModelPathLocalDir(t *testing.T) {
	dir := t.TempDir()

	path, err := resolveModelPath(Config{ModelID: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != dir {
		t.Errorf("expected %s, got %s", dir, path)
	}
}

func TestOrderedLabels(t *testing.T) {
	labels := orderedLabels(map[int]string{
		1: "POSITIVE",
		0: "NEGATIVE",
	})

	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0] != "negative" || labels[1] != "positive" {
		t.Errorf("expected [negative positive], got %v", labels)
	}
}

func TestOrderedLabelsEmpty(t *testing.T) {
	if labels := orderedLabels(nil); len(labels) != 0 {
		t.Errorf("expected no labels, got %v", labels)
	}
}

func TestOrderPredictions(t *testing.T) {
	// Pipeline output order differs from the load-time label order.
	scores := []pipelines.ClassificationOutput{
		{Label: "POSITIVE", Score: 0.9977},
		{Label: "NEGATIVE", Score: 0.0023},
	}

	preds, err := orderPredictions(scores, []string{"negative", "positive"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if preds[0].Label != "negative" || preds[1].Label != "positive" {
		t.Errorf("predictions not in label order: %v", preds)
	}
	if preds[1].Score <= preds[0].Score {
		t.Errorf("scores attached to wrong labels: %v", preds)
	}
}

func TestOrderPredictionsMissingLabel(t *testing.T) {
	scores := []pipelines.ClassificationOutput{
		{Label: "POSITIVE", Score: 1.0},
	}

	_, err := orderPredictions(scores, []string{"negative", "positive"})
	if err == nil {
		t.Fatal("expected an error for missing label")
	}
	if !errors.Is(err, ErrInference) {
		t.Errorf("expected ErrInference, got %v", err)
	}
}
