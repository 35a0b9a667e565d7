package model

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelineBackends"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/textml/classifier-service/internal/models"
)

// Config holds the configuration for the classification model.
type Config struct {
	ModelID  string // hub identifier (org/name) or local model directory
	ModelDir string // download target for hub models
}

// Model wraps a loaded sequence-classification pipeline. It is immutable
// after Load: Predict only reads, so concurrent callers need no locking.
type Model struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	labels   []string
	config   Config
}

// Load resolves the model identifier, downloading it from the hub when it is
// not a local directory, and initializes the tokenizer and ONNX session.
// All failures wrap ErrLoad and are fatal for the starting process.
func Load(cfg Config) (*Model, error) {
	modelPath, err := resolveModelPath(cfg)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("%w: creating runtime session: %v", ErrLoad, err)
	}

	pipelineCfg := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "textClassifier",
		Options: []pipelineBackends.PipelineOption[*pipelines.TextClassificationPipeline]{
			pipelines.WithSoftmax(),
			pipelines.WithMultiLabel(),
		},
	}

	pipeline, err := hugot.NewPipeline(session, pipelineCfg)
	if err != nil {
		_ = session.Destroy()
		return nil, fmt.Errorf("%w: creating classification pipeline: %v", ErrLoad, err)
	}

	labels := orderedLabels(pipeline.IDLabelMap)
	if len(labels) == 0 {
		_ = session.Destroy()
		return nil, fmt.Errorf("%w: model config has no output labels", ErrLoad)
	}

	slog.Info("Model loaded",
		"model_id", cfg.ModelID,
		"model_path", modelPath,
		"labels", labels)

	return &Model{
		session:  session,
		pipeline: pipeline,
		labels:   labels,
		config:   cfg,
	}, nil
}

func resolveModelPath(cfg Config) (string, error) {
	if info, err := os.Stat(cfg.ModelID); err == nil && info.IsDir() {
		return cfg.ModelID, nil
	}
	if !strings.Contains(cfg.ModelID, "/") {
		return "", fmt.Errorf("%w: model %q is neither a local directory nor a hub identifier", ErrLoad, cfg.ModelID)
	}

	slog.Info("Model not found locally, downloading", "model_id", cfg.ModelID, "dest", cfg.ModelDir)
	if err := os.MkdirAll(cfg.ModelDir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating model dir: %v", ErrLoad, err)
	}
	path, err := hugot.DownloadModel(cfg.ModelID, cfg.ModelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("%w: downloading %s: %v", ErrLoad, cfg.ModelID, err)
	}
	return path, nil
}

// Predict tokenizes text (truncated to the model's maximum sequence length),
// runs the forward pass, and returns the softmax probability distribution in
// the label order fixed at load time. Empty input is valid. Failures wrap
// ErrInference and never affect the loaded state.
func (m *Model) Predict(text string) (preds []models.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Inference panic recovered", "error", r)
			preds, err = nil, fmt.Errorf("%w: panic: %v", ErrInference, r)
		}
	}()

	out, err := m.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	if len(out.ClassificationOutputs) != 1 {
		return nil, fmt.Errorf("%w: expected 1 output, got %d", ErrInference, len(out.ClassificationOutputs))
	}

	return orderPredictions(out.ClassificationOutputs[0], m.labels)
}

// Labels returns the output label names in the order fixed at load time.
func (m *Model) Labels() []string {
	return m.labels
}

// ModelID returns the identifier the model was loaded from.
func (m *Model) ModelID() string {
	return m.config.ModelID
}

// Close releases native runtime resources. The model must not be used after.
func (m *Model) Close() error {
	return m.session.Destroy()
}

// orderedLabels flattens the model config's id->label map into a slice
// indexed by class id, lower-cased to match the wire contract.
func orderedLabels(idLabel map[int]string) []string {
	ids := make([]int, 0, len(idLabel))
	for id := range idLabel {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		labels = append(labels, strings.ToLower(idLabel[id]))
	}
	return labels
}

// orderPredictions rearranges pipeline output into the load-time label order
// so result ordering is deterministic across calls.
func orderPredictions(scores []pipelines.ClassificationOutput, labels []string) ([]models.Prediction, error) {
	byLabel := make(map[string]float64, len(scores))
	for _, s := range scores {
		byLabel[strings.ToLower(s.Label)] = float64(s.Score)
	}

	preds := make([]models.Prediction, 0, len(labels))
	for _, label := range labels {
		score, ok := byLabel[label]
		if !ok {
			return nil, fmt.Errorf("%w: label %q missing from pipeline output", ErrInference, label)
		}
		preds = append(preds, models.Prediction{Label: label, Score: score})
	}
	return preds, nil
}
