package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/textml/classifier-service/internal/models"
	"github.com/textml/classifier-service/internal/repository"
)

// Classifier is the prediction backend. *model.Model implements it; tests
// substitute fakes.
type Classifier interface {
	Predict(text string) ([]models.Prediction, error)
	Labels() []string
}

type ClassifyRequest struct {
	ReqID string `json:"req_id,omitempty"`
	Text  string `json:"text"`
}

type ClassifyResponse struct {
	ReqID       string              `json:"req_id"`
	Predictions []models.Prediction `json:"predictions,omitempty"`
	Result      map[string]float64  `json:"result,omitempty"`
	DurationMs  int64               `json:"duration_ms"`
	Error       string              `json:"error,omitempty"`
}

type InferenceService struct {
	classifier Classifier
	repo       repository.Repository
}

func NewInferenceService(classifier Classifier, repo repository.Repository) *InferenceService {
	return &InferenceService{
		classifier: classifier,
		repo:       repo,
	}
}

// ProcessClassification runs one prediction with crash recovery, timing, and
// metrics logging. The error it returns (if any) wraps model.ErrInference;
// transports map it without inspecting the detail.
func (s *InferenceService) ProcessClassification(ctx context.Context, req ClassifyRequest, source, workerID string) (response *ClassifyResponse, err error) {
	start := time.Now()

	if req.ReqID == "" {
		req.ReqID = ulid.Make().String()
	}

	defer func() {
		if r := recover(); r != nil {
			duration := time.Since(start)
			errStr := fmt.Sprintf("service panic: %v", r)

			s.repo.Request().LogRequest(ctx, &models.RequestLog{
				Timestamp:  start,
				ReqID:      req.ReqID,
				WorkerID:   workerID,
				Source:     source,
				InputLen:   len(req.Text),
				DurationMs: duration.Milliseconds(),
				Status:     "panic",
				Error:      errStr,
			})

			response = &ClassifyResponse{
				ReqID:      req.ReqID,
				DurationMs: duration.Milliseconds(),
				Error:      errStr,
			}
			err = fmt.Errorf("service panic: %v", r)
		}
	}()

	slog.Info("Running classification",
		"req_id", req.ReqID,
		"source", source,
		"input_preview", preview(req.Text),
		"input_len", len(req.Text))

	preds, err := s.classifier.Predict(req.Text)

	duration := time.Since(start)
	status := "ok"
	errStr := ""
	if err != nil {
		status = "error"
		errStr = err.Error()
		preds = nil
	}

	s.repo.Request().LogRequest(ctx, &models.RequestLog{
		Timestamp:  start,
		ReqID:      req.ReqID,
		WorkerID:   workerID,
		Source:     source,
		InputLen:   len(req.Text),
		DurationMs: duration.Milliseconds(),
		Status:     status,
		Error:      errStr,
	})

	response = &ClassifyResponse{
		ReqID:      req.ReqID,
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		response.Error = errStr
		return response, err
	}

	response.Predictions = preds
	response.Result = models.Distribution(preds)
	return response, nil
}

// GetRequestLogs retrieves recent request metrics through the repository.
func (s *InferenceService) GetRequestLogs(ctx context.Context, limit int) ([]*models.RequestLog, error) {
	return s.repo.Request().GetRequestLogs(ctx, limit)
}

// Labels exposes the backend's load-time label ordering.
func (s *InferenceService) Labels() []string {
	return s.classifier.Labels()
}

// preview truncates input for log lines so full payloads never reach logs.
func preview(text string) string {
	const n = 50
	if len(text) <= n {
		return text
	}
	return text[:n] + "..."
}
