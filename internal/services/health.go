package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/textml/classifier-service/internal/config"
)

type HealthService struct {
	nats             *nats.Conn
	config           *config.Config
	inferenceService *InferenceService
}

type HealthStatus struct {
	ModelName    string    `json:"model_name"`
	ModelID      string    `json:"model_id"`
	Status       string    `json:"status"` // online, offline
	Labels       []string  `json:"labels"`
	LastActivity time.Time `json:"last_activity"`
	Endpoint     string    `json:"endpoint"`
	NATSTopic    string    `json:"nats_topic"`
	Version      string    `json:"version"`
}

func NewHealthService(natsConn *nats.Conn, cfg *config.Config, inferenceService *InferenceService) *HealthService {
	return &HealthService{
		nats:             natsConn,
		config:           cfg,
		inferenceService: inferenceService,
	}
}

func (h *HealthService) Start(ctx context.Context) error {
	// Subscribe to health check requests for this model
	healthTopic := h.config.HealthSubject()

	_, err := h.nats.Subscribe(healthTopic, func(msg *nats.Msg) {
		status := h.getHealthStatus()

		statusData, err := json.Marshal(status)
		if err != nil {
			slog.Error("Failed to marshal health status", "error", err)
			return
		}

		if err := msg.Respond(statusData); err != nil {
			slog.Error("Failed to respond to health check", "error", err)
		}
	})

	if err != nil {
		return fmt.Errorf("failed to subscribe to health topic: %w", err)
	}

	slog.Info("Health service started", "topic", healthTopic)

	// Publish periodic heartbeats
	go h.publishHeartbeats(ctx)

	return nil
}

func (h *HealthService) publishHeartbeats(ctx context.Context) {
	ticker := time.NewTicker(h.config.HeartbeatInterval)
	defer ticker.Stop()

	heartbeatTopic := h.config.HeartbeatSubject()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := h.getHealthStatus()
			statusData, err := json.Marshal(status)
			if err != nil {
				continue
			}
			if err := h.nats.Publish(heartbeatTopic, statusData); err != nil {
				slog.Warn("Failed to publish heartbeat", "topic", heartbeatTopic, "error", err)
			}
		}
	}
}

// getHealthStatus reports "online" unconditionally: a process that failed to
// load its model never reaches the point of answering health checks.
func (h *HealthService) getHealthStatus() HealthStatus {
	return HealthStatus{
		ModelName:    h.config.ModelName(),
		ModelID:      h.config.ModelID,
		Status:       "online",
		Labels:       h.inferenceService.Labels(),
		LastActivity: time.Now(),
		Endpoint:     h.config.HTTPAddr,
		NATSTopic:    h.config.Subject,
		Version:      "1.0.0",
	}
}
