package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/textml/classifier-service/internal/config"
)

// generateWorkerID creates a unique worker ID using timestamp and random bytes
func generateWorkerID() string {
	timestamp := time.Now().UnixNano()
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	randomHex := hex.EncodeToString(randomBytes)
	return fmt.Sprintf("worker-%d-%s", timestamp, randomHex)
}

// NATSService serves classification requests over NATS request/reply. The
// queue group lets multiple worker processes share a subject, each holding
// its own model copy; requests are handled synchronously within a process.
type NATSService struct {
	conn             *nats.Conn
	inferenceService *InferenceService
	cfg              *config.Config
	workerID         string
	sub              *nats.Subscription
}

func NewNATSService(cfg *config.Config, inferenceService *InferenceService) (*NATSService, error) {
	conn, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSService{
		conn:             conn,
		inferenceService: inferenceService,
		cfg:              cfg,
		workerID:         generateWorkerID(),
	}, nil
}

func (s *NATSService) Start(ctx context.Context) error {
	sub, err := s.conn.QueueSubscribe(s.cfg.Subject, s.cfg.QueueGroup, func(msg *nats.Msg) {
		s.handleMessage(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.cfg.Subject, err)
	}
	s.sub = sub

	slog.Info("NATS service started",
		"subject", s.cfg.Subject,
		"queue_group", s.cfg.QueueGroup,
		"worker_id", s.workerID)

	<-ctx.Done()

	_ = sub.Drain()
	s.conn.Close()
	return nil
}

func (s *NATSService) handleMessage(ctx context.Context, msg *nats.Msg) {
	var req ClassifyRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.respond(msg, &ClassifyResponse{Error: "invalid request payload"})
		return
	}

	resp, err := s.inferenceService.ProcessClassification(ctx, req, "nats."+s.cfg.Subject, s.workerID)
	if err != nil {
		// Same policy as HTTP: detail is logged, the caller gets a
		// generic message.
		slog.Error("NATS classification failed", "req_id", resp.ReqID, "error", err)
		s.respond(msg, &ClassifyResponse{ReqID: resp.ReqID, DurationMs: resp.DurationMs, Error: "error during prediction"})
		return
	}

	s.respond(msg, resp)
}

func (s *NATSService) respond(msg *nats.Msg, resp *ClassifyResponse) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to marshal NATS response", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.Error("Failed to respond to NATS request", "error", err)
	}
}

// GetConnection exposes the NATS connection for the health service.
func (s *NATSService) GetConnection() *nats.Conn {
	return s.conn
}
