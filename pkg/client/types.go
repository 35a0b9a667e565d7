package client

import "time"

// ClassifyRequest is the payload sent to the NATS classification subject.
type ClassifyRequest struct {
	ReqID string `json:"req_id,omitempty"`
	Text  string `json:"text"`
}

// ClassifyResponse mirrors the service's classification reply.
type ClassifyResponse struct {
	ReqID       string             `json:"req_id"`
	Result      map[string]float64 `json:"result,omitempty"`
	DurationMs  int64              `json:"duration_ms"`
	Error       string             `json:"error,omitempty"`
	Predictions []Prediction       `json:"predictions,omitempty"`
}

// Prediction is one (label, probability) pair in load-time label order.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// HealthStatus is the reply on models.<name>.health and the heartbeat body.
type HealthStatus struct {
	ModelName    string    `json:"model_name"`
	ModelID      string    `json:"model_id"`
	Status       string    `json:"status"`
	Labels       []string  `json:"labels"`
	LastActivity time.Time `json:"last_activity"`
	Endpoint     string    `json:"endpoint"`
	NATSTopic    string    `json:"nats_topic"`
	Version      string    `json:"version"`
}
