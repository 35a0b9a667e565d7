package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
)

// ClassifierClient provides a client interface for the classifier service
type ClassifierClient interface {
	Classify(ctx context.Context, text string) (*ClassifyResponse, error)
	Ping(ctx context.Context) error
	Close() error
}

// HTTPClient implements ClassifierClient against the /invocations contract.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for a classifier service at baseURL,
// e.g. "http://localhost:8080".
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) Classify(ctx context.Context, text string) (*ClassifyResponse, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invocations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invocations request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &errBody)
		return nil, fmt.Errorf("invocations returned %d: %s", resp.StatusCode, errBody.Error)
	}

	var out struct {
		Result map[string]float64 `json:"result"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid response body: %w", err)
	}
	return &ClassifyResponse{Result: out.Result}, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping returned %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) Close() error {
	return nil
}

// NATSClient implements ClassifierClient over NATS request/reply.
type NATSClient struct {
	conn    *nats.Conn
	subject string
	model   string
	timeout time.Duration
}

// NewNATSClient creates a NATS-based client for the given classification
// subject, e.g. "classify.request.default". model is the short model name
// the service announces health under (the last path segment of its
// MODEL_ID); the classification subject carries no model information, so it
// must be passed explicitly.
func NewNATSClient(natsURL, subject, model string) (*NATSClient, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSClient{
		conn:    conn,
		subject: subject,
		model:   model,
		timeout: 30 * time.Second,
	}, nil
}

func (c *NATSClient) Classify(ctx context.Context, text string) (*ClassifyResponse, error) {
	request := ClassifyRequest{
		ReqID: ulid.Make().String(),
		Text:  text,
	}

	data, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msg, err := c.conn.RequestWithContext(ctx, c.subject, data)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}

	var response ClassifyResponse
	if err := json.Unmarshal(msg.Data, &response); err != nil {
		return nil, fmt.Errorf("invalid response payload: %w", err)
	}
	if response.Error != "" {
		return &response, fmt.Errorf("classification failed: %s", response.Error)
	}
	return &response, nil
}

// Ping sends a health request to the model's health subject.
func (c *NATSClient) Ping(ctx context.Context) error {
	_, err := c.CheckHealth(ctx, c.model)
	return err
}

// CheckHealth queries models.<name>.health and returns the reported status.
func (c *NATSClient) CheckHealth(ctx context.Context, model string) (*HealthStatus, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	msg, err := c.conn.RequestWithContext(ctx, healthSubject(model), nil)
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}

	var status HealthStatus
	if err := json.Unmarshal(msg.Data, &status); err != nil {
		return nil, fmt.Errorf("invalid health payload: %w", err)
	}
	return &status, nil
}

func (c *NATSClient) Close() error {
	c.conn.Close()
	return nil
}

// healthSubject builds the health subject for a model, matching the subject
// the service subscribes on.
func healthSubject(model string) string {
	return fmt.Sprintf("models.%s.health", model)
}
