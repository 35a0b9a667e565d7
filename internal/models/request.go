package models

import "time"

// Prediction is one (label, probability) pair of a classification result.
// Predictions returned together form a distribution summing to 1.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Distribution converts an ordered prediction list to the wire-format map.
func Distribution(preds []Prediction) map[string]float64 {
	result := make(map[string]float64, len(preds))
	for _, p := range preds {
		result[p.Label] = p.Score
	}
	return result
}

// RequestLog is the metrics record kept per classification request. It
// deliberately carries no request text and no scores: only operational
// metadata is persisted.
type RequestLog struct {
	Timestamp  time.Time `json:"ts"`
	ReqID      string    `json:"req_id"`
	WorkerID   string    `json:"worker_id"`
	Source     string    `json:"source"`
	InputLen   int       `json:"input_len"`
	DurationMs int64     `json:"dur_ms"`
	Status     string    `json:"status"`
	Error      string    `json:"error"`
}
