package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/textml/classifier-service/internal/services"
)

type InferenceHandler struct {
	inferenceService *services.InferenceService
}

func NewInferenceHandler(inferenceService *services.InferenceService) *InferenceHandler {
	return &InferenceHandler{
		inferenceService: inferenceService,
	}
}

func (h *InferenceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ping", h.handlePing)
	mux.HandleFunc("/invocations", h.handleInvocations)
}

// handlePing answers 200 with an empty body. A serving process always has a
// loaded model: load failure terminates startup before the listener binds.
func (h *InferenceHandler) handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *InferenceHandler) handleInvocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	text, vErr := parseInvocation(body)
	if vErr != nil {
		slog.Warn("Invalid invocation request", "error", vErr)
		writeError(w, http.StatusBadRequest, vErr.Error())
		return
	}

	resp, err := h.inferenceService.ProcessClassification(
		r.Context(),
		services.ClassifyRequest{Text: text},
		"http.invocations",
		"http-worker",
	)
	if err != nil {
		// Detail stays server-side; the caller gets a generic message.
		slog.Error("Classification failed", "req_id", resp.ReqID, "error", err)
		writeError(w, http.StatusInternalServerError, "error during prediction")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"result": resp.Result,
	})
}

// parseInvocation validates the request body: valid JSON, a top-level
// object, and a string-valued "text" key. Empty text is allowed; length
// limits are the tokenizer's job, not validation's.
func parseInvocation(body []byte) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", errors.New("request body must be a JSON object")
	}

	raw, ok := obj["text"]
	if !ok {
		return "", errors.New("missing 'text' field in request")
	}

	// Unmarshal leaves the target untouched for JSON null, so null would
	// otherwise slip through as an empty string.
	if string(bytes.TrimSpace(raw)) == "null" {
		return "", errors.New("'text' field must be a string")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", errors.New("'text' field must be a string")
	}
	return text, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
