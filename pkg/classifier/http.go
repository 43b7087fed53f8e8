package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type httpClassifier struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

func newHTTP(cfg *Config, logger *slog.Logger) *httpClassifier {
	return &httpClassifier{
		baseURL: cfg.HTTP.BaseURL,
		token:   cfg.HTTP.Token,
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger,
	}
}

func (h *httpClassifier) Name() string {
	return ProviderHTTP
}

func (h *httpClassifier) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

// Classify posts {"inputs": text} and returns the highest scoring label.
// The endpoint may answer with a flat list of {label, score} or a list
// nested once per input.
func (h *httpClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return Prediction{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("inference endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	preds, err := decodePredictions(data)
	if err != nil {
		return Prediction{}, err
	}

	return best(preds)
}

func decodePredictions(data []byte) ([]Prediction, error) {
	var nested [][]Prediction
	if err := json.Unmarshal(data, &nested); err == nil {
		if len(nested) == 0 {
			return nil, ErrEmptyResponse
		}
		return nested[0], nil
	}

	var flat []Prediction
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return flat, nil
}

func best(preds []Prediction) (Prediction, error) {
	if len(preds) == 0 {
		return Prediction{}, ErrEmptyResponse
	}

	top := preds[0]
	for _, p := range preds[1:] {
		if p.Score > top.Score {
			top = p
		}
	}
	return top, nil
}
