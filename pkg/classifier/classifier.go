// Package classifier wraps a two-class text classification model behind a
// single inference call. Providers reach a hosted inference endpoint, an
// OpenAI-compatible chat model, or a local ONNX Runtime session.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/JaimeStill/verdict/pkg/lifecycle"
	"github.com/JaimeStill/verdict/pkg/storage"
)

var (
	// ErrUnknownProvider indicates Config.Provider names no implementation.
	ErrUnknownProvider = errors.New("unknown classifier provider")
	// ErrNotReady indicates the provider has not finished loading its model.
	ErrNotReady = errors.New("classifier not ready")
	// ErrEmptyResponse indicates the model returned no prediction.
	ErrEmptyResponse = errors.New("classifier returned no prediction")
)

// Prediction is the model's single answer for one input: an opaque class tag
// and the probability assigned to it.
type Prediction struct {
	Tag   string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier performs one inference call per input text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
	// Name identifies the provider in logs.
	Name() string
	Close() error
}

// Starter is implemented by providers that load resources during startup.
type Starter interface {
	Start(lc *lifecycle.Coordinator) error
}

// New creates the provider selected by cfg.Provider.
// store may be nil; it is only consulted by the onnx provider to fetch artifacts.
func New(cfg *Config, store storage.System, logger *slog.Logger) (Classifier, error) {
	logger = logger.With("system", "classifier", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderHTTP:
		return newHTTP(cfg, logger), nil
	case ProviderOpenAI:
		return newOpenAI(cfg, logger), nil
	case ProviderONNX:
		return newONNX(cfg, store, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// FromLogits applies softmax to logits and returns the most probable label.
// labels is indexed by class position and must cover every logit.
func FromLogits(logits []float32, labels []string) (Prediction, error) {
	if len(logits) == 0 {
		return Prediction{}, ErrEmptyResponse
	}
	if len(logits) > len(labels) {
		return Prediction{}, fmt.Errorf("model produced %d classes for %d labels", len(logits), len(labels))
	}

	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(l))
	}

	var sum float64
	probs := make([]float64, len(logits))
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - maxLogit)
		sum += probs[i]
	}

	best := 0
	for i := range probs {
		probs[i] /= sum
		if probs[i] > probs[best] {
			best = i
		}
	}

	return Prediction{Tag: labels[best], Score: probs[best]}, nil
}
