package reviews

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/verdict/pkg/classifier"
)

// Workflow classifies one review per call and appends the result to the log.
// It is safe for concurrent use when its classifier and store are.
type Workflow struct {
	classifier classifier.Classifier
	labels     LabelMap
	store      Store
	logger     *slog.Logger
}

// NewWorkflow creates a Workflow. cls and store may be nil: a nil classifier
// rejects every submission and a nil store skips persistence.
func NewWorkflow(cls classifier.Classifier, labels LabelMap, store Store, logger *slog.Logger) *Workflow {
	return &Workflow{
		classifier: cls,
		labels:     labels,
		store:      store,
		logger:     logger.With("workflow", "review"),
	}
}

// Handle validates text, classifies it with a single model call, and makes
// one best-effort attempt to log the result.
//
// Rejections return ErrClassifierUnavailable, ErrEmptyInput,
// ErrUnexpectedLabel, or ErrInvalidScore and never reach the store.
// Persistence failures are reported on the Outcome and never returned.
func (w *Workflow) Handle(ctx context.Context, text string) (*Outcome, error) {
	if w.classifier == nil {
		return nil, ErrClassifierUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	pred, err := w.classifier.Classify(ctx, text)
	if err != nil {
		w.logger.Error("classification failed", "provider", w.classifier.Name(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}

	label, confidence, err := w.labels.result(pred)
	if err != nil {
		w.logger.Error("classification rejected", "tag", pred.Tag, "score", pred.Score, "error", err)
		return nil, err
	}

	outcome := &Outcome{
		Status:     StatusAccepted,
		Label:      label,
		Display:    label.Display(),
		Confidence: confidence,
	}

	w.persist(ctx, text, outcome)

	w.logger.Info(
		"review classified",
		"label", outcome.Label,
		"confidence", outcome.Confidence,
		"persisted", outcome.Persisted,
		"persist_error", outcome.PersistError,
	)

	return outcome, nil
}

func (w *Workflow) persist(ctx context.Context, text string, outcome *Outcome) {
	if w.store == nil {
		outcome.PersistError = ErrStoreUnavailable.Error()
		return
	}

	id, err := w.store.Insert(ctx, text, outcome.Label, outcome.Confidence)
	if err != nil {
		w.logger.Warn("review log insert failed", "error", err)
		outcome.PersistError = persistReason(err)
		return
	}

	outcome.Persisted = true
	outcome.LogID = &id
}
