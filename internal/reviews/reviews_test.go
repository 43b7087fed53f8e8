package reviews_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/JaimeStill/verdict/internal/reviews"
	"github.com/JaimeStill/verdict/pkg/classifier"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testLabels = reviews.LabelMap{Positive: "LABEL_1", Negative: "LABEL_0"}

type mockClassifier struct {
	classifyFn func(ctx context.Context, text string) (classifier.Prediction, error)
	calls      []string
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (classifier.Prediction, error) {
	m.calls = append(m.calls, text)
	return m.classifyFn(ctx, text)
}

func (m *mockClassifier) Name() string { return "mock" }
func (m *mockClassifier) Close() error { return nil }

func predicting(tag string, score float64) *mockClassifier {
	return &mockClassifier{
		classifyFn: func(context.Context, string) (classifier.Prediction, error) {
			return classifier.Prediction{Tag: tag, Score: score}, nil
		},
	}
}

type insertCall struct {
	query      string
	label      reviews.Label
	confidence float64
}

type mockStore struct {
	insertFn func(ctx context.Context, query string, label reviews.Label, confidence float64) (int64, error)
	calls    []insertCall
}

func (m *mockStore) Insert(ctx context.Context, query string, label reviews.Label, confidence float64) (int64, error) {
	m.calls = append(m.calls, insertCall{query, label, confidence})
	return m.insertFn(ctx, query, label, confidence)
}

func sequentialStore() *mockStore {
	var next int64
	return &mockStore{
		insertFn: func(context.Context, string, reviews.Label, float64) (int64, error) {
			next++
			return next, nil
		},
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty input", reviews.ErrEmptyInput, http.StatusUnprocessableEntity},
		{"classifier unavailable", reviews.ErrClassifierUnavailable, http.StatusServiceUnavailable},
		{"unexpected label", reviews.ErrUnexpectedLabel, http.StatusBadGateway},
		{"invalid score", reviews.ErrInvalidScore, http.StatusBadGateway},
		{"not found", reviews.ErrNotFound, http.StatusNotFound},
		{"store unavailable", reviews.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped classifier error", fmt.Errorf("%w: timeout", reviews.ErrClassifierUnavailable), http.StatusServiceUnavailable},
		{"wrapped label error", fmt.Errorf("%w: %q", reviews.ErrUnexpectedLabel, "LABEL_7"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reviews.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestLabelMapResolve(t *testing.T) {
	tests := []struct {
		tag     string
		want    reviews.Label
		wantErr bool
	}{
		{"LABEL_1", reviews.Positive, false},
		{"LABEL_0", reviews.Negative, false},
		{"LABEL_2", "", true},
		{"", "", true},
		{"label_1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := testLabels.Resolve(tt.tag)
			if tt.wantErr {
				if !errors.Is(err, reviews.ErrUnexpectedLabel) {
					t.Fatalf("error = %v, want ErrUnexpectedLabel", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.tag, got, tt.want)
			}
		})
	}
}

func TestLabelPresentation(t *testing.T) {
	if reviews.Positive.Display() != "긍정" || reviews.Positive.Emoji() != "👍" {
		t.Errorf("positive: %s %s", reviews.Positive.Display(), reviews.Positive.Emoji())
	}
	if reviews.Negative.Display() != "부정" || reviews.Negative.Emoji() != "👎" {
		t.Errorf("negative: %s %s", reviews.Negative.Display(), reviews.Negative.Emoji())
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("known classification", func(t *testing.T) {
		f := reviews.FiltersFromQuery(url.Values{"classification": {"negative"}})
		if f.Classification == nil || *f.Classification != reviews.Negative {
			t.Errorf("Classification = %v, want negative", f.Classification)
		}
	})

	t.Run("unknown classification ignored", func(t *testing.T) {
		f := reviews.FiltersFromQuery(url.Values{"classification": {"neutral"}})
		if f.Classification != nil {
			t.Errorf("Classification = %v, want nil", *f.Classification)
		}
	})

	t.Run("empty params", func(t *testing.T) {
		if f := reviews.FiltersFromQuery(url.Values{}); f.Classification != nil {
			t.Errorf("Classification = %v, want nil", *f.Classification)
		}
	})
}
