package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/verdict/internal/api"
	"github.com/JaimeStill/verdict/internal/config"
	"github.com/JaimeStill/verdict/internal/infrastructure"
	"github.com/JaimeStill/verdict/internal/reviews"
	"github.com/JaimeStill/verdict/pkg/classifier"
	"github.com/JaimeStill/verdict/pkg/lifecycle"
)

type stubClassifier struct {
	pred classifier.Prediction
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (classifier.Prediction, error) {
	return s.pred, nil
}

func (s *stubClassifier) Name() string { return "stub" }
func (s *stubClassifier) Close() error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{Version: "test"}
	if err := cfg.API.Finalize(); err != nil {
		t.Fatalf("api finalize: %v", err)
	}
	if err := cfg.Reviews.Finalize(); err != nil {
		t.Fatalf("reviews finalize: %v", err)
	}
	if err := cfg.Chat.Finalize(); err != nil {
		t.Fatalf("chat finalize: %v", err)
	}
	cfg.API.MaxBodySize = "64B"
	return cfg
}

func newHandler(t *testing.T, cls classifier.Classifier) (http.Handler, *lifecycle.Coordinator) {
	t.Helper()

	cfg := testConfig(t)
	infra := &infrastructure.Infrastructure{
		Lifecycle:  lifecycle.New(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Classifier: cls,
	}

	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(cfg, runtime)
	if err := domain.Start(runtime); err != nil {
		t.Fatalf("domain start: %v", err)
	}

	m, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	t.Cleanup(func() {
		infra.Lifecycle.Shutdown(time.Second)
	})

	return m.Handler(), infra.Lifecycle
}

func TestClassifyThroughModule(t *testing.T) {
	h, _ := newHandler(t, &stubClassifier{pred: classifier.Prediction{Tag: "LABEL_1", Score: 0.97}})

	req := httptest.NewRequest(http.MethodPost, "/reviews/classify", strings.NewReader(`{"text":"맛있어요"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var out reviews.Outcome
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Label != reviews.Positive {
		t.Errorf("label = %s, want positive", out.Label)
	}
	if out.Persisted {
		t.Error("outcome should not be persisted without a database")
	}
}

func TestMaxBodyRejectsLargeRequest(t *testing.T) {
	h, _ := newHandler(t, &stubClassifier{pred: classifier.Prediction{Tag: "LABEL_1", Score: 0.9}})

	body := `{"text":"` + strings.Repeat("a", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/reviews/classify", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatal("expected oversized body to be rejected")
	}
}

func TestOpenAPISpec(t *testing.T) {
	h, _ := newHandler(t, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var spec struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&spec); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, path := range []string{
		"/api/reviews/classify",
		"/api/reviews/logs",
		"/api/reviews/logs/search",
		"/api/reviews/logs/{id}",
		"/api/chat/sessions",
		"/api/chat/sessions/{id}",
		"/api/chat/sessions/{id}/messages",
		"/api/classifier",
	} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("spec missing path %s", path)
		}
	}
}

func TestClassifierStatus(t *testing.T) {
	tests := []struct {
		name      string
		cls       classifier.Classifier
		fail      bool
		wantReady bool
		wantName  string
		wantError string
	}{
		{name: "ready", cls: &stubClassifier{}, wantReady: true, wantName: "stub"},
		{name: "startup failure", cls: &stubClassifier{}, fail: true, wantName: "stub", wantError: "model missing"},
		{name: "no classifier", wantError: "classifier unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, lc := newHandler(t, tt.cls)
			if tt.fail {
				lc.OnStartup("classifier", func(ctx context.Context) error {
					return errors.New("model missing")
				})
			}
			lc.WaitForStartup()

			req := httptest.NewRequest(http.MethodGet, "/classifier", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}

			var s api.ClassifierStatus
			if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if s.Ready != tt.wantReady {
				t.Errorf("ready = %v, want %v", s.Ready, tt.wantReady)
			}
			if s.Provider != tt.wantName {
				t.Errorf("provider = %q, want %q", s.Provider, tt.wantName)
			}
			if !strings.Contains(s.Error, tt.wantError) {
				t.Errorf("error = %q, want %q", s.Error, tt.wantError)
			}
		})
	}
}
