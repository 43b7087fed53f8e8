package reviews_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/verdict/internal/reviews"
	"github.com/JaimeStill/verdict/pkg/lifecycle"
	"github.com/JaimeStill/verdict/pkg/pagination"
)

type mockSystem struct {
	classifyFn func(ctx context.Context, text string) (*reviews.Outcome, error)
	listFn     func(ctx context.Context, page pagination.PageRequest, filters reviews.Filters) (*pagination.PageResult[reviews.LogEntry], error)
	findFn     func(ctx context.Context, logID int64) (*reviews.LogEntry, error)
}

func (m *mockSystem) Handler() *reviews.Handler {
	return reviews.NewHandler(m, discard(), testPagination)
}

func (m *mockSystem) Classify(ctx context.Context, text string) (*reviews.Outcome, error) {
	return m.classifyFn(ctx, text)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters reviews.Filters) (*pagination.PageResult[reviews.LogEntry], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, logID int64) (*reviews.LogEntry, error) {
	return m.findFn(ctx, logID)
}

func (m *mockSystem) Start(*lifecycle.Coordinator) error { return nil }

func setupMux(h *reviews.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleEntry() reviews.LogEntry {
	confidence := 0.97
	return reviews.LogEntry{
		LogID:          12,
		Query:          "사장님이 너무 친절하시고 서비스도 좋아서 다음에도 꼭 주문하고 싶어요!",
		Classification: reviews.Positive,
		Confidence:     &confidence,
		CreatedAt:      time.Now().Truncate(time.Second),
	}
}

func TestHandlerClassify(t *testing.T) {
	var received string
	id := int64(3)
	sys := &mockSystem{
		classifyFn: func(_ context.Context, text string) (*reviews.Outcome, error) {
			received = text
			switch text {
			case "":
				return nil, reviews.ErrEmptyInput
			case "offline":
				return nil, fmt.Errorf("%w: dial tcp", reviews.ErrClassifierUnavailable)
			case "weird":
				return nil, fmt.Errorf("%w: %q", reviews.ErrUnexpectedLabel, "LABEL_9")
			case "no log":
				return &reviews.Outcome{Status: reviews.StatusAccepted, Label: reviews.Negative, Confidence: 0.89, PersistError: "object does not exist"}, nil
			}
			return &reviews.Outcome{Status: reviews.StatusAccepted, Label: reviews.Positive, Display: "긍정", Confidence: 0.97, Persisted: true, LogID: &id}, nil
		},
	}
	mux := setupMux(sys.Handler())

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"accepted", `{"text":"맛있어요"}`, http.StatusOK},
		{"persistence failure still accepted", `{"text":"no log"}`, http.StatusOK},
		{"empty input", `{"text":""}`, http.StatusUnprocessableEntity},
		{"classifier unavailable", `{"text":"offline"}`, http.StatusServiceUnavailable},
		{"unexpected label", `{"text":"weird"}`, http.StatusBadGateway},
		{"malformed body", `{"text":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/reviews/classify", strings.NewReader(tt.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	t.Run("response body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/reviews/classify", bytes.NewBufferString(`{"text":"맛있어요"}`))
		mux.ServeHTTP(rec, req)

		if received != "맛있어요" {
			t.Errorf("system received %q", received)
		}

		var body map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["label"] != "positive" || body["confidence"] != 0.97 || body["persisted"] != true || body["log_id"] != float64(3) {
			t.Errorf("body = %v", body)
		}
		if _, ok := body["persist_error"]; ok {
			t.Error("persist_error should be omitted when persisted")
		}
	})
}

func TestHandlerList(t *testing.T) {
	e := sampleEntry()
	var gotFilters reviews.Filters
	var gotPage pagination.PageRequest

	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters reviews.Filters) (*pagination.PageResult[reviews.LogEntry], error) {
			gotPage, gotFilters = page, filters
			result := pagination.NewPageResult([]reviews.LogEntry{e}, 1, page.Page, page.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/reviews/logs?classification=positive&page=2&page_size=500&search=%EC%B9%9C%EC%A0%88", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotFilters.Classification == nil || *gotFilters.Classification != reviews.Positive {
		t.Errorf("filters = %+v", gotFilters)
	}
	if gotPage.Page != 2 || gotPage.PageSize != 100 {
		t.Errorf("page = %+v, want page 2 clamped to 100", gotPage)
	}
	if gotPage.Search == nil || *gotPage.Search != "친절" {
		t.Errorf("search = %v", gotPage.Search)
	}

	var result pagination.PageResult[reviews.LogEntry]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || result.Data[0].LogID != 12 {
		t.Errorf("result = %+v", result)
	}
}

func TestHandlerListStoreUnavailable(t *testing.T) {
	sys := &mockSystem{
		listFn: func(context.Context, pagination.PageRequest, reviews.Filters) (*pagination.PageResult[reviews.LogEntry], error) {
			return nil, reviews.ErrStoreUnavailable
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/reviews/logs", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandlerSearch(t *testing.T) {
	var gotPage pagination.PageRequest
	var gotFilters reviews.Filters

	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters reviews.Filters) (*pagination.PageResult[reviews.LogEntry], error) {
			gotPage, gotFilters = page, filters
			result := pagination.NewPageResult([]reviews.LogEntry{}, 0, page.Page, page.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(sys.Handler())

	t.Run("decodes body", func(t *testing.T) {
		body := `{"page":1,"search":"식어","sort":"-CreatedAt","classification":"negative"}`
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/reviews/logs/search", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotPage.PageSize != 20 {
			t.Errorf("page size = %d, want default 20", gotPage.PageSize)
		}
		if len(gotPage.Sort) != 1 || gotPage.Sort[0].Field != "CreatedAt" || !gotPage.Sort[0].Descending {
			t.Errorf("sort = %+v", gotPage.Sort)
		}
		if gotFilters.Classification == nil || *gotFilters.Classification != reviews.Negative {
			t.Errorf("filters = %+v", gotFilters)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/reviews/logs/search", strings.NewReader("{")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	e := sampleEntry()
	sys := &mockSystem{
		findFn: func(_ context.Context, id int64) (*reviews.LogEntry, error) {
			if id == e.LogID {
				return &e, nil
			}
			return nil, reviews.ErrNotFound
		},
	}
	mux := setupMux(sys.Handler())

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/reviews/logs/12", http.StatusOK},
		{"not found", "/reviews/logs/13", http.StatusNotFound},
		{"invalid id", "/reviews/logs/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerRoutesDocumented(t *testing.T) {
	group := (&mockSystem{}).Handler().Routes()

	if group.Prefix != "/reviews" {
		t.Errorf("prefix = %s", group.Prefix)
	}
	for _, r := range group.Routes {
		if r.OpenAPI == nil {
			t.Errorf("%s %s has no OpenAPI operation", r.Method, r.Pattern)
		}
	}
	for _, name := range []string{"ClassifyRequest", "Outcome", "LogEntry", "LogEntryPage", "LogSearchRequest"} {
		if _, ok := group.Schemas[name]; !ok {
			t.Errorf("schema %s missing", name)
		}
	}
}
