package app_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/verdict/internal/chat"
	"github.com/JaimeStill/verdict/internal/reviews"
	"github.com/JaimeStill/verdict/web/app"
)

type mockClassifier struct {
	classifyFn func(ctx context.Context, text string) (*reviews.Outcome, error)
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (*reviews.Outcome, error) {
	return m.classifyFn(ctx, text)
}

type mockSessions struct {
	createFn func(ctx context.Context) (*chat.Session, error)
	findFn   func(ctx context.Context, id uuid.UUID) (*chat.Session, error)
	sendFn   func(ctx context.Context, id uuid.UUID, text string) (*chat.Reply, error)
}

func (m *mockSessions) Handler() *chat.Handler { return nil }

func (m *mockSessions) Create(ctx context.Context) (*chat.Session, error) {
	return m.createFn(ctx)
}

func (m *mockSessions) Find(ctx context.Context, id uuid.UUID) (*chat.Session, error) {
	return m.findFn(ctx, id)
}

func (m *mockSessions) Send(ctx context.Context, id uuid.UUID, text string) (*chat.Reply, error) {
	return m.sendFn(ctx, id, text)
}

func newHandler(t *testing.T, cls chat.Classifier, sessions chat.System) http.Handler {
	t.Helper()
	m, err := app.NewModule("/app", cls, sessions, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	return m.Handler()
}

func postForm(h http.Handler, path, text string) *httptest.ResponseRecorder {
	form := url.Values{"text": {text}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReviewPage(t *testing.T) {
	h := newHandler(t, &mockClassifier{}, &mockSessions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"분류하기", "예시 리뷰 보기", app.Examples[0].Text, `href="/app/static/app.css"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestClassifyForm(t *testing.T) {
	logID := int64(9)

	tests := []struct {
		name       string
		outcome    *reviews.Outcome
		err        error
		wantStatus int
		want       []string
		notWant    []string
	}{
		{
			name: "persisted positive",
			outcome: &reviews.Outcome{
				Status: reviews.StatusAccepted, Label: reviews.Positive, Display: "긍정",
				Confidence: 0.97, Persisted: true, LogID: &logID,
			},
			wantStatus: http.StatusOK,
			want:       []string{"✅ 분류 완료!", "긍정 👍", "신뢰도: 97.00%"},
			notWant:    []string{"데이터"},
		},
		{
			name: "store unavailable",
			outcome: &reviews.Outcome{
				Status: reviews.StatusAccepted, Label: reviews.Negative, Display: "부정",
				Confidence: 0.89, PersistError: reviews.ErrStoreUnavailable.Error(),
			},
			wantStatus: http.StatusOK,
			want:       []string{"부정 👎", "신뢰도: 89.00%", "데이터베이스 연결이 설정되지 않아"},
		},
		{
			name: "store failure",
			outcome: &reviews.Outcome{
				Status: reviews.StatusAccepted, Label: reviews.Negative, Display: "부정",
				Confidence: 0.89, PersistError: reviews.ErrRelationMissing.Error(),
			},
			wantStatus: http.StatusOK,
			want:       []string{"데이터 저장 오류 발생: object does not exist"},
		},
		{
			name:       "empty input",
			err:        reviews.ErrEmptyInput,
			wantStatus: http.StatusUnprocessableEntity,
			want:       []string{"분류할 리뷰 텍스트를 입력해주세요."},
			notWant:    []string{"분류 완료"},
		},
		{
			name:       "model not loaded",
			err:        reviews.ErrClassifierUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			want:       []string{"모델이 로드되지 않아 분류를 진행할 수 없습니다."},
		},
		{
			name:       "gateway failure",
			err:        fmt.Errorf("%w: %w", reviews.ErrClassifierUnavailable, io.ErrUnexpectedEOF),
			wantStatus: http.StatusServiceUnavailable,
			want:       []string{"리뷰 분류 중 오류 발생", "unexpected EOF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := &mockClassifier{
				classifyFn: func(ctx context.Context, text string) (*reviews.Outcome, error) {
					return tt.outcome, tt.err
				},
			}
			h := newHandler(t, cls, &mockSessions{})

			rec := postForm(h, "/", "맛있어요")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			body := rec.Body.String()
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(body, nw) {
					t.Errorf("body should not contain %q", nw)
				}
			}
			if !strings.Contains(body, "맛있어요") {
				t.Error("submitted text should be echoed in the form")
			}
		})
	}
}

func TestNewChatRedirects(t *testing.T) {
	id := uuid.New()
	sessions := &mockSessions{
		createFn: func(ctx context.Context) (*chat.Session, error) {
			return &chat.Session{ID: id}, nil
		},
	}
	h := newHandler(t, &mockClassifier{}, sessions)

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/app/chat/"+id.String() {
		t.Errorf("location = %q", loc)
	}
}

func TestChatTranscript(t *testing.T) {
	id := uuid.New()
	var sent string

	sessions := &mockSessions{
		findFn: func(ctx context.Context, got uuid.UUID) (*chat.Session, error) {
			if got != id {
				return nil, chat.ErrNotFound
			}
			return &chat.Session{
				ID: id,
				Messages: []chat.Message{
					{Role: chat.RoleAssistant, Content: "안녕하세요!"},
					{Role: chat.RoleUser, Content: "맛있어요"},
					{Role: chat.RoleAssistant, Content: "**[분석 결과]**\n- **감정:** 긍정 👍\n- **신뢰도:** 97.00%"},
				},
			}, nil
		},
		sendFn: func(ctx context.Context, got uuid.UUID, text string) (*chat.Reply, error) {
			if text == "" {
				return nil, chat.ErrEmptyMessage
			}
			sent = text
			return &chat.Reply{}, nil
		},
	}
	h := newHandler(t, &mockClassifier{}, sessions)

	t.Run("render markdown", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/"+id.String(), nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{"<strong>[분석 결과]</strong>", "<li><strong>감정:</strong> 긍정 👍</li>", "안녕하세요!"} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
	})

	t.Run("send redirects", func(t *testing.T) {
		rec := postForm(h, "/chat/"+id.String(), "별로예요")
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rec.Code)
		}
		if sent != "별로예요" {
			t.Errorf("sent = %q", sent)
		}
	})

	t.Run("empty message warns", func(t *testing.T) {
		rec := postForm(h, "/chat/"+id.String(), "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "분류할 리뷰 텍스트를 입력해주세요.") {
			t.Error("expected empty input warning")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestStaticAndFallback(t *testing.T) {
	h := newHandler(t, &mockClassifier{}, &mockSessions{})

	t.Run("stylesheet", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), ".banner") {
			t.Error("unexpected stylesheet body")
		}
	})

	t.Run("unknown page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "요청하신 페이지를 찾을 수 없습니다.") {
			t.Error("expected not-found page")
		}
	})
}
