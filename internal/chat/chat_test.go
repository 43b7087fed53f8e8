package chat_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/verdict/internal/chat"
	"github.com/JaimeStill/verdict/internal/config"
	"github.com/JaimeStill/verdict/internal/reviews"
)

type mockReviews struct {
	mu         sync.Mutex
	classifyFn func(ctx context.Context, text string) (*reviews.Outcome, error)
	calls      int
}

func (m *mockReviews) Classify(ctx context.Context, text string) (*reviews.Outcome, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.classifyFn(ctx, text)
}

func accepting(label reviews.Label, confidence float64) *mockReviews {
	return &mockReviews{
		classifyFn: func(context.Context, string) (*reviews.Outcome, error) {
			return &reviews.Outcome{Status: reviews.StatusAccepted, Label: label, Display: label.Display(), Confidence: confidence}, nil
		},
	}
}

func testConfig() config.ChatConfig {
	return config.ChatConfig{MaxSessions: 3, MaxMessages: 5, Greeting: config.DefaultGreeting}
}

func newSystem(r chat.Classifier, cfg config.ChatConfig) chat.System {
	return chat.New(r, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateStartsWithGreeting(t *testing.T) {
	sys := newSystem(accepting(reviews.Positive, 0.9), testConfig())

	s, err := sys.Create(context.Background())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if s.ID == uuid.Nil {
		t.Error("session id is nil")
	}
	if len(s.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(s.Messages))
	}
	if s.Messages[0].Role != chat.RoleAssistant || s.Messages[0].Content != config.DefaultGreeting {
		t.Errorf("greeting = %+v", s.Messages[0])
	}
}

func TestSendAccepted(t *testing.T) {
	sys := newSystem(accepting(reviews.Positive, 0.97), testConfig())
	s, _ := sys.Create(context.Background())

	reply, err := sys.Send(context.Background(), s.ID, "사장님이 너무 친절하시고 서비스도 좋아서 다음에도 꼭 주문하고 싶어요!")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if len(reply.Messages) != 2 || reply.Messages[0].Role != chat.RoleUser || reply.Messages[1].Role != chat.RoleAssistant {
		t.Fatalf("reply messages = %+v", reply.Messages)
	}

	want := "**[분석 결과]**\n- **감정:** 긍정 👍\n- **신뢰도:** 97.00%"
	if reply.Messages[1].Content != want {
		t.Errorf("assistant content:\ngot  %q\nwant %q", reply.Messages[1].Content, want)
	}
	if reply.Outcome == nil || reply.Outcome.Label != reviews.Positive {
		t.Errorf("outcome = %+v", reply.Outcome)
	}

	got, err := sys.Find(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if len(got.Messages) != 3 {
		t.Errorf("transcript length = %d, want 3", len(got.Messages))
	}
}

func TestSendRejectedAnswersWithError(t *testing.T) {
	r := &mockReviews{
		classifyFn: func(context.Context, string) (*reviews.Outcome, error) {
			return nil, fmt.Errorf("%w: model is loading", reviews.ErrClassifierUnavailable)
		},
	}
	sys := newSystem(r, testConfig())
	s, _ := sys.Create(context.Background())

	reply, err := sys.Send(context.Background(), s.ID, "포장이 엉망이에요")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}

	content := reply.Messages[1].Content
	if !strings.HasPrefix(content, "❌ **리뷰 분류 중 오류 발생!**") || !strings.Contains(content, "model is loading") {
		t.Errorf("assistant content = %q", content)
	}
	if reply.Outcome != nil {
		t.Errorf("outcome should be nil on rejection, got %+v", reply.Outcome)
	}
}

func TestSendEmptyMessage(t *testing.T) {
	r := accepting(reviews.Negative, 0.8)
	sys := newSystem(r, testConfig())
	s, _ := sys.Create(context.Background())

	for _, text := range []string{"", "   ", "\n"} {
		if _, err := sys.Send(context.Background(), s.ID, text); !errors.Is(err, chat.ErrEmptyMessage) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyMessage", text, err)
		}
	}

	got, _ := sys.Find(context.Background(), s.ID)
	if len(got.Messages) != 1 {
		t.Errorf("transcript length = %d, want only greeting", len(got.Messages))
	}
	if r.calls != 0 {
		t.Errorf("classifier called %d times, want 0", r.calls)
	}
}

func TestSendUnknownSession(t *testing.T) {
	r := accepting(reviews.Negative, 0.8)
	sys := newSystem(r, testConfig())

	if _, err := sys.Send(context.Background(), uuid.New(), "리뷰"); !errors.Is(err, chat.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := sys.Find(context.Background(), uuid.New()); !errors.Is(err, chat.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if r.calls != 0 {
		t.Errorf("classifier called %d times, want 0", r.calls)
	}
}

func TestTranscriptCapKeepsGreeting(t *testing.T) {
	sys := newSystem(accepting(reviews.Negative, 0.6), testConfig())
	s, _ := sys.Create(context.Background())

	for i := range 4 {
		if _, err := sys.Send(context.Background(), s.ID, fmt.Sprintf("review %d", i)); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}

	got, _ := sys.Find(context.Background(), s.ID)
	if len(got.Messages) != 5 {
		t.Fatalf("transcript length = %d, want 5", len(got.Messages))
	}
	if got.Messages[0].Content != config.DefaultGreeting {
		t.Errorf("greeting trimmed: %+v", got.Messages[0])
	}
	if got.Messages[3].Content != "review 3" {
		t.Errorf("latest user message = %q, want review 3", got.Messages[3].Content)
	}
}

func TestSessionCapEvictsOldest(t *testing.T) {
	sys := newSystem(accepting(reviews.Positive, 0.9), testConfig())

	first, _ := sys.Create(context.Background())
	for range 3 {
		sys.Create(context.Background())
	}

	if _, err := sys.Find(context.Background(), first.ID); !errors.Is(err, chat.ErrNotFound) {
		t.Errorf("oldest session should be evicted, got %v", err)
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	sys := newSystem(accepting(reviews.Positive, 0.9), testConfig())
	s, _ := sys.Create(context.Background())

	s.Messages[0].Content = "tampered"

	got, _ := sys.Find(context.Background(), s.ID)
	if got.Messages[0].Content != config.DefaultGreeting {
		t.Error("session state modified through snapshot")
	}
}

func TestConcurrentSends(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMessages = 100
	r := accepting(reviews.Positive, 0.9)
	sys := newSystem(r, cfg)
	s, _ := sys.Create(context.Background())

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() {
			sys.Send(context.Background(), s.ID, fmt.Sprintf("review %d", i))
		})
	}
	wg.Wait()

	got, _ := sys.Find(context.Background(), s.ID)
	if len(got.Messages) != 21 {
		t.Errorf("transcript length = %d, want 21", len(got.Messages))
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{chat.ErrNotFound, http.StatusNotFound},
		{chat.ErrEmptyMessage, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := chat.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
