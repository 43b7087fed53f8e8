// Package chat keeps in-memory review chat transcripts. Each user message is
// classified by the review workflow and answered with a formatted verdict.
package chat

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/verdict/internal/reviews"
	"github.com/JaimeStill/verdict/pkg/formatting"
)

var (
	ErrNotFound     = errors.New("chat session not found")
	ErrEmptyMessage = errors.New("empty message")
)

// MapHTTPStatus maps chat domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyMessage):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Role identifies a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a snapshot of one transcript. The first message is always the greeting.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// Reply is the result of Send: the exchanged messages and, when the
// classification succeeded, its outcome.
type Reply struct {
	Messages []Message        `json:"messages"`
	Outcome  *reviews.Outcome `json:"outcome,omitempty"`
}

// SendRequest is the body of a send call.
type SendRequest struct {
	Text string `json:"text"`
}

// FormatOutcome renders an accepted classification as an assistant message.
func FormatOutcome(o *reviews.Outcome) string {
	return fmt.Sprintf(
		"**[분석 결과]**\n- **감정:** %s %s\n- **신뢰도:** %s",
		o.Label.Display(),
		o.Label.Emoji(),
		formatting.Percent(o.Confidence, 2),
	)
}

// FormatError renders a rejected classification as an assistant message.
func FormatError(err error) string {
	return fmt.Sprintf("❌ **리뷰 분류 중 오류 발생!**\n오류 상세: %v", err)
}
