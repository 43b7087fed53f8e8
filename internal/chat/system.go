package chat

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/verdict/internal/config"
	"github.com/JaimeStill/verdict/internal/reviews"
)

// Classifier runs the review workflow. reviews.System satisfies it.
type Classifier interface {
	Classify(ctx context.Context, text string) (*reviews.Outcome, error)
}

// System defines the public contract for chat sessions.
type System interface {
	Handler() *Handler

	// Create starts a session holding only the greeting.
	Create(ctx context.Context) (*Session, error)
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	// Send appends text and the assistant's answer to the session.
	// Blank text returns ErrEmptyMessage and leaves the transcript unchanged.
	Send(ctx context.Context, id uuid.UUID, text string) (*Reply, error)
}

type session struct {
	id        uuid.UUID
	messages  []Message
	createdAt time.Time
}

type store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	order    []uuid.UUID

	reviews     Classifier
	greeting    string
	maxSessions int
	maxMessages int
	logger      *slog.Logger
}

// New creates a chat system answering through the review classifier.
func New(cls Classifier, cfg config.ChatConfig, logger *slog.Logger) System {
	return &store{
		sessions:    make(map[uuid.UUID]*session),
		reviews:     cls,
		greeting:    cfg.Greeting,
		maxSessions: cfg.MaxSessions,
		maxMessages: cfg.MaxMessages,
		logger:      logger.With("system", "chat"),
	}
}

func (s *store) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *store) Create(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	sess := &session{
		id:        uuid.New(),
		messages:  []Message{{Role: RoleAssistant, Content: s.greeting, CreatedAt: now}},
		createdAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.order) >= s.maxSessions {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.sessions, evicted)
		s.logger.Debug("session evicted", "session", evicted)
	}

	s.sessions[sess.id] = sess
	s.order = append(s.order, sess.id)

	return sess.snapshot(), nil
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.snapshot(), nil
}

func (s *store) Send(ctx context.Context, id uuid.UUID, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	user := Message{Role: RoleUser, Content: text, CreatedAt: time.Now().UTC()}
	if err := s.append(id, user); err != nil {
		return nil, err
	}

	reply := &Reply{}
	assistant := Message{Role: RoleAssistant}

	outcome, err := s.reviews.Classify(ctx, text)
	if err != nil {
		s.logger.Warn("review rejected", "session", id, "error", err)
		assistant.Content = FormatError(err)
	} else {
		assistant.Content = FormatOutcome(outcome)
		reply.Outcome = outcome
	}
	assistant.CreatedAt = time.Now().UTC()

	if err := s.append(id, assistant); err != nil {
		return nil, err
	}

	reply.Messages = []Message{user, assistant}
	return reply, nil
}

// append adds m to the session, trimming the oldest messages after the greeting.
func (s *store) append(id uuid.UUID, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}

	sess.messages = append(sess.messages, m)
	if excess := len(sess.messages) - s.maxMessages; excess > 0 {
		sess.messages = slices.Delete(sess.messages, 1, 1+excess)
	}
	return nil
}

func (s *session) snapshot() *Session {
	return &Session{
		ID:        s.id,
		Messages:  slices.Clone(s.messages),
		CreatedAt: s.createdAt,
	}
}
