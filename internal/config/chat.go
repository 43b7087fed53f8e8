package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvChatMaxSessions = "VERDICT_CHAT_MAX_SESSIONS"
	EnvChatMaxMessages = "VERDICT_CHAT_MAX_MESSAGES"
	EnvChatGreeting    = "VERDICT_CHAT_GREETING"
)

// DefaultGreeting opens every chat session.
const DefaultGreeting = "안녕하세요! 배달 어플 리뷰를 입력하시면 긍정인지 부정인지 분류해 드립니다."

// ChatConfig bounds the in-memory chat transcripts.
type ChatConfig struct {
	MaxSessions int    `toml:"max_sessions"`
	MaxMessages int    `toml:"max_messages"`
	Greeting    string `toml:"greeting"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ChatConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ChatConfig) Merge(overlay *ChatConfig) {
	if overlay.MaxSessions != 0 {
		c.MaxSessions = overlay.MaxSessions
	}
	if overlay.MaxMessages != 0 {
		c.MaxMessages = overlay.MaxMessages
	}
	if overlay.Greeting != "" {
		c.Greeting = overlay.Greeting
	}
}

func (c *ChatConfig) loadDefaults() {
	if c.MaxSessions == 0 {
		c.MaxSessions = 1000
	}
	if c.MaxMessages == 0 {
		c.MaxMessages = 100
	}
	if c.Greeting == "" {
		c.Greeting = DefaultGreeting
	}
}

func (c *ChatConfig) loadEnv() {
	if v := os.Getenv(EnvChatMaxSessions); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxSessions = n
		}
	}
	if v := os.Getenv(EnvChatMaxMessages); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxMessages = n
		}
	}
	if v := os.Getenv(EnvChatGreeting); v != "" {
		c.Greeting = v
	}
}

func (c *ChatConfig) validate() error {
	if c.MaxSessions < 1 {
		return fmt.Errorf("invalid max_sessions: %d", c.MaxSessions)
	}
	if c.MaxMessages < 3 {
		return fmt.Errorf("invalid max_messages: %d, need room for greeting and one exchange", c.MaxMessages)
	}
	return nil
}
