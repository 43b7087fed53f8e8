// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies (logging, database, storage, classifier) that domain
// systems require.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/verdict/internal/config"
	"github.com/JaimeStill/verdict/pkg/classifier"
	"github.com/JaimeStill/verdict/pkg/database"
	"github.com/JaimeStill/verdict/pkg/lifecycle"
	"github.com/JaimeStill/verdict/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil when review persistence is disabled, Storage is nil when
// blob storage is disabled, and Classifier is nil when the provider could not
// be constructed. Domain systems treat each nil as an unavailable collaborator.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Storage    storage.System
	Classifier classifier.Classifier
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with log output directed to w.
func NewWithWriter(cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	logger := newLogger(&cfg.Logging, w)

	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
	}

	if cfg.Reviews.Persist {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	if cfg.Storage.Enabled {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	}

	cls, err := classifier.New(&cfg.Classifier, infra.Storage, logger)
	if err != nil {
		logger.Error("classifier unavailable", "provider", cfg.Classifier.Provider, "error", err)
	} else {
		infra.Classifier = cls
	}

	return infra, nil
}

func newLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if i.Classifier == nil {
		return nil
	}

	if s, ok := i.Classifier.(classifier.Starter); ok {
		if err := s.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("classifier start failed: %w", err)
		}
		return nil
	}

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.Classifier.Close(); err != nil {
			i.Logger.Error("classifier close failed", "error", err)
		}
	})
	return nil
}
