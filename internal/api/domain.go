package api

import (
	"database/sql"
	"fmt"

	"github.com/JaimeStill/verdict/internal/chat"
	"github.com/JaimeStill/verdict/internal/config"
	"github.com/JaimeStill/verdict/internal/reviews"
)

// Domain holds all domain systems. The web app shares the same instances so
// every presentation mode runs through one review workflow.
type Domain struct {
	Reviews reviews.System
	Chat    chat.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	var db *sql.DB
	if runtime.Database != nil {
		db = runtime.Database.Connection()
	}

	reviewsSystem := reviews.New(
		db,
		runtime.Classifier,
		cfg.Reviews,
		runtime.Logger,
		runtime.Pagination,
	)

	chatSystem := chat.New(reviewsSystem, cfg.Chat, runtime.Logger)

	return &Domain{
		Reviews: reviewsSystem,
		Chat:    chatSystem,
	}
}

// Start registers domain lifecycle hooks.
func (d *Domain) Start(runtime *Runtime) error {
	if err := d.Reviews.Start(runtime.Lifecycle); err != nil {
		return fmt.Errorf("reviews start failed: %w", err)
	}
	return nil
}
