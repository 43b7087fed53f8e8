package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/verdict/internal/config"
	"github.com/JaimeStill/verdict/pkg/classifier"
	"github.com/JaimeStill/verdict/pkg/lifecycle"
	"github.com/JaimeStill/verdict/pkg/pagination"
	"github.com/JaimeStill/verdict/pkg/query"
	"github.com/JaimeStill/verdict/pkg/repository"
)

// System defines the public contract for review classification and the log.
type System interface {
	Handler() *Handler

	// Classify runs the review workflow for one submission.
	Classify(ctx context.Context, text string) (*Outcome, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[LogEntry], error)

	Find(ctx context.Context, logID int64) (*LogEntry, error)

	// Start registers the log store's lifecycle hooks, if any.
	Start(lc *lifecycle.Coordinator) error
}

type repo struct {
	db         *sql.DB
	store      *LogStore
	workflow   *Workflow
	projection *query.ProjectionMap
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the review system. db may be nil when persistence is disabled;
// cls may be nil when no classifier could be constructed.
func New(
	db *sql.DB,
	cls classifier.Classifier,
	cfg config.ReviewsConfig,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	table := Table{Schema: cfg.Schema, Name: cfg.Table, Sequence: cfg.Sequence}
	labels := LabelMap{Positive: cfg.PositiveTag, Negative: cfg.NegativeTag}

	r := &repo{
		db:         db,
		projection: newProjection(table),
		logger:     logger.With("system", "reviews"),
		pagination: pagination,
	}

	// a nil *LogStore must not reach the workflow as a non-nil Store
	var store Store
	if db != nil {
		r.store = NewStore(db, table, logger)
		store = r.store
	}

	r.workflow = NewWorkflow(cls, labels, store, logger)
	return r
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Start(lc *lifecycle.Coordinator) error {
	if r.store == nil {
		r.logger.Info("review log disabled")
		return nil
	}
	return r.store.Start(lc)
}

func (r *repo) Classify(ctx context.Context, text string) (*Outcome, error) {
	return r.workflow.Handle(ctx, text)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[LogEntry], error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(r.projection, defaultSort).
		WhereSearch(page.Search, "Query")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count review logs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanLogEntry)
	if err != nil {
		return nil, fmt.Errorf("query review logs: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, logID int64) (*LogEntry, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}

	q, args := query.NewBuilder(r.projection).BuildSingle("LogID", logID)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanLogEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}
