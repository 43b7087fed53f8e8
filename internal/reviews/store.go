package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5"

	"github.com/JaimeStill/verdict/pkg/lifecycle"
	"github.com/JaimeStill/verdict/pkg/repository"
)

// Store appends classification results to the log.
type Store interface {
	// Insert writes one entry and returns its sequence-assigned log id.
	// Errors are one of ErrRelationMissing, ErrSequenceMissing, or ErrStoreFailed,
	// each wrapping the driver error.
	Insert(ctx context.Context, query string, label Label, confidence float64) (int64, error)
}

// Table names the log table and the sequence supplying its ids.
type Table struct {
	Schema   string
	Name     string
	Sequence string
}

func (t Table) insertSQL() string {
	seq := pgx.Identifier{t.Schema, t.Sequence}.Sanitize()
	return fmt.Sprintf(
		"INSERT INTO %s (log_id, user_query, classification, confidence) VALUES (nextval('%s'), $1, $2, $3) RETURNING log_id",
		pgx.Identifier{t.Schema, t.Name}.Sanitize(),
		seq,
	)
}

// LogStore is the PostgreSQL Store.
type LogStore struct {
	db       *sql.DB
	table    Table
	sql      string
	prepared atomic.Pointer[sql.Stmt]
	logger   *slog.Logger
}

// NewStore creates a Store writing to table through db.
// The insert statement is built once; Start prepares it.
func NewStore(db *sql.DB, table Table, logger *slog.Logger) *LogStore {
	return &LogStore{
		db:     db,
		table:  table,
		sql:    table.insertSQL(),
		logger: logger.With("system", "review-log"),
	}
}

// Start registers a startup hook preparing the insert statement and a
// shutdown hook closing it. A failed prepare is recorded but Insert falls
// back to executing the statement text.
func (s *LogStore) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("review-log", func(ctx context.Context) error {
		stmt, err := s.db.PrepareContext(ctx, s.sql)
		if err != nil {
			err = classifyStoreError(err, s.table)
			s.logger.Warn("prepare insert failed", "table", s.table.Name, "error", err)
			return err
		}
		s.prepared.Store(stmt)
		s.logger.Info("insert statement prepared", "table", s.table.Name)
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if stmt := s.prepared.Swap(nil); stmt != nil {
			stmt.Close()
		}
	})

	return nil
}

func (s *LogStore) Insert(ctx context.Context, query string, label Label, confidence float64) (int64, error) {
	id, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int64, error) {
		var row *sql.Row
		if stmt := s.prepared.Load(); stmt != nil {
			row = tx.StmtContext(ctx, stmt).QueryRowContext(ctx, query, string(label), confidence)
		} else {
			row = tx.QueryRowContext(ctx, s.sql, query, string(label), confidence)
		}

		var id int64
		if err := row.Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	})
	if err != nil {
		return 0, classifyStoreError(err, s.table)
	}
	return id, nil
}

// classifyStoreError sorts a driver error into the persistence categories.
// PostgreSQL reports a missing table and a missing sequence with the same
// code; the message names the missing relation, quoted and possibly
// schema-qualified.
func classifyStoreError(err error, table Table) error {
	code, msg, ok := repository.PgCode(err)
	if !ok {
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}

	switch code {
	case repository.PgUndefinedTable:
		if table.namesSequence(msg) {
			return fmt.Errorf("%w: %w", ErrSequenceMissing, err)
		}
		return fmt.Errorf("%w: %w", ErrRelationMissing, err)
	case repository.PgUndefinedObject:
		return fmt.Errorf("%w: %w", ErrRelationMissing, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
}

func (t Table) namesSequence(msg string) bool {
	return strings.Contains(msg, `"`+t.Schema+"."+t.Sequence+`"`) ||
		strings.Contains(msg, `"`+t.Sequence+`"`)
}

// persistReason returns the reported persist_error for a store error.
func persistReason(err error) string {
	for _, sentinel := range []error{ErrStoreUnavailable, ErrRelationMissing, ErrSequenceMissing} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrStoreFailed.Error()
}
