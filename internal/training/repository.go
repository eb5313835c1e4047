package training

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/myrjola/liftcoach/internal/errors"
	"github.com/myrjola/liftcoach/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// baseRepository is embedded by the SQLite repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// rollback rolls back tx unless it was committed.
func (r *baseRepository) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction",
			errors.SlogError(errors.Wrap(err, "rollback")))
	}
}

// closeRows closes rows and joins a close failure into err.
func closeRows(rows *sql.Rows, err *error) {
	if closeErr := rows.Close(); closeErr != nil {
		*err = errors.Join(*err, fmt.Errorf("close rows: %w", closeErr))
	}
}

// referenceError marks foreign key violations as ErrNotFound. The referenced workout or exercise does not exist.
func referenceError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return fmt.Errorf("%w: unknown workout or exercise: %w", ErrNotFound, err)
	}
	return err
}

// SQLiteStore is the Store backed by the liftcoach SQLite database.
type SQLiteStore struct {
	baseRepository
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a Store on top of db.
func NewSQLiteStore(db *sqlite.Database, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{
		baseRepository: baseRepository{db: db, logger: logger},
	}
}
