package sqlite_test

import (
	"testing"

	"github.com/myrjola/liftcoach/internal/sqlite"
	"github.com/myrjola/liftcoach/internal/testhelpers"
)

func TestNewDatabase(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	counts := map[string]int{
		"exercises":             0,
		"training_programs":     0,
		"training_program_tags": 0,
		"program_workouts":      0,
	}
	for table := range counts {
		var n int
		if err = db.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n == 0 {
			t.Errorf("%s has no reference rows", table)
		}
	}

	var difficulty string
	if err = db.ReadOnly.QueryRowContext(ctx,
		"SELECT difficulty FROM training_programs WHERE slug = 'starting_strength'").Scan(&difficulty); err != nil {
		t.Fatalf("select program: %v", err)
	}
	if difficulty != "beginner" {
		t.Errorf("difficulty = %q, want beginner", difficulty)
	}
}

func TestNewDatabase_reopen(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	url := t.TempDir() + "/liftcoach.sqlite3"
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	first, err := sqlite.NewDatabase(ctx, url, logger)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	if _, err = first.ReadWrite.ExecContext(ctx,
		"INSERT INTO workout_logs (user_id, completed_at) VALUES (1, '2026-01-05T10:00:00.000Z')"); err != nil {
		t.Fatalf("insert workout log: %v", err)
	}
	if err = first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Migrating and applying fixtures again must leave user data and reference data intact.
	second, err := sqlite.NewDatabase(ctx, url, logger)
	if err != nil {
		t.Fatalf("NewDatabase again: %v", err)
	}
	t.Cleanup(func() {
		if err = second.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	var n int
	if err = second.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM workout_logs").Scan(&n); err != nil {
		t.Fatalf("count workout logs: %v", err)
	}
	if n != 1 {
		t.Errorf("workout logs = %d, want 1", n)
	}
}
