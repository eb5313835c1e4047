package training

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/myrjola/liftcoach/internal/ptr"
)

const setLogColumns = `l.id, l.user_id, l.exercise_id, e.name, e.muscle_group, l.workout_id, l.set_number, l.weight,
       l.reps_completed, l.rpe, l.created_at`

func scanSetLogs(rows *sql.Rows) ([]SetLog, error) {
	var logs []SetLog
	for rows.Next() {
		var (
			l         SetLog
			workoutID sql.NullInt64
			rpe       sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.ExerciseID, &l.ExerciseName, &l.MuscleGroup, &workoutID,
			&l.SetNumber, &l.Weight, &l.RepsCompleted, &rpe, &createdAt); err != nil {
			return nil, fmt.Errorf("scan set log: %w", err)
		}
		if workoutID.Valid {
			l.WorkoutID = &workoutID.Int64
		}
		if rpe.Valid {
			v := int(rpe.Int64)
			l.RPE = &v
		}
		var err error
		if l.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return logs, nil
}

func (r *SQLiteStore) querySetLogs(ctx context.Context, query string, args ...any) (_ []SetLog, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query set logs: %w", err)
	}
	defer closeRows(rows, &err)
	return scanSetLogs(rows)
}

func (r *SQLiteStore) ListSetLogs(ctx context.Context, userID, exerciseID int64, limit int) ([]SetLog, error) {
	return r.querySetLogs(ctx, `SELECT `+setLogColumns+`
FROM logs l
         JOIN exercises e ON e.id = l.exercise_id
WHERE l.user_id = ?
  AND l.exercise_id = ?
ORDER BY l.created_at DESC, l.id DESC
LIMIT ?`, userID, exerciseID, limit)
}

func (r *SQLiteStore) ListWorkoutSetLogs(ctx context.Context, userID, workoutID int64) ([]SetLog, error) {
	return r.querySetLogs(ctx, `SELECT `+setLogColumns+`
FROM logs l
         JOIN exercises e ON e.id = l.exercise_id
WHERE l.user_id = ?
  AND l.workout_id = ?
ORDER BY l.created_at, l.id`, userID, workoutID)
}

func (r *SQLiteStore) ListSetLogsSince(ctx context.Context, userID int64, since time.Time) ([]SetLog, error) {
	return r.querySetLogs(ctx, `SELECT `+setLogColumns+`
FROM logs l
         JOIN exercises e ON e.id = l.exercise_id
WHERE l.user_id = ?
  AND l.created_at >= ?
ORDER BY l.created_at, l.id`, userID, formatTimestamp(since))
}

// MaxWeightExcludingWorkout counts sets logged outside any workout as history.
func (r *SQLiteStore) MaxWeightExcludingWorkout(ctx context.Context, userID, exerciseID, workoutID int64) (float64, error) {
	var weight float64
	if err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT COALESCE(MAX(weight), 0)
FROM logs
WHERE user_id = ?
  AND exercise_id = ?
  AND workout_id IS NOT ?`, userID, exerciseID, workoutID).Scan(&weight); err != nil {
		return 0, fmt.Errorf("query max weight: %w", err)
	}
	return weight, nil
}

// InsertSetLogs records completed sets in one transaction. IDs and names of logs are ignored.
func (r *SQLiteStore) InsertSetLogs(ctx context.Context, logs []SetLog) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO logs (user_id, exercise_id, workout_id, set_number, weight,
                  reps_completed, rpe, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range logs {
		var rpe *int
		if ptr.Deref(l.RPE, 0) > 0 {
			rpe = l.RPE
		}
		if _, err = stmt.ExecContext(ctx, l.UserID, l.ExerciseID, l.WorkoutID, l.SetNumber, l.Weight,
			l.RepsCompleted, rpe, formatTimestamp(l.CreatedAt)); err != nil {
			return fmt.Errorf("insert set log: %w", referenceError(err))
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", referenceError(err))
	}
	return nil
}
