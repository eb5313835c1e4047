package training

import (
	"context"
	"fmt"
	"time"
)

func (r *SQLiteStore) ListWorkoutExercises(ctx context.Context, workoutID int64) (_ []WorkoutExercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT we.workout_id, we.exercise_id, e.name, e.muscle_group, we.position, we.sets, we.reps, we.rest_seconds
		FROM workout_exercises we
		JOIN exercises e ON e.id = we.exercise_id
		WHERE we.workout_id = ?
		ORDER BY we.position`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("query workout exercises: %w", err)
	}
	defer closeRows(rows, &err)

	var exercises []WorkoutExercise
	for rows.Next() {
		var we WorkoutExercise
		if err = rows.Scan(&we.WorkoutID, &we.ExerciseID, &we.ExerciseName, &we.MuscleGroup, &we.Position,
			&we.Sets, &we.Reps, &we.RestSeconds); err != nil {
			return nil, fmt.Errorf("scan workout exercise: %w", err)
		}
		exercises = append(exercises, we)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return exercises, nil
}

// CreateWorkout stores a workout template and returns its id. Positions follow the order of exercises.
func (r *SQLiteStore) CreateWorkout(
	ctx context.Context,
	userID int64,
	name string,
	exercises []WorkoutExercise,
) (int64, error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	var workoutID int64
	if err = tx.QueryRowContext(ctx, `INSERT INTO workouts (user_id, name) VALUES (?, ?) RETURNING id`,
		userID, name).Scan(&workoutID); err != nil {
		return 0, fmt.Errorf("insert workout: %w", err)
	}
	for i, we := range exercises {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO workout_exercises (workout_id, exercise_id, position, sets, reps, rest_seconds)
			VALUES (?, ?, ?, ?, ?, ?)`,
			workoutID, we.ExerciseID, i, we.Sets, we.Reps, we.RestSeconds); err != nil {
			return 0, fmt.Errorf("insert workout exercise %d: %w", we.ExerciseID, referenceError(err))
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", referenceError(err))
	}
	return workoutID, nil
}

// RecordWorkoutCompletion appends a completion to the user's workout log. workoutID may be nil. A workout that is
// already completed keeps its first completion time.
func (r *SQLiteStore) RecordWorkoutCompletion(
	ctx context.Context,
	userID int64,
	workoutID *int64,
	completedAt time.Time,
) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx,
		`INSERT INTO workout_logs (user_id, workout_id, completed_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		userID, workoutID, formatTimestamp(completedAt)); err != nil {
		return fmt.Errorf("insert workout log: %w", referenceError(err))
	}
	return nil
}

func (r *SQLiteStore) ListWorkoutCompletions(ctx context.Context, userID int64) (_ []time.Time, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT completed_at FROM workout_logs WHERE user_id = ? ORDER BY completed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query workout logs: %w", err)
	}
	defer closeRows(rows, &err)

	var completions []time.Time
	for rows.Next() {
		var s string
		if err = rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan completed_at: %w", err)
		}
		var t time.Time
		if t, err = parseTimestamp(s); err != nil {
			return nil, err
		}
		completions = append(completions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return completions, nil
}
