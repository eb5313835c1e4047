package training

import (
	"context"
	"time"

	"github.com/myrjola/liftcoach/internal/errors"
)

var (
	ErrNotFound     = errors.NewSentinel("not found")
	ErrInvalidInput = errors.NewSentinel("invalid input")
)

// Store is the persistence collaborator of the coaching heuristics.
//
// SQLiteStore serves the web server and the CLI. MemoryStore serves tests and in-process callers.
type Store interface {
	// ListSetLogs returns up to limit sets of the exercise, newest first.
	ListSetLogs(ctx context.Context, userID, exerciseID int64, limit int) ([]SetLog, error)
	// ListWorkoutExercises returns the planned exercises of a workout in position order.
	ListWorkoutExercises(ctx context.Context, workoutID int64) ([]WorkoutExercise, error)
	// ListExercises returns the exercise catalogue with equipment, ordered by id.
	ListExercises(ctx context.Context) ([]Exercise, error)
	// ListTrainingPrograms returns the program catalogue ordered by category and slug.
	ListTrainingPrograms(ctx context.Context) ([]TrainingProgram, error)
	// UpsertRecommendation replaces the recommendation of the user and exercise.
	UpsertRecommendation(ctx context.Context, rec Recommendation) error
	// ListRecommendations returns the user's recommendations for exerciseIDs, or all of them when exerciseIDs is
	// empty, ordered by exercise id.
	ListRecommendations(ctx context.Context, userID int64, exerciseIDs []int64) ([]Recommendation, error)
	// InsertAchievement appends an achievement. An achievement with a known ID is ignored.
	InsertAchievement(ctx context.Context, achievement Achievement) error
	// ListAchievements returns the user's achievements, newest first.
	ListAchievements(ctx context.Context, userID int64) ([]Achievement, error)
	// ListWorkoutCompletions returns when the user completed workouts, newest first.
	ListWorkoutCompletions(ctx context.Context, userID int64) ([]time.Time, error)
	// ListWorkoutSetLogs returns the sets logged in a workout in the order they were logged.
	ListWorkoutSetLogs(ctx context.Context, userID, workoutID int64) ([]SetLog, error)
	// MaxWeightExcludingWorkout returns the heaviest weight logged for the exercise outside the workout, or 0.
	MaxWeightExcludingWorkout(ctx context.Context, userID, exerciseID, workoutID int64) (float64, error)
	// ListSetLogsSince returns the user's sets logged at or after since, oldest first.
	ListSetLogsSince(ctx context.Context, userID int64, since time.Time) ([]SetLog, error)

	// CreateWorkout stores a workout with its planned exercises and returns the workout id. Unknown exercises fail
	// with ErrNotFound.
	CreateWorkout(ctx context.Context, userID int64, name string, exercises []WorkoutExercise) (int64, error)
	// InsertSetLogs records completed sets. Zero RPE is stored as not reported. Unknown exercises or workouts
	// fail with ErrNotFound.
	InsertSetLogs(ctx context.Context, logs []SetLog) error
	// RecordWorkoutCompletion appends a completion. Completing the same workout again is a no-op.
	RecordWorkoutCompletion(ctx context.Context, userID int64, workoutID *int64, completedAt time.Time) error
}
