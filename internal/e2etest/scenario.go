package e2etest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ScenarioResult is what a workout scenario observed.
type ScenarioResult struct {
	WorkoutID       int64
	Recommendations int
	Records         int
	CurrentStreak   int
}

// RunWorkoutScenario plays one training session through the API: it plans a workout with exercise, logs sets of
// weight at reps, completes the workout and asks for matching programs.
func (c *Client) RunWorkoutScenario(ctx context.Context, exercise string, weight float64, reps int) (ScenarioResult, error) {
	var found struct {
		ID int64 `json:"id"`
	}
	if err := c.JSON(ctx, http.MethodGet, "/api/exercises?name="+url.QueryEscape(exercise), nil, &found); err != nil {
		return ScenarioResult{}, fmt.Errorf("look up exercise %q: %w", exercise, err)
	}

	var created struct {
		WorkoutID int64 `json:"workout_id"`
	}
	if err := c.JSON(ctx, http.MethodPost, "/api/workouts", map[string]any{
		"name": "Scenario",
		"exercises": []map[string]any{
			{"exercise_id": found.ID, "sets": 3, "reps": "8-12", "rest_seconds": 90},
		},
	}, &created); err != nil {
		return ScenarioResult{}, fmt.Errorf("create workout: %w", err)
	}
	if created.WorkoutID <= 0 {
		return ScenarioResult{}, errors.New("create workout: no workout id")
	}
	workoutPath := "/api/workouts/" + strconv.FormatInt(created.WorkoutID, 10)

	sets := make([]map[string]any, 0, 3)
	for i := range 3 {
		sets = append(sets, map[string]any{
			"exercise_id": found.ID, "set_number": i + 1, "weight": weight, "reps_completed": reps, "rpe": 8,
		})
	}
	if err := c.JSON(ctx, http.MethodPost, workoutPath+"/sets", map[string]any{"sets": sets}, nil); err != nil {
		return ScenarioResult{}, fmt.Errorf("log sets: %w", err)
	}

	var summary struct {
		Recommendations []json.RawMessage `json:"recommendations"`
		Records         []json.RawMessage `json:"records"`
		Streak          struct {
			CurrentStreak int `json:"current_streak"`
		} `json:"streak"`
	}
	if err := c.JSON(ctx, http.MethodPost, workoutPath+"/complete", nil, &summary); err != nil {
		return ScenarioResult{}, fmt.Errorf("complete workout: %w", err)
	}

	if err := c.JSON(ctx, http.MethodPost, "/api/programs/match", map[string]any{
		"goals": []string{"strength"}, "experience": "beginner", "days_per_week": 3,
	}, nil); err != nil {
		return ScenarioResult{}, fmt.Errorf("match programs: %w", err)
	}

	return ScenarioResult{
		WorkoutID:       created.WorkoutID,
		Recommendations: len(summary.Recommendations),
		Records:         len(summary.Records),
		CurrentStreak:   summary.Streak.CurrentStreak,
	}, nil
}
