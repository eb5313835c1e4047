package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/myrjola/liftcoach/internal/contexthelpers"
	"github.com/myrjola/liftcoach/internal/training"
)

type plannedExerciseRequest struct {
	ExerciseID  int64  `json:"exercise_id"`
	Sets        int    `json:"sets"`
	Reps        string `json:"reps"`
	RestSeconds int    `json:"rest_seconds"`
}

type createWorkoutRequest struct {
	Name      string                   `json:"name"`
	Exercises []plannedExerciseRequest `json:"exercises"`
}

type createWorkoutResponse struct {
	WorkoutID int64 `json:"workout_id"`
}

type completedSetRequest struct {
	ExerciseID    int64   `json:"exercise_id"`
	SetNumber     int     `json:"set_number"`
	Weight        float64 `json:"weight"`
	RepsCompleted int     `json:"reps_completed"`
	RPE           int     `json:"rpe"`
}

type logSetsRequest struct {
	Sets []completedSetRequest `json:"sets"`
}

type recommendationResponse struct {
	ExerciseID        int64     `json:"exercise_id"`
	ExerciseName      string    `json:"exercise_name"`
	RecommendedWeight float64   `json:"recommended_weight"`
	RecommendedReps   string    `json:"recommended_reps"`
	Type              string    `json:"type"`
	Reason            string    `json:"reason"`
	BasedOnSessions   int       `json:"based_on_sessions"`
	CreatedAt         time.Time `json:"created_at"`
}

type personalRecordResponse struct {
	ExerciseID   int64   `json:"exercise_id"`
	ExerciseName string  `json:"exercise_name"`
	NewWeight    float64 `json:"new_weight"`
	PreviousBest float64 `json:"previous_best"`
	Reps         int     `json:"reps"`
	Improvement  float64 `json:"improvement"`
}

type streakResponse struct {
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalWorkouts    int        `json:"total_workouts"`
	ThisWeekWorkouts int        `json:"this_week_workouts"`
	LastWorkoutDate  *time.Time `json:"last_workout_date"`
}

type workoutSummaryResponse struct {
	Recommendations []recommendationResponse `json:"recommendations"`
	Records         []personalRecordResponse `json:"records"`
	Streak          streakResponse           `json:"streak"`
}

type exerciseResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newRecommendationResponses(recs []training.Recommendation) []recommendationResponse {
	resp := make([]recommendationResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, recommendationResponse{
			ExerciseID:        rec.ExerciseID,
			ExerciseName:      rec.ExerciseName,
			RecommendedWeight: rec.RecommendedWeight,
			RecommendedReps:   rec.RecommendedReps,
			Type:              string(rec.Type),
			Reason:            rec.Reason,
			BasedOnSessions:   rec.BasedOnSessions,
			CreatedAt:         rec.CreatedAt,
		})
	}
	return resp
}

func newPersonalRecordResponses(records []training.PersonalRecord) []personalRecordResponse {
	resp := make([]personalRecordResponse, 0, len(records))
	for _, pr := range records {
		resp = append(resp, personalRecordResponse{
			ExerciseID:   pr.ExerciseID,
			ExerciseName: pr.ExerciseName,
			NewWeight:    pr.NewWeight,
			PreviousBest: pr.PreviousBest,
			Reps:         pr.Reps,
			Improvement:  pr.Improvement,
		})
	}
	return resp
}

func newStreakResponse(s training.StreakData) streakResponse {
	return streakResponse{
		CurrentStreak:    s.CurrentStreak,
		LongestStreak:    s.LongestStreak,
		TotalWorkouts:    s.TotalWorkouts,
		ThisWeekWorkouts: s.ThisWeekWorkouts,
		LastWorkoutDate:  s.LastWorkoutDate,
	}
}

func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		app.writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	id, err := app.exercises.FindExerciseID(r.Context(), name)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, exerciseResponse{ID: id, Name: name})
}

func (app *application) workoutsPOST(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	planned := make([]training.PlannedExercise, 0, len(req.Exercises))
	for _, e := range req.Exercises {
		planned = append(planned, training.PlannedExercise{
			ExerciseID:  e.ExerciseID,
			Sets:        e.Sets,
			Reps:        e.Reps,
			RestSeconds: e.RestSeconds,
		})
	}
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	workoutID, err := app.coach.CreateWorkout(r.Context(), userID, req.Name, planned)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/workouts/"+strconv.FormatInt(workoutID, 10))
	app.writeJSON(w, r, http.StatusCreated, createWorkoutResponse{WorkoutID: workoutID})
}

func (app *application) logSets(w http.ResponseWriter, r *http.Request, workoutID *int64) {
	var req logSetsRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	sets := make([]training.CompletedSet, 0, len(req.Sets))
	for _, s := range req.Sets {
		sets = append(sets, training.CompletedSet{
			ExerciseID:    s.ExerciseID,
			SetNumber:     s.SetNumber,
			Weight:        s.Weight,
			RepsCompleted: s.RepsCompleted,
			RPE:           s.RPE,
		})
	}
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	if err := app.coach.LogSets(r.Context(), userID, workoutID, sets); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) workoutSetsPOST(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := app.parseWorkoutIDParam(w, r)
	if !ok {
		return
	}
	app.logSets(w, r, &workoutID)
}

// setsPOST logs sets done outside a planned workout.
func (app *application) setsPOST(w http.ResponseWriter, r *http.Request) {
	app.logSets(w, r, nil)
}

func (app *application) workoutCompletePOST(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := app.parseWorkoutIDParam(w, r)
	if !ok {
		return
	}
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	summary, err := app.coach.CompleteWorkout(r.Context(), userID, workoutID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, workoutSummaryResponse{
		Recommendations: newRecommendationResponses(summary.Recommendations),
		Records:         newPersonalRecordResponses(summary.Records),
		Streak:          newStreakResponse(summary.Streak),
	})
}

func (app *application) workoutProgressionPOST(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := app.parseWorkoutIDParam(w, r)
	if !ok {
		return
	}
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	recs, err := app.coach.ComputeProgression(r.Context(), userID, workoutID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newRecommendationResponses(recs))
}

func (app *application) workoutRecordsPOST(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := app.parseWorkoutIDParam(w, r)
	if !ok {
		return
	}
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	records, err := app.coach.DetectPRs(r.Context(), userID, workoutID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newPersonalRecordResponses(records))
}

// progressionGET lists stored recommendations. Repeat exercise_id to filter by exercise.
func (app *application) progressionGET(w http.ResponseWriter, r *http.Request) {
	var exerciseIDs []int64
	for _, raw := range r.URL.Query()["exercise_id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			app.writeError(w, r, http.StatusBadRequest, "invalid exercise_id "+strconv.Quote(raw))
			return
		}
		exerciseIDs = append(exerciseIDs, id)
	}
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	recs, err := app.coach.Recommendations(r.Context(), userID, exerciseIDs)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newRecommendationResponses(recs))
}
