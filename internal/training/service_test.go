package training_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/myrjola/liftcoach/internal/ptr"
	"github.com/myrjola/liftcoach/internal/testhelpers"
	"github.com/myrjola/liftcoach/internal/training"
)

const (
	userID    = int64(1)
	workoutID = int64(100)
	squatID   = int64(10)
	benchID   = int64(20)
	curlID    = int64(30)
)

type countingMetrics struct {
	mu              sync.Mutex
	recommendations map[string]int
	records         int
	topPicks        int
	otherOptions    int
	timeouts        int
}

func (m *countingMetrics) RecommendationComputed(recommendationType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recommendations == nil {
		m.recommendations = make(map[string]int)
	}
	m.recommendations[recommendationType]++
}

func (m *countingMetrics) PersonalRecordDetected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records++
}

func (m *countingMetrics) ProgramsMatched(topPicks, otherOptions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topPicks += topPicks
	m.otherOptions += otherOptions
}

func (m *countingMetrics) HistoryFetchTimedOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts++
}

// slowStore blocks history fetches of one exercise until the context gives up.
type slowStore struct {
	*training.MemoryStore
	slowExerciseID int64
	failExerciseID int64
}

var errStoreUnavailable = errors.New("store unavailable")

func (s *slowStore) ListSetLogs(ctx context.Context, userID, exerciseID int64, limit int) ([]training.SetLog, error) {
	switch exerciseID {
	case s.slowExerciseID:
		<-ctx.Done()
		return nil, ctx.Err()
	case s.failExerciseID:
		return nil, errStoreUnavailable
	}
	return s.MemoryStore.ListSetLogs(ctx, userID, exerciseID, limit)
}

func newService(t *testing.T, store training.Store, metrics *countingMetrics) *training.Service {
	t.Helper()
	return training.NewService(store, testhelpers.NewLogger(testhelpers.NewWriter(t)), training.Config{
		FetchTimeout:     50 * time.Millisecond,
		FetchConcurrency: 2,
		Location:         time.UTC,
		Now:              func() time.Time { return monday.AddDate(0, 0, 2) },
		Metrics:          metrics,
	})
}

func benchSession(workout int64, day time.Time, weight float64, reps ...int) []training.SetLog {
	logs := session(workout, day, weight, 0, reps...)
	for i := range logs {
		logs[i].ExerciseID = benchID
		logs[i].ExerciseName = "Bench Press"
		logs[i].MuscleGroup = "chest"
	}
	return logs
}

func seededStore() *training.MemoryStore {
	store := training.NewMemoryStore()
	store.AddWorkoutExercises(
		training.WorkoutExercise{WorkoutID: workoutID, ExerciseID: benchID, ExerciseName: "Bench Press",
			MuscleGroup: "chest", Position: 1, Sets: 3, Reps: "8-12", RestSeconds: 120},
		training.WorkoutExercise{WorkoutID: workoutID, ExerciseID: squatID, ExerciseName: "Barbell Back Squat",
			MuscleGroup: "legs", Position: 0, Sets: 3, Reps: "5", RestSeconds: 180},
		training.WorkoutExercise{WorkoutID: workoutID, ExerciseID: curlID, ExerciseName: "Bicep Curl",
			MuscleGroup: "biceps", Position: 2, Sets: 3, Reps: "10-15", RestSeconds: 60},
	)
	store.AddSetLogs(history(
		session(1, monday.AddDate(0, 0, -7), 135, 7, 5, 5, 5),
		session(2, monday, 135, 7, 5, 5, 5),
		benchSession(2, monday, 155, 10, 9, 8),
	)...)
	return store
}

func TestService_ComputeProgression(t *testing.T) {
	store := seededStore()
	metrics := &countingMetrics{}
	svc := newService(t, store, metrics)

	got, err := svc.ComputeProgression(t.Context(), userID, workoutID)
	if err != nil {
		t.Fatalf("ComputeProgression() error = %v", err)
	}

	now := monday.AddDate(0, 0, 2)
	want := []training.Recommendation{
		{
			UserID:            userID,
			ExerciseID:        squatID,
			ExerciseName:      "Barbell Back Squat",
			RecommendedWeight: 150,
			RecommendedReps:   "5",
			Type:              training.IncreaseWeight,
			BasedOnSessions:   2,
			CreatedAt:         now,
		},
		{
			UserID:            userID,
			ExerciseID:        benchID,
			ExerciseName:      "Bench Press",
			RecommendedWeight: 155,
			RecommendedReps:   "8-12",
			Type:              training.IncreaseReps,
			BasedOnSessions:   1,
			CreatedAt:         now,
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(training.Recommendation{}, "Reason")); diff != "" {
		t.Errorf("ComputeProgression() mismatch (-want +got):\n%s", diff)
	}

	stored, err := svc.Recommendations(t.Context(), userID, nil)
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored %d recommendations, want 2", len(stored))
	}
	if diff := cmp.Diff(map[string]int{"increase_weight": 1, "increase_reps": 1}, metrics.recommendations); diff != "" {
		t.Errorf("recommendation metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestService_ComputeProgression_replacesRecommendation(t *testing.T) {
	store := seededStore()
	svc := newService(t, store, &countingMetrics{})

	if _, err := svc.ComputeProgression(t.Context(), userID, workoutID); err != nil {
		t.Fatalf("ComputeProgression() error = %v", err)
	}
	store.AddSetLogs(benchSession(3, monday.AddDate(0, 0, 1), 155, 12, 12, 12)...)
	if _, err := svc.ComputeProgression(t.Context(), userID, workoutID); err != nil {
		t.Fatalf("ComputeProgression() error = %v", err)
	}

	recs, err := svc.Recommendations(t.Context(), userID, []int64{benchID})
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d bench recommendations, want 1", len(recs))
	}
	if recs[0].Type != training.IncreaseWeight || recs[0].RecommendedWeight != 160 {
		t.Errorf("got %s to %v, want increase_weight to 160", recs[0].Type, recs[0].RecommendedWeight)
	}
}

func TestService_ComputeProgression_unknownWorkout(t *testing.T) {
	svc := newService(t, seededStore(), &countingMetrics{})
	got, err := svc.ComputeProgression(t.Context(), userID, 999)
	if err != nil {
		t.Fatalf("ComputeProgression() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d recommendations, want none", len(got))
	}
}

func TestService_ComputeProgression_skipsTimedOutFetch(t *testing.T) {
	metrics := &countingMetrics{}
	store := &slowStore{MemoryStore: seededStore(), slowExerciseID: benchID, failExerciseID: 0}
	svc := newService(t, store, metrics)

	got, err := svc.ComputeProgression(t.Context(), userID, workoutID)
	if err != nil {
		t.Fatalf("ComputeProgression() error = %v", err)
	}
	if len(got) != 1 || got[0].ExerciseID != squatID {
		t.Errorf("got %+v, want only the squat recommendation", got)
	}
	if metrics.timeouts != 1 {
		t.Errorf("timeouts = %d, want 1", metrics.timeouts)
	}
}

func TestService_ComputeProgression_propagatesStoreErrors(t *testing.T) {
	store := &slowStore{MemoryStore: seededStore(), slowExerciseID: 0, failExerciseID: squatID}
	svc := newService(t, store, &countingMetrics{})

	if _, err := svc.ComputeProgression(t.Context(), userID, workoutID); !errors.Is(err, errStoreUnavailable) {
		t.Errorf("ComputeProgression() error = %v, want %v", err, errStoreUnavailable)
	}
}

func TestService_ComputeProgression_cancelled(t *testing.T) {
	svc := newService(t, seededStore(), &countingMetrics{})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := svc.ComputeProgression(ctx, userID, workoutID); !errors.Is(err, context.Canceled) {
		t.Errorf("ComputeProgression() error = %v, want context.Canceled", err)
	}
}

func TestService_DetectPRs(t *testing.T) {
	store := training.NewMemoryStore()
	store.AddSetLogs(benchSession(1, monday.AddDate(0, 0, -7), 100, 8, 8)...)
	// Sets logged outside a workout count as history too.
	unplanned := benchSession(0, monday.AddDate(0, 0, -3), 105, 6)
	unplanned[0].WorkoutID = nil
	store.AddSetLogs(unplanned...)
	store.AddSetLogs(benchSession(2, monday, 110, 5, 3)...)
	store.AddSetLogs(session(2, monday, 135, 0, 5)...)
	metrics := &countingMetrics{}
	svc := newService(t, store, metrics)

	got, err := svc.DetectPRs(t.Context(), userID, 2)
	if err != nil {
		t.Fatalf("DetectPRs() error = %v", err)
	}
	want := []training.PersonalRecord{{
		ExerciseID:   benchID,
		ExerciseName: "Bench Press",
		NewWeight:    110,
		PreviousBest: 105,
		Reps:         5,
		Improvement:  5,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DetectPRs() mismatch (-want +got):\n%s", diff)
	}

	achievements, err := svc.Achievements(t.Context(), userID)
	if err != nil {
		t.Fatalf("Achievements() error = %v", err)
	}
	if len(achievements) != 1 {
		t.Fatalf("got %d achievements, want 1", len(achievements))
	}
	wantValue := training.AchievementValue{
		ExerciseID:   benchID,
		ExerciseName: "Bench Press",
		Weight:       110,
		PreviousBest: 105,
		Reps:         5,
	}
	if diff := cmp.Diff(wantValue, achievements[0].Value); diff != "" {
		t.Errorf("achievement value mismatch (-want +got):\n%s", diff)
	}
	if achievements[0].Type != training.AchievementPRWeight {
		t.Errorf("achievement type = %s, want %s", achievements[0].Type, training.AchievementPRWeight)
	}
	if metrics.records != 1 {
		t.Errorf("records metric = %d, want 1", metrics.records)
	}
}

func TestService_DetectPRs_emptyWorkout(t *testing.T) {
	svc := newService(t, training.NewMemoryStore(), &countingMetrics{})
	got, err := svc.DetectPRs(t.Context(), userID, 42)
	if err != nil {
		t.Fatalf("DetectPRs() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records, want none", len(got))
	}
}

func TestService_ComputeStreak(t *testing.T) {
	store := training.NewMemoryStore()
	store.AddWorkoutCompletions(userID, monday, monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -14))
	store.AddWorkoutCompletions(2, monday.AddDate(0, 0, -21))
	svc := newService(t, store, &countingMetrics{})

	got, err := svc.ComputeStreak(t.Context(), userID)
	if err != nil {
		t.Fatalf("ComputeStreak() error = %v", err)
	}
	want := training.StreakData{
		CurrentStreak:    3,
		LongestStreak:    3,
		TotalWorkouts:    3,
		ThisWeekWorkouts: 1,
		LastWorkoutDate:  ptr.Ref(monday),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeStreak() mismatch (-want +got):\n%s", diff)
	}
}

func TestService_MatchPrograms(t *testing.T) {
	store := training.NewMemoryStore()
	store.SetTrainingPrograms(
		training.TrainingProgram{Slug: "texas_method", Name: "Texas Method", Category: training.GoalStrength,
			Tags: []string{"compound_only", "linear_progression", "low_reps"}, Difficulty: training.Intermediate,
			MinDays: 3, MaxDays: 5},
		training.TrainingProgram{Slug: "mobility_flow", Name: "Mobility Flow", Category: training.GoalFlexibility,
			Tags: []string{"mobility"}, Difficulty: training.Beginner, MinDays: 2, MaxDays: 7},
	)
	metrics := &countingMetrics{}
	svc := newService(t, store, metrics)

	got, err := svc.MatchPrograms(t.Context(), training.MatchRequest{
		Goals:       []training.Goal{training.GoalStrength, training.GoalBodybuilding},
		Experience:  training.Intermediate,
		DaysPerWeek: 4,
	})
	if err != nil {
		t.Fatalf("MatchPrograms() error = %v", err)
	}
	if len(got.TopPicks) != 1 || got.TopPicks[0].Score != 61 {
		t.Errorf("TopPicks = %+v, want texas_method at 61", got.TopPicks)
	}
	if len(got.OtherOptions) != 1 || got.OtherOptions[0].Program.Slug != "mobility_flow" {
		t.Errorf("OtherOptions = %+v, want mobility_flow", got.OtherOptions)
	}
	if metrics.topPicks != 1 || metrics.otherOptions != 1 {
		t.Errorf("metrics recorded %d top picks and %d other options", metrics.topPicks, metrics.otherOptions)
	}

	_, err = svc.MatchPrograms(t.Context(), training.MatchRequest{Experience: training.Beginner, DaysPerWeek: 9})
	if !errors.Is(err, training.ErrInvalidInput) {
		t.Errorf("MatchPrograms() error = %v, want ErrInvalidInput", err)
	}

	// Repeating a goal would score the program once per repeat.
	_, err = svc.MatchPrograms(t.Context(), training.MatchRequest{
		Goals:       []training.Goal{training.GoalStrength, training.GoalStrength, training.GoalStrength},
		Experience:  training.Intermediate,
		DaysPerWeek: 4,
	})
	if !errors.Is(err, training.ErrInvalidInput) {
		t.Errorf("MatchPrograms() with repeated goals error = %v, want ErrInvalidInput", err)
	}
}

func TestService_Program(t *testing.T) {
	store := training.NewMemoryStore()
	store.SetTrainingPrograms(training.TrainingProgram{Slug: "texas_method", Name: "Texas Method",
		Category: training.GoalStrength, Difficulty: training.Intermediate, MinDays: 3, MaxDays: 4})
	svc := newService(t, store, &countingMetrics{})

	got, err := svc.Program(t.Context(), "texas_method")
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if got.Name != "Texas Method" {
		t.Errorf("Name = %q, want Texas Method", got.Name)
	}
	if _, err = svc.Program(t.Context(), "couch_to_5k"); !errors.Is(err, training.ErrNotFound) {
		t.Errorf("Program() error = %v, want ErrNotFound", err)
	}
}

func TestService_WeeklyVolume(t *testing.T) {
	store := training.NewMemoryStore()
	now := monday.AddDate(0, 0, 2)
	// Eight days ago falls outside the window.
	store.AddSetLogs(benchSession(1, now.AddDate(0, 0, -8), 135, 8, 8, 8)...)
	store.AddSetLogs(benchSession(2, now.AddDate(0, 0, -2), 135, 8, 8)...)
	store.AddSetLogs(session(2, now.AddDate(0, 0, -2), 185, 0, 5, 5, 5)...)
	svc := newService(t, store, &countingMetrics{})

	got, err := svc.WeeklyVolume(t.Context(), userID, "")
	if err != nil {
		t.Fatalf("WeeklyVolume() error = %v", err)
	}
	want := []training.MuscleVolume{
		{MuscleGroup: "legs", Sets: 3, Target: 12},
		{MuscleGroup: "chest", Sets: 2, Target: 12},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WeeklyVolume() mismatch (-want +got):\n%s", diff)
	}

	if _, err = svc.WeeklyVolume(t.Context(), userID, "zumba"); !errors.Is(err, training.ErrInvalidInput) {
		t.Errorf("WeeklyVolume() error = %v, want ErrInvalidInput", err)
	}
}

func TestService_CompleteWorkout(t *testing.T) {
	store := training.NewMemoryStore()
	store.AddExercises(training.Exercise{ID: benchID, Name: "Bench Press", MuscleGroup: "chest",
		Equipment: []training.Equipment{training.EquipmentBarbell}})
	svc := newService(t, store, &countingMetrics{})
	ctx := t.Context()
	// Last week's bench session sets the baseline.
	store.AddSetLogs(benchSession(0, monday.AddDate(0, 0, -5), 100, 12, 12, 12)...)

	workout, err := svc.CreateWorkout(ctx, userID, "Push", []training.PlannedExercise{
		{ExerciseID: benchID, Sets: 3, Reps: "12-8", RestSeconds: 120},
	})
	if err != nil {
		t.Fatalf("CreateWorkout() error = %v", err)
	}
	if err = svc.LogSets(ctx, userID, &workout, []training.CompletedSet{
		{ExerciseID: benchID, SetNumber: 1, Weight: 105, RepsCompleted: 12, RPE: 8},
		{ExerciseID: benchID, SetNumber: 2, Weight: 105, RepsCompleted: 12},
		{ExerciseID: benchID, SetNumber: 3, Weight: 105, RepsCompleted: 12, RPE: 8},
	}); err != nil {
		t.Fatalf("LogSets() error = %v", err)
	}

	got, err := svc.CompleteWorkout(ctx, userID, workout)
	if err != nil {
		t.Fatalf("CompleteWorkout() error = %v", err)
	}
	if len(got.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(got.Recommendations))
	}
	rec := got.Recommendations[0]
	if rec.Type != training.IncreaseWeight || rec.RecommendedWeight != 110 || rec.RecommendedReps != "8-12" {
		t.Errorf("recommendation = %s to %v for %s reps, want increase_weight to 110 for 8-12",
			rec.Type, rec.RecommendedWeight, rec.RecommendedReps)
	}
	if rec.Reason != "All sets reached 12 reps at RPE 8. Go up to 110 lbs next session." {
		t.Errorf("Reason = %q", rec.Reason)
	}
	if len(got.Records) != 1 || got.Records[0].Improvement != 5 {
		t.Errorf("Records = %+v, want one record improving by 5", got.Records)
	}
	if got.Streak.TotalWorkouts != 1 || got.Streak.CurrentStreak != 1 {
		t.Errorf("Streak = %+v, want the first workout counted", got.Streak)
	}
}

func TestService_CompleteWorkout_retry(t *testing.T) {
	store := training.NewMemoryStore()
	store.AddExercises(training.Exercise{ID: benchID, Name: "Bench Press", MuscleGroup: "chest", Equipment: nil})
	store.AddSetLogs(benchSession(0, monday.AddDate(0, 0, -5), 100, 12, 12, 12)...)
	svc := newService(t, store, &countingMetrics{})
	ctx := t.Context()

	workout, err := svc.CreateWorkout(ctx, userID, "Push", []training.PlannedExercise{
		{ExerciseID: benchID, Sets: 1, Reps: "8-12", RestSeconds: 120},
	})
	if err != nil {
		t.Fatalf("CreateWorkout() error = %v", err)
	}
	if err = svc.LogSets(ctx, userID, &workout, []training.CompletedSet{
		{ExerciseID: benchID, SetNumber: 1, Weight: 110, RepsCompleted: 10, RPE: 8},
	}); err != nil {
		t.Fatalf("LogSets() error = %v", err)
	}

	for range 2 {
		var got training.WorkoutSummary
		if got, err = svc.CompleteWorkout(ctx, userID, workout); err != nil {
			t.Fatalf("CompleteWorkout() error = %v", err)
		}
		if got.Streak.TotalWorkouts != 1 {
			t.Errorf("TotalWorkouts = %d, want 1", got.Streak.TotalWorkouts)
		}
	}
	achievements, err := svc.Achievements(ctx, userID)
	if err != nil {
		t.Fatalf("Achievements() error = %v", err)
	}
	if len(achievements) != 1 {
		t.Errorf("got %d achievements, want 1", len(achievements))
	}
}

func TestService_recordsThroughStore(t *testing.T) {
	const squat = int64(7)
	store := training.NewMemoryStore()
	store.AddExercises(training.Exercise{ID: squat, Name: "Barbell Back Squat", MuscleGroup: "legs",
		Equipment: []training.Equipment{training.EquipmentBarbell}})
	now := monday
	svc := training.NewService(store, testhelpers.NewLogger(testhelpers.NewWriter(t)), training.Config{
		FetchTimeout:     time.Second,
		FetchConcurrency: 1,
		Location:         time.UTC,
		Now:              func() time.Time { return now },
		Metrics:          &countingMetrics{},
	})
	ctx := t.Context()

	var workout int64
	for _, weight := range []float64{200, 220} {
		var err error
		workout, err = svc.CreateWorkout(ctx, userID, "Legs", []training.PlannedExercise{
			{ExerciseID: squat, Sets: 2, Reps: "5", RestSeconds: 180},
		})
		if err != nil {
			t.Fatalf("CreateWorkout() error = %v", err)
		}
		if err = svc.LogSets(ctx, userID, ptr.Ref(workout), []training.CompletedSet{
			{ExerciseID: squat, SetNumber: 1, Weight: weight, RepsCompleted: 5},
			{ExerciseID: squat, SetNumber: 2, Weight: weight, RepsCompleted: 5},
		}); err != nil {
			t.Fatalf("LogSets() error = %v", err)
		}
		now = now.Add(48 * time.Hour)
	}

	recs, err := svc.ComputeProgression(ctx, userID, workout)
	if err != nil {
		t.Fatalf("ComputeProgression() error = %v", err)
	}
	want := []training.Recommendation{{
		UserID:            userID,
		ExerciseID:        squat,
		ExerciseName:      "Barbell Back Squat",
		RecommendedWeight: 230,
		RecommendedReps:   "5",
		Type:              training.IncreaseWeight,
		Reason:            "All sets reached 5 reps. Go up to 230 lbs next session.",
		BasedOnSessions:   2,
	}}
	if diff := cmp.Diff(want, recs, cmpopts.IgnoreFields(training.Recommendation{}, "CreatedAt")); diff != "" {
		t.Errorf("ComputeProgression() mismatch (-want +got):\n%s", diff)
	}

	volume, err := svc.WeeklyVolume(ctx, userID, training.GoalStrength)
	if err != nil {
		t.Fatalf("WeeklyVolume() error = %v", err)
	}
	if diff := cmp.Diff([]training.MuscleVolume{{MuscleGroup: "legs", Sets: 4, Target: 10}}, volume); diff != "" {
		t.Errorf("WeeklyVolume() mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.CreateWorkout(ctx, userID, "Legs", []training.PlannedExercise{{ExerciseID: 9999, Sets: 3, Reps: "5"}})
	if !errors.Is(err, training.ErrNotFound) {
		t.Errorf("CreateWorkout() with unknown exercise error = %v, want ErrNotFound", err)
	}
	err = svc.LogSets(ctx, userID, nil, []training.CompletedSet{{ExerciseID: 9999, SetNumber: 1, Weight: 100}})
	if !errors.Is(err, training.ErrNotFound) {
		t.Errorf("LogSets() with unknown exercise error = %v, want ErrNotFound", err)
	}
	err = svc.LogSets(ctx, userID, ptr.Ref(int64(9999)), []training.CompletedSet{
		{ExerciseID: squat, SetNumber: 1, Weight: 100},
	})
	if !errors.Is(err, training.ErrNotFound) {
		t.Errorf("LogSets() with unknown workout error = %v, want ErrNotFound", err)
	}
	if _, err = svc.CompleteWorkout(ctx, userID, 9999); !errors.Is(err, training.ErrNotFound) {
		t.Errorf("CompleteWorkout() of unknown workout error = %v, want ErrNotFound", err)
	}
}

func TestService_LogSets_validation(t *testing.T) {
	svc := newService(t, training.NewMemoryStore(), &countingMetrics{})
	tests := []struct {
		name string
		sets []training.CompletedSet
	}{
		{name: "no sets", sets: nil},
		{name: "missing exercise", sets: []training.CompletedSet{{SetNumber: 1, Weight: 100, RepsCompleted: 5}}},
		{name: "zero set number", sets: []training.CompletedSet{{ExerciseID: 1, Weight: 100, RepsCompleted: 5}}},
		{name: "negative weight", sets: []training.CompletedSet{{ExerciseID: 1, SetNumber: 1, Weight: -5}}},
		{name: "negative reps", sets: []training.CompletedSet{{ExerciseID: 1, SetNumber: 1, RepsCompleted: -1}}},
		{name: "RPE too low", sets: []training.CompletedSet{{ExerciseID: 1, SetNumber: 1, RPE: 5}}},
		{name: "RPE too high", sets: []training.CompletedSet{{ExerciseID: 1, SetNumber: 1, RPE: 11}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.LogSets(t.Context(), userID, nil, tt.sets); !errors.Is(err, training.ErrInvalidInput) {
				t.Errorf("LogSets() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestService_CreateWorkout_validation(t *testing.T) {
	svc := newService(t, training.NewMemoryStore(), &countingMetrics{})
	ctx := t.Context()
	if _, err := svc.CreateWorkout(ctx, userID, " ", []training.PlannedExercise{{ExerciseID: 1, Sets: 3}}); !errors.Is(err, training.ErrInvalidInput) {
		t.Errorf("CreateWorkout() without name error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.CreateWorkout(ctx, userID, "Push", nil); !errors.Is(err, training.ErrInvalidInput) {
		t.Errorf("CreateWorkout() without exercises error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.CreateWorkout(ctx, userID, "Push", []training.PlannedExercise{{ExerciseID: 1}}); !errors.Is(err, training.ErrInvalidInput) {
		t.Errorf("CreateWorkout() without sets error = %v, want ErrInvalidInput", err)
	}
}

func TestService_GenerateProgram(t *testing.T) {
	store := training.NewMemoryStore()
	store.AddExercises(homeCatalogue()...)
	svc := newService(t, store, &countingMetrics{})
	ctx := t.Context()

	workouts, err := svc.GenerateProgram(ctx, userID, training.GenerateRequest{
		Goal:        training.GoalStrength,
		DaysPerWeek: 2,
		Equipment:   []training.Equipment{training.EquipmentBarbell},
	})
	if err != nil {
		t.Fatalf("GenerateProgram() error = %v", err)
	}
	if diff := cmp.Diff([]string{"The Foundation", "Power Surge"}, workoutNames(workouts)); diff != "" {
		t.Errorf("workout names mismatch (-want +got):\n%s", diff)
	}
	for _, w := range workouts {
		planned, listErr := store.ListWorkoutExercises(ctx, w.ID)
		if listErr != nil {
			t.Fatalf("ListWorkoutExercises() error = %v", listErr)
		}
		if diff := cmp.Diff(w.Exercises, planned); diff != "" {
			t.Errorf("stored %s mismatch (-want +got):\n%s", w.Name, diff)
		}
	}

	_, err = svc.GenerateProgram(ctx, userID, training.GenerateRequest{Goal: training.GoalStrength, DaysPerWeek: 9})
	if !errors.Is(err, training.ErrInvalidInput) {
		t.Errorf("GenerateProgram() error = %v, want ErrInvalidInput", err)
	}
}
