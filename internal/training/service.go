package training

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/liftcoach/internal/errors"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFetchTimeout     = 3 * time.Second
	defaultFetchConcurrency = 4
	volumeWindow            = 7 * 24 * time.Hour
	minRPE                  = 6
	maxRPE                  = 10
)

// achievementNamespace derives achievement ids, so detecting the records of a workout twice stores them once.
var achievementNamespace = uuid.MustParse("6f1d2c3e-8a47-4b5e-9c0d-1e2f3a4b5c6d") //nolint:gochecknoglobals // constant.

func achievementID(userID, workoutID, exerciseID int64, typ AchievementType) uuid.UUID {
	return uuid.NewSHA1(achievementNamespace, fmt.Appendf(nil, "%d/%d/%d/%s", userID, workoutID, exerciseID, typ))
}

// Metrics receives counters about the coaching computations.
type Metrics interface {
	RecommendationComputed(recommendationType string)
	PersonalRecordDetected()
	ProgramsMatched(topPicks, otherOptions int)
	HistoryFetchTimedOut()
}

type noopMetrics struct{}

func (noopMetrics) RecommendationComputed(string) {}
func (noopMetrics) PersonalRecordDetected()       {}
func (noopMetrics) ProgramsMatched(int, int)      {}
func (noopMetrics) HistoryFetchTimedOut()         {}

// Config tunes a Service. Zero fields fall back to defaults.
type Config struct {
	// FetchTimeout bounds each per-exercise history fetch. A fetch that times out skips the exercise.
	FetchTimeout time.Duration
	// FetchConcurrency bounds how many histories are fetched at once.
	FetchConcurrency int
	// Location is used for calendar dates and week boundaries. Defaults to UTC.
	Location *time.Location
	// Now defaults to time.Now.
	Now     func() time.Time
	Metrics Metrics
}

// Service runs the coaching heuristics against a Store.
type Service struct {
	store  Store
	logger *slog.Logger
	cfg    Config
}

// NewService creates a new coaching service.
func NewService(store Store, logger *slog.Logger, cfg Config) *Service {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = defaultFetchConcurrency
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	return &Service{
		store:  store,
		logger: logger,
		cfg:    cfg,
	}
}

// ComputeProgression recommends the next session for every planned exercise of a workout and stores the
// recommendations. Exercises without history are skipped, so the result may be empty.
func (s *Service) ComputeProgression(ctx context.Context, userID, workoutID int64) ([]Recommendation, error) {
	templates, err := s.store.ListWorkoutExercises(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("list workout exercises: %w", err)
	}
	if len(templates) == 0 {
		return nil, nil
	}

	histories := make([][]SetLog, len(templates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)
	for i, we := range templates {
		g.Go(func() error {
			logs, fetchErr := s.fetchHistory(gctx, userID, we)
			if fetchErr != nil {
				return fetchErr
			}
			histories[i] = logs
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // fetchHistory wraps.
	}

	now := s.cfg.Now()
	var recs []Recommendation
	for i, we := range templates {
		rec, ok := Recommend(we, histories[i], s.cfg.Location)
		if !ok {
			continue
		}
		rec.UserID = userID
		rec.CreatedAt = now
		if err = s.store.UpsertRecommendation(ctx, rec); err != nil {
			return nil, fmt.Errorf("upsert recommendation for exercise %d: %w", we.ExerciseID, err)
		}
		s.cfg.Metrics.RecommendationComputed(string(rec.Type))
		recs = append(recs, rec)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "computed progression",
		slog.Int64("workout_id", workoutID),
		slog.Int("exercises", len(templates)),
		slog.Int("recommendations", len(recs)))
	return recs, nil
}

// fetchHistory returns nil logs when the fetch exceeded its own timeout.
func (s *Service) fetchHistory(ctx context.Context, userID int64, we WorkoutExercise) ([]SetLog, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	logs, err := s.store.ListSetLogs(fetchCtx, userID, we.ExerciseID, HistoryLimit)
	if err == nil {
		return logs, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		s.cfg.Metrics.HistoryFetchTimedOut()
		s.logger.LogAttrs(ctx, slog.LevelWarn, "history fetch timed out, skipping exercise",
			slog.Int64("exercise_id", we.ExerciseID),
			slog.Duration("timeout", s.cfg.FetchTimeout))
		return nil, nil
	}
	return nil, errors.Wrap(err, "list set logs", slog.Int64("exercise_id", we.ExerciseID))
}

// Recommendations returns the stored recommendations of the user for exerciseIDs, or all when none are given.
func (s *Service) Recommendations(ctx context.Context, userID int64, exerciseIDs []int64) ([]Recommendation, error) {
	recs, err := s.store.ListRecommendations(ctx, userID, exerciseIDs)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	return recs, nil
}

// Validate checks that req holds distinct known goals, a known experience and a plausible schedule.
func (req MatchRequest) Validate() error {
	if len(req.Goals) > MaxGoals {
		return fmt.Errorf("%w: at most %d goals, got %d", ErrInvalidInput, MaxGoals, len(req.Goals))
	}
	for i, g := range req.Goals {
		if !g.Valid() {
			return fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, g)
		}
		if slices.Contains(req.Goals[:i], g) {
			return fmt.Errorf("%w: goal %q listed more than once", ErrInvalidInput, g)
		}
	}
	if !req.Experience.Valid() {
		return fmt.Errorf("%w: unknown experience %q", ErrInvalidInput, req.Experience)
	}
	if req.DaysPerWeek < 1 || req.DaysPerWeek > weekDays {
		return fmt.Errorf("%w: days per week must be between 1 and %d, got %d",
			ErrInvalidInput, weekDays, req.DaysPerWeek)
	}
	return nil
}

// MatchPrograms ranks the program catalogue for req.
func (s *Service) MatchPrograms(ctx context.Context, req MatchRequest) (ProgramMatches, error) {
	if err := req.Validate(); err != nil {
		return ProgramMatches{}, err
	}
	programs, err := s.store.ListTrainingPrograms(ctx)
	if err != nil {
		return ProgramMatches{}, fmt.Errorf("list training programs: %w", err)
	}
	matches := MatchPrograms(programs, req)
	s.cfg.Metrics.ProgramsMatched(len(matches.TopPicks), len(matches.OtherOptions))
	return matches, nil
}

// Programs returns the program catalogue ordered by category and slug.
func (s *Service) Programs(ctx context.Context) ([]TrainingProgram, error) {
	programs, err := s.store.ListTrainingPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list training programs: %w", err)
	}
	return programs, nil
}

// Program returns the program with slug or ErrNotFound.
func (s *Service) Program(ctx context.Context, slug string) (TrainingProgram, error) {
	programs, err := s.Programs(ctx)
	if err != nil {
		return TrainingProgram{}, err
	}
	for _, p := range programs {
		if p.Slug == slug {
			return p, nil
		}
	}
	return TrainingProgram{}, fmt.Errorf("program %q: %w", slug, ErrNotFound)
}

// ComputeStreak summarises the user's weekly training streak as of now.
func (s *Service) ComputeStreak(ctx context.Context, userID int64) (StreakData, error) {
	completions, err := s.store.ListWorkoutCompletions(ctx, userID)
	if err != nil {
		return StreakData{}, fmt.Errorf("list workout completions: %w", err)
	}
	return ComputeStreak(completions, s.cfg.Now(), s.cfg.Location), nil
}

// DetectPRs finds the weight records set in a workout and appends an achievement for each. Running it again for
// the same workout does not duplicate achievements.
func (s *Service) DetectPRs(ctx context.Context, userID, workoutID int64) ([]PersonalRecord, error) {
	logs, err := s.store.ListWorkoutSetLogs(ctx, userID, workoutID)
	if err != nil {
		return nil, fmt.Errorf("list workout set logs: %w", err)
	}
	if len(logs) == 0 {
		return nil, nil
	}

	previousBest := make(map[int64]float64)
	for _, b := range bestSets(logs) {
		if b.weight <= 0 {
			continue
		}
		var best float64
		if best, err = s.store.MaxWeightExcludingWorkout(ctx, userID, b.exerciseID, workoutID); err != nil {
			return nil, fmt.Errorf("max weight of exercise %d: %w", b.exerciseID, err)
		}
		previousBest[b.exerciseID] = best
	}

	records := DetectRecords(logs, previousBest)
	now := s.cfg.Now()
	for _, pr := range records {
		achievement := Achievement{
			ID:     achievementID(userID, workoutID, pr.ExerciseID, AchievementPRWeight),
			UserID: userID,
			Type:   AchievementPRWeight,
			Value: AchievementValue{
				ExerciseID:   pr.ExerciseID,
				ExerciseName: pr.ExerciseName,
				Weight:       pr.NewWeight,
				PreviousBest: pr.PreviousBest,
				Reps:         pr.Reps,
			},
			AchievedAt: now,
		}
		if err = s.store.InsertAchievement(ctx, achievement); err != nil {
			return nil, fmt.Errorf("insert achievement: %w", err)
		}
		s.cfg.Metrics.PersonalRecordDetected()
		s.logger.LogAttrs(ctx, slog.LevelInfo, "personal record",
			slog.Int64("exercise_id", pr.ExerciseID),
			slog.Float64("weight", pr.NewWeight),
			slog.Float64("previous_best", pr.PreviousBest))
	}
	return records, nil
}

// Achievements returns the user's achievements, newest first.
func (s *Service) Achievements(ctx context.Context, userID int64) ([]Achievement, error) {
	achievements, err := s.store.ListAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}

// WeeklyVolume counts the user's sets per muscle group over the last seven days against the target for goal.
// An empty goal uses the general target.
func (s *Service) WeeklyVolume(ctx context.Context, userID int64, goal Goal) ([]MuscleVolume, error) {
	if goal == "" {
		goal = GoalGeneral
	}
	if !goal.Valid() {
		return nil, fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, goal)
	}
	logs, err := s.store.ListSetLogsSince(ctx, userID, s.cfg.Now().Add(-volumeWindow))
	if err != nil {
		return nil, fmt.Errorf("list set logs since: %w", err)
	}
	return CountVolume(logs, goal), nil
}

// PlannedExercise is one exercise of a new workout.
type PlannedExercise struct {
	ExerciseID  int64
	Sets        int
	Reps        string
	RestSeconds int
}

// CreateWorkout stores a workout plan for the user and returns its id.
func (s *Service) CreateWorkout(ctx context.Context, userID int64, name string, planned []PlannedExercise) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: workout name is required", ErrInvalidInput)
	}
	if len(planned) == 0 {
		return 0, fmt.Errorf("%w: workout has no exercises", ErrInvalidInput)
	}
	exercises := make([]WorkoutExercise, 0, len(planned))
	for i, p := range planned {
		if p.ExerciseID <= 0 || p.Sets <= 0 || p.RestSeconds < 0 {
			return 0, fmt.Errorf("%w: exercise %d needs an exercise id and at least one set", ErrInvalidInput, i)
		}
		exercises = append(exercises, WorkoutExercise{
			WorkoutID:    0,
			ExerciseID:   p.ExerciseID,
			ExerciseName: "",
			MuscleGroup:  "",
			Position:     i,
			Sets:         p.Sets,
			Reps:         ParseRepRange(p.Reps).String(),
			RestSeconds:  p.RestSeconds,
		})
	}
	id, err := s.store.CreateWorkout(ctx, userID, name, exercises)
	if err != nil {
		return 0, fmt.Errorf("create workout: %w", err)
	}
	return id, nil
}

// CompletedSet is one set as reported by the user. RPE zero means not reported.
type CompletedSet struct {
	ExerciseID    int64
	SetNumber     int
	Weight        float64
	RepsCompleted int
	RPE           int
}

func (c CompletedSet) validate() error {
	switch {
	case c.ExerciseID <= 0:
		return fmt.Errorf("%w: exercise id is required", ErrInvalidInput)
	case c.SetNumber <= 0:
		return fmt.Errorf("%w: set number must be positive", ErrInvalidInput)
	case c.Weight < 0 || math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0):
		return fmt.Errorf("%w: weight must be a non-negative number", ErrInvalidInput)
	case c.RepsCompleted < 0:
		return fmt.Errorf("%w: reps must not be negative", ErrInvalidInput)
	case c.RPE != 0 && (c.RPE < minRPE || c.RPE > maxRPE):
		return fmt.Errorf("%w: RPE must be between %d and %d", ErrInvalidInput, minRPE, maxRPE)
	}
	return nil
}

// LogSets records completed sets of a workout at the current time. A nil workoutID logs sets outside a workout.
func (s *Service) LogSets(ctx context.Context, userID int64, workoutID *int64, sets []CompletedSet) error {
	if len(sets) == 0 {
		return fmt.Errorf("%w: no sets", ErrInvalidInput)
	}
	now := s.cfg.Now()
	logs := make([]SetLog, 0, len(sets))
	for i, c := range sets {
		if err := c.validate(); err != nil {
			return fmt.Errorf("set %d: %w", i, err)
		}
		l := SetLog{
			ID:            0,
			UserID:        userID,
			ExerciseID:    c.ExerciseID,
			ExerciseName:  "",
			MuscleGroup:   "",
			WorkoutID:     workoutID,
			SetNumber:     c.SetNumber,
			Weight:        c.Weight,
			RepsCompleted: c.RepsCompleted,
			RPE:           nil,
			CreatedAt:     now,
		}
		if c.RPE != 0 {
			l.RPE = &c.RPE
		}
		logs = append(logs, l)
	}
	if err := s.store.InsertSetLogs(ctx, logs); err != nil {
		return fmt.Errorf("insert set logs: %w", err)
	}
	return nil
}

// WorkoutSummary is what a user sees after finishing a workout.
type WorkoutSummary struct {
	Recommendations []Recommendation
	Records         []PersonalRecord
	Streak          StreakData
}

// CompleteWorkout records the completion of a workout and runs the post-workout computations: next session
// recommendations, personal records and the updated streak. Every step is idempotent, so a failed completion can
// be retried.
func (s *Service) CompleteWorkout(ctx context.Context, userID, workoutID int64) (WorkoutSummary, error) {
	if err := s.store.RecordWorkoutCompletion(ctx, userID, &workoutID, s.cfg.Now()); err != nil {
		return WorkoutSummary{}, fmt.Errorf("record workout completion: %w", err)
	}
	recs, err := s.ComputeProgression(ctx, userID, workoutID)
	if err != nil {
		return WorkoutSummary{}, err
	}
	records, err := s.DetectPRs(ctx, userID, workoutID)
	if err != nil {
		return WorkoutSummary{}, err
	}
	streak, err := s.ComputeStreak(ctx, userID)
	if err != nil {
		return WorkoutSummary{}, err
	}
	return WorkoutSummary{Recommendations: recs, Records: records, Streak: streak}, nil
}
