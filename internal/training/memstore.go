package training

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

type recommendationKey struct {
	userID     int64
	exerciseID int64
}

type workoutCompletion struct {
	userID      int64
	workoutID   *int64
	completedAt time.Time
}

// MemoryStore is an in-process Store. The zero value is not usable, use NewMemoryStore.
//
// Like the SQLite store it joins exercise names and muscle groups from its exercise catalogue into planned workouts
// and recorded sets, and rejects unknown exercises and workouts with ErrNotFound. The Add helpers seed rows as given.
type MemoryStore struct {
	mu              sync.RWMutex
	exercises       map[int64]Exercise
	logs            []SetLog
	templates       map[int64][]WorkoutExercise
	programs        []TrainingProgram
	recommendations map[recommendationKey]Recommendation
	achievements    []Achievement
	completions     []workoutCompletion
	lastWorkoutID   int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:              sync.RWMutex{},
		exercises:       make(map[int64]Exercise),
		logs:            nil,
		templates:       make(map[int64][]WorkoutExercise),
		programs:        nil,
		recommendations: make(map[recommendationKey]Recommendation),
		achievements:    nil,
		completions:     nil,
		lastWorkoutID:   0,
	}
}

// AddExercises adds exercises to the catalogue, replacing any with the same ID.
func (m *MemoryStore) AddExercises(exercises ...Exercise) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range exercises {
		ex.Equipment = slices.Clone(ex.Equipment)
		m.exercises[ex.ID] = ex
	}
}

// AddWorkoutExercises appends planned exercises to their workouts.
func (m *MemoryStore) AddWorkoutExercises(exercises ...WorkoutExercise) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, we := range exercises {
		m.templates[we.WorkoutID] = append(m.templates[we.WorkoutID], we)
		m.lastWorkoutID = max(m.lastWorkoutID, we.WorkoutID)
	}
}

// AddSetLogs records completed sets. Logs without an ID get the next free one.
func (m *MemoryStore) AddSetLogs(logs ...SetLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLogs(logs)
}

func (m *MemoryStore) appendLogs(logs []SetLog) {
	for _, l := range logs {
		if l.ID == 0 {
			l.ID = int64(len(m.logs) + 1)
		}
		if l.RPE != nil && *l.RPE <= 0 {
			l.RPE = nil
		}
		m.logs = append(m.logs, l)
	}
}

// AddWorkoutCompletions records when the user completed workouts.
func (m *MemoryStore) AddWorkoutCompletions(userID int64, completedAt ...time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range completedAt {
		m.completions = append(m.completions, workoutCompletion{userID: userID, workoutID: nil, completedAt: t})
	}
}

// SetTrainingPrograms replaces the catalogue. ListTrainingPrograms orders it by category and slug.
func (m *MemoryStore) SetTrainingPrograms(programs ...TrainingProgram) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs = slices.Clone(programs)
	slices.SortStableFunc(m.programs, func(a, b TrainingProgram) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Slug, b.Slug))
	})
}

func (m *MemoryStore) filterLogs(keep func(SetLog) bool) []SetLog {
	var out []SetLog
	for _, l := range m.logs {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func byCreatedAt(a, b SetLog) int {
	return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
}

func (m *MemoryStore) ListSetLogs(ctx context.Context, userID, exerciseID int64, limit int) ([]SetLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context errors are returned as is.
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := m.filterLogs(func(l SetLog) bool { return l.UserID == userID && l.ExerciseID == exerciseID })
	slices.SortStableFunc(logs, func(a, b SetLog) int { return byCreatedAt(b, a) })
	if limit >= 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (m *MemoryStore) ListWorkoutSetLogs(_ context.Context, userID, workoutID int64) ([]SetLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := m.filterLogs(func(l SetLog) bool {
		return l.UserID == userID && l.WorkoutID != nil && *l.WorkoutID == workoutID
	})
	slices.SortStableFunc(logs, byCreatedAt)
	return logs, nil
}

func (m *MemoryStore) ListSetLogsSince(_ context.Context, userID int64, since time.Time) ([]SetLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := m.filterLogs(func(l SetLog) bool { return l.UserID == userID && !l.CreatedAt.Before(since) })
	slices.SortStableFunc(logs, byCreatedAt)
	return logs, nil
}

func (m *MemoryStore) MaxWeightExcludingWorkout(_ context.Context, userID, exerciseID, workoutID int64) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best float64
	for _, l := range m.logs {
		if l.UserID != userID || l.ExerciseID != exerciseID {
			continue
		}
		if l.WorkoutID != nil && *l.WorkoutID == workoutID {
			continue
		}
		best = max(best, l.Weight)
	}
	return best, nil
}

func (m *MemoryStore) ListWorkoutExercises(_ context.Context, workoutID int64) ([]WorkoutExercise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exercises := slices.Clone(m.templates[workoutID])
	slices.SortStableFunc(exercises, func(a, b WorkoutExercise) int { return cmp.Compare(a.Position, b.Position) })
	return exercises, nil
}

func (m *MemoryStore) ListExercises(_ context.Context) ([]Exercise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exercises := make([]Exercise, 0, len(m.exercises))
	for _, id := range slices.Sorted(maps.Keys(m.exercises)) {
		ex := m.exercises[id]
		ex.Equipment = slices.Clone(ex.Equipment)
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

func (m *MemoryStore) ListTrainingPrograms(_ context.Context) ([]TrainingProgram, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.programs), nil
}

func (m *MemoryStore) UpsertRecommendation(_ context.Context, rec Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendations[recommendationKey{userID: rec.UserID, exerciseID: rec.ExerciseID}] = rec
	return nil
}

func (m *MemoryStore) ListRecommendations(_ context.Context, userID int64, exerciseIDs []int64) ([]Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var recs []Recommendation
	for key, rec := range m.recommendations {
		if key.userID != userID {
			continue
		}
		if len(exerciseIDs) > 0 && !slices.Contains(exerciseIDs, key.exerciseID) {
			continue
		}
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b Recommendation) int { return cmp.Compare(a.ExerciseID, b.ExerciseID) })
	return recs, nil
}

func (m *MemoryStore) InsertAchievement(_ context.Context, a Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.achievements, func(existing Achievement) bool { return existing.ID == a.ID }) {
		return nil
	}
	m.achievements = append(m.achievements, a)
	return nil
}

func (m *MemoryStore) ListAchievements(_ context.Context, userID int64) ([]Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Achievement
	for _, a := range m.achievements {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b Achievement) int { return b.AchievedAt.Compare(a.AchievedAt) })
	return out, nil
}

func (m *MemoryStore) ListWorkoutCompletions(_ context.Context, userID int64) ([]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []time.Time
	for _, c := range m.completions {
		if c.userID == userID {
			out = append(out, c.completedAt)
		}
	}
	slices.SortFunc(out, func(a, b time.Time) int { return b.Compare(a) })
	return out, nil
}

// exercise returns the catalogue entry of id or ErrNotFound. The caller holds the lock.
func (m *MemoryStore) exercise(id int64) (Exercise, error) {
	ex, ok := m.exercises[id]
	if !ok {
		return Exercise{}, fmt.Errorf("%w: unknown workout or exercise: exercise %d", ErrNotFound, id)
	}
	return ex, nil
}

// workoutExists reports whether a workout was created or seeded. The caller holds the lock.
func (m *MemoryStore) workoutExists(id int64) bool {
	_, ok := m.templates[id]
	return ok
}

func (m *MemoryStore) CreateWorkout(_ context.Context, _ int64, _ string, exercises []WorkoutExercise) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	planned := make([]WorkoutExercise, 0, len(exercises))
	for i, we := range exercises {
		ex, err := m.exercise(we.ExerciseID)
		if err != nil {
			return 0, err
		}
		we.ExerciseName = ex.Name
		we.MuscleGroup = ex.MuscleGroup
		we.Position = i
		planned = append(planned, we)
	}
	m.lastWorkoutID++
	id := m.lastWorkoutID
	for i := range planned {
		planned[i].WorkoutID = id
	}
	m.templates[id] = planned
	return id, nil
}

func (m *MemoryStore) InsertSetLogs(_ context.Context, logs []SetLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	joined := make([]SetLog, 0, len(logs))
	for _, l := range logs {
		ex, err := m.exercise(l.ExerciseID)
		if err != nil {
			return err
		}
		if l.WorkoutID != nil && !m.workoutExists(*l.WorkoutID) {
			return fmt.Errorf("%w: unknown workout or exercise: workout %d", ErrNotFound, *l.WorkoutID)
		}
		l.ExerciseName = ex.Name
		l.MuscleGroup = ex.MuscleGroup
		joined = append(joined, l)
	}
	m.appendLogs(joined)
	return nil
}

func (m *MemoryStore) RecordWorkoutCompletion(
	_ context.Context,
	userID int64,
	workoutID *int64,
	completedAt time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if workoutID == nil {
		m.completions = append(m.completions, workoutCompletion{userID: userID, workoutID: nil, completedAt: completedAt})
		return nil
	}
	if !m.workoutExists(*workoutID) {
		return fmt.Errorf("%w: unknown workout or exercise: workout %d", ErrNotFound, *workoutID)
	}
	if slices.ContainsFunc(m.completions, func(c workoutCompletion) bool {
		return c.userID == userID && c.workoutID != nil && *c.workoutID == *workoutID
	}) {
		return nil
	}
	id := *workoutID
	m.completions = append(m.completions, workoutCompletion{userID: userID, workoutID: &id, completedAt: completedAt})
	return nil
}
