package training

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// RepScheme is the set and rep prescription used for every exercise of a generated program.
type RepScheme struct {
	Sets        int
	Reps        string
	RestSeconds int
}

// RepSchemeFor returns the prescription suited to goal.
func RepSchemeFor(goal Goal) RepScheme {
	switch goal { //nolint:exhaustive // remaining goals share the default scheme.
	case GoalStrength:
		return RepScheme{Sets: 5, Reps: "3-5", RestSeconds: 180} //nolint:mnd // prescription table.
	case GoalHypertrophy:
		return RepScheme{Sets: 4, Reps: "8-12", RestSeconds: 90} //nolint:mnd // prescription table.
	case GoalGeneral:
		return RepScheme{Sets: 3, Reps: "12-15", RestSeconds: 60} //nolint:mnd // prescription table.
	default:
		return RepScheme{Sets: 3, Reps: "10", RestSeconds: 90} //nolint:mnd // prescription table.
	}
}

// splitDay is one workout of a split with the exercises it asks for by name.
type splitDay struct {
	name  string
	slots []string
}

//nolint:gochecknoglobals // exercise templates.
var (
	fullBodyA  = []string{"Barbell Back Squat", "Bench Press", "Barbell Row", "Overhead Press", "Romanian Deadlift"}
	fullBodyB  = []string{"Front Squat", "Incline Dumbbell Press", "Pull-Up", "Dumbbell Shoulder Press", "Deadlift"}
	fullBodyC  = []string{"Bulgarian Split Squat", "Dumbbell Bench Press", "Cable Row", "Lateral Raise", "Leg Curl"}
	upperPushA = []string{"Bench Press", "Overhead Press", "Incline Dumbbell Press", "Push-Up", "Lateral Raise"}
	upperPushB = []string{"Dumbbell Bench Press", "Dumbbell Shoulder Press", "Dips", "Tricep Pushdown", "Lateral Raise"}
	upperPullA = []string{"Barbell Row", "Pull-Up", "Face Pull", "Hammer Curl", "Inverted Row"}
	upperPullB = []string{"Cable Row", "Lat Pulldown", "Dumbbell Row", "Bicep Curl", "Face Pull"}
	lowerA     = []string{"Barbell Back Squat", "Romanian Deadlift", "Walking Lunge", "Leg Curl", "Calf Raise"}
	lowerB     = []string{"Front Squat", "Deadlift", "Bulgarian Split Squat", "Leg Extension", "Calf Raise"}

	fullBodySplit = []splitDay{
		{name: "The Foundation", slots: fullBodyA},
		{name: "Power Surge", slots: fullBodyB},
		{name: "The Finisher", slots: fullBodyC},
	}
	upperLowerSplit = []splitDay{
		{name: "Iron Press", slots: upperPushA},
		{name: "Squat & Drive", slots: lowerA},
		{name: "Cable & Steel", slots: upperPushB},
		{name: "Deadlift Day", slots: lowerB},
	}
	pushPullLegsSplit = []splitDay{
		{name: "Press Day", slots: upperPushA},
		{name: "Row & Grow", slots: upperPullA},
		{name: "Squat & Drive", slots: lowerA},
		{name: "Incline & Isolate", slots: upperPushB},
		{name: "Back & Biceps", slots: upperPullB},
		{name: "Deadlift Day", slots: lowerB},
	}
)

const (
	maxFullBodyDays = 3
	upperLowerDays  = 4
	maxTrainingDays = 7
	minTrainingDays = 1
)

// splitFor picks the weekly split for the number of training days. Seven days still get six workouts.
func splitFor(days int) []splitDay {
	switch {
	case days <= maxFullBodyDays:
		return fullBodySplit[:days]
	case days == upperLowerDays:
		return upperLowerSplit
	default:
		return pushPullLegsSplit[:min(days, len(pushPullLegsSplit))]
	}
}

// GenerateRequest describes the program a user asks for.
type GenerateRequest struct {
	Goal        Goal
	DaysPerWeek int
	// Equipment is what the user has at hand. Bodyweight is always assumed.
	Equipment []Equipment
}

func (r GenerateRequest) Validate() error {
	if !r.Goal.Valid() {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, r.Goal)
	}
	if r.DaysPerWeek < minTrainingDays || r.DaysPerWeek > maxTrainingDays {
		return fmt.Errorf("%w: days per week must be between %d and %d", ErrInvalidInput, minTrainingDays,
			maxTrainingDays)
	}
	for _, e := range r.Equipment {
		if !e.Valid() {
			return fmt.Errorf("%w: unknown equipment %q", ErrInvalidInput, e)
		}
	}
	return nil
}

// Substitution records an exercise swapped for one the user can do with their equipment.
type Substitution struct {
	Requested string
	Chosen    string
}

// GeneratedWorkout is one workout of a generated program. ID is zero until the workout is stored.
type GeneratedWorkout struct {
	ID            int64
	Name          string
	Exercises     []WorkoutExercise
	Substitutions []Substitution
}

// PlanProgram builds the workouts of a program from the exercise catalogue without storing them.
func PlanProgram(req GenerateRequest, catalogue []Exercise) ([]GeneratedWorkout, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	available := filterByEquipment(catalogue, append(slices.Clone(req.Equipment), EquipmentBodyweight))
	if len(available) == 0 {
		return nil, fmt.Errorf("%w: no exercises match the equipment", ErrInvalidInput)
	}

	scheme := RepSchemeFor(req.Goal)
	split := splitFor(req.DaysPerWeek)
	workouts := make([]GeneratedWorkout, 0, len(split))
	for _, day := range split {
		w := GeneratedWorkout{
			ID:            0,
			Name:          day.name,
			Exercises:     make([]WorkoutExercise, 0, len(day.slots)),
			Substitutions: nil,
		}
		var picked []Exercise
		for i, slot := range day.slots {
			pool := filterOutExercises(available, picked)
			if len(pool) == 0 {
				pool = available
			}
			ex := pickExercise(slot, catalogue, pool)
			picked = append(picked, ex)
			if !strings.EqualFold(ex.Name, slot) {
				w.Substitutions = append(w.Substitutions, Substitution{Requested: slot, Chosen: ex.Name})
			}
			w.Exercises = append(w.Exercises, WorkoutExercise{
				WorkoutID:    0,
				ExerciseID:   ex.ID,
				ExerciseName: ex.Name,
				MuscleGroup:  ex.MuscleGroup,
				Position:     i,
				Sets:         scheme.Sets,
				Reps:         scheme.Reps,
				RestSeconds:  scheme.RestSeconds,
			})
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}

// filterByEquipment keeps the exercises doable with any of the given equipment.
// Exercises without listed equipment need none.
func filterByEquipment(exercises []Exercise, equipment []Equipment) []Exercise {
	var filtered []Exercise
	for _, ex := range exercises {
		if len(ex.Equipment) == 0 || slices.ContainsFunc(ex.Equipment, func(e Equipment) bool {
			return slices.Contains(equipment, e)
		}) {
			filtered = append(filtered, ex)
		}
	}
	return filtered
}

func containsExercise(exercises []Exercise, target Exercise) bool {
	return slices.ContainsFunc(exercises, func(ex Exercise) bool { return ex.ID == target.ID })
}

// filterOutExercises removes specified exercises from a pool.
func filterOutExercises(pool, toFilter []Exercise) []Exercise {
	var filtered []Exercise
	for _, ex := range pool {
		if !containsExercise(toFilter, ex) {
			filtered = append(filtered, ex)
		}
	}
	return filtered
}

// gearWords are left out when matching a substitute by name so that "Dumbbell Row" can stand in for "Barbell Row".
var gearWords = []string{"barbell", "dumbbell", "cable", "machine", "band"} //nolint:gochecknoglobals // constant.

// pickExercise chooses the exercise for a slot from the non-empty pool. It prefers the exercise itself, then one
// training the same muscle group with a similar name, then any of that muscle group, then any sharing the first
// word of the slot.
func pickExercise(slot string, catalogue, pool []Exercise) Exercise {
	byName := func(name string) func(Exercise) bool {
		return func(ex Exercise) bool { return strings.EqualFold(ex.Name, name) }
	}
	if i := slices.IndexFunc(pool, byName(slot)); i >= 0 {
		return pool[i]
	}

	if i := slices.IndexFunc(catalogue, byName(slot)); i >= 0 && catalogue[i].MuscleGroup != "" {
		group := catalogue[i].MuscleGroup
		var sameGroup []Exercise
		for _, ex := range pool {
			if ex.MuscleGroup == group {
				sameGroup = append(sameGroup, ex)
			}
		}
		if len(sameGroup) > 0 {
			keywords := slices.DeleteFunc(strings.Fields(strings.ToLower(slot)), func(w string) bool {
				return slices.Contains(gearWords, w)
			})
			for _, ex := range sameGroup {
				name := strings.ToLower(ex.Name)
				if slices.ContainsFunc(keywords, func(k string) bool { return strings.Contains(name, k) }) {
					return ex
				}
			}
			return sameGroup[0]
		}
	}

	if first, _, _ := strings.Cut(strings.ToLower(slot), " "); first != "" {
		for _, ex := range pool {
			if strings.Contains(strings.ToLower(ex.Name), first) {
				return ex
			}
		}
	}
	return pool[0]
}

// GenerateProgram plans a weekly program for the user's goal, schedule and equipment and stores its workouts.
// Workouts from earlier programs are kept.
func (s *Service) GenerateProgram(ctx context.Context, userID int64, req GenerateRequest) ([]GeneratedWorkout, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	catalogue, err := s.store.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	workouts, err := PlanProgram(req, catalogue)
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		w := &workouts[i]
		if w.ID, err = s.store.CreateWorkout(ctx, userID, w.Name, w.Exercises); err != nil {
			return nil, fmt.Errorf("create workout %q: %w", w.Name, err)
		}
		for j := range w.Exercises {
			w.Exercises[j].WorkoutID = w.ID
		}
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "generated program",
		slog.Int64("user_id", userID),
		slog.String("goal", string(req.Goal)),
		slog.Int("workouts", len(workouts)))
	return workouts, nil
}
