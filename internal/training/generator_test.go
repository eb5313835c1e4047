package training_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/liftcoach/internal/training"
)

// gymCatalogue holds every exercise the splits ask for, usable without equipment.
func gymCatalogue() []training.Exercise {
	names := []string{
		"Barbell Back Squat", "Bench Press", "Barbell Row", "Overhead Press", "Romanian Deadlift", "Front Squat",
		"Incline Dumbbell Press", "Pull-Up", "Dumbbell Shoulder Press", "Deadlift", "Bulgarian Split Squat",
		"Dumbbell Bench Press", "Cable Row", "Lateral Raise", "Leg Curl", "Push-Up", "Dips", "Tricep Pushdown",
		"Face Pull", "Hammer Curl", "Inverted Row", "Lat Pulldown", "Dumbbell Row", "Bicep Curl", "Walking Lunge",
		"Calf Raise", "Leg Extension",
	}
	catalogue := make([]training.Exercise, 0, len(names))
	for i, name := range names {
		catalogue = append(catalogue, training.Exercise{ID: int64(i + 1), Name: name, MuscleGroup: "", Equipment: nil})
	}
	return catalogue
}

// homeCatalogue mixes barbell staples with their bodyweight stand-ins.
func homeCatalogue() []training.Exercise {
	var (
		barbell    = []training.Equipment{training.EquipmentBarbell}
		bodyweight = []training.Equipment{training.EquipmentBodyweight}
	)
	return []training.Exercise{
		{ID: 1, Name: "Barbell Back Squat", MuscleGroup: "legs", Equipment: barbell},
		{ID: 2, Name: "Bodyweight Squat", MuscleGroup: "legs", Equipment: bodyweight},
		{ID: 3, Name: "Bench Press", MuscleGroup: "chest", Equipment: barbell},
		{ID: 4, Name: "Push-Up", MuscleGroup: "chest", Equipment: bodyweight},
		{ID: 5, Name: "Barbell Row", MuscleGroup: "back", Equipment: barbell},
		{ID: 6, Name: "Inverted Row", MuscleGroup: "back", Equipment: bodyweight},
		{ID: 7, Name: "Overhead Press", MuscleGroup: "shoulders", Equipment: barbell},
		{ID: 8, Name: "Pike Push-Up", MuscleGroup: "shoulders", Equipment: bodyweight},
		{ID: 9, Name: "Romanian Deadlift", MuscleGroup: "hamstrings",
			Equipment: []training.Equipment{training.EquipmentBarbell, training.EquipmentDumbbell}},
		{ID: 10, Name: "Glute Bridge", MuscleGroup: "glutes", Equipment: bodyweight},
		{ID: 11, Name: "Pull-Up", MuscleGroup: "back", Equipment: bodyweight},
	}
}

func workoutNames(workouts []training.GeneratedWorkout) []string {
	names := make([]string, 0, len(workouts))
	for _, w := range workouts {
		names = append(names, w.Name)
	}
	return names
}

func exerciseNames(w training.GeneratedWorkout) []string {
	names := make([]string, 0, len(w.Exercises))
	for _, we := range w.Exercises {
		names = append(names, we.ExerciseName)
	}
	return names
}

func TestPlanProgram_split(t *testing.T) {
	tests := []struct {
		days int
		want []string
	}{
		{days: 1, want: []string{"The Foundation"}},
		{days: 2, want: []string{"The Foundation", "Power Surge"}},
		{days: 3, want: []string{"The Foundation", "Power Surge", "The Finisher"}},
		{days: 4, want: []string{"Iron Press", "Squat & Drive", "Cable & Steel", "Deadlift Day"}},
		{days: 5, want: []string{"Press Day", "Row & Grow", "Squat & Drive", "Incline & Isolate", "Back & Biceps"}},
		{days: 6, want: []string{
			"Press Day", "Row & Grow", "Squat & Drive", "Incline & Isolate", "Back & Biceps", "Deadlift Day",
		}},
		{days: 7, want: []string{
			"Press Day", "Row & Grow", "Squat & Drive", "Incline & Isolate", "Back & Biceps", "Deadlift Day",
		}},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.days)+" days", func(t *testing.T) {
			got, err := training.PlanProgram(training.GenerateRequest{
				Goal:        training.GoalHypertrophy,
				DaysPerWeek: tt.days,
				Equipment:   nil,
			}, gymCatalogue())
			if err != nil {
				t.Fatalf("PlanProgram() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, workoutNames(got)); diff != "" {
				t.Errorf("workout names mismatch (-want +got):\n%s", diff)
			}
			for _, w := range got {
				if len(w.Exercises) != 5 {
					t.Errorf("%s has %d exercises, want 5", w.Name, len(w.Exercises))
				}
				if len(w.Substitutions) != 0 {
					t.Errorf("%s has substitutions %v, want none", w.Name, w.Substitutions)
				}
			}
		})
	}
}

func TestPlanProgram_upperLowerExercises(t *testing.T) {
	got, err := training.PlanProgram(training.GenerateRequest{
		Goal:        training.GoalStrength,
		DaysPerWeek: 4,
		Equipment:   nil,
	}, gymCatalogue())
	if err != nil {
		t.Fatalf("PlanProgram() error = %v", err)
	}
	want := []string{"Front Squat", "Deadlift", "Bulgarian Split Squat", "Leg Extension", "Calf Raise"}
	if diff := cmp.Diff(want, exerciseNames(got[3])); diff != "" {
		t.Errorf("Deadlift Day exercises mismatch (-want +got):\n%s", diff)
	}
	for i, we := range got[3].Exercises {
		if we.Position != i {
			t.Errorf("%s Position = %d, want %d", we.ExerciseName, we.Position, i)
		}
	}
}

func TestRepSchemeFor(t *testing.T) {
	tests := []struct {
		goal training.Goal
		want training.RepScheme
	}{
		{goal: training.GoalStrength, want: training.RepScheme{Sets: 5, Reps: "3-5", RestSeconds: 180}},
		{goal: training.GoalHypertrophy, want: training.RepScheme{Sets: 4, Reps: "8-12", RestSeconds: 90}},
		{goal: training.GoalGeneral, want: training.RepScheme{Sets: 3, Reps: "12-15", RestSeconds: 60}},
		{goal: training.GoalPower, want: training.RepScheme{Sets: 3, Reps: "10", RestSeconds: 90}},
		{goal: training.GoalEndurance, want: training.RepScheme{Sets: 3, Reps: "10", RestSeconds: 90}},
	}
	for _, tt := range tests {
		t.Run(string(tt.goal), func(t *testing.T) {
			if got := training.RepSchemeFor(tt.goal); got != tt.want {
				t.Errorf("RepSchemeFor() = %+v, want %+v", got, tt.want)
			}
			program, err := training.PlanProgram(training.GenerateRequest{
				Goal:        tt.goal,
				DaysPerWeek: 1,
				Equipment:   nil,
			}, gymCatalogue())
			if err != nil {
				t.Fatalf("PlanProgram() error = %v", err)
			}
			for _, we := range program[0].Exercises {
				got := training.RepScheme{Sets: we.Sets, Reps: we.Reps, RestSeconds: we.RestSeconds}
				if got != tt.want {
					t.Errorf("%s prescribed %+v, want %+v", we.ExerciseName, got, tt.want)
				}
			}
		})
	}
}

func TestPlanProgram_substitutes(t *testing.T) {
	tests := []struct {
		name              string
		equipment         []training.Equipment
		wantExercises     []string
		wantSubstitutions []training.Substitution
	}{
		{
			name:          "bodyweight only",
			equipment:     nil,
			wantExercises: []string{"Bodyweight Squat", "Push-Up", "Inverted Row", "Pike Push-Up", "Glute Bridge"},
			wantSubstitutions: []training.Substitution{
				{Requested: "Barbell Back Squat", Chosen: "Bodyweight Squat"},
				{Requested: "Bench Press", Chosen: "Push-Up"},
				{Requested: "Barbell Row", Chosen: "Inverted Row"},
				{Requested: "Overhead Press", Chosen: "Pike Push-Up"},
				{Requested: "Romanian Deadlift", Chosen: "Glute Bridge"},
			},
		},
		{
			name:          "dumbbells",
			equipment:     []training.Equipment{training.EquipmentDumbbell},
			wantExercises: []string{"Bodyweight Squat", "Push-Up", "Inverted Row", "Pike Push-Up", "Romanian Deadlift"},
			wantSubstitutions: []training.Substitution{
				{Requested: "Barbell Back Squat", Chosen: "Bodyweight Squat"},
				{Requested: "Bench Press", Chosen: "Push-Up"},
				{Requested: "Barbell Row", Chosen: "Inverted Row"},
				{Requested: "Overhead Press", Chosen: "Pike Push-Up"},
			},
		},
		{
			name:          "full gym",
			equipment:     []training.Equipment{training.EquipmentBarbell},
			wantExercises: []string{"Barbell Back Squat", "Bench Press", "Barbell Row", "Overhead Press", "Romanian Deadlift"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := training.PlanProgram(training.GenerateRequest{
				Goal:        training.GoalGeneral,
				DaysPerWeek: 1,
				Equipment:   tt.equipment,
			}, homeCatalogue())
			if err != nil {
				t.Fatalf("PlanProgram() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantExercises, exerciseNames(got[0])); diff != "" {
				t.Errorf("exercises mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantSubstitutions, got[0].Substitutions); diff != "" {
				t.Errorf("substitutions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanProgram_repeatsOnlyWhenExhausted(t *testing.T) {
	catalogue := []training.Exercise{
		{ID: 1, Name: "Push-Up", MuscleGroup: "chest", Equipment: []training.Equipment{training.EquipmentBodyweight}},
		{ID: 2, Name: "Dips", MuscleGroup: "chest", Equipment: []training.Equipment{training.EquipmentBodyweight}},
	}
	got, err := training.PlanProgram(training.GenerateRequest{
		Goal:        training.GoalGeneral,
		DaysPerWeek: 1,
		Equipment:   nil,
	}, catalogue)
	if err != nil {
		t.Fatalf("PlanProgram() error = %v", err)
	}
	names := exerciseNames(got[0])
	if names[0] == names[1] {
		t.Errorf("first two exercises are both %s, want distinct", names[0])
	}
	if len(names) != 5 {
		t.Errorf("got %d exercises, want 5", len(names))
	}
}

func TestPlanProgram_invalid(t *testing.T) {
	barbellOnly := []training.Exercise{
		{ID: 1, Name: "Bench Press", MuscleGroup: "chest", Equipment: []training.Equipment{training.EquipmentBarbell}},
	}
	tests := []struct {
		name      string
		req       training.GenerateRequest
		catalogue []training.Exercise
	}{
		{
			name:      "unknown goal",
			req:       training.GenerateRequest{Goal: "cardio", DaysPerWeek: 3, Equipment: nil},
			catalogue: gymCatalogue(),
		},
		{
			name:      "no training days",
			req:       training.GenerateRequest{Goal: training.GoalStrength, DaysPerWeek: 0, Equipment: nil},
			catalogue: gymCatalogue(),
		},
		{
			name:      "more days than a week",
			req:       training.GenerateRequest{Goal: training.GoalStrength, DaysPerWeek: 8, Equipment: nil},
			catalogue: gymCatalogue(),
		},
		{
			name: "unknown equipment",
			req: training.GenerateRequest{
				Goal: training.GoalStrength, DaysPerWeek: 3, Equipment: []training.Equipment{"rope"},
			},
			catalogue: gymCatalogue(),
		},
		{
			name:      "nothing doable",
			req:       training.GenerateRequest{Goal: training.GoalStrength, DaysPerWeek: 3, Equipment: nil},
			catalogue: barbellOnly,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := training.PlanProgram(tt.req, tt.catalogue); !errors.Is(err, training.ErrInvalidInput) {
				t.Errorf("PlanProgram() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
