// Package training holds the coaching heuristics of liftcoach: the progression engine that recommends the next
// session's weight and reps, the program matcher that ranks training programs against a user's goals, and the
// streak and personal record calculators.
//
// The heuristics are pure functions over rows that a Store fetched. Service wires them to a Store.
package training

import (
	"time"

	"github.com/google/uuid"
)

// SetLog is one completed set. It is immutable once recorded.
type SetLog struct {
	ID           int64
	UserID       int64
	ExerciseID   int64
	ExerciseName string
	MuscleGroup  string
	// WorkoutID is nil for sets logged outside a planned workout.
	WorkoutID     *int64
	SetNumber     int
	Weight        float64
	RepsCompleted int
	// RPE is the rate of perceived exertion between 6 and 10. Nil or zero means not reported.
	RPE       *int
	CreatedAt time.Time
}

// Equipment is a kind of gear an exercise can be done with.
type Equipment string

const (
	EquipmentBarbell    Equipment = "barbell"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentCable      Equipment = "cable"
	EquipmentMachine    Equipment = "machine"
	EquipmentKettlebell Equipment = "kettlebell"
	EquipmentBand       Equipment = "band"
	// EquipmentBodyweight is always available.
	EquipmentBodyweight Equipment = "bodyweight"
)

// Valid reports whether e is a known kind of equipment.
func (e Equipment) Valid() bool {
	switch e {
	case EquipmentBarbell, EquipmentDumbbell, EquipmentCable, EquipmentMachine, EquipmentKettlebell, EquipmentBand,
		EquipmentBodyweight:
		return true
	default:
		return false
	}
}

// Exercise is reference data. Equipment lists alternatives: any one of them is enough.
type Exercise struct {
	ID          int64
	Name        string
	MuscleGroup string
	Equipment   []Equipment
}

// Session groups the sets of one training session, newest session first when returned from GroupSessions.
type Session struct {
	Key  string
	Logs []SetLog
}

// WorkoutExercise is a planned exercise in a workout template.
type WorkoutExercise struct {
	WorkoutID    int64
	ExerciseID   int64
	ExerciseName string
	MuscleGroup  string
	Position     int
	Sets         int
	// Reps is the target range such as "8-12" or a single count such as "5".
	Reps        string
	RestSeconds int
}

type RecommendationType string

const (
	IncreaseWeight RecommendationType = "increase_weight"
	IncreaseReps   RecommendationType = "increase_reps"
	Maintain       RecommendationType = "maintain"
	Deload         RecommendationType = "deload"
)

// Recommendation is the progression advice for the next session of an exercise.
// There is at most one live recommendation per user and exercise.
type Recommendation struct {
	UserID            int64
	ExerciseID        int64
	ExerciseName      string
	RecommendedWeight float64
	RecommendedReps   string
	Type              RecommendationType
	Reason            string
	BasedOnSessions   int
	CreatedAt         time.Time
}

type AchievementType string

const AchievementPRWeight AchievementType = "pr_weight"

// AchievementValue is the payload stored with a weight PR achievement.
type AchievementValue struct {
	ExerciseID   int64   `json:"exercise_id"`
	ExerciseName string  `json:"exercise_name"`
	Weight       float64 `json:"weight"`
	PreviousBest float64 `json:"previous_best"`
	Reps         int     `json:"reps"`
}

// Achievement rows are append-only.
type Achievement struct {
	ID         uuid.UUID
	UserID     int64
	Type       AchievementType
	Value      AchievementValue
	AchievedAt time.Time
}

// PersonalRecord is a session max that beat the previous best for the exercise.
type PersonalRecord struct {
	ExerciseID   int64
	ExerciseName string
	NewWeight    float64
	PreviousBest float64
	Reps         int
	Improvement  float64
}

// Goal identifies what a user wants out of training. Program categories use the same identifiers.
type Goal string

const (
	GoalStrength     Goal = "strength"
	GoalHypertrophy  Goal = "hypertrophy"
	GoalBodybuilding Goal = "bodybuilding"
	GoalPower        Goal = "power"
	GoalEndurance    Goal = "endurance"
	GoalFlexibility  Goal = "flexibility"
	GoalAthletic     Goal = "athletic"
	GoalGeneral      Goal = "general"
)

type Experience string

const (
	Beginner     Experience = "beginner"
	Intermediate Experience = "intermediate"
	Advanced     Experience = "advanced"
)

// level maps the experience to 0, 1 and 2. Unknown values report ok false.
func (e Experience) level() (int, bool) {
	switch e {
	case Beginner:
		return 0, true
	case Intermediate:
		return 1, true
	case Advanced:
		return 2, true //nolint:mnd // advanced is the third level.
	default:
		return 0, false
	}
}

// Valid reports whether e is one of the known experience levels.
func (e Experience) Valid() bool {
	_, ok := e.level()
	return ok
}

// TrainingProgram is read-only reference data.
type TrainingProgram struct {
	Slug                string
	Name                string
	Category            Goal
	Tags                []string
	Difficulty          Experience
	MinDays             int
	MaxDays             int
	DescriptionMarkdown string
	Workouts            []ProgramWorkout
}

type ProgramWorkout struct {
	Position int
	Name     string
	Template string
}

// ScoredProgram is a program with its match score from 0 to 99.
type ScoredProgram struct {
	Program      TrainingProgram
	Score        int
	MatchReasons []string
}

type ProgramMatches struct {
	TopPicks     []ScoredProgram
	OtherOptions []ScoredProgram
}

// StreakData summarises weekly training consistency. It is derived on every read.
type StreakData struct {
	CurrentStreak    int
	LongestStreak    int
	TotalWorkouts    int
	ThisWeekWorkouts int
	LastWorkoutDate  *time.Time
}

// MuscleVolume is the number of sets a muscle group received over the last week.
type MuscleVolume struct {
	MuscleGroup string
	Sets        int
	Target      int
}
