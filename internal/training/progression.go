package training

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/liftcoach/internal/ptr"
)

// RepRange is an inclusive target rep range.
type RepRange struct {
	Low  int
	High int
}

func (r RepRange) String() string {
	if r.Low == r.High {
		return strconv.Itoa(r.Low)
	}
	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

// DefaultRepRange applies when a template has no usable rep target.
var DefaultRepRange = RepRange{Low: 8, High: 12} //nolint:gochecknoglobals // named constant of a struct type.

const (
	// HistoryLimit is how many of the most recent sets are considered per exercise.
	HistoryLimit = 30

	deloadFactor    = 0.9
	deloadRounding  = 2.5
	maxEasyRPE      = 8.0
	minHardRPE      = 9.0
	lightWeightLbs  = 50
	smallIncrement  = 2.5
	mediumIncrement = 5
	largeIncrement  = 10
)

// ParseRepRange parses "8-12" into {8, 12} and "10" into {10, 10}.
// Empty, malformed and non-positive input yields DefaultRepRange. A reversed range is swapped.
func ParseRepRange(s string) RepRange {
	lowStr, highStr, isRange := strings.Cut(strings.TrimSpace(s), "-")
	if !isRange {
		highStr = lowStr
	}
	low, err := strconv.Atoi(strings.TrimSpace(lowStr))
	if err != nil {
		return DefaultRepRange
	}
	high, err := strconv.Atoi(strings.TrimSpace(highStr))
	if err != nil {
		return DefaultRepRange
	}
	if low <= 0 || high <= 0 {
		return DefaultRepRange
	}
	if low > high {
		low, high = high, low
	}
	return RepRange{Low: low, High: high}
}

// GroupSessions groups logs into sessions, most recent session first.
//
// Logs sharing a workout belong to the same session. Logs without a workout are grouped by their calendar date in
// loc.
func GroupSessions(logs []SetLog, loc *time.Location) []Session {
	sorted := slices.Clone(logs)
	slices.SortStableFunc(sorted, func(a, b SetLog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	var (
		sessions []Session
		index    = make(map[string]int)
	)
	for _, l := range sorted {
		key := sessionKey(l, loc)
		i, ok := index[key]
		if !ok {
			i = len(sessions)
			index[key] = i
			sessions = append(sessions, Session{Key: key, Logs: nil})
		}
		sessions[i].Logs = append(sessions[i].Logs, l)
	}
	return sessions
}

func sessionKey(l SetLog, loc *time.Location) string {
	if l.WorkoutID != nil {
		return "workout:" + strconv.FormatInt(*l.WorkoutID, 10)
	}
	return "date:" + l.CreatedAt.In(loc).Format(time.DateOnly)
}

// sessionStats summarises the sets of one session.
type sessionStats struct {
	maxWeight float64
	avgReps   float64
	avgRPE    float64
	// rpeKnown is false when no set reported an RPE.
	rpeKnown bool
}

func summarise(s Session) sessionStats {
	var (
		stats    sessionStats
		reps     int
		rpeSum   int
		rpeCount int
	)
	for _, l := range s.Logs {
		stats.maxWeight = max(stats.maxWeight, l.Weight)
		reps += l.RepsCompleted
		if rpe := ptr.Deref(l.RPE, 0); rpe > 0 {
			rpeSum += rpe
			rpeCount++
		}
	}
	if len(s.Logs) > 0 {
		stats.avgReps = float64(reps) / float64(len(s.Logs))
	}
	if rpeCount > 0 {
		stats.avgRPE = float64(rpeSum) / float64(rpeCount)
		stats.rpeKnown = true
	}
	return stats
}

func allSetsReach(s Session, reps int) bool {
	return !slices.ContainsFunc(s.Logs, func(l SetLog) bool { return l.RepsCompleted < reps })
}

// Recommend decides the next session's weight and reps for one planned exercise from its set history.
// It reports false when there is nothing to base a recommendation on.
func Recommend(template WorkoutExercise, logs []SetLog, loc *time.Location) (Recommendation, bool) {
	sessions := GroupSessions(logs, loc)
	if len(sessions) == 0 {
		return Recommendation{}, false //nolint:exhaustruct // zero value when skipped.
	}
	latest := sessions[0]
	stats := summarise(latest)
	if stats.maxWeight <= 0 {
		return Recommendation{}, false //nolint:exhaustruct // zero value when skipped.
	}

	target := ParseRepRange(template.Reps)
	rec := Recommendation{
		UserID:            latest.Logs[0].UserID,
		ExerciseID:        template.ExerciseID,
		ExerciseName:      template.ExerciseName,
		RecommendedWeight: stats.maxWeight,
		RecommendedReps:   target.String(),
		Type:              IncreaseReps,
		Reason:            "",
		BasedOnSessions:   len(sessions),
		CreatedAt:         time.Time{},
	}

	switch {
	case allSetsReach(latest, target.High) && (!stats.rpeKnown || stats.avgRPE <= maxEasyRPE):
		increment := WeightIncrement(template.ExerciseName, stats.maxWeight, template.MuscleGroup)
		rec.Type = IncreaseWeight
		rec.RecommendedWeight = RoundToNearest(stats.maxWeight+increment, increment)
		rec.Reason = fmt.Sprintf("All sets reached %d reps%s. Go up to %s lbs next session.",
			target.High, rpeSuffix(stats), formatWeight(rec.RecommendedWeight))
	case allSetsReach(latest, target.Low) && stats.rpeKnown && stats.avgRPE >= minHardRPE:
		rec.Type = Maintain
		rec.Reason = fmt.Sprintf("Reps on target but RPE averaged %.0f. Repeat %s lbs before adding weight.",
			stats.avgRPE, formatWeight(stats.maxWeight))
	case stalled(sessions, target.Low) && stats.rpeKnown && stats.avgRPE >= minHardRPE:
		rec.Type = Deload
		rec.RecommendedWeight = RoundToNearest(stats.maxWeight*deloadFactor, deloadRounding)
		rec.Reason = fmt.Sprintf("Missed %d reps two sessions running at RPE %.0f. Drop to %s lbs and build back up.",
			target.Low, stats.avgRPE, formatWeight(rec.RecommendedWeight))
	default:
		rec.Reason = fmt.Sprintf("Averaging %.0f reps. Keep %s lbs and work up to %d on every set.",
			stats.avgReps, formatWeight(stats.maxWeight), target.High)
	}
	return rec, true
}

// stalled reports whether both of the two most recent sessions have a set below low.
func stalled(sessions []Session, low int) bool {
	if len(sessions) < 2 { //nolint:mnd // two sessions make a stall.
		return false
	}
	return !allSetsReach(sessions[0], low) && !allSetsReach(sessions[1], low)
}

func rpeSuffix(stats sessionStats) string {
	if !stats.rpeKnown {
		return ""
	}
	return fmt.Sprintf(" at RPE %.0f", stats.avgRPE)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// WeightIncrement returns the weight jump in pounds for an exercise.
//
// Lower body compounds progress by 10, upper body compounds by 5. Other lifts under 50 lbs progress by 2.5.
// Remaining lower body work progresses by 10 and everything else by 5.
func WeightIncrement(exerciseName string, currentWeight float64, muscleGroup string) float64 {
	name := strings.ToLower(exerciseName)
	containsAny := func(keywords ...string) bool {
		return slices.ContainsFunc(keywords, func(k string) bool { return strings.Contains(name, k) })
	}
	switch {
	case containsAny("squat", "deadlift", "leg press"):
		return largeIncrement
	case containsAny("bench", "row", "press", "pull"):
		return mediumIncrement
	case currentWeight < lightWeightLbs:
		return smallIncrement
	}
	switch strings.ToLower(muscleGroup) {
	case "legs", "glutes", "hamstrings", "quadriceps":
		return largeIncrement
	default:
		return mediumIncrement
	}
}

// RoundToNearest rounds v to the nearest multiple of increment with ties rounding up.
// A non-positive increment returns v unchanged.
func RoundToNearest(v, increment float64) float64 {
	if increment <= 0 {
		return v
	}
	return math.Floor(v/increment+0.5) * increment //nolint:mnd // half up.
}
