package training

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
)

const (
	// MaxGoals is the number of prioritised goals a user may pick.
	MaxGoals = 3

	directMatchPoints   = 50
	tagPoints           = 5
	experienceExact     = 10
	experienceClose     = 5
	scheduleFit         = 8
	scheduleClose       = 3
	trailingGoalWeight  = 0.05
	maxRawScore         = 50 + 25 + 10 + 8
	maxReportedScore    = 99
	TopPickMinimumScore = 40
)

//nolint:gochecknoglobals // static scoring tables.
var (
	goalWeights = []float64{0.60, 0.30, 0.10}

	goalOrdinals = []string{"primary", "secondary", "tertiary"}

	// goalAffinity lists the program tags that serve each goal.
	goalAffinity = map[Goal][]string{
		GoalStrength:     {"compound_only", "linear_progression", "low_reps", "barbell", "powerlifting"},
		GoalHypertrophy:  {"high_volume", "moderate_reps", "isolation", "split", "time_under_tension"},
		GoalBodybuilding: {"high_volume", "isolation", "split", "moderate_reps", "aesthetics"},
		GoalPower:        {"explosive", "plyometric", "olympic_lifts", "low_reps", "athletic"},
		GoalEndurance:    {"high_reps", "circuit", "conditioning", "short_rest"},
		GoalFlexibility:  {"mobility", "stretching", "bodyweight", "low_impact"},
		GoalAthletic:     {"explosive", "functional", "conditioning", "agility", "compound_only"},
		GoalGeneral:      {"full_body", "balanced", "beginner_friendly", "functional", "conditioning"},
	}
)

// Goals returns the known goals in a stable order.
func Goals() []Goal {
	return []Goal{
		GoalStrength, GoalHypertrophy, GoalBodybuilding, GoalPower,
		GoalEndurance, GoalFlexibility, GoalAthletic, GoalGeneral,
	}
}

// Valid reports whether g is a known goal.
func (g Goal) Valid() bool {
	_, ok := goalAffinity[g]
	return ok
}

func goalWeight(i int) float64 {
	if i < len(goalWeights) {
		return goalWeights[i]
	}
	return trailingGoalWeight
}

// MatchRequest describes what a user is looking for in a program.
type MatchRequest struct {
	// Goals in priority order.
	Goals       []Goal
	Experience  Experience
	DaysPerWeek int
}

// ScoreProgram scores how well program fits the goals, experience and weekly schedule.
// The score is a percentage between 0 and 99 and MatchReasons lists every rule that contributed, in rule order.
func ScoreProgram(program TrainingProgram, goals []Goal, experience Experience, daysPerWeek int) ScoredProgram {
	var (
		raw     float64
		reasons []string
	)

	for i, goal := range goals {
		if program.Category != goal {
			continue
		}
		raw += directMatchPoints * goalWeight(i)
		if i < len(goalOrdinals) {
			reasons = append(reasons, fmt.Sprintf("Direct %s goal match", goalOrdinals[i]))
		} else {
			reasons = append(reasons, "Direct goal match")
		}
	}

	for i, goal := range goals {
		hits := 0
		for _, tag := range goalAffinity[goal] {
			if slices.Contains(program.Tags, tag) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		raw += float64(hits*tagPoints) * goalWeight(i)
		if hits == 1 {
			reasons = append(reasons, fmt.Sprintf("1 tag matches %q", strings.ToUpper(string(goal))))
		} else {
			reasons = append(reasons, fmt.Sprintf("%d tags match %q", hits, strings.ToUpper(string(goal))))
		}
	}

	userLevel, userOK := experience.level()
	programLevel, programOK := program.Difficulty.level()
	if userOK && programOK {
		switch diff := userLevel - programLevel; {
		case diff == 0:
			raw += experienceExact
			reasons = append(reasons, "Matches your experience")
		case diff == 1 || diff == -1:
			raw += experienceClose
			reasons = append(reasons, "Close to your experience")
		}
	}

	switch {
	case daysPerWeek >= program.MinDays && daysPerWeek <= program.MaxDays:
		raw += scheduleFit
		reasons = append(reasons, "Fits your schedule")
	case daysPerWeek == program.MinDays-1 || daysPerWeek == program.MaxDays+1:
		raw += scheduleClose
		reasons = append(reasons, "Close to your schedule")
	}

	return ScoredProgram{
		Program:      program,
		Score:        normaliseScore(raw),
		MatchReasons: reasons,
	}
}

func normaliseScore(raw float64) int {
	if raw <= 0 || math.IsNaN(raw) {
		return 0
	}
	return min(int(math.Round(raw/maxRawScore*100)), maxReportedScore) //nolint:mnd // percentage.
}

// MatchPrograms ranks programs for req.
//
// Programs needing more than one day beyond the user's availability are excluded. The rest are sorted by score,
// highest first, keeping the input order on ties. Scores of at least TopPickMinimumScore are top picks, lower
// positive scores are other options and zero scores are dropped.
func MatchPrograms(programs []TrainingProgram, req MatchRequest) ProgramMatches {
	scored := make([]ScoredProgram, 0, len(programs))
	for _, p := range programs {
		if p.MinDays-1 > req.DaysPerWeek {
			continue
		}
		scored = append(scored, ScoreProgram(p, req.Goals, req.Experience, req.DaysPerWeek))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	var matches ProgramMatches
	for _, sp := range scored {
		switch {
		case sp.Score >= TopPickMinimumScore:
			matches.TopPicks = append(matches.TopPicks, sp)
		case sp.Score > 0:
			matches.OtherOptions = append(matches.OtherOptions, sp)
		}
	}
	return matches
}
