package training

import (
	"cmp"
	"slices"
)

const (
	strengthWeeklySets    = 10
	hypertrophyWeeklySets = 15
	defaultWeeklySets     = 12
)

// VolumeTarget is the weekly number of sets per muscle group suited to goal.
func VolumeTarget(goal Goal) int {
	switch goal { //nolint:exhaustive // remaining goals share the moderate target.
	case GoalStrength:
		return strengthWeeklySets
	case GoalHypertrophy, GoalBodybuilding:
		return hypertrophyWeeklySets
	default:
		return defaultWeeklySets
	}
}

// CountVolume counts sets per muscle group. Sets without a muscle group are ignored.
// The result is ordered by set count, highest first, then by muscle group.
func CountVolume(logs []SetLog, goal Goal) []MuscleVolume {
	counts := make(map[string]int)
	for _, l := range logs {
		if l.MuscleGroup != "" {
			counts[l.MuscleGroup]++
		}
	}
	target := VolumeTarget(goal)
	volume := make([]MuscleVolume, 0, len(counts))
	for group, sets := range counts {
		volume = append(volume, MuscleVolume{MuscleGroup: group, Sets: sets, Target: target})
	}
	slices.SortFunc(volume, func(a, b MuscleVolume) int {
		return cmp.Or(cmp.Compare(b.Sets, a.Sets), cmp.Compare(a.MuscleGroup, b.MuscleGroup))
	})
	return volume
}
