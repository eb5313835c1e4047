package training

// sessionBest is the heaviest set of an exercise within one workout.
type sessionBest struct {
	exerciseID   int64
	exerciseName string
	weight       float64
	reps         int
}

// bestSets returns the heaviest set per exercise in order of first appearance.
// Among sets of equal weight the earliest one wins.
func bestSets(logs []SetLog) []sessionBest {
	var (
		best  []sessionBest
		index = make(map[int64]int)
	)
	for _, l := range logs {
		i, ok := index[l.ExerciseID]
		if !ok {
			index[l.ExerciseID] = len(best)
			best = append(best, sessionBest{
				exerciseID:   l.ExerciseID,
				exerciseName: l.ExerciseName,
				weight:       l.Weight,
				reps:         l.RepsCompleted,
			})
			continue
		}
		if l.Weight > best[i].weight {
			best[i].weight = l.Weight
			best[i].reps = l.RepsCompleted
		}
	}
	return best
}

// DetectRecords compares the heaviest set of each exercise in a workout against previousBest, the heaviest weight
// previously logged for the exercise outside that workout.
//
// A first ever log of an exercise is not a record since there is nothing to beat.
func DetectRecords(workoutLogs []SetLog, previousBest map[int64]float64) []PersonalRecord {
	var records []PersonalRecord
	for _, b := range bestSets(workoutLogs) {
		prev := previousBest[b.exerciseID]
		if b.weight <= prev || prev <= 0 {
			continue
		}
		records = append(records, PersonalRecord{
			ExerciseID:   b.exerciseID,
			ExerciseName: b.exerciseName,
			NewWeight:    b.weight,
			PreviousBest: prev,
			Reps:         b.reps,
			Improvement:  b.weight - prev,
		})
	}
	return records
}
