package training

import (
	"slices"
	"time"
)

const (
	weekDays = 7
	// Consecutive week keys are 6 to 8 days apart so that daylight saving shifts do not break a streak.
	minWeekGap = 6 * 24 * time.Hour
	maxWeekGap = 8 * 24 * time.Hour
)

// WeekStart returns midnight of the Monday of t's week in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	sinceMonday := (int(local.Weekday()) + weekDays - 1) % weekDays
	return time.Date(local.Year(), local.Month(), local.Day()-sinceMonday, 0, 0, 0, 0, loc)
}

// WeekKey is the date of the Monday of t's week in loc, formatted as YYYY-MM-DD.
func WeekKey(t time.Time, loc *time.Location) string {
	return WeekStart(t, loc).Format(time.DateOnly)
}

// ComputeStreak derives weekly training streaks from workout completion times.
//
// A week counts when it has at least one workout. The current streak counts consecutive weeks backwards from the
// week of now. An empty current week is forgiven when the previous week has a workout. The longest streak is never
// shorter than the current one.
func ComputeStreak(completions []time.Time, now time.Time, loc *time.Location) StreakData {
	counts := make(map[string]int)
	var last *time.Time
	for _, c := range completions {
		counts[WeekKey(c, loc)]++
		if last == nil || c.After(*last) {
			last = &c
		}
	}

	thisWeek := WeekStart(now, loc)
	cursor := thisWeek
	if counts[cursor.Format(time.DateOnly)] == 0 {
		cursor = cursor.AddDate(0, 0, -weekDays)
	}
	current := 0
	for counts[cursor.Format(time.DateOnly)] > 0 {
		current++
		cursor = cursor.AddDate(0, 0, -weekDays)
	}

	return StreakData{
		CurrentStreak:    current,
		LongestStreak:    max(current, longestStreak(counts, loc)),
		TotalWorkouts:    len(completions),
		ThisWeekWorkouts: counts[thisWeek.Format(time.DateOnly)],
		LastWorkoutDate:  last,
	}
}

func longestStreak(counts map[string]int, loc *time.Location) int {
	weeks := make([]time.Time, 0, len(counts))
	for key := range counts {
		monday, err := time.ParseInLocation(time.DateOnly, key, loc)
		if err != nil {
			continue
		}
		weeks = append(weeks, monday)
	}
	slices.SortFunc(weeks, time.Time.Compare)

	longest, run := 0, 0
	for i, week := range weeks {
		run++
		if i > 0 {
			if gap := week.Sub(weeks[i-1]); gap < minWeekGap || gap > maxWeekGap {
				run = 1
			}
		}
		longest = max(longest, run)
	}
	return longest
}
