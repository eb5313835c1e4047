package training_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/liftcoach/internal/training"
)

func weeksAgo(n int, days int) time.Time {
	return monday.AddDate(0, 0, -7*n+days)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{name: "monday", in: monday, want: "2026-03-02"},
		{name: "sunday night", in: time.Date(2026, time.March, 8, 23, 59, 0, 0, time.UTC), want: "2026-03-02"},
		{name: "tuesday", in: time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC), want: "2026-03-09"},
		{name: "across years", in: time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC), want: "2025-12-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := training.WeekKey(tt.in, time.UTC); got != tt.want {
				t.Errorf("WeekKey() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeStreak(t *testing.T) {
	wednesday := monday.AddDate(0, 0, 2)
	tests := []struct {
		name        string
		completions []time.Time
		wantCurrent int
		wantLongest int
		wantWeek    int
	}{
		{
			name:        "no workouts",
			completions: nil,
		},
		{
			name:        "three consecutive weeks",
			completions: []time.Time{weeksAgo(0, 1), weeksAgo(1, 3), weeksAgo(2, 5)},
			wantCurrent: 3,
			wantLongest: 3,
			wantWeek:    1,
		},
		{
			name:        "several workouts in one week count once",
			completions: []time.Time{weeksAgo(0, 0), weeksAgo(0, 1), weeksAgo(0, 2), weeksAgo(1, 0)},
			wantCurrent: 2,
			wantLongest: 2,
			wantWeek:    3,
		},
		{
			name:        "empty current week is forgiven",
			completions: []time.Time{weeksAgo(1, 0), weeksAgo(2, 0)},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:        "two empty weeks end the streak",
			completions: []time.Time{weeksAgo(2, 0), weeksAgo(3, 0)},
			wantCurrent: 0,
			wantLongest: 2,
		},
		{
			name: "gap resets the current streak but not the longest",
			completions: []time.Time{
				weeksAgo(0, 0), weeksAgo(1, 0),
				weeksAgo(3, 0), weeksAgo(4, 0), weeksAgo(5, 0), weeksAgo(6, 0),
			},
			wantCurrent: 2,
			wantLongest: 4,
			wantWeek:    1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := training.ComputeStreak(tt.completions, wednesday, time.UTC)
			if got.CurrentStreak != tt.wantCurrent {
				t.Errorf("CurrentStreak = %d, want %d", got.CurrentStreak, tt.wantCurrent)
			}
			if got.LongestStreak != tt.wantLongest {
				t.Errorf("LongestStreak = %d, want %d", got.LongestStreak, tt.wantLongest)
			}
			if got.ThisWeekWorkouts != tt.wantWeek {
				t.Errorf("ThisWeekWorkouts = %d, want %d", got.ThisWeekWorkouts, tt.wantWeek)
			}
			if got.TotalWorkouts != len(tt.completions) {
				t.Errorf("TotalWorkouts = %d, want %d", got.TotalWorkouts, len(tt.completions))
			}
			if got.LongestStreak < got.CurrentStreak {
				t.Errorf("LongestStreak %d is shorter than CurrentStreak %d", got.LongestStreak, got.CurrentStreak)
			}
		})
	}
}

func TestComputeStreak_lastWorkoutDate(t *testing.T) {
	latest := weeksAgo(0, 1)
	got := training.ComputeStreak([]time.Time{weeksAgo(1, 0), latest, weeksAgo(2, 0)}, monday.AddDate(0, 0, 3), time.UTC)
	if got.LastWorkoutDate == nil || !got.LastWorkoutDate.Equal(latest) {
		t.Errorf("LastWorkoutDate = %v, want %v", got.LastWorkoutDate, latest)
	}

	if empty := training.ComputeStreak(nil, monday, time.UTC); empty.LastWorkoutDate != nil {
		t.Errorf("LastWorkoutDate = %v, want nil", empty.LastWorkoutDate)
	}
}

func TestComputeStreak_weeksInLocation(t *testing.T) {
	helsinki, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	// Sunday 23:30 UTC is already Monday in Helsinki.
	sundayNight := time.Date(2026, time.March, 8, 23, 30, 0, 0, time.UTC)
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	utc := training.ComputeStreak([]time.Time{sundayNight}, now, time.UTC)
	if utc.ThisWeekWorkouts != 0 || utc.CurrentStreak != 1 {
		t.Errorf("UTC: this week %d, current %d, want 0 and 1", utc.ThisWeekWorkouts, utc.CurrentStreak)
	}
	local := training.ComputeStreak([]time.Time{sundayNight}, now, helsinki)
	if local.ThisWeekWorkouts != 1 || local.CurrentStreak != 1 {
		t.Errorf("Helsinki: this week %d, current %d, want 1 and 1", local.ThisWeekWorkouts, local.CurrentStreak)
	}
}

func TestComputeStreak_acrossDaylightSaving(t *testing.T) {
	helsinki, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	// Clocks go forward on the last Sunday of March, making that week an hour shorter.
	completions := []time.Time{
		time.Date(2026, time.March, 18, 18, 0, 0, 0, helsinki),
		time.Date(2026, time.March, 25, 18, 0, 0, 0, helsinki),
		time.Date(2026, time.April, 1, 18, 0, 0, 0, helsinki),
		time.Date(2026, time.April, 8, 18, 0, 0, 0, helsinki),
	}
	// Current streak is broken so only the longest streak scan sees the run.
	now := time.Date(2026, time.May, 20, 12, 0, 0, 0, helsinki)

	got := training.ComputeStreak(completions, now, helsinki)
	want := training.StreakData{
		CurrentStreak:    0,
		LongestStreak:    4,
		TotalWorkouts:    4,
		ThisWeekWorkouts: 0,
		LastWorkoutDate:  &completions[3],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeStreak() mismatch (-want +got):\n%s", diff)
	}
}
