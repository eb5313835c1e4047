package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/myrjola/liftcoach/internal/training"
	"github.com/spf13/cobra"
)

func newProgressionCmd(c *cli) *cobra.Command {
	var exercises []string
	cmd := &cobra.Command{
		Use:   "progression [workout-id]",
		Short: "Recommend the next session of a workout, or show stored recommendations",
		Long: `With a workout id, recommend weight and reps for the next session of every exercise in the workout.
Without one, show the stored recommendations, optionally filtered by --exercise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.runE(func(cmd *cobra.Command, args []string) error {
			var (
				recs []training.Recommendation
				err  error
			)
			if len(args) == 1 {
				var workoutID int64
				if workoutID, err = parseID(args[0]); err != nil {
					return err
				}
				if recs, err = c.coach.ComputeProgression(cmd.Context(), c.userID, workoutID); err != nil {
					return fmt.Errorf("compute progression: %w", err)
				}
			} else {
				ids := make([]int64, 0, len(exercises))
				for _, name := range exercises {
					var id int64
					if id, err = c.store.FindExerciseID(cmd.Context(), name); err != nil {
						return fmt.Errorf("find exercise: %w", err)
					}
					ids = append(ids, id)
				}
				if recs, err = c.coach.Recommendations(cmd.Context(), c.userID, ids); err != nil {
					return fmt.Errorf("list recommendations: %w", err)
				}
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recommendations yet. Log some sets first.")
				return nil
			}
			printRecommendations(cmd.OutOrStdout(), recs)
			return nil
		}),
	}
	cmd.Flags().StringArrayVarP(&exercises, "exercise", "e", nil, "filter stored recommendations by exercise")
	return cmd
}

func newRecordsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "records <workout-id>",
		Short: "Detect personal records set in a workout",
		Args:  cobra.ExactArgs(1),
		RunE: c.runE(func(cmd *cobra.Command, args []string) error {
			workoutID, err := parseID(args[0])
			if err != nil {
				return err
			}
			records, err := c.coach.DetectPRs(cmd.Context(), c.userID, workoutID)
			if err != nil {
				return fmt.Errorf("detect records: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No new personal records.")
				return nil
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		}),
	}
}

func newAchievementsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List personal record achievements",
		Args:  cobra.NoArgs,
		RunE: c.runE(func(cmd *cobra.Command, _ []string) error {
			achievements, err := c.coach.Achievements(cmd.Context(), c.userID)
			if err != nil {
				return fmt.Errorf("list achievements: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(achievements) == 0 {
				fmt.Fprintln(out, "No achievements yet.")
				return nil
			}
			faint := color.New(color.Faint)
			for _, a := range achievements {
				fmt.Fprintf(out, "%s %s %s lbs x %d %s\n",
					faint.Sprint(a.AchievedAt.Format("2006-01-02 15:04")),
					padRight(a.Value.ExerciseName, 20),
					formatWeight(a.Value.Weight),
					a.Value.Reps,
					faint.Sprintf("(was %s)", formatWeight(a.Value.PreviousBest)))
			}
			return nil
		}),
	}
}

func newStreakCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show your weekly training streak",
		Args:  cobra.NoArgs,
		RunE: c.runE(func(cmd *cobra.Command, _ []string) error {
			streak, err := c.coach.ComputeStreak(cmd.Context(), c.userID)
			if err != nil {
				return fmt.Errorf("compute streak: %w", err)
			}
			printStreak(cmd.OutOrStdout(), streak)
			return nil
		}),
	}
}

func newVolumeCmd(c *cli) *cobra.Command {
	var goal string
	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Show sets per muscle group over the last week",
		Args:  cobra.NoArgs,
		RunE: c.runE(func(cmd *cobra.Command, _ []string) error {
			volumes, err := c.coach.WeeklyVolume(cmd.Context(), c.userID, training.Goal(goal))
			if err != nil {
				return fmt.Errorf("weekly volume: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(volumes) == 0 {
				fmt.Fprintln(out, "No sets logged this week.")
				return nil
			}
			for _, v := range volumes {
				count := fmt.Sprintf("%d/%d sets", v.Sets, v.Target)
				if v.Sets >= v.Target {
					count = color.GreenString(count)
				}
				fmt.Fprintf(out, "%s %s\n", padRight(v.MuscleGroup, 12), count)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&goal, "goal", "g", string(training.GoalGeneral), "goal deciding the weekly set target")
	return cmd
}

func printRecommendations(out io.Writer, recs []training.Recommendation) {
	faint := color.New(color.Faint)
	for _, rec := range recs {
		fmt.Fprintf(out, "%s %s lbs x %s %s\n",
			padRight(rec.ExerciseName, 20),
			formatWeight(rec.RecommendedWeight),
			rec.RecommendedReps,
			recommendationColor(rec.Type).Sprint(string(rec.Type)))
		fmt.Fprintf(out, "  %s\n", faint.Sprint(rec.Reason))
	}
}

func recommendationColor(t training.RecommendationType) *color.Color {
	switch t {
	case training.IncreaseWeight:
		return color.New(color.FgGreen)
	case training.Deload:
		return color.New(color.FgYellow)
	case training.IncreaseReps, training.Maintain:
		return color.New(color.FgCyan)
	default:
		return color.New(color.Reset)
	}
}

func printRecords(out io.Writer, records []training.PersonalRecord) {
	for _, pr := range records {
		fmt.Fprintln(out, color.New(color.FgYellow, color.Bold).Sprintf("★ New PR: %s %s lbs x %d (+%s)",
			pr.ExerciseName, formatWeight(pr.NewWeight), pr.Reps, formatWeight(pr.Improvement)))
	}
}

func printStreak(out io.Writer, s training.StreakData) {
	fmt.Fprintf(out, "Streak: %d weeks (longest %d)\n", s.CurrentStreak, s.LongestStreak)
	fmt.Fprintf(out, "Workouts: %d total, %d this week\n", s.TotalWorkouts, s.ThisWeekWorkouts)
	if s.LastWorkoutDate != nil {
		fmt.Fprintf(out, "Last workout: %s\n", s.LastWorkoutDate.Format("2006-01-02"))
	}
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
