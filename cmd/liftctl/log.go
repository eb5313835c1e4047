package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/myrjola/liftcoach/internal/training"
	"github.com/spf13/cobra"
)

// parseReps parses comma separated rep counts such as "12,12,10", one per set.
func parseReps(s string) ([]int, error) {
	var reps []int
	for part := range strings.SplitSeq(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid rep count %q", part)
		}
		reps = append(reps, n)
	}
	return reps, nil
}

func newLogCmd(c *cli) *cobra.Command {
	var (
		workoutID int64
		exercise  string
		weight    float64
		reps      string
		rpe       int
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log completed sets of an exercise",
		Long: `Log completed sets of one exercise. Each comma separated rep count is one set.

Leave out --workout to log sets done outside a planned workout.

EXAMPLES:

  liftctl log --workout 1 --exercise "Bench Press" --weight 100 --reps 12,12,11 --rpe 8
  liftctl log --exercise "Deadlift" --weight 315 --reps 5`,
		Args: cobra.NoArgs,
		RunE: c.runE(func(cmd *cobra.Command, _ []string) error {
			if exercise == "" {
				return errors.New("--exercise is required")
			}
			counts, err := parseReps(reps)
			if err != nil {
				return err
			}
			exerciseID, err := c.store.FindExerciseID(cmd.Context(), exercise)
			if err != nil {
				return fmt.Errorf("find exercise: %w", err)
			}
			sets := make([]training.CompletedSet, 0, len(counts))
			for i, n := range counts {
				sets = append(sets, training.CompletedSet{
					ExerciseID:    exerciseID,
					SetNumber:     i + 1,
					Weight:        weight,
					RepsCompleted: n,
					RPE:           rpe,
				})
			}
			var workout *int64
			if workoutID > 0 {
				workout = &workoutID
			}
			if err = c.coach.LogSets(cmd.Context(), c.userID, workout, sets); err != nil {
				return fmt.Errorf("log sets: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Logged %d sets of %s at %s lbs",
				len(sets), exercise, strconv.FormatFloat(weight, 'f', -1, 64)))
			return nil
		}),
	}
	cmd.Flags().Int64VarP(&workoutID, "workout", "w", 0, "workout id, empty for sets outside a workout")
	cmd.Flags().StringVarP(&exercise, "exercise", "e", "", "exercise name")
	cmd.Flags().Float64Var(&weight, "weight", 0, "weight in lbs")
	cmd.Flags().StringVarP(&reps, "reps", "r", "", "comma separated reps per set")
	cmd.Flags().IntVar(&rpe, "rpe", 0, "rate of perceived exertion from 6 to 10, 0 when not reported")
	return cmd
}
