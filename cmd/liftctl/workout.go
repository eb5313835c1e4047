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

func newWorkoutCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workout",
		Aliases: []string{"w"},
		Short:   "Plan and complete workouts",
	}
	cmd.AddCommand(newWorkoutCreateCmd(c), newWorkoutCompleteCmd(c))
	return cmd
}

// plannedExercise is an exercise parsed from "Name:SETSxREPS", for example "Bench Press:3x8-12".
type plannedExercise struct {
	name string
	sets int
	reps string
}

func parsePlannedExercise(s string) (plannedExercise, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return plannedExercise{}, fmt.Errorf("exercise %q: want NAME:SETSxREPS", s)
	}
	name := strings.TrimSpace(s[:i])
	setsStr, reps, ok := strings.Cut(strings.ToLower(s[i+1:]), "x")
	if !ok {
		return plannedExercise{}, fmt.Errorf("exercise %q: want NAME:SETSxREPS", s)
	}
	sets, err := strconv.Atoi(strings.TrimSpace(setsStr))
	if err != nil || sets <= 0 {
		return plannedExercise{}, fmt.Errorf("exercise %q: invalid set count %q", s, setsStr)
	}
	return plannedExercise{name: name, sets: sets, reps: strings.TrimSpace(reps)}, nil
}

func newWorkoutCreateCmd(c *cli) *cobra.Command {
	var (
		name      string
		exercises []string
		rest      int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Plan a workout",
		Long: `Plan a workout from exercises given as NAME:SETSxREPS.

EXAMPLES:

  liftctl workout create --name Push --exercise "Bench Press:3x8-12" --exercise "Overhead Press:3x5"`,
		Args: cobra.NoArgs,
		RunE: c.runE(func(cmd *cobra.Command, _ []string) error {
			if len(exercises) == 0 {
				return errors.New("at least one --exercise is required")
			}
			planned := make([]training.PlannedExercise, 0, len(exercises))
			for _, e := range exercises {
				pe, err := parsePlannedExercise(e)
				if err != nil {
					return err
				}
				id, err := c.store.FindExerciseID(cmd.Context(), pe.name)
				if err != nil {
					return fmt.Errorf("find exercise: %w", err)
				}
				planned = append(planned, training.PlannedExercise{
					ExerciseID:  id,
					Sets:        pe.sets,
					Reps:        pe.reps,
					RestSeconds: rest,
				})
			}
			workoutID, err := c.coach.CreateWorkout(cmd.Context(), c.userID, name, planned)
			if err != nil {
				return fmt.Errorf("create workout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("✓ Planned %s", name),
				color.New(color.Faint).Sprintf("(workout %d)", workoutID))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "workout name")
	cmd.Flags().StringArrayVarP(&exercises, "exercise", "e", nil, "exercise as NAME:SETSxREPS, repeatable")
	cmd.Flags().IntVar(&rest, "rest", 90, "rest between sets in seconds") //nolint:mnd // common default.
	return cmd
}

func newWorkoutCompleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <workout-id>",
		Short: "Complete a workout and see what comes next",
		Args:  cobra.ExactArgs(1),
		RunE: c.runE(func(cmd *cobra.Command, args []string) error {
			workoutID, err := parseID(args[0])
			if err != nil {
				return err
			}
			summary, err := c.coach.CompleteWorkout(cmd.Context(), c.userID, workoutID)
			if err != nil {
				return fmt.Errorf("complete workout: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, color.GreenString("✓ Workout %d complete", workoutID))
			printRecommendations(out, summary.Recommendations)
			printRecords(out, summary.Records)
			printStreak(out, summary.Streak)
			return nil
		}),
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
