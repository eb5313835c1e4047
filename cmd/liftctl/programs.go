package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/myrjola/liftcoach/internal/training"
	"github.com/spf13/cobra"
)

func newProgramsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "programs",
		Aliases: []string{"p"},
		Short:   "Browse, match and generate training programs",
	}
	cmd.AddCommand(newProgramsListCmd(c), newProgramsMatchCmd(c), newProgramsGenerateCmd(c))
	return cmd
}

func newProgramsListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the program catalogue",
		Args:    cobra.NoArgs,
		RunE: c.runE(func(cmd *cobra.Command, _ []string) error {
			programs, err := c.coach.Programs(cmd.Context())
			if err != nil {
				return fmt.Errorf("list programs: %w", err)
			}
			out := cmd.OutOrStdout()
			faint := color.New(color.Faint)
			for _, p := range programs {
				fmt.Fprintf(out, "%s %s %s %s\n",
					padRight(p.Slug, 22),
					padRight(p.Name, 22),
					padRight(string(p.Category), 14),
					faint.Sprintf("%s, %s days", p.Difficulty, dayRange(p)))
			}
			return nil
		}),
	}
}

func newProgramsMatchCmd(c *cli) *cobra.Command {
	var (
		goals      []string
		experience string
		days       int
	)
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank programs for your goals, experience and schedule",
		Long: `Rank the program catalogue against up to three goals in priority order.

GOALS:

  strength, hypertrophy, bodybuilding, power, endurance, flexibility, athletic, general

EXAMPLES:

  liftctl programs match --goal strength --goal hypertrophy --experience beginner --days 3`,
		Args: cobra.NoArgs,
		RunE: c.runE(func(cmd *cobra.Command, _ []string) error {
			req := training.MatchRequest{
				Goals:       make([]training.Goal, 0, len(goals)),
				Experience:  training.Experience(experience),
				DaysPerWeek: days,
			}
			for _, g := range goals {
				req.Goals = append(req.Goals, training.Goal(strings.ToLower(g)))
			}
			matches, err := c.coach.MatchPrograms(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("match programs: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(matches.TopPicks) == 0 && len(matches.OtherOptions) == 0 {
				fmt.Fprintln(out, "No matching programs.")
				return nil
			}
			printScored(out, color.New(color.FgGreen, color.Bold).Sprint("Top picks"), matches.TopPicks)
			printScored(out, color.New(color.Bold).Sprint("Other options"), matches.OtherOptions)
			return nil
		}),
	}
	cmd.Flags().StringArrayVarP(&goals, "goal", "g", nil, "goal in priority order, repeatable")
	cmd.Flags().StringVarP(&experience, "experience", "e", string(training.Beginner),
		"beginner, intermediate or advanced")
	cmd.Flags().IntVarP(&days, "days", "d", 3, "training days per week") //nolint:mnd // common default.
	return cmd
}

func newProgramsGenerateCmd(c *cli) *cobra.Command {
	var (
		goal      string
		days      int
		equipment []string
	)
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Plan a weekly program for your goal, schedule and equipment",
		Long: `Plan one workout per training day and store them. Exercises you lack the equipment for are swapped
for ones you can do. Bodyweight exercises are always available.

EQUIPMENT:

  barbell, dumbbell, cable, machine, kettlebell, band, bodyweight

EXAMPLES:

  liftctl programs generate --goal hypertrophy --days 4 --equipment dumbbell --equipment cable`,
		Args: cobra.NoArgs,
		RunE: c.runE(func(cmd *cobra.Command, _ []string) error {
			req := training.GenerateRequest{
				Goal:        training.Goal(strings.ToLower(goal)),
				DaysPerWeek: days,
				Equipment:   make([]training.Equipment, 0, len(equipment)),
			}
			for _, e := range equipment {
				req.Equipment = append(req.Equipment, training.Equipment(strings.ToLower(e)))
			}
			workouts, err := c.coach.GenerateProgram(cmd.Context(), c.userID, req)
			if err != nil {
				return fmt.Errorf("generate program: %w", err)
			}
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			faint := color.New(color.Faint)
			for _, w := range workouts {
				fmt.Fprintf(out, "%s %s\n", bold.Sprint(w.Name), faint.Sprintf("(workout %d)", w.ID))
				for _, we := range w.Exercises {
					line := fmt.Sprintf("  %s %dx%s, rest %ds", padRight(we.ExerciseName, 24), we.Sets, we.Reps,
						we.RestSeconds)
					for _, sub := range w.Substitutions {
						if sub.Chosen == we.ExerciseName {
							line += " " + faint.Sprintf("(substituted for %s)", sub.Requested)
						}
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&goal, "goal", "g", string(training.GoalGeneral), "training goal")
	cmd.Flags().IntVarP(&days, "days", "d", 3, "training days per week") //nolint:mnd // common default.
	cmd.Flags().StringArrayVarP(&equipment, "equipment", "E", nil, "available equipment, repeatable")
	return cmd
}

func printScored(out io.Writer, heading string, scored []training.ScoredProgram) {
	if len(scored) == 0 {
		return
	}
	fmt.Fprintln(out, heading)
	faint := color.New(color.Faint)
	for _, sp := range scored {
		fmt.Fprintf(out, "  %3d%% %s %s\n", sp.Score, padRight(sp.Program.Name, 22), faint.Sprint(sp.Program.Slug))
		for _, reason := range sp.MatchReasons {
			fmt.Fprintf(out, "        %s\n", faint.Sprint("· "+reason))
		}
	}
}

func dayRange(p training.TrainingProgram) string {
	if p.MinDays == p.MaxDays {
		return fmt.Sprint(p.MinDays)
	}
	return fmt.Sprintf("%d-%d", p.MinDays, p.MaxDays)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
