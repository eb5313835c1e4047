package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/liftcoach/internal/logging"
	"github.com/myrjola/liftcoach/internal/sqlite"
	"github.com/myrjola/liftcoach/internal/training"
	"github.com/spf13/cobra"
)

// cli holds the state shared by the subcommands. It is populated before each command runs.
type cli struct {
	dbURL    string
	userID   int64
	timezone string
	verbose  bool

	db    *sqlite.Database
	store *training.SQLiteStore
	coach *training.Service
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "liftctl",
		Short: "Strength training coach",
		Long: `liftctl runs the liftcoach coaching computations against a local database.

QUICK START:

  $ liftctl workout create --name Push --exercise "Bench Press:3x8-12"
  $ liftctl log --workout 1 --exercise "Bench Press" --weight 100 --reps 12,12,11 --rpe 8
  $ liftctl workout complete 1       # Progression, records and streak
  $ liftctl programs match --goal strength --experience beginner --days 3`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.dbURL, "db", "./liftcoach.sqlite3", "SQLite database file")
	flags.Int64VarP(&c.userID, "user", "u", 1, "user id to act as")
	flags.StringVar(&c.timezone, "timezone", "UTC", "time zone for calendar days and weeks")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newProgramsCmd(c),
		newWorkoutCmd(c),
		newLogCmd(c),
		newProgressionCmd(c),
		newRecordsCmd(c),
		newAchievementsCmd(c),
		newStreakCmd(c),
		newVolumeCmd(c),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	if c.userID <= 0 {
		return errors.New("--user must be a positive id")
	}
	loc, err := time.LoadLocation(c.timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", c.timezone, err)
	}
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: nil,
	})))

	if c.db, err = sqlite.NewDatabase(cmd.Context(), c.dbURL, logger); err != nil {
		return fmt.Errorf("open database %s: %w", c.dbURL, err)
	}
	c.store = training.NewSQLiteStore(c.db, logger)
	c.coach = training.NewService(c.store, logger, training.Config{
		FetchTimeout:     0,
		FetchConcurrency: 0,
		Location:         loc,
		Now:              time.Now,
		Metrics:          nil,
	})
	return nil
}

// runE closes the database once fn returns, whether or not it failed.
func (c *cli) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, c.close())
		}()
		return fn(cmd, args)
	}
}

func (c *cli) close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
