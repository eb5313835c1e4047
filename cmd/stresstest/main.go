package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/myrjola/liftcoach/internal/e2etest"
	"github.com/myrjola/liftcoach/internal/logging"
	"github.com/myrjola/liftcoach/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	scenarioTimeout         = 30 * time.Second
	maxConcurrentOperations = 20
	successRateThreshold    = 95.0
	percentageMultiplier    = 100
	defaultNumUsers         = 50
	// firstUserID keeps stress test users apart from real ones.
	firstUserID = 1_000_000
	// sessionsPerUser builds enough history for the progression engine to compare sessions.
	sessionsPerUser = 2
	baseWeight      = 95.0
	weightStep      = 5.0
	baseReps        = 8
)

// userScenario trains one user through several sessions, adding weight each time.
func userScenario(ctx context.Context, client *e2etest.Client, userIndex int, logger *slog.Logger) error {
	for session := range sessionsPerUser {
		weight := baseWeight + weightStep*float64(session+userIndex%4) //nolint:mnd // spread users over four weights.
		result, err := client.RunWorkoutScenario(ctx, "Bench Press", weight, baseReps+session)
		if err != nil {
			return fmt.Errorf("session %d: %w", session, err)
		}
		logger.LogAttrs(ctx, slog.LevelDebug, "Session completed",
			slog.Int("user_index", userIndex),
			slog.Int64("workout_id", result.WorkoutID),
			slog.Int("recommendations", result.Recommendations),
			slog.Int("records", result.Records))
	}
	return nil
}

// RunLoadTest runs the scenario for numUsers users concurrently.
func RunLoadTest(ctx context.Context, url string, numUsers int, logger *slog.Logger) error {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_users", numUsers))

	var successCount, failureCount atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	for i := range numUsers {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			client := e2etest.NewClient(url, int64(firstUserID+i))
			if err := userScenario(scenarioCtx, client, i, logger); err != nil {
				failureCount.Add(1)
				// Failures are counted instead of cancelling the other users.
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.Int("user_index", i),
					slog.Any("error", err))
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(numUsers) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) < 2 || len(os.Args) > 3 { //nolint:mnd // hostname and optional user count.
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname> [users]")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		numUsers = defaultNumUsers
		start    = time.Now()
	)
	if len(os.Args) == 3 { //nolint:mnd // user count given.
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			logger.LogAttrs(ctx, slog.LevelError, "users must be a positive number", slog.String("users", os.Args[2]))
			os.Exit(1)
		}
		numUsers = n
	}

	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if err := e2etest.NewClient(url, firstUserID).WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	if err := RunLoadTest(ctx, url, numUsers, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)),
		slog.Int("users_tested", numUsers))
}
