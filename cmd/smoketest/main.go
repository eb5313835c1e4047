package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/liftcoach/internal/e2etest"
	"github.com/myrjola/liftcoach/internal/logging"
	"github.com/myrjola/liftcoach/internal/testhelpers"
)

// smokeUserID is reserved for smoke tests so that their workouts do not mix with real users.
const smokeUserID = 999_999

func smokeTest(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var programs []struct {
		Slug string `json:"slug"`
	}
	if err := client.JSON(ctx, http.MethodGet, "/api/programs", nil, &programs); err != nil {
		return fmt.Errorf("list programs: %w", err)
	}
	if len(programs) == 0 {
		return errors.New("program catalogue is empty")
	}
	if _, err := client.RunWorkoutScenario(ctx, "Barbell Back Squat", 135, 12); err != nil { //nolint:mnd // empty bar plus plates.
		return fmt.Errorf("workout scenario: %w", err)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client := e2etest.NewClient(url, smokeUserID)
	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err := smokeTest(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "smoke test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
}
