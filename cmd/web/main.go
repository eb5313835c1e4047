package main

import (
	"context"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myrjola/liftcoach/internal/envstruct"
	"github.com/myrjola/liftcoach/internal/errors"
	"github.com/myrjola/liftcoach/internal/flightrecorder"
	"github.com/myrjola/liftcoach/internal/logging"
	"github.com/myrjola/liftcoach/internal/metrics"
	"github.com/myrjola/liftcoach/internal/sqlite"
	"github.com/myrjola/liftcoach/internal/training"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yuin/goldmark"
)

// exerciseFinder resolves exercise names to ids for API clients.
type exerciseFinder interface {
	FindExerciseID(ctx context.Context, name string) (int64, error)
}

type application struct {
	logger         *slog.Logger
	coach          *training.Service
	exercises      exerciseFinder
	metrics        *metrics.Manager
	registry       *prometheus.Registry
	limiter        *userRateLimiter
	recorder       *flightrecorder.Recorder
	markdown       goldmark.Markdown
	templates      *template.Template
	handlerTimeout time.Duration
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"LIFTCOACH_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"LIFTCOACH_SQLITE_URL" envDefault:"./liftcoach.sqlite3"`
	// Timezone decides calendar days and week boundaries for sessions and streaks.
	Timezone         string        `env:"LIFTCOACH_TIMEZONE" envDefault:"UTC"`
	FetchTimeout     time.Duration `env:"LIFTCOACH_FETCH_TIMEOUT" envDefault:"3s"`
	FetchConcurrency int           `env:"LIFTCOACH_FETCH_CONCURRENCY" envDefault:"4"`
	HandlerTimeout   time.Duration `env:"LIFTCOACH_HANDLER_TIMEOUT" envDefault:"5s"`
	// RateLimitPerMinute and RateLimitBurst bound how often one user may trigger computations.
	RateLimitPerMinute int `env:"LIFTCOACH_RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	RateLimitBurst     int `env:"LIFTCOACH_RATE_LIMIT_BURST" envDefault:"10"`
	// TracesDir enables the flight recorder. Traces of timed out requests are written there.
	TracesDir string `env:"LIFTCOACH_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return errors.Wrap(err, "load timezone", slog.String("timezone", cfg.Timezone))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("liftcoach", "api", registry)

	var recorder *flightrecorder.Recorder
	if cfg.TracesDir != "" {
		if recorder, err = flightrecorder.New(logger, flightrecorder.Config{Dir: cfg.TracesDir}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = recorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer recorder.Stop(ctx)
	}

	templates, err := parseTemplates()
	if err != nil {
		return errors.Wrap(err, "parse templates")
	}

	store := training.NewSQLiteStore(db, logger)
	app := application{
		logger: logger,
		coach: training.NewService(store, logger, training.Config{
			FetchTimeout:     cfg.FetchTimeout,
			FetchConcurrency: cfg.FetchConcurrency,
			Location:         loc,
			Now:              time.Now,
			Metrics:          metricsManager,
		}),
		exercises:      store,
		metrics:        metricsManager,
		registry:       registry,
		limiter:        newUserRateLimiter(perMinute(cfg.RateLimitPerMinute), cfg.RateLimitBurst),
		recorder:       recorder,
		markdown:       goldmark.New(),
		templates:      templates,
		handlerTimeout: cfg.HandlerTimeout,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	logger := logging.NewLogger(slog.LevelDebug)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
