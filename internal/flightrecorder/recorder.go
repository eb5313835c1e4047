// Package flightrecorder keeps a rolling runtime trace and writes it to disk when a request overruns its deadline.
package flightrecorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"
)

const (
	defaultMinAge   = time.Minute
	defaultMaxBytes = 16 << 20
	// DefaultCooldown is the minimum time between two captures.
	DefaultCooldown = 30 * time.Minute
)

type Recorder struct {
	logger      *slog.Logger
	fr          *trace.FlightRecorder
	dir         string
	cooldown    time.Duration
	now         func() time.Time
	lastCapture atomic.Int64
}

type Config struct {
	// Dir receives the trace files. It is created when missing.
	Dir string
	// Cooldown defaults to DefaultCooldown.
	Cooldown time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func New(logger *slog.Logger, cfg Config) (*Recorder, error) {
	if cfg.Dir == "" {
		return nil, errors.New("traces directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil { //nolint:mnd // owner and group only.
		return nil, fmt.Errorf("create traces directory: %w", err)
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Recorder{
		logger:      logger,
		fr:          trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: defaultMinAge, MaxBytes: defaultMaxBytes}),
		dir:         cfg.Dir,
		cooldown:    cfg.Cooldown,
		now:         cfg.Now,
		lastCapture: atomic.Int64{},
	}, nil
}

func (r *Recorder) Start(ctx context.Context) error {
	if err := r.fr.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started", slog.String("dir", r.dir))
	return nil
}

func (r *Recorder) Stop(ctx context.Context) {
	r.fr.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// Capture writes the recorded trace to a file named after reason. It returns the file path, or an empty path when
// a capture happened within the cooldown.
func (r *Recorder) Capture(ctx context.Context, reason string) (string, error) {
	now := r.now()
	last := r.lastCapture.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture during cooldown",
			slog.Time("last_capture", time.Unix(0, last)))
		return "", nil
	}
	if !r.lastCapture.CompareAndSwap(last, now.UnixNano()) {
		return "", nil
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s-%s.trace", reason, now.UTC().Format("20060102-150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create trace file: %w", err)
	}
	n, err := r.fr.WriteTo(f)
	if err = errors.Join(err, f.Close()); err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace",
		slog.String("file", path), slog.String("reason", reason), slog.Int64("bytes", n))
	return path, nil
}
