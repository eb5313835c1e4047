package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/myrjola/liftcoach/internal/contexthelpers"
	"github.com/myrjola/liftcoach/internal/flightrecorder"
	"github.com/myrjola/liftcoach/internal/metrics"
	"github.com/myrjola/liftcoach/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"
)

// sleepHandler sleeps for the sleep_ms query parameter unless the request is cancelled first.
func sleepHandler(w http.ResponseWriter, r *http.Request) {
	sleep, _ := time.ParseDuration(r.URL.Query().Get("sleep_ms") + "ms")
	select {
	case <-time.After(sleep):
		w.WriteHeader(http.StatusOK)
	case <-r.Context().Done():
	}
}

func Test_application_timeout(t *testing.T) {
	tests := []struct {
		name     string
		sleepMS  string
		timesOut bool
	}{
		{name: "completes within timeout", sleepMS: "500", timesOut: false},
		{name: "times out", sleepMS: "3000", timesOut: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				app := &application{ //nolint:exhaustruct // this is a test
					logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
					handlerTimeout: time.Second,
				}
				handler := app.timeout(http.HandlerFunc(sleepHandler))

				req := httptest.NewRequest(http.MethodGet, "/slow?sleep_ms="+tt.sleepMS, nil)
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)

				want := http.StatusOK
				if tt.timesOut {
					want = http.StatusServiceUnavailable
				}
				if rec.Code != want {
					t.Errorf("Expected status %d, got %d", want, rec.Code)
				}
				if !tt.timesOut {
					return
				}
				if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Expected timeout body labelled application/json, got %q", ct)
				}
				if body := rec.Body.String(); body != `{"error":"request timed out"}` {
					t.Errorf("Unexpected timeout body %s", body)
				}
			})
		})
	}
}

func Test_application_timeout_capturesTrace(t *testing.T) {
	dir := t.TempDir()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	recorder, err := flightrecorder.New(logger, flightrecorder.Config{Dir: dir, Cooldown: time.Hour, Now: nil})
	if err != nil {
		t.Fatalf("Failed to create recorder: %v", err)
	}
	if err = recorder.Start(t.Context()); err != nil {
		t.Fatalf("Failed to start recorder: %v", err)
	}
	defer recorder.Stop(t.Context())

	app := &application{ //nolint:exhaustruct // this is a test
		logger:         logger,
		recorder:       recorder,
		handlerTimeout: 20 * time.Millisecond,
	}
	handler := app.timeout(http.HandlerFunc(sleepHandler))

	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow?sleep_ms=5000", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected status 503, got %d", rec.Code)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read traces directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected one trace within the cooldown, got %d", len(entries))
	}
	if name := filepath.Base(entries[0].Name()); !strings.HasPrefix(name, "timeout-") {
		t.Errorf("Expected trace named after the timeout, got %s", name)
	}
}

func Test_application_recoverPanic(t *testing.T) {
	app := &application{ //nolint:exhaustruct // this is a test
		logger:  testhelpers.NewLogger(testhelpers.NewWriter(t)),
		metrics: metrics.NewTestManager(),
	}
	handler := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("barbell dropped")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "barbell") {
		t.Errorf("Panic value leaked into the response: %s", rec.Body.String())
	}
	if got := testutil.ToFloat64(app.metrics.CounterHandleRequestPanic); got != 1 {
		t.Errorf("Expected 1 recovered panic, got %v", got)
	}
}

func Test_application_identifyUser(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "42", want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "not a number", header: "bob", want: http.StatusUnauthorized},
		{name: "zero", header: "0", want: http.StatusUnauthorized},
		{name: "negative", header: "-1", want: http.StatusUnauthorized},
	}

	app := &application{ //nolint:exhaustruct // this is a test
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	var gotUserID int64
	handler := app.identifyUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = contexthelpers.AuthenticatedUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = 0
			req := httptest.NewRequest(http.MethodGet, "/api/streak", nil)
			if tt.header != "" {
				req.Header.Set(userIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, rec.Code)
			}
			if tt.want == http.StatusOK && gotUserID != 42 {
				t.Errorf("Expected user 42 in context, got %d", gotUserID)
			}
		})
	}
}

func Test_userRateLimiter(t *testing.T) {
	now := time.Now()
	limiter := newUserRateLimiter(rate.Every(time.Minute), 2)
	limiter.now = func() time.Time { return now }

	for i := range 2 {
		if ok, _ := limiter.allow(1); !ok {
			t.Fatalf("Request %d within burst was limited", i)
		}
	}
	ok, retryAfter := limiter.allow(1)
	if ok {
		t.Fatal("Expected the third request to be limited")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("Expected retry within a minute, got %v", retryAfter)
	}
	if ok, _ = limiter.allow(2); !ok {
		t.Error("Users must not share a bucket")
	}

	now = now.Add(time.Minute)
	if ok, _ = limiter.allow(1); !ok {
		t.Error("Expected a token after a minute")
	}

	now = now.Add(limiterTTL + time.Minute)
	limiter.allow(3)
	if _, found := limiter.visitors[1]; found {
		t.Error("Expected idle user to be evicted")
	}
	if len(limiter.visitors) != 1 {
		t.Errorf("Expected only the active user to remain, got %d", len(limiter.visitors))
	}
}

func Test_perMinute(t *testing.T) {
	if got := perMinute(0); got != rate.Inf {
		t.Errorf("perMinute(0) = %v, want unlimited", got)
	}
	if got := perMinute(60); got != rate.Limit(1) {
		t.Errorf("perMinute(60) = %v, want 1 per second", got)
	}
}
