package main

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/trace"
	"strconv"
	"sync"
	"time"

	"github.com/myrjola/liftcoach/internal/contexthelpers"
	"github.com/myrjola/liftcoach/internal/errors"
	"github.com/myrjola/liftcoach/internal/logging"
	"golang.org/x/time/rate"
)

// userIDHeader identifies the caller. Authentication happens in front of liftcoach.
const userIDHeader = "X-User-ID"

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		headerWritten:  false,
	}
}

func (mw *statusResponseWriter) WriteHeader(statusCode int) {
	mw.ResponseWriter.WriteHeader(statusCode)

	if !mw.headerWritten {
		mw.statusCode = statusCode
		mw.headerWritten = true
	}
}

func (mw *statusResponseWriter) Write(b []byte) (int, error) {
	mw.headerWritten = true
	written, err := mw.ResponseWriter.Write(b)
	if err != nil {
		return written, fmt.Errorf("write response: %w", err)
	}
	return written, nil
}

func (mw *statusResponseWriter) Unwrap() http.ResponseWriter {
	return mw.ResponseWriter
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

func (app *application) logAndTraceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		requestID := rand.Text()
		r = contexthelpers.SetRequestID(r, requestID)
		ctx := logging.WithAttrs(
			r.Context(),
			slog.String("request_id", requestID),
			slog.String("proto", proto),
			slog.String("method", method),
			slog.String("uri", uri),
		)
		r = r.WithContext(ctx)

		start := time.Now()
		app.logger.LogAttrs(ctx, slog.LevelDebug, "received request")

		sw := newStatusResponseWriter(w)

		if !trace.IsEnabled() {
			next.ServeHTTP(sw, r)
		} else {
			traceCtx, task := trace.NewTask(ctx, fmt.Sprintf("HTTP %s %s", method, r.URL.Path))
			trace.Log(traceCtx, "request_id", requestID)
			defer task.End()
			next.ServeHTTP(sw, r.WithContext(traceCtx))
		}

		level := slog.LevelInfo
		if sw.statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		app.logger.LogAttrs(ctx, level, "request completed",
			slog.Int("status_code", sw.statusCode), slog.Duration("duration", time.Since(start)))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if excp := recover(); excp != nil {
				if excp == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value.
					panic(excp)
				}
				app.metrics.CounterHandleRequestPanic.Inc()
				w.Header().Set("Connection", "close")
				app.serverError(w, r, errors.DecoratePanic(excp))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// identifyUser reads the caller's user id from the X-User-ID header and rejects anonymous requests.
func (app *application) identifyUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(userIDHeader), 10, 64)
		if err != nil || userID <= 0 {
			app.writeError(w, r, http.StatusUnauthorized, "missing or invalid "+userIDHeader+" header")
			return
		}
		r = contexthelpers.AuthenticateContext(r, userID)
		r = r.WithContext(logging.WithAttrs(r.Context(), slog.Int64("user_id", userID)))
		next.ServeHTTP(w, r)
	})
}

// rateLimit bounds the requests of each user. It must run after identifyUser.
func (app *application) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := contexthelpers.AuthenticatedUserID(r.Context())
		if ok, retryAfter := app.limiter.allow(userID); !ok {
			app.metrics.CounterRateLimited.Inc()
			app.logger.LogAttrs(r.Context(), slog.LevelWarn, "rate limited", slog.Duration("retry_after", retryAfter))
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retryAfter.Round(time.Second).Seconds()))))
			app.writeError(w, r, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// timeout responds with 503 Service Unavailable when the handler does not meet the deadline and captures a trace
// when the flight recorder is enabled.
func (app *application) timeout(next http.Handler) http.Handler {
	h := http.TimeoutHandler(next, app.handlerTimeout, `{"error":"request timed out"}`)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := newStatusResponseWriter(w)
		h.ServeHTTP(timeoutBodyWriter{sw}, r)
		if sw.statusCode != http.StatusServiceUnavailable {
			return
		}
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "request timed out", slog.Duration("timeout", app.handlerTimeout))
		if app.recorder == nil {
			return
		}
		if _, err := app.recorder.Capture(r.Context(), "timeout"); err != nil {
			app.logger.LogAttrs(r.Context(), slog.LevelError, "failed to capture trace", errors.SlogError(err))
		}
	})
}

// timeoutBodyWriter labels the body http.TimeoutHandler writes on timeout as JSON. On timeout the handler's own
// headers are discarded, so Content-Type is unset unless the outer chain set it.
type timeoutBodyWriter struct {
	*statusResponseWriter
}

func (w timeoutBodyWriter) WriteHeader(statusCode int) {
	if statusCode == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.statusResponseWriter.WriteHeader(statusCode)
}

const (
	limiterTTL           = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// userRateLimiter keeps a token bucket per user. Buckets idle for longer than limiterTTL are evicted.
type userRateLimiter struct {
	mu        sync.Mutex
	visitors  map[int64]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func perMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}

func newUserRateLimiter(limit rate.Limit, burst int) *userRateLimiter {
	return &userRateLimiter{
		mu:        sync.Mutex{},
		visitors:  make(map[int64]*visitor),
		limit:     limit,
		burst:     max(burst, 1),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// allow reports whether the user may proceed and otherwise how long until the next token.
func (l *userRateLimiter) allow(userID int64) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepInterval {
		for id, v := range l.visitors {
			if now.Sub(v.lastSeen) > limiterTTL {
				delete(l.visitors, id)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[userID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
		l.visitors[userID] = v
	}
	v.lastSeen = now

	reservation := v.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}
