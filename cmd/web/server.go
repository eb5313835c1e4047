package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/myrjola/liftcoach/internal/e2etest"
)

const shutdownTimeout = 5 * time.Second

// configureAndStartServer serves until ctx is done and then shuts down gracefully.
func (app *application) configureAndStartServer(ctx context.Context, addr string) error {
	srv := &http.Server{
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           app.routes(),
		IdleTimeout:       time.Minute,
		ReadTimeout:       app.handlerTimeout,
		WriteTimeout:      app.handlerTimeout + time.Second,
		ReadHeaderTimeout: time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("TCP listen: %w", err)
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server", slog.String(e2etest.LogAddrKey, listener.Addr().String()))
	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server serve: %w", err)
	}
	if err = <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "server stopped")
	return nil
}
