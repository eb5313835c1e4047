// Package e2etest starts a liftcoach server in-process and talks to it over HTTP.
package e2etest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/myrjola/liftcoach/internal/logging"
)

type Server struct {
	url        string
	cancel     context.CancelCauseFunc
	serverDone chan struct{}
}

// LogAddrKey is the key used to log the address the server is listening on.
const LogAddrKey = "addr"

// StartServer starts the test server and waits until it reports healthy. The server shuts down with the test.
//
// logSink receives the server logs, usually testhelpers.NewWriter. lookupEnv has the signature of [os.LookupEnv].
// run must log the listening address under LogAddrKey.
func StartServer(
	t *testing.T,
	logSink io.Writer,
	lookupEnv func(string) (string, bool),
	run func(context.Context, *slog.Logger, func(string) (string, bool)) error,
) (*Server, error) {
	ctx, cancel := context.WithCancelCause(t.Context())
	serverDone := make(chan struct{})
	server := &Server{url: "", cancel: cancel, serverDone: serverDone}
	t.Cleanup(server.Shutdown)

	// The port is allocated dynamically, so it is picked from the log output.
	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == LogAddrKey {
				select {
				case addrCh <- a.Value.String():
				default:
				}
			}
			return a
		},
	})))

	go func() {
		defer close(serverDone)
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel(err)
		}
	}()

	var addr string
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("server stopped: %w", context.Cause(ctx))
	case addr = <-addrCh:
	}

	server.url = "http://" + addr
	if err := server.Client(0).WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	return server, nil
}

// Client returns a client acting as userID. User 0 is anonymous.
func (s *Server) Client(userID int64) *Client {
	return NewClient(s.url, userID)
}

func (s *Server) URL() string {
	return s.url
}

func (s *Server) Shutdown() {
	s.cancel(nil)
	<-s.serverDone
}
