package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jaminalder/time-travel-tic-tac-toe/internal/app"
	"github.com/jaminalder/time-travel-tic-tac-toe/internal/config"
	"github.com/jaminalder/time-travel-tic-tac-toe/internal/web"
)

const shutdownTimeout = 5 * time.Second

// Run serves the web frontend on ln until ctx is cancelled, then shuts the
// server down gracefully.
func Run(ctx context.Context, logger *slog.Logger, conf *config.Config, ln net.Listener) error {
	log := logger.With("component", "app")

	svc := app.NewService(app.WithLogger(logger))
	handler := web.NewServer(svc, web.WithLogger(logger), web.WithHeartbeat(conf.HeartbeatInterval))

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go svc.RunJanitor(janitorCtx, conf.SweepInterval, conf.SessionTTL)

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErrCh <- err
		}
		close(httpErrCh)
	}()

	select {
	case err := <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}

// ListenAndRun opens conf.HTTPAddr and calls Run.
func ListenAndRun(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	ln, err := net.Listen("tcp", conf.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", conf.HTTPAddr, err)
	}
	return Run(ctx, logger, conf, ln)
}
