package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// App encapsulates the HTTP service lifecycle.
type App struct {
	http *xhttp.Server
	log  *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(srv *xhttp.Server, l *applogger.Logger) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	return &App{http: srv, log: l}
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives or the listener
// fails, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := a.http.Start()
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok && err != nil {
			a.log.Error("http server failed", applogger.Error(err))
			return err
		}
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	timeout := a.http.ShutdownTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.http.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
