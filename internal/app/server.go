package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start runs the API and SSE servers and returns a channel that is closed once
// a termination signal arrives. Background module work stops with a.ctx.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	a.listen("http", a.httpServer)
	a.listen("sse", a.sseServer)

	go func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		<-ctx.Done()

		if a.cancel != nil {
			a.cancel()
		}

		close(terminateChan)

		slog.Info("termination signal received, shutting down")
	}()

	return terminateChan
}

func (a *App) listen(name string, srv *http.Server) {
	go func() {
		slog.Info(name+" server listening", "address", srv.Addr)

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve "+name+" server", "error", err)
			os.Exit(1)
		}
	}()
}

// Stop drains the servers first, then waits for dispatch workers and
// consumers to finish claimed work, and only then closes shared resources.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	for name, srv := range map[string]*http.Server{"HTTP Server": a.httpServer, "SSE Server": a.sseServer} {
		if err := srv.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", name, "error", err)
		}
	}

	slog.InfoContext(ctx, "waiting for background workers to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from background workers", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application stopped")
}
