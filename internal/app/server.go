package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start launches the HTTP and SSE servers and returns a channel closed on
// the first termination signal.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	a.listen("http", a.httpServer)
	a.listen("sse", a.sseServer)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		select {
		case <-sigint:
		case <-a.ctx.Done():
		}

		close(terminateChan)
		slog.Info("application received termination signal")
	}()

	return terminateChan
}

func (a *App) listen(name string, srv *http.Server) {
	if srv == nil || srv.Addr == "" {
		slog.Warn("server disabled, no address configured", "server", name)
		return
	}

	go func() {
		slog.Info("server listening", "server", name, "address", srv.Addr)

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve", "server", name, "error", err)
			os.Exit(1)
		}
	}()
}

// Serve runs the HTTP server on the provided listener for tests.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// Stop shuts the servers down, waits for background publishes and closes
// resources in order.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	for name, srv := range map[string]*http.Server{"HTTP Server": a.httpServer, "SSE Server": a.sseServer} {
		if err := srv.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", name, "error", err)
		}
	}

	// an open session is cancelled so its outcome is published before the wait
	if a.verification != nil {
		a.verification.CloseSession(ctx)
	}

	slog.InfoContext(ctx, "waiting for all goroutine to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
