package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/robalyx/steamfriends/internal/presence"
	"github.com/robalyx/steamfriends/internal/rest"
	"github.com/robalyx/steamfriends/internal/setup"
	"github.com/robalyx/steamfriends/internal/worker/warmup"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// Server timeouts.
const (
	ReadTimeout     = 5 * time.Second
	WriteTimeout    = 10 * time.Second
	ShutdownTimeout = 30 * time.Second
)

// serveAction runs the friend cache, the warm-up worker and the REST API
// until the process is interrupted or one of them fails.
func serveAction(ctx context.Context, c *cli.Command) error {
	app, err := setup.InitializeApp(ctx, LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(context.Background())

	if err := app.Config.Steam.Validate(); err != nil {
		app.Logger.Error("Steam friend cache is disabled. Set steam.api_key in config.toml to enable it",
			zap.Error(err))
		return err
	}

	if c.Bool("reset-presence") {
		if err := resetPresence(ctx, app.Roster); err != nil {
			return err
		}
		app.Logger.Info("Cleared online roster")
	}

	addr := net.JoinHostPort(app.Config.API.Host, strconv.Itoa(app.Config.API.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      rest.NewServer(app.Checker, app.Cache, app.Tracker, app.Logger),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	warmupWorker := warmup.New(app.Cache, app.Roster, app.Config.Steam.InitDelayDuration(), app.LogManager.GetWorkerLogger("warmup"))

	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		if err := app.Cache.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("friend cache stopped: %w", err)
		}
		return nil
	})

	p.Go(func(ctx context.Context) error {
		warmupWorker.Start(ctx)
		return nil
	})

	p.Go(func(ctx context.Context) error {
		return serveHTTP(ctx, srv, app.Logger)
	})

	err = p.Wait()
	app.Logger.Info("Server stopped", zap.Error(err))

	return err
}

// serveHTTP runs srv until ctx is cancelled, then shuts it down gracefully.
func serveHTTP(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("REST server started", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("REST server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down REST server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	return nil
}

// resetPresence clears rosters that outlive the process.
func resetPresence(ctx context.Context, roster presence.Roster) error {
	resetter, ok := roster.(interface{ Reset(ctx context.Context) error })
	if !ok {
		return nil
	}
	return resetter.Reset(ctx)
}
