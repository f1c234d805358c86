// Package daemon owns the long-lived service lifecycle: the API listener,
// the metrics listener and graceful shutdown.
package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mggg/votekit/internal/api"
	"github.com/mggg/votekit/internal/config"
	"github.com/mggg/votekit/internal/log"
)

// App runs the votekit service until its context is cancelled.
type App struct {
	cfg    config.AppConfig
	server *api.Server
	logger zerolog.Logger
}

// NewApp assembles the service from its configuration and API server.
func NewApp(cfg config.AppConfig, server *api.Server) *App {
	return &App{
		cfg:    cfg,
		server: server,
		logger: log.WithComponent("daemon"),
	}
}

// Run starts both listeners and blocks until ctx is cancelled or a listener
// fails. Shutdown drains in-flight requests within the configured grace
// period.
func (a *App) Run(ctx context.Context) error {
	apiSrv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           a.server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              a.cfg.MetricsListen,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().
			Str(log.FieldEvent, "daemon.listen").
			Str("addr", a.cfg.Listen).
			Msg("api listener starting")
		if err := apiSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		a.logger.Info().
			Str(log.FieldEvent, "daemon.listen").
			Str("addr", a.cfg.MetricsListen).
			Msg("metrics listener starting")
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		grace := a.cfg.ShutdownGrace
		if grace <= 0 {
			grace = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()

		a.logger.Info().
			Str(log.FieldEvent, "daemon.shutdown").
			Dur("grace", grace).
			Msg("draining listeners")

		err := apiSrv.Shutdown(shutdownCtx)
		if merr := metricsSrv.Shutdown(shutdownCtx); err == nil {
			err = merr
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
