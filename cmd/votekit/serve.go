package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mggg/votekit/internal/api"
	"github.com/mggg/votekit/internal/config"
	"github.com/mggg/votekit/internal/daemon"
	"github.com/mggg/votekit/internal/log"
	"github.com/mggg/votekit/internal/metrics"
	"github.com/mggg/votekit/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the election API service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(flagConfig).Load()
			if err != nil {
				return err
			}
			if flagLogLevel == "" {
				log.Configure(log.Config{Level: cfg.LogLevel, Service: "votekit", Version: version})
			}

			st, err := store.Open(filepath.Join(cfg.DataDir, "votekit.db"))
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if n, err := st.Count(cmd.Context()); err == nil {
				metrics.SetStoredRuns(n)
			}

			srv := api.NewServer(st,
				api.WithRateLimit(cfg.RateLimit),
				api.WithDefaultSeed(cfg.DefaultSeed),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := log.WithComponent("serve")
			logger.Info().
				Str(log.FieldEvent, "serve.start").
				Str("version", version).
				Str("addr", cfg.Listen).
				Str("metrics_addr", cfg.MetricsListen).
				Msg("starting votekit service")

			return daemon.NewApp(cfg, srv).Run(ctx)
		},
	}
}
