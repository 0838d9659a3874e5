package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dropDatabas3/authbridge/internal/config"
	"github.com/dropDatabas3/authbridge/internal/http/server"
	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el broker HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       cfg.App.LogLevel,
				ServiceName: "authbridge",
				Version:     version,
			})
			log := logger.L()
			defer func() { _ = log.Sync() }()

			app, err := server.Build(cfg, server.Options{Version: version})
			if err != nil {
				return fmt.Errorf("wiring: %w", err)
			}
			defer func() {
				if err := app.Close(); err != nil {
					log.Warn("close failed", logger.Err(err))
				}
			}()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("listening",
				logger.String("addr", cfg.Server.Addr),
				logger.String("public_base_url", cfg.Server.PublicBaseURL),
			)
			if err := server.Run(ctx, cfg.Server.Addr, app.Handler, cfg.Server.ShutdownTimeout); err != nil {
				return err
			}
			log.Info("shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Dirección de escucha (pisa SERVER_ADDR)")
	return cmd
}
