package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/squadbook/internal/factory"
	"github.com/mcoot/squadbook/internal/server"
)

func newServeCmd(opts *Options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			// Set up logging
			logger := cfg.NewLogger(os.Stdout)
			slog.SetDefault(logger)

			// Handle graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := factory.New(ctx, cfg, logger)
			if err != nil {
				logger.Error("failed to create application", slog.String("error", err.Error()))
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Error("failed to release resources", slog.String("error", err.Error()))
				}
			}()

			serverCfg := server.DefaultConfig()
			serverCfg.Addr = cfg.Addr
			serverCfg.ShutdownTimeout = cfg.ShutdownTimeout

			srv := server.New(app.Handler(cfg.BasePath), serverCfg, logger)
			if err := srv.Run(ctx); err != nil {
				logger.Error("server error", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (env: ADDR)")

	return cmd
}
