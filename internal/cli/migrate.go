package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcoot/squadbook/internal/factory"
)

func newMigrateCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

			backend, err := factory.OpenBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			if err := factory.Migrate(ctx, cfg, backend); err != nil {
				return err
			}

			opts.output(cmd).PrintMessage("Migrations applied (" + cfg.StorageType + ")")
			return nil
		},
	}
}
