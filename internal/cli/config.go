package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcoot/squadbook/internal/config"
	"github.com/mcoot/squadbook/internal/factory"
)

// Options holds the global flags shared by every command
type Options struct {
	EnvFile string
	Output  string

	// Overrides; empty means keep the environment value
	StorageType string
	SQLitePath  string
	DatabaseURL string
}

// DefaultOptions returns Options with default values
func DefaultOptions() *Options {
	return &Options{
		Output: "text",
	}
}

// Load reads the server configuration and applies flag overrides
func (o *Options) Load() (config.Config, error) {
	var files []string
	if o.EnvFile != "" {
		files = append(files, o.EnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}

	if o.StorageType != "" {
		cfg.StorageType = o.StorageType
	}
	if o.SQLitePath != "" {
		cfg.SQLitePath = o.SQLitePath
	}
	if o.DatabaseURL != "" {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// output returns the formatter for cmd
func (o *Options) output(cmd *cobra.Command) *Output {
	return NewOutput(o.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// withApp loads the configuration, builds the application, runs fn and
// closes the application again. Admin commands log warnings to stderr.
func (o *Options) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *factory.App) error) error {
	cfg, err := o.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := cmd.Context()

	app, err := factory.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	return fn(ctx, app)
}
