// Package cli implements the squadbook command line: the server itself plus
// admin commands that work directly against the configured backend.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := DefaultOptions()

	rootCmd := &cobra.Command{
		Use:   "squadbook",
		Short: "Football squad book server and admin tool",
		Long: `squadbook serves the login-gated player pages and manages the
backing store.

Settings come from the environment and an optional .env file; flags
override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", opts.EnvFile, "Read settings from this .env file (default: .env if present)")
	rootCmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", opts.Output, "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&opts.StorageType, "storage", "", "Storage backend: memory, sqlite, postgres (env: STORAGE_TYPE)")
	rootCmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite-path", "", "SQLite database file (env: SQLITE_PATH)")
	rootCmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL URL (env: DATABASE_URL)")

	// Add subcommands
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newUserCmd(opts))
	rootCmd.AddCommand(newPlayerCmd(opts))
	rootCmd.AddCommand(newHealthCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		format, _ := rootCmd.PersistentFlags().GetString("output")
		NewOutput(format, os.Stdout, os.Stderr).PrintError(err)
		os.Exit(1)
	}
}
