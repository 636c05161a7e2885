package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd(opts *Options) *cobra.Command {
	var serverURL string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running server's health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			client := NewClient(serverURL, timeout)
			if err := client.Get(cmd.Context(), "/healthz", &result); err != nil {
				return err
			}

			opts.output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	return cmd
}
