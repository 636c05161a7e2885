package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/squadbook/internal/factory"
)

func newUserCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User account management commands",
	}

	cmd.AddCommand(newUserAddCmd(opts))
	cmd.AddCommand(newUserListCmd(opts))

	return cmd
}

func newUserAddCmd(opts *Options) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "add <login>",
		Short: "Create a user account",
		Long: `Create a user account with a bcrypt-hashed password.

Without --password the password is read from the first line of stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password required: pass --password or write it to stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			return opts.withApp(cmd, func(ctx context.Context, app *factory.App) error {
				user, err := app.Accounts.Register(ctx, args[0], password, password)
				if err != nil {
					return fmt.Errorf("create user %q: %w", args[0], err)
				}
				opts.output(cmd).Print(UserSummary{ID: user.ID, Login: user.Login})
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")

	return cmd
}

func newUserListCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *factory.App) error {
				users, err := app.Users.FindAll(ctx)
				if err != nil {
					return err
				}
				opts.output(cmd).Print(summarize(users))
				return nil
			})
		},
	}
}
