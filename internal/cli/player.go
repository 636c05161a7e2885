package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/squadbook/internal/factory"
	"github.com/mcoot/squadbook/internal/model"
)

func newPlayerCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerListCmd(opts))
	cmd.AddCommand(newPlayerAddCmd(opts))
	cmd.AddCommand(newPlayerDeleteCmd(opts))

	return cmd
}

func newPlayerListCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List players",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *factory.App) error {
				players, err := app.Players.FindAll(ctx)
				if err != nil {
					return err
				}
				opts.output(cmd).Print(players)
				return nil
			})
		},
	}
}

func newPlayerAddCmd(opts *Options) *cobra.Command {
	var player model.Player

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if player.Name == "" {
				return fmt.Errorf("--name is required")
			}

			return opts.withApp(cmd, func(ctx context.Context, app *factory.App) error {
				if err := app.Players.AddOrUpdate(ctx, &player); err != nil {
					return err
				}
				opts.output(cmd).Print(player)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&player.Name, "name", "", "First name (required)")
	cmd.Flags().StringVar(&player.LastName, "last-name", "", "Last name")
	cmd.Flags().Int64Var(&player.MarketValue, "value", 0, "Market value")
	cmd.Flags().StringVar(&player.Country, "country", "", "Country")
	cmd.Flags().StringVar(&player.Club, "club", "", "Club")

	return cmd
}

func newPlayerDeleteCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid player id %q", args[0])
			}

			return opts.withApp(cmd, func(ctx context.Context, app *factory.App) error {
				if err := app.Players.Delete(ctx, model.PlayerID(id)); err != nil {
					return err
				}
				opts.output(cmd).PrintMessage(fmt.Sprintf("Deleted player %d", id))
				return nil
			})
		},
	}
}
