package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/cart"
)

func newCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := app.Carts.Load(cmd.Context(), Scope)
			if err != nil {
				return err
			}
			output(cmd).Print(current)
			return nil
		},
	}

	cmd.AddCommand(newCartLineCmd("add", "Add one key of a game", (*cart.Service).Add))
	cmd.AddCommand(newCartLineCmd("increment", "Add one more key of a game in the cart", (*cart.Service).Increment))
	cmd.AddCommand(newCartLineCmd("decrement", "Remove one key of a game", (*cart.Service).Decrement))
	cmd.AddCommand(newCartLineCmd("remove", "Remove a game from the cart", (*cart.Service).Remove))
	cmd.AddCommand(newCartCheckoutCmd())

	return cmd
}

type cartOp func(s *cart.Service, ctx context.Context, scope model.ScopeID, gameID int64) (*model.Cart, error)

func newCartLineCmd(use, short string, op cartOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <game-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			updated, err := op(app.Carts, cmd.Context(), Scope, id)
			if err != nil {
				return err
			}
			output(cmd).Print(updated)
			return nil
		},
	}
}

func newCartCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Buy everything in the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			order, _, err := app.Carts.Checkout(cmd.Context(), Scope)
			if err != nil {
				return err
			}
			output(cmd).Print(order)
			return nil
		},
	}
}
