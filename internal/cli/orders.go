package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/keyshop/internal/services/orders"
)

func newOrdersCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show order history with purchased keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Orders.Page(cmd.Context(), Scope, page, pageSize)
			if err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", orders.DefaultPageSize, "Orders per page")

	return cmd
}
