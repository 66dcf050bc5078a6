package cli

import (
	"github.com/spf13/cobra"
)

func newGenresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genres",
		Short: "Show or change the saved genre selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			output(cmd).Print(app.Genres.View(cmd.Context(), Scope))
			return nil
		},
	}

	cmd.AddCommand(newGenresSelectCmd())
	cmd.AddCommand(newGenresClearCmd())

	return cmd
}

func newGenresSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>...",
		Short: "Replace the saved selection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.Genres.Clear(ctx, Scope); err != nil {
				return err
			}
			for _, id := range args {
				if _, err := app.Genres.Set(ctx, Scope, id, true); err != nil {
					return err
				}
			}
			output(cmd).Print(app.Genres.View(ctx, Scope))
			return nil
		},
	}
}

func newGenresClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.Genres.Clear(ctx, Scope); err != nil {
				return err
			}
			output(cmd).PrintMessage("Genre selection cleared")
			return nil
		},
	}
}
