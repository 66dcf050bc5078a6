package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/keyshop/internal/model"
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Browse the catalog",
	}

	cmd.AddCommand(newGamesListCmd())
	cmd.AddCommand(newGamesShowCmd())

	return cmd
}

func newGamesListCmd() *cobra.Command {
	var (
		title      string
		minPrice   float64
		maxPrice   float64
		genreIDs   []string
		page       int
		pageSize   int
		ignoreSave bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games matching the filters",
		Long: `List games matching the filters.

Without --genre the genres selected with "keyshop genres select" apply.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := model.Filter{TitleQuery: title}
			if cmd.Flags().Changed("min-price") {
				f.MinPrice = &minPrice
			}
			if cmd.Flags().Changed("max-price") {
				f.MaxPrice = &maxPrice
			}
			switch {
			case len(genreIDs) > 0:
				f.GenreIDs = genreIDs
			case !ignoreSave:
				f.GenreIDs = app.Genres.Selected(ctx, Scope)
			}
			if err := f.Validate(); err != nil {
				return err
			}

			result, err := app.Backend.ListGames(ctx, f, page, pageSize)
			if err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title search")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Maximum price")
	cmd.Flags().StringSliceVar(&genreIDs, "genre", nil, "Genre id (repeatable)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Games per page")
	cmd.Flags().BoolVar(&ignoreSave, "all-genres", false, "Ignore the saved genre selection")

	return cmd
}

func newGamesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			game, err := app.Backend.GetGame(cmd.Context(), id)
			if err != nil {
				return err
			}
			output(cmd).Print(game)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid game id %q", s)
	}
	return id, nil
}
