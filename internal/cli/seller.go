package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/services/seller"
)

func newSellerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seller",
		Short: "Manage your listings",
	}

	cmd.AddCommand(newSellerListCmd())
	cmd.AddCommand(newSellerCreateCmd())
	cmd.AddCommand(newSellerUpdateCmd())
	cmd.AddCommand(newSellerDeleteCmd())
	cmd.AddCommand(newSellerKeysCmd())

	return cmd
}

func newSellerListCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your games",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Seller.List(cmd.Context(), Scope, page)
			if err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")

	return cmd
}

// draftFlags binds the listing form to flags
type draftFlags struct {
	draft     model.GameDraft
	keysPath  string
	imagePath string
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.draft.Title, "title", "", "Title")
	cmd.Flags().Float64Var(&f.draft.Price, "price", 0, "Price")
	cmd.Flags().StringVar(&f.draft.DeveloperTitle, "developer", "", "Developer")
	cmd.Flags().StringVar(&f.draft.PublisherTitle, "publisher", "", "Publisher")
	cmd.Flags().StringVar(&f.draft.Description, "description", "", "Description")
	cmd.Flags().StringSliceVar(&f.draft.GenreIDs, "genre", nil, "Genre id (repeatable)")
	cmd.Flags().StringVar(&f.keysPath, "keys", "", "Text file with one key per line")
	cmd.Flags().StringVar(&f.imagePath, "image", "", "Cover image file")
}

func (f *draftFlags) build() (model.GameDraft, error) {
	d := f.draft
	var err error
	if d.Keys, err = readUpload(f.keysPath); err != nil {
		return d, err
	}
	if d.Image, err = readUpload(f.imagePath); err != nil {
		return d, err
	}
	return d, nil
}

func readUpload(path string) (*model.Upload, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &model.Upload{Filename: filepath.Base(path), Content: content}, nil
}

func newSellerCreateCmd() *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "List a new game",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := flags.build()
			if err != nil {
				return err
			}
			if len(d.GenreIDs) == 0 {
				d.GenreIDs = app.Genres.Selected(cmd.Context(), Scope)
			}
			game, err := app.Seller.Create(cmd.Context(), Scope, d)
			if err != nil {
				return err
			}
			output(cmd).Print(game)
			return nil
		},
	}
	flags.bind(cmd)

	return cmd
}

func newSellerUpdateCmd() *cobra.Command {
	var flags draftFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a listing; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := app.Seller.Get(cmd.Context(), Scope, id)
			if err != nil {
				return err
			}
			d, err := flags.build()
			if err != nil {
				return err
			}

			merged := seller.DraftFor(current)
			changed := cmd.Flags().Changed
			if changed("title") {
				merged.Title = d.Title
			}
			if changed("price") {
				merged.Price = d.Price
			}
			if changed("developer") {
				merged.DeveloperTitle = d.DeveloperTitle
			}
			if changed("publisher") {
				merged.PublisherTitle = d.PublisherTitle
			}
			if changed("description") {
				merged.Description = d.Description
			}
			if changed("genre") {
				merged.GenreIDs = d.GenreIDs
			}
			merged.Image = d.Image

			game, err := app.Seller.Update(cmd.Context(), Scope, id, merged)
			if err != nil {
				return err
			}
			output(cmd).Print(game)
			return nil
		},
	}
	flags.bind(cmd)

	return cmd
}

func newSellerDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Seller.Delete(cmd.Context(), Scope, id); err != nil {
				return err
			}
			output(cmd).PrintMessage(fmt.Sprintf("Deleted game %d", id))
			return nil
		},
	}
}

func newSellerKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <id> <file>",
		Short: "Upload more keys for a listing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			keys, err := readUpload(args[1])
			if err != nil {
				return err
			}
			if err := app.Seller.AddKeys(cmd.Context(), Scope, id, *keys); err != nil {
				return err
			}
			output(cmd).PrintMessage(fmt.Sprintf("Uploaded keys for game %d", id))
			return nil
		},
	}
}
