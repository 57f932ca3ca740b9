package cli

import (
	"github.com/spf13/cobra"

	"github.com/fakestore/productctl/pkg/cli/internal/output"
	"github.com/fakestore/productctl/pkg/product"
)

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm", "remove"},
		Short:   "Delete a product",
		Example: `  productctl delete 21`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := product.ID(args[0])
			ctrl := app.newController()
			defer ctrl.Close()

			if err := ctrl.DeleteProduct(cmd.Context(), id); err != nil {
				return shown(err)
			}
			if app.Config.JSON {
				return output.JSON(app.Out, map[string]any{"id": id, "deleted": true})
			}
			return nil
		},
	}
}
