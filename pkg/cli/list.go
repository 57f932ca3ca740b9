package cli

import (
	"github.com/spf13/cobra"

	"github.com/fakestore/productctl/pkg/product"
)

func newListCmd(app *App) *cobra.Command {
	var where string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List products",
		Long: `List the products on the remote service.

The --where expression is evaluated against each product. Available fields:
id, title, price, description, image, category, rating.rate, rating.count.`,
		Example: `  productctl list
  productctl list --where 'price > 100'
  productctl list --where 'category == "jewelery" && rating.rate >= 4' --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := product.CompileFilter(where)
			if err != nil {
				return err
			}

			view := app.terminal()
			ctrl := app.newController()
			defer ctrl.Close()
			if app.Interactive && !app.Config.JSON {
				unsubscribe := ctrl.Subscribe(view.loadingIndicator())
				defer unsubscribe()
			}

			if err := ctrl.Mount(cmd.Context()); err != nil {
				view.stateError(ctrl.State())
				return shown(err)
			}

			products, err := filter.Apply(ctrl.State().Products)
			if err != nil {
				return err
			}
			return view.products(products)
		},
	}

	cmd.Flags().StringVarP(&where, "where", "w", "", "Filter expression, e.g. 'price > 10'")
	return cmd
}
