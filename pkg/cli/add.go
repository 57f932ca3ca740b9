package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fakestore/productctl/pkg/product"
)

func newAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"create"},
		Short:   "Add a product",
		Long: `Add a product to the remote service.

Title, price and description are required; price must be greater than 0.
Run without --title on an interactive terminal to fill in a form instead.`,
		Example: `  productctl add --title Backpack --price 109.95 --description "Fits 15in laptops"
  productctl add --title Ring --price 9.99 --description Silver --category jewelery --image https://example.com/ring.png
  productctl add`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := app.terminal()
			ctrl := app.newController()
			defer ctrl.Close()

			if !cmd.Flags().Changed(product.FieldTitle) && app.Interactive && app.Prompter != nil {
				var d product.Draft
				if err := app.Prompter.EditDraft(cmd.Context(), &d); err != nil {
					if errors.Is(err, ErrAborted) {
						return nil
					}
					return err
				}
				if err := ctrl.SetDraft(d); err != nil {
					return err
				}
			} else {
				for _, field := range product.Fields {
					if !cmd.Flags().Changed(field) {
						continue
					}
					value, err := cmd.Flags().GetString(field)
					if err != nil {
						return err
					}
					if err := ctrl.EditDraftField(field, value); err != nil {
						return err
					}
				}
			}

			if err := ctrl.SubmitDraft(cmd.Context()); err != nil {
				return shown(err)
			}

			products := ctrl.State().Products
			if len(products) == 0 {
				return errors.New("service returned no product")
			}
			return view.product(products[len(products)-1])
		},
	}

	cmd.Flags().String(product.FieldTitle, "", "Product title (required)")
	cmd.Flags().String(product.FieldPrice, "", "Price, greater than 0 (required)")
	cmd.Flags().String(product.FieldDescription, "", "Description (required)")
	cmd.Flags().String(product.FieldImage, "", "Image URL")
	cmd.Flags().String(product.FieldCategory, "", "Category")
	return cmd
}
