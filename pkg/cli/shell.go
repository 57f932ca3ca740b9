package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakestore/productctl/pkg/cli/internal/output"
	"github.com/fakestore/productctl/pkg/productsync"
)

func newShellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Manage products interactively",
		Long: `Start an interactive session: the product list is loaded once and
re-rendered after every change. Pick refresh, add, delete or quit from the
menu.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Prompter == nil {
				return errors.New("shell needs an interactive terminal")
			}
			return runShell(cmd.Context(), app)
		},
	}
}

func runShell(ctx context.Context, app *App) error {
	view := app.terminal()
	view.json = false
	ctrl := app.newController()
	defer ctrl.Close()
	unsubscribe := ctrl.Subscribe(view.loadingIndicator())
	defer unsubscribe()

	// A failed initial load leaves the error in state; the session goes on.
	_ = ctrl.Mount(ctx)

	for {
		state := ctrl.State()
		renderShell(view, state)

		action, err := app.Prompter.ChooseAction(ctx, state)
		if errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		switch action {
		case ActionQuit:
			return nil
		case ActionRefresh:
			err = ctrl.Refresh(ctx)
		case ActionAdd:
			draft := ctrl.Draft()
			if err = app.Prompter.EditDraft(ctx, &draft); err == nil {
				if err = ctrl.SetDraft(draft); err == nil {
					err = ctrl.SubmitDraft(ctx)
				}
			}
		case ActionDelete:
			id, perr := app.Prompter.ChooseProduct(ctx, state.Products)
			if err = perr; err == nil {
				err = ctrl.DeleteProduct(ctx, id)
			}
		}

		switch {
		case err == nil, errors.Is(err, ErrAborted):
		case errors.Is(err, productsync.ErrClosed), ctx.Err() != nil:
			return err
		default:
			// Validation and remote failures were already reported.
			app.Log.Debug("shell action failed", "action", string(action), "error", err)
		}
	}
}

func renderShell(view *terminalView, s productsync.State) {
	fmt.Fprintln(view.out)
	fmt.Fprintln(view.out, output.Accent("Products"))
	_ = view.products(s.Products)
	view.stateError(s)
	if !s.Draft.IsZero() {
		fmt.Fprintln(view.out, output.Muted(fmt.Sprintf("Draft: %s %s", orDash(s.Draft.Title), formatDraftPrice(s.Draft.Price))))
	}
}

func formatDraftPrice(price float64) string {
	if price == 0 {
		return ""
	}
	return fmt.Sprintf("(%.2f)", price)
}
