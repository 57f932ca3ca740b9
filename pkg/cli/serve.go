package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/fakestore/productctl/pkg/cli/internal/output"
	"github.com/fakestore/productctl/pkg/cliconfig"
	"github.com/fakestore/productctl/pkg/productsync"
	"github.com/fakestore/productctl/pkg/webview"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a browser view of the products",
		Long: `Start a local web page that shows the products, accepts new products and
deletes existing ones. Every change is pushed to open pages over a WebSocket.`,
		Example: `  productctl serve
  productctl serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hub := webview.NewHub(app.Log)
			ctrl := app.newController(productsync.WithReporter(hub))
			defer ctrl.Close()

			srv := webview.New(ctrl, hub, webview.WithLogger(app.Log))
			defer srv.Close()

			ln, err := net.Listen("tcp", app.Config.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", app.Config.Addr, err)
			}
			fmt.Fprintln(app.Err, output.SuccessMsg("Serving products on %s", output.Accent("http://"+ln.Addr().String())))
			fmt.Fprintln(app.Err, output.Muted("Press Ctrl+C to stop"))

			return srv.Serve(cmd.Context(), ln)
		},
	}

	cmd.Flags().String("addr", cliconfig.DefaultAddr, "Listen address")
	return cmd
}
