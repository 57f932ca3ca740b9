package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fakestore/productctl/pkg/cli/internal/output"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Config.JSON {
				return output.JSON(app.Out, struct {
					Version   string `json:"version"`
					Commit    string `json:"commit"`
					BuildDate string `json:"buildDate"`
					Go        string `json:"go"`
					Platform  string `json:"platform"`
				}{
					Version:   Version,
					Commit:    Commit,
					BuildDate: BuildDate,
					Go:        runtime.Version(),
					Platform:  runtime.GOOS + "/" + runtime.GOARCH,
				})
			}

			fmt.Fprintf(app.Out, "productctl %s\n", Version)
			fmt.Fprint(app.Out, output.KeyValues("  ",
				output.KV("commit", Commit),
				output.KV("built", BuildDate),
				output.KV("go", runtime.Version()),
				output.KV("platform", runtime.GOOS+"/"+runtime.GOARCH),
			))
			return nil
		},
	}
}
