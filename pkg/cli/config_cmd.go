package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakestore/productctl/pkg/cli/internal/output"
	"github.com/fakestore/productctl/pkg/cliconfig"
)

// configEntry is one key in `productctl config --json`.
type configEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration and where each value came from.

Sources, highest priority first: flag, env, local (.productctlrc.yaml in the
working directory), global (productctl/config.yaml in the user config dir),
default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config

			if cfg.JSON {
				entries := make([]configEntry, 0, len(cliconfig.Keys))
				for _, key := range cliconfig.Keys {
					entries = append(entries, configEntry{Key: key, Value: cfg.Value(key), Source: cfg.Source(key)})
				}
				return output.JSON(app.Out, entries)
			}

			pairs := make([]output.Pair, 0, len(cliconfig.Keys))
			for _, key := range cliconfig.Keys {
				pairs = append(pairs, output.KV(key, cfg.Value(key)+"  "+output.Muted("("+cfg.Source(key)+")")))
			}
			fmt.Fprint(app.Out, output.KeyValues("", pairs...))

			files := []output.Pair{
				output.KV("local", orDash(app.Loader.LocalConfigPath())),
				output.KV("global", orDash(app.Loader.GlobalConfigPath())),
			}
			fmt.Fprintln(app.Out)
			fmt.Fprintln(app.Out, output.Accent("Config files"))
			fmt.Fprint(app.Out, output.KeyValues("  ", files...))
			return nil
		},
	}
}
