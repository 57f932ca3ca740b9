package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fakestore/productctl/pkg/cli/internal/output"
	"github.com/fakestore/productctl/pkg/cliconfig"
	"github.com/fakestore/productctl/pkg/logging"
	"github.com/fakestore/productctl/pkg/productclient"
	"github.com/fakestore/productctl/pkg/productsync"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// App carries the dependencies shared by all commands. Tests replace the
// streams, the config loader, the prompter and the service factory.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Interactive enables forms, progress output and colors.
	Interactive bool

	Loader   cliconfig.Loader
	Prompter Prompter

	// NewService builds the remote product service. Defaults to an HTTP
	// client for Config.BaseURL.
	NewService func(cfg *cliconfig.Config, log *slog.Logger) productsync.Service

	// Set by the root command before any subcommand runs.
	Config *cliconfig.Config
	Log    *slog.Logger
}

// NewApp returns an App bound to the process streams.
func NewApp() *App {
	interactive := stderrIsTerminal() && !envTruthy("CI") && !strings.EqualFold(os.Getenv("TERM"), "dumb")
	app := &App{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: interactive,
	}
	if interactive {
		app.Prompter = huhPrompter{}
	}
	return app
}

func (a *App) service() productsync.Service {
	if a.NewService != nil {
		return a.NewService(a.Config, a.Log)
	}
	return productclient.New(a.Config.BaseURL,
		productclient.WithTimeout(a.Config.Timeout),
		productclient.WithUserAgent("productctl/"+Version),
		productclient.WithLogger(a.Log),
	)
}

// newController builds a controller that reports notices to the terminal.
func (a *App) newController(opts ...productsync.Option) *productsync.Controller {
	base := []productsync.Option{
		productsync.WithLogger(a.Log),
		productsync.WithReporter(a.terminal()),
	}
	return productsync.New(a.service(), append(base, opts...)...)
}

func (a *App) terminal() *terminalView {
	return &terminalView{out: a.Out, err: a.Err, json: a.Config.JSON}
}

// configure resolves configuration for cmd: files and environment first,
// then any flags the user set.
func (a *App) configure(cmd *cobra.Command) error {
	cfg, err := a.Loader.Load()
	if err != nil {
		return err
	}
	if err := cliconfig.ApplyFlags(cfg, cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.Config = cfg
	a.Log = logging.FromStrings(cfg.LogLevel, cfg.LogFormat, a.Err)
	output.SetColor(a.Interactive && !cfg.JSON)
	return nil
}

// NewRootCmd builds the productctl command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "productctl",
		Short: "productctl manages products on a demo store API",
		Long: `productctl lists, creates and deletes products on a REST product API
(by default https://fakestoreapi.com/products).

Configuration can be provided via flags, environment variables (PRODUCTCTL_*),
a local .productctlrc.yaml or a global config file.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.configure(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("base-url", cliconfig.DefaultBaseURL, "Product collection URL")
	pf.Duration("timeout", 0, "Per-request timeout (0 = none)")
	pf.Bool("json", false, "Output command results in JSON format")
	pf.String("log-level", cliconfig.DefaultLogLevel, "Log level: debug, info, warn, error")
	pf.String("log-format", cliconfig.DefaultLogFormat, "Log format: text, json")

	root.AddCommand(
		newListCmd(app),
		newAddCmd(app),
		newDeleteCmd(app),
		newShellCmd(app),
		newServeCmd(app),
		newConfigCmd(app),
		newVersionCmd(app),
	)

	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.Err)
	return root
}

// Execute runs productctl with the process arguments and exits non-zero on
// failure. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp()
	err := NewRootCmd(app).ExecuteContext(ctx)
	if err == nil {
		return
	}
	var se *shownError
	if !errors.As(err, &se) {
		fmt.Fprintln(app.Err, output.ErrorMsg("%v", err))
	}
	stop()
	os.Exit(1)
}

// shownError marks a failure the view has already presented to the user.
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }

func (e *shownError) Unwrap() error { return e.err }

func shown(err error) error {
	if err == nil {
		return nil
	}
	return &shownError{err: err}
}

func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func envTruthy(key string) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
