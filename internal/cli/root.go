// Package cli implements the devhost command line: the same snippet store
// the web server uses, driven from a terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sakif/devhost/internal/apperror"
	"github.com/sakif/devhost/internal/bootstrap"
	"github.com/sakif/devhost/internal/clipboard"
	"github.com/sakif/devhost/internal/config"
	"github.com/sakif/devhost/internal/model"
)

// Exit codes returned by Execute.
const (
	exitFailure = 1
	exitUsage   = 2
)

// Option adjusts the CLI environment. Tests swap the filesystem and the
// clipboard; production uses the OS for both.
type Option func(*CLI)

func WithFs(fsys afero.Fs) Option {
	return func(c *CLI) { c.fs = fsys }
}

func WithClipboard(w clipboard.Writer) Option {
	return func(c *CLI) { c.clip = w }
}

func WithBootstrapOptions(opts ...bootstrap.Option) Option {
	return func(c *CLI) { c.bootstrapOpts = append(c.bootstrapOpts, opts...) }
}

// CLI holds the state shared by all commands of one invocation. The App is
// built once the flags are parsed, in PersistentPreRunE.
type CLI struct {
	cfgFile string
	fs      afero.Fs
	clip    clipboard.Writer

	bootstrapOpts []bootstrap.Option
	app           *bootstrap.App
}

func newCLI(opts ...Option) *CLI {
	c := &CLI{
		fs:   afero.NewOsFs(),
		clip: clipboard.System{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CLI) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "devhost",
		Short: "Host, search and share code snippets",
		Long: `devhost keeps a small library of code snippets in a single storage slot
and lets you list, search, add, copy, download and delete them.

The web server (cmd/server) and this command read and write the same slot,
so snippets added here show up on the landing page and vice versa.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.config/devhost/config.toml)")
	root.PersistentFlags().String("backend", "", "storage backend: memory, file, sqlite or dynamodb")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		c.newListCommand(),
		c.newShowCommand(),
		c.newAddCommand(),
		c.newRmCommand(),
		c.newCopyCommand(),
		c.newDownloadCommand(),
		c.newTreeCommand(),
		c.newLanguagesCommand(),
	)
	return root
}

// setup loads the config (flags win over env, env over the file) and wires
// the App.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	v, err := config.New(c.cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("storage.backend", flags.Lookup("backend")); err != nil {
		return fmt.Errorf("binding --backend: %w", err)
	}
	if err := v.BindPFlag("log.level", flags.Lookup("log-level")); err != nil {
		return fmt.Errorf("binding --log-level: %w", err)
	}

	cfg, err := config.Read(v)
	if err != nil {
		return err
	}

	logger := bootstrap.NewLogger(cmd.ErrOrStderr(), cfg)
	if cfg.File != "" {
		logger.Debug("using config file", slog.String("path", cfg.File))
	}

	app, err := bootstrap.New(cmd.Context(), cfg, logger, c.fs, c.bootstrapOpts...)
	if err != nil {
		return err
	}
	c.app = app
	return nil
}

func (c *CLI) close() error {
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// Run executes the command line args, writing results to stdout and
// diagnostics to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...Option) (err error) {
	c := newCLI(opts...)
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer func() {
		if closeErr := c.close(); err == nil {
			err = closeErr
		}
	}()
	return root.ExecuteContext(ctx)
}

// Execute runs the CLI on os.Args and exits non-zero on failure. Ctrl+C
// cancels the running operation.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad input (validation, unknown id) and 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrNotFound) {
		return exitUsage
	}
	return exitFailure
}

// userMessage prefers the AppError text over the wrapped chain, except for
// storage errors where the backend detail is what the user needs.
func userMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && !errors.Is(err, apperror.ErrStorage) {
		return appErr.Message
	}
	return err.Error()
}

// lookup refreshes the directory and returns the snippet with id.
func (c *CLI) lookup(ctx context.Context, id string) (model.Snippet, error) {
	if err := c.app.Directory.Refresh(ctx); err != nil {
		return model.Snippet{}, err
	}
	snippet, ok := c.app.Directory.Find(id)
	if !ok {
		return model.Snippet{}, apperror.NotFound("snippet", id)
	}
	return snippet, nil
}
