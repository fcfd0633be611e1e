// Package main implements the statuspage CLI.
//
// statuspage turns the build farm's versions CSV into an interactive status
// page, serves it over HTTP, and can replay page interactions headlessly to
// show what a visitor would see for a given URL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cabewaldrop/statuspage/internal/config"
	"github.com/cabewaldrop/statuspage/internal/logging"
)

const version = "0.1.0"

// app carries the resolved options and logger to the subcommands.
type app struct {
	opts       *config.Options
	configPath string
	log        logr.Logger
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{opts: config.NewOptions(), log: logr.Discard()}

	cmd := &cobra.Command{
		Use:           "statuspage",
		Short:         "Generate, serve and inspect the package status page",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
	}
	cmd.PersistentFlags().StringVar(&a.opts.LogLevel, "log-level", a.opts.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a statuspage.yaml config file")
	a.opts.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newRenderCommand(a),
		newServeCommand(a),
		newViewCommand(a),
	)
	cmd.Example = `  # Generate the page from the versions CSV
  statuspage render --csv hydro.csv --out hydro.html

  # Show what a shared link looks like, as text
  statuspage view hydro.html --url 'http://host/hydro.html?q=red&s=1' --format text

  # Host the page
  statuspage serve --csv hydro.csv --addr :8080`
	return cmd
}

// setup loads config and environment overrides and builds the logger.
func (a *app) setup(fs *pflag.FlagSet) error {
	if err := config.Load(viper.New(), fs, a.configPath, a.opts); err != nil {
		return errors.Wrap(err, "load config")
	}
	log, err := logging.New(a.opts.LogLevel)
	if err != nil {
		return errors.Wrap(err, "configure logging")
	}
	a.log = log
	return nil
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	switch {
	case errors.Is(err, os.ErrNotExist):
		message = fmt.Sprintf("%s\nHint: check the path, or pass --config for a config file outside the search path.", err)
	case errors.Is(err, context.Canceled):
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
