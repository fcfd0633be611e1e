package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cabewaldrop/statuspage/internal/web"
)

func newServeCommand(a *app) *cobra.Command {
	var flags pageFlags
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the status page over HTTP",
		Long: `Serve the status page over HTTP.

The CSV is re-read on every page request, so regenerating it is enough to
publish new versions. /api/state decodes a view URL and /api/view reports
the rows a visitor would see for it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page := func(w io.Writer) error { return a.writePage(w, &flags) }
			srv := web.NewServer(addr, page, a.opts.ViewOptions(), a.log.WithName("web"))
			return srv.Run(cmd.Context())
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	return cmd
}
