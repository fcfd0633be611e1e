package main

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cabewaldrop/statuspage/internal/render"
)

type pageFlags struct {
	csvPath string
	title   string
}

func (f *pageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "Path to the versions CSV")
	cmd.Flags().StringVar(&f.title, "title", "Build status page", "Page title")
	_ = cmd.MarkFlagRequired("csv")
}

// writePage reads the CSV and renders the page into w.
func (a *app) writePage(w io.Writer, f *pageFlags) error {
	file, err := os.Open(f.csvPath)
	if err != nil {
		return errors.Wrap(err, "open csv")
	}
	defer file.Close()

	tbl, err := render.ReadCSV(file)
	if err != nil {
		return errors.Wrapf(err, "load %s", f.csvPath)
	}
	a.log.V(1).Info("loaded versions table", "path", f.csvPath, "rows", len(tbl.Rows), "versionColumns", tbl.VersionColumns())

	return render.Page(w, tbl, render.Options{
		Title:     f.title,
		Generated: time.Now(),
		Repos:     a.opts.Repos,
		Shortcuts: a.opts.Shortcuts(),
	})
}

func newRenderCommand(a *app) *cobra.Command {
	var flags pageFlags
	var outPath string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate the status page from a versions CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" || outPath == "-" {
				return a.writePage(cmd.OutOrStdout(), &flags)
			}
			out, err := os.Create(outPath)
			if err != nil {
				return errors.Wrap(err, "create output")
			}
			if err := a.writePage(out, &flags); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return errors.Wrapf(err, "write %s", outPath)
			}
			a.log.Info("wrote status page", "path", outPath)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}
