package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cabewaldrop/statuspage/internal/dom"
	"github.com/cabewaldrop/statuspage/internal/replay"
	"github.com/cabewaldrop/statuspage/internal/viewstate"
)

type viewFlags struct {
	url      string
	search   string
	shortcut string
	clicks   []int
	actions  []string
	format   string
}

// script turns the convenience flags and raw --do actions into one action
// list: search, then shortcut, then clicks, then --do in order.
func (f *viewFlags) script() ([]replay.Action, error) {
	var out []replay.Action
	if f.search != "" {
		out = append(out, replay.Action{Kind: replay.Search, Text: f.search})
	}
	if f.shortcut != "" {
		out = append(out, replay.Action{Kind: replay.Shortcut, Text: f.shortcut})
	}
	for _, c := range f.clicks {
		if c < 1 {
			return nil, errors.Errorf("--click needs a 1-based column, got %d", c)
		}
		out = append(out, replay.Action{Kind: replay.Click, Column: c})
	}
	for _, raw := range f.actions {
		a, err := replay.ParseAction(raw)
		if err != nil {
			return nil, errors.Wrap(err, "--do")
		}
		out = append(out, a)
	}
	return out, nil
}

func newViewCommand(a *app) *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "view PAGE",
		Short: "Replay interactions on a rendered page and print the result",
		Long: `Replay interactions on a rendered page and print the result.

PAGE is a file produced by 'statuspage render', or - for stdin. The view
state in --url is applied first, exactly as when a shared link is opened;
the scripted interactions follow.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd.OutOrStdout(), args[0], &flags)
		},
	}
	cmd.Flags().StringVar(&flags.url, "url", "", "Page URL carrying the view state (default derived from PAGE)")
	cmd.Flags().StringVar(&flags.search, "search", "", "Text to type into the search box")
	cmd.Flags().StringVar(&flags.shortcut, "shortcut", "", "Shortcut link to click, e.g. red")
	cmd.Flags().IntSliceVar(&flags.clicks, "click", nil, "1-based header cell to click (repeatable)")
	cmd.Flags().StringArrayVar(&flags.actions, "do", nil, "Raw action: search:TEXT, shortcut:TEXT, click:N, scroll:X,Y, resize, hover (repeatable)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format: html, text, json or yaml")
	return cmd
}

func (a *app) runView(out io.Writer, pagePath string, flags *viewFlags) error {
	script, err := flags.script()
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if pagePath != "-" {
		f, err := os.Open(pagePath)
		if err != nil {
			return errors.Wrap(err, "open page")
		}
		defer f.Close()
		in = f
	}

	pageURL := flags.url
	if pageURL == "" {
		pageURL = "http://localhost/" + filepath.Base(pagePath)
	}

	sess, err := replay.Open(in, pageURL, a.opts.ViewOptions(), a.log.WithName("view"))
	if err != nil {
		return errors.Wrapf(err, "load %s", pagePath)
	}
	sess.DoAll(script)

	switch strings.ToLower(flags.format) {
	case "html":
		return sess.Doc.Render(out)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(newViewReport(sess))
	case "yaml", "yml":
		b, err := yaml.Marshal(newViewReport(sess))
		if err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		_, err = out.Write(b)
		return err
	case "text", "":
		return writeViewText(out, sess.Doc, a.opts.MetaColumns)
	default:
		return errors.Errorf("unknown format %q (expected html, text, json or yaml)", flags.format)
	}
}

// viewReport is the machine-readable result of a replay. Row cells keep
// their markup so squares and markers survive.
type viewReport struct {
	URL     string     `json:"url" yaml:"url"`
	Terms   []string   `json:"terms" yaml:"terms"`
	Sort    int        `json:"sort" yaml:"sort"`
	Reverse bool       `json:"reverse" yaml:"reverse"`
	Query   string     `json:"query" yaml:"query"`
	Header  []string   `json:"header" yaml:"header"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

func newViewReport(sess *replay.Session) viewReport {
	st := sess.Controller.State()
	v := viewReport{
		URL:     sess.Doc.URL(),
		Terms:   st.Terms,
		Sort:    st.Sort,
		Reverse: st.Reverse,
		Query:   viewstate.Encode(st),
		Header:  sess.Doc.HeaderTitles(),
		Rows:    [][]string{},
	}
	if v.Terms == nil {
		v.Terms = []string{}
	}
	for _, tr := range sess.Doc.TableRows() {
		var row []string
		for pos := 1; dom.Cell(tr, pos) != nil; pos++ {
			row = append(row, dom.InnerHTML(dom.Cell(tr, pos)))
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}
