package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/cabewaldrop/statuspage/internal/viewstate"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/page.html"),
)

// Options controls page generation.
type Options struct {
	Title     string
	Generated time.Time
	Repos     []string
	// Shortcuts are the keyword links shown next to the search box.
	Shortcuts []string
}

type shortcut struct {
	Text string
	Href string
}

type legendEntry struct {
	Key   template.HTML
	Value template.HTML
}

type pageData struct {
	Title     string
	Generated string
	Shortcuts []shortcut
	Legend    []legendEntry
	Header    []HeaderCell
	Rows      []Row
}

// Page writes the complete status page for t to w.
func Page(w io.Writer, t *Table, opts Options) error {
	repos := opts.Repos
	if len(repos) == 0 {
		repos = DefaultRepos
	}

	data := pageData{
		Title:  opts.Title,
		Legend: legend(repos),
		Header: HeaderCells(t, repos),
		Rows:   FormatRows(t, repos),
	}
	if !opts.Generated.IsZero() {
		data.Generated = opts.Generated.Format("2006-01-02 15:04:05 MST")
	}
	for _, s := range opts.Shortcuts {
		href := "?" + viewstate.Encode(viewstate.ViewState{Terms: []string{s}})
		data.Shortcuts = append(data.Shortcuts, shortcut{Text: s, Href: href})
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func legend(repos []string) []legendEntry {
	var squares, names []string
	for i, r := range repos {
		squares = append(squares, fmt.Sprintf(`<span class="square">%d</span>`, i+1))
		names = append(names, fmt.Sprintf("(%d) %s", i+1, template.HTMLEscapeString(r)))
	}
	return []legendEntry{
		{"wet", `<a href="http://ros.org/wiki/catkin">catkin</a>`},
		{"dry", `<a href="http://ros.org/wiki/rosbuild">rosbuild</a>`},
		{template.HTML(strings.Join(squares, "&nbsp;")), template.HTML("The apt repos " + strings.Join(names, ", "))},
		{`<span class="square pkgLatest">&nbsp;</span>`, "same version"},
		{`<span class="square pkgOutdated">&nbsp;</span>`, "different version"},
		{`<span class="square pkgMissing">&nbsp;</span>`, "missing"},
		{`<span class="square pkgObsolete">&nbsp;</span>`, "obsolete"},
		{`<span class="square pkgIgnore">&nbsp;</span>`, "intentionally missing"},
	}
}
