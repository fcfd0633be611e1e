// Package annotate fills in the tooltip and job link of a version square
// when it is hovered. Rows can number in the thousands, so annotation is
// done on demand for one link instead of up front for every cell.
package annotate

import (
	"fmt"
	"strings"
)

// PackagePlaceholder is replaced by the package name in job URL templates.
const PackagePlaceholder = "{pkg}"

// Link describes a hovered version link and the row it sits in.
type Link struct {
	// Column is the 0-based index of the version column, counted after
	// the metadata columns.
	Column int
	// Repo is the 0-based position of the link within its cell; each cell
	// holds one square per repository.
	Repo int
	// Text is the link's own text, usually empty for squares.
	Text string
	// RowVersion is the text of the row's version column.
	RowVersion string
	// RowPackage is the text of the row's package cell.
	RowPackage string
}

// Annotation is what gets written back onto the link.
type Annotation struct {
	Title string
	Href  string
}

// Annotator builds annotations from the page's repository names and
// per-column job URL templates.
type Annotator struct {
	Repos           []string
	JobURLTemplates []string
}

// Annotate returns the title for l and, for the first repository only, the
// job URL with the row's package name substituted.
func (a *Annotator) Annotate(l Link) Annotation {
	ver := l.Text
	if ver == "" {
		ver = l.RowVersion
	}
	ann := Annotation{Title: a.repoName(l.Repo) + ": " + ver}

	if l.Repo == 0 && l.Column >= 0 && l.Column < len(a.JobURLTemplates) {
		tmpl := a.JobURLTemplates[l.Column]
		if tmpl != "" {
			ann.Href = strings.Replace(tmpl, PackagePlaceholder, PackageName(l.RowPackage), 1)
		}
	}
	return ann
}

func (a *Annotator) repoName(i int) string {
	if i >= 0 && i < len(a.Repos) {
		return a.Repos[i]
	}
	return fmt.Sprintf("repo %d", i+1)
}

// PackageName derives the job name of a package from its cell text: the
// first word, with underscores turned into dashes.
func PackageName(cell string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(cell), " ")
	return strings.ReplaceAll(name, "_", "-")
}
