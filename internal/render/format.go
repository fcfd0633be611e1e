package render

import (
	"fmt"
	"html"
	"html/template"
	"sort"
	"strings"
)

// DefaultRepos are the apt repositories in the order their versions appear
// in a version cell.
var DefaultRepos = []string{"building", "shadow-fixed", "ros/public"}

// Square classes. A square for a package at the expected version carries
// no class.
const (
	ClassOutdated = "o"
	ClassMissing  = "m"
	ClassObsolete = "obs"
	ClassIgnored  = "i"
)

var typeLabels = map[string]string{
	"wet":     "wet",
	"dry":     "dry",
	"unknown": "?",
	"variant": "var",
}

// Row is one formatted table row.
type Row struct {
	Cells []template.HTML
}

// HeaderCell is a column title with the per-repository count of packages
// present in that column.
type HeaderCell struct {
	Label string
	Sums  []int
}

// FormatRows sorts the table by package name and renders every row.
func FormatRows(t *Table, repos []string) []Row {
	rows := make([][]string, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, FormatRow(r, repos))
	}
	return out
}

// FormatRow renders one CSV record. Version cells become one square per
// repository; rows whose version columns disagree get a "diff" marker and
// cells whose last two repositories disagree get a "sync" marker.
func FormatRow(rec []string, repos []string) Row {
	pkgType := rec[2]
	noSource := pkgType == "dry" || pkgType == "variant"
	latest := rec[1]
	if pkgType == "unknown" {
		latest = ""
	}

	cells := make([]template.HTML, len(rec))
	distinct := make(map[string]struct{})
	for i := MetaColumns; i < len(rec); i++ {
		// Every third column is the source package; dry and variant
		// packages have none, so those cells never count as a difference.
		sourceColumn := i%3 == 0
		if !noSource || !sourceColumn {
			distinct[rec[i]] = struct{}{}
		}
		expected := latest
		if noSource && sourceColumn {
			expected = ""
		}
		cells[i] = formatVersionsCell(rec[i], expected, repos)
	}

	name := html.EscapeString(rec[0])
	if len(distinct) > 1 {
		name += ` <span class="ht">diff</span>`
	}
	cells[0] = template.HTML("<div>" + name + "</div>")
	cells[1] = template.HTML("<div>" + html.EscapeString(rec[1]) + "</div>")

	label, ok := typeLabels[pkgType]
	if !ok {
		label = pkgType
	}
	cells[2] = template.HTML(html.EscapeString(label))
	return Row{Cells: cells}
}

func formatVersionsCell(cell, latest string, repos []string) template.HTML {
	versions := CellVersions(cell)
	var b strings.Builder
	for j, v := range versions {
		if j >= len(repos) {
			break
		}
		b.WriteString(square(repos[j], v, VersionClass(v, latest)))
	}
	if len(versions) >= 3 && versions[1] != versions[2] {
		b.WriteString(`<span class="ht">sync</span>`)
	}
	return template.HTML(b.String())
}

// VersionClass picks the square class for version given the expected
// version. An empty expected version means no package is expected.
func VersionClass(version, expected string) string {
	if expected == "" {
		if version == Missing {
			return ClassIgnored
		}
		return ClassObsolete
	}
	switch version {
	case Missing:
		return ClassMissing
	case expected:
		return ""
	default:
		return ClassOutdated
	}
}

func square(repo, version, class string) string {
	title := html.EscapeString(repo + ": " + version)
	if class == "" {
		return fmt.Sprintf(`<a title="%s"></a>`, title)
	}
	return fmt.Sprintf(`<a class="%s" title="%s"></a>`, class, title)
}

// HeaderCells capitalizes the column titles and counts, for every version
// column, how many packages each repository carries.
func HeaderCells(t *Table, repos []string) []HeaderCell {
	out := make([]HeaderCell, len(t.Header))
	for i, h := range t.Header {
		out[i].Label = capitalize(h)
		if i < MetaColumns {
			continue
		}
		sums := make([]int, len(repos))
		for _, rec := range t.Rows {
			for j, v := range CellVersions(rec[i]) {
				if j < len(sums) && v != Missing {
					sums[j]++
				}
			}
		}
		out[i].Sums = sums
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
