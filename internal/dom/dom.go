// Package dom is the headless UI layer for the status page.
//
// It wraps a page parsed with golang.org/x/net/html and exposes the handful
// of operations the view and sticky header controllers need: reading table
// rows, replacing the table body, echoing the query into the search box,
// replacing the page URL and driving the floating header clone. Nothing
// here knows about filtering or sorting.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cabewaldrop/statuspage/internal/annotate"
)

// Document is a parsed status page.
type Document struct {
	root   *html.Node
	table  *html.Node
	thead  *html.Node
	tbody  *html.Node
	search *html.Node
	header *Header
	url    string
}

// Parse reads a page from r. pageURL is the address the page was loaded
// from; its query component carries the initial view state.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	d := &Document{root: root, url: pageURL}
	d.table = findFirst(root, isElement(atom.Table))
	if d.table != nil {
		d.thead = firstChild(d.table, atom.Thead)
		d.tbody = firstChild(d.table, atom.Tbody)
	}
	if s := findFirst(root, hasClass("search")); s != nil {
		d.search = findFirst(s, isElement(atom.Input))
	}
	return d, nil
}

// URL returns the current page address.
func (d *Document) URL() string { return d.url }

// ReplaceURL swaps the page address in place.
func (d *Document) ReplaceURL(u string) { d.url = u }

// SetSearchText sets the value of the search box. No-op without one.
func (d *Document) SetSearchText(text string) {
	if d.search == nil {
		return
	}
	SetAttr(d.search, "value", text)
}

// SearchText returns the current value of the search box.
func (d *Document) SearchText() string {
	if d.search == nil {
		return ""
	}
	return Attr(d.search, "value")
}

// TableRows returns the body rows in document order.
func (d *Document) TableRows() []*html.Node {
	if d.tbody == nil {
		return nil
	}
	return children(d.tbody, atom.Tr)
}

// ReplaceRows replaces the table body with markup, which is parsed in a
// tbody context.
func (d *Document) ReplaceRows(markup string) {
	if d.tbody == nil {
		return
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), d.tbody)
	if err != nil {
		return
	}
	for c := d.tbody.FirstChild; c != nil; {
		next := c.NextSibling
		d.tbody.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		d.tbody.AppendChild(n)
	}
}

// HideBody hides the table body while a load-time filter is pending.
func (d *Document) HideBody() {
	if d.tbody != nil {
		setStyle(d.tbody, "visibility", "hidden")
	}
}

// ShowBody reverses HideBody.
func (d *Document) ShowBody() {
	if d.tbody != nil {
		removeStyle(d.tbody, "visibility")
	}
}

// BodyHidden reports whether the table body is currently hidden.
func (d *Document) BodyHidden() bool {
	return d.tbody != nil && styleValue(d.tbody, "visibility") == "hidden"
}

// Shortcuts returns the text of the keyword links next to the search box.
func (d *Document) Shortcuts() []string {
	s := findFirst(d.root, hasClass("search"))
	if s == nil {
		return nil
	}
	var out []string
	for _, a := range findAll(s, isElement(atom.A)) {
		out = append(out, Text(a))
	}
	return out
}

// HeaderTitles returns the visible text of each header cell.
func (d *Document) HeaderTitles() []string {
	if d.thead == nil {
		return nil
	}
	tr := firstChild(d.thead, atom.Tr)
	if tr == nil {
		return nil
	}
	var out []string
	for _, th := range children(tr, atom.Th) {
		out = append(out, strings.TrimSpace(Text(firstTextBlock(th))))
	}
	return out
}

// LinkTarget is a version link in the table body along with the row context
// needed to annotate it.
type LinkTarget struct {
	Link   annotate.Link
	Target Element
}

// VersionLinks lists every link in the version columns, that is every cell
// after the first meta columns. Package and version come from the row's
// first and second cells.
func (d *Document) VersionLinks(meta int) []LinkTarget {
	var out []LinkTarget
	for _, tr := range d.TableRows() {
		tds := cells(tr)
		var version, pkg string
		if len(tds) > 1 {
			version = Text(tds[1])
		}
		if len(tds) > 0 {
			if div := findFirst(tds[0], isElement(atom.Div)); div != nil {
				pkg = Text(div)
			}
		}
		for ci := meta; ci < len(tds); ci++ {
			for ri, a := range children(tds[ci], atom.A) {
				out = append(out, LinkTarget{
					Link: annotate.Link{
						Column:     ci - meta,
						Repo:       ri,
						Text:       Text(a),
						RowVersion: version,
						RowPackage: pkg,
					},
					Target: Element{n: a},
				})
			}
		}
	}
	return out
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// Element is a handle on a single node that event handlers may decorate.
type Element struct {
	n *html.Node
}

// SetAttr sets an attribute on the element.
func (e Element) SetAttr(key, val string) {
	if e.n != nil {
		SetAttr(e.n, key, val)
	}
}

// Attr returns an attribute of the element.
func (e Element) Attr(key string) string {
	if e.n == nil {
		return ""
	}
	return Attr(e.n, key)
}

func firstTextBlock(th *html.Node) *html.Node {
	// Header cells carry per-repository sums after a <br>; only the label
	// before it is the title.
	clone := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	for c := th.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Br {
			break
		}
		clone.AppendChild(cloneNode(c))
	}
	return clone
}
