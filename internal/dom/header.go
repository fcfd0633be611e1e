package dom

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Width estimates used when a header cell carries no data-width attribute.
const (
	CharWidth   = 8
	CellPadding = 16
)

// Header is the floating clone of the table header. The page's own thead
// stays in place, invisible, and keeps driving column widths; the clone
// is detached from that computation and carries a spacer per cell whose
// width has to be mirrored from the original.
type Header struct {
	orig  *html.Node
	clone *html.Node
}

// Header returns the floating header, creating the clone on first use.
// ok is false when the page has no table header.
func (d *Document) Header() (h *Header, ok bool) {
	if d.header != nil {
		return d.header, true
	}
	if d.thead == nil || d.table == nil {
		return nil, false
	}

	clone := cloneNode(d.thead)
	addClass(clone, "floating")
	setStyle(clone, "display", "none")
	for _, th := range findAll(clone, isElement(atom.Th)) {
		spacer := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
		SetAttr(spacer, "class", "spacer")
		th.AppendChild(spacer)
	}
	d.table.InsertBefore(clone, d.table.FirstChild)

	d.header = &Header{orig: d.thead, clone: clone}
	return d.header, true
}

// SetFixed toggles the fixed class on the clone.
func (h *Header) SetFixed(fixed bool) {
	if fixed {
		addClass(h.clone, "fixed")
		return
	}
	removeClass(h.clone, "fixed")
}

// Fixed reports whether the clone is pinned.
func (h *Header) Fixed() bool { return HasClass(h.clone, "fixed") }

// SetOffset shifts the clone left by offset pixels.
func (h *Header) SetOffset(offset int) {
	setStyle(h.clone, "left", strconv.Itoa(-offset)+"px")
}

// Offset returns the applied left shift in pixels.
func (h *Header) Offset() int {
	v := strings.TrimSuffix(styleValue(h.clone, "left"), "px")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return -n
}

// ColumnWidths returns the rendered width of each cell in the original
// header row. Headless pages have no layout engine, so a data-width
// attribute wins and the text width is the fallback.
func (h *Header) ColumnWidths() []int {
	tr := firstChild(h.orig, atom.Tr)
	if tr == nil {
		return nil
	}
	var out []int
	for _, th := range children(tr, atom.Th) {
		if w, err := strconv.Atoi(Attr(th, "data-width")); err == nil && w >= 0 {
			out = append(out, w)
			continue
		}
		text := strings.TrimSpace(Text(firstTextBlock(th)))
		out = append(out, runewidth.StringWidth(text)*CharWidth+CellPadding)
	}
	return out
}

// SetSpacerWidths sizes the spacer in each clone cell. Extra widths are
// ignored; cells without a width keep their spacer as is.
func (h *Header) SetSpacerWidths(widths []int) {
	tr := firstChild(h.clone, atom.Tr)
	if tr == nil {
		return
	}
	for i, th := range children(tr, atom.Th) {
		if i >= len(widths) {
			return
		}
		spacer := findFirst(th, hasClass("spacer"))
		if spacer == nil {
			continue
		}
		setStyle(spacer, "width", strconv.Itoa(widths[i])+"px")
	}
}

// SpacerWidths reads back the spacer widths, -1 for an unsized spacer.
func (h *Header) SpacerWidths() []int {
	var out []int
	for _, spacer := range findAll(h.clone, hasClass("spacer")) {
		w, err := strconv.Atoi(strings.TrimSuffix(styleValue(spacer, "width"), "px"))
		if err != nil {
			w = -1
		}
		out = append(out, w)
	}
	return out
}

// Show makes the clone visible.
func (h *Header) Show() { removeStyle(h.clone, "display") }

// Visible reports whether Show has been called.
func (h *Header) Visible() bool { return styleValue(h.clone, "display") != "none" }

// TableWidth is the sum of the original column widths.
func (h *Header) TableWidth() int {
	total := 0
	for _, w := range h.ColumnWidths() {
		total += w
	}
	return total
}
