package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type predicate func(*html.Node) bool

func isElement(a atom.Atom) predicate {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func hasClass(class string) predicate {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, class)
	}
}

// findFirst returns the first descendant of n (n included) in document
// order that matches p.
func findFirst(n *html.Node, p predicate) *html.Node {
	if p(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, p); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, p predicate) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if p(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func firstChild(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

func children(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

// cells returns the td and th children of a row.
func cells(tr *html.Node) []*html.Node {
	var out []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			out = append(out, c)
		}
	}
	return out
}

// Cell returns the cell at 1-based position pos in row tr, or nil.
func Cell(tr *html.Node, pos int) *html.Node {
	tds := cells(tr)
	if pos < 1 || pos > len(tds) {
		return nil
	}
	return tds[pos-1]
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			break
		}
	}
	return b.String()
}

// Attr returns the value of attribute key on n, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets or adds attribute key on n.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	classes := strings.Fields(Attr(n, "class"))
	SetAttr(n, "class", strings.Join(append(classes, class), " "))
}

func removeClass(n *html.Node, class string) {
	var kept []string
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		removeAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// styles parses an inline style attribute into ordered property pairs.
func styles(n *html.Node) [][2]string {
	var out [][2]string
	for _, decl := range strings.Split(Attr(n, "style"), ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out = append(out, [2]string{strings.TrimSpace(prop), strings.TrimSpace(val)})
	}
	return out
}

func writeStyles(n *html.Node, decls [][2]string) {
	if len(decls) == 0 {
		removeAttr(n, "style")
		return
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+": "+d[1])
	}
	SetAttr(n, "style", strings.Join(parts, "; "))
}

func styleValue(n *html.Node, prop string) string {
	for _, d := range styles(n) {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

func setStyle(n *html.Node, prop, val string) {
	decls := styles(n)
	for i, d := range decls {
		if d[0] == prop {
			decls[i][1] = val
			writeStyles(n, decls)
			return
		}
	}
	writeStyles(n, append(decls, [2]string{prop, val}))
}

func removeStyle(n *html.Node, prop string) {
	decls := styles(n)
	out := decls[:0]
	for _, d := range decls {
		if d[0] != prop {
			out = append(out, d)
		}
	}
	writeStyles(n, out)
}

// cloneNode deep-copies n. The copy is detached.
func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

// LinkClasses returns the class attribute of every link directly inside n,
// in document order. Version cells carry one link per repository.
func LinkClasses(n *html.Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	for _, a := range children(n, atom.A) {
		out = append(out, Attr(a, "class"))
	}
	return out
}
