// Package rowindex captures the rows of the status table once, together
// with the keys used to sort them.
//
// The index is the permanent source of truth for filtering: after the first
// filter the table body only shows a subset of rows, so the page is never
// scanned again.
package rowindex

import (
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/net/html"

	"github.com/cabewaldrop/statuspage/internal/dom"
)

// Row is one table row as first rendered.
type Row struct {
	// Markup is the row's inner markup, kept verbatim.
	Markup string
	// Keys holds one sort key per configured sortable column.
	Keys []string
}

// Index is an immutable, ordered list of rows.
type Index struct {
	rows []Row
}

// Build scans rows in document order. sortColumns are 1-based cell
// positions; for each one the key is the cell's visible text, or its raw
// markup when the text is empty so icon-only cells still sort. A row
// without a cell at some position gets an empty key there.
func Build(rows []*html.Node, sortColumns []int, log logr.Logger) *Index {
	idx := &Index{rows: make([]Row, 0, len(rows))}
	for _, tr := range rows {
		row := Row{
			Markup: dom.InnerHTML(tr),
			Keys:   make([]string, len(sortColumns)),
		}
		for i, pos := range sortColumns {
			td := dom.Cell(tr, pos)
			key := dom.Text(td)
			if key == "" {
				key = dom.InnerHTML(td)
			}
			row.Keys[i] = key
		}
		idx.rows = append(idx.rows, row)
	}
	log.Info("rows scanned", "count", len(idx.rows))
	return idx
}

// New returns an index over already extracted rows.
func New(rows []Row) *Index {
	return &Index{rows: append([]Row(nil), rows...)}
}

// Rows returns the rows in document order. The slice is shared and must
// not be modified.
func (i *Index) Rows() []Row {
	if i == nil {
		return nil
	}
	return i.rows
}

// Len returns the number of rows.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.rows)
}

// Lazy builds an index on first use and keeps it for the session.
type Lazy struct {
	once sync.Once
	scan func() *Index
	idx  *Index
}

// NewLazy returns a Lazy that calls scan at most once.
func NewLazy(scan func() *Index) *Lazy {
	return &Lazy{scan: scan}
}

// Get returns the index, scanning on the first call.
func (l *Lazy) Get() *Index {
	l.once.Do(func() {
		l.idx = l.scan()
	})
	return l.idx
}

// Built reports whether the scan has already happened.
func (l *Lazy) Built() bool {
	return l.idx != nil
}
