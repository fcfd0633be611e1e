// Package engine filters and sorts the indexed table rows for a view state.
//
// Filtering is a literal substring match of every query term against a
// row's full markup, not just its visible text. That is what lets the color
// keywords work: "blue" is rewritten to the class attribute of the blue
// squares and matched against the markup. It also means a term can match
// attribute text the user never sees.
package engine

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-logr/logr"

	"github.com/cabewaldrop/statuspage/internal/rowindex"
	"github.com/cabewaldrop/statuspage/internal/viewstate"
)

// MinTermLength is the shortest term that takes part in filtering.
const MinTermLength = 3

// DefaultAliases maps color keywords to the markup of the matching squares.
var DefaultAliases = map[string]string{
	"blue":   `class="o"`,
	"red":    `class="m"`,
	"yellow": `class="obs"`,
	"gray":   `class="i"`,
}

// Engine turns a view state into the rows to render. It remembers the last
// state it applied so repeated events with an unchanged state do no work.
type Engine struct {
	aliases map[string]string
	log     logr.Logger

	last    *appliedKey
	applied int
}

type appliedKey struct {
	terms   []string
	sort    int
	reverse bool
}

func (k *appliedKey) equal(o appliedKey) bool {
	return slices.Equal(k.terms, o.terms) && k.sort == o.sort && k.reverse == o.reverse
}

// New returns an engine using aliases for keyword substitution. A nil map
// selects DefaultAliases.
func New(aliases map[string]string, log logr.Logger) *Engine {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Engine{aliases: aliases, log: log}
}

// Terms returns the effective filter terms: short terms dropped, aliases
// substituted.
func (e *Engine) Terms(raw []string) []string {
	var out []string
	for _, t := range raw {
		if utf8.RuneCountInString(t) < MinTermLength {
			continue
		}
		if sub, ok := e.aliases[t]; ok {
			t = sub
		}
		out = append(out, t)
	}
	return out
}

// Apply computes the rows to render for s. changed is false when s is equal
// to the previously applied state, in which case rows is nil and the
// current rendering should be left alone.
func (e *Engine) Apply(idx *rowindex.Index, s viewstate.ViewState) (rows []rowindex.Row, changed bool) {
	key := appliedKey{terms: e.Terms(s.Terms), sort: s.Sort, reverse: s.Reverse}
	if e.last != nil && e.last.equal(key) {
		e.log.V(1).Info("no change, skipping rebuilding table")
		return nil, false
	}

	if len(key.terms) > 0 {
		e.log.V(1).Info("filtering", "terms", key.terms)
	}
	rows = Filter(idx.Rows(), key.terms)
	if s.Sorted() {
		Sort(rows, s.Sort, s.Reverse)
	}
	e.log.Info("rows matched", "count", len(rows), "total", idx.Len())

	e.last = &key
	e.applied++
	return rows, true
}

// Applied returns the number of recomputations performed.
func (e *Engine) Applied() int { return e.applied }

// Reset forgets the last applied state.
func (e *Engine) Reset() { e.last = nil }

// Filter returns the rows whose markup contains every term. The result is
// always a fresh slice, so it can be sorted without touching rows.
func Filter(rows []rowindex.Row, terms []string) []rowindex.Row {
	if len(terms) == 0 {
		return slices.Clone(rows)
	}
	out := make([]rowindex.Row, 0, len(rows))
	for _, r := range rows {
		if matches(r.Markup, terms) {
			out = append(out, r)
		}
	}
	return out
}

func matches(markup string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(markup, t) {
			return false
		}
	}
	return true
}

// Sort orders rows in place by the key of the 1-based sort column. The sort
// is stable and reverse only flips the comparison, so rows with equal keys
// keep their relative order either way. A column outside the keys leaves
// the order unchanged.
func Sort(rows []rowindex.Row, column int, reverse bool) {
	i := column - 1
	order := 1
	if reverse {
		order = -1
	}
	slices.SortStableFunc(rows, func(a, b rowindex.Row) int {
		if i < 0 || i >= len(a.Keys) || i >= len(b.Keys) {
			return 0
		}
		return order * cmp.Compare(a.Keys[i], b.Keys[i])
	})
}

// Join renders rows as table body markup.
func Join(rows []rowindex.Row) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString("<tr>")
		b.WriteString(r.Markup)
		b.WriteString("</tr>")
	}
	return b.String()
}
