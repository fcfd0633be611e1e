// Package viewstate holds the filter and sort state of the status table and
// its encoding in the page URL.
//
// The URL is the only place the state is persisted, so every view can be
// shared or bookmarked. Three keys are used:
//
//	q  filter terms, '+'-joined
//	s  sort column, 1-based
//	r  reverse flag, present and non-zero means reversed
//
// Decoding never fails: unknown keys and malformed values are dropped.
package viewstate

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Query parameter keys, in the order Encode emits them.
const (
	KeyQuery   = "q"
	KeySort    = "s"
	KeyReverse = "r"
)

// TermDelimiter separates terms inside the q parameter.
const TermDelimiter = "+"

// ViewState is the interactive state of one page view.
type ViewState struct {
	// Terms are the raw query terms. Empty means no filter.
	Terms []string
	// Sort is the 1-based sortable column, 0 when unsorted.
	Sort int
	// Reverse flips the sort direction; it has no effect while unsorted.
	Reverse bool
}

// HasQuery reports whether any terms are set.
func (s ViewState) HasQuery() bool { return len(s.Terms) > 0 }

// Sorted reports whether a sort column is set.
func (s ViewState) Sorted() bool { return s.Sort > 0 }

// Query returns the terms joined by the delimiter.
func (s ViewState) Query() string { return strings.Join(s.Terms, TermDelimiter) }

// Equal compares two states by value.
func (s ViewState) Equal(o ViewState) bool {
	return slices.Equal(s.Terms, o.Terms) && s.Sort == o.Sort && s.Reverse == o.Reverse
}

// Decode reads the state from the query component of rawURL. The query
// is split on '&' and '=' by hand rather than with url.ParseQuery, which
// would turn the '+' delimiters into spaces.
func Decode(rawURL string) ViewState {
	_, query, ok := strings.Cut(rawURL, "?")
	if !ok {
		return ViewState{}
	}
	query, _, _ = strings.Cut(query, "#")
	return DecodeQuery(query)
}

// DecodeQuery reads the state from a bare query string, as produced by
// Encode.
func DecodeQuery(query string) ViewState {
	var s ViewState
	if query == "" {
		return s
	}
	for _, part := range strings.Split(query, "&") {
		key, val, _ := strings.Cut(part, "=")
		switch key {
		case KeyQuery:
			s.Terms = decodeTerms(val)
		case KeySort:
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				s.Sort = n
			}
		case KeyReverse:
			s.Reverse = val != "" && val != "0"
		}
	}
	return s
}

// SplitQuery splits a raw query on the delimiter without unescaping.
// An empty query has no terms.
func SplitQuery(q string) []string {
	if q == "" {
		return nil
	}
	return strings.Split(q, TermDelimiter)
}

func decodeTerms(val string) []string {
	terms := SplitQuery(val)
	for i, t := range terms {
		if unescaped, err := url.PathUnescape(t); err == nil {
			terms[i] = unescaped
		}
	}
	return terms
}

// Encode serializes s as a query string without the leading '?'. Keys come
// out in q, s, r order and unset fields are omitted.
func Encode(s ViewState) string {
	var parts []string
	if s.HasQuery() {
		terms := make([]string, len(s.Terms))
		for i, t := range s.Terms {
			terms[i] = escapeTerm(t)
		}
		parts = append(parts, KeyQuery+"="+strings.Join(terms, TermDelimiter))
	}
	if s.Sorted() {
		parts = append(parts, KeySort+"="+strconv.Itoa(s.Sort))
	}
	if s.Reverse {
		parts = append(parts, KeyReverse+"=1")
	}
	return strings.Join(parts, "&")
}

// escapeTerm escapes everything that would break Decode: '&', '=', '+',
// '#' and '%'. Spaces become %20 so they are not read back as delimiters.
func escapeTerm(t string) string {
	return strings.ReplaceAll(url.QueryEscape(t), "+", "%20")
}

// ReplaceURL returns current with its query replaced by the encoding of s.
// The fragment is dropped. The result is meant for an in-place URL
// replacement, not a navigation.
func ReplaceURL(current string, s ViewState) string {
	base, _, _ := strings.Cut(current, "#")
	base, _, _ = strings.Cut(base, "?")
	if q := Encode(s); q != "" {
		return base + "?" + q
	}
	return base
}

// SearchText renders the terms the way they are echoed into the search
// box, with the delimiter shown as a space.
func SearchText(s ViewState) string {
	return strings.Join(s.Terms, " ")
}

// ParseSearchText splits search box input into terms. Whitespace runs and
// the '+' delimiter both separate terms.
func ParseSearchText(text string) []string {
	terms := strings.FieldsFunc(text, func(r rune) bool {
		return r == '+' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(terms) == 0 {
		return nil
	}
	return terms
}
