// Package replay drives a status page headlessly: it parses a page, wires
// it to a view controller on a simulated clock and applies a script of UI
// actions, leaving the resulting document behind for inspection.
package replay

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/cabewaldrop/statuspage/internal/dom"
	"github.com/cabewaldrop/statuspage/internal/sticky"
	"github.com/cabewaldrop/statuspage/internal/view"
)

// Kind is the type of a scripted action.
type Kind int

const (
	Search Kind = iota
	Shortcut
	Click
	Scroll
	Resize
	Hover
)

var kindNames = map[string]Kind{
	"search":   Search,
	"shortcut": Shortcut,
	"click":    Click,
	"scroll":   Scroll,
	"resize":   Resize,
	"hover":    Hover,
}

// Action is one scripted UI interaction.
type Action struct {
	Kind Kind
	// Text is typed into the search box or names the shortcut link.
	Text string
	// Column is the 1-based header cell to click.
	Column int
	// ScrollX and ScrollY are the page scroll offsets.
	ScrollX int
	ScrollY int
}

// ParseAction reads an action written as kind[:argument], for example
// "search:roscpp", "shortcut:red", "click:2", "scroll:40,300", "resize" or
// "hover".
func ParseAction(s string) (Action, error) {
	name, arg, _ := strings.Cut(s, ":")
	kind, ok := kindNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Action{}, fmt.Errorf("unknown action %q", name)
	}

	a := Action{Kind: kind}
	switch kind {
	case Search, Shortcut:
		a.Text = arg
	case Click:
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return Action{}, fmt.Errorf("click needs a 1-based column, got %q", arg)
		}
		a.Column = n
	case Scroll:
		xs, ys, found := strings.Cut(arg, ",")
		if !found {
			return Action{}, fmt.Errorf("scroll needs X,Y, got %q", arg)
		}
		x, errX := strconv.Atoi(strings.TrimSpace(xs))
		y, errY := strconv.Atoi(strings.TrimSpace(ys))
		if errX != nil || errY != nil {
			return Action{}, fmt.Errorf("scroll needs integer X,Y, got %q", arg)
		}
		a.ScrollX, a.ScrollY = x, y
	}
	return a, nil
}

// DefaultViewportWidth is the simulated window width used for scroll
// actions.
const DefaultViewportWidth = 1024

// Session is a parsed page under the control of a view controller.
type Session struct {
	Doc        *dom.Document
	Controller *view.Controller

	// TableTop is the simulated distance from the page top to the table.
	TableTop      int
	ViewportWidth int

	clock    *testingclock.FakeClock
	header   *dom.Header
	meta     int
	debounce time.Duration
}

// Open parses the page from r, loaded from pageURL, and starts a
// controller on it. Startup work, including any filtering requested by the
// URL, has run by the time Open returns.
func Open(r io.Reader, pageURL string, opts view.Options, log logr.Logger) (*Session, error) {
	doc, err := dom.Parse(r, pageURL)
	if err != nil {
		return nil, err
	}

	fc := testingclock.NewFakeClock(time.Now())
	opts.Clock = fc
	if opts.Debounce <= 0 {
		opts.Debounce = view.DefaultDebounce
	}

	s := &Session{
		Doc:           doc,
		ViewportWidth: DefaultViewportWidth,
		clock:         fc,
		meta:          opts.MetaColumns,
		debounce:      opts.Debounce,
	}
	var layout sticky.Layout
	if h, ok := doc.Header(); ok {
		s.header = h
		layout = h
	}
	s.Controller = view.NewController(doc, layout, opts, log)
	s.Controller.Start()
	s.Controller.Loop().RunPending()
	return s, nil
}

// Do applies a and runs the loop until it is idle. Searches wait out the
// debounce delay on the simulated clock.
func (s *Session) Do(a Action) {
	c := s.Controller
	switch a.Kind {
	case Search:
		s.Doc.SetSearchText(a.Text)
		c.Dispatch(view.Event{Role: view.RoleSearchInput, Text: a.Text})
		c.Loop().RunPending()
		s.clock.Step(s.debounce)
	case Shortcut:
		c.Dispatch(view.Event{Role: view.RoleShortcut, Text: a.Text})
	case Click:
		c.Dispatch(view.Event{Role: view.RoleHeaderCell, Column: a.Column})
	case Scroll:
		c.Dispatch(view.Event{Role: view.RoleScroll, Geometry: s.geometry(a)})
	case Resize:
		c.Dispatch(view.Event{Role: view.RoleResize})
	case Hover:
		for _, lt := range s.Doc.VersionLinks(s.meta) {
			c.Dispatch(view.Event{Role: view.RoleVersionLink, Link: lt.Link, Target: lt.Target})
		}
	}
	c.Loop().RunPending()
}

// DoAll applies every action in order.
func (s *Session) DoAll(actions []Action) {
	for _, a := range actions {
		s.Do(a)
	}
}

func (s *Session) geometry(a Action) sticky.Geometry {
	g := sticky.Geometry{
		ScrollX:       a.ScrollX,
		ScrollY:       a.ScrollY,
		TableTop:      s.TableTop,
		ViewportWidth: s.ViewportWidth,
	}
	if s.header != nil {
		g.TableWidth = s.header.TableWidth()
	}
	return g
}
