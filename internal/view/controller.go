// Package view wires UI events to the filter/sort engine and the page URL.
//
// All state changes happen on one Loop goroutine: the search debounce timer
// and the startup resize are posted tasks, never concurrent handlers. After
// every change the controller recomputes the rows, replaces the table body
// and rewrites the URL in place.
package view

import (
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/net/html"
	"k8s.io/utils/clock"

	"github.com/cabewaldrop/statuspage/internal/annotate"
	"github.com/cabewaldrop/statuspage/internal/engine"
	"github.com/cabewaldrop/statuspage/internal/rowindex"
	"github.com/cabewaldrop/statuspage/internal/sticky"
	"github.com/cabewaldrop/statuspage/internal/viewstate"
)

// Page is the part of the UI layer the controller drives.
type Page interface {
	// URL returns the current page address.
	URL() string
	// ReplaceURL swaps the address without navigating.
	ReplaceURL(u string)
	// SetSearchText echoes the query into the search box.
	SetSearchText(text string)
	// TableRows returns the table body rows as first loaded.
	TableRows() []*html.Node
	// ReplaceRows replaces the table body with row markup.
	ReplaceRows(markup string)
	// HideBody and ShowBody bracket a load-time filter.
	HideBody()
	ShowBody()
}

// Options configures a Controller.
type Options struct {
	// SortColumns are the 1-based cell positions that produce sort keys.
	SortColumns []int
	// MetaColumns is the number of leading metadata columns; only their
	// header cells sort.
	MetaColumns int
	// Aliases overrides the keyword substitutions. Nil means defaults.
	Aliases map[string]string
	// Debounce is the search quiet period. Zero means DefaultDebounce.
	Debounce time.Duration
	// Clock drives the debounce timer. Nil means the real clock.
	Clock clock.WithDelayedExecution
	// Annotator fills in version link tooltips; nil disables hovering.
	Annotator *annotate.Annotator
}

// Session is the state owned by one page view: the lazily built row index,
// the current view state and the engine's memo.
type Session struct {
	Index  *rowindex.Lazy
	State  viewstate.ViewState
	Engine *engine.Engine
}

// Controller routes UI events into state changes.
type Controller struct {
	page    Page
	header  *sticky.Controller
	session *Session
	opts    Options
	log     logr.Logger

	loop     *Loop
	router   *Router
	debounce *Debouncer

	startOnce sync.Once
}

// NewController builds a controller for page. layout may be nil when the
// page has no header to float.
func NewController(page Page, layout sticky.Layout, opts Options, log logr.Logger) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}

	c := &Controller{
		page: page,
		opts: opts,
		log:  log,
		loop: NewLoop(),
	}
	c.session = &Session{
		Index: rowindex.NewLazy(func() *rowindex.Index {
			return rowindex.Build(page.TableRows(), opts.SortColumns, log)
		}),
		Engine: engine.New(opts.Aliases, log),
	}
	if layout != nil {
		c.header = sticky.New(layout, log)
	}
	c.debounce = NewDebouncer(opts.Clock, opts.Debounce, c.loop.Post)

	c.router = NewRouter()
	c.router.Handle(RoleSearchInput, c.onSearchInput)
	c.router.Handle(RoleShortcut, c.onShortcut)
	c.router.Handle(RoleHeaderCell, c.onHeaderClick)
	if opts.Annotator != nil {
		c.router.Handle(RoleVersionLink, c.onVersionHover)
	}
	if c.header != nil {
		c.router.Handle(RoleScroll, func(ev Event) { c.header.OnScroll(ev.Geometry) })
		c.router.Handle(RoleResize, func(Event) { c.header.MirrorColumnWidths() })
	}
	return c
}

// Loop returns the controller's event loop.
func (c *Controller) Loop() *Loop { return c.loop }

// Session returns the controller's application state.
func (c *Controller) Session() *Session { return c.session }

// State returns a copy of the current view state.
func (c *Controller) State() viewstate.ViewState {
	s := c.session.State
	s.Terms = slices.Clone(s.Terms)
	return s
}

// Header returns the sticky header controller, or nil.
func (c *Controller) Header() *sticky.Controller { return c.header }

// Start reads the initial state from the page URL and schedules the
// startup work. It only has an effect the first time it is called.
func (c *Controller) Start() {
	c.startOnce.Do(func() {
		c.session.State = viewstate.Decode(c.page.URL())
		if c.session.State.HasQuery() {
			c.page.SetSearchText(viewstate.SearchText(c.session.State))
		}

		// Column widths are only right once the page has laid out, so
		// the first mirror runs as a deferred task.
		if c.header != nil {
			c.loop.Post(c.header.MirrorColumnWidths)
		}

		if c.session.State.HasQuery() || c.session.State.Sorted() {
			c.page.HideBody()
			c.loop.Post(func() {
				c.refresh()
				c.page.ShowBody()
			})
		}
	})
}

// Dispatch queues ev for the loop.
func (c *Controller) Dispatch(ev Event) {
	c.loop.Post(func() {
		if !c.router.Dispatch(ev) {
			c.log.V(2).Info("unhandled event", "role", ev.Role.String())
		}
	})
}

func (c *Controller) onSearchInput(ev Event) {
	text := ev.Text
	c.debounce.Trigger(func() {
		c.session.State.Terms = viewstate.ParseSearchText(text)
		c.refresh()
	})
}

func (c *Controller) onShortcut(ev Event) {
	c.debounce.Cancel()
	c.session.State.Terms = viewstate.SplitQuery(ev.Text)
	c.page.SetSearchText(viewstate.SearchText(c.session.State))
	c.refresh()
}

func (c *Controller) onHeaderClick(ev Event) {
	if ev.Column < 1 || ev.Column > c.opts.MetaColumns {
		return
	}
	pos := slices.Index(c.opts.SortColumns, ev.Column)
	if pos < 0 {
		return
	}
	sortCol := pos + 1

	s := &c.session.State
	if s.Sort == sortCol {
		s.Reverse = !s.Reverse
	} else {
		s.Sort = sortCol
		s.Reverse = false
	}
	c.refresh()
}

func (c *Controller) onVersionHover(ev Event) {
	if ev.Target == nil {
		return
	}
	ann := c.opts.Annotator.Annotate(ev.Link)
	ev.Target.SetAttr("title", ann.Title)
	if ann.Href != "" {
		ev.Target.SetAttr("href", ann.Href)
	}
}

// refresh recomputes the visible rows and syncs the URL. Nothing is
// rendered when the engine reports the state unchanged.
func (c *Controller) refresh() {
	rows, changed := c.session.Engine.Apply(c.session.Index.Get(), c.session.State)
	if !changed {
		return
	}
	c.page.ReplaceRows(engine.Join(rows))
	c.page.ReplaceURL(viewstate.ReplaceURL(c.page.URL(), c.session.State))
}
