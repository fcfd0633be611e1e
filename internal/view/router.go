package view

import (
	"github.com/cabewaldrop/statuspage/internal/annotate"
	"github.com/cabewaldrop/statuspage/internal/sticky"
)

// Role identifies the kind of element an event came from. Handlers are
// bound once per role instead of once per element, so replacing the table
// body never requires rebinding.
type Role int

const (
	RoleSearchInput Role = iota
	RoleShortcut
	RoleHeaderCell
	RoleVersionLink
	RoleScroll
	RoleResize
)

var roleNames = map[Role]string{
	RoleSearchInput: "search-input",
	RoleShortcut:    "shortcut",
	RoleHeaderCell:  "header-cell",
	RoleVersionLink: "version-link",
	RoleScroll:      "scroll",
	RoleResize:      "resize",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Element is an event target that handlers may decorate.
type Element interface {
	SetAttr(key, val string)
}

// Event is a UI event routed by role. Only the fields relevant to the role
// are set.
type Event struct {
	Role Role
	// Text is the search box value or the shortcut link text.
	Text string
	// Column is the 1-based position of a clicked header cell.
	Column int
	// Link describes a hovered version link; Target is the link itself.
	Link   annotate.Link
	Target Element
	// Geometry is sampled for scroll events.
	Geometry sticky.Geometry
}

// Router dispatches events to the single handler bound for their role.
type Router struct {
	handlers map[Role]func(Event)
}

// NewRouter returns a router with no handlers.
func NewRouter() *Router {
	return &Router{handlers: make(map[Role]func(Event))}
}

// Handle binds fn to role, replacing any previous handler.
func (r *Router) Handle(role Role, fn func(Event)) {
	r.handlers[role] = fn
}

// Dispatch runs the handler for ev.Role and reports whether one was bound.
func (r *Router) Dispatch(ev Event) bool {
	fn, ok := r.handlers[ev.Role]
	if !ok {
		return false
	}
	fn(ev)
	return true
}
