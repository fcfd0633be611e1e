// Package sticky keeps the cloned table header either inline with the
// table or pinned to the top of the viewport.
//
// The controller is driven purely by scroll and resize events and never
// looks at the view state; filtering and sorting do not affect it.
package sticky

import (
	"github.com/go-logr/logr"
)

// Mode is the position mode of the header clone.
type Mode int

const (
	// Floating renders the header inline with the table.
	Floating Mode = iota
	// Fixed pins the header to the viewport.
	Fixed
)

func (m Mode) String() string {
	switch m {
	case Floating:
		return "floating"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// HeaderState is the current header mode. Offset only means something
// while Fixed and always lies in [0, tableWidth-viewportWidth].
type HeaderState struct {
	Mode   Mode
	Offset int
}

// Geometry is the page geometry sampled when a scroll event fires.
type Geometry struct {
	ScrollX       int
	ScrollY       int
	TableTop      int
	TableWidth    int
	ViewportWidth int
}

// Layout is the part of the UI layer that positions the header clone.
type Layout interface {
	// SetFixed switches the clone between pinned and inline.
	SetFixed(fixed bool)
	// SetOffset shifts the pinned clone left by offset pixels.
	SetOffset(offset int)
	// ColumnWidths returns the rendered widths of the live table columns.
	ColumnWidths() []int
	// SetSpacerWidths sizes the clone's per-cell spacers.
	SetSpacerWidths(widths []int)
	// Show makes the clone visible.
	Show()
}

// Controller is the header state machine.
type Controller struct {
	layout Layout
	log    logr.Logger

	state HeaderState
	// lastApplied is the offset most recently written to the layout, or
	// nil before the first write. It survives trips back to Floating.
	lastApplied *int
	mirrored    int
}

// New returns a controller in Floating mode.
func New(layout Layout, log logr.Logger) *Controller {
	return &Controller{layout: layout, log: log}
}

// State returns the current header state.
func (c *Controller) State() HeaderState { return c.state }

// OnScroll updates the mode for the new scroll position. While Fixed the
// horizontal offset tracks the page's horizontal scroll, and is written to
// the layout only when it differs from the last value written.
func (c *Controller) OnScroll(g Geometry) {
	if g.ScrollY <= g.TableTop {
		if c.state.Mode != Floating {
			c.state.Mode = Floating
			c.layout.SetFixed(false)
			c.log.V(2).Info("header floating")
		}
		return
	}

	if c.state.Mode != Fixed {
		c.state.Mode = Fixed
		c.layout.SetFixed(true)
		c.log.V(2).Info("header fixed")
	}

	offset := Clamp(g.ScrollX, 0, g.TableWidth-g.ViewportWidth)
	c.state.Offset = offset
	if c.lastApplied != nil && *c.lastApplied == offset {
		return
	}
	c.layout.SetOffset(offset)
	c.lastApplied = &offset
}

// MirrorColumnWidths copies the live column widths onto the clone's
// spacers and shows the clone. The clone is outside the table's own width
// computation, so this has to run whenever the table geometry can change.
func (c *Controller) MirrorColumnWidths() {
	widths := c.layout.ColumnWidths()
	c.layout.SetSpacerWidths(widths)
	c.layout.Show()
	c.mirrored++
	c.log.V(2).Info("mirrored column widths", "columns", len(widths))
}

// Mirrored returns how many times the widths have been mirrored.
func (c *Controller) Mirrored() int { return c.mirrored }

// Clamp limits v to [lo, hi]. When hi is below lo the result is lo.
func Clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
