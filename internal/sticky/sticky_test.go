package sticky

import (
	"slices"
	"testing"

	"github.com/go-logr/logr"
)

type fakeLayout struct {
	fixed     bool
	fixedSets int
	offsets   []int
	widths    []int
	spacers   []int
	shown     int
}

func (f *fakeLayout) SetFixed(fixed bool) {
	f.fixed = fixed
	f.fixedSets++
}
func (f *fakeLayout) SetOffset(offset int)         { f.offsets = append(f.offsets, offset) }
func (f *fakeLayout) ColumnWidths() []int          { return f.widths }
func (f *fakeLayout) SetSpacerWidths(widths []int) { f.spacers = append([]int(nil), widths...) }
func (f *fakeLayout) Show()                        { f.shown++ }

func geom(x, y int) Geometry {
	return Geometry{ScrollX: x, ScrollY: y, TableTop: 100, TableWidth: 1500, ViewportWidth: 1000}
}

func TestInitialStateFloating(t *testing.T) {
	c := New(&fakeLayout{}, logr.Discard())
	if c.State().Mode != Floating {
		t.Errorf("expected floating, got %s", c.State().Mode)
	}
}

func TestScrollTransitions(t *testing.T) {
	layout := &fakeLayout{}
	c := New(layout, logr.Discard())

	c.OnScroll(geom(0, 50))
	if c.State().Mode != Floating || layout.fixedSets != 0 {
		t.Errorf("above the table: expected floating without writes, got %s (%d writes)", c.State().Mode, layout.fixedSets)
	}

	c.OnScroll(geom(0, 101))
	if c.State().Mode != Fixed || !layout.fixed {
		t.Errorf("past the table top: expected fixed, got %s", c.State().Mode)
	}

	c.OnScroll(geom(0, 300))
	if layout.fixedSets != 1 {
		t.Errorf("staying fixed should not rewrite the mode, got %d writes", layout.fixedSets)
	}

	// Exactly at the table top is not past it.
	c.OnScroll(geom(0, 100))
	if c.State().Mode != Floating || layout.fixed {
		t.Errorf("back at the table top: expected floating, got %s", c.State().Mode)
	}
}

func TestOffsetClamped(t *testing.T) {
	tests := []struct {
		name string
		g    Geometry
		want int
	}{
		{"in range", geom(200, 500), 200},
		{"negative scroll", geom(-40, 500), 0},
		{"past the right edge", geom(900, 500), 500},
		{"table narrower than viewport", Geometry{ScrollX: 30, ScrollY: 500, TableTop: 0, TableWidth: 800, ViewportWidth: 1000}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeLayout{}, logr.Discard())
			c.OnScroll(tt.g)
			got := c.State().Offset
			if got != tt.want {
				t.Errorf("expected offset %d, got %d", tt.want, got)
			}
			if got < 0 || (tt.g.TableWidth > tt.g.ViewportWidth && got > tt.g.TableWidth-tt.g.ViewportWidth) {
				t.Errorf("offset %d out of bounds", got)
			}
		})
	}
}

func TestOffsetWrittenOnlyOnChange(t *testing.T) {
	layout := &fakeLayout{}
	c := New(layout, logr.Discard())

	c.OnScroll(geom(10, 500))
	c.OnScroll(geom(10, 600))
	c.OnScroll(geom(20, 600))
	c.OnScroll(geom(800, 600))
	c.OnScroll(geom(900, 600)) // clamps to the same 500

	if want := []int{10, 20, 500}; !slices.Equal(layout.offsets, want) {
		t.Errorf("expected offset writes %v, got %v", want, layout.offsets)
	}

	// Floating scrolls never write offsets.
	c.OnScroll(geom(42, 0))
	if len(layout.offsets) != 3 {
		t.Errorf("unexpected offset write while floating: %v", layout.offsets)
	}
}

func TestMirrorColumnWidths(t *testing.T) {
	layout := &fakeLayout{widths: []int{120, 80, 40}}
	c := New(layout, logr.Discard())

	c.MirrorColumnWidths()
	if !slices.Equal(layout.spacers, []int{120, 80, 40}) {
		t.Errorf("expected spacers to mirror widths, got %v", layout.spacers)
	}
	if layout.shown != 1 {
		t.Errorf("expected header shown once, got %d", layout.shown)
	}

	layout.widths = []int{200, 80, 40}
	c.MirrorColumnWidths()
	if layout.spacers[0] != 200 {
		t.Errorf("expected resize to update spacers, got %v", layout.spacers)
	}
	if c.Mirrored() != 2 {
		t.Errorf("expected 2 mirror passes, got %d", c.Mirrored())
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("got %d", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Errorf("got %d", got)
	}
	if got := Clamp(11, 0, 10); got != 10 {
		t.Errorf("got %d", got)
	}
	if got := Clamp(3, 0, -200); got != 0 {
		t.Errorf("inverted bounds should give lo, got %d", got)
	}
}
