package view

import (
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/cabewaldrop/statuspage/internal/annotate"
	"github.com/cabewaldrop/statuspage/internal/dom"
	"github.com/cabewaldrop/statuspage/internal/sticky"
	"github.com/cabewaldrop/statuspage/internal/viewstate"
)

const testPage = `<html><body>
<div class="search"><form><input type="text" name="q"/></form> <a href="?q=blue">blue</a></div>
<table>
<thead><tr><th>Name</th><th>Version</th><th>Wet</th><th>hydro_amd64</th></tr></thead>
<tbody>
<tr><td><div>roscpp</div></td><td><div>1.9.0</div></td><td>wet</td><td><a class="o"></a><a></a></td></tr>
<tr><td><div>actionlib</div></td><td><div>1.8.2</div></td><td>dry</td><td><a class="m"></a><a></a></td></tr>
<tr><td><div>nav_msgs</div></td><td><div>1.9.0</div></td><td>wet</td><td><a></a><a></a></td></tr>
</tbody>
</table>
</body></html>`

type countingPage struct {
	*dom.Document
	replaced int
}

func (p *countingPage) ReplaceRows(markup string) {
	p.replaced++
	p.Document.ReplaceRows(markup)
}

type fixture struct {
	page  *countingPage
	clock *testingclock.FakeClock
	ctrl  *Controller
}

func newFixture(t *testing.T, pageURL string) *fixture {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(testPage), pageURL)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	header, ok := doc.Header()
	if !ok {
		t.Fatal("expected the page to have a header")
	}

	page := &countingPage{Document: doc}
	fc := testingclock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctrl := NewController(page, header, Options{
		SortColumns: []int{1, 2, 3},
		MetaColumns: 3,
		Clock:       fc,
		Annotator: &annotate.Annotator{
			Repos:           []string{"building", "shadow-fixed"},
			JobURLTemplates: []string{"http://ci/job/{pkg}_binarydeb_amd64"},
		},
	}, logr.Discard())
	return &fixture{page: page, clock: fc, ctrl: ctrl}
}

func (f *fixture) dispatch(ev Event) {
	f.ctrl.Dispatch(ev)
	f.ctrl.Loop().RunPending()
}

func stickyGeometry(scrollY, scrollX int) sticky.Geometry {
	return sticky.Geometry{ScrollX: scrollX, ScrollY: scrollY, TableTop: 50, TableWidth: 1200, ViewportWidth: 800}
}

func (f *fixture) names() string {
	var out []string
	for _, tr := range f.page.TableRows() {
		out = append(out, dom.Text(dom.Cell(tr, 1)))
	}
	return strings.Join(out, ",")
}

func TestSearchIsDebounced(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()
	f.ctrl.Loop().RunPending()

	f.dispatch(Event{Role: RoleSearchInput, Text: "nav"})
	f.clock.Step(100 * time.Millisecond)
	f.ctrl.Loop().RunPending()
	if f.page.replaced != 0 {
		t.Fatal("search committed before the quiet period elapsed")
	}

	// A new keystroke restarts the timer.
	f.dispatch(Event{Role: RoleSearchInput, Text: "roscpp"})
	f.clock.Step(200 * time.Millisecond)
	f.ctrl.Loop().RunPending()
	if f.page.replaced != 0 {
		t.Fatal("first keystroke's timer should have been cancelled")
	}

	f.clock.Step(50 * time.Millisecond)
	f.ctrl.Loop().RunPending()
	if f.page.replaced != 1 {
		t.Fatalf("expected one render after quiescence, got %d", f.page.replaced)
	}
	if got := f.names(); got != "roscpp" {
		t.Errorf("expected only roscpp, got %s", got)
	}
	if got := f.page.URL(); got != "http://example.com/status.html?q=roscpp" {
		t.Errorf("unexpected URL %q", got)
	}
}

func TestSearchSplitsWords(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()

	f.dispatch(Event{Role: RoleSearchInput, Text: "wet  1.9.0"})
	f.clock.Step(DefaultDebounce)
	f.ctrl.Loop().RunPending()

	if got := f.names(); got != "roscpp,nav_msgs" {
		t.Errorf("expected wet 1.9.0 rows, got %s", got)
	}
	if got := f.page.URL(); got != "http://example.com/status.html?q=wet+1.9.0" {
		t.Errorf("unexpected URL %q", got)
	}
}

func TestShortcutAppliesImmediately(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()

	f.dispatch(Event{Role: RoleShortcut, Text: "red"})
	if got := f.names(); got != "actionlib" {
		t.Errorf("expected the missing row, got %s", got)
	}
	if got := f.page.SearchText(); got != "red" {
		t.Errorf("expected search box to show the shortcut, got %q", got)
	}
}

func TestShortcutCancelsPendingSearch(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()

	f.dispatch(Event{Role: RoleSearchInput, Text: "nav"})
	f.dispatch(Event{Role: RoleShortcut, Text: "blue"})
	f.clock.Step(time.Second)
	f.ctrl.Loop().RunPending()

	if got := f.ctrl.State().Query(); got != "blue" {
		t.Errorf("expected the shortcut to win, got %q", got)
	}
}

func TestHeaderClickToggles(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()

	f.dispatch(Event{Role: RoleHeaderCell, Column: 1})
	if got := f.names(); got != "actionlib,nav_msgs,roscpp" {
		t.Errorf("first click: got %s", got)
	}

	f.dispatch(Event{Role: RoleHeaderCell, Column: 1})
	if got := f.names(); got != "roscpp,nav_msgs,actionlib" {
		t.Errorf("second click should reverse: got %s", got)
	}
	if s := f.ctrl.State(); s.Sort != 1 || !s.Reverse {
		t.Errorf("unexpected state %+v", s)
	}

	f.dispatch(Event{Role: RoleHeaderCell, Column: 1})
	if got := f.names(); got != "actionlib,nav_msgs,roscpp" {
		t.Errorf("third click should be ascending again: got %s", got)
	}

	// Reverse, then switch columns: always ascending on the new column.
	f.dispatch(Event{Role: RoleHeaderCell, Column: 1})
	f.dispatch(Event{Role: RoleHeaderCell, Column: 2})
	if s := f.ctrl.State(); s.Sort != 2 || s.Reverse {
		t.Errorf("expected ascending on column 2, got %+v", s)
	}
	if got := f.names(); got != "actionlib,roscpp,nav_msgs" {
		t.Errorf("version sort should be stable: got %s", got)
	}
	if got := f.page.URL(); got != "http://example.com/status.html?s=2" {
		t.Errorf("unexpected URL %q", got)
	}
}

func TestHeaderClickOutsideMetaColumns(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()

	f.dispatch(Event{Role: RoleHeaderCell, Column: 4})
	if f.ctrl.State().Sorted() {
		t.Error("version columns should not sort")
	}
	if f.page.replaced != 0 {
		t.Errorf("expected no render, got %d", f.page.replaced)
	}
}

func TestStartAppliesURLState(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html?q=wet&s=1&r=1")
	f.ctrl.Start()

	if !f.page.BodyHidden() {
		t.Error("expected body hidden while the load-time filter is pending")
	}
	if got := f.page.SearchText(); got != "wet" {
		t.Errorf("expected search box echo, got %q", got)
	}

	f.ctrl.Loop().RunPending()
	if f.page.BodyHidden() {
		t.Error("expected body shown after filtering")
	}
	if got := f.names(); got != "roscpp,nav_msgs" {
		t.Errorf("unexpected rows %s", got)
	}
	if got := f.page.URL(); got != "http://example.com/status.html?q=wet&s=1&r=1" {
		t.Errorf("URL should be stable, got %q", got)
	}
	if f.ctrl.Header().Mirrored() != 1 {
		t.Errorf("expected one startup mirror, got %d", f.ctrl.Header().Mirrored())
	}
}

func TestStartRunsOnce(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html?s=2")
	f.ctrl.Start()
	f.ctrl.Start()
	f.ctrl.Loop().RunPending()

	if f.page.replaced != 1 {
		t.Errorf("expected one load-time render, got %d", f.page.replaced)
	}
	if f.ctrl.Header().Mirrored() != 1 {
		t.Errorf("expected one startup mirror, got %d", f.ctrl.Header().Mirrored())
	}
}

func TestStartWithoutStateLeavesTable(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()
	f.ctrl.Loop().RunPending()

	if f.page.replaced != 0 || f.page.BodyHidden() {
		t.Error("expected the table untouched without URL state")
	}
	if f.ctrl.Session().Index.Built() {
		t.Error("the row index should not be built before the first filter")
	}
}

func TestUnchangedStateSkipsRender(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()

	f.dispatch(Event{Role: RoleShortcut, Text: "wet"})
	f.dispatch(Event{Role: RoleShortcut, Text: "wet"})
	f.dispatch(Event{Role: RoleShortcut, Text: "wet+xx"})
	if f.page.replaced != 1 {
		t.Errorf("expected a single render, got %d", f.page.replaced)
	}
}

func TestFilterUsesOriginalRows(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()

	f.dispatch(Event{Role: RoleShortcut, Text: "dry"})
	if got := f.names(); got != "actionlib" {
		t.Fatalf("unexpected rows %s", got)
	}
	f.dispatch(Event{Role: RoleShortcut, Text: "wet"})
	if got := f.names(); got != "roscpp,nav_msgs" {
		t.Errorf("rows hidden by an earlier filter must come back, got %s", got)
	}
}

func TestEmptyResultRendersEmptyBody(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()

	f.dispatch(Event{Role: RoleShortcut, Text: "nothing-matches"})
	if n := len(f.page.TableRows()); n != 0 {
		t.Errorf("expected empty body, got %d rows", n)
	}
	if got := viewstate.Decode(f.page.URL()).Query(); got != "nothing-matches" {
		t.Errorf("expected the query in the URL, got %q", got)
	}
}

func TestScrollAndResizeRouteToHeader(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()
	f.ctrl.Loop().RunPending()

	header, _ := f.page.Header()
	f.dispatch(Event{Role: RoleScroll, Geometry: stickyGeometry(300, 120)})
	if !header.Fixed() {
		t.Error("expected header fixed after scrolling past the table")
	}
	if header.Offset() != 120 {
		t.Errorf("expected offset 120, got %d", header.Offset())
	}

	f.dispatch(Event{Role: RoleScroll, Geometry: stickyGeometry(10, 0)})
	if header.Fixed() {
		t.Error("expected header floating again")
	}

	f.dispatch(Event{Role: RoleResize})
	if f.ctrl.Header().Mirrored() != 2 {
		t.Errorf("expected resize to mirror widths, got %d passes", f.ctrl.Header().Mirrored())
	}
}

func TestVersionHoverAnnotates(t *testing.T) {
	f := newFixture(t, "http://example.com/status.html")
	f.ctrl.Start()

	links := f.page.VersionLinks(3)
	if len(links) != 6 {
		t.Fatalf("expected 6 version links, got %d", len(links))
	}

	first, second := links[0], links[1]
	f.dispatch(Event{Role: RoleVersionLink, Link: first.Link, Target: first.Target})
	f.dispatch(Event{Role: RoleVersionLink, Link: second.Link, Target: second.Target})

	if got := first.Target.Attr("title"); got != "building: 1.9.0" {
		t.Errorf("unexpected title %q", got)
	}
	if got := first.Target.Attr("href"); got != "http://ci/job/roscpp_binarydeb_amd64" {
		t.Errorf("unexpected href %q", got)
	}
	if got := second.Target.Attr("title"); got != "shadow-fixed: 1.9.0" {
		t.Errorf("unexpected title %q", got)
	}
	if got := second.Target.Attr("href"); got != "" {
		t.Errorf("only the first repository links to a job, got %q", got)
	}
}
