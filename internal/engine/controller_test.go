package engine

import (
	"bytes"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/1broseidon/imember/internal/platform"
	"github.com/rs/zerolog"
)

type fakeBackend struct {
	displays   []platform.Display
	displayErr error
	windows    map[platform.WindowID]*platform.Window
	shellIDs   map[platform.WindowID]bool
	own        platform.WindowID
	moves      []platform.WindowID
	minimized  []platform.WindowID
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		windows:  make(map[platform.WindowID]*platform.Window),
		shellIDs: make(map[platform.WindowID]bool),
	}
}

func (f *fakeBackend) setDisplays(sizes ...[2]int) {
	f.displays = nil
	x := 0
	for i, size := range sizes {
		f.displays = append(f.displays, platform.Display{
			ID:     i,
			Bounds: platform.RectFromGeometry(x, 0, size[0], size[1]),
		})
		x += size[0]
	}
}

func (f *fakeBackend) addWindow(w platform.Window) {
	win := w
	f.windows[w.ID] = &win
}

func (f *fakeBackend) sorted(keep func(id platform.WindowID) bool) []platform.Window {
	var out []platform.Window
	for id, w := range f.windows {
		if keep(id) {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	return f.displays, f.displayErr
}

func (f *fakeBackend) ListWindows() ([]platform.Window, error) {
	return f.sorted(func(id platform.WindowID) bool { return !f.shellIDs[id] && id != f.own }), nil
}

func (f *fakeBackend) ListShellWindows() ([]platform.Window, error) {
	return f.sorted(func(id platform.WindowID) bool { return f.shellIDs[id] }), nil
}

func (f *fakeBackend) OwnWindow() (platform.Window, bool) {
	w, ok := f.windows[f.own]
	if f.own == 0 || !ok {
		return platform.Window{}, false
	}
	return *w, true
}

func (f *fakeBackend) WindowTitle(id platform.WindowID) string {
	if w, ok := f.windows[id]; ok {
		return w.Title
	}
	return ""
}

func (f *fakeBackend) MoveResize(id platform.WindowID, bounds platform.Rect) error {
	w, ok := f.windows[id]
	if !ok {
		return errors.New("bad window")
	}
	w.Bounds = bounds
	f.moves = append(f.moves, id)
	return nil
}

func (f *fakeBackend) Minimize(id platform.WindowID) error {
	f.minimized = append(f.minimized, id)
	return nil
}

type fakeProcs struct {
	suspended map[int]bool
	names     map[int]string
}

func (f fakeProcs) Suspended(pid int) bool { return f.suspended[pid] }

func (f fakeProcs) Name(pid int) string { return f.names[pid] }

func newTestController(t *testing.T, backend *fakeBackend, procs ProcessInspector) (*Controller, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	c := New(backend, procs, zerolog.New(&buf), Options{StartEnabled: true})
	return c, &buf
}

var (
	rectA = platform.Rect{Left: 0, Top: 0, Right: 800, Bottom: 600}
	rectB = platform.Rect{Left: 100, Top: 50, Right: 900, Bottom: 650}
	moved = platform.Rect{Left: 2000, Top: 10, Right: 2400, Bottom: 310}
)

func TestEndToEnd_OneTwoOneDisplays(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080})
	b.addWindow(platform.Window{ID: 1, PID: 10, Title: "W", Bounds: rectA})
	c, logs := newTestController(t, b, nil)

	c.OnTimerTick()

	b.setDisplays([2]int{1920, 1080}, [2]int{1920, 1080})
	c.OnDisplayTopologyChanged()
	if !strings.Contains(logs.String(), "No saved arrangement for 2 display(s) yet") {
		t.Fatalf("expected missing-arrangement log, got:\n%s", logs.String())
	}
	if len(b.moves) != 0 {
		t.Fatalf("expected windows untouched, moved %v", b.moves)
	}

	// The platform pushes the window onto the new display.
	b.windows[1].Bounds = moved

	b.setDisplays([2]int{1920, 1080})
	c.OnDisplayTopologyChanged()
	if got := b.windows[1].Bounds; got != rectA {
		t.Fatalf("window bounds = %v, want %v", got, rectA)
	}
}

func TestCaptureThenReplay_RoundTrip(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080})
	b.addWindow(platform.Window{ID: 1, Title: "one", Bounds: rectA})
	b.addWindow(platform.Window{ID: 2, Title: "two", Bounds: rectB})
	c, _ := newTestController(t, b, nil)

	c.SaveNow()
	c.RestoreNow()

	if b.windows[1].Bounds != rectA || b.windows[2].Bounds != rectB {
		t.Fatalf("round trip changed bounds: %v %v", b.windows[1].Bounds, b.windows[2].Bounds)
	}
	if len(b.moves) != 2 {
		t.Fatalf("expected 2 moves, got %v", b.moves)
	}
}

func TestDisabled_NoSnapshotButReplayStillRuns(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080})
	b.addWindow(platform.Window{ID: 1, Title: "W", Bounds: rectA})
	c, _ := newTestController(t, b, nil)

	c.OnTimerTick()

	if c.ToggleEnabled() {
		t.Fatalf("expected toggle to disable")
	}

	b.windows[1].Bounds = moved
	c.OnTimerTick()
	c.SaveNow()

	// Two displays while disabled: no slot may appear.
	b.setDisplays([2]int{1920, 1080}, [2]int{1920, 1080})
	c.OnTimerTick()
	c.SaveNow()

	st := c.Status()
	if len(st.Slots) != 1 || st.Slots[0].DisplayCount != 1 {
		t.Fatalf("expected only the 1-display slot, got %+v", st.Slots)
	}

	b.setDisplays([2]int{1920, 1080})
	c.OnDisplayTopologyChanged()
	if got := b.windows[1].Bounds; got != rectA {
		t.Fatalf("replay while disabled: bounds = %v, want %v", got, rectA)
	}

	if !c.ToggleEnabled() {
		t.Fatalf("expected toggle to re-enable")
	}
	if !c.Enabled() {
		t.Fatalf("Enabled() = false after re-enable")
	}
}

func TestReplay_StaleWindowDoesNotStopOthers(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080})
	b.addWindow(platform.Window{ID: 1, Title: "gone", Bounds: rectA})
	b.addWindow(platform.Window{ID: 2, Title: "alive", Bounds: rectB})
	c, _ := newTestController(t, b, nil)

	c.SaveNow()

	delete(b.windows, 1)
	b.windows[2].Bounds = moved

	c.OnDisplayTopologyChanged()

	if got := b.windows[2].Bounds; got != rectB {
		t.Fatalf("live window bounds = %v, want %v", got, rectB)
	}
}

func TestIsAllDisplaysDisconnected(t *testing.T) {
	tests := []struct {
		name  string
		sizes [][2]int
		want  bool
	}{
		{name: "single fallback display", sizes: [][2]int{{640, 480}}, want: true},
		{name: "single real display", sizes: [][2]int{{1920, 1080}}, want: false},
		{name: "single 800x600", sizes: [][2]int{{800, 600}}, want: false},
		{name: "fallback width only", sizes: [][2]int{{640, 600}}, want: false},
		{name: "two fallback displays", sizes: [][2]int{{640, 480}, {640, 480}}, want: false},
		{name: "two displays", sizes: [][2]int{{640, 480}, {1920, 1080}}, want: false},
		{name: "no displays", sizes: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.setDisplays(tt.sizes...)
			c, _ := newTestController(t, b, nil)
			if got := c.IsAllDisplaysDisconnected(); got != tt.want {
				t.Fatalf("IsAllDisplaysDisconnected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllDisconnected_SkipsSnapshotAndReplay(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080})
	b.addWindow(platform.Window{ID: 1, Title: "W", Bounds: rectA})
	c, logs := newTestController(t, b, nil)
	c.OnTimerTick()

	b.setDisplays([2]int{640, 480})
	b.windows[1].Bounds = platform.Rect{Right: 640, Bottom: 480}
	c.OnTimerTick()
	c.OnDisplayTopologyChanged()

	if len(b.moves) != 0 {
		t.Fatalf("expected no restore while disconnected, moved %v", b.moves)
	}
	if !strings.Contains(logs.String(), "All displays disconnected") {
		t.Fatalf("expected disconnected log, got:\n%s", logs.String())
	}

	b.setDisplays([2]int{1920, 1080})
	c.OnDisplayTopologyChanged()
	if got := b.windows[1].Bounds; got != rectA {
		t.Fatalf("good arrangement was overwritten: bounds = %v", got)
	}
}

func TestCapture_FiltersUntitledAndSuspended(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080})
	b.addWindow(platform.Window{ID: 1, PID: 10, Title: "editor", Bounds: rectA})
	b.addWindow(platform.Window{ID: 2, PID: 11, Title: "", Bounds: rectA})
	b.addWindow(platform.Window{ID: 3, PID: 12, Title: "frozen", Bounds: rectA})
	b.addWindow(platform.Window{ID: 4, PID: 13, AppID: "Thunar", Bounds: rectB})
	b.shellIDs[4] = true
	b.addWindow(platform.Window{ID: 5, PID: 14, Title: "imember", Bounds: rectB})
	b.own = 5

	c, _ := newTestController(t, b, fakeProcs{suspended: map[int]bool{12: true}})
	c.SaveNow()

	slots := c.Arrangements()
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	var ids []platform.WindowID
	for _, w := range slots[0].Windows {
		ids = append(ids, w.ID)
	}
	want := []platform.WindowID{1, 4, 5}
	if len(ids) != len(want) {
		t.Fatalf("captured %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("captured %v, want %v", ids, want)
		}
	}
}

func TestCapture_OutOfRangeDisplayCountWarns(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{800, 600}, [2]int{800, 600}, [2]int{800, 600},
		[2]int{800, 600}, [2]int{800, 600}, [2]int{800, 600})
	b.addWindow(platform.Window{ID: 1, Title: "W", Bounds: rectA})
	c, logs := newTestController(t, b, nil)

	c.OnTimerTick()
	c.OnDisplayTopologyChanged()

	if len(c.Status().Slots) != 0 {
		t.Fatalf("expected no slot for 6 displays")
	}
	if !strings.Contains(logs.String(), `"level":"warn"`) {
		t.Fatalf("expected warning, got:\n%s", logs.String())
	}
}

func TestCapture_VerboseLogging(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080})
	b.addWindow(platform.Window{ID: 1, Title: "editor", Bounds: rectA})
	c, logs := newTestController(t, b, nil)

	c.OnTimerTick()
	if strings.Contains(logs.String(), "Saving editor") {
		t.Fatalf("timer snapshot should not log per-window lines by default")
	}

	c.SaveNow()
	if !strings.Contains(logs.String(), "Saving editor at "+rectA.String()) {
		t.Fatalf("expected per-window line, got:\n%s", logs.String())
	}
}

func TestCapture_VerboseLabelsIncludeProcessName(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080})
	b.addWindow(platform.Window{ID: 1, PID: 10, Title: "notes.txt", Bounds: rectA})
	b.addWindow(platform.Window{ID: 2, PID: 11, Title: "untracked", Bounds: rectB})
	c, logs := newTestController(t, b, fakeProcs{names: map[int]string{10: "gedit"}})

	c.SaveNow()

	out := logs.String()
	if !strings.Contains(out, "Saving notes.txt (gedit) at "+rectA.String()) {
		t.Fatalf("expected process name in label, got:\n%s", out)
	}
	if !strings.Contains(out, "Saving untracked at "+rectB.String()) {
		t.Fatalf("expected bare title when the process name is unknown, got:\n%s", out)
	}
}

func TestCapture_EmptyArrangementIsStored(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080}, [2]int{1920, 1080})
	c, _ := newTestController(t, b, nil)

	c.OnTimerTick()

	st := c.Status()
	if len(st.Slots) != 1 || st.Slots[0].DisplayCount != 2 || st.Slots[0].Windows != 0 {
		t.Fatalf("expected empty 2-display slot, got %+v", st.Slots)
	}
	if st.LastSnapshotCount != 2 {
		t.Fatalf("LastSnapshotCount = %d", st.LastSnapshotCount)
	}
}

func TestDisplayErrorIsAbsorbed(t *testing.T) {
	b := newFakeBackend()
	b.displayErr = errors.New("randr unavailable")
	c, _ := newTestController(t, b, nil)

	c.OnTimerTick()
	c.OnDisplayTopologyChanged()
	c.RestoreNow()

	if st := c.Status(); st.DisplayCount != 0 || len(st.Slots) != 0 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestOnDisplayTopologyChanging_MinimizesOwnWindow(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{1920, 1080})
	c, _ := newTestController(t, b, nil)

	c.OnDisplayTopologyChanging()
	if len(b.minimized) != 0 {
		t.Fatalf("nothing to minimize without an own window")
	}

	b.addWindow(platform.Window{ID: 7, Title: "imember", Bounds: rectA})
	b.own = 7
	c.OnDisplayTopologyChanging()
	if len(b.minimized) != 1 || b.minimized[0] != 7 {
		t.Fatalf("minimized = %v", b.minimized)
	}
}

func TestUpdateOptions_KeepsStoreAndEnabled(t *testing.T) {
	b := newFakeBackend()
	b.setDisplays([2]int{800, 600})
	b.addWindow(platform.Window{ID: 1, Title: "W", Bounds: rectA})
	c, _ := newTestController(t, b, nil)
	c.SaveNow()
	c.ToggleEnabled()

	c.UpdateOptions(Options{MaxDisplays: 2, FallbackWidth: 800, FallbackHeight: 600, StartEnabled: true})

	st := c.Status()
	if st.Enabled {
		t.Fatalf("reload must not reset the enabled flag")
	}
	if st.MaxDisplays != 5 || len(st.Slots) != 1 {
		t.Fatalf("reload must not touch the store: %+v", st)
	}
	if !st.AllDisconnected {
		t.Fatalf("new fallback resolution not applied")
	}
}
