package engine

import (
	"time"

	"github.com/1broseidon/imember/internal/platform"
)

// SlotSummary describes one saved arrangement.
type SlotSummary struct {
	DisplayCount int
	Windows      int
	SavedAt      time.Time
}

// Status is a point-in-time view of the controller.
type Status struct {
	Enabled           bool
	DisplayCount      int
	AllDisconnected   bool
	MaxDisplays       int
	LastSnapshotCount int
	LastSnapshotAt    time.Time
	Slots             []SlotSummary
}

// WindowEntry is one window of a saved arrangement. Title is read from the
// live window and is empty when the window has gone away.
type WindowEntry struct {
	ID    platform.WindowID
	Title string
	Rect  platform.Rect
}

// SlotDetail is a saved arrangement with its windows.
type SlotDetail struct {
	DisplayCount int
	SavedAt      time.Time
	Windows      []WindowEntry
}

// Status reports the enabled flag, the current display situation and which
// slots hold an arrangement.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		Enabled:           c.enabled,
		MaxDisplays:       c.store.MaxDisplays(),
		LastSnapshotCount: c.lastSnapshotCount,
		LastSnapshotAt:    c.lastSnapshotAt,
	}
	if displays, err := c.backend.Displays(); err == nil {
		st.DisplayCount = len(displays)
		st.AllDisconnected = c.allDisconnected(displays)
	}

	for _, count := range c.store.Counts() {
		saved, _ := c.store.Get(count)
		savedAt, _ := c.store.SavedAt(count)
		st.Slots = append(st.Slots, SlotSummary{
			DisplayCount: count,
			Windows:      len(saved),
			SavedAt:      savedAt,
		})
	}
	return st
}

// Arrangements returns every saved arrangement, ordered by display count.
func (c *Controller) Arrangements() []SlotDetail {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []SlotDetail
	for _, count := range c.store.Counts() {
		saved, _ := c.store.Get(count)
		savedAt, _ := c.store.SavedAt(count)

		detail := SlotDetail{DisplayCount: count, SavedAt: savedAt}
		for _, id := range saved.IDs() {
			detail.Windows = append(detail.Windows, WindowEntry{
				ID:    id,
				Title: c.backend.WindowTitle(id),
				Rect:  saved[id],
			})
		}
		out = append(out, detail)
	}
	return out
}
