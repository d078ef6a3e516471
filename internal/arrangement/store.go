// Package arrangement holds saved window arrangements, one slot per display
// count. Slots live in memory only and are lost when the process exits.
package arrangement

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/imember/internal/platform"
)

// DefaultMaxDisplays is the number of slots a store has when none is given.
const DefaultMaxDisplays = 5

// ErrDisplayCountOutOfRange is returned by Put for a display count outside
// 1..MaxDisplays.
var ErrDisplayCountOutOfRange = errors.New("display count out of range")

// Arrangement maps each tracked window to where it was.
type Arrangement map[platform.WindowID]platform.Rect

// Clone returns an independent copy. A nil arrangement clones to an empty one.
func (a Arrangement) Clone() Arrangement {
	out := make(Arrangement, len(a))
	for id, rect := range a {
		out[id] = rect
	}
	return out
}

// Equal reports whether both arrangements hold the same windows at the same rects.
func (a Arrangement) Equal(other Arrangement) bool {
	if len(a) != len(other) {
		return false
	}
	for id, rect := range a {
		if got, ok := other[id]; !ok || got != rect {
			return false
		}
	}
	return true
}

// IDs returns the window identities in ascending order.
func (a Arrangement) IDs() []platform.WindowID {
	ids := make([]platform.WindowID, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type slot struct {
	windows Arrangement
	savedAt time.Time
}

// Store is a fixed-size table of arrangements indexed by display count.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	slots []*slot // index = display count - 1
	now   func() time.Time
}

// NewStore creates a store with one slot per display count in 1..maxDisplays.
func NewStore(maxDisplays int) *Store {
	if maxDisplays <= 0 {
		maxDisplays = DefaultMaxDisplays
	}
	return &Store{
		slots: make([]*slot, maxDisplays),
		now:   time.Now,
	}
}

// MaxDisplays returns the largest supported display count.
func (s *Store) MaxDisplays() int {
	return len(s.slots)
}

// InRange reports whether displayCount has a slot.
func (s *Store) InRange(displayCount int) bool {
	return displayCount >= 1 && displayCount <= len(s.slots)
}

// Put replaces the slot for displayCount. The previous arrangement for that
// count, if any, is discarded.
func (s *Store) Put(displayCount int, a Arrangement) error {
	if !s.InRange(displayCount) {
		return fmt.Errorf("%w: %d (supported 1..%d)", ErrDisplayCountOutOfRange, displayCount, len(s.slots))
	}

	entry := &slot{windows: a.Clone(), savedAt: s.now()}

	s.mu.Lock()
	s.slots[displayCount-1] = entry
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the arrangement for displayCount. ok is false when the
// slot was never written, which is distinct from an empty arrangement.
func (s *Store) Get(displayCount int) (Arrangement, bool) {
	if !s.InRange(displayCount) {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	entry := s.slots[displayCount-1]
	if entry == nil {
		return nil, false
	}
	return entry.windows.Clone(), true
}

// SavedAt returns when the slot for displayCount was last written.
func (s *Store) SavedAt(displayCount int) (time.Time, bool) {
	if !s.InRange(displayCount) {
		return time.Time{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	entry := s.slots[displayCount-1]
	if entry == nil {
		return time.Time{}, false
	}
	return entry.savedAt, true
}

// Counts returns the display counts that have a saved arrangement, ascending.
func (s *Store) Counts() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts []int
	for i, entry := range s.slots {
		if entry != nil {
			counts = append(counts, i+1)
		}
	}
	return counts
}
