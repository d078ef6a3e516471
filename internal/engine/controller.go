// Package engine decides when to snapshot the live window arrangement and
// when to replay a saved one, keyed by the number of active displays.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/1broseidon/imember/internal/arrangement"
	"github.com/1broseidon/imember/internal/platform"
	"github.com/rs/zerolog"
)

const (
	DefaultFallbackWidth  = 640
	DefaultFallbackHeight = 480
)

// ProcessInspector looks up the process that owns a window.
type ProcessInspector interface {
	Suspended(pid int) bool
	// Name returns the executable name, or "" when unknown.
	Name(pid int) string
}

// Options tunes the controller. Zero values fall back to defaults.
type Options struct {
	// MaxDisplays bounds the supported display counts (1..MaxDisplays).
	// It only takes effect when the controller is created.
	MaxDisplays int

	// FallbackWidth and FallbackHeight describe the mode a lone display
	// reports when nothing physical is attached.
	FallbackWidth  int
	FallbackHeight int

	// VerboseTicks logs one line per window on timer snapshots too.
	VerboseTicks bool

	StartEnabled bool
}

func (o Options) withDefaults() Options {
	if o.MaxDisplays <= 0 {
		o.MaxDisplays = arrangement.DefaultMaxDisplays
	}
	if o.FallbackWidth <= 0 {
		o.FallbackWidth = DefaultFallbackWidth
	}
	if o.FallbackHeight <= 0 {
		o.FallbackHeight = DefaultFallbackHeight
	}
	return o
}

// Controller owns the arrangement store and the enabled flag. Every public
// method is serialized by a single mutex.
type Controller struct {
	mu sync.Mutex

	backend platform.Backend
	procs   ProcessInspector
	store   *arrangement.Store
	log     zerolog.Logger
	now     func() time.Time

	opts              Options
	enabled           bool
	lastSnapshotCount int
	lastSnapshotAt    time.Time
}

// New creates a controller. procs may be nil, in which case no window is
// treated as suspended.
func New(backend platform.Backend, procs ProcessInspector, logger zerolog.Logger, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		backend: backend,
		procs:   procs,
		store:   arrangement.NewStore(opts.MaxDisplays),
		log:     logger.With().Str("component", "engine").Logger(),
		now:     time.Now,
		opts:    opts,
		enabled: opts.StartEnabled,
	}
}

// OnTimerTick takes a periodic snapshot unless disabled or every display
// looks disconnected.
func (c *Controller) OnTimerTick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		c.log.Debug().Msg("Snapshots disabled; skipping timer snapshot")
		return
	}
	c.capture(c.opts.VerboseTicks)
}

// SaveNow takes a snapshot on request, logging every captured window.
func (c *Controller) SaveNow() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		c.log.Info().Msg("Snapshots are disabled; not saving")
		return
	}
	c.capture(true)
}

// OnDisplayTopologyChanged replays the arrangement saved for the new display
// count. It runs whether or not snapshots are enabled.
func (c *Controller) OnDisplayTopologyChanged() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Info().Msg("Display configuration changed")
	c.replay()
}

// RestoreNow replays the arrangement for the current display count on request.
func (c *Controller) RestoreNow() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replay()
}

// OnDisplayTopologyChanging minimizes the daemon's own window, if it has one,
// so it is not shuffled around while displays come and go.
func (c *Controller) OnDisplayTopologyChanging() {
	c.mu.Lock()
	defer c.mu.Unlock()

	own, ok := c.backend.OwnWindow()
	if !ok {
		return
	}
	if err := c.backend.Minimize(own.ID); err != nil {
		c.log.Debug().Err(err).Uint32("window", uint32(own.ID)).Msg("Minimize own window failed")
	}
}

// ToggleEnabled flips the enabled flag and returns the new value.
func (c *Controller) ToggleEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = !c.enabled
	if c.enabled {
		c.log.Info().Msg("Snapshots enabled")
	} else {
		c.log.Info().Msg("Snapshots disabled")
	}
	return c.enabled
}

// Enabled reports whether snapshots are enabled.
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// UpdateOptions applies reloaded options. MaxDisplays and StartEnabled are
// ignored; the store and the enabled flag survive reloads.
func (c *Controller) UpdateOptions(opts Options) {
	opts = opts.withDefaults()

	c.mu.Lock()
	defer c.mu.Unlock()

	if opts.MaxDisplays != c.store.MaxDisplays() {
		c.log.Warn().
			Int("current", c.store.MaxDisplays()).
			Int("requested", opts.MaxDisplays).
			Msg("max_displays changes take effect after restart")
	}
	opts.MaxDisplays = c.store.MaxDisplays()
	opts.StartEnabled = c.opts.StartEnabled
	c.opts = opts
}

// IsAllDisplaysDisconnected reports whether the only active display is
// running at the fallback resolution.
func (c *Controller) IsAllDisplaysDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	displays, err := c.backend.Displays()
	if err != nil {
		return false
	}
	return c.allDisconnected(displays)
}

func (c *Controller) allDisconnected(displays []platform.Display) bool {
	if len(displays) != 1 {
		return false
	}
	bounds := displays[0].Bounds
	return bounds.Width() == c.opts.FallbackWidth && bounds.Height() == c.opts.FallbackHeight
}

// displayCount returns the number of active displays. ok is false when the
// cycle should be abandoned; the reason has already been logged.
func (c *Controller) displayCount(action string) (int, bool) {
	displays, err := c.backend.Displays()
	if err != nil {
		c.log.Warn().Err(err).Msgf("Could not read displays; %s skipped", action)
		return 0, false
	}
	if len(displays) == 0 {
		c.log.Info().Msgf("No active displays; %s skipped", action)
		return 0, false
	}
	if c.allDisconnected(displays) {
		c.log.Info().Msgf("All displays disconnected; %s skipped", action)
		return 0, false
	}
	count := len(displays)
	if !c.store.InRange(count) {
		c.log.Warn().
			Int("displays", count).
			Int("max_displays", c.store.MaxDisplays()).
			Msgf("Unsupported display count; %s skipped", action)
		return 0, false
	}
	return count, true
}

func (c *Controller) capture(verbose bool) {
	count, ok := c.displayCount("snapshot")
	if !ok {
		return
	}

	snapshot := make(arrangement.Arrangement)
	record := func(w platform.Window, label string) {
		snapshot[w.ID] = w.Bounds
		if verbose {
			if c.procs != nil {
				if name := c.procs.Name(w.PID); name != "" {
					label += " (" + name + ")"
				}
			}
			c.log.Info().Msgf("Saving %s at %s", label, w.Bounds)
		}
	}

	windows, err := c.backend.ListWindows()
	if err != nil {
		c.log.Debug().Err(err).Msg("List windows failed")
	}
	for _, w := range windows {
		if w.Title == "" {
			continue
		}
		if c.procs != nil && c.procs.Suspended(w.PID) {
			c.log.Debug().Int("pid", w.PID).Str("title", w.Title).Msg("Skipping suspended window")
			continue
		}
		record(w, w.Title)
	}

	if own, ok := c.backend.OwnWindow(); ok {
		record(own, "own window")
	}

	shellWindows, err := c.backend.ListShellWindows()
	if err != nil {
		c.log.Debug().Err(err).Msg("List shell windows failed")
	}
	for _, w := range shellWindows {
		label := w.Title
		if label == "" {
			label = w.AppID
		}
		record(w, label)
	}

	if err := c.store.Put(count, snapshot); err != nil {
		if errors.Is(err, arrangement.ErrDisplayCountOutOfRange) {
			c.log.Warn().Err(err).Msg("Snapshot not stored")
			return
		}
		c.log.Error().Err(err).Msg("Snapshot not stored")
		return
	}
	c.lastSnapshotCount = count
	c.lastSnapshotAt = c.now()

	c.log.Info().Msgf("Saved %d window(s) for %d display(s)", len(snapshot), count)
}

func (c *Controller) replay() {
	count, ok := c.displayCount("restore")
	if !ok {
		return
	}

	saved, ok := c.store.Get(count)
	if !ok {
		c.log.Info().Msgf("No saved arrangement for %d display(s) yet", count)
		return
	}

	restored := 0
	for _, id := range saved.IDs() {
		rect := saved[id]
		if err := c.backend.MoveResize(id, rect); err != nil {
			c.log.Debug().Err(err).Uint32("window", uint32(id)).Msg("Window not restored")
			continue
		}
		restored++

		title := c.backend.WindowTitle(id)
		if title == "" {
			continue
		}
		c.log.Info().Msgf("-> Restoring %s to %s", title, rect)
	}

	c.log.Info().Msgf("Restored %d of %d window(s) for %d display(s)", restored, len(saved), count)
}
