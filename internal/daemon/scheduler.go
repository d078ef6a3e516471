package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is used when no snapshot interval is configured.
const DefaultInterval = 60 * time.Second

// Controller receives the triggers the scheduler produces.
type Controller interface {
	OnTimerTick()
	OnDisplayTopologyChanging()
	OnDisplayTopologyChanged()
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	// Interval between periodic snapshots.
	Interval time.Duration
	// Settle is the quiet period after the last topology notification
	// before the change is reported. Zero reports every notification.
	Settle time.Duration
	Logger zerolog.Logger
}

// Scheduler turns a periodic ticker, RandR notifications and sleep/wake
// signals into controller calls, all made from the Run goroutine.
type Scheduler struct {
	ctrl Controller
	log  zerolog.Logger

	mu       sync.Mutex
	interval time.Duration
	settle   time.Duration

	topology    chan struct{}
	sleep       chan bool
	reconfigure chan struct{}
}

// NewScheduler creates a scheduler for ctrl.
func NewScheduler(cfg SchedulerConfig, ctrl Controller) *Scheduler {
	interval, settle := normalize(cfg.Interval, cfg.Settle)
	return &Scheduler{
		ctrl:        ctrl,
		log:         cfg.Logger.With().Str("component", "scheduler").Logger(),
		interval:    interval,
		settle:      settle,
		topology:    make(chan struct{}, 1),
		sleep:       make(chan bool, 4),
		reconfigure: make(chan struct{}, 1),
	}
}

func normalize(interval, settle time.Duration) (time.Duration, time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if settle < 0 {
		settle = 0
	}
	return interval, settle
}

// NotifyTopology records a display topology notification. Safe to call from
// any goroutine; bursts are coalesced.
func (s *Scheduler) NotifyTopology() {
	select {
	case s.topology <- struct{}{}:
	default:
	}
}

// NotifySleep records a system sleep (true) or wake (false).
func (s *Scheduler) NotifySleep(sleeping bool) {
	select {
	case s.sleep <- sleeping:
	default:
		s.log.Warn().Bool("sleeping", sleeping).Msg("sleep notification dropped")
	}
}

// SetTiming changes the snapshot interval and settle period of a running
// scheduler.
func (s *Scheduler) SetTiming(interval, settle time.Duration) {
	interval, settle = normalize(interval, settle)

	s.mu.Lock()
	s.interval = interval
	s.settle = settle
	s.mu.Unlock()

	select {
	case s.reconfigure <- struct{}{}:
	default:
	}
}

func (s *Scheduler) timing() (time.Duration, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval, s.settle
}

// Run takes an initial snapshot and then dispatches triggers until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	interval, settle := s.timing()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		settleTimer *time.Timer
		settleC     <-chan time.Time
		changing    bool
	)
	defer func() {
		if settleTimer != nil {
			settleTimer.Stop()
		}
	}()

	arm := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settle)
		} else {
			settleTimer.Reset(settle)
		}
		settleC = settleTimer.C
	}

	s.log.Info().Dur("interval", interval).Dur("settle", settle).Msg("scheduler started")
	s.dispatch("timer", s.ctrl.OnTimerTick)

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return

		case <-ticker.C:
			// A snapshot taken mid-change would overwrite the slot the
			// pending restore reads from.
			if changing {
				continue
			}
			s.dispatch("timer", s.ctrl.OnTimerTick)

		case <-s.topology:
			if !changing {
				changing = true
				s.dispatch("topology changing", s.ctrl.OnDisplayTopologyChanging)
			}
			if settle == 0 {
				changing = false
				s.dispatch("topology changed", s.ctrl.OnDisplayTopologyChanged)
				continue
			}
			arm()

		case sleeping := <-s.sleep:
			if sleeping {
				s.log.Info().Msg("system going to sleep")
				if !changing {
					changing = true
					s.dispatch("topology changing", s.ctrl.OnDisplayTopologyChanging)
				}
				continue
			}
			s.log.Info().Msg("system resumed")
			if settle == 0 {
				changing = false
				s.dispatch("topology changed", s.ctrl.OnDisplayTopologyChanged)
				continue
			}
			changing = true
			arm()

		case <-settleC:
			settleC = nil
			changing = false
			s.dispatch("topology changed", s.ctrl.OnDisplayTopologyChanged)
			ticker.Reset(interval)

		case <-s.reconfigure:
			newInterval, newSettle := s.timing()
			if newInterval != interval {
				interval = newInterval
				ticker.Reset(interval)
			}
			settle = newSettle
			s.log.Info().Dur("interval", interval).Dur("settle", settle).Msg("scheduler reconfigured")
		}
	}
}

// dispatch runs fn, recovering from panics so one bad cycle does not take
// the daemon down.
func (s *Scheduler) dispatch(trigger string, fn func()) {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error().Str("trigger", trigger).Interface("panic", err).Msg("scheduler panic recovered")
		}
	}()
	fn()
}
