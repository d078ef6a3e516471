package daemon

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recorder struct {
	mu         sync.Mutex
	ticks      int
	changing   int
	changed    int
	panicTicks bool
	events     chan string
}

func newRecorder() *recorder {
	return &recorder{events: make(chan string, 64)}
}

func (r *recorder) OnTimerTick() {
	r.mu.Lock()
	r.ticks++
	shouldPanic := r.panicTicks
	r.mu.Unlock()
	r.events <- "tick"
	if shouldPanic {
		panic("boom")
	}
}

func (r *recorder) OnDisplayTopologyChanging() {
	r.mu.Lock()
	r.changing++
	r.mu.Unlock()
	r.events <- "changing"
}

func (r *recorder) OnDisplayTopologyChanged() {
	r.mu.Lock()
	r.changed++
	r.mu.Unlock()
	r.events <- "changed"
}

func (r *recorder) counts() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks, r.changing, r.changed
}

func waitFor(t *testing.T, r *recorder, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-r.events:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func startScheduler(t *testing.T, cfg SchedulerConfig, r *recorder) *Scheduler {
	t.Helper()
	cfg.Logger = zerolog.New(io.Discard)
	s := NewScheduler(cfg, r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func TestScheduler_InitialTick(t *testing.T) {
	r := newRecorder()
	startScheduler(t, SchedulerConfig{Interval: time.Hour}, r)
	waitFor(t, r, "tick")
}

func TestScheduler_PeriodicTicks(t *testing.T) {
	r := newRecorder()
	startScheduler(t, SchedulerConfig{Interval: 10 * time.Millisecond}, r)
	waitFor(t, r, "tick")
	waitFor(t, r, "tick")
	waitFor(t, r, "tick")
}

func TestScheduler_TopologyBurstSettlesOnce(t *testing.T) {
	r := newRecorder()
	s := startScheduler(t, SchedulerConfig{Interval: time.Hour, Settle: 100 * time.Millisecond}, r)
	waitFor(t, r, "tick")

	for i := 0; i < 5; i++ {
		s.NotifyTopology()
		time.Sleep(5 * time.Millisecond)
	}
	waitFor(t, r, "changed")
	time.Sleep(150 * time.Millisecond)

	_, changing, changed := r.counts()
	if changing != 1 || changed != 1 {
		t.Fatalf("changing=%d changed=%d, want 1 and 1", changing, changed)
	}
}

func TestScheduler_ZeroSettleReportsImmediately(t *testing.T) {
	r := newRecorder()
	s := startScheduler(t, SchedulerConfig{Interval: time.Hour}, r)
	waitFor(t, r, "tick")

	s.NotifyTopology()
	waitFor(t, r, "changing")
	waitFor(t, r, "changed")
}

func TestScheduler_SleepWake(t *testing.T) {
	r := newRecorder()
	s := startScheduler(t, SchedulerConfig{Interval: time.Hour, Settle: 20 * time.Millisecond}, r)
	waitFor(t, r, "tick")

	s.NotifySleep(true)
	waitFor(t, r, "changing")

	s.NotifySleep(false)
	waitFor(t, r, "changed")

	_, changing, changed := r.counts()
	if changing != 1 || changed != 1 {
		t.Fatalf("changing=%d changed=%d, want 1 and 1", changing, changed)
	}
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	r := newRecorder()
	r.panicTicks = true
	s := startScheduler(t, SchedulerConfig{Interval: time.Hour}, r)
	waitFor(t, r, "tick")

	s.NotifyTopology()
	waitFor(t, r, "changed")
}

func TestScheduler_SetTiming(t *testing.T) {
	r := newRecorder()
	s := startScheduler(t, SchedulerConfig{Interval: time.Hour}, r)
	waitFor(t, r, "tick")

	s.SetTiming(10*time.Millisecond, 0)
	waitFor(t, r, "tick")
}

func TestScheduler_NoTicksWhileSettling(t *testing.T) {
	tests := []struct {
		name  string
		start func(s *Scheduler)
		end   func(s *Scheduler)
	}{
		{
			name:  "topology",
			start: func(s *Scheduler) { s.NotifyTopology() },
			end:   func(s *Scheduler) {},
		},
		{
			name:  "sleep",
			start: func(s *Scheduler) { s.NotifySleep(true) },
			end: func(s *Scheduler) {
				time.Sleep(100 * time.Millisecond)
				s.NotifySleep(false)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecorder()
			s := startScheduler(t, SchedulerConfig{Interval: 20 * time.Millisecond, Settle: 200 * time.Millisecond}, r)
			waitFor(t, r, "tick")

			tt.start(s)
			waitFor(t, r, "changing")
			go tt.end(s)

			deadline := time.After(2 * time.Second)
			var between []string
			for {
				select {
				case got := <-r.events:
					if got == "changed" {
						if len(between) != 0 {
							t.Fatalf("events between changing and changed = %v, want none", between)
						}
						waitFor(t, r, "tick")
						return
					}
					between = append(between, got)
				case <-deadline:
					t.Fatal("timed out waiting for \"changed\"")
				}
			}
		})
	}
}
