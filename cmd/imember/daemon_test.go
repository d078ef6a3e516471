package main

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/imember/internal/config"
	"github.com/1broseidon/imember/internal/engine"
)

type fakeEngine struct{ opts []engine.Options }

func (f *fakeEngine) UpdateOptions(opts engine.Options) { f.opts = append(f.opts, opts) }

type fakeScheduler struct{ interval, settle time.Duration }

func (f *fakeScheduler) SetTiming(interval, settle time.Duration) {
	f.interval, f.settle = interval, settle
}

type fakeWindows struct{ classes []string }

func (f *fakeWindows) SetShellClasses(classes []string) { f.classes = classes }

type fakeActivity struct{ capacity int }

func (f *fakeActivity) Resize(capacity int) { f.capacity = capacity }

func TestDaemonStateReload_AppliesConfig(t *testing.T) {
	next := config.DefaultConfig()
	next.SaveInterval = 30 * time.Second
	next.TopologySettle = 5 * time.Second
	next.LogWindowsOnTick = true
	next.ActivityLines = 40
	next.ShellWindowClasses = []string{"Thunar"}

	eng := &fakeEngine{}
	sched := &fakeScheduler{}
	windows := &fakeWindows{}
	act := &fakeActivity{}
	state := &daemonState{
		cfg:       config.DefaultConfig(),
		load:      func() (*config.LoadResult, error) { return &config.LoadResult{Config: next}, nil },
		engine:    eng,
		scheduler: sched,
		windows:   windows,
		activity:  act,
		log:       zerolog.New(io.Discard),
	}

	if err := state.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(eng.opts) != 1 || !eng.opts[0].VerboseTicks {
		t.Fatalf("engine options not applied: %+v", eng.opts)
	}
	if sched.interval != 30*time.Second || sched.settle != 5*time.Second {
		t.Fatalf("scheduler timing = %s/%s", sched.interval, sched.settle)
	}
	if len(windows.classes) != 1 || windows.classes[0] != "Thunar" {
		t.Fatalf("shell classes = %v", windows.classes)
	}
	if act.capacity != 40 {
		t.Fatalf("activity capacity = %d, want 40", act.capacity)
	}
	if state.cfg != next {
		t.Fatalf("expected current config to be replaced")
	}
}

func TestDaemonStateReload_LoadErrorKeepsConfig(t *testing.T) {
	prev := config.DefaultConfig()
	eng := &fakeEngine{}
	state := &daemonState{
		cfg:       prev,
		load:      func() (*config.LoadResult, error) { return nil, errors.New("bad yaml") },
		engine:    eng,
		scheduler: &fakeScheduler{},
		windows:   &fakeWindows{},
		activity:  &fakeActivity{},
		log:       zerolog.New(io.Discard),
	}

	if err := state.reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if state.cfg != prev || len(eng.opts) != 0 {
		t.Fatalf("failed reload must not touch running state")
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxDisplays = 3
	cfg.FallbackResolution = config.Resolution{Width: 800, Height: 600}
	cfg.StartEnabled = false

	got := engineOptions(cfg)
	want := engine.Options{
		MaxDisplays:    3,
		FallbackWidth:  800,
		FallbackHeight: 600,
		StartEnabled:   false,
	}
	if got != want {
		t.Fatalf("engineOptions = %+v, want %+v", got, want)
	}
}
