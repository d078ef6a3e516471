package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/allan-simon/go-singleinstance"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/1broseidon/imember/internal/activity"
	"github.com/1broseidon/imember/internal/config"
	"github.com/1broseidon/imember/internal/daemon"
	"github.com/1broseidon/imember/internal/engine"
	"github.com/1broseidon/imember/internal/ipc"
	"github.com/1broseidon/imember/internal/logging"
	"github.com/1broseidon/imember/internal/logind"
	"github.com/1broseidon/imember/internal/platform"
	"github.com/1broseidon/imember/internal/procstate"
	"github.com/1broseidon/imember/internal/runtimepath"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the imember daemon (foreground)",
	Long: `Start the daemon in the foreground.

The daemon snapshots window positions every save_interval, restores them
after a display change, and serves the control socket used by the other
commands. SIGHUP reloads the configuration.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	res, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	activityLog := activity.New(cfg.ActivityLines)
	logger, err := logging.New(
		logging.WithConsole(os.Stderr),
		logging.WithLevelName(cfg.LogLevel),
		logging.WithFile(cfg.LogFile),
		logging.WithActivity(activityLog),
	)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()
	log := logger.Zerolog()

	fail := func(err error, msg string) error {
		log.Error().Err(err).Msg(msg)
		return &reportedError{err: fmt.Errorf("%s: %w", msg, err)}
	}

	pidPath, err := runtimepath.PIDPath()
	if err != nil {
		return fail(err, "failed to resolve pid file path")
	}
	lockFile, err := singleinstance.CreateLockFile(pidPath)
	if err != nil {
		return fail(err, "imember daemon is already running")
	}
	defer func() {
		lockFile.Close()
		os.Remove(pidPath)
	}()

	log.Info().
		Dur("save_interval", cfg.SaveInterval).
		Dur("topology_settle", cfg.TopologySettle).
		Int("max_displays", cfg.MaxDisplays).
		Strs("files", res.Files).
		Msg("Configuration loaded")

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display, cfg.ShellWindowClasses)
	if err != nil {
		return fail(err, "failed to connect to display")
	}
	defer backend.Disconnect()

	ctrl := engine.New(backend, procstate.NewInspector(), log, engineOptions(cfg))
	sched := daemon.NewScheduler(daemon.SchedulerConfig{
		Interval: cfg.SaveInterval,
		Settle:   cfg.TopologySettle,
		Logger:   log,
	}, ctrl)

	if err := backend.WatchTopology(sched.NotifyTopology); err != nil {
		return fail(err, "failed to watch display changes")
	}

	state := &daemonState{
		cfg:       cfg,
		load:      loadConfig,
		engine:    ctrl,
		scheduler: sched,
		windows:   backend,
		activity:  activityLog,
		log:       log,
	}

	ipcServer, err := ipc.NewServer(ctrl, activityLog, state.reload, log)
	if err != nil {
		return fail(err, "failed to create IPC server")
	}
	if err := ipcServer.Start(); err != nil {
		return fail(err, "failed to start IPC server")
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Run(ctx)

	if cfg.WatchSleep {
		go watchSleep(ctx, log, sched)
	}

	go backend.EventLoop()
	log.Info().Int("pid", os.Getpid()).Msg("imember daemon started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			log.Info().Msg("Received SIGHUP, reloading config")
			if err := state.reload(); err != nil {
				log.Error().Err(err).Msg("Config reload failed")
			}
			continue
		}
		log.Info().Str("signal", sig.String()).Msg("Shutting down imember daemon")
		break
	}

	cancel()
	backend.StopEventLoop()
	return nil
}

func watchSleep(ctx context.Context, log zerolog.Logger, sched *daemon.Scheduler) {
	watcher, err := logind.NewSleepWatcher(log)
	if err != nil {
		log.Warn().Err(err).Msg("Sleep/wake events unavailable")
		return
	}
	defer watcher.Close()

	if err := watcher.Watch(ctx, sched.NotifySleep); err != nil {
		log.Warn().Err(err).Msg("Stopped watching sleep/wake events")
	}
}

func engineOptions(cfg *config.Config) engine.Options {
	return engine.Options{
		MaxDisplays:    cfg.MaxDisplays,
		FallbackWidth:  cfg.FallbackResolution.Width,
		FallbackHeight: cfg.FallbackResolution.Height,
		VerboseTicks:   cfg.LogWindowsOnTick,
		StartEnabled:   cfg.StartEnabled,
	}
}

// daemonState applies reloaded configuration to the running components.
type daemonState struct {
	mu  sync.Mutex
	cfg *config.Config

	load      func() (*config.LoadResult, error)
	engine    interface{ UpdateOptions(engine.Options) }
	scheduler interface {
		SetTiming(interval, settle time.Duration)
	}
	windows  interface{ SetShellClasses([]string) }
	activity interface{ Resize(capacity int) }
	log      zerolog.Logger
}

// reload re-reads the config file. Saved arrangements and the enabled flag
// are kept.
func (d *daemonState) reload() error {
	res, err := d.load()
	if err != nil {
		return err
	}
	next := res.Config

	d.mu.Lock()
	defer d.mu.Unlock()

	d.engine.UpdateOptions(engineOptions(next))
	d.scheduler.SetTiming(next.SaveInterval, next.TopologySettle)
	d.windows.SetShellClasses(next.ShellWindowClasses)
	d.activity.Resize(next.ActivityLines)

	prev := d.cfg
	if prev.LogLevel != next.LogLevel || prev.LogFile != next.LogFile ||
		prev.Display != next.Display || prev.WatchSleep != next.WatchSleep {
		d.log.Warn().Msg("log_level, log_file, display and watch_sleep changes take effect after restart")
	}
	d.cfg = next

	d.log.Info().Dur("save_interval", next.SaveInterval).Msg("Config reloaded")
	return nil
}
