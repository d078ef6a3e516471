// Package logind reports system sleep and wake from systemd-logind.
package logind

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	managerPath      = dbus.ObjectPath("/org/freedesktop/login1")
	managerInterface = "org.freedesktop.login1.Manager"
	prepareForSleep  = "PrepareForSleep"
)

// SleepWatcher subscribes to logind's PrepareForSleep signal.
type SleepWatcher struct {
	conn *dbus.Conn
	log  zerolog.Logger
}

// NewSleepWatcher connects to the system bus.
func NewSleepWatcher(logger zerolog.Logger) (*SleepWatcher, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return &SleepWatcher{
		conn: conn,
		log:  logger.With().Str("component", "logind").Logger(),
	}, nil
}

// Watch calls fn(true) before the system sleeps and fn(false) after it
// resumes. It blocks until ctx is cancelled or the bus connection closes.
func (w *SleepWatcher) Watch(ctx context.Context, fn func(sleeping bool)) error {
	if err := w.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(managerPath),
		dbus.WithMatchInterface(managerInterface),
		dbus.WithMatchMember(prepareForSleep),
	); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", prepareForSleep, err)
	}

	signals := make(chan *dbus.Signal, 8)
	w.conn.Signal(signals)
	defer w.conn.RemoveSignal(signals)

	w.log.Debug().Msg("watching for sleep/wake")

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("system bus connection closed")
			}
			sleeping, ok := parseSleepSignal(sig)
			if !ok {
				continue
			}
			fn(sleeping)
		}
	}
}

// Close closes the bus connection.
func (w *SleepWatcher) Close() error {
	return w.conn.Close()
}

func parseSleepSignal(sig *dbus.Signal) (sleeping bool, ok bool) {
	if sig == nil || sig.Name != managerInterface+"."+prepareForSleep {
		return false, false
	}
	if len(sig.Body) != 1 {
		return false, false
	}
	sleeping, ok = sig.Body[0].(bool)
	return sleeping, ok
}
