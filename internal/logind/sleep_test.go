package logind

import (
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestParseSleepSignal(t *testing.T) {
	name := managerInterface + "." + prepareForSleep

	tests := []struct {
		name         string
		sig          *dbus.Signal
		wantSleeping bool
		wantOK       bool
	}{
		{name: "going to sleep", sig: &dbus.Signal{Name: name, Body: []interface{}{true}}, wantSleeping: true, wantOK: true},
		{name: "resumed", sig: &dbus.Signal{Name: name, Body: []interface{}{false}}, wantSleeping: false, wantOK: true},
		{name: "other member", sig: &dbus.Signal{Name: managerInterface + ".SessionNew", Body: []interface{}{true}}},
		{name: "wrong body type", sig: &dbus.Signal{Name: name, Body: []interface{}{"yes"}}},
		{name: "empty body", sig: &dbus.Signal{Name: name}},
		{name: "nil", sig: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeping, ok := parseSleepSignal(tt.sig)
			if sleeping != tt.wantSleeping || ok != tt.wantOK {
				t.Fatalf("parseSleepSignal() = %v, %v; want %v, %v", sleeping, ok, tt.wantSleeping, tt.wantOK)
			}
		})
	}
}
