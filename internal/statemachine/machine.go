// Package statemachine holds the single authoritative on/off switch for
// location faking. The switch itself is dumb; the interesting part is the
// pair of guard rules that force it off when faking stops making sense.
package statemachine

import (
	"log/slog"

	"github.com/tsundberg/fakeloc/internal/domain"
	"github.com/tsundberg/fakeloc/internal/stream"
)

// State is the switch position.
type State string

const (
	Off State = "off"
	On  State = "on"
)

// LocationSource is the slice of the location store the machine observes.
type LocationSource interface {
	Subscribe(fn func(*domain.Location)) (unsubscribe func())
}

// SettingSource is the slice of the mock-setting monitor the machine observes.
type SettingSource interface {
	Subscribe(fn func(bool)) (unsubscribe func())
}

// Machine is the fake-location switch with guarded auto-reset.
//
// On and Off are unconditional: the machine answers "is mocking
// requested", not "is mocking currently legal"; precondition checks
// (permissions, developer setting) are the caller's job. Two guard rules,
// registered independently at construction and live for the machine's
// lifetime, force the switch off reactively:
//
//  1. the current location clears (mocking with no target is meaningless);
//  2. the mock-location setting turns off (the host would reject or
//     ignore further mock calls; staying on would be a lie).
//
// Both guards call Off, which is idempotent, so their relative order when
// fired by the same external event does not matter.
type Machine struct {
	state *stream.Value[State]
	log   *slog.Logger
}

// New constructs the machine in the Off state and registers both guards.
func New(locations LocationSource, setting SettingSource, log *slog.Logger) *Machine {
	m := &Machine{
		state: stream.NewValue(Off, func(a, b State) bool { return a == b }),
		log:   log.With("component", "statemachine"),
	}

	locations.Subscribe(func(loc *domain.Location) {
		if loc == nil {
			m.Off()
		}
	})
	setting.Subscribe(func(enabled bool) {
		if !enabled {
			m.Off()
		}
	})
	return m
}

// On requests mocking. Callers must have verified preconditions.
func (m *Machine) On() {
	m.state.Set(On)
}

// Off stops mocking. Idempotent.
func (m *Machine) Off() {
	m.state.Set(Off)
}

// State returns the current switch position.
func (m *Machine) State() State {
	return m.state.Get()
}

// Subscribe registers fn for subsequent state changes.
func (m *Machine) Subscribe(fn func(State)) (unsubscribe func()) {
	return m.state.Subscribe(fn)
}
