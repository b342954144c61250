// Package setting mirrors the host's "allow mock locations" developer
// setting into an observable boolean. The setting is owned by the host,
// not by this daemon; it is re-read on demand (when the operator surfaces,
// i.e. on control-API traffic), not continuously polled.
package setting

import (
	"log/slog"

	"github.com/tsundberg/fakeloc/internal/stream"
)

// Checker performs the point-in-time query against the host.
type Checker interface {
	// Enabled reports whether this daemon is currently allowed to mock
	// locations. Implementations must not block for long and must map
	// their own failures to false.
	Enabled() bool
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func() bool

func (f CheckerFunc) Enabled() bool { return f() }

// Monitor caches the checker's last answer as an observable value.
type Monitor struct {
	checker Checker
	value   *stream.Value[bool]
	log     *slog.Logger
}

// NewMonitor queries the checker once for the initial value.
func NewMonitor(checker Checker, log *slog.Logger) *Monitor {
	return &Monitor{
		checker: checker,
		value:   stream.NewValue(checker.Enabled(), func(a, b bool) bool { return a == b }),
		log:     log.With("component", "mock-setting"),
	}
}

// Enabled returns the cached answer from the last check.
func (m *Monitor) Enabled() bool {
	return m.value.Get()
}

// Refresh re-queries the checker and publishes the result. Subscribers
// are only notified when the answer actually changed.
func (m *Monitor) Refresh() {
	enabled := m.checker.Enabled()
	if enabled != m.value.Get() {
		m.log.Info("mock location setting changed", "enabled", enabled)
	}
	m.value.Set(enabled)
}

// Subscribe registers fn for subsequent changes of the setting.
func (m *Monitor) Subscribe(fn func(bool)) (unsubscribe func()) {
	return m.value.Subscribe(fn)
}
