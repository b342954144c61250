// Package mocker translates "switch is on AND a location is chosen" into
// actual mock-location injection, and keeps that illusion alive until the
// condition stops holding or the daemon shuts down.
package mocker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tsundberg/fakeloc/internal/domain"
	"github.com/tsundberg/fakeloc/internal/geo"
	"github.com/tsundberg/fakeloc/internal/notify"
	"github.com/tsundberg/fakeloc/internal/statemachine"
)

// DefaultInterval is the keep-alive period. The host may stop honoring or
// reclaim an idle mocking session; re-asserting the same fix on this
// cadence keeps it alive. It is a keep-alive, not a data refresh.
const DefaultInterval = 5 * time.Minute

// callTimeout bounds a single provider call.
const callTimeout = 10 * time.Second

// StateSource is the slice of the state machine the driver observes.
type StateSource interface {
	State() statemachine.State
	Subscribe(fn func(statemachine.State)) (unsubscribe func())
}

// LocationSource is the slice of the location store the driver observes.
type LocationSource interface {
	Get() *domain.Location
	Subscribe(fn func(*domain.Location)) (unsubscribe func())
}

// Status is a snapshot of the driver for the status endpoint.
type Status struct {
	Active   bool             `json:"active"`
	Session  *uuid.UUID       `json:"session,omitempty"`
	Location *domain.Location `json:"location,omitempty"`
}

// Driver owns the keep-alive loop and the provider side effects.
//
// It recomputes activeCondition = (state == on && location != nil) on
// every change of either input and compares it against the previous
// value: transitions start or stop the loop, a steady true only restarts
// it when the location itself changed (new coordinates are asserted
// immediately rather than on the next tick). A steady false does nothing.
//
// Deactivation stops the loop and clears the notification but leaves
// mock mode registered, so a quick off-then-on flicker does not thrash
// the host's mock-mode registration. Mock mode is reverted only in Close.
type Driver struct {
	provider geo.MockProvider
	notifier notify.Notifier
	states   StateSource
	locs     LocationSource
	interval time.Duration
	stopURL  string
	now      func() time.Time
	log      *slog.Logger

	mu        sync.Mutex
	active    bool
	activeLoc domain.Location
	session   uuid.UUID
	loopStop  chan struct{}
	loopDone  chan struct{}
	closed    bool
}

// Option tweaks a Driver at construction.
type Option func(*Driver)

// WithInterval overrides the keep-alive period.
func WithInterval(d time.Duration) Option {
	return func(dr *Driver) { dr.interval = d }
}

// WithClock overrides the timestamp source for fixes. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(dr *Driver) { dr.now = now }
}

// WithStopURL sets the stop action URL carried by the notification.
func WithStopURL(u string) Option {
	return func(dr *Driver) { dr.stopURL = u }
}

// New constructs the driver and subscribes it to both inputs. The
// subscriptions live until Close; the driver evaluates its condition once
// immediately in case it was constructed over already-active inputs.
func New(provider geo.MockProvider, notifier notify.Notifier, states StateSource, locs LocationSource, log *slog.Logger, opts ...Option) *Driver {
	d := &Driver{
		provider: provider,
		notifier: notifier,
		states:   states,
		locs:     locs,
		interval: DefaultInterval,
		now:      time.Now,
		log:      log.With("component", "mocker"),
	}
	for _, opt := range opts {
		opt(d)
	}

	states.Subscribe(func(statemachine.State) { d.recompute() })
	locs.Subscribe(func(*domain.Location) { d.recompute() })
	d.recompute()
	return d
}

// Status reports whether a mocking run is active and for which location.
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return Status{}
	}
	loc := d.activeLoc
	session := d.session
	return Status{Active: true, Session: &session, Location: &loc}
}

// Close tears the driver down: the loop is cancelled, the notification
// cleared, and mock mode handed back to the genuine location sources.
// A permission refusal during teardown is logged, never propagated.
func (d *Driver) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	wasActive := d.active
	d.active = false
	d.stopLoopLocked()
	d.mu.Unlock()

	if wasActive {
		d.notifier.Clear()
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := d.provider.DisableMockMode(ctx); err != nil {
		d.log.Error("disable mock mode on teardown failed", "error", err)
	}
}

// recompute is called on every input change with the latest values of
// both inputs, and applies the edge-triggered start/stop/restart logic.
func (d *Driver) recompute() {
	on := d.states.State() == statemachine.On
	loc := d.locs.Get()
	cond := on && loc != nil

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	switch {
	case cond && !d.active:
		d.active = true
		d.activeLoc = *loc
		d.session = uuid.New()
		d.log.Info("mocking started", "session", d.session, "title", d.activeLoc.Title())
		d.startLoopLocked()

	case cond && d.active && !d.activeLoc.Equal(*loc):
		// New coordinates mid-run: restart the loop so the new value is
		// asserted immediately instead of on the next tick.
		d.activeLoc = *loc
		d.log.Info("mocking location changed", "session", d.session, "title", d.activeLoc.Title())
		d.stopLoopLocked()
		d.startLoopLocked()

	case !cond && d.active:
		d.active = false
		d.log.Info("mocking stopped", "session", d.session)
		d.stopLoopLocked()
		d.notifier.Clear()
	}
}

// startLoopLocked asserts the current location once, then launches the
// keep-alive goroutine. Caller holds d.mu.
func (d *Driver) startLoopLocked() {
	loc := d.activeLoc
	session := d.session
	stop := make(chan struct{})
	done := make(chan struct{})
	d.loopStop = stop
	d.loopDone = done

	// First tick fires immediately, in the caller's frame, so the guard
	// scenarios observe the submission without racing a goroutine start.
	d.tick(loc, session)

	go func() {
		defer close(done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				d.tick(loc, session)
			}
		}
	}()
}

// stopLoopLocked cancels the running loop, if any. It does not wait for a
// tick already in flight; that tick may still complete its provider call.
// Caller holds d.mu.
func (d *Driver) stopLoopLocked() {
	if d.loopStop != nil {
		close(d.loopStop)
		d.loopStop = nil
		d.loopDone = nil
	}
}

// tick re-asserts the faked position and re-presents the notification.
// A permission refusal is logged and swallowed: the loop keeps running
// (failing harmlessly) until the setting guard flips the machine off.
func (d *Driver) tick(loc domain.Location, session uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	err := d.provider.EnableMockMode(ctx)
	if err == nil {
		err = d.provider.SubmitLocation(ctx, geo.NewFix(loc, d.now()))
	}
	if err != nil {
		if errors.Is(err, geo.ErrPermissionDenied) {
			d.log.Error("mock location permission is not granted", "session", session)
		} else {
			d.log.Error("mock location submission failed", "session", session, "error", err)
		}
		return
	}

	d.notifier.Show(notify.Notification{
		Session: session,
		Title:   notify.Title,
		Text:    loc.Title(),
		StopURL: d.stopURL,
	})
}
