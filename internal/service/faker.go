// Package service implements the orchestration logic between the control
// surface and the fake-location core: choosing locations (with the
// reverse-geocode name lookup), flipping the switch, and favorites.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tsundberg/fakeloc/internal/domain"
	"github.com/tsundberg/fakeloc/internal/geocode"
	"github.com/tsundberg/fakeloc/internal/mocker"
	"github.com/tsundberg/fakeloc/internal/notify"
	"github.com/tsundberg/fakeloc/internal/statemachine"
)

// resolveTimeout bounds one reverse-geocode lookup.
const resolveTimeout = 15 * time.Second

func strPtr(s string) *string { return &s }

// LocationStore is the slice of the location stream the service needs.
type LocationStore interface {
	Get() *domain.Location
	Update(*domain.Location)
}

// FavoritesStore is the slice of the favorites store the service needs.
type FavoritesStore interface {
	Get() []domain.Location
	Contains(domain.Location) bool
	Toggle(domain.Location) bool
	Remove(domain.Location)
}

// Machine is the slice of the state machine the service needs.
type Machine interface {
	On()
	Off()
	State() statemachine.State
}

// SettingMonitor is the slice of the setting monitor the service needs.
type SettingMonitor interface {
	Enabled() bool
}

// DriverSource reports the driver's current run.
type DriverSource interface {
	Status() mocker.Status
}

// NotificationSource exposes the notification on display, if any.
type NotificationSource interface {
	Current() *notify.Notification
}

// Status is the full observable state of the daemon, as served by the
// control API.
type Status struct {
	State    statemachine.State   `json:"state"`
	Setting  bool                 `json:"mock_setting_enabled"`
	Location *domain.Location     `json:"location"`
	Saved    bool                 `json:"saved"`
	Driver   mocker.Status        `json:"driver"`
	Shown    *notify.Notification `json:"notification,omitempty"`
}

// Faker wires the stores, the state machine, and the resolver together.
type Faker struct {
	locations LocationStore
	favorites FavoritesStore
	machine   Machine
	setting   SettingMonitor
	driver    DriverSource
	shown     NotificationSource
	resolver  geocode.Resolver
	log       *slog.Logger
}

// NewFaker constructs the service.
func NewFaker(
	locations LocationStore,
	favorites FavoritesStore,
	machine Machine,
	setting SettingMonitor,
	driver DriverSource,
	shown NotificationSource,
	resolver geocode.Resolver,
	log *slog.Logger,
) *Faker {
	return &Faker{
		locations: locations,
		favorites: favorites,
		machine:   machine,
		setting:   setting,
		driver:    driver,
		shown:     shown,
		resolver:  resolver,
		log:       log.With("component", "faker"),
	}
}

// SetLocation validates and publishes a new fake location.
//
// When the location has no usable name yet, an empty-string placeholder is
// published synchronously (distinct from "no name": it marks a lookup in
// flight) and the resolved copy follows asynchronously. Resolution failure
// publishes a nil name; callers then display coordinates. A later
// SetLocation does not cancel an in-flight lookup, so an old resolution
// completing late can overwrite a newer location's name; that matches the
// observed product behavior rather than assuming cancellation semantics.
func (f *Faker) SetLocation(ctx context.Context, loc domain.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}

	if loc.Name != nil && strings.TrimSpace(*loc.Name) != "" {
		f.locations.Update(&loc)
		return nil
	}

	placeholder := loc.Named(strPtr(""))
	f.locations.Update(&placeholder)

	go func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()

		name, err := f.resolver.ResolveName(rctx, loc.Latitude, loc.Longitude)
		if err != nil {
			f.log.Warn("reverse geocode failed", "position", loc.Position(), "error", err)
			name = nil
		}
		resolved := loc.Named(name)
		f.locations.Update(&resolved)
	}()
	return nil
}

// ClearLocation empties the slot. The state machine's guard rule forces
// the switch off in the same step.
func (f *Faker) ClearLocation() {
	f.locations.Update(nil)
}

// SetState flips the switch. Turning on requires the mock-location
// setting to be enabled; the machine itself does not check, so the check
// lives here at the caller boundary.
func (f *Faker) SetState(on bool) error {
	if !on {
		f.machine.Off()
		return nil
	}
	if !f.setting.Enabled() {
		return fmt.Errorf("service.Faker.SetState: %w", domain.ErrSettingDisabled)
	}
	f.machine.On()
	return nil
}

// Stop is the notification stop action: unconditional off.
func (f *Faker) Stop() {
	f.machine.Off()
}

// Favorites returns the saved list.
func (f *Faker) Favorites() []domain.Location {
	return f.favorites.Get()
}

// ToggleFavorite toggles the current location in the favorites list.
// Returns domain.ErrNotFound when no location is set.
func (f *Faker) ToggleFavorite() (saved bool, err error) {
	loc := f.locations.Get()
	if loc == nil {
		return false, fmt.Errorf("service.Faker.ToggleFavorite: no location set: %w", domain.ErrNotFound)
	}
	return f.favorites.Toggle(*loc), nil
}

// ToggleFavoriteOf toggles an explicit location.
func (f *Faker) ToggleFavoriteOf(loc domain.Location) (saved bool, err error) {
	if err := loc.Validate(); err != nil {
		return false, err
	}
	return f.favorites.Toggle(loc), nil
}

// RemoveFavorite deletes a saved location. The store treats removing an
// absent entry as a no-op; the control surface wants a 404 instead, so
// presence is checked here.
func (f *Faker) RemoveFavorite(loc domain.Location) error {
	if !f.favorites.Contains(loc) {
		return fmt.Errorf("service.Faker.RemoveFavorite: %w", domain.ErrNotFound)
	}
	f.favorites.Remove(loc)
	return nil
}

// Saved reports whether the current location is in the favorites list.
func (f *Faker) Saved() bool {
	loc := f.locations.Get()
	return loc != nil && f.favorites.Contains(*loc)
}

// Status snapshots the daemon state for the control API.
func (f *Faker) Status() Status {
	return Status{
		State:    f.machine.State(),
		Setting:  f.setting.Enabled(),
		Location: f.locations.Get(),
		Saved:    f.Saved(),
		Driver:   f.driver.Status(),
		Shown:    f.shown.Current(),
	}
}
