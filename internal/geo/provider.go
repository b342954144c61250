// Package geo defines the gateway to the host's mock-location facility:
// the API that substitutes a synthetic position for the genuine one.
// Real backends (a device bridge, a platform location service) implement
// MockProvider; the daemon only depends on the interface.
package geo

import (
	"context"
	"errors"
	"time"

	"github.com/tsundberg/fakeloc/internal/domain"
)

// ErrPermissionDenied is returned (possibly wrapped) by providers when
// the host refuses a mock-location call because the allowance was revoked
// between check and call. Callers log it and carry on; the setting guard
// turns the machine off on the next refresh.
var ErrPermissionDenied = errors.New("mock location permission denied")

// Fix is one synthetic location fix as submitted to the provider.
type Fix struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Accuracy  float64
	Bearing   float64
	Speed     float64
	Time      time.Time
}

// NewFix builds the fix for a faked location: the target coordinates with
// zero altitude, bearing, and speed, nominal accuracy, and the given
// timestamp.
func NewFix(loc domain.Location, now time.Time) Fix {
	return Fix{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Altitude:  0,
		Accuracy:  1,
		Bearing:   0,
		Speed:     0,
		Time:      now,
	}
}

// MockProvider is the host mock-location API. Every call may fail with
// ErrPermissionDenied if the allowance was revoked in the meantime.
type MockProvider interface {
	// EnableMockMode registers this daemon as the location source.
	EnableMockMode(ctx context.Context) error

	// SubmitLocation asserts fix as the device's current position.
	SubmitLocation(ctx context.Context, fix Fix) error

	// DisableMockMode hands location back to the genuine sources.
	DisableMockMode(ctx context.Context) error
}
