package domain

import "fmt"

// Location is an immutable geographic point with an optional display name.
//
// Name carries three distinct states that callers must not collapse:
// nil means no name has been resolved or attempted, a pointer to ""
// means a reverse-geocode lookup is in flight (placeholder), and a
// non-empty value is a resolved place name.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      *string `json:"name"`
}

// Validate checks that the coordinates are on the globe.
// Returns ErrValidation (wrapped) otherwise.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be in [-90, 90]", ErrValidation)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be in [-180, 180]", ErrValidation)
	}
	return nil
}

// Position formats the coordinates with five decimal digits each,
// e.g. "37.77490, -122.41940".
func (l Location) Position() string {
	return fmt.Sprintf("%.5f, %.5f", l.Latitude, l.Longitude)
}

// Title returns the display title: the name when present and non-empty,
// otherwise the formatted coordinates.
func (l Location) Title() string {
	if l.Name != nil && *l.Name != "" {
		return *l.Name
	}
	return l.Position()
}

// Subtitle returns the formatted coordinates when a name exists
// (the UI shows them under the name), or "" when the title already
// is the coordinates.
func (l Location) Subtitle() string {
	if l.Name != nil {
		return l.Position()
	}
	return ""
}

// Named returns a copy of l with the given name.
func (l Location) Named(name *string) Location {
	l.Name = name
	return l
}

// Equal reports structural equality, comparing names by value.
// Favorites containment uses this, so a location with a resolved name
// is distinct from the same coordinates without one.
func (l Location) Equal(other Location) bool {
	if l.Latitude != other.Latitude || l.Longitude != other.Longitude {
		return false
	}
	switch {
	case l.Name == nil && other.Name == nil:
		return true
	case l.Name == nil || other.Name == nil:
		return false
	default:
		return *l.Name == *other.Name
	}
}

// PtrEqual reports equality of two nullable locations.
func PtrEqual(a, b *Location) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
