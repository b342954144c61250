package domain

import "errors"

// ErrNotFound is returned at the HTTP boundary when a requested resource
// (e.g. a favorite asked to be deleted) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. coordinates off the globe).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrSettingDisabled is returned when the caller asks to start mocking
// while the host's mock-location setting is off. The host would reject
// or silently ignore mock calls, so the request is refused up front.
// Handlers should map this to HTTP 409 Conflict.
var ErrSettingDisabled = errors.New("mock location setting disabled")
