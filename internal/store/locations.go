package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tsundberg/fakeloc/internal/domain"
	"github.com/tsundberg/fakeloc/internal/stream"
)

// LocationStream is the single read/write point for the current fake
// location. The slot is nullable: nil means no location is chosen. The
// value loads from durable storage at construction and every subsequent
// change is written back through a single background writer, so callers
// never wait on I/O and never observe partial writes.
type LocationStream struct {
	value  *stream.Value[*domain.Location]
	writer *writeBehind
	log    *slog.Logger
}

// NewLocationStream loads the persisted slot and starts the write-behind
// worker. A corrupt or unreadable stored value logs and degrades to nil;
// the store self-heals on the next Update.
func NewLocationStream(kv KV, log *slog.Logger) *LocationStream {
	log = log.With("component", "locations")

	s := &LocationStream{
		value:  stream.NewValue(readLocation(kv, log), domain.PtrEqual),
		writer: newWriteBehind(kv, KeyFakeLocation, log),
		log:    log,
	}

	// The initial load is already durable; only changes after it are
	// written back.
	s.value.Subscribe(func(v *domain.Location) {
		s.writer.enqueue(encodeLocation(v))
	})
	return s
}

// Get returns the current fake location, or nil when none is set.
func (s *LocationStream) Get() *domain.Location {
	return s.value.Get()
}

// Update replaces the slot wholesale and schedules the write-through.
// Subscribers are notified synchronously; the disk write is asynchronous.
func (s *LocationStream) Update(v *domain.Location) {
	s.value.Set(v)
}

// Subscribe registers fn for subsequent changes to the slot.
func (s *LocationStream) Subscribe(fn func(*domain.Location)) (unsubscribe func()) {
	return s.value.Subscribe(fn)
}

// Close flushes and stops the background writer.
func (s *LocationStream) Close() {
	s.writer.Close()
}

func readLocation(kv KV, log *slog.Logger) *domain.Location {
	raw, ok, err := kv.Get(context.Background(), KeyFakeLocation)
	if err != nil {
		log.Error("read failed, starting empty", "error", err)
		return nil
	}
	if !ok || raw == "" || raw == "null" {
		return nil
	}

	var loc domain.Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		log.Error("corrupt stored location, starting empty", "json", raw, "error", err)
		return nil
	}
	return &loc
}

func encodeLocation(v *domain.Location) string {
	if v == nil {
		return "null"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		// A Location of plain floats and a string cannot fail to marshal.
		return "null"
	}
	return string(raw)
}
