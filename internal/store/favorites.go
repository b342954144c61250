package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/tsundberg/fakeloc/internal/domain"
	"github.com/tsundberg/fakeloc/internal/stream"
)

// Favorites is the durable, observable list of saved locations.
// The list behaves as an ordered set under Toggle: membership is decided
// by full structural equality (coordinates and name), insertion appends,
// removal preserves the order of the remaining elements.
type Favorites struct {
	value  *stream.Value[[]domain.Location]
	writer *writeBehind
	log    *slog.Logger

	// mu serializes read-modify-write mutations so concurrent Toggle or
	// Remove calls cannot lose each other's updates.
	mu sync.Mutex
}

// NewFavorites loads the persisted list and starts the write-behind
// worker. Corrupt or unreadable storage degrades to an empty list, logged.
func NewFavorites(kv KV, log *slog.Logger) *Favorites {
	log = log.With("component", "favorites")

	f := &Favorites{
		value:  stream.NewValue(readFavorites(kv, log), locationsEqual),
		writer: newWriteBehind(kv, KeyFavorites, log),
		log:    log,
	}
	f.value.Subscribe(func(v []domain.Location) {
		f.writer.enqueue(encodeFavorites(v))
	})
	return f
}

// Get returns a copy of the current list.
func (f *Favorites) Get() []domain.Location {
	return slices.Clone(f.value.Get())
}

// Contains reports whether loc is saved, by structural equality.
func (f *Favorites) Contains(loc domain.Location) bool {
	return indexOf(f.value.Get(), loc) >= 0
}

// Toggle removes loc when present, appends it otherwise.
// Returns true when loc is saved after the call.
func (f *Favorites) Toggle(loc domain.Location) (saved bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur := f.value.Get()
	if i := indexOf(cur, loc); i >= 0 {
		f.value.Set(slices.Delete(slices.Clone(cur), i, i+1))
		return false
	}
	f.value.Set(append(slices.Clone(cur), loc))
	return true
}

// Remove deletes the first structural match of loc. Removing an absent
// location is a no-op, not an error.
func (f *Favorites) Remove(loc domain.Location) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur := f.value.Get()
	if i := indexOf(cur, loc); i >= 0 {
		f.value.Set(slices.Delete(slices.Clone(cur), i, i+1))
	}
}

// Subscribe registers fn for subsequent changes to the list.
func (f *Favorites) Subscribe(fn func([]domain.Location)) (unsubscribe func()) {
	return f.value.Subscribe(fn)
}

// Close flushes and stops the background writer.
func (f *Favorites) Close() {
	f.writer.Close()
}

func indexOf(list []domain.Location, loc domain.Location) int {
	return slices.IndexFunc(list, loc.Equal)
}

func locationsEqual(a, b []domain.Location) bool {
	return slices.EqualFunc(a, b, domain.Location.Equal)
}

func readFavorites(kv KV, log *slog.Logger) []domain.Location {
	raw, ok, err := kv.Get(context.Background(), KeyFavorites)
	if err != nil {
		log.Error("read failed, starting empty", "error", err)
		return nil
	}
	if !ok || raw == "" || raw == "null" {
		return nil
	}

	var list []domain.Location
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Error("corrupt stored favorites, starting empty", "json", raw, "error", err)
		return nil
	}
	return list
}

func encodeFavorites(v []domain.Location) string {
	if v == nil {
		v = []domain.Location{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
