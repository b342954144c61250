// Package notify presents the "faking is active" ongoing notification.
// The daemon re-presents it on every keep-alive tick while mocking runs;
// the stop action it advertises is the control API's POST /v1/stop route,
// which turns the state machine off.
package notify

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Title is the fixed headline of the ongoing notification.
const Title = "Fake location enabled"

// Notification is the presented content. Session identifies the mocking
// run it belongs to, Text carries the faked location's display title.
type Notification struct {
	Session uuid.UUID `json:"session"`
	Title   string    `json:"title"`
	Text    string    `json:"text"`
	StopURL string    `json:"stop_url"`
}

// Notifier presents at most one ongoing notification.
type Notifier interface {
	// Show presents or replaces the ongoing notification.
	Show(n Notification)

	// Clear removes the ongoing notification if one is shown.
	Clear()
}

// LogNotifier is the default Notifier: it mirrors the notification into
// the structured log and keeps the latest one readable for the status
// endpoint.
type LogNotifier struct {
	log *slog.Logger

	mu      sync.Mutex
	current *Notification
}

// NewLogNotifier returns a notifier logging at info level.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "notify")}
}

func (n *LogNotifier) Show(notification Notification) {
	n.mu.Lock()
	replacing := n.current != nil && n.current.Session == notification.Session
	n.current = &notification
	n.mu.Unlock()

	// Re-presenting the same session every tick is routine; only the
	// first presentation of a run is worth an info line.
	if !replacing {
		n.log.Info("notification shown",
			"session", notification.Session,
			"title", notification.Title,
			"text", notification.Text,
		)
	}
}

func (n *LogNotifier) Clear() {
	n.mu.Lock()
	cleared := n.current
	n.current = nil
	n.mu.Unlock()

	if cleared != nil {
		n.log.Info("notification cleared", "session", cleared.Session)
	}
}

// Current returns the notification on display, or nil.
func (n *LogNotifier) Current() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	c := *n.current
	return &c
}

var _ Notifier = (*LogNotifier)(nil)
