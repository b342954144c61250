package store

import (
	"context"
	"log/slog"
	"time"
)

// writeTimeout bounds a single backend write so a stuck backend cannot
// wedge the writer goroutine forever.
const writeTimeout = 10 * time.Second

// writeBehind persists snapshots of one storage key on a single background
// goroutine. Callers hand it the full serialized document; writes happen
// in submission order, conflated so that only the latest pending snapshot
// is written when the backend is slower than the callers. Failures are
// logged, never surfaced: the next successful write re-persists current
// truth, so durable state converges to in-memory state.
type writeBehind struct {
	kv   KV
	key  string
	log  *slog.Logger
	mail chan string
	stop chan struct{}
	done chan struct{}
}

func newWriteBehind(kv KV, key string, log *slog.Logger) *writeBehind {
	w := &writeBehind{
		kv:   kv,
		key:  key,
		log:  log,
		mail: make(chan string, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue submits a snapshot without blocking. A pending unwritten
// snapshot is replaced (latest wins).
func (w *writeBehind) enqueue(snapshot string) {
	for {
		select {
		case w.mail <- snapshot:
			return
		default:
		}
		// Mailbox full: evict the stale snapshot and retry.
		select {
		case <-w.mail:
		default:
		}
	}
}

// Close stops the writer after flushing any pending snapshot.
func (w *writeBehind) Close() {
	close(w.stop)
	<-w.done
}

func (w *writeBehind) run() {
	defer close(w.done)
	for {
		select {
		case snapshot := <-w.mail:
			w.write(snapshot)
		case <-w.stop:
			// Flush whatever is still pending before exiting.
			select {
			case snapshot := <-w.mail:
				w.write(snapshot)
			default:
			}
			return
		}
	}
}

func (w *writeBehind) write(snapshot string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.kv.Put(ctx, w.key, snapshot); err != nil {
		w.log.Error("persist failed", "key", w.key, "error", err)
	}
}
