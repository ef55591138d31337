package realtime

import (
	"sync"
	"time"
)

// Event types published by the exchange engine.
const (
	TypeRosterUpdated  = "roster.updated"
	TypeRequestCreated = "request.created"
	TypeRequestDecided = "request.decided"
)

// Event is one change notification on a logical document key.
type Event struct {
	Key  string    `json:"key"`
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

// RosterKey is the watch key for a department's monthly roster document.
func RosterKey(department, monthKey string) string {
	return "schedules/" + department + "-" + monthKey
}

// RequestsKey is the watch key for a department's exchange request feed.
func RequestsKey(department string) string {
	return "exchangeRequests/" + department
}

// Publisher is the notification surface the services write to.
type Publisher interface {
	Publish(event Event)
}

// Hub fans change events out to watchers. Watching is explicit: Watch
// returns the event stream together with a cancel function, and delivery
// stops only when that cancel is called or the hub shuts down. For a single
// key, every watcher observes events in publish order; no ordering holds
// across keys. A slow consumer is buffered, never reordered and never able
// to block the publisher.
type Hub struct {
	mu       sync.Mutex
	watchers map[string][]*watcher
	closed   bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[string][]*watcher)}
}

// Publish delivers the event to every watcher of event.Key.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, w := range h.watchers[event.Key] {
		w.push(event)
	}
}

// Watch subscribes to a key. The returned cancel function is idempotent and
// closes the stream; callers must not rely on any implicit cleanup.
func (h *Hub) Watch(key string) (<-chan Event, func()) {
	w := newWatcher()
	go w.run()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		w.stop()
		return w.out, func() {}
	}
	h.watchers[key] = append(h.watchers[key], w)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		h.remove(key, w)
		h.mu.Unlock()
		w.stop()
	}
	return w.out, cancel
}

// Close stops every watcher. Pending events already queued are still drained
// to their streams before the streams close.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	all := h.watchers
	h.watchers = make(map[string][]*watcher)
	h.mu.Unlock()

	for _, ws := range all {
		for _, w := range ws {
			w.stop()
		}
	}
}

func (h *Hub) remove(key string, target *watcher) {
	ws := h.watchers[key]
	for i, w := range ws {
		if w == target {
			h.watchers[key] = append(ws[:i], ws[i+1:]...)
			break
		}
	}
	if len(h.watchers[key]) == 0 {
		delete(h.watchers, key)
	}
}

// watcher decouples the publisher from the consumer: push appends to an
// internal queue under its own lock, and the run goroutine drains the queue
// into the out channel in FIFO order.
type watcher struct {
	out      chan Event
	mu       sync.Mutex
	queue    []Event
	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newWatcher() *watcher {
	return &watcher{
		out:  make(chan Event, 16),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (w *watcher) push(event Event) {
	w.mu.Lock()
	w.queue = append(w.queue, event)
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *watcher) stop() {
	w.stopOnce.Do(func() { close(w.done) })
}

func (w *watcher) run() {
	defer close(w.out)
	for {
		select {
		case <-w.done:
			w.drain()
			return
		case <-w.wake:
		}
		if !w.flush() {
			return
		}
	}
}

// flush sends every queued event; returns false when the watcher stopped.
func (w *watcher) flush() bool {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.mu.Unlock()
			return true
		}
		event := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		select {
		case w.out <- event:
		case <-w.done:
			return false
		}
	}
}

// drain performs a best-effort non-blocking delivery of leftovers on stop.
func (w *watcher) drain() {
	w.mu.Lock()
	leftover := w.queue
	w.queue = nil
	w.mu.Unlock()
	for _, event := range leftover {
		select {
		case w.out <- event:
		default:
			return
		}
	}
}
