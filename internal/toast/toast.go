// Package toast provides the notification sink: an explicit FIFO
// queue of pending notes per session plus a "currently displayed"
// slot, injected by reference instead of living in ambient global
// state. Notes are displayed one at a time; emission is
// fire-and-forget.
package toast

import (
	"log"
	"sync"
)

// Variant classifies a note for display.
type Variant string

const (
	Info    Variant = "info"
	Success Variant = "success"
	Warning Variant = "warning"
	Error   Variant = "error"
)

// Note is one notification.
type Note struct {
	Message string  `json:"message"`
	Variant Variant `json:"variant"`
}

// maxQueued caps one session's pending queue. Overflow drops the note
// and logs a warning rather than blocking the emitter.
const maxQueued = 64

type sessionQueue struct {
	pending []Note
	current *Note
	subs    []chan Note
}

// Bus holds per-session notification queues. All methods are safe for
// concurrent use.
type Bus struct {
	mu       sync.Mutex
	sessions map[string]*sessionQueue
}

// NewBus creates an empty notification bus.
func NewBus() *Bus {
	return &Bus{sessions: make(map[string]*sessionQueue)}
}

func (b *Bus) queue(key string) *sessionQueue {
	q, ok := b.sessions[key]
	if !ok {
		q = &sessionQueue{}
		b.sessions[key] = q
	}
	return q
}

// Emit appends a note to the session's queue. Fire-and-forget: a full
// queue drops the note with a log line, and live subscribers that
// cannot keep up are skipped.
func (b *Bus) Emit(key string, n Note) {
	if n.Variant == "" {
		n.Variant = Info
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queue(key)
	if len(q.pending) >= maxQueued {
		log.Printf("toast: queue full, dropping %s note for %s", n.Variant, key)
		return
	}
	q.pending = append(q.pending, n)
	for _, sub := range q.subs {
		select {
		case sub <- n:
		default:
		}
	}
}

// Next pops the oldest pending note into the displayed slot and
// returns it. ok is false when nothing is pending.
func (b *Bus) Next(key string) (Note, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queue(key)
	if len(q.pending) == 0 {
		q.current = nil
		return Note{}, false
	}
	n := q.pending[0]
	q.pending = q.pending[1:]
	q.current = &n
	return n, true
}

// Current returns the note in the displayed slot, if any.
func (b *Bus) Current(key string) (Note, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queue(key)
	if q.current == nil {
		return Note{}, false
	}
	return *q.current, true
}

// Dismiss clears the displayed slot.
func (b *Bus) Dismiss(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue(key).current = nil
}

// Pending returns how many notes wait behind the displayed slot.
func (b *Bus) Pending(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue(key).pending)
}

// Subscribe registers a live listener for a session's notes. The
// returned cancel function must be called when the listener goes away.
func (b *Bus) Subscribe(key string) (<-chan Note, func()) {
	ch := make(chan Note, 8)
	b.mu.Lock()
	q := b.queue(key)
	q.subs = append(q.subs, ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		q := b.queue(key)
		for i, sub := range q.subs {
			if sub == ch {
				q.subs = append(q.subs[:i:i], q.subs[i+1:]...)
				break
			}
		}
	}
	return ch, cancel
}

// Drop discards everything held for a session, pending and displayed.
// Called when the session itself is destroyed.
func (b *Bus) Drop(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, key)
}
