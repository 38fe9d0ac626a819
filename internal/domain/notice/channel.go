// Package notice holds the process-wide transient error message shown on the
// banner. There is one slot: a newer message replaces the older one
// immediately and nothing is queued.
package notice

import (
	"sync"
	"time"
)

// DefaultDuration is how long a message stays visible before auto-clearing.
const DefaultDuration = 6 * time.Second

// Listener receives the current message on every change. An empty string
// means the banner is cleared.
type Listener func(msg string)

// Channel is a single-slot, auto-clearing message holder.
// The zero value is not usable; use New.
type Channel struct {
	mu       sync.Mutex
	msg      string
	gen      uint64
	timer    *time.Timer
	duration time.Duration
	listener Listener
	closed   bool

	// emitMu serializes listener calls so the last call always carries the
	// latest message.
	emitMu sync.Mutex
}

// Option configures a Channel.
type Option func(*Channel)

// WithDuration sets the auto-clear delay. Zero or negative disables auto-clear.
func WithDuration(d time.Duration) Option {
	return func(c *Channel) {
		c.duration = d
	}
}

// New creates a Channel with the default six second auto-clear.
func New(opts ...Option) *Channel {
	c := &Channel{duration: DefaultDuration}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set replaces the current message. An empty message clears the slot.
func (c *Channel) Set(msg string) {
	c.mu.Lock()
	if msg == c.msg && msg == "" {
		c.mu.Unlock()
		return
	}
	c.msg = msg
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if msg != "" && c.duration > 0 && !c.closed {
		gen := c.gen
		c.timer = time.AfterFunc(c.duration, func() { c.expire(gen) })
	}
	c.mu.Unlock()

	c.emit()
}

// Clear removes the current message. Clearing an empty slot is a no-op.
func (c *Channel) Clear() {
	c.Set("")
}

// Current returns the visible message and whether one is set.
func (c *Channel) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msg, c.msg != ""
}

// Register attaches the single listener, replacing any previous one. If a
// message is already visible the listener receives it immediately.
func (c *Channel) Register(l Listener) {
	c.mu.Lock()
	c.listener = l
	visible := c.msg != ""
	c.mu.Unlock()

	if visible {
		c.emit()
	}
}

// Unregister detaches the listener.
func (c *Channel) Unregister() {
	c.mu.Lock()
	c.listener = nil
	c.mu.Unlock()
}

// Close stops the pending auto-clear timer. Messages set after Close stay
// until replaced or cleared.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// expire clears the message armed by generation gen, unless a newer Set
// has happened since.
func (c *Channel) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.msg == "" {
		c.mu.Unlock()
		return
	}
	c.msg = ""
	c.gen++
	c.timer = nil
	c.mu.Unlock()

	c.emit()
}

func (c *Channel) emit() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	l, msg := c.listener, c.msg
	c.mu.Unlock()

	if l == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	l(msg)
}
