// Package notify delivers user-facing outcome messages.
package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sink receives user-facing outcome messages from the stores.
type Sink interface {
	Success(msg string)
	Failure(msg string)
}

// Level distinguishes toast kinds.
type Level int

const (
	LevelSuccess Level = iota
	LevelFailure
)

// Toast is a single transient notification.
type Toast struct {
	ID      uint64
	Level   Level
	Message string
	Created time.Time
}

const (
	DefaultMaxToasts = 5
	DefaultLifetime  = 3 * time.Second
)

// Toasts is a bounded, newest-first queue of notifications that expire
// after a fixed lifetime.
type Toasts struct {
	mu       sync.Mutex
	items    []Toast
	max      int
	lifetime time.Duration
	seq      uint64
	now      func() time.Time
}

// NewToasts returns a queue holding at most max toasts, each visible for
// lifetime. Non-positive values use the defaults.
func NewToasts(max int, lifetime time.Duration) *Toasts {
	if max <= 0 {
		max = DefaultMaxToasts
	}
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Toasts{max: max, lifetime: lifetime, now: time.Now}
}

func (t *Toasts) Success(msg string) { t.push(LevelSuccess, msg) }
func (t *Toasts) Failure(msg string) { t.push(LevelFailure, msg) }

func (t *Toasts) push(level Level, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	toast := Toast{ID: t.seq, Level: level, Message: msg, Created: t.now()}
	t.items = append([]Toast{toast}, t.items...)
	if len(t.items) > t.max {
		t.items = t.items[:t.max]
	}
}

// Active prunes expired toasts and returns the rest, newest first.
func (t *Toasts) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	kept := t.items[:0]
	for _, toast := range t.items {
		if now.Sub(toast.Created) < t.lifetime {
			kept = append(kept, toast)
		}
	}
	t.items = kept
	out := make([]Toast, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes a toast before it expires.
func (t *Toasts) Dismiss(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, toast := range t.items {
		if toast.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// LogSink writes notifications to a logger.
type LogSink struct {
	Log logrus.FieldLogger
}

func (s LogSink) Success(msg string) {
	if s.Log != nil {
		s.Log.WithField("component", "notify").Info(msg)
	}
}

func (s LogSink) Failure(msg string) {
	if s.Log != nil {
		s.Log.WithField("component", "notify").Error(msg)
	}
}

type tee []Sink

// Tee fans every notification out to each non-nil sink.
func Tee(sinks ...Sink) Sink {
	var out tee
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (t tee) Success(msg string) {
	for _, s := range t {
		s.Success(msg)
	}
}

func (t tee) Failure(msg string) {
	for _, s := range t {
		s.Failure(msg)
	}
}

// Discard drops every notification.
var Discard Sink = tee(nil)
