// Package imageload tracks asynchronous image requests. A new request
// supersedes any outstanding one; completions of superseded requests are
// ignored.
package imageload

import (
	"context"
	"sync"

	"digilib-viewer/internal/logging"

	"go.uber.org/zap"
)

// Ticket identifies one request.
type Ticket struct {
	Seq    uint64
	Source string
}

// Tracker remembers the latest request.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	pending *Ticket
	logger  *zap.Logger
}

// NewTracker creates a tracker with no outstanding request.
func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{logger: logging.OrNop(logger).Named("imageload")}
}

// Request registers a request for src and returns its ticket.
func (t *Tracker) Request(src string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	tk := Ticket{Seq: t.seq, Source: src}
	if t.pending != nil {
		t.logger.Debug("request superseded", zap.String("source", t.pending.Source))
	}
	t.pending = &tk
	return tk
}

// Complete reports whether tk is the outstanding request; if so the request
// is no longer pending. Stale tickets return false and change nothing.
func (t *Tracker) Complete(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil || *t.pending != tk {
		t.logger.Debug("stale completion ignored", zap.String("source", tk.Source), zap.Uint64("seq", tk.Seq))
		return false
	}
	t.pending = nil
	return true
}

// Pending returns the source of the outstanding request.
func (t *Tracker) Pending() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return "", false
	}
	return t.pending.Source, true
}

// Load runs fn for src in a new goroutine and passes its result to done,
// unless another request was made in the meantime. done runs on the loading
// goroutine; UI callers hop to their own thread from there.
func Load[T any](ctx context.Context, t *Tracker, src string, fn func(ctx context.Context, src string) (T, error), done func(T, error)) Ticket {
	tk := t.Request(src)
	go func() {
		v, err := fn(ctx, src)
		if !t.Complete(tk) {
			return
		}
		done(v, err)
	}()
	return tk
}
