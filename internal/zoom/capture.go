package zoom

import (
	"sync"

	"digilib-viewer/internal/logging"
	"digilib-viewer/pkg/geometry"

	"go.uber.org/zap"
)

// Handler receives the pointer events of one captured gesture.
type Handler interface {
	Move(pos geometry.Position)
	Up(pos geometry.Position)
	Cancel()
}

// Tracker routes global pointer-move and pointer-up events to at most one
// captured gesture. A new capture cancels the previous one, and pointer-up
// always releases the capture, even if the handler panics.
type Tracker struct {
	mu     sync.Mutex
	active Handler
	logger *zap.Logger
}

// NewTracker creates a tracker without an active capture.
func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{logger: logging.OrNop(logger).Named("capture")}
}

// Capture makes h the receiver of subsequent pointer events.
func (t *Tracker) Capture(h Handler) {
	t.mu.Lock()
	prev := t.active
	t.active = h
	t.mu.Unlock()

	if prev != nil {
		t.logger.Debug("capture replaced")
		prev.Cancel()
	}
}

// Begin cancels the active gesture, runs start and, when it succeeds, makes
// h the receiver of subsequent pointer events. Gestures must be started
// through Begin when the cancelled handler may share state with h.
func (t *Tracker) Begin(h Handler, start func() error) error {
	t.Reset()
	if err := start(); err != nil {
		return err
	}
	t.Capture(h)
	return nil
}

// Captured reports whether a gesture currently holds the capture.
func (t *Tracker) Captured() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active != nil
}

// Move forwards a pointer move. It reports whether a gesture received it.
func (t *Tracker) Move(pos geometry.Position) bool {
	t.mu.Lock()
	h := t.active
	t.mu.Unlock()

	if h == nil {
		return false
	}
	h.Move(pos)
	return true
}

// Up releases the capture and forwards the pointer-up to the released
// gesture. It reports whether a gesture received it.
func (t *Tracker) Up(pos geometry.Position) bool {
	h := t.release()
	if h == nil {
		return false
	}
	h.Up(pos)
	return true
}

// Reset cancels the active gesture, if any.
func (t *Tracker) Reset() {
	if h := t.release(); h != nil {
		h.Cancel()
	}
}

func (t *Tracker) release() Handler {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.active
	t.active = nil
	return h
}

// Binding adapts a Gesture to a Handler and dispatches its outcome.
type Binding struct {
	Gesture *Gesture
	// OnDrag receives the normalized area of a completed drag.
	OnDrag func(area geometry.Rectangle)
	// OnClick receives the default area synthesized for a click.
	OnClick func(area geometry.Rectangle)
	// OnCancel is called when the gesture produced nothing.
	OnCancel func()
}

// Move implements Handler.
func (b Binding) Move(pos geometry.Position) {
	b.Gesture.UpdateDrag(pos)
}

// Up implements Handler.
func (b Binding) Up(pos geometry.Position) {
	if area, ok := b.Gesture.EndDrag(pos); ok {
		if b.OnDrag != nil {
			b.OnDrag(area)
		}
		return
	}
	if area, ok := b.Gesture.ClickArea(); ok {
		if b.OnClick != nil {
			b.OnClick(area)
		}
		return
	}
	b.Cancel()
}

// Cancel implements Handler.
func (b Binding) Cancel() {
	b.Gesture.Cancel()
	if b.OnCancel != nil {
		b.OnCancel()
	}
}
