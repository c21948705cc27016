package zoom

import (
	"errors"
	"testing"

	"digilib-viewer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []string
}

func (r *recorder) Move(geometry.Position) { r.events = append(r.events, "move") }
func (r *recorder) Up(geometry.Position)   { r.events = append(r.events, "up") }
func (r *recorder) Cancel()                { r.events = append(r.events, "cancel") }

func TestTrackerSingleCapture(t *testing.T) {
	tr := NewTracker(nil)
	assert.False(t, tr.Move(geometry.Position{}), "nothing captured")

	first, second := &recorder{}, &recorder{}
	tr.Capture(first)
	assert.True(t, tr.Move(geometry.Position{}))
	tr.Capture(second)
	assert.Equal(t, []string{"move", "cancel"}, first.events)

	assert.True(t, tr.Up(geometry.Position{}))
	assert.False(t, tr.Captured())
	assert.False(t, tr.Up(geometry.Position{}))
	assert.Equal(t, []string{"up"}, second.events)
}

func TestTrackerReleasesOnPanic(t *testing.T) {
	tr := NewTracker(nil)
	tr.Capture(panicky{})
	assert.Panics(t, func() { tr.Up(geometry.Position{}) })
	assert.False(t, tr.Captured())
}

type panicky struct{}

func (panicky) Move(geometry.Position) {}
func (panicky) Up(geometry.Position)   { panic("handler failed") }
func (panicky) Cancel()                {}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(nil)
	r := &recorder{}
	tr.Capture(r)
	tr.Reset()
	tr.Reset()
	assert.Equal(t, []string{"cancel"}, r.events)
}

func TestBindingDispatch(t *testing.T) {
	_, g := newTestGesture(t, Options{ClickSize: geometry.Size{Width: 0.1, Height: 0.1}})
	var dragged, clicked []geometry.Rectangle
	cancelled := 0
	b := Binding{
		Gesture:  g,
		OnDrag:   func(a geometry.Rectangle) { dragged = append(dragged, a) },
		OnClick:  func(a geometry.Rectangle) { clicked = append(clicked, a) },
		OnCancel: func() { cancelled++ },
	}
	tr := NewTracker(nil)

	require.NoError(t, g.BeginDrag(geometry.Position{X: 0, Y: 0}, screen))
	tr.Capture(b)
	tr.Move(geometry.Position{X: 250, Y: 250})
	tr.Up(geometry.Position{X: 250, Y: 250})
	require.Len(t, dragged, 1)
	assert.InDelta(t, 0.5, dragged[0].Width, 1e-9)

	require.NoError(t, g.BeginDrag(geometry.Position{X: 250, Y: 250}, screen))
	tr.Capture(b)
	tr.Up(geometry.Position{X: 250, Y: 250})
	require.Len(t, clicked, 1)
	assert.InDelta(t, 0.45, clicked[0].X, 1e-9)

	require.NoError(t, g.BeginDrag(geometry.Position{X: 250, Y: 250}, screen))
	tr.Capture(b)
	tr.Reset()
	assert.Equal(t, 1, cancelled)
	assert.False(t, g.Active())
}

func TestBeginRestartsSameGesture(t *testing.T) {
	_, g := newTestGesture(t, Options{ClickSize: geometry.Size{Width: 0.1, Height: 0.1}})
	var dragged []geometry.Rectangle
	cancelled := 0
	b := Binding{
		Gesture:  g,
		OnDrag:   func(a geometry.Rectangle) { dragged = append(dragged, a) },
		OnCancel: func() { cancelled++ },
	}
	tr := NewTracker(nil)

	begin := func(anchor geometry.Position) error {
		return tr.Begin(b, func() error { return g.BeginDrag(anchor, screen) })
	}
	require.NoError(t, begin(geometry.Position{X: 0, Y: 0}))
	require.NoError(t, begin(geometry.Position{X: 50, Y: 50}))
	assert.Equal(t, 1, cancelled)
	assert.True(t, g.Active(), "restarted gesture stays active")

	assert.True(t, tr.Move(geometry.Position{X: 250, Y: 250}))
	assert.True(t, tr.Up(geometry.Position{X: 250, Y: 250}))
	require.Len(t, dragged, 1)
	assert.InDelta(t, 0.1, dragged[0].X, 1e-9)
	assert.InDelta(t, 0.4, dragged[0].Width, 1e-9)
}

func TestBeginFailureLeavesNothingCaptured(t *testing.T) {
	tr := NewTracker(nil)
	r := &recorder{}
	tr.Capture(r)

	failed := errors.New("no transform")
	err := tr.Begin(&recorder{}, func() error { return failed })
	require.ErrorIs(t, err, failed)
	assert.Equal(t, []string{"cancel"}, r.events)
	assert.False(t, tr.Captured())
}
