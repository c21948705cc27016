package zoom

import (
	"errors"
	"math"
	"testing"

	"digilib-viewer/pkg/geometry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var screen = geometry.Rectangle{Width: 500, Height: 500}

func newTestGesture(t *testing.T, opts Options) (*Controller, *Gesture) {
	t.Helper()
	c := NewController(nil)
	c.SetImageRect(screen)
	return c, NewGesture(c, opts)
}

func TestSmallSpanIsClick(t *testing.T) {
	_, g := newTestGesture(t, Options{ClickSize: geometry.Size{Width: 0.01, Height: 0.01}})

	require.NoError(t, g.BeginDrag(geometry.Position{X: 100, Y: 100}, screen))
	_, ok := g.EndDrag(geometry.Position{X: 101, Y: 101})
	assert.False(t, ok)
	assert.False(t, g.Active())

	click, ok := g.ClickArea()
	require.True(t, ok)
	if diff := cmp.Diff(geometry.Position{X: 0.2, Y: 0.2}, click.Center(), approx); diff != "" {
		t.Fatalf("click center mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 0.01, click.Width, 1e-12)
	assert.InDelta(t, 0.01, click.Height, 1e-12)
}

func TestClickThreshold(t *testing.T) {
	tests := []struct {
		name  string
		end   geometry.Position
		click bool
	}{
		{"point", geometry.Position{X: 100, Y: 100}, true},
		{"at threshold", geometry.Position{X: 101, Y: 105}, true},
		{"above threshold", geometry.Position{X: 102, Y: 103}, false},
		{"thin line", geometry.Position{X: 400, Y: 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, g := newTestGesture(t, Options{})
			require.NoError(t, g.BeginDrag(geometry.Position{X: 100, Y: 100}, screen))
			_, dragged := g.EndDrag(tt.end)
			_, clicked := g.ClickArea()
			assert.Equal(t, tt.click, clicked)
			assert.Equal(t, !tt.click, dragged)
		})
	}
}

func TestSpanDrag(t *testing.T) {
	var moves []geometry.Rectangle
	_, g := newTestGesture(t, Options{OnMove: func(r geometry.Rectangle) { moves = append(moves, r) }})

	require.NoError(t, g.BeginDrag(geometry.Position{X: 100, Y: 100}, screen))
	cand, ok := g.UpdateDrag(geometry.Position{X: 50, Y: 300})
	require.True(t, ok)
	assert.Equal(t, geometry.Rectangle{X: 50, Y: 100, Width: 50, Height: 200}, cand, "dragging left and down")
	assert.Len(t, moves, 1)

	area, ok := g.EndDrag(geometry.Position{X: 300, Y: 200})
	require.True(t, ok)
	if diff := cmp.Diff(geometry.Rectangle{X: 0.2, Y: 0.2, Width: 0.4, Height: 0.2}, area, approx); diff != "" {
		t.Fatalf("area mismatch (-want +got):\n%s", diff)
	}
	_, clicked := g.ClickArea()
	assert.False(t, clicked)
}

func TestSpanDragClipsToContainer(t *testing.T) {
	_, g := newTestGesture(t, Options{})
	require.NoError(t, g.BeginDrag(geometry.Position{X: 100, Y: 100}, screen))

	area, ok := g.EndDrag(geometry.Position{X: 600, Y: -50})
	require.True(t, ok)
	if diff := cmp.Diff(geometry.Rectangle{X: 0.2, Y: 0, Width: 0.8, Height: 0.2}, area, approx); diff != "" {
		t.Fatalf("area mismatch (-want +got):\n%s", diff)
	}

	from, to := g.Endpoints()
	if diff := cmp.Diff([]geometry.Position{{X: 0.2, Y: 0.2}, {X: 1, Y: 0}}, []geometry.Position{from, to}, approx); diff != "" {
		t.Fatalf("endpoints mismatch (-want +got):\n%s", diff)
	}
}

func TestSpanOutsideContainerYieldsNothing(t *testing.T) {
	_, g := newTestGesture(t, Options{})
	require.NoError(t, g.BeginDrag(geometry.Position{X: 600, Y: 100}, screen))
	_, ok := g.EndDrag(geometry.Position{X: 700, Y: 300})
	assert.False(t, ok)
	_, clicked := g.ClickArea()
	assert.False(t, clicked)
}

func TestMoveDragStaysInside(t *testing.T) {
	_, g := newTestGesture(t, Options{})
	rect := geometry.Rectangle{X: 100, Y: 100, Width: 100, Height: 100}

	require.NoError(t, g.BeginMove(geometry.Position{X: 150, Y: 150}, screen, rect))
	assert.Equal(t, Move, g.Mode())
	cand, ok := g.UpdateDrag(geometry.Position{X: 450, Y: 150})
	require.True(t, ok)
	assert.Equal(t, geometry.Rectangle{X: 400, Y: 100, Width: 100, Height: 100}, cand)

	area, ok := g.EndDrag(geometry.Position{X: 450, Y: 150})
	require.True(t, ok)
	if diff := cmp.Diff(geometry.Rectangle{X: 0.8, Y: 0.2, Width: 0.2, Height: 0.2}, area, approx); diff != "" {
		t.Fatalf("area mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveWithoutMovementCentersOnClick(t *testing.T) {
	_, g := newTestGesture(t, Options{})
	rect := geometry.Rectangle{X: 200, Y: 200, Width: 100, Height: 100}

	require.NoError(t, g.BeginMove(geometry.Position{X: 50, Y: 250}, screen, rect))
	_, ok := g.EndDrag(geometry.Position{X: 50, Y: 250})
	assert.False(t, ok)

	click, ok := g.ClickArea()
	require.True(t, ok)
	if diff := cmp.Diff(geometry.Rectangle{X: 0, Y: 0.4, Width: 0.2, Height: 0.2}, click, approx); diff != "" {
		t.Fatalf("click mismatch (-want +got):\n%s", diff)
	}
}

func TestNonFiniteInputCancels(t *testing.T) {
	_, g := newTestGesture(t, Options{})

	err := g.BeginDrag(geometry.Position{X: math.NaN()}, screen)
	assert.True(t, errors.Is(err, ErrGestureInput))
	assert.False(t, g.Active())

	err = g.BeginMove(geometry.Position{}, screen, geometry.Rectangle{Width: math.Inf(1)})
	assert.True(t, errors.Is(err, ErrGestureInput))

	require.NoError(t, g.BeginDrag(geometry.Position{X: 10, Y: 10}, screen))
	_, ok := g.UpdateDrag(geometry.Position{X: math.Inf(-1), Y: 0})
	assert.False(t, ok)
	assert.False(t, g.Active())

	_, ok = g.EndDrag(geometry.Position{X: 200, Y: 200})
	assert.False(t, ok, "cancelled gesture produces nothing")
	_, clicked := g.ClickArea()
	assert.False(t, clicked)
}

func TestGestureNeedsTransform(t *testing.T) {
	g := NewGesture(NewController(nil), Options{})
	err := g.BeginDrag(geometry.Position{X: 1, Y: 1}, screen)
	assert.True(t, errors.Is(err, ErrNoTransform))
	assert.False(t, g.Active())
}

func TestTransformTakenAtBegin(t *testing.T) {
	c, g := newTestGesture(t, Options{})
	require.NoError(t, g.BeginDrag(geometry.Position{X: 100, Y: 100}, screen))

	// layout changes mid-drag are ignored
	c.SetImageRect(geometry.Rectangle{Width: 1000, Height: 1000})
	area, ok := g.EndDrag(geometry.Position{X: 200, Y: 200})
	require.True(t, ok)
	if diff := cmp.Diff(geometry.Rectangle{X: 0.2, Y: 0.2, Width: 0.2, Height: 0.2}, area, approx); diff != "" {
		t.Fatalf("area mismatch (-want +got):\n%s", diff)
	}
}

func TestGestureInZoomedView(t *testing.T) {
	c, g := newTestGesture(t, Options{})
	require.NoError(t, c.SetZoomArea(geometry.Rectangle{X: 0.5, Y: 0.5, Width: 0.5, Height: 0.5}))

	require.NoError(t, g.BeginDrag(geometry.Position{X: 0, Y: 0}, screen))
	area, ok := g.EndDrag(geometry.Position{X: 250, Y: 500})
	require.True(t, ok)
	if diff := cmp.Diff(geometry.Rectangle{X: 0.5, Y: 0.5, Width: 0.25, Height: 0.5}, area, approx); diff != "" {
		t.Fatalf("area mismatch (-want +got):\n%s", diff)
	}
}

func TestLineGesture(t *testing.T) {
	_, g := newTestGesture(t, Options{Line: true})

	require.NoError(t, g.BeginDrag(geometry.Position{X: 100, Y: 100}, screen))
	area, ok := g.EndDrag(geometry.Position{X: 400, Y: 100})
	require.True(t, ok, "horizontal segments are valid")
	assert.Equal(t, 0.0, area.Height)
	from, to := g.Endpoints()
	if diff := cmp.Diff([]geometry.Position{{X: 0.2, Y: 0.2}, {X: 0.8, Y: 0.2}}, []geometry.Position{from, to}, approx); diff != "" {
		t.Fatalf("endpoints mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, g.BeginDrag(geometry.Position{X: 100, Y: 100}, screen))
	_, ok = g.EndDrag(geometry.Position{X: 102, Y: 101})
	assert.False(t, ok)
	_, clicked := g.ClickArea()
	assert.True(t, clicked)
}

func TestLineClickBoundary(t *testing.T) {
	for _, tc := range []struct {
		name  string
		end   geometry.Position
		click bool
	}{
		{"exactly threshold", geometry.Position{X: 102, Y: 101}, true},
		{"diagonal at threshold", geometry.Position{X: 99, Y: 102}, true},
		{"just past threshold", geometry.Position{X: 102, Y: 102}, false},
		{"vertical", geometry.Position{X: 100, Y: 103}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, g := newTestGesture(t, Options{Line: true})
			require.NoError(t, g.BeginDrag(geometry.Position{X: 100, Y: 100}, screen))
			_, ok := g.EndDrag(tc.end)
			assert.Equal(t, !tc.click, ok)
			_, clicked := g.ClickArea()
			assert.Equal(t, tc.click, clicked)
		})
	}
}
