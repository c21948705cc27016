package display

import (
	"errors"
	"math"
	"testing"
	"time"

	"digilib-viewer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tween struct {
	from, to geometry.Rectangle
	d        time.Duration
	calls    int
}

func (tw *tween) Animate(el Element, from, to geometry.Rectangle, d time.Duration) {
	tw.calls++
	tw.from, tw.to, tw.d = from, to, d
	el.SetBounds(to)
}

type plain struct{ r geometry.Rectangle }

func (p *plain) Bounds() geometry.Rectangle     { return p.r }
func (p *plain) SetBounds(r geometry.Rectangle) { p.r = r }

func TestMeasure(t *testing.T) {
	_, err := Measure(nil)
	assert.True(t, errors.Is(err, ErrNoElement))

	_, err = Measure(&Box{Rect: geometry.Rectangle{Width: math.NaN()}})
	assert.True(t, errors.Is(err, geometry.ErrInvalidInput))

	r, err := Measure(&Box{Rect: geometry.Rectangle{X: 1, Y: 2, Width: 3, Height: 4}})
	require.NoError(t, err)
	assert.Equal(t, geometry.Rectangle{X: 1, Y: 2, Width: 3, Height: 4}, r)
}

func TestForMode(t *testing.T) {
	tw := &tween{}
	target := geometry.Rectangle{X: 10, Y: 10, Width: 50, Height: 50}

	b := &Box{}
	ForMode(Fullscreen, time.Second, tw).Place(b, target)
	assert.Equal(t, target, b.Rect)
	assert.Zero(t, tw.calls, "fullscreen snaps")

	b = &Box{Rect: geometry.Rectangle{Width: 5, Height: 5}}
	ForMode(Embedded, 300*time.Millisecond, tw).Place(b, target)
	assert.Equal(t, 1, tw.calls)
	assert.Equal(t, geometry.Rectangle{Width: 5, Height: 5}, tw.from)
	assert.Equal(t, 300*time.Millisecond, tw.d)
	assert.Equal(t, target, b.Rect)
}

func TestAnimatedWithoutAnimatorSnaps(t *testing.T) {
	b := &Box{}
	r := geometry.Rectangle{Width: 1, Height: 1}
	Animated{Duration: time.Second}.Place(b, r)
	assert.Equal(t, r, b.Rect)
}

func TestOptionalCapabilities(t *testing.T) {
	p := &plain{}
	assert.Zero(t, BorderOf(p))
	SetVisible(p, false)

	b := &Box{Border: 2}
	assert.Equal(t, 2.0, BorderOf(b))
	SetVisible(b, false)
	assert.False(t, b.Visible())
	SetVisible(b, true)
	assert.True(t, b.Visible())
}
