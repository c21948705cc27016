// Package display applies screen rectangles to visual overlay elements. The
// geometry core never touches a rendering surface directly; it measures and
// moves elements through the small interfaces defined here.
package display

import (
	"errors"
	"time"

	"digilib-viewer/pkg/geometry"
)

// ErrNoElement is returned when measuring a nil element.
var ErrNoElement = errors.New("display: no element")

// Element is a visual object with a screen rectangle.
type Element interface {
	Bounds() geometry.Rectangle
	SetBounds(r geometry.Rectangle)
}

// Bordered is implemented by elements drawn with a border outside their bounds.
type Bordered interface {
	BorderWidth() float64
}

// Visibility is implemented by elements that can be hidden.
type Visibility interface {
	Show()
	Hide()
	Visible() bool
}

// Measure returns the current screen rectangle of el.
func Measure(el Element) (geometry.Rectangle, error) {
	if el == nil {
		return geometry.Rectangle{}, ErrNoElement
	}
	r := el.Bounds()
	if !r.IsFinite() {
		return geometry.Rectangle{}, &geometry.Error{
			Op:     "measure",
			Values: []float64{r.X, r.Y, r.Width, r.Height},
			Err:    geometry.ErrInvalidInput,
		}
	}
	return r, nil
}

// BorderOf returns el's border width, or 0 for elements without a border.
func BorderOf(el Element) float64 {
	if b, ok := el.(Bordered); ok {
		return b.BorderWidth()
	}
	return 0
}

// SetVisible shows or hides el when it supports visibility.
func SetVisible(el Element, visible bool) {
	v, ok := el.(Visibility)
	if !ok {
		return
	}
	if visible {
		v.Show()
	} else {
		v.Hide()
	}
}

// Animator tweens an element between two rectangles.
type Animator interface {
	Animate(el Element, from, to geometry.Rectangle, d time.Duration)
}

// Placement applies a screen rectangle to an element.
type Placement interface {
	Place(el Element, r geometry.Rectangle)
}

// Immediate snaps elements to their new rectangle.
type Immediate struct{}

// Place implements Placement.
func (Immediate) Place(el Element, r geometry.Rectangle) {
	el.SetBounds(r)
}

// Animated tweens elements to their new rectangle over Duration.
type Animated struct {
	Duration time.Duration
	Animator Animator
}

// Place implements Placement. Without an animator or a positive duration it
// behaves like Immediate.
func (a Animated) Place(el Element, r geometry.Rectangle) {
	if a.Animator == nil || a.Duration <= 0 {
		el.SetBounds(r)
		return
	}
	a.Animator.Animate(el, el.Bounds(), r, a.Duration)
}

// Mode is the display mode of the viewer.
type Mode int

const (
	Embedded Mode = iota
	Fullscreen
)

func (m Mode) String() string {
	if m == Fullscreen {
		return "fullscreen"
	}
	return "embedded"
}

// ForMode returns the placement used in mode: instant in fullscreen, animated
// otherwise.
func ForMode(mode Mode, d time.Duration, animator Animator) Placement {
	if mode == Fullscreen {
		return Immediate{}
	}
	return Animated{Duration: d, Animator: animator}
}

// Box is an in-memory Element, used where no rendering surface exists.
type Box struct {
	Rect   geometry.Rectangle
	Border float64
	Hidden bool
}

// Bounds implements Element.
func (b *Box) Bounds() geometry.Rectangle { return b.Rect }

// SetBounds implements Element.
func (b *Box) SetBounds(r geometry.Rectangle) { b.Rect = r }

// BorderWidth implements Bordered.
func (b *Box) BorderWidth() float64 { return b.Border }

// Show implements Visibility.
func (b *Box) Show() { b.Hidden = false }

// Hide implements Visibility.
func (b *Box) Hide() { b.Hidden = true }

// Visible implements Visibility.
func (b *Box) Visible() bool { return !b.Hidden }
