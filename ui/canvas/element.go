package canvas

import (
	"sync"
	"time"

	"digilib-viewer/internal/display"
	"digilib-viewer/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
)

// Element adapts a fyne canvas object to display.Element. Coordinates are
// relative to the object's parent container.
type Element struct {
	Object fyne.CanvasObject

	mu    sync.Mutex
	anims []*fyne.Animation
}

var (
	_ display.Element    = (*Element)(nil)
	_ display.Bordered   = (*Element)(nil)
	_ display.Visibility = (*Element)(nil)
)

// NewElement wraps obj.
func NewElement(obj fyne.CanvasObject) *Element {
	return &Element{Object: obj}
}

// Bounds implements display.Element.
func (e *Element) Bounds() geometry.Rectangle {
	p, s := e.Object.Position(), e.Object.Size()
	return geometry.Rectangle{X: float64(p.X), Y: float64(p.Y), Width: float64(s.Width), Height: float64(s.Height)}
}

// SetBounds implements display.Element. It stops a running animation.
func (e *Element) SetBounds(r geometry.Rectangle) {
	e.stop()
	e.Object.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	e.Object.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
	fynecanvas.Refresh(e.Object)
}

// BorderWidth implements display.Bordered for stroked rectangles.
func (e *Element) BorderWidth() float64 {
	if r, ok := e.Object.(*fynecanvas.Rectangle); ok {
		return float64(r.StrokeWidth)
	}
	return 0
}

// Show implements display.Visibility.
func (e *Element) Show() { e.Object.Show() }

// Hide implements display.Visibility.
func (e *Element) Hide() { e.Object.Hide() }

// Visible implements display.Visibility.
func (e *Element) Visible() bool { return e.Object.Visible() }

func (e *Element) stop() {
	e.mu.Lock()
	anims := e.anims
	e.anims = nil
	e.mu.Unlock()
	for _, a := range anims {
		a.Stop()
	}
}

// Animator tweens Elements with fyne animations.
type Animator struct{}

// Animate implements display.Animator. Elements not created by NewElement
// are moved immediately.
func (Animator) Animate(el display.Element, from, to geometry.Rectangle, d time.Duration) {
	e, ok := el.(*Element)
	if !ok {
		el.SetBounds(to)
		return
	}
	e.stop()
	obj := e.Object
	move := fynecanvas.NewPositionAnimation(
		fyne.NewPos(float32(from.X), float32(from.Y)),
		fyne.NewPos(float32(to.X), float32(to.Y)),
		d, func(p fyne.Position) {
			obj.Move(p)
			fynecanvas.Refresh(obj)
		})
	resize := fynecanvas.NewSizeAnimation(
		fyne.NewSize(float32(from.Width), float32(from.Height)),
		fyne.NewSize(float32(to.Width), float32(to.Height)),
		d, func(s fyne.Size) {
			obj.Resize(s)
		})
	e.mu.Lock()
	e.anims = []*fyne.Animation{move, resize}
	e.mu.Unlock()
	move.Start()
	resize.Start()
}
