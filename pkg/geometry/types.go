// Package geometry provides the position and rectangle value types used by the
// viewer overlays, and the viewport transform between normalized image
// coordinates and screen pixels.
//
// A value may live in normalized image space (the whole image is 0..1 in both
// directions) or in screen pixel space; which one is tracked by context, not by
// the type. All operations return new values and never modify the receiver.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// FullAreaTolerance is the per-coordinate tolerance used by IsFullArea.
const FullAreaTolerance = 1e-6

// FullArea is the normalized rectangle covering the entire image.
var FullArea = Rectangle{X: 0, Y: 0, Width: 1, Height: 1}

// Position represents a point in normalized or screen space.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// PointerEvent is a source of pointer coordinates, e.g. a mouse event.
type PointerEvent interface {
	PointerPosition() (x, y float64)
}

// NewPosition creates a Position, rejecting non-finite coordinates.
func NewPosition(x, y float64) (Position, error) {
	p := Position{X: x, Y: y}
	if !p.IsFinite() {
		return Position{}, invalid("position", x, y)
	}
	return p, nil
}

// PositionOf creates a Position from the coordinates of a pointer event.
func PositionOf(ev PointerEvent) (Position, error) {
	if ev == nil {
		return Position{}, &Error{Op: "position", Err: ErrInvalidInput}
	}
	return NewPosition(ev.PointerPosition())
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Position) IsFinite() bool {
	return finite(p.X) && finite(p.Y)
}

// Add returns the position translated by delta.
func (p Position) Add(delta Position) Position {
	return Position{X: p.X + delta.X, Y: p.Y + delta.Y}
}

// Delta returns the vector from p to other (other - p).
func (p Position) Delta(other Position) Position {
	return Position{X: other.X - p.X, Y: other.Y - p.Y}
}

// Neg returns the negated position.
func (p Position) Neg() Position {
	return Position{X: -p.X, Y: -p.Y}
}

// Scale returns the position scaled by a factor.
func (p Position) Scale(factor float64) Position {
	return Position{X: p.X * factor, Y: p.Y * factor}
}

// Distance returns the Euclidean distance to another position.
func (p Position) Distance(other Position) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rectangle is an axis-aligned rectangle. Width and Height are never negative.
type Rectangle struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// ElementMetrics reports the on-screen box of a laid-out element in pixels.
type ElementMetrics interface {
	Box() (x, y, width, height float64)
}

// NewRectangle creates a Rectangle. A negative width or height is flipped so
// that the result spans the same region with a non-negative size.
func NewRectangle(x, y, width, height float64) (Rectangle, error) {
	r := Rectangle{X: x, Y: y, Width: width, Height: height}
	if !r.IsFinite() {
		return Rectangle{}, invalid("rectangle", x, y, width, height)
	}
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r, nil
}

// RectangleOf creates a Rectangle from the measured box of an element.
func RectangleOf(m ElementMetrics) (Rectangle, error) {
	if m == nil {
		return Rectangle{}, &Error{Op: "rectangle", Err: ErrInvalidInput}
	}
	return NewRectangle(m.Box())
}

// RectangleFromPositions returns the bounding box of two positions.
func RectangleFromPositions(p1, p2 Position) (Rectangle, error) {
	if !p1.IsFinite() || !p2.IsFinite() {
		return Rectangle{}, invalid("rectangle", p1.X, p1.Y, p2.X, p2.Y)
	}
	x, y := math.Min(p1.X, p2.X), math.Min(p1.Y, p2.Y)
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  math.Max(p1.X, p2.X) - x,
		Height: math.Max(p1.Y, p2.Y) - y,
	}, nil
}

// IsFinite reports whether all four fields are finite numbers.
func (r Rectangle) IsFinite() bool {
	return finite(r.X) && finite(r.Y) && finite(r.Width) && finite(r.Height)
}

// Origin returns the top-left corner.
func (r Rectangle) Origin() Position {
	return Position{X: r.X, Y: r.Y}
}

// Max returns the bottom-right corner.
func (r Rectangle) Max() Position {
	return Position{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Size returns the width and height.
func (r Rectangle) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Area returns width*height.
func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}

// Center returns the center point of the rectangle.
func (r Rectangle) Center() Position {
	return Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// AddPosition returns the rectangle translated by delta.
func (r Rectangle) AddPosition(delta Position) Rectangle {
	r.X += delta.X
	r.Y += delta.Y
	return r
}

// SetCenter returns the rectangle moved so that its center is at p.
func (r Rectangle) SetCenter(p Position) Rectangle {
	r.X = p.X - r.Width/2
	r.Y = p.Y - r.Height/2
	return r
}

// ContainsPosition returns true if p lies inside or on the edge of r.
func (r Rectangle) ContainsPosition(p Position) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ContainsRect returns true if other lies completely inside r.
func (r Rectangle) ContainsRect(other Rectangle) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// OverlapsRect returns true if the intersection of r and other has a positive area.
func (r Rectangle) OverlapsRect(other Rectangle) bool {
	return r.ClipTo(other).Area() > 0
}

// ClipTo returns the intersection of r and bound. If they do not overlap the
// result has zero size and sits at r's origin clamped into bound.
func (r Rectangle) ClipTo(bound Rectangle) Rectangle {
	x := clamp(r.X, bound.X, bound.X+bound.Width)
	y := clamp(r.Y, bound.Y, bound.Y+bound.Height)
	x2 := math.Min(r.X+r.Width, bound.X+bound.Width)
	y2 := math.Min(r.Y+r.Height, bound.Y+bound.Height)
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  math.Max(0, x2-x),
		Height: math.Max(0, y2-y),
	}
}

// StayInside returns r moved, not resized, so that it lies within bound. A
// rectangle larger than bound is first shrunk to bound's size.
func (r Rectangle) StayInside(bound Rectangle) Rectangle {
	r.Width = math.Min(r.Width, bound.Width)
	r.Height = math.Min(r.Height, bound.Height)
	if r.X+r.Width > bound.X+bound.Width {
		r.X = bound.X + bound.Width - r.Width
	}
	if r.Y+r.Height > bound.Y+bound.Height {
		r.Y = bound.Y + bound.Height - r.Height
	}
	if r.X < bound.X {
		r.X = bound.X
	}
	if r.Y < bound.Y {
		r.Y = bound.Y
	}
	return r
}

// Fit returns the largest rectangle with r's aspect ratio that fits inside
// bound, centered on bound. A rectangle without an aspect ratio (zero width or
// height) is clipped to bound instead.
func (r Rectangle) Fit(bound Rectangle) Rectangle {
	if r.Width == 0 || r.Height == 0 {
		return r.ClipTo(bound)
	}
	f := math.Min(bound.Width/r.Width, bound.Height/r.Height)
	fitted := Rectangle{Width: r.Width * f, Height: r.Height * f}
	return fitted.SetCenter(bound.Center())
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rectangle) Union(other Rectangle) Rectangle {
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	x2 := math.Max(r.X+r.Width, other.X+other.Width)
	y2 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rectangle{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Equal reports whether every field of r and other differs by at most tol.
func (r Rectangle) Equal(other Rectangle, tol float64) bool {
	return within(r.X, other.X, tol) && within(r.Y, other.Y, tol) &&
		within(r.Width, other.Width, tol) && within(r.Height, other.Height, tol)
}

// IsFullArea reports whether r covers the whole image within FullAreaTolerance.
func IsFullArea(r Rectangle) bool {
	return r.Equal(FullArea, FullAreaTolerance)
}

// within compares after rounding the difference to 1e-9, so that decimal
// literals on the tolerance boundary compare as written.
func within(a, b, tol float64) bool {
	return scalar.Round(math.Abs(a-b), 9) <= tol
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
