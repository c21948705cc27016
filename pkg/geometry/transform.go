package geometry

import (
	"math"

	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"
)

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Scaling returns a scaling transform.
func Scaling(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a position.
func (t AffineTransform) Apply(p Position) Position {
	return Position{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// TransformRect maps the corners of r and returns their bounding box.
func (t AffineTransform) TransformRect(r Rectangle) Rectangle {
	br := r.Max()
	corners := [4]Position{
		t.Apply(r.Origin()),
		t.Apply(Position{X: br.X, Y: r.Y}),
		t.Apply(Position{X: r.X, Y: br.Y}),
		t.Apply(br),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	return Rectangle{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Matrix returns the transform as a 3x3 homogeneous matrix.
func (t AffineTransform) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
		0, 0, 1,
	})
}

// FromMatrix creates an AffineTransform from the top two rows of a 3x3 matrix.
func FromMatrix(m mat.Matrix) AffineTransform {
	return AffineTransform{
		A: m.At(0, 0), B: m.At(0, 1), TX: m.At(0, 2),
		C: m.At(1, 0), D: m.At(1, 1), TY: m.At(1, 2),
	}
}

// Compose returns this transform composed with another (this * other), i.e.
// other is applied first.
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	var m mat.Dense
	m.Mul(t.Matrix(), other.Matrix())
	return FromMatrix(&m)
}

// Inverse returns the inverse transform, if it exists.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	if math.Abs(t.A*t.D-t.B*t.C) < 1e-12 {
		return AffineTransform{}, false
	}
	var inv mat.Dense
	if err := inv.Inverse(t.Matrix()); err != nil {
		return AffineTransform{}, false
	}
	return FromMatrix(&inv), true
}

// Aff3 returns the transform in the layout used by golang.org/x/image/draw.
func (t AffineTransform) Aff3() f64.Aff3 {
	return f64.Aff3{t.A, t.B, t.TX, t.C, t.D, t.TY}
}

// ViewportTransform maps normalized image coordinates to the screen rectangle
// the image occupies, given the zoom area currently displayed. Values are
// rebuilt, never updated, whenever the zoom area or the screen rectangle
// changes.
type ViewportTransform struct {
	dest   Rectangle
	area   Rectangle
	sx, sy float64
}

// NewViewportTransform builds the transform for an image shown in dest with
// the normalized zoom area area. The area is clipped to FullArea first.
func NewViewportTransform(dest, area Rectangle) (ViewportTransform, error) {
	if !dest.IsFinite() || !area.IsFinite() {
		return ViewportTransform{}, invalid("transform", dest.X, dest.Y, dest.Width, dest.Height,
			area.X, area.Y, area.Width, area.Height)
	}
	area = area.ClipTo(FullArea)
	if area.Width <= 0 || area.Height <= 0 {
		return ViewportTransform{}, &Error{Op: "transform", Values: []float64{area.Width, area.Height}, Err: ErrDegenerateTransform}
	}
	if dest.Width <= 0 || dest.Height <= 0 {
		return ViewportTransform{}, &Error{Op: "transform", Values: []float64{dest.Width, dest.Height}, Err: ErrDegenerateTransform}
	}
	return ViewportTransform{
		dest: dest,
		area: area,
		sx:   dest.Width / area.Width,
		sy:   dest.Height / area.Height,
	}, nil
}

// Dest returns the screen rectangle of the displayed image.
func (v ViewportTransform) Dest() Rectangle { return v.dest }

// Area returns the (clipped) zoom area the transform was built from.
func (v ViewportTransform) Area() Rectangle { return v.area }

// Scale returns the normalized-to-screen scale factors.
func (v ViewportTransform) Scale() (sx, sy float64) { return v.sx, v.sy }

// TransformPosition maps a normalized position to screen pixels.
func (v ViewportTransform) TransformPosition(p Position) Position {
	return Position{
		X: v.dest.X + (p.X-v.area.X)*v.sx,
		Y: v.dest.Y + (p.Y-v.area.Y)*v.sy,
	}
}

// InvTransformPosition maps a screen position to normalized coordinates.
func (v ViewportTransform) InvTransformPosition(p Position) Position {
	return Position{
		X: v.area.X + (p.X-v.dest.X)/v.sx,
		Y: v.area.Y + (p.Y-v.dest.Y)/v.sy,
	}
}

// Transform maps a normalized rectangle to a screen rectangle.
func (v ViewportTransform) Transform(r Rectangle) Rectangle {
	o := v.TransformPosition(r.Origin())
	return Rectangle{X: o.X, Y: o.Y, Width: r.Width * v.sx, Height: r.Height * v.sy}
}

// InvTransform maps a screen rectangle to a normalized rectangle. It is the
// exact inverse of Transform.
func (v ViewportTransform) InvTransform(r Rectangle) Rectangle {
	o := v.InvTransformPosition(r.Origin())
	return Rectangle{X: o.X, Y: o.Y, Width: r.Width / v.sx, Height: r.Height / v.sy}
}

// Affine returns the normalized-to-screen map as an AffineTransform.
func (v ViewportTransform) Affine() AffineTransform {
	return AffineTransform{
		A: v.sx, TX: v.dest.X - v.area.X*v.sx,
		D: v.sy, TY: v.dest.Y - v.area.Y*v.sy,
	}
}

// Chain returns the map from from's screen space to to's screen space, going
// through normalized image coordinates.
func Chain(from, to ViewportTransform) AffineTransform {
	inv, ok := from.Affine().Inverse()
	if !ok {
		// from is never singular: its scale factors are positive.
		return to.Affine()
	}
	return to.Affine().Compose(inv)
}
