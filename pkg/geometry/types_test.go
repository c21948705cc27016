package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func rect(t *testing.T, x, y, w, h float64) Rectangle {
	t.Helper()
	r, err := NewRectangle(x, y, w, h)
	require.NoError(t, err)
	return r
}

type box [4]float64

func (b box) Box() (x, y, w, h float64) { return b[0], b[1], b[2], b[3] }

type pointer [2]float64

func (p pointer) PointerPosition() (x, y float64) { return p[0], p[1] }

func TestConstructorsRejectNonFinite(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)

	_, err := NewRectangle(nan, 0, 1, 1)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewRectangle(0, 0, inf, 1)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = RectangleOf(box{0, 0, 1, nan})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = RectangleOf(nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = RectangleFromPositions(Position{X: inf}, Position{})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewPosition(0, nan)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = PositionOf(pointer{nan, 1})
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "position", gerr.Op)
}

func TestConstructorsAgree(t *testing.T) {
	want := Rectangle{X: 10, Y: 20, Width: 30, Height: 40}

	r1 := rect(t, 10, 20, 30, 40)
	r2, err := RectangleOf(box{10, 20, 30, 40})
	require.NoError(t, err)
	r3, err := RectangleFromPositions(Position{X: 40, Y: 60}, Position{X: 10, Y: 20})
	require.NoError(t, err)

	assert.Equal(t, want, r1)
	assert.Equal(t, want, r2)
	assert.Equal(t, want, r3)
}

func TestNewRectangleFlipsNegativeSize(t *testing.T) {
	r := rect(t, 10, 20, -5, -6)
	assert.Equal(t, Rectangle{X: 5, Y: 14, Width: 5, Height: 6}, r)
}

func TestPositionArithmetic(t *testing.T) {
	p := Position{X: 1, Y: 2}
	q := Position{X: 4, Y: 6}

	assert.Equal(t, Position{X: 5, Y: 8}, p.Add(q))
	assert.Equal(t, Position{X: 3, Y: 4}, p.Delta(q))
	assert.Equal(t, Position{X: -1, Y: -2}, p.Neg())
	assert.Equal(t, 5.0, p.Distance(q))
}

func TestRectangleDerived(t *testing.T) {
	r := rect(t, 1, 2, 4, 6)
	assert.Equal(t, 24.0, r.Area())
	assert.Equal(t, Position{X: 3, Y: 5}, r.Center())
	assert.Equal(t, Position{X: 5, Y: 8}, r.Max())
	assert.Equal(t, Rectangle{X: 2, Y: 4, Width: 4, Height: 6}, r.AddPosition(Position{X: 1, Y: 2}))
	assert.Equal(t, Rectangle{X: 8, Y: 7, Width: 4, Height: 6}, r.SetCenter(Position{X: 10, Y: 10}))
	// receiver untouched
	assert.Equal(t, Rectangle{X: 1, Y: 2, Width: 4, Height: 6}, r)
}

func TestClipTo(t *testing.T) {
	bound := rect(t, 0, 0, 10, 10)
	tests := []struct {
		name string
		in   Rectangle
		want Rectangle
	}{
		{"inside", Rectangle{X: 2, Y: 2, Width: 3, Height: 3}, Rectangle{X: 2, Y: 2, Width: 3, Height: 3}},
		{"overlap", Rectangle{X: 8, Y: -2, Width: 5, Height: 5}, Rectangle{X: 8, Y: 0, Width: 2, Height: 3}},
		{"covering", Rectangle{X: -5, Y: -5, Width: 20, Height: 20}, bound},
		{"disjoint right", Rectangle{X: 15, Y: 15, Width: 1, Height: 1}, Rectangle{X: 10, Y: 10}},
		{"disjoint left", Rectangle{X: -5, Y: 3, Width: 2, Height: 2}, Rectangle{X: 0, Y: 3, Height: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.ClipTo(bound)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Width, 0.0)
			assert.GreaterOrEqual(t, got.Height, 0.0)
			assert.Equal(t, got, got.ClipTo(bound), "clip must be idempotent")
		})
	}
}

func TestStayInside(t *testing.T) {
	bound := rect(t, 0, 0, 100, 50)
	tests := []struct {
		name string
		in   Rectangle
		want Rectangle
	}{
		{"inside", Rectangle{X: 10, Y: 10, Width: 20, Height: 20}, Rectangle{X: 10, Y: 10, Width: 20, Height: 20}},
		{"past max", Rectangle{X: 90, Y: 40, Width: 20, Height: 20}, Rectangle{X: 80, Y: 30, Width: 20, Height: 20}},
		{"before min", Rectangle{X: -10, Y: -3, Width: 20, Height: 20}, Rectangle{X: 0, Y: 0, Width: 20, Height: 20}},
		{"too large", Rectangle{X: -10, Y: 5, Width: 200, Height: 20}, Rectangle{X: 0, Y: 5, Width: 100, Height: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.StayInside(bound)
			assert.Equal(t, tt.want, got)
			assert.True(t, bound.ContainsRect(got))
		})
	}
}

func TestOverlapsRect(t *testing.T) {
	a := rect(t, 0, 0, 10, 10)
	assert.True(t, a.OverlapsRect(Rectangle{X: 5, Y: 5, Width: 10, Height: 10}))
	assert.False(t, a.OverlapsRect(Rectangle{X: 10, Y: 0, Width: 5, Height: 5}), "touching edges have no area")
	assert.False(t, a.OverlapsRect(Rectangle{X: 5, Y: 5}), "a point has no area")
	assert.False(t, a.OverlapsRect(Rectangle{X: 20, Y: 20, Width: 1, Height: 1}))
}

func TestContains(t *testing.T) {
	a := rect(t, 0, 0, 10, 10)
	assert.True(t, a.ContainsRect(Rectangle{X: 0, Y: 0, Width: 10, Height: 10}))
	assert.False(t, a.ContainsRect(Rectangle{X: 5, Y: 5, Width: 6, Height: 1}))
	assert.True(t, a.ContainsPosition(Position{X: 10, Y: 0}))
	assert.False(t, a.ContainsPosition(Position{X: 10.5, Y: 0}))
}

func TestFit(t *testing.T) {
	bound := rect(t, 0, 0, 1, 1)
	got := Rectangle{Width: 4, Height: 2}.Fit(bound)
	if diff := cmp.Diff(Rectangle{X: 0, Y: 0.25, Width: 1, Height: 0.5}, got, approx); diff != "" {
		t.Fatalf("Fit mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Rectangle{X: 0.5, Y: 0}, Rectangle{X: 0.5, Y: -1, Height: 0}.Fit(bound))
}

func TestUnion(t *testing.T) {
	got := rect(t, 0, 0, 1, 1).Union(rect(t, 2, 3, 1, 1))
	assert.Equal(t, Rectangle{X: 0, Y: 0, Width: 3, Height: 4}, got)
}

func TestIsFullArea(t *testing.T) {
	assert.True(t, IsFullArea(rect(t, 0, 0, 1, 1)))
	assert.True(t, IsFullArea(rect(t, 0, 0, 0.999999, 1)))
	assert.True(t, IsFullArea(rect(t, 1e-7, 0, 1, 1)))
	assert.False(t, IsFullArea(rect(t, 0, 0, 0.9, 1)))
	assert.False(t, IsFullArea(rect(t, 0.1, 0.1, 0.5, 0.5)))
}
