package zoom

import (
	"errors"

	"digilib-viewer/pkg/geometry"
)

// DefaultClickThreshold is the area in square pixels up to which a spanned
// rectangle is treated as a click rather than a drag.
const DefaultClickThreshold = 5.0

var (
	// ErrGestureInput is returned when a gesture starts from non-finite coordinates.
	ErrGestureInput = errors.New("gesture: invalid pointer position")

	// ErrNoTransform is returned when a gesture starts while the displayed
	// image has no usable viewport transform.
	ErrNoTransform = errors.New("gesture: no viewport transform")
)

// Mode selects how a gesture turns pointer movement into a rectangle.
type Mode int

const (
	// Span spans a rectangle between the anchor and the pointer (region and
	// measuring shapes).
	Span Mode = iota
	// Move translates a fixed-size rectangle with the pointer (bird's-eye
	// zoom indicator).
	Move
)

func (m Mode) String() string {
	switch m {
	case Span:
		return "span"
	case Move:
		return "move"
	default:
		return "unknown"
	}
}

// TransformSource supplies the viewport transform a gesture works in.
// Controller is one; the bird's-eye view supplies its own.
type TransformSource interface {
	Transform() (geometry.ViewportTransform, bool)
}

// Options configures a Gesture.
type Options struct {
	// ClickThreshold in square pixels; zero means DefaultClickThreshold.
	ClickThreshold float64
	// ClickSize is the normalized size of the rectangle synthesized around
	// the anchor when a Span gesture turns out to be a click.
	ClickSize geometry.Size
	// Line makes a Span gesture measure a segment: it is a click when the
	// pointer moved at most sqrt(ClickThreshold) pixels, and horizontal or
	// vertical segments are valid results.
	Line bool
	// OnMove, if set, is called with every candidate screen rectangle so the
	// caller can reposition its overlay.
	OnMove func(candidate geometry.Rectangle)
}

// Gesture is one pointer-down, pointer-move*, pointer-up interaction. The
// viewport transform is taken once when the gesture begins and used for the
// whole drag.
type Gesture struct {
	source TransformSource
	opts   Options

	mode      Mode
	active    bool
	moved     bool
	anchor    geometry.Position
	current   geometry.Position
	container geometry.Rectangle
	start     geometry.Rectangle
	candidate geometry.Rectangle
	trafo     geometry.ViewportTransform

	click    geometry.Rectangle
	hasClick bool
	segment  [2]geometry.Position
}

// NewGesture creates an idle gesture.
func NewGesture(source TransformSource, opts Options) *Gesture {
	if opts.ClickThreshold <= 0 {
		opts.ClickThreshold = DefaultClickThreshold
	}
	return &Gesture{source: source, opts: opts}
}

// SetClickThreshold changes the click threshold for the next gesture.
// Non-positive values are ignored.
func (g *Gesture) SetClickThreshold(px2 float64) {
	if px2 > 0 {
		g.opts.ClickThreshold = px2
	}
}

// Active reports whether a drag is in progress.
func (g *Gesture) Active() bool { return g.active }

// Mode returns the mode of the current or last drag.
func (g *Gesture) Mode() Mode { return g.mode }

// BeginDrag starts a Span drag at anchor, confined to container.
func (g *Gesture) BeginDrag(anchor geometry.Position, container geometry.Rectangle) error {
	return g.begin(Span, anchor, container, geometry.Rectangle{X: anchor.X, Y: anchor.Y})
}

// BeginMove starts a Move drag of rect at anchor, confined to container.
func (g *Gesture) BeginMove(anchor geometry.Position, container, rect geometry.Rectangle) error {
	if !rect.IsFinite() {
		g.reset()
		return ErrGestureInput
	}
	return g.begin(Move, anchor, container, rect)
}

func (g *Gesture) begin(mode Mode, anchor geometry.Position, container, start geometry.Rectangle) error {
	g.reset()
	if !anchor.IsFinite() || !container.IsFinite() {
		return ErrGestureInput
	}
	trafo, ok := g.source.Transform()
	if !ok {
		return ErrNoTransform
	}
	g.mode = mode
	g.active = true
	g.anchor = anchor
	g.current = anchor
	g.container = container
	g.start = start
	g.candidate = start
	g.trafo = trafo
	return nil
}

// UpdateDrag computes the candidate screen rectangle for the pointer at pos.
// A non-finite position cancels the gesture.
func (g *Gesture) UpdateDrag(pos geometry.Position) (geometry.Rectangle, bool) {
	if !g.active {
		return geometry.Rectangle{}, false
	}
	if !pos.IsFinite() {
		g.Cancel()
		return geometry.Rectangle{}, false
	}
	g.moved = true
	g.current = pos
	g.candidate = g.candidateAt(pos)
	if g.opts.OnMove != nil {
		g.opts.OnMove(g.candidate)
	}
	return g.candidate, true
}

func (g *Gesture) candidateAt(pos geometry.Position) geometry.Rectangle {
	if g.mode == Move {
		return g.start.AddPosition(g.anchor.Delta(pos)).StayInside(g.container)
	}
	// both positions are finite here
	r, _ := geometry.RectangleFromPositions(g.anchor, pos)
	return r.ClipTo(g.container)
}

// EndDrag finishes the gesture with the pointer at pos and returns the final
// rectangle in normalized coordinates. ok is false when the gesture was a
// click (see ClickArea) or was cancelled.
func (g *Gesture) EndDrag(pos geometry.Position) (area geometry.Rectangle, ok bool) {
	if !g.active {
		return geometry.Rectangle{}, false
	}
	if !pos.IsFinite() {
		g.Cancel()
		return geometry.Rectangle{}, false
	}
	g.active = false

	if g.isClick(pos) {
		g.setClick()
		return geometry.Rectangle{}, false
	}

	final := g.candidateAt(pos)
	if final.Area() <= 0 && !g.opts.Line {
		// dragged along an edge or outside the container
		return geometry.Rectangle{}, false
	}
	g.candidate = final
	g.current = clampInto(pos, g.container)
	g.segment = [2]geometry.Position{
		g.trafo.InvTransformPosition(g.anchor),
		g.trafo.InvTransformPosition(g.current),
	}
	return g.trafo.InvTransform(final), true
}

func (g *Gesture) isClick(pos geometry.Position) bool {
	if g.mode == Move {
		return !g.moved
	}
	if g.opts.Line {
		d := g.anchor.Delta(pos)
		return d.X*d.X+d.Y*d.Y <= g.opts.ClickThreshold
	}
	raw, _ := geometry.RectangleFromPositions(g.anchor, pos)
	return raw.Area() <= g.opts.ClickThreshold
}

func (g *Gesture) setClick() {
	center := g.trafo.InvTransformPosition(g.anchor)
	if g.mode == Move {
		screen := g.start.SetCenter(g.anchor).StayInside(g.container)
		g.click = g.trafo.InvTransform(screen)
	} else {
		g.click = geometry.Rectangle{Width: g.opts.ClickSize.Width, Height: g.opts.ClickSize.Height}.SetCenter(center)
	}
	g.hasClick = true
	g.segment = [2]geometry.Position{center, center}
}

// ClickArea returns the default rectangle synthesized when the last gesture
// ended as a click. For Span gestures it has the configured ClickSize and is
// centered on the anchor; for Move gestures it is the moved rectangle
// centered on the anchor.
func (g *Gesture) ClickArea() (geometry.Rectangle, bool) {
	return g.click, g.hasClick
}

// Candidate returns the last candidate screen rectangle.
func (g *Gesture) Candidate() geometry.Rectangle { return g.candidate }

// Endpoints returns the normalized anchor and end positions of the last
// completed gesture.
func (g *Gesture) Endpoints() (from, to geometry.Position) {
	return g.segment[0], g.segment[1]
}

// Cancel discards the gesture without producing a result.
func (g *Gesture) Cancel() {
	g.reset()
}

func (g *Gesture) reset() {
	g.active = false
	g.moved = false
	g.hasClick = false
	g.click = geometry.Rectangle{}
	g.segment = [2]geometry.Position{}
}

func clampInto(p geometry.Position, r geometry.Rectangle) geometry.Position {
	br := r.Max()
	if p.X < r.X {
		p.X = r.X
	} else if p.X > br.X {
		p.X = br.X
	}
	if p.Y < r.Y {
		p.Y = r.Y
	} else if p.Y > br.Y {
		p.Y = br.Y
	}
	return p
}
