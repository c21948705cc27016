// Package birdseye shows the whole page as a thumbnail with an indicator for
// the current zoom area, and lets the user move the zoom area by dragging the
// indicator.
package birdseye

import (
	"errors"
	"sync"

	"digilib-viewer/internal/display"
	"digilib-viewer/internal/logging"
	"digilib-viewer/internal/params"
	"digilib-viewer/internal/zoom"
	"digilib-viewer/pkg/geometry"

	"go.uber.org/zap"
)

// ErrNotZoomed is returned when dragging starts while the whole page is shown.
var ErrNotZoomed = errors.New("birdseye: nothing to drag at full area")

// MoveFunc receives the indicator rectangle during a drag together with the
// offset at which the main image background has to be drawn to preview the
// new zoom area.
type MoveFunc func(indicator geometry.Rectangle, background geometry.Position)

// View keeps the zoom indicator of a thumbnail in sync with a Controller.
type View struct {
	mu        sync.Mutex
	ctrl      *zoom.Controller
	tracker   *zoom.Tracker
	thumb     display.Element
	indicator display.Element
	placement display.Placement
	gesture   *zoom.Gesture
	main      geometry.ViewportTransform
	onMove    MoveFunc
	unsub     func()
	logger    *zap.Logger
}

// New creates a view for the thumbnail element thumb and the indicator
// element drawn on top of it, and subscribes to zoom changes.
func New(ctrl *zoom.Controller, tracker *zoom.Tracker, thumb, indicator display.Element, placement display.Placement, logger *zap.Logger) *View {
	if placement == nil {
		placement = display.Immediate{}
	}
	v := &View{
		ctrl:      ctrl,
		tracker:   tracker,
		thumb:     thumb,
		indicator: indicator,
		placement: placement,
		logger:    logging.OrNop(logger).Named("birdseye"),
	}
	v.gesture = zoom.NewGesture(v, zoom.Options{OnMove: v.dragged})
	v.unsub = ctrl.OnZoomChanged(v.Update)
	return v
}

// Close stops following the controller.
func (v *View) Close() {
	if v.unsub != nil {
		v.unsub()
		v.unsub = nil
	}
}

// OnMove registers the drag preview callback.
func (v *View) OnMove(fn MoveFunc) {
	v.mu.Lock()
	v.onMove = fn
	v.mu.Unlock()
}

// SetPlacement changes how the indicator is moved.
func (v *View) SetPlacement(p display.Placement) {
	v.mu.Lock()
	v.placement = p
	v.mu.Unlock()
}

// Transform maps the full page onto the thumbnail.
func (v *View) Transform() (geometry.ViewportTransform, bool) {
	r, err := display.Measure(v.thumb)
	if err != nil {
		v.logger.Debug("thumbnail not measurable", zap.Error(err))
		return geometry.ViewportTransform{}, false
	}
	vt, err := geometry.NewViewportTransform(r, geometry.FullArea)
	if err != nil {
		v.logger.Debug("thumbnail not laid out", zap.Error(err))
		return geometry.ViewportTransform{}, false
	}
	return vt, true
}

// IndicatorRect returns the logical indicator rectangle for area, without
// border compensation.
func (v *View) IndicatorRect(area geometry.Rectangle) (geometry.Rectangle, bool) {
	vt, ok := v.Transform()
	if !ok {
		return geometry.Rectangle{}, false
	}
	return vt.Transform(area), true
}

// Update shows the indicator for the controller's zoom area, or hides it when
// the whole page is visible.
func (v *View) Update() {
	area := v.ctrl.ZoomArea()
	if v.ctrl.IsFullArea(area) {
		display.SetVisible(v.indicator, false)
		return
	}
	r, ok := v.IndicatorRect(area)
	if !ok {
		return
	}
	display.SetVisible(v.indicator, true)
	v.mu.Lock()
	p := v.placement
	v.mu.Unlock()
	p.Place(v.indicator, v.outset(r))
}

// Follow moves the indicator to the part of the page shown in screen, a
// rectangle in main image screen coordinates. Used while the main image is
// being panned.
func (v *View) Follow(screen geometry.Rectangle) bool {
	main, ok := v.ctrl.Transform()
	if !ok {
		return false
	}
	bird, ok := v.Transform()
	if !ok {
		return false
	}
	r := geometry.Chain(main, bird).TransformRect(screen)
	v.indicator.SetBounds(v.outset(r))
	return true
}

// Begin starts dragging the indicator from anchor. A click without movement
// centres the zoom area on the clicked point.
func (v *View) Begin(anchor geometry.Position) error {
	if v.ctrl.IsFullArea(v.ctrl.ZoomArea()) {
		return ErrNotZoomed
	}
	main, ok := v.ctrl.Transform()
	if !ok {
		return zoom.ErrNoTransform
	}
	thumb, err := display.Measure(v.thumb)
	if err != nil {
		return err
	}
	start, ok := v.IndicatorRect(v.ctrl.ZoomArea())
	if !ok {
		return zoom.ErrNoTransform
	}
	v.mu.Lock()
	v.main = main
	v.mu.Unlock()
	return v.tracker.Begin(zoom.Binding{
		Gesture: v.gesture,
		OnDrag:  v.apply,
		OnClick: v.apply,
	}, func() error {
		return v.gesture.BeginMove(anchor, thumb, start)
	})
}

func (v *View) dragged(r geometry.Rectangle) {
	v.indicator.SetBounds(v.outset(r))

	v.mu.Lock()
	main, fn := v.main, v.onMove
	v.mu.Unlock()
	if fn == nil {
		return
	}
	bird, ok := v.Transform()
	if !ok {
		return
	}
	img := geometry.Chain(bird, main).TransformRect(r)
	fn(r, img.Origin().Neg().Add(main.Dest().Origin()))
}

func (v *View) apply(area geometry.Rectangle) {
	if err := v.ctrl.SetZoomArea(area); err != nil {
		v.logger.Warn("dragged zoom area rejected", zap.Error(err))
	}
}

// ImageParams returns the request parameters for the thumbnail of the page
// in p, sized to the thumbnail element when it has been laid out.
func (v *View) ImageParams(p params.Params) string {
	if r, err := display.Measure(v.thumb); err == nil && r.Width > 0 && r.Height > 0 {
		p.Dw, p.Dh = int(r.Width), int(r.Height)
	}
	return p.Encode(params.KeyFn, params.KeyPn, params.KeyDw, params.KeyDh)
}

func (v *View) outset(r geometry.Rectangle) geometry.Rectangle {
	bw := display.BorderOf(v.indicator)
	return r.AddPosition(geometry.Position{X: -bw, Y: -bw})
}
