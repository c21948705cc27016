// Package zoom owns the zoom area of a viewer session: the normalized part of
// the image currently displayed. It rebuilds the viewport transform on demand
// and drives the drag gestures that change the area.
package zoom

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"digilib-viewer/internal/logging"
	"digilib-viewer/pkg/geometry"

	"go.uber.org/zap"
)

// ErrInvalidArea is returned when a requested zoom area clips to nothing.
var ErrInvalidArea = errors.New("invalid zoom area")

// AreaError reports a rejected zoom area.
type AreaError struct {
	Requested geometry.Rectangle
	Clipped   geometry.Rectangle
	Err       error
}

func (e *AreaError) Error() string {
	return fmt.Sprintf("zoom: %+v clips to %+v: %v", e.Requested, e.Clipped, e.Err)
}

// Unwrap returns the underlying error.
func (e *AreaError) Unwrap() error {
	return e.Err
}

// Listener is notified after the zoom area changed. It carries no payload;
// listeners re-query ZoomArea.
type Listener func()

type subscription struct {
	id int
	fn Listener
}

// Controller holds the zoom area and the displayed image rectangle.
type Controller struct {
	mu        sync.RWMutex
	area      geometry.Rectangle
	imageRect geometry.Rectangle
	listeners []subscription
	nextID    int
	logger    *zap.Logger
}

// NewController creates a controller showing the full image.
func NewController(logger *zap.Logger) *Controller {
	return &Controller{
		area:   geometry.FullArea,
		logger: logging.OrNop(logger).Named("zoom"),
	}
}

// ZoomArea returns the current normalized zoom area.
func (c *Controller) ZoomArea() geometry.Rectangle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.area
}

// SetZoomArea clips area to the full image and makes it the current zoom
// area. An area that clips to nothing is rejected with ErrInvalidArea; the
// previous area is kept and no listener is called. Listeners run
// synchronously, in subscription order, before SetZoomArea returns.
func (c *Controller) SetZoomArea(area geometry.Rectangle) error {
	if !area.IsFinite() {
		return &AreaError{Requested: area, Err: geometry.ErrInvalidInput}
	}
	clipped := area.ClipTo(geometry.FullArea)
	if clipped.Area() <= 0 {
		c.logger.Debug("rejected zoom area", zap.Any("requested", area))
		return &AreaError{Requested: area, Clipped: clipped, Err: ErrInvalidArea}
	}

	c.mu.Lock()
	c.area = clipped
	listeners := make([]subscription, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	c.logger.Debug("zoom area changed", zap.Any("area", clipped))
	for _, s := range listeners {
		s.fn()
	}
	return nil
}

// ResetZoom shows the full image.
func (c *Controller) ResetZoom() {
	// FullArea never clips to nothing.
	_ = c.SetZoomArea(geometry.FullArea)
}

// IsFullArea reports whether area covers the whole image.
func (c *Controller) IsFullArea(area geometry.Rectangle) bool {
	return geometry.IsFullArea(area)
}

// OnZoomChanged registers a listener and returns a function removing it.
func (c *Controller) OnZoomChanged(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, subscription{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.listeners {
			if s.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// SetImageRect records the screen rectangle of the displayed image, after a
// layout change, resize or fullscreen toggle.
func (c *Controller) SetImageRect(r geometry.Rectangle) {
	c.mu.Lock()
	c.imageRect = r
	c.mu.Unlock()
}

// ImageRect returns the last recorded screen rectangle of the displayed image.
func (c *Controller) ImageRect() geometry.Rectangle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.imageRect
}

// Transform builds the viewport transform for the current image rectangle and
// zoom area. When the transform cannot be built the failure is logged and ok
// is false; callers skip their visual update for this cycle.
func (c *Controller) Transform() (vt geometry.ViewportTransform, ok bool) {
	c.mu.RLock()
	dest, area := c.imageRect, c.area
	c.mu.RUnlock()

	vt, err := geometry.NewViewportTransform(dest, area)
	if err != nil {
		c.logger.Debug("no viewport transform", zap.Error(err))
		return geometry.ViewportTransform{}, false
	}
	return vt, true
}

// TransformRect maps a normalized rectangle to the screen.
func (c *Controller) TransformRect(r geometry.Rectangle) (geometry.Rectangle, bool) {
	vt, ok := c.Transform()
	if !ok {
		return geometry.Rectangle{}, false
	}
	return vt.Transform(r), true
}

// InvTransformRect maps a screen rectangle to normalized coordinates.
func (c *Controller) InvTransformRect(r geometry.Rectangle) (geometry.Rectangle, bool) {
	vt, ok := c.Transform()
	if !ok {
		return geometry.Rectangle{}, false
	}
	return vt.InvTransform(r), true
}

// InvTransformPosition maps a screen position to normalized coordinates.
func (c *Controller) InvTransformPosition(p geometry.Position) (geometry.Position, bool) {
	vt, ok := c.Transform()
	if !ok {
		return geometry.Position{}, false
	}
	return vt.InvTransformPosition(p), true
}

// ZoomBy scales the zoom area by 1/factor around its center and keeps it
// inside the image. A factor above 1 zooms in.
func (c *Controller) ZoomBy(factor float64) error {
	if !(factor > 0) || math.IsInf(factor, 1) {
		return &AreaError{Err: geometry.ErrInvalidInput}
	}
	area := c.ZoomArea()
	center := area.Center()
	area.Width /= factor
	area.Height /= factor
	area = area.SetCenter(center).StayInside(geometry.FullArea)
	return c.SetZoomArea(area)
}

// MoveBy pans the zoom area by a normalized delta, keeping it inside the image.
func (c *Controller) MoveBy(delta geometry.Position) error {
	if !delta.IsFinite() {
		return &AreaError{Err: geometry.ErrInvalidInput}
	}
	area := c.ZoomArea().AddPosition(delta).StayInside(geometry.FullArea)
	return c.SetZoomArea(area)
}

// CenterOn moves a zoomed-in area so that it is centered on target. When
// target does not fit into the zoom area the full image is shown instead.
// Nothing changes while the full image is displayed.
func (c *Controller) CenterOn(target geometry.Rectangle) error {
	area := c.ZoomArea()
	if geometry.IsFullArea(area) {
		return nil
	}
	area = area.SetCenter(target.Center()).StayInside(geometry.FullArea)
	if !area.ContainsRect(target) {
		area = geometry.FullArea
	}
	return c.SetZoomArea(area)
}
