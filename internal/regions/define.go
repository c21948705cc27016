package regions

import (
	"errors"

	"digilib-viewer/internal/action"
	"digilib-viewer/internal/logging"
	"digilib-viewer/internal/zoom"
	"digilib-viewer/pkg/geometry"

	"go.uber.org/zap"
)

// Built-in region actions.
const (
	ActionZoomToRegion     = "zoomToRegion"
	ActionShowRegionCoords = "showRegionCoords"
)

// ErrHidden is returned when defining a region while regions are hidden.
var ErrHidden = errors.New("regions are hidden")

// Actions returns the built-in region actions. showCoords receives a region
// and its packed coordinates.
func Actions(ctrl *zoom.Controller, showCoords func(r *Region, coords string), logger *zap.Logger) *action.Registry[*Region] {
	logger = logging.OrNop(logger).Named("regions")
	reg := action.NewRegistry[*Region]()
	reg.Register(ActionZoomToRegion, func(r *Region) {
		if err := ctrl.SetZoomArea(r.Rect); err != nil {
			logger.Warn("zoom to region failed", zap.Stringer("id", r.ID), zap.Error(err))
		}
	})
	reg.Register(ActionShowRegionCoords, func(r *Region) {
		if showCoords != nil {
			showCoords(r, PackCoords(r.Rect, ","))
		}
	})
	return reg
}

// Definer lets the user draw a new region with a span gesture.
type Definer struct {
	store   *Store
	tracker *zoom.Tracker
	gesture *zoom.Gesture
	onNew   action.Handler[*Region]
	logger  *zap.Logger
}

// NewDefiner creates a definer working in ctrl's viewport transform. A click
// creates a square region of defaultWidth. onMove receives the screen
// rectangle while drawing.
func NewDefiner(store *Store, ctrl *zoom.Controller, tracker *zoom.Tracker, defaultWidth float64,
	onNew action.Handler[*Region], onMove func(geometry.Rectangle), logger *zap.Logger) *Definer {
	if onNew == nil {
		onNew = func(*Region) {}
	}
	return &Definer{
		store:   store,
		tracker: tracker,
		gesture: zoom.NewGesture(ctrl, zoom.Options{
			ClickSize: geometry.Size{Width: defaultWidth, Height: defaultWidth},
			OnMove:    onMove,
		}),
		onNew:  onNew,
		logger: logging.OrNop(logger).Named("regions"),
	}
}

// SetClickThreshold sets the area in square pixels below which a drag
// creates a default-sized region.
func (d *Definer) SetClickThreshold(px2 float64) {
	d.gesture.SetClickThreshold(px2)
}

// Begin starts drawing at anchor inside the scaler rectangle.
func (d *Definer) Begin(anchor geometry.Position, scaler geometry.Rectangle) error {
	if !d.store.Visible() {
		return ErrHidden
	}
	return d.tracker.Begin(zoom.Binding{
		Gesture: d.gesture,
		OnDrag:  d.finish,
		OnClick: d.finish,
		OnCancel: func() {
			d.logger.Debug("region drawing cancelled")
		},
	}, func() error {
		return d.gesture.BeginDrag(anchor, scaler)
	})
}

func (d *Definer) finish(area geometry.Rectangle) {
	r := d.store.AddUser(area)
	d.onNew(r)
}

// FromCoords adds a find region for coordinate text and, when zoomed in,
// moves the zoom area to show it.
func FromCoords(store *Store, ctrl *zoom.Controller, text string, defaultWidth float64) (*Region, error) {
	rect, err := ParseCoords(text, defaultWidth)
	if err != nil {
		return nil, err
	}
	r := store.Add(rect, KindFind, nil)
	if err := ctrl.CenterOn(rect); err != nil {
		return r, err
	}
	return r, nil
}
