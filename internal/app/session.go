// Package app wires the viewer components together and publishes their
// events.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"digilib-viewer/internal/action"
	"digilib-viewer/internal/birdseye"
	"digilib-viewer/internal/config"
	"digilib-viewer/internal/display"
	"digilib-viewer/internal/image"
	"digilib-viewer/internal/imageload"
	"digilib-viewer/internal/logging"
	"digilib-viewer/internal/measure"
	"digilib-viewer/internal/params"
	"digilib-viewer/internal/regions"
	"digilib-viewer/internal/zoom"
	"digilib-viewer/pkg/geometry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnknownRegion is returned for region IDs not in the store.
var ErrUnknownRegion = errors.New("unknown region")

// EventType identifies session events.
type EventType int

const (
	EventZoomChanged    EventType = iota // geometry.Rectangle
	EventRegionsChanged                  // []*regions.Region
	EventRegionClicked                   // *regions.Region
	EventRegionCoords                    // string
	EventImageLoaded                     // *image.Document
	EventImageFailed                     // error
	EventMeasured                        // Measurement
	EventModeChanged                     // display.Mode
)

var eventNames = [...]string{
	"zoom-changed", "regions-changed", "region-clicked", "region-coords",
	"image-loaded", "image-failed", "measured", "mode-changed",
}

func (e EventType) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Measurement is the payload of EventMeasured.
type Measurement struct {
	Distance measure.Distance
	Reading  measure.Reading
}

// Session is one viewer: a page, its zoom state, regions, bird's-eye view
// and measuring tool.
type Session struct {
	mu sync.RWMutex

	Zoom    *zoom.Controller
	Pointer *zoom.Tracker
	Regions *regions.Store
	Definer *regions.Definer
	Meter   *measure.Meter
	Measure *measure.Tool
	Loads   *imageload.Tracker

	cfg           *config.Config
	actions       *action.Registry[*regions.Region]
	onClickRegion action.Handler[*regions.Region]
	onNewRegion   action.Handler[*regions.Region]

	zoomDrag   *zoom.Gesture
	rubberBand func(geometry.Rectangle)

	renderer *regions.Renderer
	bird     *birdseye.View
	animator display.Animator
	mode     display.Mode

	doc    *image.Document
	params params.Params

	listeners map[EventType][]EventListener
	logger    *zap.Logger
}

// NewSession creates a session from cfg. Region callbacks named in cfg are
// resolved here; an unknown name is an error.
func NewSession(cfg *config.Config, logger *zap.Logger) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger = logging.OrNop(logger)
	if err := cfg.Validate(); err != nil {
		logger.Warn("settings adjusted", zap.Error(err))
	}

	s := &Session{
		Zoom:      zoom.NewController(logger),
		Pointer:   zoom.NewTracker(logger),
		Regions:   regions.NewStore(logger),
		Loads:     imageload.NewTracker(logger),
		cfg:       cfg,
		mode:      cfg.DisplayMode(),
		params:    params.Default(),
		listeners: make(map[EventType][]EventListener),
		logger:    logger.Named("session"),
	}
	s.Regions.SetVisible(cfg.ShowRegions)

	s.actions = regions.Actions(s.Zoom, func(_ *regions.Region, coords string) {
		s.Emit(EventRegionCoords, coords)
	}, logger)
	var err error
	if s.onClickRegion, err = named(cfg.OnClickRegion).Resolve(s.actions); err != nil {
		return nil, fmt.Errorf("on_click_region: %w", err)
	}
	if s.onNewRegion, err = named(cfg.OnNewRegion).Resolve(s.actions); err != nil {
		return nil, fmt.Errorf("on_new_region: %w", err)
	}

	from, err := measure.LookupUnit(cfg.UnitFrom)
	if err != nil {
		return nil, err
	}
	to, err := measure.LookupUnit(cfg.UnitTo)
	if err != nil {
		return nil, err
	}
	s.Meter = measure.NewMeter(from, to)
	s.Measure = measure.NewTool(s.Zoom, s.Pointer, s.Meter, s.measured, logger)
	s.Measure.SetClickThreshold(cfg.ClickThreshold)

	s.Definer = regions.NewDefiner(s.Regions, s.Zoom, s.Pointer, cfg.RegionWidth, s.regionAdded, s.candidate, logger)
	s.Definer.SetClickThreshold(cfg.ClickThreshold)
	s.zoomDrag = zoom.NewGesture(s.Zoom, zoom.Options{ClickThreshold: cfg.ClickThreshold, OnMove: s.candidate})

	s.Zoom.OnZoomChanged(s.zoomChanged)
	return s, nil
}

func named(name string) action.Callback[*regions.Region] {
	if name == "" {
		return action.None[*regions.Region]()
	}
	return action.Named[*regions.Region](name)
}

// Config returns the settings the session was created with.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Actions returns the names of the region actions callbacks may use.
func (s *Session) Actions() []string {
	return s.actions.Names()
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	s.logger.Debug("event", zap.Stringer("type", event))
	for _, listener := range listeners {
		listener(data)
	}
}

// SetAnimator sets the animator used for embedded mode.
func (s *Session) SetAnimator(a display.Animator) {
	s.mu.Lock()
	s.animator = a
	s.mu.Unlock()
	s.applyPlacement()
}

// Mode returns the display mode.
func (s *Session) Mode() display.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches between embedded and fullscreen display.
func (s *Session) SetMode(m display.Mode) {
	s.mu.Lock()
	changed := s.mode != m
	s.mode = m
	s.mu.Unlock()
	if !changed {
		return
	}
	s.applyPlacement()
	s.Emit(EventModeChanged, m)
}

func (s *Session) placement() display.Placement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return display.ForMode(s.mode, s.cfg.Animation, s.animator)
}

func (s *Session) applyPlacement() {
	p := s.placement()
	s.mu.RLock()
	rd, bird := s.renderer, s.bird
	s.mu.RUnlock()
	if rd != nil {
		rd.SetPlacement(p)
	}
	if bird != nil {
		bird.SetPlacement(p)
	}
}

// AttachOverlays starts laying out region overlays. newElement creates the
// element shown for a region.
func (s *Session) AttachOverlays(newElement func(*regions.Region) display.Element) *regions.Renderer {
	rd := regions.NewRenderer(s.Regions, s.Zoom, newElement, s.placement())
	s.mu.Lock()
	s.renderer = rd
	s.mu.Unlock()
	rd.Render()
	return rd
}

// Renderer returns the overlay renderer, or nil before AttachOverlays.
func (s *Session) Renderer() *regions.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renderer
}

// Birdseye returns the bird's-eye view, or nil before AttachBirdseye.
func (s *Session) Birdseye() *birdseye.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bird
}

// AttachBirdseye creates the bird's-eye view for a thumbnail element and its
// zoom indicator.
func (s *Session) AttachBirdseye(thumb, indicator display.Element) *birdseye.View {
	v := birdseye.New(s.Zoom, s.Pointer, thumb, indicator, s.placement(), s.logger)
	s.mu.Lock()
	if s.bird != nil {
		s.bird.Close()
	}
	s.bird = v
	s.mu.Unlock()
	v.Update()
	return v
}

// SetImageRect records where the page is drawn on screen and lays out the
// overlays again.
func (s *Session) SetImageRect(r geometry.Rectangle) {
	s.Zoom.SetImageRect(r)
	s.refresh()
}

func (s *Session) refresh() {
	s.mu.RLock()
	rd, bird := s.renderer, s.bird
	s.mu.RUnlock()
	if rd != nil {
		rd.Render()
	}
	if bird != nil {
		bird.Update()
	}
}

func (s *Session) zoomChanged() {
	area := s.Zoom.ZoomArea()
	s.mu.Lock()
	s.params.Area = area
	rd := s.renderer
	s.mu.Unlock()
	if rd != nil {
		rd.Render()
	}
	s.Emit(EventZoomChanged, area)
}

// LoadImage loads the page at path in the background. Only the latest
// request is applied; results of superseded loads are dropped.
func (s *Session) LoadImage(ctx context.Context, path string) imageload.Ticket {
	s.logger.Info("loading image", zap.String("path", path))
	return imageload.Load(ctx, s.Loads, path, image.LoadContext, func(doc *image.Document, err error) {
		s.imageLoaded(path, doc, err)
	})
}

func (s *Session) imageLoaded(path string, doc *image.Document, err error) {
	if err != nil {
		s.logger.Warn("image load failed", zap.String("path", path), zap.Error(err))
		s.Emit(EventImageFailed, err)
		return
	}
	s.mu.Lock()
	s.doc = doc
	s.params.Fn = path
	s.mu.Unlock()
	s.Measure.SetCalibration(measure.Calibration{Size: doc.Size(), DPI: doc.DPI})
	s.logger.Info("image loaded", zap.String("path", path),
		zap.Float64("width", doc.Size().Width), zap.Float64("height", doc.Size().Height), zap.Float64("dpi", doc.DPI))
	s.Emit(EventImageLoaded, doc)
}

// Document returns the current page, or nil before the first load.
func (s *Session) Document() *image.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// OnRubberBand registers the function showing the rectangle spanned while
// zooming or drawing a region, in screen coordinates.
func (s *Session) OnRubberBand(fn func(geometry.Rectangle)) {
	s.mu.Lock()
	s.rubberBand = fn
	s.mu.Unlock()
}

func (s *Session) candidate(r geometry.Rectangle) {
	s.mu.RLock()
	fn := s.rubberBand
	s.mu.RUnlock()
	if fn != nil {
		fn(r)
	}
}

// BeginZoom starts spanning a new zoom area at anchor. A click leaves the
// zoom area unchanged.
func (s *Session) BeginZoom(anchor geometry.Position) error {
	return s.Pointer.Begin(zoom.Binding{
		Gesture: s.zoomDrag,
		OnDrag: func(area geometry.Rectangle) {
			if err := s.Zoom.SetZoomArea(area); err != nil {
				s.logger.Warn("zoom drag rejected", zap.Error(err))
			}
		},
	}, func() error {
		return s.zoomDrag.BeginDrag(anchor, s.Zoom.ImageRect())
	})
}

// PreviewPan moves the bird's-eye indicator as if the page had been dragged
// by delta screen pixels, without changing the zoom area.
func (s *Session) PreviewPan(delta geometry.Position) {
	s.mu.RLock()
	bird := s.bird
	s.mu.RUnlock()
	if bird == nil {
		return
	}
	bird.Follow(s.Zoom.ImageRect().AddPosition(delta.Neg()))
}

// Pan moves the zoom area so that the page follows a drag of delta screen
// pixels.
func (s *Session) Pan(delta geometry.Position) error {
	vt, ok := s.Zoom.Transform()
	if !ok {
		return zoom.ErrNoTransform
	}
	sx, sy := vt.Scale()
	return s.Zoom.MoveBy(geometry.Position{X: -delta.X / sx, Y: -delta.Y / sy})
}

// BeginRegion starts drawing a user region at anchor.
func (s *Session) BeginRegion(anchor geometry.Position) error {
	return s.Definer.Begin(anchor, s.Zoom.ImageRect())
}

// BeginMeasure starts measuring from anchor.
func (s *Session) BeginMeasure(anchor geometry.Position) error {
	return s.Measure.Begin(anchor, s.Zoom.ImageRect())
}

func (s *Session) regionAdded(r *regions.Region) {
	s.regionsChanged()
	s.onNewRegion(r)
}

func (s *Session) measured(d measure.Distance, r measure.Reading) {
	s.Emit(EventMeasured, Measurement{Distance: d, Reading: r})
}

func (s *Session) regionsChanged() {
	s.mu.Lock()
	s.params.Rg = s.Regions.RG()
	rd := s.renderer
	s.mu.Unlock()
	if rd != nil {
		rd.Render()
	}
	s.Emit(EventRegionsChanged, s.Regions.Regions())
}

// ClickRegion runs the region click action for the region with id.
func (s *Session) ClickRegion(id uuid.UUID) error {
	r, ok := s.Regions.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRegion, id)
	}
	s.onClickRegion(r)
	s.Emit(EventRegionClicked, r)
	return nil
}

// FindCoords adds a find region for coordinate text and moves the zoom area
// to show it.
func (s *Session) FindCoords(text string) (*regions.Region, error) {
	r, err := regions.FromCoords(s.Regions, s.Zoom, text, s.cfg.RegionWidth)
	if r != nil {
		s.regionsChanged()
	}
	return r, err
}

// ImportRegions adds the regions marked up in an HTML page.
func (s *Session) ImportRegions(r io.Reader) (added []*regions.Region, skipped []string, err error) {
	added, skipped, err = s.Regions.LoadHTML(r, s.cfg.RegionWidth)
	if err != nil {
		return nil, nil, err
	}
	for _, text := range skipped {
		s.logger.Debug("region markup skipped", zap.String("coords", text))
	}
	if len(added) > 0 {
		s.regionsChanged()
	}
	return added, skipped, nil
}

// RemoveLastRegion removes the newest user region.
func (s *Session) RemoveLastRegion() bool {
	if _, ok := s.Regions.RemoveLastUser(); !ok {
		return false
	}
	s.regionsChanged()
	return true
}

// RemoveAllRegions removes all user regions.
func (s *Session) RemoveAllRegions() int {
	n := s.Regions.RemoveAllUser()
	if n > 0 {
		s.regionsChanged()
	}
	return n
}

// ToggleRegions shows or hides the regions.
func (s *Session) ToggleRegions() bool {
	v := s.Regions.ToggleVisible()
	s.regionsChanged()
	return v
}

// Params returns the request parameters describing the current view.
func (s *Session) Params() params.Params {
	s.mu.RLock()
	p := s.params
	s.mu.RUnlock()
	p.Area = s.Zoom.ZoomArea()
	p.Rg = s.Regions.RG()
	p.Mo = append([]string(nil), p.Mo...)
	return p
}

// ApplyParams restores a view: page, zoom area, user regions and mode flags.
func (s *Session) ApplyParams(p params.Params) error {
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()

	removed := s.Regions.RemoveAllUser()
	if err := s.Regions.LoadRG(p.Rg); err != nil {
		s.regionsChanged()
		return err
	}
	if removed > 0 || p.Rg != "" {
		s.regionsChanged()
	}
	if p.HasMode(display.Fullscreen.String()) {
		s.SetMode(display.Fullscreen)
	} else if p.HasMode(display.Embedded.String()) {
		s.SetMode(display.Embedded)
	}
	if s.Zoom.IsFullArea(p.Area) {
		s.Zoom.ResetZoom()
		return nil
	}
	return s.Zoom.SetZoomArea(p.Area)
}

// Close releases the pointer and detaches the bird's-eye view.
func (s *Session) Close() {
	s.Pointer.Reset()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bird != nil {
		s.bird.Close()
		s.bird = nil
	}
}
