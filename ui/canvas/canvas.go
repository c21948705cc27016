// Package canvas provides the fyne widgets showing a page: the zoomable main
// view with region overlays, and the bird's-eye thumbnail.
package canvas

import (
	goimage "image"

	"digilib-viewer/internal/app"
	"digilib-viewer/internal/display"
	"digilib-viewer/internal/logging"
	"digilib-viewer/internal/regions"
	"digilib-viewer/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const zoomStep = 1.25

// Tool selects what a drag on the page does.
type Tool int

const (
	ToolZoom    Tool = iota // span a new zoom area
	ToolPan                 // move the zoomed page
	ToolRegion              // draw a user region
	ToolMeasure             // measure a distance
)

func (t Tool) String() string {
	switch t {
	case ToolZoom:
		return "Zoom"
	case ToolPan:
		return "Pan"
	case ToolRegion:
		return "Region"
	case ToolMeasure:
		return "Measure"
	default:
		return "Unknown"
	}
}

// Viewer shows the zoom area of the session's page.
type Viewer struct {
	widget.BaseWidget

	session  *app.Session
	raster   *fynecanvas.Raster
	band     *fynecanvas.Rectangle
	line     *fynecanvas.Line
	overlays *fyne.Container

	tool      Tool
	pressed   bool
	dragStart fyne.Position
	dragLast  fyne.Position

	logger *zap.Logger
}

var (
	_ fyne.Draggable    = (*Viewer)(nil)
	_ fyne.Tappable     = (*Viewer)(nil)
	_ fyne.Scrollable   = (*Viewer)(nil)
	_ desktop.Mouseable = (*Viewer)(nil)
)

// NewViewer creates the main view for s.
func NewViewer(s *app.Session, logger *zap.Logger) *Viewer {
	v := &Viewer{
		session:  s,
		overlays: container.NewWithoutLayout(),
		logger:   logging.OrNop(logger).Named("viewer"),
	}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScaleSmooth

	v.band = fynecanvas.NewRectangle(app.RegionColor)
	v.band.StrokeColor = app.IndicatorColor
	v.band.StrokeWidth = 1
	v.band.Hide()
	v.line = fynecanvas.NewLine(app.MeasureColor)
	v.line.StrokeWidth = 2
	v.line.Hide()

	s.AttachOverlays(v.newOverlay).OnRemove(func(el display.Element) {
		if e, ok := el.(*Element); ok {
			v.overlays.Remove(e.Object)
		}
	})
	s.OnRubberBand(v.showBand)
	s.On(app.EventZoomChanged, func(interface{}) { v.Refresh() })
	s.On(app.EventImageLoaded, func(interface{}) { v.Refresh() })

	v.ExtendBaseWidget(v)
	return v
}

// SetTool sets the current interaction tool.
func (v *Viewer) SetTool(t Tool) {
	v.session.Pointer.Reset()
	v.tool = t
}

// Tool returns the current interaction tool.
func (v *Viewer) Tool() Tool {
	return v.tool
}

func (v *Viewer) newOverlay(r *regions.Region) display.Element {
	rect := fynecanvas.NewRectangle(app.RegionColor)
	if r.Kind == regions.KindFind {
		rect.FillColor = app.FindColor
	}
	rect.StrokeColor = app.IndicatorColor
	rect.StrokeWidth = 1
	v.overlays.Add(rect)
	return NewElement(rect)
}

func (v *Viewer) showBand(r geometry.Rectangle) {
	v.band.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	v.band.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
	v.band.Show()
	v.band.Refresh()
}

// imageRect returns where the zoom area is drawn inside a widget of size.
func (v *Viewer) imageRect(size fyne.Size) geometry.Rectangle {
	bound := geometry.Rectangle{Width: float64(size.Width), Height: float64(size.Height)}
	doc := v.session.Document()
	if doc == nil {
		return bound
	}
	area := v.session.Zoom.ZoomArea()
	px := doc.Size()
	return geometry.Rectangle{Width: area.Width * px.Width, Height: area.Height * px.Height}.Fit(bound)
}

func (v *Viewer) draw(w, h int) goimage.Image {
	doc := v.session.Document()
	if doc == nil {
		return goimage.NewRGBA(goimage.Rect(0, 0, 1, 1))
	}
	img, err := doc.RenderArea(v.session.Zoom.ZoomArea(), w, h)
	if err != nil {
		v.logger.Debug("render skipped", zap.Error(err))
		return goimage.NewRGBA(goimage.Rect(0, 0, 1, 1))
	}
	return img
}

func position(p fyne.Position) geometry.Position {
	return geometry.Position{X: float64(p.X), Y: float64(p.Y)}
}

// MouseDown starts the gesture of the current tool.
func (v *Viewer) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	v.pressed = true
	v.dragStart, v.dragLast = ev.Position, ev.Position
	pos := position(ev.Position)
	v.line.Hide()

	var err error
	switch v.tool {
	case ToolZoom:
		err = v.session.BeginZoom(pos)
	case ToolRegion:
		err = v.session.BeginRegion(pos)
	case ToolMeasure:
		err = v.session.BeginMeasure(pos)
	}
	if err != nil {
		v.logger.Debug("gesture not started", zap.Stringer("tool", v.tool), zap.Error(err))
	}
}

// Dragged forwards pointer movement to the active gesture.
func (v *Viewer) Dragged(ev *fyne.DragEvent) {
	v.dragLast = ev.Position
	if v.tool == ToolPan && v.pressed {
		delta := position(v.dragStart).Delta(position(ev.Position))
		v.session.PreviewPan(delta)
		r := v.session.Zoom.ImageRect().AddPosition(delta)
		v.raster.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
		return
	}
	if v.tool == ToolMeasure && v.pressed {
		v.line.Position1, v.line.Position2 = v.dragStart, ev.Position
		v.line.Show()
		v.line.Refresh()
	}
	v.session.Pointer.Move(position(ev.Position))
}

// MouseUp finishes the active gesture.
func (v *Viewer) MouseUp(ev *desktop.MouseEvent) {
	v.finish(ev.Position)
}

// DragEnd finishes the active gesture when the button is released outside
// the widget.
func (v *Viewer) DragEnd() {
	v.finish(v.dragLast)
}

func (v *Viewer) finish(at fyne.Position) {
	if !v.pressed {
		return
	}
	v.pressed = false
	v.band.Hide()
	if v.tool == ToolPan {
		delta := position(v.dragStart).Delta(position(at))
		if err := v.session.Pan(delta); err != nil {
			v.logger.Debug("pan rejected", zap.Error(err))
		}
		v.Refresh()
		return
	}
	v.session.Pointer.Up(position(at))
}

// Tapped runs the click action of the region under the pointer.
func (v *Viewer) Tapped(ev *fyne.PointEvent) {
	if v.tool != ToolZoom && v.tool != ToolPan {
		return
	}
	pos := position(ev.Position)
	rs := v.session.Regions.Regions()
	// topmost first
	for i := len(rs) - 1; i >= 0; i-- {
		el, ok := v.overlayOf(rs[i])
		if !ok || !el.Visible() || !el.Bounds().ContainsPosition(pos) {
			continue
		}
		if err := v.session.ClickRegion(rs[i].ID); err != nil {
			v.logger.Warn("region click failed", zap.Error(err))
		}
		return
	}
}

func (v *Viewer) overlayOf(r *regions.Region) (*Element, bool) {
	rd := v.session.Renderer()
	if rd == nil {
		return nil, false
	}
	el, ok := rd.Element(r.ID)
	if !ok {
		return nil, false
	}
	e, ok := el.(*Element)
	return e, ok
}

// Scrolled zooms in or out around the centre of the zoom area.
func (v *Viewer) Scrolled(ev *fyne.ScrollEvent) {
	factor := zoomStep
	if ev.Scrolled.DY < 0 {
		factor = 1 / zoomStep
	} else if ev.Scrolled.DY == 0 {
		return
	}
	if err := v.session.Zoom.ZoomBy(factor); err != nil {
		v.logger.Debug("zoom rejected", zap.Error(err))
	}
}

// ZoomIn zooms in one step.
func (v *Viewer) ZoomIn() {
	_ = v.session.Zoom.ZoomBy(zoomStep)
}

// ZoomOut zooms out one step.
func (v *Viewer) ZoomOut() {
	_ = v.session.Zoom.ZoomBy(1 / zoomStep)
}

// CreateRenderer implements fyne.Widget.
func (v *Viewer) CreateRenderer() fyne.WidgetRenderer {
	bg := fynecanvas.NewRectangle(app.BackgroundColor)
	return &viewerRenderer{viewer: v, bg: bg}
}

type viewerRenderer struct {
	viewer *Viewer
	bg     *fynecanvas.Rectangle
}

func (r *viewerRenderer) Layout(size fyne.Size) {
	v := r.viewer
	r.bg.Resize(size)
	rect := v.imageRect(size)
	v.raster.Move(fyne.NewPos(float32(rect.X), float32(rect.Y)))
	v.raster.Resize(fyne.NewSize(float32(rect.Width), float32(rect.Height)))
	v.overlays.Resize(size)
	v.session.SetImageRect(rect)
}

func (r *viewerRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *viewerRenderer) Refresh() {
	r.Layout(r.viewer.Size())
	r.viewer.raster.Refresh()
	r.viewer.overlays.Refresh()
}

func (r *viewerRenderer) Objects() []fyne.CanvasObject {
	v := r.viewer
	return []fyne.CanvasObject{r.bg, v.raster, v.overlays, v.band, v.line}
}

func (r *viewerRenderer) Destroy() {}
