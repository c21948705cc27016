package canvas

import (
	goimage "image"
	"image/color"

	"digilib-viewer/internal/app"
	"digilib-viewer/internal/birdseye"
	"digilib-viewer/internal/logging"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// Birdseye shows the whole page with a frame around the zoom area. Dragging
// the frame moves the zoom area.
type Birdseye struct {
	widget.BaseWidget

	session   *app.Session
	thumb     *fynecanvas.Image
	indicator *fynecanvas.Rectangle
	view      *birdseye.View

	thumbEl *Element
	pressed bool
	last    fyne.Position

	width, height int
	logger        *zap.Logger
}

var (
	_ fyne.Draggable    = (*Birdseye)(nil)
	_ desktop.Mouseable = (*Birdseye)(nil)
)

// NewBirdseye creates a bird's-eye widget of at most width x height pixels.
func NewBirdseye(s *app.Session, width, height int, logger *zap.Logger) *Birdseye {
	b := &Birdseye{
		session: s,
		thumb:   fynecanvas.NewImageFromImage(goimage.NewRGBA(goimage.Rect(0, 0, 1, 1))),
		width:   width,
		height:  height,
		logger:  logging.OrNop(logger).Named("birdseye-widget"),
	}
	b.thumb.FillMode = fynecanvas.ImageFillStretch
	b.indicator = fynecanvas.NewRectangle(color.Transparent)
	b.indicator.StrokeColor = app.IndicatorColor
	b.indicator.StrokeWidth = 2
	b.indicator.Hide()

	b.thumbEl = NewElement(b.thumb)
	b.view = s.AttachBirdseye(b.thumbEl, NewElement(b.indicator))
	s.On(app.EventImageLoaded, func(interface{}) { b.loadThumbnail() })

	b.ExtendBaseWidget(b)
	return b
}

// View returns the geometry behind the widget.
func (b *Birdseye) View() *birdseye.View {
	return b.view
}

func (b *Birdseye) loadThumbnail() {
	doc := b.session.Document()
	if doc == nil {
		return
	}
	img, err := doc.Thumbnail(b.width, b.height)
	if err != nil {
		b.logger.Warn("thumbnail failed", zap.Error(err))
		return
	}
	b.thumb.Image = img
	b.thumb.Resize(fyne.NewSize(float32(img.Bounds().Dx()), float32(img.Bounds().Dy())))
	b.thumb.Refresh()
	b.view.Update()
	b.Refresh()
}

// MouseDown starts dragging the zoom indicator.
func (b *Birdseye) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	b.last = ev.Position
	if err := b.view.Begin(position(ev.Position)); err != nil {
		b.logger.Debug("indicator drag not started", zap.Error(err))
		return
	}
	b.pressed = true
}

// Dragged moves the zoom indicator.
func (b *Birdseye) Dragged(ev *fyne.DragEvent) {
	b.last = ev.Position
	if b.pressed {
		b.session.Pointer.Move(position(ev.Position))
	}
}

// MouseUp applies the new zoom area.
func (b *Birdseye) MouseUp(ev *desktop.MouseEvent) {
	b.finish(ev.Position)
}

// DragEnd applies the new zoom area when released outside the widget.
func (b *Birdseye) DragEnd() {
	b.finish(b.last)
}

func (b *Birdseye) finish(at fyne.Position) {
	if !b.pressed {
		return
	}
	b.pressed = false
	b.session.Pointer.Up(position(at))
}

// CreateRenderer implements fyne.Widget.
func (b *Birdseye) CreateRenderer() fyne.WidgetRenderer {
	return &birdseyeRenderer{bird: b}
}

type birdseyeRenderer struct {
	bird *Birdseye
}

func (r *birdseyeRenderer) Layout(fyne.Size) {
	r.bird.view.Update()
}

func (r *birdseyeRenderer) MinSize() fyne.Size {
	return r.bird.thumb.Size()
}

func (r *birdseyeRenderer) Refresh() {
	r.bird.indicator.Refresh()
	r.bird.thumb.Refresh()
}

func (r *birdseyeRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bird.thumb, r.bird.indicator}
}

func (r *birdseyeRenderer) Destroy() {}
