// Package measure computes distances between points on the image and
// converts them between length units.
package measure

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"digilib-viewer/internal/logging"
	"digilib-viewer/internal/zoom"
	"digilib-viewer/pkg/geometry"

	"go.uber.org/zap"
)

const mmPerInch = 25.4

var (
	// ErrNoImageSize is returned when measuring without known image dimensions.
	ErrNoImageSize = errors.New("measure: image size unknown")
	// ErrNoDistance is returned when calibrating against a zero distance.
	ErrNoDistance = errors.New("measure: nothing measured")
)

// Calibration describes the image being measured.
type Calibration struct {
	// Size in pixels.
	Size geometry.Size
	// DPI from the image metadata, 0 when unknown.
	DPI float64
}

// Distance between two normalized points.
type Distance struct {
	// Normalized is the plain distance in normalized coordinates.
	Normalized float64
	// Pixels is the distance in image pixels.
	Pixels float64
	// Rectified is the distance in units of the image width, with the
	// vertical component corrected for the aspect ratio.
	Rectified float64
	// MM is the physical distance; valid when HasMM.
	MM    float64
	HasMM bool
}

// Measure returns the distance between the normalized points p0 and p1.
func Measure(p0, p1 geometry.Position, cal Calibration) (Distance, error) {
	if !p0.IsFinite() || !p1.IsFinite() {
		return Distance{}, &geometry.Error{Op: "measure", Values: []float64{p0.X, p0.Y, p1.X, p1.Y}, Err: geometry.ErrInvalidInput}
	}
	if !(cal.Size.Width > 0) || !(cal.Size.Height > 0) {
		return Distance{}, ErrNoImageSize
	}
	d := p0.Delta(p1)
	aspect := cal.Size.Height / cal.Size.Width
	dist := Distance{
		Normalized: math.Hypot(d.X, d.Y),
		Pixels:     math.Hypot(d.X*cal.Size.Width, d.Y*cal.Size.Height),
		Rectified:  math.Hypot(d.X, d.Y*aspect),
	}
	if cal.DPI > 0 {
		dist.MM = dist.Pixels / cal.DPI * mmPerInch
		dist.HasMM = true
	}
	return dist, nil
}

// Round rounds to four decimal places.
func Round(v float64) float64 {
	return math.Round(v*10000+0.00001) / 10000
}

// Unit is a length unit.
type Unit struct {
	Name    string
	Section string
	// Factor is the length of one unit in meters.
	Factor float64
	// Subunits is the number of smaller units in this one, 0 if none.
	Subunits int
}

// Units lists the built-in length units.
var Units = []Unit{
	{Name: "m", Section: "metric", Factor: 1},
	{Name: "mm", Section: "metric", Factor: 0.001},
	{Name: "cm", Section: "metric", Factor: 0.01},
	{Name: "dm", Section: "metric", Factor: 0.1},
	{Name: "km", Section: "metric", Factor: 1000},
	{Name: "Seemeile", Section: "nautical", Factor: 1854.965},
	{Name: "fathom", Section: "nautical", Factor: 1.828782},
	{Name: "foot", Section: "England", Factor: 0.304797, Subunits: 12},
	{Name: "inch", Section: "England", Factor: 0.02539975},
	{Name: "yard", Section: "England", Factor: 0.914391, Subunits: 3},
	{Name: "mile", Section: "England", Factor: 1609.32816, Subunits: 8},
	{Name: "palmo d'architetto (Rom)", Section: "Italien", Factor: 0.223425, Subunits: 12},
	{Name: "braccio (Florenz)", Section: "Italien", Factor: 0.5836},
	{Name: "braccio (Mailand)", Section: "Italien", Factor: 0.5949},
	{Name: "canna d'architetto (Rom)", Section: "Italien", Factor: 2.23425},
	{Name: "miglio (Rom)", Section: "Italien", Factor: 1489.50},
}

// LookupUnit finds a unit by name, ignoring case.
func LookupUnit(name string) (Unit, error) {
	for _, u := range Units {
		if strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("measure: unknown unit %q", name)
}

// Convert converts a length from one unit to another. The result is 0 when
// to has no factor.
func Convert(value float64, from, to Unit) float64 {
	if to.Factor == 0 {
		return 0
	}
	return value * from.Factor / to.Factor
}

// Reading is the state of a Meter after an update.
type Reading struct {
	Distance  float64
	Factor    float64
	Value     float64
	From, To  Unit
	Converted float64
}

// Meter turns measured distances into lengths. The factor maps a rectified
// distance to a length in the From unit; it is calibrated by entering the
// known length of a measured distance.
type Meter struct {
	mu       sync.Mutex
	distance float64
	factor   float64
	value    float64
	from, to Unit
}

// NewMeter creates a meter with factor 1.
func NewMeter(from, to Unit) *Meter {
	return &Meter{factor: 1, from: from, to: to}
}

// UpdateLength records a new measured distance.
func (m *Meter) UpdateLength(dist float64) Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distance = dist
	m.value = dist * m.factor
	return m.reading()
}

// UpdateFactor calibrates the meter so that the last distance has length
// value in the From unit.
func (m *Meter) UpdateFactor(value float64) (Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.distance == 0 {
		return m.reading(), ErrNoDistance
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return m.reading(), &geometry.Error{Op: "calibrate", Values: []float64{value}, Err: geometry.ErrInvalidInput}
	}
	m.factor = value / m.distance
	m.value = value
	return m.reading(), nil
}

// SetUnits changes the conversion units.
func (m *Meter) SetUnits(from, to Unit) Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.from, m.to = from, to
	return m.reading()
}

// Reading returns the current state.
func (m *Meter) Reading() Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reading()
}

func (m *Meter) reading() Reading {
	r := Reading{
		Distance: m.distance,
		Factor:   m.factor,
		Value:    Round(m.value),
		From:     m.from,
		To:       m.to,
	}
	r.Converted = Round(Convert(m.value, m.from, m.to))
	return r
}

// Tool measures with a span gesture drawn on the main image.
type Tool struct {
	mu         sync.Mutex
	cal        Calibration
	meter      *Meter
	tracker    *zoom.Tracker
	gesture    *zoom.Gesture
	onMeasured func(Distance, Reading)
	logger     *zap.Logger
}

// NewTool creates a measuring tool working in ctrl's viewport transform.
func NewTool(ctrl *zoom.Controller, tracker *zoom.Tracker, meter *Meter, onMeasured func(Distance, Reading), logger *zap.Logger) *Tool {
	return &Tool{
		meter:      meter,
		tracker:    tracker,
		gesture:    zoom.NewGesture(ctrl, zoom.Options{Line: true}),
		onMeasured: onMeasured,
		logger:     logging.OrNop(logger).Named("measure"),
	}
}

// SetCalibration sets the image size and resolution used for new measurements.
func (t *Tool) SetCalibration(cal Calibration) {
	t.mu.Lock()
	t.cal = cal
	t.mu.Unlock()
}

// SetClickThreshold sets the squared pointer travel in pixels below which a
// gesture measures nothing.
func (t *Tool) SetClickThreshold(px2 float64) {
	t.gesture.SetClickThreshold(px2)
}

// Begin starts measuring from anchor inside container.
func (t *Tool) Begin(anchor geometry.Position, container geometry.Rectangle) error {
	return t.tracker.Begin(zoom.Binding{Gesture: t.gesture, OnDrag: t.finish}, func() error {
		return t.gesture.BeginDrag(anchor, container)
	})
}

func (t *Tool) finish(geometry.Rectangle) {
	from, to := t.gesture.Endpoints()
	t.mu.Lock()
	cal := t.cal
	t.mu.Unlock()

	dist, err := Measure(from, to, cal)
	if err != nil {
		t.logger.Warn("measurement failed", zap.Error(err))
		return
	}
	r := t.meter.UpdateLength(dist.Rectified)
	t.logger.Debug("measured", zap.Float64("rectified", dist.Rectified), zap.Float64("pixels", dist.Pixels))
	if t.onMeasured != nil {
		t.onMeasured(dist, r)
	}
}
