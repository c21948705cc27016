package regions

import (
	"sync"

	"digilib-viewer/internal/display"
	"digilib-viewer/internal/zoom"
	"digilib-viewer/pkg/geometry"

	"github.com/google/uuid"
)

// Placed is the screen placement of one region.
type Placed struct {
	Region  *Region
	Visible bool
	Screen  geometry.Rectangle
}

// Layout places regions for the zoom area of vt. A region is visible when
// regions are shown, it overlaps the zoom area, and it does not cover the
// whole zoom area; its screen rectangle is the part inside the zoom area.
func Layout(regions []*Region, show bool, vt geometry.ViewportTransform) []Placed {
	area := vt.Area()
	out := make([]Placed, len(regions))
	for i, r := range regions {
		out[i].Region = r
		if !show || !area.OverlapsRect(r.Rect) || r.Rect.ContainsRect(area) {
			continue
		}
		out[i].Visible = true
		out[i].Screen = vt.Transform(r.Rect.ClipTo(area))
	}
	return out
}

// Renderer keeps one overlay element per region in sync with the zoom area.
// It is safe for concurrent use; the element callbacks run with the renderer
// locked and must not call back into it.
type Renderer struct {
	store      *Store
	ctrl       *zoom.Controller
	newElement func(*Region) display.Element

	mu        sync.Mutex
	placement display.Placement
	elements  map[uuid.UUID]display.Element
	onRemove  func(display.Element)
}

// NewRenderer creates a renderer. newElement creates the overlay element for
// a region the first time it is laid out.
func NewRenderer(store *Store, ctrl *zoom.Controller, newElement func(*Region) display.Element, placement display.Placement) *Renderer {
	if placement == nil {
		placement = display.Immediate{}
	}
	return &Renderer{
		store:      store,
		ctrl:       ctrl,
		newElement: newElement,
		placement:  placement,
		elements:   make(map[uuid.UUID]display.Element),
	}
}

// SetPlacement changes how elements are moved, e.g. after a fullscreen toggle.
func (rd *Renderer) SetPlacement(p display.Placement) {
	rd.mu.Lock()
	rd.placement = p
	rd.mu.Unlock()
}

// OnRemove registers fn to be called with the element of a region that left
// the store.
func (rd *Renderer) OnRemove(fn func(display.Element)) {
	rd.mu.Lock()
	rd.onRemove = fn
	rd.mu.Unlock()
}

// Render lays out all regions. It reports false, leaving elements untouched,
// when no viewport transform is available.
func (rd *Renderer) Render() bool {
	vt, ok := rd.ctrl.Transform()
	if !ok {
		return false
	}
	rd.mu.Lock()
	defer rd.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	for _, p := range Layout(rd.store.Regions(), rd.store.Visible(), vt) {
		seen[p.Region.ID] = true
		el, ok := rd.elements[p.Region.ID]
		if !ok {
			el = rd.newElement(p.Region)
			rd.elements[p.Region.ID] = el
		}
		display.SetVisible(el, p.Visible)
		if p.Visible {
			rd.placement.Place(el, p.Screen)
		}
	}
	for id, el := range rd.elements {
		if !seen[id] {
			display.SetVisible(el, false)
			delete(rd.elements, id)
			if rd.onRemove != nil {
				rd.onRemove(el)
			}
		}
	}
	return true
}

// Element returns the overlay element of a region.
func (rd *Renderer) Element(id uuid.UUID) (display.Element, bool) {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	el, ok := rd.elements[id]
	return el, ok
}
