// Package regions manages rectangular regions marked on the image: regions
// defined by the user or passed in the rg parameter, regions read from page
// HTML, and regions found from typed coordinates.
package regions

import (
	"fmt"
	"regexp"
	"sync"

	"digilib-viewer/internal/logging"
	"digilib-viewer/pkg/geometry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind tells where a region came from.
type Kind int

const (
	// KindUser regions are user-defined or come from the rg parameter.
	KindUser Kind = iota
	// KindHTML regions are read from page markup.
	KindHTML
	// KindFind regions mark coordinates the user looked up.
	KindFind
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindHTML:
		return "html"
	case KindFind:
		return "find"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Region is a normalized rectangle with display attributes.
type Region struct {
	ID   uuid.UUID
	Rect geometry.Rectangle
	Kind Kind
	// Number is the 1-based position among user regions, 0 for others.
	Number     int
	Href       string
	Title      string
	Attributes map[string]string
}

// Store holds the regions of one viewer.
type Store struct {
	mu      sync.RWMutex
	regions []*Region
	visible bool
	logger  *zap.Logger
}

// NewStore creates an empty store with regions shown.
func NewStore(logger *zap.Logger) *Store {
	return &Store{visible: true, logger: logging.OrNop(logger).Named("regions")}
}

// Add stores a region. The href and title attributes are lifted into the
// region's fields.
func (s *Store) Add(rect geometry.Rectangle, kind Kind, attrs map[string]string) *Region {
	r := &Region{
		ID:         uuid.New(),
		Rect:       rect,
		Kind:       kind,
		Attributes: map[string]string{},
	}
	for k, v := range attrs {
		switch k {
		case "href":
			r.Href = v
		case "title":
			r.Title = v
			r.Attributes[k] = v
		default:
			r.Attributes[k] = v
		}
	}

	s.mu.Lock()
	s.regions = append(s.regions, r)
	s.renumber()
	s.mu.Unlock()

	s.logger.Debug("region added", zap.Stringer("id", r.ID), zap.Stringer("kind", kind), zap.Any("rect", rect))
	return r
}

// AddUser stores a user region.
func (s *Store) AddUser(rect geometry.Rectangle) *Region {
	return s.Add(rect, KindUser, nil)
}

// RemoveLastUser removes the most recently added user region.
func (s *Store) RemoveLastUser() (*Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.regions) - 1; i >= 0; i-- {
		if r := s.regions[i]; r.Kind == KindUser {
			s.regions = append(s.regions[:i], s.regions[i+1:]...)
			s.renumber()
			return r, true
		}
	}
	return nil, false
}

// RemoveAllUser removes every user region and returns how many were removed.
func (s *Store) RemoveAllUser() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.regions[:0]
	n := 0
	for _, r := range s.regions {
		if r.Kind == KindUser {
			n++
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(s.regions); i++ {
		s.regions[i] = nil
	}
	s.regions = kept
	return n
}

func (s *Store) renumber() {
	n := 0
	for _, r := range s.regions {
		if r.Kind == KindUser {
			n++
			r.Number = n
		}
	}
}

// Regions returns the stored regions of the given kinds, or all regions when
// no kind is given, in insertion order.
func (s *Store) Regions(kinds ...Kind) []*Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Region, 0, len(s.regions))
	for _, r := range s.regions {
		if len(kinds) == 0 || hasKind(kinds, r.Kind) {
			out = append(out, r)
		}
	}
	return out
}

func hasKind(kinds []Kind, k Kind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

// Get returns the region with id.
func (s *Store) Get(id uuid.UUID) (*Region, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.regions {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Visible reports whether regions are shown.
func (s *Store) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// SetVisible shows or hides all regions.
func (s *Store) SetVisible(v bool) {
	s.mu.Lock()
	s.visible = v
	s.mu.Unlock()
}

// ToggleVisible flips region visibility and returns the new state.
func (s *Store) ToggleVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = !s.visible
	return s.visible
}

// LoadRG adds the user regions packed in an rg parameter.
func (s *Store) LoadRG(rg string) error {
	rects, err := UnpackRG(rg)
	if err != nil {
		return err
	}
	for _, r := range rects {
		s.AddUser(r)
	}
	return nil
}

// RG packs the user regions into an rg parameter value.
func (s *Store) RG() string {
	users := s.Regions(KindUser)
	rects := make([]geometry.Rectangle, len(users))
	for i, r := range users {
		rects[i] = r.Rect
	}
	return PackRG(rects)
}

// Match returns the HTML regions whose title matches the regular expression.
func (s *Store) Match(pattern string) ([]*Region, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("match regions: %w", err)
	}
	var out []*Region
	for _, r := range s.Regions(KindHTML) {
		if re.MatchString(r.Title) {
			out = append(out, r)
		}
	}
	return out, nil
}
