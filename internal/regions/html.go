package regions

import (
	"fmt"
	"io"
	"strings"

	"digilib-viewer/pkg/geometry"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContentClass marks the map element holding region markup.
const ContentClass = "dl-regioncontent"

// copiedAttributes are taken over from area and a elements.
var copiedAttributes = []string{"id", "href", "title", "target", "style", "class"}

// Markup is a region read from page HTML.
type Markup struct {
	Rect       geometry.Rectangle
	Attributes map[string]string
	// Text is the element content, or the alt text of an area element.
	Text string
}

// ParseHTML reads regions from area and a elements with a coords attribute
// inside map elements of class dl-regioncontent. Elements with bad
// coordinates are reported in skipped and otherwise ignored.
func ParseHTML(r io.Reader, defaultWidth float64) (regions []Markup, skipped []string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse region html: %w", err)
	}

	var walk func(n *html.Node, inMap bool)
	walk = func(n *html.Node, inMap bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Map:
				inMap = inMap || hasClass(n, ContentClass)
			case atom.Area, atom.A:
				if inMap {
					if m, ok := markup(n, defaultWidth); ok {
						regions = append(regions, m)
					} else {
						skipped = append(skipped, attr(n, "coords"))
					}
					// a elements carry content, not nested regions
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inMap)
		}
	}
	walk(doc, false)
	return regions, skipped, nil
}

func markup(n *html.Node, defaultWidth float64) (Markup, bool) {
	rect, err := ParseCoords(attr(n, "coords"), defaultWidth)
	if err != nil {
		return Markup{}, false
	}
	m := Markup{Rect: rect, Attributes: map[string]string{}}
	for _, name := range copiedAttributes {
		if v := attr(n, name); v != "" {
			m.Attributes[name] = v
		}
	}
	m.Text = strings.TrimSpace(textOf(n))
	if m.Text == "" {
		m.Text = attr(n, "alt")
	}
	if _, ok := m.Attributes["title"]; !ok && m.Text != "" {
		m.Attributes["title"] = m.Text
	}
	return m, true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// LoadHTML adds the regions of page markup to the store.
func (s *Store) LoadHTML(r io.Reader, defaultWidth float64) (added []*Region, skipped []string, err error) {
	ms, skipped, err := ParseHTML(r, defaultWidth)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range ms {
		added = append(added, s.Add(m.Rect, KindHTML, m.Attributes))
	}
	return added, skipped, nil
}
