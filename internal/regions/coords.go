package regions

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"digilib-viewer/internal/params"
	"digilib-viewer/pkg/geometry"
)

// DefaultWidth is the normalized size of a region given as a single point.
const DefaultWidth = 0.005

// ErrBadCoords is returned for coordinate text that does not describe a region.
var ErrBadCoords = errors.New("bad region coordinates")

var numberRE = regexp.MustCompile(`[0-9.]+`)

// ParseCoords reads a region from free text such as "0.1,0.2,0.3,0.4". The
// first four numbers are x, y, width and height; anything between them is
// ignored. Text with only a position, or with a zero-area size, yields a
// square of width defaultWidth centered on that position.
func ParseCoords(text string, defaultWidth float64) (geometry.Rectangle, error) {
	nums := numberRE.FindAllString(text, 4)
	if len(nums) < 2 {
		return geometry.Rectangle{}, fmt.Errorf("%w: %q", ErrBadCoords, text)
	}
	var vals [4]float64
	for i, s := range nums {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return geometry.Rectangle{}, fmt.Errorf("%w: %q", ErrBadCoords, text)
		}
		vals[i] = v
	}
	r, err := geometry.NewRectangle(vals[0], vals[1], vals[2], vals[3])
	if err != nil {
		return geometry.Rectangle{}, err
	}
	if r.Area() == 0 {
		r = geometry.Rectangle{Width: defaultWidth, Height: defaultWidth}.SetCenter(r.Origin())
	}
	return r, nil
}

// PackCoords formats r as x, y, width and height cropped to four decimals
// and joined with sep.
func PackCoords(r geometry.Rectangle, sep string) string {
	return params.PackFloats(sep, r.X, r.Y, r.Width, r.Height)
}

// UnpackRG reads the rg request parameter: regions as "x/y/w/h" joined by
// commas.
func UnpackRG(rg string) ([]geometry.Rectangle, error) {
	rg = strings.TrimSpace(rg)
	if rg == "" {
		return nil, nil
	}
	var rects []geometry.Rectangle
	for _, coord := range strings.Split(rg, ",") {
		pos := strings.SplitN(coord, "/", 4)
		if len(pos) != 4 {
			return nil, fmt.Errorf("%w: rg entry %q", ErrBadCoords, coord)
		}
		var vals [4]float64
		for i, s := range pos {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: rg entry %q", ErrBadCoords, coord)
			}
			vals[i] = v
		}
		r, err := geometry.NewRectangle(vals[0], vals[1], vals[2], vals[3])
		if err != nil {
			return nil, err
		}
		rects = append(rects, r)
	}
	return rects, nil
}

// PackRG is the inverse of UnpackRG.
func PackRG(rects []geometry.Rectangle) string {
	parts := make([]string, len(rects))
	for i, r := range rects {
		parts[i] = PackCoords(r, "/")
	}
	return strings.Join(parts, ",")
}
