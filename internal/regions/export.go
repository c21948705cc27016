package regions

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Format is a region export format.
type Format int

const (
	FormatHTML Format = iota
	FormatSVG
	FormatCSV
	FormatDigilib
)

var formatNames = map[Format]string{
	FormatHTML:    "html",
	FormatSVG:     "svg",
	FormatCSV:     "csv",
	FormatDigilib: "digilib",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown region format %q", s)
}

// Export writes regions in format f, one line per region:
//
//	html     <area coords="x,y,w,h"/> inside a map element
//	svg      "x,y,w,h"
//	csv      n: x,y,w,h
//	digilib  x,y,w,h
func Export(w io.Writer, regions []*Region, f Format) error {
	bw := bufio.NewWriter(w)
	if f == FormatHTML {
		fmt.Fprintln(bw, `<map class="dl-keep dl-regioncontent">`)
	}
	for i, r := range regions {
		coords := PackCoords(r.Rect, ",")
		switch f {
		case FormatHTML:
			fmt.Fprintf(bw, `<area coords="%s"%s/>`+"\n", coords, areaAttrs(r))
		case FormatSVG:
			fmt.Fprintf(bw, "%q\n", coords)
		case FormatCSV:
			fmt.Fprintf(bw, "%d: %s\n", i+1, coords)
		case FormatDigilib:
			fmt.Fprintln(bw, coords)
		default:
			return fmt.Errorf("export regions: unknown format %v", f)
		}
	}
	if f == FormatHTML {
		fmt.Fprintln(bw, `</map>`)
	}
	return bw.Flush()
}

func areaAttrs(r *Region) string {
	var b strings.Builder
	if r.Href != "" {
		fmt.Fprintf(&b, ` href="%s"`, html.EscapeString(r.Href))
	}
	if r.Title != "" {
		fmt.Fprintf(&b, ` title="%s"`, html.EscapeString(r.Title))
	}
	return b.String()
}
