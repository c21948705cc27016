// Package image loads page images and renders the parts the viewer shows.
package image

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"digilib-viewer/pkg/geometry"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// ErrEmptyArea is returned when rendering a zoom area with no pixels.
var ErrEmptyArea = errors.New("image: empty render area")

// Document is one page image.
type Document struct {
	Path  string      // Original file path
	Image image.Image // Decoded image data
	DPI   float64     // Resolution from the file metadata, 0 if unknown
}

// Load decodes the image at path.
func Load(path string) (*Document, error) {
	return LoadContext(context.Background(), path)
}

// LoadContext decodes the image at path unless ctx is done first.
func LoadContext(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &Document{Path: path, Image: img}
	if isTIFF(path) {
		if _, err := file.Seek(0, io.SeekStart); err == nil {
			if dpi, err := extractTIFFDPI(file); err == nil {
				doc.DPI = dpi
			}
		}
	}
	return doc, nil
}

// Size returns the image dimensions in pixels.
func (d *Document) Size() geometry.Size {
	if d == nil || d.Image == nil {
		return geometry.Size{}
	}
	b := d.Image.Bounds()
	return geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Thumbnail scales the whole page to fit into maxW x maxH, keeping the aspect
// ratio.
func (d *Document) Thumbnail(maxW, maxH int) (*image.RGBA, error) {
	size := d.Size()
	if size.Width == 0 || size.Height == 0 || maxW <= 0 || maxH <= 0 {
		return nil, ErrEmptyArea
	}
	scale := min(float64(maxW)/size.Width, float64(maxH)/size.Height)
	w := max(1, int(size.Width*scale+0.5))
	h := max(1, int(size.Height*scale+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), d.Image, d.Image.Bounds(), draw.Src, nil)
	return dst, nil
}

// RenderArea renders the normalized zoom area of the page into a w x h image.
// Parts of the area outside the page stay transparent.
func (d *Document) RenderArea(area geometry.Rectangle, w, h int) (*image.RGBA, error) {
	size := d.Size()
	if size.Width == 0 || size.Height == 0 || w <= 0 || h <= 0 {
		return nil, ErrEmptyArea
	}
	vt, err := geometry.NewViewportTransform(geometry.Rectangle{Width: float64(w), Height: float64(h)}, area)
	if err != nil {
		return nil, err
	}
	b := d.Image.Bounds()
	// source pixels -> normalized -> destination pixels
	toNorm := geometry.Scaling(1/size.Width, 1/size.Height).Compose(geometry.Translation(-float64(b.Min.X), -float64(b.Min.Y)))
	s2d := vt.Affine().Compose(toNorm)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Transform(dst, s2d.Aff3(), d.Image, b, draw.Src, nil)
	return dst, nil
}

func isTIFF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tiff" || ext == ".tif"
}

// extractTIFFDPI reads the resolution tags of the first TIFF directory.
func extractTIFFDPI(r io.ReadSeeker) (float64, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, err
	}

	var byteOrder binary.ByteOrder
	switch {
	case header[0] == 'I' && header[1] == 'I':
		byteOrder = binary.LittleEndian
	case header[0] == 'M' && header[1] == 'M':
		byteOrder = binary.BigEndian
	default:
		return 0, fmt.Errorf("not a valid TIFF file")
	}

	ifdOffset := byteOrder.Uint32(header[4:8])
	if _, err := r.Seek(int64(ifdOffset), io.SeekStart); err != nil {
		return 0, err
	}
	var numEntries uint16
	if err := binary.Read(r, byteOrder, &numEntries); err != nil {
		return 0, err
	}

	var xRes, yRes float64
	var resUnit uint16 = 2 // inches
	entry := make([]byte, 12)
	for i := uint16(0); i < numEntries; i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return 0, err
		}
		tag := byteOrder.Uint16(entry[0:2])
		fieldType := byteOrder.Uint16(entry[2:4])
		value := entry[8:12]

		switch tag {
		case 282: // XResolution
			if fieldType == 5 {
				xRes = readTIFFRational(r, int64(byteOrder.Uint32(value)), byteOrder)
			}
		case 283: // YResolution
			if fieldType == 5 {
				yRes = readTIFFRational(r, int64(byteOrder.Uint32(value)), byteOrder)
			}
		case 296: // ResolutionUnit
			if fieldType == 3 {
				resUnit = byteOrder.Uint16(value[0:2])
			}
		}
	}

	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}
	if dpi == 0 {
		return 0, fmt.Errorf("no resolution tags found")
	}
	if resUnit == 3 {
		dpi *= 2.54
	}
	return dpi, nil
}

// readTIFFRational reads a RATIONAL value at offset and restores the read
// position.
func readTIFFRational(r io.ReadSeeker, offset int64, byteOrder binary.ByteOrder) float64 {
	current, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	defer r.Seek(current, io.SeekStart)

	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return 0
	}
	var v [2]uint32
	if err := binary.Read(r, byteOrder, &v); err != nil || v[1] == 0 {
		return 0
	}
	return float64(v[0]) / float64(v[1])
}

// SupportedFormats returns the file extensions Load understands.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
