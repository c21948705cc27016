package image

import (
	"image"
	"image/color"
	"math"

	"digilib-viewer/pkg/geometry"
)

// BlendMode specifies how a highlight colour is mixed into the page.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	default:
		return "unknown"
	}
}

// Highlight tints the screen rectangles rects of dst with c. The alpha of c
// sets the strength of the tint.
func Highlight(dst *image.RGBA, rects []geometry.Rectangle, c color.NRGBA, mode BlendMode) {
	bounds := dst.Bounds()
	alpha := float64(c.A) / 255
	src := [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}

	for _, r := range rects {
		box := pixelRect(r).Intersect(bounds)
		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				i := dst.PixOffset(x, y)
				px := dst.Pix[i : i+3 : i+3]
				for ch := range px {
					d := float64(px[ch]) / 255
					v := mix(src[ch], d, mode)
					px[ch] = uint8(clamp01(v*alpha+d*(1-alpha))*255 + 0.5)
				}
			}
		}
	}
}

func mix(s, d float64, mode BlendMode) float64 {
	switch mode {
	case BlendMultiply:
		return s * d
	case BlendScreen:
		return 1 - (1-s)*(1-d)
	default:
		return s
	}
}

// pixelRect returns the pixels covered by r, rounding outwards.
func pixelRect(r geometry.Rectangle) image.Rectangle {
	br := r.Max()
	return image.Rect(int(math.Floor(r.X)), int(math.Floor(r.Y)), int(math.Ceil(br.X)), int(math.Ceil(br.Y)))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
