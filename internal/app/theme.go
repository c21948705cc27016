package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Overlay colours shared by the viewer widgets.
var (
	RegionColor    = color.NRGBA{R: 0xE6, G: 0x7E, B: 0x22, A: 0x50}
	IndicatorColor = color.NRGBA{R: 0xC0, G: 0x39, B: 0x2B, A: 0xFF}
	MeasureColor   = color.NRGBA{R: 0x29, G: 0x80, B: 0xB9, A: 0xFF}
	FindColor      = color.NRGBA{R: 0x29, G: 0x80, B: 0xB9, A: 0x50}

	BackgroundColor = color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xFF}
)

// ViewerTheme darkens the background around the page and uses the region
// colour for selections.
type ViewerTheme struct{}

var _ fyne.Theme = (*ViewerTheme)(nil)

func (t *ViewerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return BackgroundColor
	case theme.ColorNamePrimary:
		return IndicatorColor
	case theme.ColorNameSelection:
		return RegionColor
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *ViewerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *ViewerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *ViewerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
