package windows

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// CustomTheme is the Data Visualizer look: a teal accent on neutral
// backgrounds, with roomier padding for the form controls.
type CustomTheme struct{}

var _ fyne.Theme = (*CustomTheme)(nil)

type palette map[fyne.ThemeColorName]color.Color

var lightPalette = palette{
	theme.ColorNameBackground:          color.NRGBA{R: 0xfa, G: 0xfa, B: 0xf7, A: 0xff},
	theme.ColorNameButton:              color.NRGBA{R: 0x00, G: 0x89, B: 0x7b, A: 0xff},
	theme.ColorNamePrimary:             color.NRGBA{R: 0x00, G: 0x89, B: 0x7b, A: 0xff},
	theme.ColorNameHover:               color.NRGBA{R: 0x4d, G: 0xb6, B: 0xac, A: 0xff},
	theme.ColorNameFocus:               color.NRGBA{R: 0x00, G: 0x69, B: 0x5c, A: 0xff},
	theme.ColorNameForeground:          color.NRGBA{R: 0x26, G: 0x32, B: 0x38, A: 0xff},
	theme.ColorNameInputBackground:     color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	theme.ColorNameSelection:           color.NRGBA{R: 0xb2, G: 0xdf, B: 0xdb, A: 0xff},
	theme.ColorNameWarning:             color.NRGBA{R: 0xe6, G: 0x51, B: 0x00, A: 0xff},
	theme.ColorNameForegroundOnPrimary: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
}

var darkPalette = palette{
	theme.ColorNameBackground:          color.NRGBA{R: 0x1b, G: 0x1f, B: 0x22, A: 0xff},
	theme.ColorNameButton:              color.NRGBA{R: 0x26, G: 0xa6, B: 0x9a, A: 0xff},
	theme.ColorNamePrimary:             color.NRGBA{R: 0x26, G: 0xa6, B: 0x9a, A: 0xff},
	theme.ColorNameHover:               color.NRGBA{R: 0x4d, G: 0xb6, B: 0xac, A: 0xff},
	theme.ColorNameFocus:               color.NRGBA{R: 0x80, G: 0xcb, B: 0xc4, A: 0xff},
	theme.ColorNameForeground:          color.NRGBA{R: 0xe0, G: 0xe4, B: 0xe6, A: 0xff},
	theme.ColorNameInputBackground:     color.NRGBA{R: 0x2a, G: 0x30, B: 0x33, A: 0xff},
	theme.ColorNameSelection:           color.NRGBA{R: 0x00, G: 0x69, B: 0x5c, A: 0xff},
	theme.ColorNameWarning:             color.NRGBA{R: 0xff, G: 0x98, B: 0x00, A: 0xff},
	theme.ColorNameForegroundOnPrimary: color.NRGBA{R: 0x10, G: 0x14, B: 0x16, A: 0xff},
}

func (m CustomTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	p := darkPalette
	if variant == theme.VariantLight {
		p = lightPalette
	}
	if c, ok := p[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (m CustomTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (m CustomTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (m CustomTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 6
	case theme.SizeNameInnerPadding:
		return 10
	case theme.SizeNameScrollBar:
		return 10
	case theme.SizeNameSeparatorThickness:
		return 1
	}
	return theme.DefaultTheme().Size(name)
}
