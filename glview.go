package glview

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color is an RGBA color with components in [0, 1], not premultiplied.
// Premultiplication happens on the way to the GPU.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// WhitePixel is a shared 1x1 white texture, handy for solid-color quads.
var WhitePixel *ebiten.Image

// placeholderImage stands in for missing atlas frames: loud magenta, hard to
// miss on screen.
var placeholderImage *Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())

	tex := ebiten.NewImage(1, 1)
	tex.Fill(color.RGBA{R: 0xff, B: 0xff, A: 0xff})
	placeholderImage = newOwner(tex, 1, 1, 1, true)
}

// Placeholder returns the shared 1x1 magenta image that ImageOrPlaceholder
// substitutes for missing atlas frames.
func Placeholder() *Image {
	return placeholderImage
}

// globalDebug gates warnings for lookups that fall back to the placeholder.
var globalDebug bool

// SetDebugMode toggles warnings for atlas lookups that miss and render the
// magenta placeholder instead.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// toRGBA converts a Color to premultiplied color.RGBA for texture fills.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
