package glview

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// blendStraightAlpha composites textures whose alpha is stored straight: the
// GPU multiplies RGB by source alpha at blend time. Premultiplied images use
// ebiten.BlendSourceOver instead.
var blendStraightAlpha = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorSourceAlpha,
	BlendFactorSourceAlpha:      ebiten.BlendFactorSourceAlpha,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

func (i *Image) blend() ebiten.Blend {
	if i.PremultipliedAlpha {
		return ebiten.BlendSourceOver
	}
	return blendStraightAlpha
}

// DrawOpts adjusts tint and opacity for DrawColored. The zero value draws
// unmodified.
type DrawOpts struct {
	// Color is a multiplicative tint. The zero value means white (none).
	Color Color
	// Alpha is an opacity multiplier. Zero means fully opaque.
	Alpha float64
}

// Draw renders the image at the given position, at its logical size.
func (i *Image) Draw(dst *ebiten.Image, at Vec2) {
	if i == nil {
		return
	}
	i.DrawInRect(dst, Rect{at.X, at.Y, i.LogicalSize.Width, i.LogicalSize.Height})
}

// DrawInRect renders the image scaled into r: one textured quad whose texture
// coordinates are the clip rectangle. Trim offsets scale with the rectangle
// and rotated frames are turned upright on the way out.
func (i *Image) DrawInRect(dst *ebiten.Image, r Rect) {
	i.DrawColored(dst, r, DrawOpts{})
}

// DrawColored renders the image into r with tint and opacity applied.
func (i *Image) DrawColored(dst *ebiten.Image, r Rect, opts DrawOpts) {
	if i == nil || dst == nil || i.texture == nil {
		return
	}
	geom, ok := i.drawGeoM(r)
	if !ok {
		return
	}

	alpha := opts.Alpha
	if alpha == 0 {
		alpha = 1
	}
	c := opts.Color
	if c == (Color{}) {
		c = ColorWhite
	}

	var op ebiten.DrawImageOptions
	op.GeoM = geom
	op.ColorScale.Scale(
		float32(c.R*c.A*alpha),
		float32(c.G*c.A*alpha),
		float32(c.B*c.A*alpha),
		float32(c.A*alpha),
	)
	op.Blend = i.blend()
	op.Filter = i.Filter
	dst.DrawImage(i.clipSubImage(), &op)
}

// drawGeoM builds the transform from clip-region texels to the destination
// rectangle. Reports false when the image has no drawable geometry.
func (i *Image) drawGeoM(r Rect) (ebiten.GeoM, bool) {
	var g ebiten.GeoM
	cw, ch := i.ClipRect.Width, i.ClipRect.Height
	lw, lh := i.LogicalSize.Width, i.LogicalSize.Height
	if cw <= 0 || ch <= 0 || lw <= 0 || lh <= 0 {
		return g, false
	}

	if i.Rotated {
		// The packer stored the region turned 90 degrees clockwise; turn
		// it back so the texels land upright.
		g.Rotate(-math.Pi / 2)
		g.Translate(0, ch)
	}

	sx := r.Width / lw
	sy := r.Height / lh
	g.Scale(i.ContentRect.Width*sx/cw, i.ContentRect.Height*sy/ch)
	g.Translate(r.X+i.ContentRect.X*sx, r.Y+i.ContentRect.Y*sy)
	return g, true
}

// clipSubImage returns the texture region the quad samples. Rotated frames
// occupy ClipRect.Height x ClipRect.Width texels.
func (i *Image) clipSubImage() *ebiten.Image {
	c := i.ClipRect
	var sub image.Rectangle
	if i.Rotated {
		sub = image.Rect(int(c.X), int(c.Y), int(c.X+c.Height), int(c.Y+c.Width))
	} else {
		sub = image.Rect(int(c.X), int(c.Y), int(c.X+c.Width), int(c.Y+c.Height))
	}
	return i.texture.SubImage(sub).(*ebiten.Image)
}
