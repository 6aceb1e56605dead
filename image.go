package glview

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	_ "github.com/ftrvxmtrx/tga"
	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a GPU texture together with the geometry needed to draw it as a
// sprite: a logical size in resolution-independent units, the device scale
// relating logical units to texels, and the clip rectangle the texture is
// sampled through.
//
// An Image either owns its texture (DecodeImage, Synthesize) or is a view
// deriving from an owner (the With* methods, atlas frames). Views share the
// owner's texture and keep it reachable; disposing a view is a no-op, so a
// view can never tear down a texture other Images still draw from.
type Image struct {
	texture *ebiten.Image
	base    *Image // nil on owners; views point at their owner

	// LogicalSize is the drawn size in logical units.
	LogicalSize Size
	// Scale is the number of texels per logical unit.
	Scale float64
	// TextureSize is the physical size of the backing texture in texels.
	TextureSize Size
	// ClipRect is the sampled region of the texture, in texels. For rotated
	// frames it keeps the unrotated width and height; the stored region
	// then occupies Height x Width texels.
	ClipRect Rect
	// ContentRect places the visible (untrimmed) pixels within LogicalSize,
	// in logical units.
	ContentRect Rect
	// Rotated marks frames an atlas packer stored turned 90 degrees
	// clockwise. Drawing turns them back upright.
	Rotated bool
	// PremultipliedAlpha selects the blend function pair used at draw time.
	PremultipliedAlpha bool
	// Filter is the sampling filter drawing uses. The zero value is
	// [ebiten.FilterNearest]; loaders stamp their configured filter on
	// images they decode.
	Filter ebiten.Filter
}

// DecodeImage decodes image file data and uploads it to a new texture. PVR
// data goes through the PVR decoder; everything else is handed to
// image.Decode (PNG, JPEG, GIF, BMP, TIFF, WebP and TGA are registered).
// name only selects the decode path by extension. Pixels are stored exactly
// as the codec delivers them and flagged non-premultiplied; gzip- or
// zlib-wrapped data is inflated first.
func DecodeImage(data []byte, name string, scale float64) (*Image, error) {
	if scale <= 0 {
		scale = 1
	}
	data = maybeDecompress(data)

	if isPVRName(name) {
		info, pixels, err := DecodePVR(data)
		if err != nil {
			return nil, err
		}
		Logger().Debug("decoded PVR texture", "name", name,
			"format", info.Format.String(), "width", info.Width, "height", info.Height)
		return newOwner(uploadNRGBA(pixels), info.Width, info.Height, scale, false), nil
	}

	src, codec, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("glview: decode %s: %w", name, err)
	}
	b := src.Bounds()
	Logger().Debug("decoded bitmap", "name", name, "codec", codec,
		"width", b.Dx(), "height", b.Dy())
	return newOwner(uploadNRGBA(toNRGBA(src)), b.Dx(), b.Dy(), scale, false), nil
}

// Synthesize renders through the callback into a fresh texture and wraps it
// as an owning Image. The texture is sized to the smallest power of two per
// axis that holds logical times scale; ClipRect covers only the drawn area.
// The callback receives the target and the transform from logical units to
// texels, so it draws with the usual top-left origin regardless of scale. A
// nil callback yields a blank (transparent) image. The result is flagged
// premultiplied, which is what compositing into a texture produces.
func Synthesize(logical Size, scale float64, render func(dst *ebiten.Image, tf ebiten.GeoM)) *Image {
	if scale <= 0 {
		scale = 1
	}
	tw, th := textureSizeForSize(logical, scale)
	tex := ebiten.NewImage(tw, th)
	if render != nil {
		var tf ebiten.GeoM
		tf.Scale(scale, scale)
		render(tex, tf)
	}
	return &Image{
		texture:            tex,
		LogicalSize:        logical,
		Scale:              scale,
		TextureSize:        Size{float64(tw), float64(th)},
		ClipRect:           Rect{0, 0, logical.Width * scale, logical.Height * scale},
		ContentRect:        Rect{0, 0, logical.Width, logical.Height},
		PremultipliedAlpha: true,
	}
}

// textureSizeForSize returns the smallest power-of-two texture dimensions
// that hold size at the given scale.
func textureSizeForSize(size Size, scale float64) (int, int) {
	return nextPowerOfTwo(int(math.Ceil(size.Width * scale))),
		nextPowerOfTwo(int(math.Ceil(size.Height * scale)))
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// newOwner wraps a freshly uploaded texture in an owning Image.
func newOwner(tex *ebiten.Image, w, h int, scale float64, premultiplied bool) *Image {
	fw, fh := float64(w), float64(h)
	return &Image{
		texture:            tex,
		LogicalSize:        Size{fw / scale, fh / scale},
		Scale:              scale,
		TextureSize:        Size{fw, fh},
		ClipRect:           Rect{0, 0, fw, fh},
		ContentRect:        Rect{0, 0, fw / scale, fh / scale},
		PremultipliedAlpha: premultiplied,
	}
}

// uploadNRGBA creates a texture from straight-alpha pixels without converting
// them. Whether the bytes are composited as premultiplied is decided by the
// owning Image's flag at draw time, not at upload.
func uploadNRGBA(src *image.NRGBA) *ebiten.Image {
	b := src.Bounds()
	tex := ebiten.NewImage(b.Dx(), b.Dy())
	tex.WritePixels(src.Pix)
	return tex
}

// toNRGBA normalizes any decoded image to NRGBA with a zero origin.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// isPVRName reports whether name ends in .pvr, ignoring a trailing .gz.
func isPVRName(name string) bool {
	n := strings.TrimSuffix(strings.ToLower(name), ".gz")
	return strings.HasSuffix(n, ".pvr")
}

// WithClipRect returns a view with the sampling rectangle replaced, given in
// texels of the physical texture (absolute, not relative to the receiver's
// clip). The receiver is unchanged.
func (i *Image) WithClipRect(r Rect) *Image {
	v := *i
	v.ClipRect = r
	v.base = i.owner()
	return &v
}

// WithLogicalSize returns a view with the logical size replaced and the
// content rectangle reset to cover it.
func (i *Image) WithLogicalSize(s Size) *Image {
	v := *i
	v.LogicalSize = s
	v.ContentRect = Rect{0, 0, s.Width, s.Height}
	v.base = i.owner()
	return &v
}

// WithContentRect returns a view with the content rectangle replaced.
// Trimmed sprites use this to park their visible pixels inside the nominal
// size.
func (i *Image) WithContentRect(r Rect) *Image {
	v := *i
	v.ContentRect = r
	v.base = i.owner()
	return &v
}

// WithPremultipliedAlpha returns a view with the premultiplied-alpha flag
// replaced.
func (i *Image) WithPremultipliedAlpha(pm bool) *Image {
	v := *i
	v.PremultipliedAlpha = pm
	v.base = i.owner()
	return &v
}

// owner returns the Image that owns the texture: the receiver itself, or the
// root of a view chain.
func (i *Image) owner() *Image {
	if i.base != nil {
		return i.base
	}
	return i
}

// IsView reports whether the image borrows another Image's texture.
func (i *Image) IsView() bool {
	return i.base != nil
}

// Texture exposes the backing texture for direct use with Ebitengine.
func (i *Image) Texture() *ebiten.Image {
	return i.texture
}

// Dispose releases the texture of an owning Image. On views it does nothing:
// the texture belongs to the owner and may still be drawn through other
// views. Keep the owner around for as long as any view is in use.
func (i *Image) Dispose() {
	if i.base != nil {
		return
	}
	if i.texture != nil {
		i.texture.Deallocate()
		i.texture = nil
	}
}
