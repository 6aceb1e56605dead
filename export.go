package glview

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/HugoSmits86/nativewebp"
	"github.com/hajimehoshi/ebiten/v2"
)

// SavePNG renders the image at its logical size times scale and writes the
// result as a PNG file. Like all texture readbacks it must run inside the
// game loop (Update or Draw); Ebitengine panics on ReadPixels outside it.
func (i *Image) SavePNG(path string) error {
	img, err := i.readback()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("glview: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("glview: encode %s: %w", path, err)
	}
	return f.Close()
}

// SaveWebP is SavePNG with lossless WebP output.
func (i *Image) SaveWebP(path string) error {
	img, err := i.readback()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("glview: create %s: %w", path, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("glview: encode %s: %w", path, err)
	}
	return f.Close()
}

// readback draws the image into a scratch texture and pulls the pixels off
// the GPU. The scratch pass flattens clip, trim and rotation, so the result
// is exactly what Draw would have produced.
func (i *Image) readback() (*image.NRGBA, error) {
	if i == nil || i.texture == nil {
		return nil, fmt.Errorf("glview: image has no texture")
	}
	w := int(math.Round(i.LogicalSize.Width * i.Scale))
	h := int(math.Round(i.LogicalSize.Height * i.Scale))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("glview: image has no drawable size")
	}
	canvas := ebiten.NewImage(w, h)
	i.DrawInRect(canvas, Rect{Width: float64(w), Height: float64(h)})
	pixels := make([]byte, 4*w*h)
	canvas.ReadPixels(pixels)
	canvas.Deallocate()
	return unpremultiply(pixels, w, h), nil
}

// unpremultiply converts ReadPixels output (premultiplied RGBA) into the
// straight-alpha form the image encoders expect.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for o := 0; o+3 < len(pixels); o += 4 {
		a := pixels[o+3]
		if a > 0 && a < 255 {
			for c := 0; c < 3; c++ {
				pixels[o+c] = uint8(min(int(pixels[o+c])*255/int(a), 255))
			}
		}
	}
	copy(img.Pix, pixels)
	return img
}
