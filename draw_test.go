package glview

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func checkApply(t *testing.T, g ebiten.GeoM, x, y, wantX, wantY float64) {
	t.Helper()
	gx, gy := g.Apply(x, y)
	if math.Abs(gx-wantX) > 1e-9 || math.Abs(gy-wantY) > 1e-9 {
		t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)", x, y, gx, gy, wantX, wantY)
	}
}

// --- drawGeoM ---

func TestDrawGeoM_PlainMapping(t *testing.T) {
	img := Synthesize(Size{10, 10}, 1, nil)
	g, ok := img.drawGeoM(Rect{5, 5, 20, 20})
	if !ok {
		t.Fatal("drawGeoM not ok")
	}
	checkApply(t, g, 0, 0, 5, 5)
	checkApply(t, g, 10, 10, 25, 25)
}

func TestDrawGeoM_TrimmedOffset(t *testing.T) {
	base := Synthesize(Size{128, 128}, 1, nil)
	img := base.WithClipRect(Rect{100, 50, 60, 58}).
		WithLogicalSize(Size{64, 64}).
		WithContentRect(Rect{2, 3, 60, 58})

	g, ok := img.drawGeoM(Rect{0, 0, 64, 64})
	if !ok {
		t.Fatal("drawGeoM not ok")
	}
	// The visible pixels park at the trim offset within the nominal size.
	checkApply(t, g, 0, 0, 2, 3)
	checkApply(t, g, 60, 58, 62, 61)
}

func TestDrawGeoM_Rotated(t *testing.T) {
	base := Synthesize(Size{64, 64}, 1, nil)
	img := base.WithClipRect(Rect{0, 0, 32, 48}).WithLogicalSize(Size{32, 48})
	img.Rotated = true

	// The stored region occupies 48x32 texels; drawing turns it upright.
	g, ok := img.drawGeoM(Rect{0, 0, 32, 48})
	if !ok {
		t.Fatal("drawGeoM not ok")
	}
	checkApply(t, g, 48, 0, 0, 0)
	checkApply(t, g, 0, 0, 0, 48)
	checkApply(t, g, 48, 32, 32, 0)
}

func TestDrawGeoM_DegenerateGeometry(t *testing.T) {
	img := Synthesize(Size{10, 10}, 1, nil)

	if _, ok := img.WithClipRect(Rect{}).drawGeoM(Rect{0, 0, 10, 10}); ok {
		t.Error("zero clip rect: drawGeoM ok, want degenerate")
	}
	if _, ok := img.WithLogicalSize(Size{}).drawGeoM(Rect{0, 0, 10, 10}); ok {
		t.Error("zero logical size: drawGeoM ok, want degenerate")
	}
}

// --- clipSubImage ---

func TestClipSubImage_RotatedRegion(t *testing.T) {
	base := Synthesize(Size{64, 64}, 1, nil)
	img := base.WithClipRect(Rect{8, 4, 16, 24})
	img.Rotated = true

	b := img.clipSubImage().Bounds()
	if b.Dx() != 24 || b.Dy() != 16 {
		t.Errorf("rotated sub-image = %dx%d, want 24x16", b.Dx(), b.Dy())
	}

	img.Rotated = false
	b = img.clipSubImage().Bounds()
	if b.Dx() != 16 || b.Dy() != 24 {
		t.Errorf("sub-image = %dx%d, want 16x24", b.Dx(), b.Dy())
	}
}

// --- blending ---

func TestImageBlend(t *testing.T) {
	img := Synthesize(Size{4, 4}, 1, nil)
	if img.blend() != ebiten.BlendSourceOver {
		t.Error("premultiplied image: blend != BlendSourceOver")
	}
	if img.WithPremultipliedAlpha(false).blend() != blendStraightAlpha {
		t.Error("straight-alpha image: blend != blendStraightAlpha")
	}
}

// --- draw safety ---

func TestDraw_NilAndEmptySafety(t *testing.T) {
	dst := ebiten.NewImage(32, 32)

	var nilImg *Image
	nilImg.Draw(dst, Vec2{1, 1})
	nilImg.DrawInRect(dst, Rect{0, 0, 8, 8})

	img := Synthesize(Size{4, 4}, 1, nil)
	img.Draw(nil, Vec2{})

	disposed := Synthesize(Size{4, 4}, 1, nil)
	disposed.Dispose()
	disposed.Draw(dst, Vec2{})

	img.DrawColored(dst, Rect{0, 0, 8, 8}, DrawOpts{Color: Color{1, 0, 0, 0.5}, Alpha: 0.5})
}
