package glview

import (
	"bytes"
	"context"
	"image/color"
	"log/slog"
	"strings"
	"testing"
)

// --- shared textures ---

func TestWhitePixel(t *testing.T) {
	b := WhitePixel.Bounds()
	if b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("WhitePixel = %dx%d, want 1x1", b.Dx(), b.Dy())
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder()
	if p != Placeholder() {
		t.Error("Placeholder() is not a singleton")
	}
	if p.TextureSize != (Size{1, 1}) {
		t.Errorf("TextureSize = %v, want {1 1}", p.TextureSize)
	}
	if p.IsView() {
		t.Error("placeholder should own its texture")
	}
}

// --- Color ---

func TestColorToRGBA(t *testing.T) {
	tests := []struct {
		name string
		in   Color
		want color.RGBA
	}{
		{"premultiplies", Color{1, 0, 0, 0.5}, color.RGBA{R: 127, A: 127}},
		{"white", Color{1, 1, 1, 1}, color.RGBA{255, 255, 255, 255}},
		{"clamps", Color{2, -1, 0.5, 1}, color.RGBA{R: 255, G: 0, B: 127, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.toRGBA(); got != tt.want {
				t.Errorf("%+v.toRGBA() = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

// --- logging ---

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Warn("texture gone", "path", "x.png")
	if !strings.Contains(buf.String(), "texture gone") {
		t.Errorf("log output = %q, want the warning in it", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("nil logger should silence everything")
	}
}
