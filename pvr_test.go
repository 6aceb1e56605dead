package glview

import (
	"encoding/binary"
	"errors"
	"image"
	"testing"
)

// makePVRHeader builds a minimal valid legacy PVR header.
func makePVRHeader(w, h uint32, format PixelFormat, alphaMask uint32) []byte {
	hdr := make([]byte, pvrHeaderSize)
	binary.BigEndian.PutUint32(hdr[0:], pvrHeaderSize)
	binary.BigEndian.PutUint32(hdr[4:], h)
	binary.BigEndian.PutUint32(hdr[8:], w)
	binary.BigEndian.PutUint32(hdr[16:], uint32(format))
	binary.BigEndian.PutUint32(hdr[40:], alphaMask)
	binary.BigEndian.PutUint32(hdr[44:], pvrMagic)
	binary.BigEndian.PutUint32(hdr[48:], 1)
	return hdr
}

func pix(img *image.NRGBA, x, y int) [4]uint8 {
	o := img.PixOffset(x, y)
	return [4]uint8{img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3]}
}

// --- DecodePVRHeader ---

func TestDecodePVRHeader_Formats(t *testing.T) {
	tests := []struct {
		name       string
		format     PixelFormat
		alphaMask  uint32
		compressed bool
		bpp        int
		hasAlpha   bool
	}{
		{"RGB565", FormatRGB565, 0, false, 16, false},
		{"RGBA5551", FormatRGBA5551, 0, false, 16, true},
		{"RGBA4444", FormatRGBA4444, 0, false, 16, true},
		{"RGBA8888", FormatRGBA8888, 0, false, 32, true},
		{"PVRTC4 alpha", FormatPVRTC4, 0xffff, true, 4, true},
		{"PVRTC4 opaque", FormatPVRTC4, 0, true, 4, false},
		{"PVRTC2 alpha", FormatPVRTC2, 0xffff, true, 2, true},
		{"PVRTC2 opaque", FormatPVRTC2, 0, true, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := DecodePVRHeader(makePVRHeader(64, 32, tt.format, tt.alphaMask))
			if err != nil {
				t.Fatalf("DecodePVRHeader: %v", err)
			}
			if info.Width != 64 || info.Height != 32 {
				t.Errorf("size = %dx%d, want 64x32", info.Width, info.Height)
			}
			if info.Format != tt.format {
				t.Errorf("Format = %v, want %v", info.Format, tt.format)
			}
			if info.Compressed != tt.compressed {
				t.Errorf("Compressed = %v, want %v", info.Compressed, tt.compressed)
			}
			if info.BitsPerPixel != tt.bpp {
				t.Errorf("BitsPerPixel = %d, want %d", info.BitsPerPixel, tt.bpp)
			}
			if info.HasAlpha != tt.hasAlpha {
				t.Errorf("HasAlpha = %v, want %v", info.HasAlpha, tt.hasAlpha)
			}
		})
	}
}

func TestDecodePVRHeader_TooShort(t *testing.T) {
	for _, n := range []int{0, 1, 51} {
		if _, err := DecodePVRHeader(make([]byte, n)); !errors.Is(err, ErrTooShort) {
			t.Errorf("len %d: err = %v, want ErrTooShort", n, err)
		}
	}
}

func TestDecodePVRHeader_BadMagic(t *testing.T) {
	hdr := makePVRHeader(8, 8, FormatRGBA8888, 0)
	hdr[44] ^= 0xff
	if _, err := DecodePVRHeader(hdr); !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}

func TestDecodePVRHeader_UnsupportedFormats(t *testing.T) {
	for _, f := range []PixelFormat{FormatI8, FormatAI88, 0x00, 0x42} {
		hdr := makePVRHeader(8, 8, f, 0)
		if _, err := DecodePVRHeader(hdr); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("format 0x%02x: err = %v, want ErrUnsupportedFormat", uint8(f), err)
		}
	}
}

func TestDecodePVRHeader_DegenerateDimensions(t *testing.T) {
	tests := []struct {
		name   string
		w, h   uint32
		format PixelFormat
	}{
		{"0x0 RGBA8888", 0, 0, FormatRGBA8888},
		{"0x8 RGBA8888", 0, 8, FormatRGBA8888},
		{"8x0 RGBA8888", 8, 0, FormatRGBA8888},
		{"0x0 PVRTC4", 0, 0, FormatPVRTC4},
		{"0x8 PVRTC4", 0, 8, FormatPVRTC4},
		{"8x0 PVRTC4", 8, 0, FormatPVRTC4},
		{"oversized RGBA8888", 1 << 20, 8, FormatRGBA8888},
		{"oversized PVRTC4", 8, 1 << 20, FormatPVRTC4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := makePVRHeader(tt.w, tt.h, tt.format, 0xff)
			if _, err := DecodePVRHeader(data); !errors.Is(err, ErrBadDimensions) {
				t.Errorf("DecodePVRHeader err = %v, want ErrBadDimensions", err)
			}
			if _, _, err := DecodePVR(data); err == nil {
				t.Error("DecodePVR err = nil, want error")
			}
		})
	}
}

func TestDecodePVRHeader_PayloadLayout(t *testing.T) {
	tests := []struct {
		name   string
		w, h   uint32
		format PixelFormat
		size   int
	}{
		{"565 8x8", 8, 8, FormatRGB565, 128},
		{"8888 4x4", 4, 4, FormatRGBA8888, 64},
		{"PVRTC4 8x8", 8, 8, FormatPVRTC4, 32},
		{"PVRTC4 4x4 clamps", 4, 4, FormatPVRTC4, 32},
		{"PVRTC4 16x16", 16, 16, FormatPVRTC4, 128},
		{"PVRTC2 16x8", 16, 8, FormatPVRTC2, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := DecodePVRHeader(makePVRHeader(tt.w, tt.h, tt.format, 0))
			if err != nil {
				t.Fatalf("DecodePVRHeader: %v", err)
			}
			if info.PayloadSize != tt.size {
				t.Errorf("PayloadSize = %d, want %d", info.PayloadSize, tt.size)
			}
			if info.PayloadOffset != pvrHeaderSize {
				t.Errorf("PayloadOffset = %d, want %d", info.PayloadOffset, pvrHeaderSize)
			}
		})
	}
}

// --- DecodePVR pixel expansion ---

func TestDecodePVR_RGBA8888(t *testing.T) {
	data := makePVRHeader(2, 2, FormatRGBA8888, 0)
	data = append(data,
		255, 0, 0, 255,
		0, 255, 0, 128,
		0, 0, 255, 255,
		255, 255, 255, 0,
	)
	_, img, err := DecodePVR(data)
	if err != nil {
		t.Fatalf("DecodePVR: %v", err)
	}
	if got := pix(img, 1, 0); got != [4]uint8{0, 255, 0, 128} {
		t.Errorf("pixel (1,0) = %v, want {0 255 0 128}", got)
	}
	if got := pix(img, 1, 1); got != [4]uint8{255, 255, 255, 0} {
		t.Errorf("pixel (1,1) = %v, want {255 255 255 0}", got)
	}
}

func TestDecodePVR_RGB565(t *testing.T) {
	data := makePVRHeader(2, 1, FormatRGB565, 0)
	texels := make([]byte, 4)
	binary.LittleEndian.PutUint16(texels[0:], 0xf800) // pure red
	binary.LittleEndian.PutUint16(texels[2:], 0x07e0) // pure green
	_, img, err := DecodePVR(append(data, texels...))
	if err != nil {
		t.Fatalf("DecodePVR: %v", err)
	}
	if got := pix(img, 0, 0); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("pixel (0,0) = %v, want {255 0 0 255}", got)
	}
	if got := pix(img, 1, 0); got != [4]uint8{0, 255, 0, 255} {
		t.Errorf("pixel (1,0) = %v, want {0 255 0 255}", got)
	}
}

func TestDecodePVR_RGBA5551(t *testing.T) {
	data := makePVRHeader(2, 1, FormatRGBA5551, 0)
	texels := make([]byte, 4)
	binary.LittleEndian.PutUint16(texels[0:], 0xffff) // white, opaque
	binary.LittleEndian.PutUint16(texels[2:], 0xfffe) // white, alpha bit clear
	_, img, err := DecodePVR(append(data, texels...))
	if err != nil {
		t.Fatalf("DecodePVR: %v", err)
	}
	if got := pix(img, 0, 0); got != [4]uint8{255, 255, 255, 255} {
		t.Errorf("pixel (0,0) = %v, want {255 255 255 255}", got)
	}
	if got := pix(img, 1, 0); got != [4]uint8{255, 255, 255, 0} {
		t.Errorf("pixel (1,0) = %v, want {255 255 255 0}", got)
	}
}

func TestDecodePVR_RGBA4444(t *testing.T) {
	data := makePVRHeader(2, 1, FormatRGBA4444, 0)
	texels := make([]byte, 4)
	binary.LittleEndian.PutUint16(texels[0:], 0xf00f) // red, opaque
	binary.LittleEndian.PutUint16(texels[2:], 0x0f08) // green, half alpha
	_, img, err := DecodePVR(append(data, texels...))
	if err != nil {
		t.Fatalf("DecodePVR: %v", err)
	}
	if got := pix(img, 0, 0); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("pixel (0,0) = %v, want {255 0 0 255}", got)
	}
	if got := pix(img, 1, 0); got != [4]uint8{0, 255, 0, 136} {
		t.Errorf("pixel (1,0) = %v, want {0 255 0 136}", got)
	}
}

func TestDecodePVR_TruncatedPayload(t *testing.T) {
	data := makePVRHeader(8, 8, FormatRGBA8888, 0)
	data = append(data, make([]byte, 16)...) // far short of 8*8*4
	if _, _, err := DecodePVR(data); !errors.Is(err, ErrTooShort) {
		t.Errorf("err = %v, want ErrTooShort", err)
	}
}

func TestDecodePVR_PayloadOffsetHonored(t *testing.T) {
	data := makePVRHeader(1, 1, FormatRGBA8888, 0)
	binary.BigEndian.PutUint32(data[0:], 60) // header declares 8 extra bytes
	data = append(data, make([]byte, 8)...)
	data = append(data, 1, 2, 3, 4)
	info, img, err := DecodePVR(data)
	if err != nil {
		t.Fatalf("DecodePVR: %v", err)
	}
	if info.PayloadOffset != 60 {
		t.Errorf("PayloadOffset = %d, want 60", info.PayloadOffset)
	}
	if got := pix(img, 0, 0); got != [4]uint8{1, 2, 3, 4} {
		t.Errorf("pixel (0,0) = %v, want {1 2 3 4}", got)
	}
}

// --- Benchmarks ---

func BenchmarkDecodePVRHeader(b *testing.B) {
	data := makePVRHeader(1024, 1024, FormatPVRTC4, 0xffff)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := DecodePVRHeader(data); err != nil {
			b.Fatal(err)
		}
	}
}
