package glview

import (
	"encoding/binary"
	"fmt"
	"image"
)

// Legacy PVR (version 2) container: a 52-byte header of thirteen big-endian
// uint32 fields, then the pixel payload at the offset the first field
// declares. The low byte of the flags field selects the pixel format.
const (
	pvrHeaderSize = 52
	pvrMagic      = 0x50565221 // "PVR!"

	// Compressed payloads never shrink below two words per axis, even for
	// textures under 8 pixels.
	pvrtcMinPayload = 32

	// No real legacy texture comes near this per-axis limit; past it the
	// header is treated as malformed rather than as an image.
	pvrMaxDimension = 1 << 14
)

// PixelFormat identifies a PVR pixel layout.
type PixelFormat uint8

// Pixel format codes from the legacy PVR flags field.
const (
	FormatRGBA4444 PixelFormat = 0x10 // 16-bit 4:4:4:4
	FormatRGBA5551 PixelFormat = 0x11 // 16-bit 5:5:5:1
	FormatRGBA8888 PixelFormat = 0x12 // 32-bit 8:8:8:8
	FormatRGB565   PixelFormat = 0x13 // 16-bit 5:6:5, no alpha
	FormatI8       PixelFormat = 0x16 // 8-bit luminance (not supported)
	FormatAI88     PixelFormat = 0x17 // 16-bit luminance+alpha (not supported)
	FormatPVRTC2   PixelFormat = 0x18 // PVRTC, 2 bits per texel
	FormatPVRTC4   PixelFormat = 0x19 // PVRTC, 4 bits per texel
)

func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA4444:
		return "RGBA4444"
	case FormatRGBA5551:
		return "RGBA5551"
	case FormatRGBA8888:
		return "RGBA8888"
	case FormatRGB565:
		return "RGB565"
	case FormatI8:
		return "I8"
	case FormatAI88:
		return "AI88"
	case FormatPVRTC2:
		return "PVRTC2"
	case FormatPVRTC4:
		return "PVRTC4"
	}
	return fmt.Sprintf("PixelFormat(0x%02x)", uint8(f))
}

// TextureInfo describes a parsed PVR texture: its dimensions, pixel format,
// and where the level-0 payload sits within the file data.
type TextureInfo struct {
	Width, Height int
	Format        PixelFormat
	Compressed    bool
	BitsPerPixel  int
	HasAlpha      bool
	MipmapCount   int

	// PayloadOffset and PayloadSize locate the level-0 pixel data within
	// the bytes handed to DecodePVRHeader.
	PayloadOffset int
	PayloadSize   int
}

// DecodePVRHeader validates and parses a legacy PVR header. It reads no pixel
// data and allocates nothing beyond the returned value.
func DecodePVRHeader(data []byte) (TextureInfo, error) {
	if len(data) < pvrHeaderSize {
		return TextureInfo{}, fmt.Errorf("%w: %d bytes, header is %d", ErrTooShort, len(data), pvrHeaderSize)
	}

	headerSize := binary.BigEndian.Uint32(data[0:4])
	height := binary.BigEndian.Uint32(data[4:8])
	width := binary.BigEndian.Uint32(data[8:12])
	mipmapCount := binary.BigEndian.Uint32(data[12:16])
	flags := binary.BigEndian.Uint32(data[16:20])
	alphaMask := binary.BigEndian.Uint32(data[40:44])
	magic := binary.BigEndian.Uint32(data[44:48])

	if magic != pvrMagic {
		return TextureInfo{}, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic)
	}
	if width == 0 || height == 0 || width > pvrMaxDimension || height > pvrMaxDimension {
		return TextureInfo{}, fmt.Errorf("%w: %dx%d", ErrBadDimensions, width, height)
	}

	info := TextureInfo{
		Width:         int(width),
		Height:        int(height),
		Format:        PixelFormat(flags & 0xff),
		MipmapCount:   int(mipmapCount),
		PayloadOffset: int(headerSize),
	}

	switch info.Format {
	case FormatRGB565:
		info.BitsPerPixel = 16
	case FormatRGBA5551, FormatRGBA4444:
		info.BitsPerPixel = 16
		info.HasAlpha = true
	case FormatRGBA8888:
		info.BitsPerPixel = 32
		info.HasAlpha = true
	case FormatPVRTC4:
		info.Compressed = true
		info.BitsPerPixel = 4
		info.HasAlpha = alphaMask != 0
	case FormatPVRTC2:
		info.Compressed = true
		info.BitsPerPixel = 2
		info.HasAlpha = alphaMask != 0
	default:
		return TextureInfo{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, info.Format)
	}

	size := info.Width * info.Height * info.BitsPerPixel / 8
	if info.Compressed && size < pvrtcMinPayload {
		size = pvrtcMinPayload
	}
	info.PayloadSize = size

	if info.PayloadOffset < pvrHeaderSize {
		info.PayloadOffset = pvrHeaderSize
	}
	return info, nil
}

// DecodePVR parses a PVR file and expands its payload to straight-alpha RGBA
// entirely on the CPU, so it may run on any goroutine. DecodeImage wraps the
// result in a texture upload.
func DecodePVR(data []byte) (TextureInfo, *image.NRGBA, error) {
	info, err := DecodePVRHeader(data)
	if err != nil {
		return TextureInfo{}, nil, err
	}
	img, err := decodePVRPixels(info, data)
	if err != nil {
		return info, nil, err
	}
	return info, img, nil
}

// decodePVRPixels expands the level-0 payload described by info. The 16-bit
// formats widen each channel by bit replication; PVRTC goes through the block
// decoder.
func decodePVRPixels(info TextureInfo, data []byte) (*image.NRGBA, error) {
	end := info.PayloadOffset + info.PayloadSize
	if end > len(data) || end < info.PayloadOffset {
		return nil, fmt.Errorf("%w: payload wants %d bytes at offset %d, file has %d",
			ErrTooShort, info.PayloadSize, info.PayloadOffset, len(data))
	}
	payload := data[info.PayloadOffset:end]

	if info.Compressed {
		return pvrtcDecode(payload, info.Width, info.Height, info.Format == FormatPVRTC2)
	}

	img := image.NewNRGBA(image.Rect(0, 0, info.Width, info.Height))
	n := info.Width * info.Height
	switch info.Format {
	case FormatRGBA8888:
		copy(img.Pix, payload[:4*n])
	case FormatRGB565:
		for i := 0; i < n; i++ {
			c := binary.LittleEndian.Uint16(payload[2*i:])
			r := uint8((c >> 11) & 0x1f)
			g := uint8((c >> 5) & 0x3f)
			b := uint8(c & 0x1f)
			img.Pix[4*i+0] = r<<3 | r>>2
			img.Pix[4*i+1] = g<<2 | g>>4
			img.Pix[4*i+2] = b<<3 | b>>2
			img.Pix[4*i+3] = 0xff
		}
	case FormatRGBA5551:
		for i := 0; i < n; i++ {
			c := binary.LittleEndian.Uint16(payload[2*i:])
			r := uint8((c >> 11) & 0x1f)
			g := uint8((c >> 6) & 0x1f)
			b := uint8((c >> 1) & 0x1f)
			img.Pix[4*i+0] = r<<3 | r>>2
			img.Pix[4*i+1] = g<<3 | g>>2
			img.Pix[4*i+2] = b<<3 | b>>2
			if c&1 != 0 {
				img.Pix[4*i+3] = 0xff
			}
		}
	case FormatRGBA4444:
		for i := 0; i < n; i++ {
			c := binary.LittleEndian.Uint16(payload[2*i:])
			r := uint8((c >> 12) & 0xf)
			g := uint8((c >> 8) & 0xf)
			b := uint8((c >> 4) & 0xf)
			a := uint8(c & 0xf)
			img.Pix[4*i+0] = r<<4 | r
			img.Pix[4*i+1] = g<<4 | g
			img.Pix[4*i+2] = b<<4 | b
			img.Pix[4*i+3] = a<<4 | a
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, info.Format)
	}
	return img, nil
}
