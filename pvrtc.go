package glview

import (
	"encoding/binary"
	"fmt"
	"image"
)

// PVRTC packs texels into 64-bit words, each covering a 4x4 block at 4bpp or
// an 8x4 block at 2bpp. A word carries two base colors (A and B) plus
// per-texel modulation codes; at decode time the base colors of each 2x2 word
// neighborhood are bilinearly upscaled across the block and blended per texel
// by the modulation weight. Words sit in the payload in Morton (twiddled)
// order.

// pvrtcWord is one 64-bit block: a modulation word and a color word, both
// little-endian.
type pvrtcWord struct {
	mod uint32
	col uint32
}

// pvrtcPixel holds one color during interpolation. Channels enter at the
// packed precision (5-bit RGB, 4-bit A) and leave pvrtcInterpolate widened to
// 8 bits.
type pvrtcPixel struct {
	r, g, b, a int32
}

// pvrtcColorA unpacks base color A from the low half of a color word. Bit 15
// selects opaque RGB 5:5:4 or translucent ARGB 3:4:4:3; narrow channels widen
// by bit replication. Bit 0 belongs to the modulation mode flag and is
// excluded.
func pvrtcColorA(col uint32) pvrtcPixel {
	if col&0x8000 != 0 {
		return pvrtcPixel{
			r: int32((col >> 10) & 0x1f),
			g: int32((col >> 5) & 0x1f),
			b: int32((col & 0x1e) | ((col & 0x1e) >> 4)),
			a: 0xf,
		}
	}
	return pvrtcPixel{
		r: int32(((col & 0xf00) >> 7) | ((col & 0xf00) >> 11)),
		g: int32(((col & 0xf0) >> 3) | ((col & 0xf0) >> 7)),
		b: int32(((col & 0xe) << 1) | ((col & 0xe) >> 2)),
		a: int32((col & 0x7000) >> 11),
	}
}

// pvrtcColorB unpacks base color B from the high half of a color word. Bit 31
// selects opaque RGB 5:5:5 or translucent ARGB 3:4:4:4.
func pvrtcColorB(col uint32) pvrtcPixel {
	if col&0x80000000 != 0 {
		return pvrtcPixel{
			r: int32((col >> 26) & 0x1f),
			g: int32((col >> 21) & 0x1f),
			b: int32((col >> 16) & 0x1f),
			a: 0xf,
		}
	}
	return pvrtcPixel{
		r: int32(((col & 0xf000000) >> 23) | ((col & 0xf000000) >> 27)),
		g: int32(((col & 0xf00000) >> 19) | ((col & 0xf00000) >> 23)),
		b: int32(((col & 0xf0000) >> 15) | ((col & 0xf0000) >> 19)),
		a: int32((col & 0x70000000) >> 27),
	}
}

// pvrtcInterpolate bilinearly upscales the four neighborhood base colors
// across one block, converting to 8-bit channels on the way out. The
// incremental form walks columns with the P->Q and R->S deltas and rows with
// the top->bottom delta.
func pvrtcInterpolate(p, q, r, s pvrtcPixel, out []pvrtcPixel, is2bpp bool) {
	ww, wh := 4, 4
	if is2bpp {
		ww = 8
	}

	qp := pvrtcPixel{q.r - p.r, q.g - p.g, q.b - p.b, q.a - p.a}
	sr := pvrtcPixel{s.r - r.r, s.g - r.g, s.b - r.b, s.a - r.a}
	w := int32(ww)
	hp := pvrtcPixel{p.r * w, p.g * w, p.b * w, p.a * w}
	hr := pvrtcPixel{r.r * w, r.g * w, r.b * w, r.a * w}

	for x := 0; x < ww; x++ {
		res := pvrtcPixel{4 * hp.r, 4 * hp.g, 4 * hp.b, 4 * hp.a}
		dy := pvrtcPixel{hr.r - hp.r, hr.g - hp.g, hr.b - hp.b, hr.a - hp.a}

		for y := 0; y < wh; y++ {
			px := &out[y*ww+x]
			if is2bpp {
				px.r = (res.r >> 7) + (res.r >> 2)
				px.g = (res.g >> 7) + (res.g >> 2)
				px.b = (res.b >> 7) + (res.b >> 2)
				px.a = (res.a >> 5) + (res.a >> 1)
			} else {
				px.r = (res.r >> 6) + (res.r >> 1)
				px.g = (res.g >> 6) + (res.g >> 1)
				px.b = (res.b >> 6) + (res.b >> 1)
				px.a = res.a + (res.a >> 4)
			}
			res.r += dy.r
			res.g += dy.g
			res.b += dy.b
			res.a += dy.a
		}

		hp.r += qp.r
		hp.g += qp.g
		hp.b += qp.b
		hp.a += qp.a
		hr.r += sr.r
		hr.g += sr.g
		hr.b += sr.b
		hr.a += sr.a
	}
}

// pvrtcModulation holds the unpacked modulation state of a 2x2 word
// neighborhood, indexed [y][x]. Sized for the 2bpp case (8 rows of 16
// texels); 4bpp uses the top-left 8x8 quarter.
type pvrtcModulation struct {
	vals  [8][16]int32
	modes [8][16]int32
}

// pvrtcWeights maps a 2-bit modulation code to its A/B blend weight in
// eighths.
var pvrtcWeights = [4]int32{0, 3, 5, 8}

// pvrtcUnpackModulation spreads one word's modulation codes into the
// neighborhood grid at the given word offset. Codes come off the modulation
// word LSB first in raster order.
func pvrtcUnpackModulation(wrd pvrtcWord, offX, offY int, m *pvrtcModulation, is2bpp bool) {
	mode := wrd.col & 1
	bits := wrd.mod

	if !is2bpp {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				m.modes[y+offY][x+offX] = int32(mode)
				m.vals[y+offY][x+offX] = int32(bits & 3)
				bits >>= 2
			}
		}
		return
	}

	if mode != 0 {
		// Interpolated sub-modes: bit 0 of the modulation word selects
		// plain H+V averaging versus H-only or V-only, which the
		// repurposed LSB of the center texel then picks between. Both
		// repurposed bits are restored from their neighbors before the
		// codes are read out.
		subMode := int32(1)
		if bits&1 != 0 {
			subMode = 2
			if bits&(1<<20) != 0 {
				subMode = 3
			}
			if bits&(1<<21) != 0 {
				bits |= 1 << 20
			} else {
				bits &^= 1 << 20
			}
		}
		if bits&2 != 0 {
			bits |= 1
		} else {
			bits &^= 1
		}
		for y := 0; y < 4; y++ {
			for x := 0; x < 8; x++ {
				m.modes[y+offY][x+offX] = subMode
				if (x^y)&1 == 0 {
					m.vals[y+offY][x+offX] = int32(bits & 3)
					bits >>= 2
				}
			}
		}
		return
	}

	// Direct mode: one bit per texel, all-A or all-B.
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			m.modes[y+offY][x+offX] = 0
			if bits&1 != 0 {
				m.vals[y+offY][x+offX] = 3
			} else {
				m.vals[y+offY][x+offX] = 0
			}
			bits >>= 1
		}
	}
}

// pvrtcTexelWeight resolves the blend weight in eighths for one texel, plus
// whether punch-through alpha applies (4bpp punch mode, code 2). In the 2bpp
// interpolated sub-modes, texels without a stored code average their
// neighbors' weights.
func pvrtcTexelWeight(m *pvrtcModulation, x, y int, is2bpp bool) (int32, bool) {
	if !is2bpp {
		v := m.vals[y][x]
		if m.modes[y][x] == 0 {
			return pvrtcWeights[v], false
		}
		switch v {
		case 0:
			return 0, false
		case 1:
			return 4, false
		case 2:
			return 4, true
		default:
			return 8, false
		}
	}

	mode := m.modes[y][x]
	if mode == 0 || (x^y)&1 == 0 {
		return pvrtcWeights[m.vals[y][x]], false
	}
	switch mode {
	case 1: // average of all four neighbors
		return (pvrtcWeights[m.vals[y-1][x]] + pvrtcWeights[m.vals[y+1][x]] +
			pvrtcWeights[m.vals[y][x-1]] + pvrtcWeights[m.vals[y][x+1]] + 2) / 4, false
	case 2: // horizontal only
		return (pvrtcWeights[m.vals[y][x-1]] + pvrtcWeights[m.vals[y][x+1]] + 1) / 2, false
	default: // vertical only
		return (pvrtcWeights[m.vals[y-1][x]] + pvrtcWeights[m.vals[y+1][x]] + 1) / 2, false
	}
}

// pvrtcWordIndex returns the Morton (twiddled) index of word (wx, wy) in an
// nx by ny grid. Word counts are powers of two; when the grid is not square
// the excess bits of the longer axis are prepended linearly.
func pvrtcWordIndex(nx, ny, wx, wy int) int {
	minDim, maxPos := nx, wy
	if ny < nx {
		minDim, maxPos = ny, wx
	}
	idx, srcBit, dstBit, shifts := 0, 1, 1, 0
	for srcBit < minDim {
		if wy&srcBit != 0 {
			idx |= dstBit
		}
		if wx&srcBit != 0 {
			idx |= dstBit << 1
		}
		srcBit <<= 1
		dstBit <<= 2
		shifts++
	}
	return idx | (maxPos>>shifts)<<(2*shifts)
}

// pvrtcDecode decompresses a PVRTC payload into straight-alpha RGBA. Payloads
// always cover at least two words per axis; textures smaller than that decode
// at the padded size and crop to the requested one.
func pvrtcDecode(payload []byte, width, height int, is2bpp bool) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("glview: PVRTC size %dx%d invalid", width, height)
	}
	ww, minW := 4, 8
	if is2bpp {
		ww, minW = 8, 16
	}
	const wh = 4
	dw, dh := max(width, minW), max(height, 2*wh)
	dw = (dw + ww - 1) / ww * ww
	dh = (dh + wh - 1) / wh * wh

	nx, ny := dw/ww, dh/wh
	if need := nx * ny * 8; len(payload) < need {
		return nil, fmt.Errorf("%w: PVRTC payload %d bytes, need %d", ErrTooShort, len(payload), need)
	}

	wordAt := func(wx, wy int) pvrtcWord {
		off := pvrtcWordIndex(nx, ny, wx, wy) * 8
		return pvrtcWord{
			mod: binary.LittleEndian.Uint32(payload[off:]),
			col: binary.LittleEndian.Uint32(payload[off+4:]),
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	colorA := make([]pvrtcPixel, ww*wh)
	colorB := make([]pvrtcPixel, ww*wh)
	var m pvrtcModulation

	// Each pass blends the 2x2 neighborhood (P Q / R S) and fills the block
	// straddling its center; edge blocks wrap around the texture.
	for wy := -1; wy < ny-1; wy++ {
		for wx := -1; wx < nx-1; wx++ {
			p := wordAt((wx+nx)%nx, (wy+ny)%ny)
			q := wordAt((wx+1+nx)%nx, (wy+ny)%ny)
			r := wordAt((wx+nx)%nx, (wy+1+ny)%ny)
			s := wordAt((wx+1+nx)%nx, (wy+1+ny)%ny)

			pvrtcUnpackModulation(p, 0, 0, &m, is2bpp)
			pvrtcUnpackModulation(q, ww, 0, &m, is2bpp)
			pvrtcUnpackModulation(r, 0, wh, &m, is2bpp)
			pvrtcUnpackModulation(s, ww, wh, &m, is2bpp)

			pvrtcInterpolate(pvrtcColorA(p.col), pvrtcColorA(q.col), pvrtcColorA(r.col), pvrtcColorA(s.col), colorA, is2bpp)
			pvrtcInterpolate(pvrtcColorB(p.col), pvrtcColorB(q.col), pvrtcColorB(r.col), pvrtcColorB(s.col), colorB, is2bpp)

			for y := 0; y < wh; y++ {
				ty := (wy*wh + wh/2 + y + dh) % dh
				if ty >= height {
					continue
				}
				for x := 0; x < ww; x++ {
					tx := (wx*ww + ww/2 + x + dw) % dw
					if tx >= width {
						continue
					}
					wgt, punch := pvrtcTexelWeight(&m, x+ww/2, y+wh/2, is2bpp)
					ca, cb := colorA[y*ww+x], colorB[y*ww+x]
					o := img.PixOffset(tx, ty)
					img.Pix[o+0] = uint8((ca.r*(8-wgt) + cb.r*wgt) / 8)
					img.Pix[o+1] = uint8((ca.g*(8-wgt) + cb.g*wgt) / 8)
					img.Pix[o+2] = uint8((ca.b*(8-wgt) + cb.b*wgt) / 8)
					if punch {
						img.Pix[o+3] = 0
					} else {
						img.Pix[o+3] = uint8((ca.a*(8-wgt) + cb.a*wgt) / 8)
					}
				}
			}
		}
	}
	return img, nil
}
