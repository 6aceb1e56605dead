package glview

import (
	"fmt"
	"strconv"
	"strings"
)

// Vec2 is a 2D point or offset in logical units.
type Vec2 struct {
	X, Y float64
}

// Size is a width/height pair. Whether it is in logical units or texels
// depends on context; Image documents which is which per field.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle with a top-left origin and Y growing
// downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge count as inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Scaled returns the rectangle with all four components multiplied by f.
func (r Rect) Scaled(f float64) Rect {
	return Rect{r.X * f, r.Y * f, r.Width * f, r.Height * f}
}

// ParseSize parses a property-list geometry string of the form "{w,h}".
func ParseSize(s string) (Size, error) {
	f, err := parseGeometry(s, 2)
	if err != nil {
		return Size{}, err
	}
	return Size{f[0], f[1]}, nil
}

// ParseRect parses a property-list geometry string of the form
// "{{x,y},{w,h}}".
func ParseRect(s string) (Rect, error) {
	f, err := parseGeometry(s, 4)
	if err != nil {
		return Rect{}, err
	}
	return Rect{f[0], f[1], f[2], f[3]}, nil
}

// parseGeometry extracts want numeric components from a braced geometry
// string, tolerating whitespace between tokens.
func parseGeometry(s string, want int) ([4]float64, error) {
	var out [4]float64
	clean := strings.NewReplacer("{", "", "}", "", " ", "", "\t", "").Replace(s)
	parts := strings.Split(clean, ",")
	if len(parts) != want {
		return out, fmt.Errorf("glview: geometry %q: want %d components, got %d", s, want, len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return out, fmt.Errorf("glview: geometry %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
