package glview

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Default extensions appended to bare names.
const (
	defaultImageExt    = "png"
	defaultDocumentExt = "plist"
)

// ResolveImagePath expands name to the path ImageNamed will read: a missing
// extension defaults to png, relative names are rooted under the loader's
// resource root, and with a scale factor above one an @Nx variant replaces
// the plain path when that file exists. Resolution always yields a path;
// whether it is readable only comes out when loading it.
func (l *Loader) ResolveImagePath(name string) string {
	return l.resolvePath(name, defaultImageExt, true)
}

// ResolveDocumentPath is the companion resolver for atlas documents; the
// default extension is plist.
func (l *Loader) ResolveDocumentPath(name string) string {
	return l.resolvePath(name, defaultDocumentExt, true)
}

func (l *Loader) resolvePath(name, defaultExt string, root bool) string {
	p := path.Clean(filepath.ToSlash(name))
	if path.Ext(p) == "" {
		p += "." + defaultExt
	}
	if root && l.root != "" && !path.IsAbs(p) {
		p = path.Join(l.root, p)
	}
	if l.scaleFactor > 1 && !hasScaleSuffix(p) {
		if v := scaledVariant(p, l.scaleFactor); l.exists(v) {
			p = v
		}
	}
	return p
}

// scaledVariant inserts an @Nx marker between the stem and extension.
func scaledVariant(p string, scale int) string {
	ext := path.Ext(p)
	return fmt.Sprintf("%s@%dx%s", strings.TrimSuffix(p, ext), scale, ext)
}

// hasScaleSuffix reports whether the path stem already ends in @Nx.
// Only the exact single-digit form counts.
func hasScaleSuffix(p string) bool {
	stem := strings.TrimSuffix(p, path.Ext(p))
	n := len(stem)
	return n >= 3 && stem[n-1] == 'x' && stem[n-3] == '@' && stem[n-2] >= '1' && stem[n-2] <= '9'
}

// PathScale returns the resolution scale encoded in a path's @Nx suffix, or
// 1 when no suffix is present.
func PathScale(p string) float64 {
	if !hasScaleSuffix(p) {
		return 1
	}
	stem := strings.TrimSuffix(p, path.Ext(p))
	return float64(stem[len(stem)-2] - '0')
}
