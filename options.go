package glview

import (
	"io/fs"

	"github.com/hajimehoshi/ebiten/v2"
)

// Option configures a Loader handed to NewLoader.
type Option interface {
	set(*Loader)
}

type option func(*Loader)

func (f option) set(l *Loader) { f(l) }

// WithFS makes the loader read through fsys instead of the operating system.
// Paths are then interpreted relative to the fs root. Tests typically pass an
// fstest.MapFS.
func WithFS(fsys fs.FS) Option {
	return option(func(l *Loader) { l.fsys = fsys })
}

// WithRoot sets the directory prepended to relative names. The default is
// "assets"; pass "" to disable rooting.
func WithRoot(root string) Option {
	return option(func(l *Loader) { l.root = root })
}

// WithScaleFactor sets the device scale the resolver probes @Nx file
// variants for. A factor of 1, the default, probes nothing.
func WithScaleFactor(n int) Option {
	return option(func(l *Loader) { l.scaleFactor = n })
}

// WithCacheSize caps how many images and atlases the loader retains before
// evicting the least recently used entry. The default is 256.
func WithCacheSize(n int) Option {
	return option(func(l *Loader) { l.cacheSize = n })
}

// WithFilter sets the sampling filter stamped on images this loader decodes.
// The default is [ebiten.FilterLinear]; pixel-art assets want
// [ebiten.FilterNearest].
func WithFilter(f ebiten.Filter) Option {
	return option(func(l *Loader) { l.filter = f })
}
