package glview

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Loader resolves names to files, decodes them into Images and Atlases, and
// caches the results so each texture uploads once per path.
//
// The caches are bounded: the least recently used entry is dropped when
// capacity runs out, and PurgeCache empties them outright (wire it to your
// platform's memory-pressure signal). Never assume an entry is still cached
// after a successful load; a later lookup may decode again.
//
// Loaders are safe for concurrent use. Concurrent first loads of the same
// path collapse into a single decode.
type Loader struct {
	fsys        fs.FS
	root        string
	scaleFactor int
	cacheSize   int
	filter      ebiten.Filter

	images  *lru.Cache[string, *Image]
	atlases *lru.Cache[string, *Atlas]
	imageSF singleflight.Group
	atlasSF singleflight.Group

	decodes atomic.Int64 // decode counter, observed by tests
}

// NewLoader builds a loader. Without options it reads from the process
// working directory, roots relative names under "assets", probes no scale
// variants, and retains up to 256 images and atlases.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{root: "assets", scaleFactor: 1, cacheSize: 256, filter: ebiten.FilterLinear}
	for _, o := range opts {
		o.set(l)
	}
	if l.cacheSize < 1 {
		l.cacheSize = 1
	}
	// lru.New only fails for sizes < 1, guarded above.
	l.images, _ = lru.New[string, *Image](l.cacheSize)
	l.atlases, _ = lru.New[string, *Atlas](l.cacheSize)
	return l
}

// ImageNamed returns the image for name, loading and caching it on first
// use. A missing or undecodable file logs a warning and returns an error the
// caller can treat as "image unavailable".
func (l *Loader) ImageNamed(name string) (*Image, error) {
	return l.imageAtPath(l.ResolveImagePath(name))
}

// imageAtPath loads an already-resolved path through the cache. Concurrent
// misses on one path share a single decode; the waiting callers receive the
// winner's image.
func (l *Loader) imageAtPath(p string) (*Image, error) {
	if img, ok := l.images.Get(p); ok {
		return img, nil
	}
	v, err, _ := l.imageSF.Do(p, func() (any, error) {
		if img, ok := l.images.Get(p); ok {
			return img, nil
		}
		img, err := l.loadImage(p)
		if err != nil {
			return nil, err
		}
		l.images.Add(p, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Image), nil
}

func (l *Loader) loadImage(p string) (*Image, error) {
	data, err := l.readFile(p)
	if err != nil {
		Logger().Warn("image file unreadable", "path", p, "err", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrFileUnreadable, p, err)
	}
	l.decodes.Add(1)
	img, err := DecodeImage(data, p, PathScale(p))
	if err != nil {
		Logger().Warn("image decode failed", "path", p, "err", err)
		return nil, err
	}
	img.Filter = l.filter
	return img, nil
}

// AtlasNamed returns the atlas built from name's frame document, loading and
// caching it (and its base texture, under the texture's own path) on first
// use.
func (l *Loader) AtlasNamed(name string) (*Atlas, error) {
	p := l.ResolveDocumentPath(name)
	if a, ok := l.atlases.Get(p); ok {
		return a, nil
	}
	v, err, _ := l.atlasSF.Do(p, func() (any, error) {
		if a, ok := l.atlases.Get(p); ok {
			return a, nil
		}
		data, err := l.readFile(p)
		if err != nil {
			Logger().Warn("atlas document unreadable", "path", p, "err", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrFileUnreadable, p, err)
		}
		a, err := BuildAtlas(nil, p, data, l)
		if err != nil {
			return nil, err
		}
		l.atlases.Add(p, a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Atlas), nil
}

// PurgeCache drops every cached image and atlas. Textures callers still hold
// stay valid; subsequent lookups reload from disk.
func (l *Loader) PurgeCache() {
	l.images.Purge()
	l.atlases.Purge()
}

// --- file access ---

// open reaches the file behind p: through the configured fs.FS when one is
// set, otherwise the operating system directly (which also serves absolute
// paths).
func (l *Loader) open(p string) (fs.File, error) {
	if l.fsys == nil {
		return os.Open(filepath.FromSlash(p))
	}
	return l.fsys.Open(fsPath(p))
}

func (l *Loader) exists(p string) bool {
	if l.fsys == nil {
		_, err := os.Stat(filepath.FromSlash(p))
		return err == nil
	}
	f, err := l.fsys.Open(fsPath(p))
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func (l *Loader) readFile(p string) ([]byte, error) {
	f, err := l.open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// fsPath adapts a resolved path to the fs.FS namespace (no leading slash).
func fsPath(p string) string {
	return strings.TrimPrefix(path.Clean(p), "/")
}

// maybeDecompress inflates gzip- or zlib-wrapped data, returning the input
// unchanged when it is neither or fails to inflate.
func maybeDecompress(data []byte) []byte {
	if len(data) < 2 {
		return data
	}
	switch {
	case data[0] == 0x1f && data[1] == 0x8b:
		if r, err := gzip.NewReader(bytes.NewReader(data)); err == nil {
			if out, err := io.ReadAll(r); err == nil {
				return out
			}
		}
	case data[0] == 0x78 && (data[1] == 0x01 || data[1] == 0x5e || data[1] == 0x9c || data[1] == 0xda):
		if r, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
			if out, err := io.ReadAll(r); err == nil {
				return out
			}
		}
	}
	return data
}

// --- process-wide loader ---

var defaultLoader atomic.Pointer[Loader]

func init() {
	defaultLoader.Store(NewLoader())
}

// Default returns the process-wide loader behind the package-level ImageNamed
// and AtlasNamed.
func Default() *Loader {
	return defaultLoader.Load()
}

// SetDefault replaces the process-wide loader, typically at startup to set a
// resource root or scale factor. Passing nil restores a fresh default.
func SetDefault(l *Loader) {
	if l == nil {
		l = NewLoader()
	}
	defaultLoader.Store(l)
}

// ImageNamed loads an image through the process-wide loader.
func ImageNamed(name string) (*Image, error) {
	return Default().ImageNamed(name)
}

// AtlasNamed loads an atlas through the process-wide loader.
func AtlasNamed(name string) (*Atlas, error) {
	return Default().AtlasNamed(name)
}
