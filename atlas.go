package glview

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"howett.net/plist"
)

// Atlas is a set of named sprite views over one shared texture, built from a
// cocos2d/TexturePacker-style plist document. Every frame the atlas hands out
// is a view of the same base image, so drawing any mix of frames costs a
// single texture.
type Atlas struct {
	base   *Image
	byName map[string]*Image
	names  []string
}

// atlasDocument mirrors the plist layout: a dictionary with an optional
// "metadata" entry and a "frames" dictionary keyed by sprite name.
type atlasDocument struct {
	Metadata atlasMetadata         `plist:"metadata"`
	Frames   map[string]atlasFrame `plist:"frames"`
}

type atlasMetadata struct {
	Size   string      `plist:"size"`
	Target atlasTarget `plist:"target"`
}

type atlasTarget struct {
	TextureFileName      string `plist:"textureFileName"`
	TextureFileExtension string `plist:"textureFileExtension"`
	PremultipliedAlpha   bool   `plist:"premultipliedAlpha"`
}

type atlasFrame struct {
	TextureRect      string   `plist:"textureRect"`
	SpriteSize       string   `plist:"spriteSize"`
	SpriteTrimmed    bool     `plist:"spriteTrimmed"`
	SpriteColorRect  string   `plist:"spriteColorRect"`
	SpriteSourceSize string   `plist:"spriteSourceSize"`
	TextureRotated   bool     `plist:"textureRotated"`
	Aliases          []string `plist:"aliases"`
}

// BuildAtlas parses doc (a plist frame dictionary, optionally gzip- or
// zlib-compressed) into an Atlas over base. A nil base makes the atlas find
// its own texture: the document's metadata names it, or failing that the
// document path with its extension swapped for the image default, loaded
// through loader (nil means the process-wide loader). sourcePath is the
// document's resolved path and anchors relative texture references; it may
// be empty when base is supplied.
//
// The build is all or nothing: one unparseable frame fails the whole atlas.
func BuildAtlas(base *Image, sourcePath string, doc []byte, loader *Loader) (*Atlas, error) {
	if loader == nil {
		loader = Default()
	}
	doc = maybeDecompress(doc)

	var root atlasDocument
	if _, err := plist.Unmarshal(doc, &root); err != nil {
		Logger().Warn("atlas document not a dictionary", "path", sourcePath, "err", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrUnrecognizedDocument, sourcePath, err)
	}
	hasMetadata := root.Metadata != (atlasMetadata{})

	if base == nil {
		texPath := atlasTexturePath(sourcePath, root.Metadata)
		b, err := loader.imageAtPath(loader.resolvePath(texPath, defaultImageExt, false))
		if err != nil {
			Logger().Warn("atlas texture missing", "path", sourcePath, "texture", texPath, "err", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingTexture, texPath, err)
		}
		base = b
		if hasMetadata {
			// The document knows how its texture was exported; a
			// caller-supplied base keeps its own flag.
			base = base.WithPremultipliedAlpha(root.Metadata.Target.PremultipliedAlpha)
		}
	}

	if len(root.Frames) == 0 {
		Logger().Warn("atlas document has no frames", "path", sourcePath)
		return nil, fmt.Errorf("%w: %s", ErrNoFrames, sourcePath)
	}

	derivedScale := atlasDerivedScale(base, sourcePath, root.Metadata)
	texBounds := Rect{Width: base.TextureSize.Width, Height: base.TextureSize.Height}

	a := &Atlas{base: base, byName: make(map[string]*Image, len(root.Frames))}
	fail := func(name string, err error) (*Atlas, error) {
		Logger().Warn("atlas frame unparseable", "path", sourcePath, "frame", name, "err", err)
		return nil, fmt.Errorf("%w: frame %s: %w", ErrUnrecognizedDocument, name, err)
	}
	for name, fr := range root.Frames {
		clip, err := ParseRect(fr.TextureRect)
		if err != nil {
			return fail(name, err)
		}
		clip = clip.Scaled(derivedScale)

		size, err := ParseSize(fr.SpriteSize)
		if err != nil {
			return fail(name, err)
		}
		content := Rect{Width: size.Width, Height: size.Height}
		if fr.SpriteTrimmed {
			if size, err = ParseSize(fr.SpriteSourceSize); err != nil {
				return fail(name, err)
			}
			if content, err = ParseRect(fr.SpriteColorRect); err != nil {
				return fail(name, err)
			}
		}

		maxX, maxY := clip.X+clip.Width, clip.Y+clip.Height
		if fr.TextureRotated {
			maxX, maxY = clip.X+clip.Height, clip.Y+clip.Width
		}
		if !texBounds.Contains(clip.X, clip.Y) || !texBounds.Contains(maxX, maxY) {
			Logger().Debug("frame clip exceeds texture", "frame", name, "clip", clip)
		}

		img := base.WithClipRect(clip).WithLogicalSize(size).WithContentRect(content)
		img.Rotated = fr.TextureRotated
		a.add(name, img)
		for _, alias := range fr.Aliases {
			a.add(alias, img)
		}
	}
	sort.Strings(a.names)
	return a, nil
}

// atlasTexturePath decides where the atlas texture lives: the metadata's
// explicit name when present, otherwise the document path with its extension
// stripped (the loader appends the image default).
func atlasTexturePath(sourcePath string, md atlasMetadata) string {
	dir := path.Dir(sourcePath)
	if md.Target.TextureFileName != "" {
		name := md.Target.TextureFileName
		if ext := strings.TrimPrefix(md.Target.TextureFileExtension, "."); ext != "" {
			name += "." + ext
		}
		return path.Join(dir, name)
	}
	base := path.Base(sourcePath)
	return path.Join(dir, strings.TrimSuffix(base, path.Ext(base)))
}

// atlasDerivedScale maps document point coordinates onto the texture:
// preferably by comparing the metadata's declared size against the real
// texture, otherwise by comparing the texture's scale against the document
// path's own @Nx suffix.
func atlasDerivedScale(base *Image, sourcePath string, md atlasMetadata) float64 {
	if md.Size != "" {
		if size, err := ParseSize(md.Size); err == nil && size.Width > 0 {
			return base.TextureSize.Width / size.Width
		}
	}
	return base.Scale / PathScale(sourcePath)
}

func (a *Atlas) add(name string, img *Image) {
	if _, dup := a.byName[name]; !dup {
		a.names = append(a.names, name)
	}
	a.byName[name] = img // duplicate names: last write wins
}

// Count reports how many distinct names (frames plus aliases) the atlas
// holds.
func (a *Atlas) Count() int {
	return len(a.names)
}

// Name returns the i'th name in sorted order, or "" out of range. Together
// with Count it supports iterating an atlas whose contents are not known
// ahead of time.
func (a *Atlas) Name(i int) string {
	if i < 0 || i >= len(a.names) {
		return ""
	}
	return a.names[i]
}

// ImageAt returns the frame for the i'th sorted name, or nil out of range.
func (a *Atlas) ImageAt(i int) *Image {
	if i < 0 || i >= len(a.names) {
		return nil
	}
	return a.byName[a.names[i]]
}

// ImageNamed returns the frame registered under name. A miss retries with
// the default image extension appended, so "hero" finds a frame stored as
// "hero.png". Returns nil when neither matches.
func (a *Atlas) ImageNamed(name string) *Image {
	if img, ok := a.byName[name]; ok {
		return img
	}
	if path.Ext(name) == "" {
		if img, ok := a.byName[name+"."+defaultImageExt]; ok {
			return img
		}
	}
	return nil
}

// ImageOrPlaceholder is ImageNamed with a visible fallback: a missing frame
// yields the shared placeholder so the gap shows up on screen instead of
// crashing or vanishing. Debug mode logs the miss.
func (a *Atlas) ImageOrPlaceholder(name string) *Image {
	if img := a.ImageNamed(name); img != nil {
		return img
	}
	if globalDebug {
		Logger().Warn("atlas frame not found, using placeholder", "frame", name)
	}
	return Placeholder()
}

// BaseImage returns the image every frame is a view of.
func (a *Atlas) BaseImage() *Image {
	return a.base
}
