package glview

import (
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Flipbook plays a fixed frame sequence over a duration, the usual way to
// animate a run cycle cut from an atlas. Feed it the frame delta each tick:
//
//	fb := glview.FlipbookFromAtlas(atlas, "run/", 0.8, true)
//	// per update:
//	fb.Update(1.0 / 60)
//	fb.Frame().Draw(screen, pos)
//
// Flipbooks are plain state driven by the caller's loop; they are not safe
// for concurrent use.
type Flipbook struct {
	frames []*Image
	tween  *gween.Tween
	index  int
	loop   bool

	// Done reports a non-looping flipbook that has played out. The final
	// frame stays current.
	Done bool
}

// NewFlipbook builds a flipbook over frames lasting duration seconds. With
// loop set it restarts from the first frame when it finishes; otherwise it
// holds the last frame and sets Done.
func NewFlipbook(frames []*Image, duration float32, loop bool) *Flipbook {
	fb := &Flipbook{frames: frames, loop: loop}
	if len(frames) > 0 && duration > 0 {
		fb.tween = gween.New(0, float32(len(frames)), duration, ease.Linear)
	}
	return fb
}

// FlipbookFromAtlas collects every atlas frame whose name starts with prefix,
// in the atlas's sorted name order, into a flipbook. Returns nil when no
// frame matches.
func FlipbookFromAtlas(a *Atlas, prefix string, duration float32, loop bool) *Flipbook {
	var frames []*Image
	for i := 0; i < a.Count(); i++ {
		if strings.HasPrefix(a.Name(i), prefix) {
			frames = append(frames, a.ImageAt(i))
		}
	}
	if len(frames) == 0 {
		return nil
	}
	return NewFlipbook(frames, duration, loop)
}

// Update advances the animation by dt seconds.
func (fb *Flipbook) Update(dt float32) {
	if fb.tween == nil || fb.Done {
		return
	}
	v, finished := fb.tween.Update(dt)
	fb.index = min(int(v), len(fb.frames)-1)
	if finished {
		if fb.loop {
			fb.tween.Reset()
			fb.index = 0
		} else {
			fb.Done = true
		}
	}
}

// Frame returns the current frame, nil for an empty flipbook.
func (fb *Flipbook) Frame() *Image {
	if len(fb.frames) == 0 {
		return nil
	}
	return fb.frames[fb.index]
}

// FrameIndex returns the current position in the sequence.
func (fb *Flipbook) FrameIndex() int {
	return fb.index
}
