// Package glview loads textures from bitmap files or PVR containers, uploads
// them to the GPU once, and slices them into independently addressable named
// sprites for 2D rendering with [Ebitengine].
//
// # Images
//
// [Image] couples a texture with sprite geometry: a logical size in
// resolution-independent units, the device scale relating logical units to
// texels, and the clip rectangle the texture is sampled through. Images come
// from three places:
//
//	img, err := glview.ImageNamed("hero")          // decoded from a file
//	img := glview.Synthesize(size, scale, render)  // drawn offscreen
//	view := img.WithClipRect(r)                    // derived from another
//
// Deriving is cheap: the view shares the owner's texture and only carries new
// geometry. Views keep their owner reachable and can never dispose the shared
// texture.
//
// File names resolve through a [Loader]: a bare name gains a .png extension,
// relative names are rooted under the resource directory, and on a
// high-density display an existing name@2x.png variant is preferred:
//
//	glview.SetDefault(glview.NewLoader(
//		glview.WithRoot("assets"),
//		glview.WithScaleFactor(2),
//	))
//
// Loaded images and atlases are cached per path, so repeated lookups cost one
// map hit and each texture uploads once. Caches are bounded and evict the
// least recently used entry; [Loader.PurgeCache] empties them on demand.
//
// # Atlases
//
// [Atlas] consumes a TexturePacker/Zwoptex property-list document describing
// how sprites were packed into one page texture and registers a derived Image
// per frame name and alias, with trim offsets and rotation compensated:
//
//	atlas, err := glview.AtlasNamed("sprites")
//	atlas.ImageNamed("hero_idle.png").Draw(screen, glview.Vec2{X: 100, Y: 50})
//
// # PVR textures
//
// Files in the legacy PVR container decode entirely on the CPU: the 16-bit
// formats by bit replication, PVRTC 4bpp and 2bpp through a block decoder.
// The result uploads as plain RGBA. [DecodePVRHeader] and [DecodePVR] expose
// the decoder to tools; cmd/pvrtool inspects and converts files without
// opening a window.
//
// # Drawing and lifecycle
//
// Each draw call emits one textured quad on Ebitengine's game loop. Decoding
// and document parsing are pure and safe from any goroutine; concurrent first
// loads of the same path collapse into a single decode.
//
// The package logs nothing by default; hand a [log/slog.Logger] to
// [SetLogger] for load diagnostics.
//
// [Ebitengine]: https://ebitengine.org
package glview
