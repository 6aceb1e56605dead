// Command pvrtool inspects and converts legacy PVR texture containers.
//
// Usage:
//
//	pvrtool info file.pvr ...
//	pvrtool dump [-webp] [-out dir] file.pvr ...
//
// info prints one line per file with the texture's dimensions, pixel format
// and payload layout. dump decodes each texture (including PVRTC-compressed
// ones) and writes it next to the input as a PNG, or as a lossless WebP with
// -webp. Gzipped inputs (.pvr.gz) are inflated transparently.
package main

import (
	"bytes"
	"compress/gzip"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	glview "github.com/ZuYuanZhou/GLView"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "info":
		os.Exit(runInfo(os.Args[2:]))
	case "dump":
		os.Exit(runDump(os.Args[2:]))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pvrtool info file.pvr ...")
	fmt.Fprintln(os.Stderr, "       pvrtool dump [-webp] [-out dir] file.pvr ...")
}

func runInfo(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}
	code := 0
	for _, p := range args {
		data, err := readTexture(p)
		if err != nil {
			fmt.Printf("ERR %s: %v\n", p, err)
			code = 1
			continue
		}
		info, err := glview.DecodePVRHeader(data)
		if err != nil {
			fmt.Printf("ERR %s: %v\n", p, err)
			code = 1
			continue
		}
		fmt.Printf("OK  %s  %dx%d  %s  %d bpp  compressed=%v alpha=%v mipmaps=%d payload=%d@%d\n",
			p, info.Width, info.Height, info.Format, info.BitsPerPixel,
			info.Compressed, info.HasAlpha, info.MipmapCount,
			info.PayloadSize, info.PayloadOffset)
	}
	return code
}

func runDump(args []string) int {
	flags := flag.NewFlagSet("dump", flag.ExitOnError)
	webp := flags.Bool("webp", false, "write lossless WebP instead of PNG")
	outDir := flags.String("out", "", "write outputs into this directory")
	flags.Parse(args)
	if flags.NArg() == 0 {
		usage()
		return 2
	}
	code := 0
	for _, p := range flags.Args() {
		if err := dumpOne(p, *outDir, *webp); err != nil {
			fmt.Printf("ERR %s: %v\n", p, err)
			code = 1
		}
	}
	return code
}

func dumpOne(p, outDir string, webp bool) error {
	data, err := readTexture(p)
	if err != nil {
		return err
	}
	info, img, err := glview.DecodePVR(data)
	if err != nil {
		return err
	}

	ext := ".png"
	if webp {
		ext = ".webp"
	}
	base := strings.TrimSuffix(p, ".gz")
	out := strings.TrimSuffix(base, filepath.Ext(base)) + ext
	if outDir != "" {
		out = filepath.Join(outDir, filepath.Base(out))
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if webp {
		err = nativewebp.Encode(f, img, nil)
	} else {
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("OK  %s -> %s  (%dx%d %s)\n", p, out, info.Width, info.Height, info.Format)
	return nil
}

// readTexture loads a file, inflating it when it carries a gzip header.
func readTexture(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return io.ReadAll(r)
	}
	return data, nil
}
