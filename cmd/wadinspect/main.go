package main

import (
	"flag"
	"fmt"
	"os"

	"saucer-wad-exporter/internal/atlas"
	"saucer-wad-exporter/internal/mathutil"
	"saucer-wad-exporter/internal/wad"
)

func main() {
	verbose := flag.Bool("v", false, "List every bitmap, texture definition, model and sound")
	anyVersion := flag.Bool("any-version", false, "Read containers with an unexpected header version")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: wadinspect [-v] [-any-version] <wad_file>\n")
		os.Exit(1)
	}

	c, err := wad.ReadFileWith(flag.Arg(0), wad.Options{AnyVersion: *anyVersion})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	h := c.Header()
	bg := c.BackgroundColor()
	fmt.Printf("WAD Version %d\n", h.Version)
	fmt.Printf("Packed data: %d bytes\n", c.PackedSize())
	fmt.Printf("Background: index %d = #%02x%02x%02x, depth %d..%d\n", h.BackgroundIndex, bg.R, bg.G, bg.B, h.DepthNear, h.DepthFar)
	dist, blend := c.ColorTables()
	fmt.Printf("Colour tables: distance %d bytes, blend %d bytes\n", len(dist), len(blend))
	for n := 1; n <= 3; n++ {
		fmt.Printf("Blob%d: %d bytes\n", n, len(c.Blob(n)))
	}

	for i, l := range c.Languages() {
		fmt.Printf("Language[%d]: id=%d, index=%d, strings=%d, text=%d bytes\n", i, l.ID, len(l.Index), len(l.Strings()), len(l.Text))
	}

	fmt.Printf("Bitmaps: %d, Texture defs: %d\n", c.NumBitmaps(), c.NumTextureDefs())
	fmt.Printf("Exported textures: %d, Named textures: %d\n", c.ExportedTextures().Len(), c.NamedTextures().Len())
	fmt.Printf("Models: %d, Sounds: %d\n", c.Models().Len(), c.Sounds().Len())

	tables := []struct {
		kind string
		dups []string
	}{
		{"exported texture", c.ExportedTextures().Duplicates()},
		{"named texture", c.NamedTextures().Duplicates()},
		{"model", c.Models().Duplicates()},
		{"sound", c.Sounds().Duplicates()},
	}
	for _, t := range tables {
		for _, d := range t.dups {
			fmt.Printf("  duplicate %s name %q\n", t.kind, d)
		}
	}

	if !*verbose {
		return
	}

	fmt.Println("--- Bitmaps ---")
	for i := 0; i < c.NumBitmaps(); i++ {
		b, _ := c.Bitmap(i)
		fmt.Printf("  [%d] %dx%d @%d\n", i, b.Width, b.Height, b.Offset)
	}

	fmt.Println("--- Texture definitions ---")
	for i := 0; i < c.NumTextureDefs(); i++ {
		d, _ := c.TextureDef(i)
		fmt.Printf("  [%d] bitmap=%d masked=%v uv=%v\n", i, d.BitmapIndex, d.Masked(), d.UVs)
	}

	fmt.Println("--- Models ---")
	for _, e := range c.Models().Entries() {
		m, err := c.DecodeModel(e.Value)
		if err != nil {
			fmt.Printf("  %s: %v\n", e.Name, err)
			continue
		}
		tris, masked := 0, 0
		for _, f := range m.Faces {
			if f.Kind == wad.FaceTriangle {
				tris++
			}
			if f.Masked {
				masked++
			}
		}

		xf := mathutil.FixedPointMatrix(m.Matrix)
		box := mathutil.EmptyBox3()
		for _, v := range m.Vertices {
			box.Extend(xf.MulPoint(mathutil.ToDisplay(v[0], v[1], v[2])))
		}
		fmt.Printf("  %s: verts=%d, faces=%d (tris=%d, masked=%d)\n", e.Name, len(m.Vertices), len(m.Faces), tris, masked)
		if !box.Empty() {
			fmt.Printf("    BBox: X[%.1f, %.1f] Y[%.1f, %.1f] Z[%.1f, %.1f]\n",
				box.Min[0], box.Max[0], box.Min[1], box.Max[1], box.Min[2], box.Max[2])
		}
		if a, err := atlas.Build(c, m); err != nil {
			fmt.Printf("    Atlas: %v\n", err)
		} else if a.Len() > 0 {
			fmt.Printf("    Atlas: %d tiles, bitmaps %v\n", a.Len(), a.Bitmaps())
		}
	}

	fmt.Println("--- Sounds ---")
	for _, e := range c.Sounds().Entries() {
		fmt.Printf("  %s: %d bytes, fmt@%d data@%d\n", e.Name, e.Value.DataLen, e.Value.FormatOffset, e.Value.DataOffset)
	}
}
