// Package atlas composites the bitmaps a model uses into one texture strip.
package atlas

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"saucer-wad-exporter/internal/wad"
)

// Source provides texture definitions and decoded bitmaps. *wad.Container
// implements it.
type Source interface {
	TextureDef(i int) (wad.TextureDefinition, bool)
	DecodeBitmap(i int) (*image.NRGBA, error)
}

// Atlas is a one-row strip of TileSize×TileSize tiles, one per distinct
// bitmap referenced by a model, in the order the faces first use them.
type Atlas struct {
	Image *image.NRGBA

	bitmaps []int          // slot → bitmap ID
	offsets map[uint32]int // texture definition → slot
	defs    map[uint32]wad.TextureDefinition
}

// Build collects the bitmaps referenced by m's faces and composites them.
// Bitmaps smaller than a tile sit at the tile's top-left corner.
func Build(src Source, m *wad.ModelData) (*Atlas, error) {
	a := &Atlas{
		offsets: make(map[uint32]int),
		defs:    make(map[uint32]wad.TextureDefinition),
	}
	slots := make(map[int]int)

	for i, f := range m.Faces {
		if _, ok := a.offsets[f.TextureIndex]; ok {
			continue
		}
		def, ok := src.TextureDef(int(f.TextureIndex))
		if !ok {
			return nil, fmt.Errorf("atlas: face %d: texture %d out of range", i, f.TextureIndex)
		}
		bm := int(def.BitmapIndex)
		slot, seen := slots[bm]
		if !seen {
			slot = len(a.bitmaps)
			slots[bm] = slot
			a.bitmaps = append(a.bitmaps, bm)
		}
		a.offsets[f.TextureIndex] = slot
		a.defs[f.TextureIndex] = def
	}

	a.Image = image.NewNRGBA(image.Rect(0, 0, wad.TileSize*len(a.bitmaps), wad.TileSize))
	for slot, bm := range a.bitmaps {
		img, err := src.DecodeBitmap(bm)
		if err != nil {
			return nil, fmt.Errorf("atlas: decode bitmap %d: %w", bm, err)
		}
		sr := img.Bounds()
		sr = sr.Intersect(image.Rect(0, 0, wad.TileSize, wad.TileSize).Add(sr.Min))
		draw.Copy(a.Image, image.Pt(slot*wad.TileSize, 0), img, sr, draw.Src, nil)
	}
	return a, nil
}

// Len returns the number of tiles.
func (a *Atlas) Len() int { return len(a.bitmaps) }

// Bitmaps returns the bitmap ID of every tile in slot order.
func (a *Atlas) Bitmaps() []int {
	out := make([]int, len(a.bitmaps))
	copy(out, a.bitmaps)
	return out
}

// Offset returns the horizontal start of the tile used by a texture
// definition, as a fraction of the atlas width. ok is false for texture
// definitions the model does not use.
func (a *Atlas) Offset(textureIndex uint32) (off float64, ok bool) {
	slot, ok := a.offsets[textureIndex]
	if !ok {
		return 0, false
	}
	return float64(slot) / float64(len(a.bitmaps)), true
}

// MapUV converts corner k of a texture definition to atlas space: the texel
// coordinate is normalized by TileSize-1 and U is squeezed into the tile's
// slice of the strip.
func (a *Atlas) MapUV(textureIndex uint32, k int) ([2]float64, bool) {
	off, ok := a.Offset(textureIndex)
	if !ok {
		return [2]float64{}, false
	}
	uv := a.defs[textureIndex].UVs[k]
	const texelMax = wad.TileSize - 1
	return [2]float64{
		float64(uv.U)/texelMax/float64(len(a.bitmaps)) + off,
		float64(uv.V) / texelMax,
	}, true
}
