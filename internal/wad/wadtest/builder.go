// Package wadtest builds small synthetic containers for tests.
package wadtest

import (
	"encoding/binary"

	"saucer-wad-exporter/internal/wad"
)

// Bitmap is a palettized image. Pixels holds Width*Height palette indices.
type Bitmap struct {
	Width, Height int
	Pixels        []byte
}

// Named is one row of a name → bitmap index table.
type Named struct {
	Name  string
	Index uint32
}

// Face is a model face as stored on disk.
type Face struct {
	Texture  uint32
	Indices  [4]uint16
	Triangle bool
}

// Model is a named model record.
type Model struct {
	Name     string
	Vertices []wad.Vertex
	Faces    []Face
	Matrix   [12]int16
}

// Sound is a named sound record.
type Sound struct {
	Name   string
	Format [16]byte
	Data   []byte
}

// Language is one language table.
type Language struct {
	ID    uint16
	Index []uint16
	Text  []byte
}

// Builder describes a container. The zero value plus Version 0 produces a
// version 1 container with an empty palette.
type Builder struct {
	Version    uint8
	Background uint32
	DepthNear  uint32
	DepthFar   uint32
	Palette    [256][3]uint8
	Blobs      [3][]byte
	Languages  []Language

	Bitmaps          []Bitmap
	ExportedTextures []Named
	TextureDefs      []wad.TextureDefinition
	UnknownAssets    int
	Models           []Model
	Sounds           []Sound
	NamedTextures    []Named

	DebugNames int
	DebugCount int
}

// GrayPalette returns a palette whose entry i is (i, 255-i, i/2), so every
// entry is distinct.
func GrayPalette() [256][3]uint8 {
	var p [256][3]uint8
	for i := range p {
		p[i] = [3]uint8{uint8(i), uint8(255 - i), uint8(i / 2)}
	}
	return p
}

// SolidBitmap returns a w×h bitmap filled with one palette index.
func SolidBitmap(w, h int, index byte) Bitmap {
	px := make([]byte, w*h)
	for i := range px {
		px[i] = index
	}
	return Bitmap{Width: w, Height: h, Pixels: px}
}

type writer struct{ buf []byte }

func (w *writer) u8(v uint8)     { w.buf = append(w.buf, v) }
func (w *writer) u16(v uint16)   { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32)   { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) zero(n int)     { w.buf = append(w.buf, make([]byte, n)...) }
func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }
func (w *writer) pos() uint32    { return uint32(len(w.buf)) }

func (w *writer) blob(b []byte) {
	w.u32(uint32(len(b)))
	w.bytes(b)
}

func (w *writer) name(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.bytes(b)
}

// Bytes encodes the container.
func (b *Builder) Bytes() []byte {
	packed, bitmapOffs, modelOffs, soundOffs := b.packed()

	w := &writer{}
	w.zero(256 * 1024)
	w.zero(256 * 256 * 16)

	version := b.Version
	if version == 0 {
		version = wad.SupportedVersion
	}
	w.u32(uint32(version)<<24 | uint32(len(packed)))
	w.u32(b.Background)
	w.u32(b.DepthNear)
	w.u32(b.DepthFar)

	w.blob(b.Blobs[0])
	w.blob(b.Blobs[1])

	var text []byte
	langs := make([]Language, 7)
	copy(langs, b.Languages)
	for _, l := range langs {
		w.u16(l.ID)
		w.u16(uint16(len(l.Index)))
		w.u32(uint32(len(text)))
		text = append(text, l.Text...)
		w.u32(uint32(len(text)))
	}
	for _, l := range langs {
		for _, v := range l.Index {
			w.u16(v)
		}
	}
	w.blob(text)

	w.blob(b.Blobs[2])

	w.zero(4)
	w.u32(0)

	w.u32(uint32(len(b.Bitmaps)))
	for i, bm := range b.Bitmaps {
		w.u32(bitmapOffs[i])
		w.zero(4)
		w.u16(uint16(bm.Width))
		w.u16(uint16(bm.Height))
	}

	w.u32(uint32(len(b.ExportedTextures)))
	for _, n := range b.ExportedTextures {
		w.u32(n.Index)
		w.name(n.Name, 16)
	}

	w.u32(uint32(len(b.TextureDefs)))
	for _, d := range b.TextureDefs {
		w.u8(d.UVs[0].U)
		w.u8(d.UVs[0].V)
		w.u16(d.BitmapIndex)
		w.u8(d.UVs[1].U)
		w.u8(d.UVs[1].V)
		w.zero(2)
		w.u8(d.UVs[2].U)
		w.u8(d.UVs[2].V)
		w.zero(2)
		w.u8(d.UVs[3].U)
		w.u8(d.UVs[3].V)
		w.u16(d.Flags)
	}

	w.u32(uint32(b.UnknownAssets))
	w.zero(28 * b.UnknownAssets)

	w.u32(uint32(len(b.Models)))
	for _, m := range b.Models {
		w.name(m.Name, 16)
	}
	for i := range b.Models {
		w.u32(modelOffs[i][0])
		w.zero(8)
		w.u32(modelOffs[i][1])
		w.zero(20)
	}

	w.u32(uint32(len(b.Sounds)))
	for _, s := range b.Sounds {
		w.name(s.Name, 16)
	}
	for i, s := range b.Sounds {
		w.u32(soundOffs[i][0])
		w.u32(soundOffs[i][1])
		w.u32(uint32(len(s.Data)))
		w.zero(104)
	}

	w.u32(0)
	for i := 0; i < 4; i++ {
		w.u32(0xFFFFFFFF)
	}

	w.u32(uint32(len(b.NamedTextures)))
	for _, n := range b.NamedTextures {
		w.u32(n.Index)
		w.name(n.Name, 20)
	}

	w.u32(uint32(b.DebugNames))
	w.zero(16 * b.DebugNames)
	w.u32(uint32(b.DebugCount))
	if n := (b.DebugNames-b.DebugCount)*4 + 8; n > 0 {
		w.zero(n)
	}

	w.bytes(packed)
	return w.buf
}

// packed lays out the packed data region: palette, bitmaps, sounds (sample
// data before the format block, with a gap), then models.
func (b *Builder) packed() (buf []byte, bitmaps []uint32, models [][2]uint32, sounds [][2]uint32) {
	p := &writer{}
	for _, c := range b.Palette {
		p.bytes(c[:])
		p.u8(0)
	}

	for _, bm := range b.Bitmaps {
		bitmaps = append(bitmaps, p.pos())
		p.bytes(bm.Pixels)
	}

	for _, s := range b.Sounds {
		dataOff := p.pos()
		p.bytes(s.Data)
		p.zero(8)
		fmtOff := p.pos()
		p.bytes(s.Format[:])
		sounds = append(sounds, [2]uint32{fmtOff, dataOff})
	}

	for _, m := range b.Models {
		base := p.pos()
		p.zero(40)
		infoAt := len(p.buf)
		p.zero(16)
		p.zero(24)

		vertOff := p.pos()
		for _, v := range m.Vertices {
			p.u16(uint16(v[0]))
			p.u16(uint16(v[1]))
			p.u16(uint16(v[2]))
		}
		faceOff := p.pos()
		for _, f := range m.Faces {
			p.u32(f.Texture)
			for _, i := range f.Indices {
				p.u16(i)
			}
			if f.Triangle {
				p.u16(0x1000)
			} else {
				p.u16(0x8000)
			}
			p.zero(18)
		}
		matrixOff := p.pos()
		for _, v := range m.Matrix {
			p.u16(uint16(v))
		}

		info := p.buf[infoAt : infoAt+16]
		binary.LittleEndian.PutUint32(info[0:], uint32(len(m.Vertices)))
		binary.LittleEndian.PutUint32(info[4:], vertOff)
		binary.LittleEndian.PutUint32(info[8:], uint32(len(m.Faces)))
		binary.LittleEndian.PutUint32(info[12:], faceOff)

		models = append(models, [2]uint32{base, matrixOff})
	}

	return p.buf, bitmaps, models, sounds
}

// Load encodes the builder and loads the result, panicking on failure.
func (b *Builder) Load() *wad.Container {
	c, err := wad.Load(b.Bytes())
	if err != nil {
		panic(err)
	}
	return c
}
