package wad

import (
	"bytes"
	"image/color"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// TileSize is the edge length of a texture page. Bitmaps never exceed it.
const TileSize = 256

// SupportedVersion is the only container version this package reads.
const SupportedVersion = 1

// Fixed sizes of the container layout.
const (
	distanceLUTSize  = 256 * 1024
	blendLUTSize     = 256 * 256 * 16
	numLanguages     = 7
	paletteSize      = 256 * 4
	nameSize         = 16
	namedTextureSize = 20
	bitmapRowSize    = 12
	textureDefSize   = 16
	unknownAssetSize = 28
	modelRowSize     = 36
	soundRowSize     = 116
	paletteTableSize = 5 * 4
	faceRecordSize   = 32
	faceUsedSize     = 14
	vertexSize       = 6
	matrixSize       = 24
	soundFormatSize  = 16
	modelInfoOffset  = 40
)

// ContainerHeader holds the scalar fields that follow the colour tables.
type ContainerHeader struct {
	Version         uint8
	PackedSize      uint32 // 24-bit size of the packed data region
	BackgroundIndex uint32 // palette index used to clear the screen
	DepthNear       uint32
	DepthFar        uint32
}

// BitmapHeader locates a palettized bitmap inside the packed data.
// Its position in the bitmap table is the bitmap ID.
type BitmapHeader struct {
	Offset uint32
	Width  uint16
	Height uint16
}

// UV is a texel-space coordinate in [0, TileSize-1].
type UV struct {
	U, V uint8
}

// TextureDefinition maps a quad of texel corners onto one bitmap.
type TextureDefinition struct {
	UVs         [4]UV
	BitmapIndex uint16
	Flags       uint16
}

// Masked reports whether palette index 0 is to be alpha-tested away.
func (d TextureDefinition) Masked() bool { return d.Flags&1 != 0 }

// ModelHeader holds the two packed-data offsets of a model.
type ModelHeader struct {
	DataOffset   uint32 // start of the model record; the geometry info sits 40 bytes in
	MatrixOffset uint32 // 12 signed 16-bit matrix entries
}

// SoundHeader locates the fragments of a WAVE file inside the packed data.
type SoundHeader struct {
	FormatOffset uint32 // 16-byte "fmt " chunk body
	DataOffset   uint32
	DataLen      uint32
}

// Palette is the 256-entry colour table at the start of the packed data.
// Index 0 doubles as the transparency key.
type Palette [256]color.NRGBA

// Language is one of the seven localized string tables.
type Language struct {
	ID    uint16
	Index []uint16
	Text  []byte
}

// Strings splits the language text into its NUL-terminated entries.
func (l Language) Strings() []string {
	var out []string
	for _, raw := range strings.Split(string(l.Text), "\x00") {
		if raw == "" {
			continue
		}
		out = append(out, decodeName([]byte(raw)))
	}
	return out
}

// FaceKind tells how many of a face's four indices are used.
type FaceKind uint8

const (
	FaceQuad FaceKind = iota
	FaceTriangle
)

// faceTypeTriangle is the on-disk face type value for triangles. Anything
// else is a quad.
const faceTypeTriangle = 0x1000

func (k FaceKind) String() string {
	if k == FaceTriangle {
		return "triangle"
	}
	return "quad"
}

// Vertex is a model-space position in the game's coordinate system.
type Vertex [3]int16

// Face is one polygon of a model.
type Face struct {
	TextureIndex uint32
	Kind         FaceKind
	Indices      [4]uint16
	Masked       bool
}

// VertexIndices returns the indices actually used by the face.
func (f Face) VertexIndices() []uint16 {
	if f.Kind == FaceTriangle {
		return f.Indices[:3]
	}
	return f.Indices[:4]
}

// ModelData is a decoded model. The 12-entry matrix holds three 1/512
// fixed-point basis columns followed by the translation.
type ModelData struct {
	Vertices []Vertex
	Faces    []Face
	Matrix   [12]int16
}

// decodeName converts a fixed-width NUL-padded name field.
func decodeName(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(s)
}
