// Package wad reads the asset container of Attack of the Saucerman and decodes
// its bitmaps, sounds and models.
//
// A container has no signature. It is a fixed sequence of little-endian
// tables followed by one packed data region that every table addresses by
// offset. Load reads the whole sequence at once; the resulting Container is
// never modified and may be shared between goroutines.
package wad

import (
	"bytes"
	"fmt"
	"image/color"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Container is a fully loaded asset container.
type Container struct {
	header ContainerHeader

	distanceLUT []byte
	blendLUT    []byte

	blobs     [3][]byte
	languages []Language

	bitmaps          []BitmapHeader
	exportedTextures NameTable[uint32]
	textureDefs      []TextureDefinition
	models           NameTable[ModelHeader]
	sounds           NameTable[SoundHeader]
	namedTextures    NameTable[uint32]

	palette Palette
	packed  []byte
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Options relaxes the checks Load applies.
type Options struct {
	// AnyVersion reads containers whose header version is not
	// SupportedVersion instead of failing with ErrUnsupportedVersion.
	AnyVersion bool
}

// ReadFile loads a container from disk. Files compressed with zstd are
// inflated first.
func ReadFile(path string) (*Container, error) {
	return ReadFileWith(path, Options{})
}

// ReadFileWith is ReadFile with explicit options.
func ReadFileWith(path string, opts Options) (*Container, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wad: read %s: %w", path, err)
	}

	if bytes.HasPrefix(raw, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("wad: zstd reader: %w", err)
		}
		defer dec.Close()
		raw, err = dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("wad: inflate %s: %w", path, err)
		}
	}

	c, err := LoadWith(raw, opts)
	if err != nil {
		return nil, fmt.Errorf("wad: load %s: %w", path, err)
	}
	return c, nil
}

// Load parses a complete container. It fails with a *FormatError when the
// data ends inside a table, a declared size does not fit or the header
// version is not SupportedVersion. The container
// keeps slices of data, which must not be modified afterwards.
func Load(data []byte) (*Container, error) {
	return LoadWith(data, Options{})
}

// LoadWith is Load with explicit options.
func LoadWith(data []byte, opts Options) (*Container, error) {
	r := &reader{data: data}
	c := &Container{}

	r.enter("colour tables")
	c.distanceLUT = r.take(distanceLUTSize)
	c.blendLUT = r.take(blendLUTSize)

	r.enter("header")
	info := r.readU32()
	header := ContainerHeader{
		Version:    uint8(info >> 24),
		PackedSize: info & 0xFFFFFF,
	}
	header.BackgroundIndex = r.readU32()
	header.DepthNear = r.readU32()
	header.DepthFar = r.readU32()
	if r.err != nil {
		return nil, r.err
	}
	if header.Version != SupportedVersion && !opts.AnyVersion {
		return nil, &FormatError{
			Section: "header",
			Offset:  r.off - 16,
			Detail:  fmt.Sprintf("unsupported version %d", header.Version),
			Err:     ErrUnsupportedVersion,
		}
	}
	c.header = header

	r.enter("blob1")
	c.blobs[0] = r.readBlob()
	r.enter("blob2")
	c.blobs[1] = r.readBlob()

	c.languages = readLanguages(r)

	r.enter("blob3")
	c.blobs[2] = r.readBlob()

	r.enter("unused table")
	r.skip(4)
	r.skip(r.readCount(4) * 4)

	r.enter("bitmap table")
	c.bitmaps = make([]BitmapHeader, r.readCount(bitmapRowSize))
	for i := range c.bitmaps {
		offset := r.readU32()
		r.skip(4)
		c.bitmaps[i] = BitmapHeader{Offset: offset, Width: r.readU16(), Height: r.readU16()}
	}

	r.enter("exported texture table")
	c.exportedTextures = readIndexTable(r, nameSize)

	r.enter("texture definitions")
	c.textureDefs = make([]TextureDefinition, r.readCount(textureDefSize))
	for i := range c.textureDefs {
		c.textureDefs[i] = readTextureDef(r)
	}

	r.enter("unknown asset table")
	r.skip(r.readCount(unknownAssetSize) * unknownAssetSize)

	r.enter("model table")
	modelNames := readNames(r, nameSize+modelRowSize)
	models := make([]ModelHeader, len(modelNames))
	for i := range models {
		dataOff := r.readU32()
		r.skip(8)
		matrixOff := r.readU32()
		r.skip(20)
		models[i] = ModelHeader{DataOffset: dataOff, MatrixOffset: matrixOff}
	}
	c.models = newNameTable(modelNames, models)

	r.enter("sound table")
	soundNames := readNames(r, nameSize+soundRowSize)
	sounds := make([]SoundHeader, len(soundNames))
	for i := range sounds {
		sounds[i] = SoundHeader{
			FormatOffset: r.readU32(),
			DataOffset:   r.readU32(),
			DataLen:      r.readU32(),
		}
		r.skip(soundRowSize - 12)
	}
	c.sounds = newNameTable(soundNames, sounds)

	// Always [0, -1, -1, -1, -1] in shipped files.
	r.enter("palette table")
	r.skip(paletteTableSize)

	r.enter("named texture table")
	c.namedTextures = readIndexTable(r, namedTextureSize)

	r.enter("debug names")
	numDebugNames := r.readCount(nameSize)
	r.skip(numDebugNames * nameSize)
	count := int(r.readU32())
	if r.err != nil {
		return nil, r.err
	}
	trailer := (numDebugNames-count)*4 + 8
	if trailer < 0 {
		return nil, invalid("debug names", r.off, "count %d exceeds %d debug names", count, numDebugNames)
	}
	r.skip(trailer)

	r.enter("packed data")
	packed := r.take(int(header.PackedSize))
	if r.err != nil {
		return nil, r.err
	}
	if len(packed) < paletteSize {
		return nil, truncated("palette", 0, paletteSize, len(packed))
	}
	c.packed = packed
	c.palette = readPalette(packed)

	return c, nil
}

func readLanguages(r *reader) []Language {
	type langHeader struct {
		id, entries uint16
		start, end  uint32
	}

	r.enter("language headers")
	var headers [numLanguages]langHeader
	for i := range headers {
		headers[i] = langHeader{
			id:      r.readU16(),
			entries: r.readU16(),
			start:   r.readU32(),
			end:     r.readU32(),
		}
	}

	r.enter("language index tables")
	langs := make([]Language, numLanguages)
	for i, h := range headers {
		idx := make([]uint16, h.entries)
		for j := range idx {
			idx[j] = r.readU16()
		}
		langs[i] = Language{ID: h.id, Index: idx}
	}

	r.enter("language text")
	text := r.readBlob()
	if r.err != nil {
		return nil
	}
	for i, h := range headers {
		if h.start > h.end || int(h.end) > len(text) {
			r.err = invalid("language text", r.off, "language %d range [%d:%d] outside %d bytes", i, h.start, h.end, len(text))
			return nil
		}
		langs[i].Text = text[h.start:h.end]
	}
	return langs
}

func readIndexTable(r *reader, size int) NameTable[uint32] {
	n := r.readCount(4 + size)
	names := make([]string, n)
	indices := make([]uint32, n)
	for i := 0; i < n; i++ {
		indices[i] = r.readU32()
		names[i] = r.readName(size)
	}
	return newNameTable(names, indices)
}

// readNames reads the count and the batch of names that precedes a batch
// of fixed-size headers. rowSize covers one name plus one header.
func readNames(r *reader, rowSize int) []string {
	names := make([]string, r.readCount(rowSize))
	for i := range names {
		names[i] = r.readName(nameSize)
	}
	return names
}

func readTextureDef(r *reader) TextureDefinition {
	var d TextureDefinition
	d.UVs[0] = UV{U: r.readU8(), V: r.readU8()}
	d.BitmapIndex = r.readU16()
	d.UVs[1] = UV{U: r.readU8(), V: r.readU8()}
	r.skip(2)
	d.UVs[2] = UV{U: r.readU8(), V: r.readU8()}
	r.skip(2)
	d.UVs[3] = UV{U: r.readU8(), V: r.readU8()}
	d.Flags = r.readU16()
	return d
}

func readPalette(packed []byte) Palette {
	var p Palette
	for i := range p {
		p[i] = color.NRGBA{R: packed[i*4], G: packed[i*4+1], B: packed[i*4+2], A: 255}
	}
	return p
}

// Header returns the container header.
func (c *Container) Header() ContainerHeader { return c.header }

// Palette returns the colour table with full opacity on every entry.
func (c *Container) Palette() Palette { return c.palette }

// BackgroundColor returns the palette colour the game clears the screen with.
func (c *Container) BackgroundColor() color.NRGBA {
	return c.palette[uint8(c.header.BackgroundIndex)]
}

// ColorTables returns the distance and blend lookup tables. The slices are
// shared and must not be modified.
func (c *Container) ColorTables() (distance, blend []byte) {
	return c.distanceLUT, c.blendLUT
}

// Blob returns one of the three opaque data blocks (n is 1, 2 or 3). The
// slice is shared and must not be modified.
func (c *Container) Blob(n int) []byte {
	if n < 1 || n > len(c.blobs) {
		return nil
	}
	return c.blobs[n-1]
}

// Languages returns the seven localized string tables.
func (c *Container) Languages() []Language {
	out := make([]Language, len(c.languages))
	copy(out, c.languages)
	return out
}

// NumBitmaps returns the number of bitmap headers.
func (c *Container) NumBitmaps() int { return len(c.bitmaps) }

// Bitmap returns the header of bitmap i.
func (c *Container) Bitmap(i int) (BitmapHeader, bool) {
	if i < 0 || i >= len(c.bitmaps) {
		return BitmapHeader{}, false
	}
	return c.bitmaps[i], true
}

// NumTextureDefs returns the number of texture definitions.
func (c *Container) NumTextureDefs() int { return len(c.textureDefs) }

// TextureDef returns texture definition i.
func (c *Container) TextureDef(i int) (TextureDefinition, bool) {
	if i < 0 || i >= len(c.textureDefs) {
		return TextureDefinition{}, false
	}
	return c.textureDefs[i], true
}

// ExportedTextures maps the names of map-exported texture pages to bitmap IDs.
func (c *Container) ExportedTextures() NameTable[uint32] { return c.exportedTextures }

// NamedTextures maps texture names to bitmap IDs.
func (c *Container) NamedTextures() NameTable[uint32] { return c.namedTextures }

// Models returns the model table.
func (c *Container) Models() NameTable[ModelHeader] { return c.models }

// Sounds returns the sound table.
func (c *Container) Sounds() NameTable[SoundHeader] { return c.sounds }

// PackedSize returns the length of the packed data region.
func (c *Container) PackedSize() int { return len(c.packed) }

// packedRange returns packed[off:off+n] or a FormatError.
func (c *Container) packedRange(section string, off, n int) ([]byte, error) {
	if n < 0 || off < 0 || off > len(c.packed) || n > len(c.packed)-off {
		return nil, truncated(section, off, n, max(len(c.packed)-off, 0))
	}
	return c.packed[off : off+n], nil
}
