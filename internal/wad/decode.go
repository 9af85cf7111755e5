package wad

import (
	"encoding/binary"
	"fmt"
	"image"
)

// DecodeBitmap converts bitmap i into an RGBA image. Every pixel is looked
// up in the palette; palette index 0 becomes fully transparent.
func (c *Container) DecodeBitmap(i int) (*image.NRGBA, error) {
	h, ok := c.Bitmap(i)
	if !ok {
		return nil, invalid("bitmap", i, "index %d out of range (%d bitmaps)", i, len(c.bitmaps))
	}

	w, ht := int(h.Width), int(h.Height)
	src, err := c.packedRange("bitmap pixels", int(h.Offset), w*ht)
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, ht))
	for y := 0; y < ht; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x, idx := range src[y*w : (y+1)*w] {
			col := c.palette[idx]
			row[x*4] = col.R
			row[x*4+1] = col.G
			row[x*4+2] = col.B
			if idx != 0 {
				row[x*4+3] = 255
			}
		}
	}
	return img, nil
}

// DecodeSoundByName looks up a sound by name and decodes it.
func (c *Container) DecodeSoundByName(name string) ([]byte, error) {
	h, ok := c.sounds.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: sound %q", ErrUnknownName, name)
	}
	return c.DecodeSound(h)
}

// DecodeSound rebuilds a complete WAVE file from the format chunk body and
// sample data the header points at. The two ranges need not be adjacent.
func (c *Container) DecodeSound(h SoundHeader) ([]byte, error) {
	format, err := c.packedRange("sound format", int(h.FormatOffset), soundFormatSize)
	if err != nil {
		return nil, err
	}
	samples, err := c.packedRange("sound data", int(h.DataOffset), int(h.DataLen))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 44+len(samples))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, h.DataLen+44)
	out = append(out, "WAVEfmt "...)
	out = binary.LittleEndian.AppendUint32(out, soundFormatSize)
	out = append(out, format...)
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, h.DataLen)
	out = append(out, samples...)
	return out, nil
}

// DecodeModelByName looks up a model by name and decodes it.
func (c *Container) DecodeModelByName(name string) (*ModelData, error) {
	h, ok := c.models.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: model %q", ErrUnknownName, name)
	}
	return c.DecodeModel(h)
}

// DecodeModel reads the vertices, faces and transform of a model.
//
// The geometry info is 16 bytes at DataOffset+40: vertex count, vertex
// offset, face count, face offset. Vertices are three int16 each. Faces are
// 32-byte records of which the first 14 bytes are used: texture index (u32),
// four vertex indices (u16) and a face type (u16).
func (c *Container) DecodeModel(h ModelHeader) (*ModelData, error) {
	info, err := c.packedRange("model info", int(h.DataOffset)+modelInfoOffset, 16)
	if err != nil {
		return nil, err
	}
	numVerts := binary.LittleEndian.Uint32(info[0:])
	vertOff := binary.LittleEndian.Uint32(info[4:])
	numFaces := binary.LittleEndian.Uint32(info[8:])
	faceOff := binary.LittleEndian.Uint32(info[12:])

	vdata, err := c.packedRange("model vertices", int(vertOff), int(numVerts)*vertexSize)
	if err != nil {
		return nil, err
	}
	faceBytes := 0
	if numFaces > 0 {
		faceBytes = int(numFaces-1)*faceRecordSize + faceUsedSize
	}
	fdata, err := c.packedRange("model faces", int(faceOff), faceBytes)
	if err != nil {
		return nil, err
	}
	mdata, err := c.packedRange("model matrix", int(h.MatrixOffset), matrixSize)
	if err != nil {
		return nil, err
	}

	m := &ModelData{
		Vertices: make([]Vertex, numVerts),
		Faces:    make([]Face, numFaces),
	}
	for i := range m.Vertices {
		b := vdata[i*vertexSize:]
		m.Vertices[i] = Vertex{
			int16(binary.LittleEndian.Uint16(b[0:])),
			int16(binary.LittleEndian.Uint16(b[2:])),
			int16(binary.LittleEndian.Uint16(b[4:])),
		}
	}

	for i := range m.Faces {
		b := fdata[i*faceRecordSize:]
		f := Face{TextureIndex: binary.LittleEndian.Uint32(b[0:])}
		for k := range f.Indices {
			f.Indices[k] = binary.LittleEndian.Uint16(b[4+k*2:])
		}
		if binary.LittleEndian.Uint16(b[12:]) == faceTypeTriangle {
			f.Kind = FaceTriangle
		} else {
			f.Kind = FaceQuad
		}

		def, ok := c.TextureDef(int(f.TextureIndex))
		if !ok {
			return nil, invalid("model faces", int(faceOff)+i*faceRecordSize,
				"face %d: texture %d out of range (%d definitions)", i, f.TextureIndex, len(c.textureDefs))
		}
		f.Masked = def.Masked()

		for _, vi := range f.VertexIndices() {
			if int(vi) >= len(m.Vertices) {
				return nil, invalid("model faces", int(faceOff)+i*faceRecordSize,
					"face %d: vertex %d out of range (%d vertices)", i, vi, len(m.Vertices))
			}
		}
		m.Faces[i] = f
	}

	for i := range m.Matrix {
		m.Matrix[i] = int16(binary.LittleEndian.Uint16(mdata[i*2:]))
	}
	return m, nil
}
