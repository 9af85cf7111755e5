// Package scene writes a model as a self-contained glTF 2.0 document.
package scene

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"

	"saucer-wad-exporter/internal/atlas"
	"saucer-wad-exporter/internal/mathutil"
	"saucer-wad-exporter/internal/mesh"
	"saucer-wad-exporter/internal/texture"
	"saucer-wad-exporter/internal/wad"
)

const generator = "saucer-wad-exporter"

// Material indices. The masked material only exists when a masked mesh has
// geometry.
const (
	materialOpaque = 0
	materialMasked = 1
)

// Build lays out the mesh set as one scene with one node and one mesh. All
// vertex data goes first in the buffer, followed by all index data; each
// non-empty part gets a POSITION, TEXCOORD_0 and indices accessor.
func Build(set *mesh.Set, a *atlas.Atlas, matrix [12]int16) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator

	var parts []mesh.Part
	hasMasked := false
	for _, p := range set.Parts() {
		if p.Mesh.Empty() {
			continue
		}
		parts = append(parts, p)
		hasMasked = hasMasked || p.Masked
	}

	var vertices, indices []byte
	for _, p := range parts {
		vertices = append(vertices, p.Mesh.VertexData()...)
	}
	for _, p := range parts {
		indices = append(indices, p.Mesh.IndexData()...)
	}

	if len(parts) > 0 {
		blob := make([]byte, 0, len(vertices)+len(indices))
		blob = append(append(blob, vertices...), indices...)
		buf := &gltf.Buffer{ByteLength: len(blob), Data: blob}
		buf.EmbeddedResource()
		doc.Buffers = []*gltf.Buffer{buf}
		doc.BufferViews = []*gltf.BufferView{
			{
				Buffer:     0,
				ByteLength: len(vertices),
				ByteStride: mesh.VertexStride,
				Target:     gltf.TargetArrayBuffer,
			},
			{
				Buffer:     0,
				ByteOffset: len(vertices),
				ByteLength: len(indices),
				Target:     gltf.TargetElementArrayBuffer,
			},
		}
	}

	textured := a.Len() > 0
	if textured {
		var png bytes.Buffer
		if err := texture.Encode(&png, a.Image, texture.FormatPNG); err != nil {
			return nil, fmt.Errorf("scene: encode atlas: %w", err)
		}
		doc.Images = []*gltf.Image{{
			URI: "data:" + texture.FormatPNG.MimeType() + ";base64," + base64.StdEncoding.EncodeToString(png.Bytes()),
		}}
		doc.Samplers = []*gltf.Sampler{{
			MagFilter: gltf.MagNearest,
			MinFilter: gltf.MinNearest,
			WrapS:     gltf.WrapMirroredRepeat,
			WrapT:     gltf.WrapMirroredRepeat,
		}}
		doc.Textures = []*gltf.Texture{{Sampler: gltf.Index(0), Source: gltf.Index(0)}}
	}

	doc.Materials = []*gltf.Material{newMaterial(textured, gltf.AlphaOpaque)}
	if hasMasked {
		doc.Materials = append(doc.Materials, newMaterial(textured, gltf.AlphaMask))
	}

	gm := &gltf.Mesh{}
	var vertexOff, indexOff int
	for _, p := range parts {
		m := p.Mesh
		base := len(doc.Accessors)
		b, uv := m.Bounds(), m.UVBounds()

		doc.Accessors = append(doc.Accessors,
			&gltf.Accessor{
				BufferView:    gltf.Index(0),
				ByteOffset:    vertexOff,
				ComponentType: gltf.ComponentFloat,
				Count:         m.VertexCount(),
				Type:          gltf.AccessorVec3,
				Min:           b.Min[:],
				Max:           b.Max[:],
			},
			&gltf.Accessor{
				BufferView:    gltf.Index(0),
				ByteOffset:    vertexOff + 3*4,
				ComponentType: gltf.ComponentFloat,
				Count:         m.VertexCount(),
				Type:          gltf.AccessorVec2,
				Min:           uv.Min[:],
				Max:           uv.Max[:],
			},
			&gltf.Accessor{
				BufferView:    gltf.Index(1),
				ByteOffset:    indexOff,
				ComponentType: gltf.ComponentUshort,
				Count:         m.IndexCount(),
				Type:          gltf.AccessorScalar,
				Min:           []float64{0},
				Max:           []float64{float64(m.MaxIndex())},
			},
		)

		material := materialOpaque
		if p.Masked {
			material = materialMasked
		}
		gm.Primitives = append(gm.Primitives, &gltf.Primitive{
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION:   base,
				gltf.TEXCOORD_0: base + 1,
			},
			Indices:  gltf.Index(base + 2),
			Material: gltf.Index(material),
		})

		vertexOff += len(m.VertexData())
		indexOff += len(m.IndexData())
	}

	node := &gltf.Node{Matrix: mathutil.FixedPointMatrix(matrix).ColumnMajor()}
	// A mesh needs at least one primitive; face-less models keep only the node.
	if len(gm.Primitives) > 0 {
		doc.Meshes = []*gltf.Mesh{gm}
		node.Mesh = gltf.Index(0)
	}
	doc.Nodes = []*gltf.Node{node}
	doc.Scenes[0].Nodes = []int{0}
	return doc, nil
}

func newMaterial(textured bool, mode gltf.AlphaMode) *gltf.Material {
	pbr := &gltf.PBRMetallicRoughness{
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	if textured {
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: 0}
	}
	return &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: mode}
}

// Encode writes doc as glTF JSON.
func Encode(w io.Writer, doc *gltf.Document) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = false
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("scene: encode: %w", err)
	}
	return nil
}

// Export builds the atlas, meshes and document for a decoded model and
// returns the encoded glTF JSON.
func Export(src atlas.Source, model *wad.ModelData) ([]byte, error) {
	a, err := atlas.Build(src, model)
	if err != nil {
		return nil, err
	}
	set, err := mesh.Assemble(model, a)
	if err != nil {
		return nil, err
	}
	doc, err := Build(set, a, model.Matrix)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := Encode(&out, doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
