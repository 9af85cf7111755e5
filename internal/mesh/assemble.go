package mesh

import (
	"fmt"

	"saucer-wad-exporter/internal/atlas"
	"saucer-wad-exporter/internal/mathutil"
	"saucer-wad-exporter/internal/wad"
)

// Set is the geometry of one model: every unmasked face batched into Solid,
// and one mesh per masked face. Solid may be empty.
type Set struct {
	Solid  *Mesh
	Masked []*Mesh
}

// Part is a mesh together with its alpha mode.
type Part struct {
	Mesh   *Mesh
	Masked bool
}

// Parts returns the solid mesh followed by the masked meshes.
func (s *Set) Parts() []Part {
	parts := make([]Part, 0, 1+len(s.Masked))
	parts = append(parts, Part{Mesh: s.Solid})
	for _, m := range s.Masked {
		parts = append(parts, Part{Mesh: m, Masked: true})
	}
	return parts
}

// Assemble builds the mesh set of a model. Vertices are converted to
// display coordinates and texture coordinates are mapped into a's strip.
func Assemble(model *wad.ModelData, a *atlas.Atlas) (*Set, error) {
	set := &Set{Solid: New()}

	for i, f := range model.Faces {
		idx := f.VertexIndices()
		positions := make([]mathutil.Vec3, len(idx))
		uvs := make([][2]float64, len(idx))
		for k, vi := range idx {
			if int(vi) >= len(model.Vertices) {
				return nil, fmt.Errorf("mesh: face %d: vertex %d out of range", i, vi)
			}
			v := model.Vertices[vi]
			positions[k] = mathutil.ToDisplay(v[0], v[1], v[2])

			uv, ok := a.MapUV(f.TextureIndex, k)
			if !ok {
				return nil, fmt.Errorf("mesh: face %d: texture %d not in atlas", i, f.TextureIndex)
			}
			uvs[k] = uv
		}

		dst := set.Solid
		if f.Masked {
			dst = New()
			set.Masked = append(set.Masked, dst)
		}
		if err := dst.AddFace(positions, uvs); err != nil {
			return nil, fmt.Errorf("mesh: face %d: %w", i, err)
		}
	}
	return set, nil
}
