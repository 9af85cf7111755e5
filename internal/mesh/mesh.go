// Package mesh turns decoded model faces into glTF-ready vertex and index
// buffers.
package mesh

import (
	"encoding/binary"
	"errors"
	"math"

	"saucer-wad-exporter/internal/mathutil"
)

// VertexStride is the byte size of one interleaved vertex: a float32
// position followed by a float32 texture coordinate.
const VertexStride = 5 * 4

// ErrIndexOverflow is returned when a mesh would need vertex indices beyond
// the 16-bit range.
var ErrIndexOverflow = errors.New("mesh: vertex index exceeds 16 bits")

var (
	triangleOrder = []uint16{0, 2, 1}
	quadOrder     = []uint16{0, 3, 1, 1, 3, 2}
)

// Mesh accumulates faces into an interleaved vertex buffer and a uint16
// index buffer, tracking the bounds of everything appended. A Mesh is not
// safe for concurrent use.
type Mesh struct {
	vertices []byte
	indices  []byte
	bounds   mathutil.Box3
	uvBounds mathutil.Box2
	next     int
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{
		bounds:   mathutil.EmptyBox3(),
		uvBounds: mathutil.EmptyBox2(),
	}
}

// AddFace appends a triangle (3 corners) or quad (4 corners) and its
// indices. Triangles are emitted as (0,2,1), quads as (0,3,1),(1,3,2).
func (m *Mesh) AddFace(positions []mathutil.Vec3, uvs [][2]float64) error {
	var order []uint16
	switch len(positions) {
	case 3:
		order = triangleOrder
	case 4:
		order = quadOrder
	default:
		return errors.New("mesh: face must have 3 or 4 corners")
	}
	if len(uvs) != len(positions) {
		return errors.New("mesh: corner and texture coordinate counts differ")
	}
	if m.next+len(positions) > math.MaxUint16+1 {
		return ErrIndexOverflow
	}

	for i, p := range positions {
		pos := p.Float32()
		uv := [2]float32{float32(uvs[i][0]), float32(uvs[i][1])}

		// Bounds are taken from the stored float32 values so accessor
		// min/max match the buffer exactly.
		m.bounds.Extend(mathutil.Vec3{float64(pos[0]), float64(pos[1]), float64(pos[2])})
		m.uvBounds.Extend([2]float64{float64(uv[0]), float64(uv[1])})

		for _, f := range [5]float32{pos[0], pos[1], pos[2], uv[0], uv[1]} {
			m.vertices = binary.LittleEndian.AppendUint32(m.vertices, math.Float32bits(f))
		}
	}
	for _, k := range order {
		m.indices = binary.LittleEndian.AppendUint16(m.indices, uint16(m.next)+k)
	}
	m.next += len(positions)
	return nil
}

// VertexData returns the interleaved vertex buffer.
func (m *Mesh) VertexData() []byte { return m.vertices }

// IndexData returns the little-endian uint16 index buffer.
func (m *Mesh) IndexData() []byte { return m.indices }

// VertexCount returns the number of appended vertices.
func (m *Mesh) VertexCount() int { return m.next }

// IndexCount returns the number of appended indices.
func (m *Mesh) IndexCount() int { return len(m.indices) / 2 }

// MaxIndex returns the largest index in the mesh, or -1 when it is empty.
func (m *Mesh) MaxIndex() int { return m.next - 1 }

// Empty reports whether no face has been added.
func (m *Mesh) Empty() bool { return m.next == 0 }

// Bounds returns the position bounding box.
func (m *Mesh) Bounds() mathutil.Box3 { return m.bounds }

// UVBounds returns the texture coordinate bounding box.
func (m *Mesh) UVBounds() mathutil.Box2 { return m.uvBounds }
