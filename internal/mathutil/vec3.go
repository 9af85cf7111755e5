package mathutil

import "math"

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 [3]float64

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Float32 narrows the vector for vertex buffers.
func (v Vec3) Float32() [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Box3 is an axis-aligned bounding box grown one point at a time.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox3 returns a box that any point will replace.
func EmptyBox3() Box3 {
	return Box3{
		Min: Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Max: Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
}

// Extend grows the box to contain p.
func (b *Box3) Extend(p Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
}

// Empty reports whether no point has been added.
func (b Box3) Empty() bool {
	return b.Min[0] > b.Max[0]
}

// Box2 is the two-component counterpart of Box3, used for texture coordinates.
type Box2 struct {
	Min, Max [2]float64
}

func EmptyBox2() Box2 {
	return Box2{
		Min: [2]float64{math.MaxFloat64, math.MaxFloat64},
		Max: [2]float64{-math.MaxFloat64, -math.MaxFloat64},
	}
}

func (b *Box2) Extend(p [2]float64) {
	for i := 0; i < 2; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
}
