package mathutil

// Mat4 is a 4×4 matrix stored row-major.
type Mat4 [16]float64

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 basis and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// FixedPointMatrix converts a model's 12-entry transform. Entries 0-8 are
// three basis columns in 1/FixedPointOne units, entries 9-11 the
// translation in model units.
func FixedPointMatrix(e [12]int16) Mat4 {
	col := func(i int) Vec3 {
		return Vec3{float64(e[i]), float64(e[i+1]), float64(e[i+2])}
	}
	basis := Mat3FromColumns(
		col(0).Scale(1/FixedPointOne),
		col(3).Scale(1/FixedPointOne),
		col(6).Scale(1/FixedPointOne),
	)
	return FromMat3Translation(basis, col(9))
}

// ColumnMajor returns the matrix in the column-major layout glTF uses.
func (m Mat4) ColumnMajor() [16]float64 {
	var out [16]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = m[r*4+c]
		}
	}
	return out
}
