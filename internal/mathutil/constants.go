package mathutil

// FixedPointOne is the value of 1.0 in the model matrix's basis columns.
const FixedPointOne = 512.0

// GameToDisplay converts the game's Y-down, Z-into-screen coordinates to the
// right-handed Y-up convention of glTF: diag(1, -1, -1).
var GameToDisplay = Mat3Diag(1, -1, -1)

// ToDisplay converts a model vertex to display coordinates.
func ToDisplay(x, y, z int16) Vec3 {
	return GameToDisplay.MulVec3(Vec3{float64(x), float64(y), float64(z)})
}
