package math

// Vec2 holds a texture coordinate or any other pair of floats.
type Vec2 struct {
	X, Y float32
}

// FlipV mirrors a texture coordinate between bottom-left and top-left
// origin conventions.
func (v Vec2) FlipV() Vec2 {
	return Vec2{v.X, 1 - v.Y}
}

// Array returns the components as an array.
func (v Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}
