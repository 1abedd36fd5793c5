package math

import "github.com/chewxy/math32"

// Mat4 is a column-major 4x4 matrix, laid out the way glUniformMatrix4fv
// expects it: element (row, col) lives at index col*4+row.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Scale(1, 1, 1)
}

// Perspective returns a right-handed projection mapping depth to [-1, 1].
// fovY is in radians.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	depth := near - far

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / depth
	m[11] = -1
	m[14] = 2 * far * near / depth
	return m
}

// LookAt returns the view matrix of an eye at eye facing center.
func LookAt(eye, center, up Vec3) Mat4 {
	fwd := center.Sub(eye).Normalize()
	right := fwd.Cross(up).Normalize()
	camUp := right.Cross(fwd)

	return Mat4{
		right.X, camUp.X, -fwd.X, 0,
		right.Y, camUp.Y, -fwd.Y, 0,
		right.Z, camUp.Z, -fwd.Z, 0,
		-right.Dot(eye), -camUp.Dot(eye), fwd.Dot(eye), 1,
	}
}

// Translate returns a translation by (x, y, z).
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a per-axis scale.
func Scale(x, y, z float32) Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = x, y, z, 1
	return m
}

func (m Mat4) at(row, col int) float32 { return m[col*4+row] }

// Mul returns m * other, so other is applied first.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float32
			for k := range 4 {
				sum += m.at(row, k) * other.at(k, col)
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// TransformVec3 transforms a point, dividing by w when the matrix is
// projective.
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	out := Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
	}
	if w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]; w != 0 && w != 1 {
		out = out.Scale(1 / w)
	}
	return out
}

func (m Mat4) column(col int) Vec3 {
	return Vec3{m[col*4], m[col*4+1], m[col*4+2]}
}

// NormalMatrix returns the inverse transpose of the upper-left 3x3 block in
// column-major order. A singular block yields the identity.
func (m Mat4) NormalMatrix() [9]float32 {
	a, b, c := m.column(0), m.column(1), m.column(2)
	bc, ca, ab := b.Cross(c), c.Cross(a), a.Cross(b)
	det := a.Dot(bc)
	if det == 0 {
		return [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}
	inv := 1 / det
	return [9]float32{
		bc.X * inv, bc.Y * inv, bc.Z * inv,
		ca.X * inv, ca.Y * inv, ca.Z * inv,
		ab.X * inv, ab.Y * inv, ab.Z * inv,
	}
}

// Ptr returns a pointer to the first element for gl uniform uploads.
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}
