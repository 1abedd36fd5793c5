package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/r4/pkg/math"
)

func assertVec3(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4)
	assert.InDelta(t, want.Y, got.Y, 1e-4)
	assert.InDelta(t, want.Z, got.Z, 1e-4)
}

func TestOrbitPosition(t *testing.T) {
	c := NewOrbit(10)
	c.RotationX = 0
	assertVec3(t, math.Vec3{Z: 10}, c.Position())

	c.RotationY = math32.Pi / 2
	assertVec3(t, math.Vec3{X: 10}, c.Position())

	c.RotationX = math32.Pi / 2
	c.Center = math.Vec3{X: 1, Y: 2, Z: 3}
	assertVec3(t, math.Vec3{X: 1, Y: 12, Z: 3}, c.Position())
}

func TestOrbitViewMatrixLooksAtCenter(t *testing.T) {
	c := NewOrbit(5)
	c.Center = math.Vec3{X: 2, Y: 1}
	c.HandleDrag(40, -20)

	// The center lies on the view axis, Distance units in front.
	got := c.ViewMatrix().TransformVec3(c.Center)
	assertVec3(t, math.Vec3{Z: -5}, got)
}

func TestOrbitClamps(t *testing.T) {
	c := NewOrbit(10)
	c.HandleDrag(0, 10000)
	assert.Equal(t, c.MaxPitch, c.RotationX)
	c.HandleDrag(0, -10000)
	assert.Equal(t, c.MinPitch, c.RotationX)

	for i := 0; i < 100; i++ {
		c.HandleZoom(5)
	}
	assert.Equal(t, c.MinDistance, c.Distance)
	for i := 0; i < 1000; i++ {
		c.HandleZoom(-5)
	}
	assert.Equal(t, c.MaxDistance, c.Distance)
}

func TestOrbitMovement(t *testing.T) {
	c := NewOrbit(100)
	c.HandleMovement(1, 0, 0)
	assertVec3(t, math.Vec3{Z: -1}, c.Center)

	c.HandleMovement(0, 1, 0.5)
	assertVec3(t, math.Vec3{X: 1, Y: 0.5, Z: -1}, c.Center)
}

func TestOrbitFitToBounds(t *testing.T) {
	c := NewOrbit(1)
	c.FitToBounds(math.Vec3{X: -2, Y: 0, Z: -2}, math.Vec3{X: 2, Y: 1, Z: 2})

	assertVec3(t, math.Vec3{Y: 0.5}, c.Center)
	assert.InDelta(t, 1.2*math32.Sqrt(33), c.Distance, 1e-4)
	assert.Equal(t, float32(0.6), c.RotationX)
}

func TestFirstPersonLookAndMove(t *testing.T) {
	c := NewFirstPerson(math.Vec3{Y: 2}, 4, 0.01)
	assertVec3(t, math.Vec3{Z: -1}, c.Forward())
	assertVec3(t, math.Vec3{X: 1}, c.Right())

	c.HandleMovement(1, 0, 0, 0.5)
	assertVec3(t, math.Vec3{Y: 2, Z: -2}, c.Eye)

	c.HandleLook(math32.Pi/2/0.01, 0)
	assertVec3(t, math.Vec3{X: 1}, c.Forward())
	c.HandleMovement(0, 1, 0, 0.25)
	assertVec3(t, math.Vec3{Y: 2, Z: -1}, c.Eye)
}

func TestFirstPersonPitchIgnoredForWalking(t *testing.T) {
	c := NewFirstPerson(math.Vec3{}, 1, 0.01)
	c.HandleLook(0, -1000)
	assert.InDelta(t, 1.55, c.Pitch, 1e-6)

	c.HandleMovement(1, 0, 0, 1)
	assertVec3(t, math.Vec3{Z: -1}, c.Eye)
}

func TestFirstPersonViewMatrix(t *testing.T) {
	c := NewFirstPerson(math.Vec3{X: 3, Y: 1, Z: 3}, 1, 0.01)
	got := c.ViewMatrix().TransformVec3(math.Vec3{X: 3, Y: 1, Z: 0})
	assertVec3(t, math.Vec3{Z: -3}, got)
}

type slope struct{}

func (slope) HeightAt(x, z float32) float32 { return x + z }

func TestFirstPersonFollowGround(t *testing.T) {
	c := NewFirstPerson(math.Vec3{X: 1, Y: 100, Z: 2}, 1, 0.01)
	c.FollowGround(slope{}, 1.5)
	assert.Equal(t, float32(4.5), c.Eye.Y)
}

func TestProjection(t *testing.T) {
	p := Projection{FOV: 90, Near: 1, Far: 10}
	p.SetViewport(200, 100)
	assert.Equal(t, float32(2), p.Aspect)

	m := p.Matrix()
	assert.InDelta(t, 0.5, m[0], 1e-5)
	assert.InDelta(t, 1, m[5], 1e-5)

	p.SetViewport(10, 0)
	assert.Equal(t, float32(2), p.Aspect)
}
