// Package camera provides camera implementations for 3D rendering.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/r4/pkg/math"
)

// Camera produces the view transform for a frame.
type Camera interface {
	Position() math.Vec3
	ViewMatrix() math.Mat4
}

var (
	_ Camera = (*Orbit)(nil)
	_ Camera = (*FirstPerson)(nil)
)

var worldUp = math.Vec3{Y: 1}

// Projection holds perspective parameters.
type Projection struct {
	FOV    float32 // Vertical, degrees
	Aspect float32
	Near   float32
	Far    float32
}

// Matrix returns the projection matrix.
func (p Projection) Matrix() math.Mat4 {
	aspect := p.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return math.Perspective(p.FOV*math32.Pi/180, aspect, p.Near, p.Far)
}

// SetViewport updates the aspect ratio from a framebuffer size.
func (p *Projection) SetViewport(width, height int) {
	if height > 0 {
		p.Aspect = float32(width) / float32(height)
	}
}

// Orbit orbits around a center point.
type Orbit struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit creates an orbit camera at the given distance.
func NewOrbit(distance float32) *Orbit {
	return &Orbit{
		Distance:        distance,
		RotationX:       0.5,
		MinDistance:     0.5,
		MaxDistance:     5000,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *Orbit) Position() math.Vec3 {
	sp, cp := math32.Sincos(c.RotationX)
	sy, cy := math32.Sincos(c.RotationY)
	return c.Center.Add(math.Vec3{X: cp * sy, Y: sp, Z: cp * cy}.Scale(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *Orbit) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, worldUp)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *Orbit) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX = clamp(c.RotationX+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *Orbit) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point. Speed scales with distance.
func (c *Orbit) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01
	sy, cy := math32.Sincos(c.RotationY)

	// Negate forward so W moves "into" the scene
	c.Center.X += (-sy*forward + cy*right) * speed
	c.Center.Z += (-cy*forward - sy*right) * speed
	c.Center.Y += up * speed
}

// FitToBounds centers the camera on a box and backs off far enough to see it.
func (c *Orbit) FitToBounds(lo, hi math.Vec3) {
	c.Center = lo.Add(hi).Scale(0.5)
	c.Distance = clamp(hi.Sub(lo).Length()*1.2, c.MinDistance, c.MaxDistance)
	c.RotationX = 0.6 // Look down at ~35 degrees
	c.RotationY = 0
}

// FirstPerson is a free-look camera that walks over the scene.
type FirstPerson struct {
	Eye   math.Vec3
	Yaw   float32 // Radians, 0 looks down -Z
	Pitch float32 // Radians, positive looks up

	MoveSpeed   float32 // Units per second
	Sensitivity float32 // Radians per pixel
}

// NewFirstPerson creates a first-person camera at eye.
func NewFirstPerson(eye math.Vec3, moveSpeed, sensitivity float32) *FirstPerson {
	return &FirstPerson{Eye: eye, MoveSpeed: moveSpeed, Sensitivity: sensitivity}
}

// Position returns the eye position.
func (c *FirstPerson) Position() math.Vec3 { return c.Eye }

// Forward returns the unit view direction.
func (c *FirstPerson) Forward() math.Vec3 {
	sp, cp := math32.Sincos(c.Pitch)
	sy, cy := math32.Sincos(c.Yaw)
	return math.Vec3{X: cp * sy, Y: sp, Z: -cp * cy}
}

// Right returns the unit right direction on the XZ plane.
func (c *FirstPerson) Right() math.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	return math.Vec3{X: cy, Z: sy}
}

// ViewMatrix returns the view matrix for this camera.
func (c *FirstPerson) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Eye, c.Eye.Add(c.Forward()), worldUp)
}

// HandleLook turns the camera by a mouse delta in pixels.
func (c *FirstPerson) HandleLook(deltaX, deltaY float32) {
	const limit = 1.55
	c.Yaw += deltaX * c.Sensitivity
	c.Pitch = clamp(c.Pitch-deltaY*c.Sensitivity, -limit, limit)
}

// HandleMovement walks along the ground plane. Inputs are in [-1, 1] and dt
// is the frame time in seconds.
func (c *FirstPerson) HandleMovement(forward, right, up, dt float32) {
	step := c.MoveSpeed * dt
	sy, cy := math32.Sincos(c.Yaw)
	ground := math.Vec3{X: sy, Z: -cy}

	c.Eye = c.Eye.Add(ground.Scale(forward * step)).
		Add(c.Right().Scale(right * step)).
		Add(worldUp.Scale(up * step))
}

// HeightSampler returns the ground height at a world XZ position.
type HeightSampler interface {
	HeightAt(x, z float32) float32
}

// FollowGround keeps the eye at height above the ground under it.
func (c *FirstPerson) FollowGround(ground HeightSampler, height float32) {
	c.Eye.Y = ground.HeightAt(c.Eye.X, c.Eye.Z) + height
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
