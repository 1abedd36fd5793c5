package renderer

import (
	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/mesh"
	"github.com/Faultbox/r4/pkg/math"
)

// uniformSetter is the part of a shader program the passes write to.
type uniformSetter interface {
	SetMat4(name string, m math.Mat4)
	SetMat3(name string, m [9]float32)
	SetVec3(name string, v math.Vec3)
	SetFloat(name string, f float32)
	SetInt(name string, i int32)
}

// Frame holds the per-frame camera state.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec3
	LightDir   math.Vec3
}

// PhongPass shades lit geometry. It binds materials for mesh and terrain
// rendering.
type PhongPass struct {
	prog uniformSetter
	dev  gpu.Device
}

var _ mesh.MaterialBinder = (*PhongPass)(nil)

// Begin uploads the frame and model transforms.
func (p *PhongPass) Begin(f Frame, model math.Mat4) {
	p.prog.SetMat4("uView", f.View)
	p.prog.SetMat4("uProjection", f.Projection)
	p.prog.SetMat4("uModel", model)
	p.prog.SetMat3("uNormalMatrix", model.NormalMatrix())
	p.prog.SetVec3("uLightDir", f.LightDir)
	p.prog.SetVec3("uEye", f.Eye)
	p.prog.SetInt("uDiffuseMap", 0)
}

// BindMaterial uploads m and binds its diffuse map to unit 0.
func (p *PhongPass) BindMaterial(m *mesh.Material) {
	p.prog.SetVec3("uMaterial.ambient", m.Ambient)
	p.prog.SetVec3("uMaterial.diffuse", m.Diffuse)
	p.prog.SetVec3("uMaterial.specular", m.Specular)
	p.prog.SetFloat("uMaterial.shininess", m.Shininess)
	p.prog.SetFloat("uMaterial.opacity", m.Opacity)

	if m.HasMap(mesh.DiffuseMap) {
		p.dev.BindTexture(0, m.Maps[mesh.DiffuseMap])
		p.prog.SetInt("uHasDiffuseMap", 1)
	} else {
		p.dev.BindTexture(0, 0)
		p.prog.SetInt("uHasDiffuseMap", 0)
	}
}

// DebugPass draws unlit colored lines.
type DebugPass struct {
	prog uniformSetter
}

// Begin uploads the combined transform.
func (p *DebugPass) Begin(f Frame, model math.Mat4) {
	p.prog.SetMat4("uMVP", f.Projection.Mul(f.View).Mul(model))
}

// BindMaterial is a no-op; debug geometry carries vertex colors.
func (p *DebugPass) BindMaterial(*mesh.Material) {}
