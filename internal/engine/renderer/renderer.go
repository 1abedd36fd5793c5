// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/shader"
	"github.com/Faultbox/r4/internal/logger"
	"github.com/Faultbox/r4/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
	Wireframe  bool
}

// Renderer owns the GL state and the built-in programs.
type Renderer struct {
	config Config

	phongProgram *shader.Program
	debugProgram *shader.Program

	phong PhongPass
	debug DebugPass
}

// New creates a new renderer on dev's context.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(dev gpu.Device, cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 1.0)
	r.SetWireframe(cfg.Wireframe)

	var err error
	r.phongProgram, err = shader.NewProgram(phongVertexSource, phongFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("phong program: %w", err)
	}
	r.debugProgram, err = shader.NewProgram(debugVertexSource, debugFragmentSource)
	if err != nil {
		r.phongProgram.Delete()
		return nil, fmt.Errorf("debug program: %w", err)
	}
	r.phong = PhongPass{prog: r.phongProgram, dev: dev}
	r.debug = DebugPass{prog: r.debugProgram}

	logger.Debug("shader programs created",
		zap.Uint32("phong", r.phongProgram.ID),
		zap.Uint32("debug", r.debugProgram.ID),
	)
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.phongProgram.Delete()
	r.debugProgram.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetWireframe switches polygon rasterization between lines and fill.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// Wireframe reports whether wireframe rendering is on.
func (r *Renderer) Wireframe() bool { return r.config.Wireframe }

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Phong activates the lit program and returns it as a material binder.
func (r *Renderer) Phong(f Frame, model math.Mat4) *PhongPass {
	r.phongProgram.Use()
	r.phong.Begin(f, model)
	return &r.phong
}

// Debug activates the line program.
func (r *Renderer) Debug(f Frame, model math.Mat4) *DebugPass {
	r.debugProgram.Use()
	r.debug.Begin(f, model)
	return &r.debug
}

// ReadPixels reads back the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.UseProgram(0)
}
