// Package viewer implements the interactive scene viewer and its main loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/r4/internal/config"
	"github.com/Faultbox/r4/internal/engine/camera"
	"github.com/Faultbox/r4/internal/engine/debug"
	"github.com/Faultbox/r4/internal/engine/gpu/glgpu"
	"github.com/Faultbox/r4/internal/engine/input"
	"github.com/Faultbox/r4/internal/engine/mesh"
	"github.com/Faultbox/r4/internal/engine/renderer"
	"github.com/Faultbox/r4/internal/engine/terrain"
	"github.com/Faultbox/r4/internal/engine/window"
	"github.com/Faultbox/r4/internal/logger"
	"github.com/Faultbox/r4/pkg/math"
)

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	dev      *glgpu.Device
	renderer *renderer.Renderer
	input    *input.Input

	object  *mesh.StaticObject
	terrain *terrain.Terrain
	overlay *overlay

	projection  camera.Projection
	orbit       *camera.Orbit
	walker      *camera.FirstPerson
	firstPerson bool
	lightDir    math.Vec3

	screenshots *debug.ScreenshotCapture
	capture     bool

	log *zap.Logger
}

// New opens the window and loads the configured scene.
func New(cfg *config.Config) (*Viewer, error) {
	log := logger.Named("viewer")
	log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("object", cfg.Assets.Object),
		zap.String("terrain", cfg.Assets.Terrain),
	)

	v := &Viewer{
		cfg:         cfg,
		log:         log,
		lightDir:    lightDirection(cfg.Render.LightDirection),
		screenshots: debug.NewScreenshotCapture(cfg.Render.ScreenshotDir, "r4"),
		projection: camera.Projection{
			FOV:  cfg.Camera.FOV,
			Near: cfg.Camera.Near,
			Far:  cfg.Camera.Far,
		},
	}

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      windowTitle(cfg),
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.dev, err = glgpu.New()
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	width, height := v.window.GetDrawableSize()
	v.renderer, err = renderer.New(v.dev, renderer.Config{
		Width:      width,
		Height:     height,
		ClearColor: cfg.Render.ClearColor,
		Wireframe:  cfg.Render.Wireframe,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.projection.SetViewport(width, height)

	v.input = input.New()

	if err := v.loadScene(); err != nil {
		v.Close()
		return nil, err
	}
	v.overlay, err = newOverlay(v.dev, cfg.Render)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create debug overlay: %w", err)
	}
	v.setupCamera()

	log.Info("viewer initialized successfully")
	return v, nil
}

func windowTitle(cfg *config.Config) string {
	switch {
	case cfg.Assets.Object != "":
		return "R4 - " + cfg.Assets.Object
	case cfg.Assets.Terrain != "":
		return "R4 - " + cfg.Assets.Terrain
	}
	return "R4"
}

// loadScene loads the configured object and terrain. At least one of them
// must load.
func (v *Viewer) loadScene() error {
	if v.cfg.Assets.Object != "" {
		obj, err := mesh.LoadStaticObject(v.dev, v.cfg.Assets.Object)
		if err != nil {
			return fmt.Errorf("failed to load object: %w", err)
		}
		v.object = obj
	}
	if v.cfg.Assets.Terrain != "" {
		t, err := terrain.Load(v.dev, v.cfg.Assets.Terrain)
		if err != nil {
			return fmt.Errorf("failed to load terrain: %w", err)
		}
		v.terrain = t
	}
	if v.object == nil && v.terrain == nil {
		return fmt.Errorf("nothing to view: set assets.object or assets.terrain")
	}
	return nil
}

func (v *Viewer) setupCamera() {
	cc := v.cfg.Camera
	v.orbit = camera.NewOrbit(cc.Distance)
	v.orbit.DragSensitivity = cc.Sensitivity

	if lo, hi, ok := v.sceneBounds(); ok {
		v.orbit.FitToBounds(lo, hi)
		if err := v.overlay.fit(lo, hi); err != nil {
			v.log.Warn("debug overlay not resized", zap.Error(err))
		}
	}

	eye := v.orbit.Center
	v.walker = camera.NewFirstPerson(eye, cc.MoveSpeed, cc.Sensitivity)
	if v.terrain != nil {
		v.walker.FollowGround(v.terrain, cc.EyeHeight)
	}
	v.setFirstPerson(cc.Mode == config.CameraFirstPerson)
}

func (v *Viewer) sceneBounds() (lo, hi math.Vec3, ok bool) {
	var boxes []bounds
	if v.object != nil {
		if lo, hi, ok := v.object.Bounds(); ok {
			boxes = append(boxes, bounds{lo, hi})
		}
	}
	if v.terrain != nil {
		lo, hi := terrainBounds(v.terrain.Geometry)
		boxes = append(boxes, bounds{lo, hi})
	}
	return unionBounds(boxes)
}

func (v *Viewer) setFirstPerson(on bool) {
	v.firstPerson = on
	v.window.SetRelativeMouse(on)
	v.log.Debug("camera mode", zap.Bool("firstPerson", on))
}

func (v *Viewer) activeCamera() camera.Camera {
	if v.firstPerson {
		return v.walker
	}
	return v.orbit
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()
	budget := frameBudget(v.cfg.Graphics.FPSLimit)

	v.log.Info("starting viewer loop")

	for v.running {
		frameStart := time.Now()
		dt := frameStart.Sub(lastTime).Seconds()
		lastTime = frameStart

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		for _, event := range v.input.Events() {
			v.handleEvent(event)
		}

		// 2. Update camera
		v.update(float32(dt))

		// 3. Render
		v.render()

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		if budget > 0 {
			if rest := budget - time.Since(frameStart); rest > 0 {
				time.Sleep(rest)
			}
		}

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetStatus(fmt.Sprintf("%d fps", frameCount))
			v.log.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvent(event input.Event) {
	switch event.Type {
	case input.EventWindowResize:
		width, height := v.window.GetDrawableSize()
		v.renderer.Resize(width, height)
		v.projection.SetViewport(width, height)
	case input.EventMouseMove:
		if v.firstPerson {
			v.walker.HandleLook(float32(event.DeltaX), float32(event.DeltaY))
		} else if v.input.IsButtonHeld(sdl.BUTTON_LEFT) {
			v.orbit.HandleDrag(float32(event.DeltaX), float32(event.DeltaY))
		}
	case input.EventMouseWheel:
		if !v.firstPerson {
			v.orbit.HandleZoom(float32(event.Wheel))
		}
	case input.EventKeyDown:
		v.handleKey(event.Key)
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_TAB:
		if !v.firstPerson {
			v.walker.Eye.X, v.walker.Eye.Z = v.orbit.Center.X, v.orbit.Center.Z
			v.walker.Yaw = v.orbit.RotationY
		}
		v.setFirstPerson(!v.firstPerson)
	case sdl.SCANCODE_F:
		v.renderer.SetWireframe(!v.renderer.Wireframe())
	case sdl.SCANCODE_B:
		v.overlay.showBounds = !v.overlay.showBounds
	case sdl.SCANCODE_G:
		v.overlay.showGrid = !v.overlay.showGrid
	case sdl.SCANCODE_X:
		v.overlay.showAxis = !v.overlay.showAxis
	case sdl.SCANCODE_F12:
		v.capture = true
	case sdl.SCANCODE_HOME:
		if lo, hi, ok := v.sceneBounds(); ok {
			v.orbit.FitToBounds(lo, hi)
		}
	}
}

// update moves the active camera from held keys.
func (v *Viewer) update(dt float32) {
	forward := v.input.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W)
	right := v.input.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D)
	up := v.input.Axis(sdl.SCANCODE_Q, sdl.SCANCODE_E)

	if v.firstPerson {
		v.walker.HandleMovement(forward, right, up, dt)
		if v.terrain != nil {
			v.walker.FollowGround(v.terrain, v.cfg.Camera.EyeHeight)
		}
		return
	}
	if forward != 0 || right != 0 || up != 0 {
		v.orbit.HandleMovement(forward, right, up)
	}
}

// render draws the current frame.
func (v *Viewer) render() {
	cam := v.activeCamera()
	frame := renderer.Frame{
		View:       cam.ViewMatrix(),
		Projection: v.projection.Matrix(),
		Eye:        cam.Position(),
		LightDir:   v.lightDir,
	}
	identity := math.Identity()

	v.renderer.Begin()
	if v.terrain != nil {
		v.terrain.Render(v.renderer.Phong(frame, identity))
	}
	if v.object != nil {
		v.object.Render(v.renderer.Phong(frame, identity))
	}
	if v.overlay.visible() {
		v.renderer.Debug(frame, identity)
		v.overlay.render()
	}
	v.renderer.End()

	if v.capture {
		v.capture = false
		pixels, width, height := v.renderer.ReadPixels()
		name, err := v.screenshots.CaptureFromPixels(pixels, width, height)
		if err != nil {
			v.log.Error("screenshot failed", zap.Error(err))
			return
		}
		v.log.Info("screenshot saved", zap.String("file", name))
	}
}

// Close releases the scene and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.overlay != nil {
		v.overlay.destroy()
	}
	if v.object != nil {
		v.object.Destroy()
	}
	if v.terrain != nil {
		v.terrain.Destroy()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
