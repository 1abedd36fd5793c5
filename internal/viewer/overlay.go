package viewer

import (
	"github.com/Faultbox/r4/internal/config"
	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/mesh"
	"github.com/Faultbox/r4/internal/engine/renderer"
	"github.com/Faultbox/r4/pkg/math"
)

var (
	gridColor   = math.Vec3{X: 0.4, Y: 0.4, Z: 0.4}
	boundsColor = math.Vec3{X: 1, Y: 1, Z: 0}
)

const gridTiles = 20

// overlay holds the debug line meshes drawn over the scene.
type overlay struct {
	axis   *mesh.Axis
	grid   *mesh.GeometryBuffer
	bounds *mesh.BoundingBox

	showAxis   bool
	showGrid   bool
	showBounds bool

	dev      gpu.Device
	tileSize float32
}

func newOverlay(dev gpu.Device, rc config.RenderConfig) (*overlay, error) {
	o := &overlay{
		dev:        dev,
		showAxis:   rc.ShowAxis,
		showGrid:   rc.ShowGrid,
		showBounds: rc.ShowBounds,
		tileSize:   1,
	}

	var err error
	if o.axis, err = mesh.NewAxis(dev, renderer.PositionLocation, renderer.ColorLocation); err != nil {
		return nil, err
	}
	if o.bounds, err = mesh.NewBoundingBox(dev, renderer.PositionLocation, renderer.ColorLocation, boundsColor); err != nil {
		o.destroy()
		return nil, err
	}
	if o.grid, err = mesh.NewGrid(dev, renderer.PositionLocation, renderer.ColorLocation, gridTiles, gridTiles, o.tileSize, gridColor); err != nil {
		o.destroy()
		return nil, err
	}
	return o, nil
}

// fit sizes the gizmos to the scene box.
func (o *overlay) fit(lo, hi math.Vec3) error {
	if err := o.bounds.UpdateBounds(lo, hi); err != nil {
		return err
	}
	size := hi.Sub(lo)
	length := max(size.X, size.Y, size.Z) / 2
	if length <= 0 {
		length = 1
	}
	if err := o.axis.Update(length, length, length); err != nil {
		return err
	}

	tile := gridTileSize(lo, hi, gridTiles)
	if tile == o.tileSize {
		return nil
	}
	grid, err := mesh.NewGrid(o.dev, renderer.PositionLocation, renderer.ColorLocation, gridTiles, gridTiles, tile, gridColor)
	if err != nil {
		return err
	}
	o.grid.Destroy()
	o.grid = grid
	o.tileSize = tile
	return nil
}

func (o *overlay) visible() bool {
	return o.showAxis || o.showGrid || o.showBounds
}

// render draws the enabled gizmos. The debug program must be active.
func (o *overlay) render() {
	if o.showGrid {
		o.grid.RenderAll(0)
	}
	if o.showBounds {
		o.bounds.RenderAll(0)
	}
	if o.showAxis {
		o.axis.RenderAll(0)
	}
}

func (o *overlay) destroy() {
	if o.axis != nil {
		o.axis.Destroy()
	}
	if o.grid != nil {
		o.grid.Destroy()
	}
	if o.bounds != nil {
		o.bounds.Destroy()
	}
}
