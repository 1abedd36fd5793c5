package mesh

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/logger"
	"github.com/Faultbox/r4/pkg/formats"
	"github.com/Faultbox/r4/pkg/math"
)

// StaticObject is a set of geometry groups sharing one material library,
// loaded from a .r4o manifest.
type StaticObject struct {
	Name      string
	Groups    []*GeometryBuffer
	Materials *MaterialLibrary

	objects []formats.ManifestObject
}

// LoadStaticObject reads a .r4o manifest and everything it references.
// Paths in the manifest are relative to its directory. A missing material
// library or group file is logged and skipped; only an unreadable manifest
// is an error.
func LoadStaticObject(dev gpu.Device, path string) (*StaticObject, error) {
	m, err := formats.ParseManifestFile(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	log := logger.Named("mesh")

	obj := &StaticObject{
		Name:    filepath.Base(path),
		objects: m.Objects,
	}

	mtlbPath := m.MaterialLibraryPath(dir)
	obj.Materials, err = LoadMaterialLibrary(dev, mtlbPath, dir)
	if err != nil {
		log.Warn("material library not loaded", zap.String("path", mtlbPath), zap.Error(err))
		obj.Materials = NewMaterialLibrary(dev, "")
	}

	obj.Groups = make([]*GeometryBuffer, 0, m.NumGroups)
	for i := 0; i < m.NumGroups; i++ {
		groupPath := m.GroupPath(dir, i)
		g, err := LoadFile(dev, groupPath)
		if err != nil {
			log.Warn("group not loaded", zap.String("path", groupPath), zap.Error(err))
			continue
		}

		locations := make([]int32, g.NumAttributes())
		for loc := range locations {
			locations[loc] = int32(loc)
		}
		if _, err := g.AddRenderingPass(Bindings(locations...)); err != nil {
			g.Destroy()
			log.Warn("group not loaded", zap.String("path", groupPath), zap.Error(err))
			continue
		}
		obj.Groups = append(obj.Groups, g)
	}

	log.Debug("static object loaded",
		zap.String("path", path),
		zap.Int("groups", len(obj.Groups)),
		zap.Int("materials", obj.Materials.Len()))
	return obj, nil
}

// Objects returns the named group ranges from the manifest.
func (o *StaticObject) Objects() []formats.ManifestObject {
	return o.objects
}

// Render draws every subgroup of every group with rendering pass 0, binding
// the subgroup's material first.
func (o *StaticObject) Render(b MaterialBinder) {
	for _, g := range o.Groups {
		for j := 0; j < g.NumSubGroups(); j++ {
			b.BindMaterial(o.Materials.Material(g.SubGroup(j).MaterialIndex))
			g.Render(0, j)
		}
	}
}

// Bounds returns the union of the group bounds.
func (o *StaticObject) Bounds() (lo, hi math.Vec3, ok bool) {
	for _, g := range o.Groups {
		glo, ghi, gok := g.Bounds()
		if !gok {
			continue
		}
		if !ok {
			lo, hi, ok = glo, ghi, true
			continue
		}
		lo = lo.Min(glo)
		hi = hi.Max(ghi)
	}
	return lo, hi, ok
}

// Destroy releases all groups and textures.
func (o *StaticObject) Destroy() {
	for _, g := range o.Groups {
		g.Destroy()
	}
	o.Groups = nil
	o.Materials.Destroy()
}
