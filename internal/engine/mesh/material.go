package mesh

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/r4/internal/engine/gpu"
	"github.com/Faultbox/r4/internal/engine/texture"
	"github.com/Faultbox/r4/internal/logger"
	"github.com/Faultbox/r4/pkg/formats"
	"github.com/Faultbox/r4/pkg/math"
)

// Texture map slots, in .mtlb order.
const (
	DiffuseMap      = formats.SlotDiffuse
	SpecularMap     = formats.SlotSpecular
	NormalMap       = formats.SlotNormal
	TransparencyMap = formats.SlotTransparency
)

// Material holds Phong reflectance parameters and optional texture maps.
// A zero texture handle marks an absent map.
type Material struct {
	Ambient   math.Vec3
	Diffuse   math.Vec3
	Specular  math.Vec3
	Shininess float32
	Opacity   float32
	Illum     int
	Maps      [formats.NumTextureSlots]gpu.Texture
}

// HasMap reports whether the material has a texture in slot.
func (m *Material) HasMap(slot int) bool {
	return slot >= 0 && slot < len(m.Maps) && m.Maps[slot] != 0
}

// DefaultMaterial returns the light grey material used for untextured geometry.
func DefaultMaterial() Material {
	return Material{
		Diffuse:   math.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
		Shininess: 1,
		Opacity:   1,
		Illum:     2,
	}
}

// MaterialBinder makes a material current before geometry is drawn with it.
type MaterialBinder interface {
	BindMaterial(m *Material)
}

// MaterialLibrary owns a list of materials and their textures.
type MaterialLibrary struct {
	Name      string
	Materials []Material

	dev      gpu.Device
	fallback Material
}

// NewMaterialLibrary returns an empty library.
func NewMaterialLibrary(dev gpu.Device, name string) *MaterialLibrary {
	return &MaterialLibrary{Name: name, dev: dev, fallback: DefaultMaterial()}
}

// LoadMaterialLibrary decodes a .mtlb file and loads its textures from folder.
// Materials naming the same file share one texture. Textures that fail to
// load are logged and left empty.
func LoadMaterialLibrary(dev gpu.Device, path, folder string) (*MaterialLibrary, error) {
	rec, err := formats.ParseMaterialLibraryFile(path)
	if err != nil {
		return nil, err
	}
	if folder == "" {
		folder = "."
	}

	log := logger.Named("mesh")
	lib := NewMaterialLibrary(dev, rec.Name)
	lib.Materials = make([]Material, len(rec.Materials))
	loaded := make(map[string]gpu.Texture)
	for i, r := range rec.Materials {
		m := Material{
			Ambient:   math.Vec3FromArray(r.Ambient),
			Diffuse:   math.Vec3FromArray(r.Diffuse),
			Specular:  math.Vec3FromArray(r.Specular),
			Shininess: r.Shininess,
			Opacity:   r.Opacity,
			Illum:     int(r.Illum),
		}
		for slot := range m.Maps {
			name := r.Texture(slot)
			if name == "" {
				continue
			}
			texPath := filepath.Join(folder, name)
			tex, ok := loaded[texPath]
			if !ok {
				tex, err = texture.Load(dev, texPath)
				if err != nil {
					log.Warn("texture not loaded",
						zap.String("path", texPath),
						zap.Int("material", i),
						zap.Error(err))
				}
				loaded[texPath] = tex
			}
			m.Maps[slot] = tex
		}
		lib.Materials[i] = m
	}
	return lib, nil
}

// Add appends a material and returns its index.
func (l *MaterialLibrary) Add(m Material) int {
	l.Materials = append(l.Materials, m)
	return len(l.Materials) - 1
}

// Len returns the number of materials.
func (l *MaterialLibrary) Len() int { return len(l.Materials) }

// Material returns material i. An empty library yields the default material
// for any index; otherwise an out-of-range index panics.
func (l *MaterialLibrary) Material(i int) *Material {
	if len(l.Materials) == 0 {
		return &l.fallback
	}
	if i < 0 || i >= len(l.Materials) {
		panic(fmt.Sprintf("mesh: material %d out of range [0,%d)", i, len(l.Materials)))
	}
	return &l.Materials[i]
}

// Destroy releases every texture owned by the library.
func (l *MaterialLibrary) Destroy() {
	deleted := make(map[gpu.Texture]bool)
	for i := range l.Materials {
		for slot, tex := range l.Materials[i].Maps {
			if tex != 0 && !deleted[tex] {
				l.dev.DeleteTexture(tex)
				deleted[tex] = true
			}
			l.Materials[i].Maps[slot] = 0
		}
	}
}
