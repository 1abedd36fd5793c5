package obj

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// GLTFDocument builds a glTF document with one node and mesh per non-empty
// group and one primitive per material run. Materials map Kd to the PBR
// base color and d to alpha.
func (m *Mesh) GLTFDocument(smooth bool) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	if len(doc.Scenes) == 0 {
		doc.Scenes = []*gltf.Scene{{Name: "Root Scene"}}
		doc.Scene = gltf.Index(0)
	}

	for _, mat := range m.Materials {
		doc.Materials = append(doc.Materials, gltfMaterial(mat))
	}
	if len(doc.Materials) == 0 {
		doc.Materials = append(doc.Materials, gltfMaterial(newMaterial("default")))
	}

	for gi, g := range m.Groups {
		fg, err := m.flatten(gi, smooth)
		if err != nil {
			return nil, err
		}
		if fg.numTriangles() == 0 {
			continue
		}

		gm := &gltf.Mesh{Name: g.Name}
		for _, run := range fg.Runs {
			gm.Primitives = append(gm.Primitives, gltfPrimitive(doc, fg, run, len(doc.Materials)))
		}
		doc.Meshes = append(doc.Meshes, gm)
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: g.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc, nil
}

// ExportGLTF writes the mesh as a binary glTF file.
func (m *Mesh) ExportGLTF(path string, smooth bool) error {
	doc, err := m.GLTFDocument(smooth)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func gltfPrimitive(doc *gltf.Document, fg *flatGroup, run triangleRun, numMaterials int) *gltf.Primitive {
	first, n := run.First*3, run.Count*3

	pos := make([][3]float32, n)
	nor := make([][3]float32, n)
	idx := make([]uint32, n)
	for i := range n {
		pos[i] = fg.Positions[first+i].Array()
		nor[i] = fg.Normals[first+i].Array()
		idx[i] = uint32(i)
	}

	attrs := gltf.PrimitiveAttributes{
		gltf.POSITION: modeler.WritePosition(doc, pos),
		gltf.NORMAL:   modeler.WriteNormal(doc, nor),
	}
	if fg.UVs != nil {
		uv := make([][2]float32, n)
		for i := range n {
			// glTF puts the texture origin at the top left.
			uv[i] = fg.UVs[first+i].FlipV().Array()
		}
		attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uv)
	}

	mat := run.Material
	if mat >= numMaterials {
		mat = 0
	}
	return &gltf.Primitive{
		Attributes: attrs,
		Indices:    gltf.Index(modeler.WriteIndices(doc, idx)),
		Material:   gltf.Index(mat),
	}
}

func gltfMaterial(mat Material) *gltf.Material {
	out := &gltf.Material{
		Name: mat.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{
				float64(mat.Diffuse.X), float64(mat.Diffuse.Y), float64(mat.Diffuse.Z), float64(mat.Opacity),
			},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
		AlphaMode: gltf.AlphaOpaque,
	}
	if mat.Opacity < 1 {
		out.AlphaMode = gltf.AlphaBlend
	}
	return out
}
