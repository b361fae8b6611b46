package asset

import (
	"fmt"

	"github.com/achilleasa/isoray/types"
)

// NormalMode selects which normal list a mesh carries. A mesh is either
// flat-shaded (one normal per triangle) or smooth-shaded (one normal per
// vertex); never both.
type NormalMode uint8

const (
	FlatNormals NormalMode = iota
	SmoothNormals
)

func (m NormalMode) String() string {
	if m == SmoothNormals {
		return "smooth"
	}
	return "flat"
}

// A triangle referencing three mesh vertices.
type Triangle [3]uint32

// A triangle mesh in model space.
type Mesh struct {
	Name string

	Vertices  []types.Vec3
	Triangles []Triangle

	// Mode selects which of the two normal lists below is populated:
	// FlatNormals pairs with FaceNormals (len == len(Triangles)) and
	// SmoothNormals with VertexNormals (len == len(Vertices)).
	Mode          NormalMode
	FaceNormals   []types.Vec3
	VertexNormals []types.Vec3

	// Per-triangle surface colors.
	Colors []types.Vec3

	// Mirror-like reflectivity in [0, 1].
	Reflectivity float32
}

// Validate mesh invariants. A violation indicates a defect in the code that
// produced the mesh and aborts before the geometry ever reaches a tracer.
func (m *Mesh) Validate() error {
	for triIdx, tri := range m.Triangles {
		for _, vertIdx := range tri {
			if int(vertIdx) >= len(m.Vertices) {
				return fmt.Errorf("mesh %q: triangle %d references vertex %d; mesh has %d vertices", m.Name, triIdx, vertIdx, len(m.Vertices))
			}
		}
	}

	switch m.Mode {
	case FlatNormals:
		if len(m.FaceNormals) != len(m.Triangles) {
			return fmt.Errorf("mesh %q: flat-shaded mesh has %d face normals for %d triangles", m.Name, len(m.FaceNormals), len(m.Triangles))
		}
		if len(m.VertexNormals) != 0 {
			return fmt.Errorf("mesh %q: flat-shaded mesh carries vertex normals", m.Name)
		}
	case SmoothNormals:
		if len(m.VertexNormals) != len(m.Vertices) {
			return fmt.Errorf("mesh %q: smooth-shaded mesh has %d vertex normals for %d vertices", m.Name, len(m.VertexNormals), len(m.Vertices))
		}
		if len(m.FaceNormals) != 0 {
			return fmt.Errorf("mesh %q: smooth-shaded mesh carries face normals", m.Name)
		}
	}

	if len(m.Colors) != len(m.Triangles) {
		return fmt.Errorf("mesh %q: %d triangle colors for %d triangles", m.Name, len(m.Colors), len(m.Triangles))
	}
	if m.Reflectivity < 0 || m.Reflectivity > 1 {
		return fmt.Errorf("mesh %q: reflectivity %f outside [0, 1]", m.Name, m.Reflectivity)
	}

	return nil
}

// Assign the same color to every triangle.
func (m *Mesh) SetUniformColor(color types.Vec3) {
	m.Colors = make([]types.Vec3, len(m.Triangles))
	for i := range m.Colors {
		m.Colors[i] = color
	}
}

// Compute the model-space bounding box of all vertices.
func (m *Mesh) BBox() types.AABB {
	box := types.NewAABB()
	for _, v := range m.Vertices {
		box = box.Include(v)
	}
	return box
}

// Compute face normals from winding order and switch the mesh to flat shading.
func (m *Mesh) ComputeFaceNormals() {
	m.Mode = FlatNormals
	m.VertexNormals = nil
	m.FaceNormals = make([]types.Vec3, len(m.Triangles))
	for i, tri := range m.Triangles {
		e1 := m.Vertices[tri[1]].Sub(m.Vertices[tri[0]])
		e2 := m.Vertices[tri[2]].Sub(m.Vertices[tri[0]])
		m.FaceNormals[i] = e1.Cross(e2).Normalize()
	}
}
