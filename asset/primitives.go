package asset

import "github.com/achilleasa/isoray/types"

// Generate an axis-aligned box mesh centered at the origin. The box is
// flat-shaded: each of the 12 triangles carries its own face normal.
func NewBox(name string, size types.Vec3, color types.Vec3, reflectivity float32) *Mesh {
	h := size.Mul(0.5)

	verts := []types.Vec3{
		{-h[0], -h[1], -h[2]},
		{h[0], -h[1], -h[2]},
		{h[0], h[1], -h[2]},
		{-h[0], h[1], -h[2]},
		{-h[0], -h[1], h[2]},
		{h[0], -h[1], h[2]},
		{h[0], h[1], h[2]},
		{-h[0], h[1], h[2]},
	}

	// Two triangles per face, outward winding.
	tris := []Triangle{
		{0, 2, 1}, {0, 3, 2}, // -Z
		{4, 5, 6}, {4, 6, 7}, // +Z
		{0, 4, 7}, {0, 7, 3}, // -X
		{1, 2, 6}, {1, 6, 5}, // +X
		{0, 1, 5}, {0, 5, 4}, // -Y
		{3, 7, 6}, {3, 6, 2}, // +Y
	}

	mesh := &Mesh{
		Name:         name,
		Vertices:     verts,
		Triangles:    tris,
		Reflectivity: reflectivity,
	}
	mesh.ComputeFaceNormals()
	mesh.SetUniformColor(color)
	return mesh
}

// Generate a flat floor grid of cells x cells tiles in the XZ plane, centered
// at the origin, with tiles alternating between two colors.
func NewFloorGrid(name string, extent float32, cells int, colorA, colorB types.Vec3, reflectivity float32) *Mesh {
	mesh := &Mesh{
		Name:         name,
		Reflectivity: reflectivity,
	}

	cellSize := (2 * extent) / float32(cells)
	vertAt := func(ix, iz int) uint32 {
		idx := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, types.Vec3{
			-extent + float32(ix)*cellSize,
			0,
			-extent + float32(iz)*cellSize,
		})
		return idx
	}

	// Tiles don't share vertices; the grid is tiny and flat shading needs
	// no connectivity.
	for iz := 0; iz < cells; iz++ {
		for ix := 0; ix < cells; ix++ {
			v00 := vertAt(ix, iz)
			v10 := vertAt(ix+1, iz)
			v11 := vertAt(ix+1, iz+1)
			v01 := vertAt(ix, iz+1)

			mesh.Triangles = append(mesh.Triangles, Triangle{v00, v11, v10}, Triangle{v00, v01, v11})

			color := colorA
			if (ix+iz)%2 == 1 {
				color = colorB
			}
			mesh.Colors = append(mesh.Colors, color, color)
		}
	}

	mesh.ComputeFaceNormals()
	return mesh
}
