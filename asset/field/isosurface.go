package field

import (
	"time"

	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/log"
	"github.com/achilleasa/isoray/types"
)

var logger = log.New("field")

// Threshold below which an edge interpolation denominator is considered
// degenerate and an endpoint is returned directly.
const interpEpsilon float32 = 1e-6

// Extract the isosurface f(p) = threshold as a smooth-shaded triangle mesh.
//
// The field is sampled at gridRes+1 points per axis over the field's padded
// bounding cube. Each cell is polygonized via the marching-cubes case tables;
// crossing vertices are deduplicated across cells by the pair of grid corners
// defining their edge, so the result is an indexed mesh with no redundant
// vertices along shared edges. The extracted mesh is relaxed and reprojected
// onto the isosurface (two passes) and receives analytic field normals.
//
// A field with no balls yields a single-point mesh with zero triangles.
func Polygonize(f Field, gridRes int, threshold float32) *asset.Mesh {
	start := time.Now()

	mesh := &asset.Mesh{Mode: asset.SmoothNormals}
	if len(f.Balls) == 0 || gridRes < 1 {
		mesh.Vertices = []types.Vec3{{}}
		mesh.VertexNormals = []types.Vec3{{}}
		return mesh
	}

	bounds := f.Bounds()
	cellSize := (bounds.Max[0] - bounds.Min[0]) / float32(gridRes)

	// Sample the field at every grid corner.
	n := gridRes + 1
	samples := make([]float32, n*n*n)
	pointAt := func(ix, iy, iz int) types.Vec3 {
		return types.Vec3{
			bounds.Min[0] + float32(ix)*cellSize,
			bounds.Min[1] + float32(iy)*cellSize,
			bounds.Min[2] + float32(iz)*cellSize,
		}
	}
	cornerIdx := func(ix, iy, iz int) int {
		return ix + iy*n + iz*n*n
	}
	for iz := 0; iz < n; iz++ {
		for iy := 0; iy < n; iy++ {
			for ix := 0; ix < n; ix++ {
				samples[cornerIdx(ix, iy, iz)] = f.Eval(pointAt(ix, iy, iz))
			}
		}
	}

	// Cell corner offsets matching the case-table convention in tables.go.
	cornerOffsets := [8][3]int{
		{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1},
		{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1},
	}

	// Shared-edge vertex cache keyed by the two grid corners the edge joins.
	edgeVerts := make(map[uint64]uint32)
	var corners [8]int
	var values [8]float32
	var points [8]types.Vec3
	var cellVerts [12]uint32

	for iz := 0; iz < gridRes; iz++ {
		for iy := 0; iy < gridRes; iy++ {
			for ix := 0; ix < gridRes; ix++ {
				var code int
				for c, off := range cornerOffsets {
					cx, cy, cz := ix+off[0], iy+off[1], iz+off[2]
					corners[c] = cornerIdx(cx, cy, cz)
					values[c] = samples[corners[c]]
					points[c] = pointAt(cx, cy, cz)
					if values[c] >= threshold {
						code |= 1 << c
					}
				}

				crossed := edgeTable[code]
				if crossed == 0 {
					continue
				}

				for edge := 0; edge < 12; edge++ {
					if crossed&(1<<edge) == 0 {
						continue
					}
					a, b := edgeCorners[edge][0], edgeCorners[edge][1]
					ga, gb := corners[a], corners[b]
					if ga > gb {
						ga, gb = gb, ga
					}
					key := uint64(ga)<<32 | uint64(gb)
					if idx, ok := edgeVerts[key]; ok {
						cellVerts[edge] = idx
						continue
					}
					idx := uint32(len(mesh.Vertices))
					mesh.Vertices = append(mesh.Vertices, interpolate(points[a], points[b], values[a], values[b], threshold))
					edgeVerts[key] = idx
					cellVerts[edge] = idx
				}

				tri := triTable[code]
				for i := 0; i+2 < len(tri); i += 3 {
					mesh.Triangles = append(mesh.Triangles, asset.Triangle{
						cellVerts[tri[i]],
						cellVerts[tri[i+1]],
						cellVerts[tri[i+2]],
					})
				}
			}
		}
	}

	if len(mesh.Vertices) == 0 {
		mesh.Vertices = []types.Vec3{{}}
		mesh.VertexNormals = []types.Vec3{{}}
		return mesh
	}

	smoothMesh(f, threshold, mesh.Vertices, mesh.Triangles)

	mesh.VertexNormals = make([]types.Vec3, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		mesh.VertexNormals[i] = f.Normal(v)
	}

	logger.Debugf(
		"polygonized %d balls into %d vertices / %d triangles in %d ms",
		len(f.Balls), len(mesh.Vertices), len(mesh.Triangles),
		time.Since(start).Nanoseconds()/1e6,
	)
	return mesh
}

// Locate the crossing point on the edge p1-p2 by linear interpolation to the
// exact threshold value. Degenerate configurations return an endpoint rather
// than dividing by zero.
func interpolate(p1, p2 types.Vec3, v1, v2, threshold float32) types.Vec3 {
	if abs32(threshold-v1) < interpEpsilon {
		return p1
	}
	if abs32(threshold-v2) < interpEpsilon {
		return p2
	}
	denom := v2 - v1
	if abs32(denom) < interpEpsilon {
		return p1
	}
	return p1.Add(p2.Sub(p1).Mul((threshold - v1) / denom))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
