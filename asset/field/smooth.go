package field

import (
	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/types"
)

const (
	// Smoothing pass count. Two passes remove the grid-aligned faceting
	// marching cubes leaves behind without altering topology.
	smoothIterations = 2

	// How far each vertex moves toward its topological neighbor average.
	relaxWeight float32 = 0.5

	// Squared gradient magnitude below which reprojection is skipped.
	gradCutoff float32 = 1e-12
)

// Smooth the extracted mesh in place. Each pass applies Laplacian relaxation
// over the triangle-adjacency neighborhood followed by a single Newton step
// along the field gradient that restores f(v) = threshold.
func smoothMesh(f Field, threshold float32, verts []types.Vec3, tris []asset.Triangle) {
	adjacency := buildAdjacency(len(verts), tris)
	relaxed := make([]types.Vec3, len(verts))

	for pass := 0; pass < smoothIterations; pass++ {
		for i, nbrs := range adjacency {
			if len(nbrs) == 0 {
				relaxed[i] = verts[i]
				continue
			}
			var avg types.Vec3
			for _, nb := range nbrs {
				avg = avg.Add(verts[nb])
			}
			avg = avg.Mul(1 / float32(len(nbrs)))
			relaxed[i] = verts[i].Add(avg.Sub(verts[i]).Mul(relaxWeight))
		}
		copy(verts, relaxed)

		for i, v := range verts {
			g := f.Gradient(v)
			g2 := g.LenSq()
			if g2 < gradCutoff {
				continue
			}
			verts[i] = v.Sub(g.Mul((f.Eval(v) - threshold) / g2))
		}
	}
}

// Derive per-vertex neighbor lists from triangle edges, deduplicated.
func buildAdjacency(vertCount int, tris []asset.Triangle) [][]uint32 {
	adjacency := make([][]uint32, vertCount)
	seen := make(map[uint64]struct{}, len(tris)*3)

	link := func(a, b uint32) {
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		key := uint64(lo)<<32 | uint64(hi)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		adjacency[a] = append(adjacency[a], b)
		adjacency[b] = append(adjacency[b], a)
	}

	for _, tri := range tris {
		link(tri[0], tri[1])
		link(tri[1], tri[2])
		link(tri[2], tri[0])
	}
	return adjacency
}
