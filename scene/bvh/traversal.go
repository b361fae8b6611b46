package bvh

import "github.com/achilleasa/isoray/types"

const (
	// Capacity of the fixed traversal stack. A median-split tree over n
	// triangles is at most ~log2(n) + a few levels deep, so 64 covers any
	// mesh that fits in memory. If the stack ever fills, traversal drops
	// the node instead of crashing and may report a miss; debug builds
	// assert (see assert_debug.go).
	maxStackDepth = 64

	// Determinants below this magnitude mean the ray is parallel to the
	// triangle plane; such rays miss.
	detEpsilon float32 = 1e-7

	// Hits closer than this are behind or on the ray origin and rejected.
	minHitDist float32 = 1e-4
)

// A triangle intersection found during traversal.
type Hit struct {
	// Parametric hit distance along the ray.
	T float32

	// Barycentric interpolation parameters.
	U, V float32

	// Index of the hit triangle in the serialized index buffer.
	Tri uint32
}

// Find the nearest triangle intersection along ray, walking the tree rooted
// at nodes[root]. Triangle vertices are fetched from the serialized vertex
// and index buffers; leaf triangle indices must already be rebased to them.
// Returns false when nothing is hit within maxDist.
func ClosestHit(nodes []Node, root uint32, vertices []types.Vec4, indices []uint32, ray types.Ray, maxDist float32) (Hit, bool) {
	if len(nodes) == 0 {
		return Hit{}, false
	}

	var stack [maxStackDepth]uint32
	stack[0] = root
	sp := 1

	best := Hit{T: maxDist}
	found := false

	for sp > 0 {
		sp--
		node := &nodes[stack[sp]]

		if !node.BBox().IntersectRay(ray, best.T) {
			continue
		}

		if node.IsLeaf() {
			tri := node.TriIndex()
			v0 := vertices[indices[tri*3]].Vec3()
			v1 := vertices[indices[tri*3+1]].Vec3()
			v2 := vertices[indices[tri*3+2]].Vec3()
			if t, u, v, ok := intersectTriangle(ray, v0, v1, v2); ok && t < best.T {
				best = Hit{T: t, U: u, V: v, Tri: tri}
				found = true
			}
			continue
		}

		left, right := node.ChildNodes()
		if sp+2 > maxStackDepth {
			assertStack()
			continue
		}
		stack[sp] = left
		stack[sp+1] = right
		sp += 2
	}

	return best, found
}

// Check whether any triangle blocks the ray within maxDist. Returns on the
// first qualifying hit with no ordering guarantees.
func AnyHit(nodes []Node, root uint32, vertices []types.Vec4, indices []uint32, ray types.Ray, maxDist float32) bool {
	if len(nodes) == 0 {
		return false
	}

	var stack [maxStackDepth]uint32
	stack[0] = root
	sp := 1

	for sp > 0 {
		sp--
		node := &nodes[stack[sp]]

		if !node.BBox().IntersectRay(ray, maxDist) {
			continue
		}

		if node.IsLeaf() {
			tri := node.TriIndex()
			v0 := vertices[indices[tri*3]].Vec3()
			v1 := vertices[indices[tri*3+1]].Vec3()
			v2 := vertices[indices[tri*3+2]].Vec3()
			if t, _, _, ok := intersectTriangle(ray, v0, v1, v2); ok && t <= maxDist {
				return true
			}
			continue
		}

		left, right := node.ChildNodes()
		if sp+2 > maxStackDepth {
			assertStack()
			continue
		}
		stack[sp] = left
		stack[sp+1] = right
		sp += 2
	}

	return false
}

// Möller–Trumbore ray/triangle intersection. Near-parallel rays, barycentric
// coordinates outside the simplex and hits behind the origin are all misses.
func intersectTriangle(ray types.Ray, v0, v1, v2 types.Vec3) (t, u, v float32, ok bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)

	pvec := ray.Dir.Cross(e2)
	det := e1.Dot(pvec)
	if det > -detEpsilon && det < detEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1.0 / det

	tvec := ray.Origin.Sub(v0)
	u = tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(e1)
	v = ray.Dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(qvec) * invDet
	if t < minHitDist {
		return 0, 0, 0, false
	}

	return t, u, v, true
}
