package bvh

import (
	"sort"
	"time"

	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/log"
	"github.com/achilleasa/isoray/types"
)

type stats struct {
	nodes    int
	leafs    int
	maxDepth int
}

type triRef struct {
	index    uint32
	centroid types.Vec3
	box      types.AABB
}

type builder struct {
	logger log.Logger

	// Bvh nodes stored as a contiguous list, root at index 0.
	nodes []Node

	stats stats
}

// Construct a BVH over a triangle set with world-space vertices. The tree is
// built by median splits: each range is ordered by triangle centroid along
// the axis of greatest box extent and divided at the midpoint, yielding one
// triangle per leaf. Ordering is stable so equal centroids keep their input
// order and repeated builds of the same mesh are identical.
//
// An empty triangle set yields an empty (nil) node list.
func Build(vertices []types.Vec3, triangles []asset.Triangle) []Node {
	if len(triangles) == 0 {
		return nil
	}

	work := make([]triRef, len(triangles))
	for i, tri := range triangles {
		v0, v1, v2 := vertices[tri[0]], vertices[tri[1]], vertices[tri[2]]
		box := types.AABB{
			Min: types.MinVec3(v0, types.MinVec3(v1, v2)),
			Max: types.MaxVec3(v0, types.MaxVec3(v1, v2)),
		}
		work[i] = triRef{
			index:    uint32(i),
			centroid: v0.Add(v1).Add(v2).Mul(1.0 / 3.0),
			box:      box,
		}
	}

	b := &builder{
		logger: log.New("bvh"),
		nodes:  make([]Node, 0, 2*len(triangles)-1),
	}

	start := time.Now()
	b.partition(work, 0)
	b.logger.Debugf(
		"built tree over %d triangles in %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		len(triangles), time.Since(start).Nanoseconds()/1e6,
		b.stats.maxDepth, b.stats.nodes, b.stats.leafs,
	)
	return b.nodes
}

// Partition a triangle range and return its node index.
func (b *builder) partition(work []triRef, depth int) uint32 {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	box := types.NewAABB()
	for _, ref := range work {
		box = box.Union(ref.box)
	}

	var node Node
	node.SetBBox(box)

	if len(work) == 1 {
		node.SetLeaf(work[0].index)
		nodeIndex := len(b.nodes)
		b.nodes = append(b.nodes, node)
		b.stats.leafs++
		return uint32(nodeIndex)
	}

	// Split along the axis where the node box extends furthest.
	side := box.Max.Sub(box.Min)
	axis := 0
	if side[1] > side[axis] {
		axis = 1
	}
	if side[2] > side[axis] {
		axis = 2
	}

	sort.SliceStable(work, func(i, j int) bool {
		return work[i].centroid[axis] < work[j].centroid[axis]
	})
	mid := len(work) / 2

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.stats.nodes++

	left := b.partition(work[:mid], depth+1)
	right := b.partition(work[mid:], depth+1)
	b.nodes[nodeIndex].SetChildNodes(left, right)

	return uint32(nodeIndex)
}
