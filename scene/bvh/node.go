// Package bvh builds and traverses the bounding volume hierarchies that
// accelerate ray-scene intersection tests.
package bvh

import "github.com/achilleasa/isoray/types"

// Bvh nodes are comprised of two Vec3 and two multipurpose int32 parameters
// whose value depends on the node type:
//
//   - for inner nodes both LData and RData are >= 0 and point to the L/R
//     child nodes
//   - for leafs LData is < 0 and RData carries the triangle index
//
// The struct doubles as the serialized node layout: each node occupies two
// consecutive float4-sized slots, (Min.xyz, LData) and (Max.xyz, RData).
type Node struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set bounding box.
func (n *Node) SetBBox(box types.AABB) {
	n.Min = box.Min
	n.Max = box.Max
}

// Get bounding box.
func (n *Node) BBox() types.AABB {
	return types.AABB{Min: n.Min, Max: n.Max}
}

// Set left and right child node indices.
func (n *Node) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Get left and right child node indices. Only valid for inner nodes.
func (n *Node) ChildNodes() (left, right uint32) {
	return uint32(n.LData), uint32(n.RData)
}

// Mark node as a leaf holding the given triangle.
func (n *Node) SetLeaf(triIndex uint32) {
	n.LData = -1
	n.RData = int32(triIndex)
}

// Check whether this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.LData < 0
}

// Get leaf triangle index. Only valid for leafs.
func (n *Node) TriIndex() uint32 {
	return uint32(n.RData)
}

// Add offsets to the child node indices of inner nodes and the triangle
// indices of leafs. Used when concatenating per-instance trees into one
// serialized node buffer.
func (n *Node) Offset(nodeOffset, triOffset int32) {
	if n.IsLeaf() {
		n.RData += triOffset
		return
	}
	n.LData += nodeOffset
	n.RData += nodeOffset
}
