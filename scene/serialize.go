package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/scene/bvh"
	"github.com/achilleasa/isoray/types"
	"github.com/olekukonko/tablewriter"
)

// Serialized per-instance metadata. Offsets address the shared flat buffers
// in Buffers.
type InstanceInfo struct {
	Name string

	VertexOffset uint32
	VertexCount  uint32

	TriOffset uint32
	TriCount  uint32

	// Start of this instance's normals. Smooth instances store one normal
	// per vertex, flat instances one per triangle.
	NormalOffset uint32
	Mode         asset.NormalMode

	ColorOffset uint32

	// Root node of this instance's tree in the shared node buffer.
	NodeOffset uint32
	NodeCount  uint32

	Reflectivity float32
	Bounds       types.AABB
}

// Buffers is the flat serialized form of a frame consumed by every tracer
// backend: one Vec4 slot per vertex, three indices per triangle (rebased to
// the shared vertex buffer), a mode-dependent normal buffer, a per-triangle
// color buffer and a node buffer where each bvh.Node spans two float4-sized
// slots — (bmin.xyz, leftChild) and (bmax.xyz, rightChild), a negative
// fourth field in the first slot flagging a leaf whose triangle index sits
// in the second slot's fourth field.
type Buffers struct {
	Vertices  []types.Vec4
	Indices   []uint32
	Normals   []types.Vec4
	Colors    []types.Vec4
	Nodes     []bvh.Node
	Instances []InstanceInfo
}

// Serialize flattens the frame's instances into shared buffers. Triangle and
// child node indices are rebased so each instance's tree can be walked
// directly against the shared buffers.
func (f *Frame) Serialize() *Buffers {
	b := &Buffers{
		Instances: make([]InstanceInfo, 0, len(f.Instances)),
	}

	for _, inst := range f.Instances {
		info := InstanceInfo{
			Name:         inst.Name,
			VertexOffset: uint32(len(b.Vertices)),
			VertexCount:  uint32(len(inst.Vertices)),
			TriOffset:    uint32(len(b.Indices) / 3),
			TriCount:     uint32(len(inst.Triangles)),
			NormalOffset: uint32(len(b.Normals)),
			Mode:         inst.Mode,
			ColorOffset:  uint32(len(b.Colors)),
			NodeOffset:   uint32(len(b.Nodes)),
			NodeCount:    uint32(len(inst.Nodes)),
			Reflectivity: inst.Reflectivity,
			Bounds:       inst.Bounds,
		}

		for _, v := range inst.Vertices {
			b.Vertices = append(b.Vertices, v.Vec4(1))
		}
		for _, tri := range inst.Triangles {
			b.Indices = append(b.Indices,
				info.VertexOffset+tri[0],
				info.VertexOffset+tri[1],
				info.VertexOffset+tri[2],
			)
		}

		switch inst.Mode {
		case asset.FlatNormals:
			for _, n := range inst.FaceNormals {
				b.Normals = append(b.Normals, n.Vec4(0))
			}
		case asset.SmoothNormals:
			for _, n := range inst.VertexNormals {
				b.Normals = append(b.Normals, n.Vec4(0))
			}
		}

		for _, c := range inst.Colors {
			b.Colors = append(b.Colors, c.Vec4(1))
		}

		for _, node := range inst.Nodes {
			node.Offset(int32(info.NodeOffset), int32(info.TriOffset))
			b.Nodes = append(b.Nodes, node)
		}

		b.Instances = append(b.Instances, info)
	}

	return b
}

// Build a tabular representation of serialized scene statistics.
func (b *Buffers) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Instance", "Triangles", "Vertices", "BVH nodes", "Normals", "Reflectivity"})
	for _, info := range b.Instances {
		table.Append([]string{
			info.Name,
			fmt.Sprintf("%d", info.TriCount),
			fmt.Sprintf("%d", info.VertexCount),
			fmt.Sprintf("%d", info.NodeCount),
			info.Mode.String(),
			fmt.Sprintf("%.2f", info.Reflectivity),
		})
	}
	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d", len(b.Indices)/3),
		fmt.Sprintf("%d", len(b.Vertices)),
		fmt.Sprintf("%d", len(b.Nodes)),
		"",
		strings.TrimLeft(fmtSize(b.Vertices, b.Indices, b.Normals, b.Colors, b.Nodes), " "),
	})
	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
