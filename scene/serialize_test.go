package scene

import (
	"testing"

	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/types"
)

func buildTestFrame(t *testing.T) *Frame {
	world := NewWorld(NewCamera(60), NewGroundSky(-10))
	world.Add(&Object{
		Name:   "box",
		Source: StaticMesh{Mesh: asset.NewBox("box", types.Vec3{1, 1, 1}, types.Vec3{1, 0, 0}, 0)},
		Pose:   FixedPose(Pose{Position: types.Vec3{0, 0, 5}}),
	})
	world.Add(&Object{
		Name:   "floor",
		Source: StaticMesh{Mesh: asset.NewFloorGrid("floor", 4, 2, types.Vec3{1, 1, 1}, types.Vec3{0, 0, 0}, 0.5)},
		Pose:   FixedPose(Pose{Position: types.Vec3{0, -2, 5}}),
	})

	frame, err := world.BuildFrame(0)
	if err != nil {
		t.Fatalf("expected frame build to succeed; got %v", err)
	}
	return frame
}

func TestSerializeOffsets(t *testing.T) {
	frame := buildTestFrame(t)
	buffers := frame.Serialize()

	if len(buffers.Instances) != 2 {
		t.Fatalf("expected 2 serialized instances; got %d", len(buffers.Instances))
	}

	var expVertex, expTri, expNode uint32
	for idx, info := range buffers.Instances {
		if info.VertexOffset != expVertex {
			t.Fatalf("expected instance %d vertex offset %d; got %d", idx, expVertex, info.VertexOffset)
		}
		if info.TriOffset != expTri {
			t.Fatalf("expected instance %d triangle offset %d; got %d", idx, expTri, info.TriOffset)
		}
		if info.NodeOffset != expNode {
			t.Fatalf("expected instance %d node offset %d; got %d", idx, expNode, info.NodeOffset)
		}
		expVertex += info.VertexCount
		expTri += info.TriCount
		expNode += info.NodeCount
	}

	if uint32(len(buffers.Vertices)) != expVertex {
		t.Fatalf("expected %d serialized vertices; got %d", expVertex, len(buffers.Vertices))
	}
	if uint32(len(buffers.Indices)) != expTri*3 {
		t.Fatalf("expected %d serialized indices; got %d", expTri*3, len(buffers.Indices))
	}
	if uint32(len(buffers.Nodes)) != expNode {
		t.Fatalf("expected %d serialized nodes; got %d", expNode, len(buffers.Nodes))
	}
	if len(buffers.Colors) != len(buffers.Indices)/3 {
		t.Fatalf("expected one color per triangle; got %d colors for %d triangles", len(buffers.Colors), len(buffers.Indices)/3)
	}
}

func TestSerializeRebasedIndices(t *testing.T) {
	frame := buildTestFrame(t)
	buffers := frame.Serialize()

	for _, info := range buffers.Instances {
		lo := info.VertexOffset
		hi := info.VertexOffset + info.VertexCount
		for i := info.TriOffset * 3; i < (info.TriOffset+info.TriCount)*3; i++ {
			if buffers.Indices[i] < lo || buffers.Indices[i] >= hi {
				t.Fatalf("instance %q index %d out of its vertex range [%d, %d)", info.Name, buffers.Indices[i], lo, hi)
			}
		}
	}
}

func TestSerializeRebasedNodes(t *testing.T) {
	frame := buildTestFrame(t)
	buffers := frame.Serialize()

	for _, info := range buffers.Instances {
		nodeLo := info.NodeOffset
		nodeHi := info.NodeOffset + info.NodeCount
		for i := nodeLo; i < nodeHi; i++ {
			node := &buffers.Nodes[i]
			if node.IsLeaf() {
				tri := node.TriIndex()
				if tri < info.TriOffset || tri >= info.TriOffset+info.TriCount {
					t.Fatalf("instance %q leaf triangle %d out of range [%d, %d)", info.Name, tri, info.TriOffset, info.TriOffset+info.TriCount)
				}
				continue
			}
			left, right := node.ChildNodes()
			if left < nodeLo || left >= nodeHi || right < nodeLo || right >= nodeHi {
				t.Fatalf("instance %q node children (%d, %d) out of range [%d, %d)", info.Name, left, right, nodeLo, nodeHi)
			}
		}
	}
}

func TestSerializeNormalModes(t *testing.T) {
	frame := buildTestFrame(t)
	buffers := frame.Serialize()

	var expNormals uint32
	for _, info := range buffers.Instances {
		if info.NormalOffset != expNormals {
			t.Fatalf("expected instance %q normal offset %d; got %d", info.Name, expNormals, info.NormalOffset)
		}
		switch info.Mode {
		case asset.FlatNormals:
			expNormals += info.TriCount
		case asset.SmoothNormals:
			expNormals += info.VertexCount
		}
	}
	if uint32(len(buffers.Normals)) != expNormals {
		t.Fatalf("expected %d serialized normals; got %d", expNormals, len(buffers.Normals))
	}
}
