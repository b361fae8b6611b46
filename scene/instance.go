package scene

import (
	"fmt"
	"time"

	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/log"
	"github.com/achilleasa/isoray/scene/bvh"
	"github.com/achilleasa/isoray/types"
)

// An Instance is one object's geometry transformed into world space for the
// current frame together with its acceleration tree. Instances are created
// fresh every frame by the world's frame build and are read-only from then
// on.
type Instance struct {
	Name string

	Vertices  []types.Vec3
	Triangles []asset.Triangle

	Mode          asset.NormalMode
	FaceNormals   []types.Vec3
	VertexNormals []types.Vec3

	Colors       []types.Vec3
	Reflectivity float32

	Nodes  []bvh.Node
	Bounds types.AABB
}

// A Frame is the fully built scene state for one point in time.
type Frame struct {
	Time      float64
	Instances []*Instance
}

// The World holds the scene's object descriptors, camera and environment and
// orchestrates per-frame rebuilds.
type World struct {
	Objects     []*Object
	Camera      *Camera
	Environment Environment

	logger log.Logger
}

func NewWorld(camera *Camera, env Environment) *World {
	return &World{
		Camera:      camera,
		Environment: env,
		logger:      log.New("scene"),
	}
}

// Add an object to the world.
func (w *World) Add(obj *Object) {
	w.Objects = append(w.Objects, obj)
}

// Build the frame for scene time t: evaluate each object's pose, transform
// its mesh into world space, rebuild its BVH and derive its bounding box from
// the tree root. Mesh invariant violations abort the build; they indicate a
// defect in the producing code.
func (w *World) BuildFrame(t float64) (*Frame, error) {
	start := time.Now()

	frame := &Frame{
		Time:      t,
		Instances: make([]*Instance, 0, len(w.Objects)),
	}

	for _, obj := range w.Objects {
		mesh := obj.Source.MeshAt(t)
		if err := mesh.Validate(); err != nil {
			return nil, fmt.Errorf("scene: object %q: %v", obj.Name, err)
		}

		pose := obj.Pose(t)
		inst := transformInstance(obj.Name, mesh, pose)

		inst.Nodes = bvh.Build(inst.Vertices, inst.Triangles)
		if len(inst.Nodes) > 0 {
			inst.Bounds = inst.Nodes[0].BBox()
		} else {
			inst.Bounds = types.NewAABB()
		}

		frame.Instances = append(frame.Instances, inst)
	}

	w.logger.Debugf("built frame t=%.3f (%d instances) in %d ms",
		t, len(frame.Instances), time.Since(start).Nanoseconds()/1e6)
	return frame, nil
}

// Rotate and translate a mesh into world space. Normals receive the rotation
// only.
func transformInstance(name string, mesh *asset.Mesh, pose Pose) *Instance {
	rot := newRotator(pose.Rotation)

	inst := &Instance{
		Name:         name,
		Vertices:     make([]types.Vec3, len(mesh.Vertices)),
		Triangles:    mesh.Triangles,
		Mode:         mesh.Mode,
		Colors:       mesh.Colors,
		Reflectivity: mesh.Reflectivity,
	}

	for i, v := range mesh.Vertices {
		inst.Vertices[i] = rot.rotate(v).Add(pose.Position)
	}

	switch mesh.Mode {
	case asset.FlatNormals:
		inst.FaceNormals = make([]types.Vec3, len(mesh.FaceNormals))
		for i, n := range mesh.FaceNormals {
			inst.FaceNormals[i] = rot.rotate(n)
		}
	case asset.SmoothNormals:
		inst.VertexNormals = make([]types.Vec3, len(mesh.VertexNormals))
		for i, n := range mesh.VertexNormals {
			inst.VertexNormals[i] = rot.rotate(n)
		}
	}

	return inst
}
