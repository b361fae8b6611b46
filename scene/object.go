package scene

import (
	"math"

	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/types"
)

// A MeshSource yields the mesh for an object at a given scene time. Static
// objects return the same mesh every frame; procedural objects (metaball
// emitters) rebuild it from scratch.
type MeshSource interface {
	MeshAt(t float64) *asset.Mesh
}

// StaticMesh adapts a fixed mesh to the MeshSource interface.
type StaticMesh struct {
	Mesh *asset.Mesh
}

func (s StaticMesh) MeshAt(float64) *asset.Mesh {
	return s.Mesh
}

// An object's placement for one frame: world position plus Euler rotation
// angles in radians, applied in Y, X, Z order.
type Pose struct {
	Position types.Vec3
	Rotation types.Vec3
}

// PoseFunc evaluates an object's pose at scene time t (seconds).
type PoseFunc func(t float64) Pose

// FixedPose adapts a constant pose to PoseFunc.
func FixedPose(p Pose) PoseFunc {
	return func(float64) Pose { return p }
}

// An Object pairs a mesh source with its animated pose.
type Object struct {
	Name   string
	Source MeshSource
	Pose   PoseFunc
}

// A rotator caches the six trigonometric values of an Euler rotation so a
// whole vertex buffer can be transformed without re-evaluating them.
type rotator struct {
	sinX, cosX float32
	sinY, cosY float32
	sinZ, cosZ float32
}

func newRotator(angles types.Vec3) rotator {
	return rotator{
		sinX: float32(math.Sin(float64(angles[0]))),
		cosX: float32(math.Cos(float64(angles[0]))),
		sinY: float32(math.Sin(float64(angles[1]))),
		cosY: float32(math.Cos(float64(angles[1]))),
		sinZ: float32(math.Sin(float64(angles[2]))),
		cosZ: float32(math.Cos(float64(angles[2]))),
	}
}

// Rotate v by the cached angles, Y then X then Z.
func (r rotator) rotate(v types.Vec3) types.Vec3 {
	x := v[0]*r.cosY + v[2]*r.sinY
	z := -v[0]*r.sinY + v[2]*r.cosY

	y := v[1]*r.cosX - z*r.sinX
	z = v[1]*r.sinX + z*r.cosX

	return types.Vec3{
		x*r.cosZ - y*r.sinZ,
		x*r.sinZ + y*r.cosZ,
		z,
	}
}
