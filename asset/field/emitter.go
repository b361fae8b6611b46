package field

import (
	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/types"
)

// A single animated metaball: a radius plus a time-parameterized center.
type BallPath struct {
	Radius float32
	Center func(t float64) types.Vec3
}

// An Emitter produces a fresh metaball mesh for each scene time. The previous
// frame's mesh is discarded wholesale; there is no incremental update.
type Emitter struct {
	Name         string
	Paths        []BallPath
	GridRes      int
	Threshold    float32
	Color        types.Vec3
	Reflectivity float32
}

// Evaluate all ball paths at time t and polygonize the resulting field.
func (e *Emitter) MeshAt(t float64) *asset.Mesh {
	balls := make([]Ball, len(e.Paths))
	for i, p := range e.Paths {
		balls[i] = Ball{
			Center: p.Center(t),
			Radius: p.Radius,
		}
	}

	mesh := Polygonize(Field{Balls: balls}, e.GridRes, e.Threshold)
	mesh.Name = e.Name
	mesh.Reflectivity = e.Reflectivity
	mesh.SetUniformColor(e.Color)
	return mesh
}
