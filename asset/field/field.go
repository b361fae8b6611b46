// Package field implements the procedural metaball mesh generator: scalar
// field evaluation, marching-cubes isosurface extraction, Laplacian smoothing
// with isosurface reprojection and analytic normals.
package field

import (
	"math"

	"github.com/achilleasa/isoray/types"
)

const (
	// Guard against division by zero when a sample point coincides with a
	// ball center.
	distEpsilon float32 = 1e-6

	// The sampled bounding cube extends past each ball's radius by this
	// factor so the isosurface never clips against the grid boundary.
	paddingFactor float32 = 2.0
)

// A single metaball source.
type Ball struct {
	Center types.Vec3
	Radius float32
}

// A scalar field summing inverse-square falloff contributions from a set of
// metaballs: f(p) = Σ rᵢ² / (|p - cᵢ|² + ε).
type Field struct {
	Balls []Ball
}

// Evaluate the field at p.
func (f Field) Eval(p types.Vec3) float32 {
	var sum float32
	for _, b := range f.Balls {
		d := p.Sub(b.Center)
		sum += b.Radius * b.Radius / (d.LenSq() + distEpsilon)
	}
	return sum
}

// Evaluate the analytic field gradient at p:
// ∇f = Σ -2·rᵢ²·(p - cᵢ) / (|p - cᵢ|² + ε)².
func (f Field) Gradient(p types.Vec3) types.Vec3 {
	var grad types.Vec3
	for _, b := range f.Balls {
		d := p.Sub(b.Center)
		denom := d.LenSq() + distEpsilon
		grad = grad.Add(d.Mul(-2 * b.Radius * b.Radius / (denom * denom)))
	}
	return grad
}

// Surface normal at p. The gradient points toward the field sources, so the
// outward normal is its negation.
func (f Field) Normal(p types.Vec3) types.Vec3 {
	g := f.Gradient(p)
	return types.Vec3{-g[0], -g[1], -g[2]}.Normalize()
}

// Compute the cubic sampling region: the union of all ball extents expanded
// by the padding factor, then grown to equal side lengths.
func (f Field) Bounds() types.AABB {
	if len(f.Balls) == 0 {
		return types.AABB{}
	}

	box := types.NewAABB()
	for _, b := range f.Balls {
		r := b.Radius * paddingFactor
		box = box.Include(b.Center.Sub(types.Vec3{r, r, r}))
		box = box.Include(b.Center.Add(types.Vec3{r, r, r}))
	}

	// Cubify around the center so cell size is uniform per axis.
	side := box.Max.Sub(box.Min)
	maxSide := float32(math.Max(float64(side[0]), math.Max(float64(side[1]), float64(side[2]))))
	center := box.Center()
	h := maxSide * 0.5
	return types.AABB{
		Min: center.Sub(types.Vec3{h, h, h}),
		Max: center.Add(types.Vec3{h, h, h}),
	}
}
