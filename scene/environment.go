package scene

import (
	"image"
	"math"

	"github.com/achilleasa/isoray/types"
)

// An intersection with the environment.
type EnvHit struct {
	T            float32
	Normal       types.Vec3
	Color        types.Vec3
	Reflectivity float32
}

// The Environment interface abstracts everything the tracer can hit that is
// not instanced mesh geometry. The shading pipeline depends only on this
// interface, never on what the environment actually contains.
type Environment interface {
	// Intersect returns the nearest environment hit within maxDist.
	Intersect(ray types.Ray, maxDist float32) (EnvHit, bool)

	// AnyHit reports whether the environment blocks the ray within maxDist.
	AnyHit(ray types.Ray, maxDist float32) bool

	// MissColor returns the color seen by a ray that hits nothing.
	MissColor(dir types.Vec3) types.Vec3
}

// GroundSky is the default environment: an infinite checkerboard ground
// plane plus a directional sky lookup (textured when a sky image is set,
// otherwise a vertical gradient).
type GroundSky struct {
	// Height of the ground plane.
	PlaneY float32

	// Checker tile side length.
	TileSize float32

	// The two alternating tile colors.
	TileA, TileB types.Vec3

	// Ground reflectivity.
	Reflectivity float32

	// Optional equirectangular sky image.
	Sky image.Image

	// Gradient fallback colors when no sky image is set.
	Horizon, Zenith types.Vec3
}

// NewGroundSky returns the stock gray-checker environment with a blue
// gradient sky.
func NewGroundSky(planeY float32) *GroundSky {
	return &GroundSky{
		PlaneY:   planeY,
		TileSize: 1.0,
		TileA:    types.Vec3{0.85, 0.85, 0.85},
		TileB:    types.Vec3{0.35, 0.35, 0.4},
		Horizon:  types.Vec3{0.75, 0.85, 1.0},
		Zenith:   types.Vec3{0.25, 0.45, 0.85},
	}
}

func (g *GroundSky) Intersect(ray types.Ray, maxDist float32) (EnvHit, bool) {
	t, ok := g.planeHit(ray, maxDist)
	if !ok {
		return EnvHit{}, false
	}

	p := ray.Origin.Add(ray.Dir.Mul(t))
	color := g.TileA
	ix := int(math.Floor(float64(p[0] / g.TileSize)))
	iz := int(math.Floor(float64(p[2] / g.TileSize)))
	if (ix+iz)&1 != 0 {
		color = g.TileB
	}

	return EnvHit{
		T:            t,
		Normal:       types.Vec3{0, 1, 0},
		Color:        color,
		Reflectivity: g.Reflectivity,
	}, true
}

func (g *GroundSky) AnyHit(ray types.Ray, maxDist float32) bool {
	_, ok := g.planeHit(ray, maxDist)
	return ok
}

func (g *GroundSky) planeHit(ray types.Ray, maxDist float32) (float32, bool) {
	const parallelEps float32 = 1e-7
	const minDist float32 = 1e-4

	if ray.Dir[1] > -parallelEps && ray.Dir[1] < parallelEps {
		return 0, false
	}
	t := (g.PlaneY - ray.Origin[1]) / ray.Dir[1]
	if t < minDist || t > maxDist {
		return 0, false
	}
	return t, true
}

// MissColor samples the sky for a ray direction. With a sky image set the
// direction is mapped to equirectangular coordinates; otherwise the vertical
// component selects a horizon-to-zenith gradient.
func (g *GroundSky) MissColor(dir types.Vec3) types.Vec3 {
	if g.Sky != nil {
		u := float64(0.5) + math.Atan2(float64(dir[2]), float64(dir[0]))/(2*math.Pi)
		v := 0.5 - math.Asin(math.Max(-1, math.Min(1, float64(dir[1]))))/math.Pi

		b := g.Sky.Bounds()
		x := b.Min.X + int(u*float64(b.Dx()))
		y := b.Min.Y + int(v*float64(b.Dy()))
		if x >= b.Max.X {
			x = b.Max.X - 1
		}
		if y >= b.Max.Y {
			y = b.Max.Y - 1
		}

		r, gc, bc, _ := g.Sky.At(x, y).RGBA()
		return types.Vec3{float32(r) / 65535.0, float32(gc) / 65535.0, float32(bc) / 65535.0}
	}

	up := dir[1]
	if up < 0 {
		up = 0
	}
	return g.Horizon.Add(g.Zenith.Sub(g.Horizon).Mul(up))
}
