package scene

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/achilleasa/isoray/types"
)

func TestGroundSkyPlaneHit(t *testing.T) {
	env := NewGroundSky(-2)
	ray := types.NewRay(types.Vec3{0.5, 0, 0.5}, types.Vec3{0, -1, 0})

	hit, ok := env.Intersect(ray, math.MaxFloat32)
	if !ok {
		t.Fatal("expected downward ray to hit the ground plane")
	}
	if math.Abs(float64(hit.T)-2.0) > 1e-5 {
		t.Fatalf("expected hit distance 2; got %f", hit.T)
	}
	if hit.Normal != (types.Vec3{0, 1, 0}) {
		t.Fatalf("expected the plane normal to point up; got %v", hit.Normal)
	}

	if !env.AnyHit(ray, math.MaxFloat32) {
		t.Fatal("expected AnyHit to agree with Intersect")
	}
	if env.AnyHit(ray, 1.0) {
		t.Fatal("expected no occlusion within maxDist 1")
	}
}

func TestGroundSkyParallelAndUpwardRays(t *testing.T) {
	env := NewGroundSky(-2)

	horizontal := types.NewRay(types.Vec3{0, 0, 0}, types.Vec3{1, 0, 0})
	if _, ok := env.Intersect(horizontal, math.MaxFloat32); ok {
		t.Fatal("expected ray parallel to the plane to miss")
	}

	upward := types.NewRay(types.Vec3{0, 0, 0}, types.Vec3{0, 1, 0})
	if _, ok := env.Intersect(upward, math.MaxFloat32); ok {
		t.Fatal("expected ray pointing away from the plane to miss")
	}
}

func TestGroundSkyChecker(t *testing.T) {
	env := NewGroundSky(0)

	hitTile := func(x, z float32) types.Vec3 {
		ray := types.NewRay(types.Vec3{x, 1, z}, types.Vec3{0, -1, 0})
		hit, ok := env.Intersect(ray, math.MaxFloat32)
		if !ok {
			t.Fatalf("expected hit at tile (%f, %f)", x, z)
		}
		return hit.Color
	}

	if hitTile(0.5, 0.5) != env.TileA {
		t.Fatal("expected the origin tile to use the primary color")
	}
	if hitTile(1.5, 0.5) != env.TileB {
		t.Fatal("expected the next tile over to use the alternate color")
	}
	if hitTile(1.5, 1.5) != env.TileA {
		t.Fatal("expected the diagonal tile to use the primary color again")
	}
}

func TestGroundSkyGradient(t *testing.T) {
	env := NewGroundSky(0)

	if env.MissColor(types.Vec3{0, 1, 0}) != env.Zenith {
		t.Fatal("expected straight-up miss to return the zenith color")
	}
	if env.MissColor(types.Vec3{1, 0, 0}) != env.Horizon {
		t.Fatal("expected horizontal miss to return the horizon color")
	}
	// Below the horizon the gradient clamps.
	if env.MissColor(types.Vec3{0, -1, 0}) != env.Horizon {
		t.Fatal("expected downward miss to clamp to the horizon color")
	}
}

func TestGroundSkyImageLookup(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			// Top half red, bottom half green.
			c := color.RGBA{R: 255, A: 255}
			if y == 1 {
				c = color.RGBA{G: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}

	env := NewGroundSky(0)
	env.Sky = img

	up := env.MissColor(types.Vec3{0, 1, 0})
	if up[0] < 0.9 || up[1] > 0.1 {
		t.Fatalf("expected upward miss to sample the top (red) half; got %v", up)
	}

	down := env.MissColor(types.Vec3{0, -1, 0})
	if down[1] < 0.9 || down[0] > 0.1 {
		t.Fatalf("expected downward miss to sample the bottom (green) half; got %v", down)
	}
}
