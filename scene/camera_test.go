package scene

import (
	"math"
	"testing"

	"github.com/achilleasa/isoray/types"
)

func TestCameraDepthOffset(t *testing.T) {
	// tan(45°) == 1, so a 90° vertical fov puts the depth offset at half
	// the frame height.
	cam := NewCamera(90)
	depth := cam.DepthOffset(512)
	if math.Abs(float64(depth)-256.0) > 1e-3 {
		t.Fatalf("expected depth offset 256 for a 90 degree fov; got %f", depth)
	}
}

func TestCameraCenterRay(t *testing.T) {
	cam := &Camera{Position: types.Vec3{1, 2, 3}, FOV: 60}
	depth := cam.DepthOffset(256)

	ray := cam.Ray(128, 128, 256, 256, depth)
	if !vecNear(ray.Origin, cam.Position, 1e-6) {
		t.Fatalf("expected ray origin at the camera position; got %v", ray.Origin)
	}
	if !vecNear(ray.Dir, types.Vec3{0, 0, 1}, 1e-6) {
		t.Fatalf("expected center ray to look down +Z; got %v", ray.Dir)
	}
}

func TestCameraRayOrientation(t *testing.T) {
	cam := NewCamera(60)
	depth := cam.DepthOffset(256)

	// Screen y grows downward, world y grows upward.
	up := cam.Ray(128, 0, 256, 256, depth)
	if up.Dir[1] <= 0 {
		t.Fatalf("expected ray through the top row to point up; got %v", up.Dir)
	}

	right := cam.Ray(256, 128, 256, 256, depth)
	if right.Dir[0] <= 0 {
		t.Fatalf("expected ray through the right column to point right; got %v", right.Dir)
	}

	if math.Abs(float64(up.Dir.Len())-1.0) > 1e-5 {
		t.Fatalf("expected normalized ray direction; got length %f", up.Dir.Len())
	}
}
