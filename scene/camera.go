package scene

import (
	"math"

	"github.com/achilleasa/isoray/types"
)

// A pinhole camera sitting at Position and looking down +Z. Primary ray
// directions are derived from a pixel's offset from the screen center and a
// depth offset computed from the vertical field of view.
type Camera struct {
	Position types.Vec3

	// Vertical field of view in degrees.
	FOV float32
}

func NewCamera(fov float32) *Camera {
	return &Camera{FOV: fov}
}

// Compute the fixed ray depth offset for a frame height. Pixel (x, y) maps
// to the un-normalized direction (x - w/2, h/2 - y, depth).
func (c *Camera) DepthOffset(frameH uint32) float32 {
	halfFov := float64(c.FOV) * math.Pi / 360.0
	return float32(frameH) / (2.0 * float32(math.Tan(halfFov)))
}

// Generate the primary ray through the given screen coordinates. px/py are
// continuous pixel positions (sub-pixel offsets included by the caller).
func (c *Camera) Ray(px, py float32, frameW, frameH uint32, depth float32) types.Ray {
	dir := types.Vec3{
		px - float32(frameW)*0.5,
		float32(frameH)*0.5 - py,
		depth,
	}
	return types.NewRay(c.Position, dir)
}
