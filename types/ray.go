package types

import "math"

// A ray with precomputed reciprocal direction components for slab tests.
type Ray struct {
	Origin Vec3
	Dir    Vec3
	InvDir Vec3
}

// Create a new ray. The direction is normalized and its reciprocal cached.
// Zero direction components map to +Inf reciprocals which the slab test
// handles via IEEE infinity arithmetic.
func NewRay(origin, dir Vec3) Ray {
	d := dir.Normalize()
	return Ray{
		Origin: origin,
		Dir:    d,
		InvDir: Vec3{1.0 / d[0], 1.0 / d[1], 1.0 / d[2]},
	}
}

// An axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Create an AABB primed for incremental expansion.
func NewAABB() AABB {
	return AABB{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Expand box to include point.
func (b AABB) Include(p Vec3) AABB {
	return AABB{
		Min: MinVec3(b.Min, p),
		Max: MaxVec3(b.Max, p),
	}
}

// Expand box to include another box.
func (b AABB) Union(b2 AABB) AABB {
	return AABB{
		Min: MinVec3(b.Min, b2.Min),
		Max: MaxVec3(b.Max, b2.Max),
	}
}

// Box center point.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Check whether point p lies inside the box expanded by eps on all sides.
func (b AABB) Contains(p Vec3, eps float32) bool {
	return p[0] >= b.Min[0]-eps && p[0] <= b.Max[0]+eps &&
		p[1] >= b.Min[1]-eps && p[1] <= b.Max[1]+eps &&
		p[2] >= b.Min[2]-eps && p[2] <= b.Max[2]+eps
}

// Slab test against a ray. Per axis the entry/exit parametric distances are
// intersected into a single interval; the box is hit when the interval is
// non-empty and not entirely behind the ray origin.
func (b AABB) IntersectRay(r Ray, maxDist float32) bool {
	tmin := float32(0)
	tmax := maxDist

	for axis := 0; axis < 3; axis++ {
		t1 := (b.Min[axis] - r.Origin[axis]) * r.InvDir[axis]
		t2 := (b.Max[axis] - r.Origin[axis]) * r.InvDir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return false
		}
	}
	return true
}
