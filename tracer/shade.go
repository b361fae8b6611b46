package tracer

import (
	"math"

	"github.com/achilleasa/isoray/asset"
	"github.com/achilleasa/isoray/scene"
	"github.com/achilleasa/isoray/scene/bvh"
	"github.com/achilleasa/isoray/types"
)

// The read-only per-frame state shared by all backends: serialized geometry
// buffers, the environment collaborator and camera parameters. Once a frame's
// build finishes this is never mutated while blocks are in flight.
type sceneContext struct {
	buffers *scene.Buffers
	env     scene.Environment
	camera  *scene.Camera

	frameW, frameH uint32
	depthOffset    float32

	light types.Vec3
}

// A resolved shading point.
type surfaceHit struct {
	instance     int32
	point        types.Vec3
	normal       types.Vec3
	color        types.Vec3
	reflectivity float32
}

// An integrator evaluates the full light transport for one primary ray. The
// sequential backend uses bounded recursion, the parallel one an iterative
// weight-accumulation loop; both must produce numerically equivalent results.
type integrator func(c *sceneContext, ray types.Ray, rng *prng) types.Vec3

// Find the globally nearest hit across all instances and the environment,
// and resolve its shading attributes.
func (c *sceneContext) closestHit(ray types.Ray) (surfaceHit, bool) {
	bestT := float32(math.MaxFloat32)
	bestInst := -1
	var bestHit bvh.Hit

	for i := range c.buffers.Instances {
		info := &c.buffers.Instances[i]
		if info.NodeCount == 0 || !info.Bounds.IntersectRay(ray, bestT) {
			continue
		}
		if hit, ok := bvh.ClosestHit(c.buffers.Nodes, info.NodeOffset, c.buffers.Vertices, c.buffers.Indices, ray, bestT); ok {
			bestT = hit.T
			bestHit = hit
			bestInst = i
		}
	}

	if envHit, ok := c.env.Intersect(ray, bestT); ok {
		normal := envHit.Normal
		if normal.Dot(ray.Dir) > 0 {
			normal = normal.Mul(-1)
		}
		return surfaceHit{
			instance:     envInstance,
			point:        ray.Origin.Add(ray.Dir.Mul(envHit.T)),
			normal:       normal,
			color:        envHit.Color,
			reflectivity: envHit.Reflectivity,
		}, true
	}

	if bestInst < 0 {
		return surfaceHit{instance: noInstance}, false
	}

	info := &c.buffers.Instances[bestInst]
	return surfaceHit{
		instance:     int32(bestInst),
		point:        ray.Origin.Add(ray.Dir.Mul(bestHit.T)),
		normal:       c.resolveNormal(info, ray, bestHit),
		color:        c.buffers.Colors[info.ColorOffset+(bestHit.Tri-info.TriOffset)].Vec3(),
		reflectivity: info.Reflectivity,
	}, true
}

// Resolve the shading normal for a triangle hit: barycentric blend for
// smooth instances, the face normal otherwise, flipped to face the incoming
// ray since triangles are double-sided.
func (c *sceneContext) resolveNormal(info *scene.InstanceInfo, ray types.Ray, hit bvh.Hit) types.Vec3 {
	var normal types.Vec3

	if info.Mode == asset.SmoothNormals {
		i0 := c.buffers.Indices[hit.Tri*3] - info.VertexOffset
		i1 := c.buffers.Indices[hit.Tri*3+1] - info.VertexOffset
		i2 := c.buffers.Indices[hit.Tri*3+2] - info.VertexOffset
		n0 := c.buffers.Normals[info.NormalOffset+i0].Vec3()
		n1 := c.buffers.Normals[info.NormalOffset+i1].Vec3()
		n2 := c.buffers.Normals[info.NormalOffset+i2].Vec3()
		w := 1 - hit.U - hit.V
		normal = n0.Mul(w).Add(n1.Mul(hit.U)).Add(n2.Mul(hit.V)).Normalize()
	} else {
		normal = c.buffers.Normals[info.NormalOffset+(hit.Tri-info.TriOffset)].Vec3()
	}

	if normal.Dot(ray.Dir) > 0 {
		normal = normal.Mul(-1)
	}
	return normal
}

// Check whether anything blocks the ray within maxDist. Environment geometry
// is skipped for rays leaving an environment surface; an infinite plane
// cannot occlude itself.
func (c *sceneContext) occluded(ray types.Ray, maxDist float32, skipEnv bool) bool {
	for i := range c.buffers.Instances {
		info := &c.buffers.Instances[i]
		if info.NodeCount == 0 || !info.Bounds.IntersectRay(ray, maxDist) {
			continue
		}
		if bvh.AnyHit(c.buffers.Nodes, info.NodeOffset, c.buffers.Vertices, c.buffers.Indices, ray, maxDist) {
			return true
		}
	}
	if skipEnv {
		return false
	}
	return c.env.AnyHit(ray, maxDist)
}

// Direct lighting at a shading point: jittered shadow rays toward the
// directional light, hemisphere ambient occlusion, Lambert diffuse and
// Blinn-Phong specular. The caller's rng stream is consumed in a fixed
// order — shadow jitter first, then occlusion — which all backends share.
func (c *sceneContext) shadeLocal(ray types.Ray, surf surfaceHit, rng *prng) types.Vec3 {
	origin := surf.point.Add(surf.normal.Mul(shadowBias))
	skipEnv := surf.instance == envInstance

	blocked := 0
	for i := 0; i < shadowSamples; i++ {
		jitter := types.Vec3{rng.symmetric(), rng.symmetric(), rng.symmetric()}.Mul(lightRadius)
		sray := types.NewRay(origin, c.light.Add(jitter))
		if c.occluded(sray, math.MaxFloat32, skipEnv) {
			blocked++
		}
	}
	shadow := float32(blocked) / float32(shadowSamples)

	occludedCount := 0
	for i := 0; i < aoSamples; i++ {
		dir := types.Vec3{rng.symmetric(), rng.symmetric(), rng.symmetric()}
		if dir.LenSq() < 1e-6 {
			continue
		}
		if dir.Dot(surf.normal) < 0 {
			dir = dir.Mul(-1)
		}
		if c.occluded(types.NewRay(origin, dir), aoRadius, skipEnv) {
			occludedCount++
		}
	}
	ao := float32(occludedCount) / float32(aoSamples)

	ndotl := surf.normal.Dot(c.light)
	if ndotl < 0 {
		ndotl = 0
	}

	half := c.light.Sub(ray.Dir).Normalize()
	specAngle := surf.normal.Dot(half)
	if specAngle < 0 {
		specAngle = 0
	}
	spec := specularStrength * float32(math.Pow(float64(specAngle), float64(specularExponent)))

	brightness := ambient*(1-ao*aoStrength) + (1-shadow)*ndotl
	if brightness > 1 {
		brightness = 1
	}

	return surf.color.Mul(brightness).Add(types.Vec3{spec, spec, spec})
}

// Schlick's approximation of the Fresnel term at incidence cosine cos.
func schlick(reflectivity, cos float32) float32 {
	f := 1 - cos
	f2 := f * f
	return reflectivity + (1-reflectivity)*f2*f2*f
}

// Mirror direction d about normal n.
func reflect(d, n types.Vec3) types.Vec3 {
	return d.Sub(n.Mul(2 * d.Dot(n)))
}

// Evaluate one pixel: trace an aaGrid x aaGrid sub-pixel sample grid and
// average. Each sample carries its own deterministic rng stream.
func shadePixel(c *sceneContext, x, y, seed uint32, integrate integrator) types.Vec3 {
	var sum types.Vec3
	var sample uint32

	for sy := 0; sy < aaGrid; sy++ {
		for sx := 0; sx < aaGrid; sx++ {
			px := float32(x) + (float32(sx)+0.5)/aaGrid
			py := float32(y) + (float32(sy)+0.5)/aaGrid
			ray := c.camera.Ray(px, py, c.frameW, c.frameH, c.depthOffset)

			rng := newPixelRand(seed, x, y, sample)
			sum = sum.Add(integrate(c, ray, &rng))
			sample++
		}
	}

	return sum.Mul(1.0 / (aaGrid * aaGrid))
}

// Clamp a color to [0, 1] and store it as RGBA.
func writePixel(frameBuffer []uint8, frameW, x, y uint32, color types.Vec3) {
	offset := (y*frameW + x) * 4
	for ch := 0; ch < 3; ch++ {
		v := color[ch]
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		frameBuffer[offset+uint32(ch)] = uint8(v*255 + 0.5)
	}
	frameBuffer[offset+3] = 255
}
