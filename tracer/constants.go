package tracer

import "github.com/achilleasa/isoray/types"

// The shared constant set consumed by every tracer backend. Backends must
// agree on these bit-for-bit; they are part of the serialized scene contract.
const (
	// Reflection bounce cap.
	maxBounces = 4

	// Accumulated reflection weights below this contribute nothing
	// visible; tracing stops early.
	minReflectWeight float32 = 0.01

	// Jittered shadow rays per shading point.
	shadowSamples = 8

	// Hemisphere occlusion rays per shading point.
	aoSamples = 8

	// Maximum jitter offset applied to the light direction, which is what
	// softens shadow edges.
	lightRadius float32 = 0.25

	// Occlusion query distance cap.
	aoRadius float32 = 0.9

	// Ambient floor and how strongly occlusion eats into it.
	ambient    float32 = 0.25
	aoStrength float32 = 0.85

	// Blinn-Phong half-vector exponent and contribution scale.
	specularExponent float32 = 48
	specularStrength float32 = 0.35

	// Offset along the shading normal applied before any secondary ray is
	// fired, keeping a surface from occluding itself through round-off.
	shadowBias float32 = 1e-3

	// Anti-aliasing sub-pixel grid side (aaGrid x aaGrid samples per
	// pixel).
	aaGrid = 2
)

// The single directional light, pointing from the scene toward the light.
var lightDir = types.Vec3{0.45, 0.8, -0.4}.Normalize()

// Instance identifier values carried by shading hits. Non-negative values
// index the serialized instance table.
const (
	// Environment hits, so secondary rays can skip re-testing the surface
	// they started on.
	envInstance int32 = -1

	// No hit at all.
	noInstance int32 = -2
)
