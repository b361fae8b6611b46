// Package tracer implements the shading pipeline: primary ray generation,
// scene intersection over serialized buffers, soft shadows, ambient
// occlusion, specular and Fresnel-weighted reflections. Two interchangeable
// backends evaluate the same algorithm: a sequential reference tracer and a
// data-parallel worker-pool tracer.
package tracer

import (
	"github.com/achilleasa/isoray/scene"
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The frame's base random seed. Pixel jitter streams derive from it
	// and the pixel coordinates only, so re-tracing a frame with the same
	// seed is bit-identical.
	Seed uint32

	// A channel to signal on block completion with the number of
	// completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height.
	BlockH uint32

	// The time for rendering this block (in nanoseconds).
	BlockTime int64
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracer's computation speed estimate relative to the
	// sequential reference implementation.
	SpeedEstimate() float32

	// Attach the tracer to a framebuffer.
	Setup(frameW, frameH uint32, frameBuffer []uint8) error

	// Swap in a new frame's serialized scene. Must not be called while a
	// block request is in flight; the renderer serializes updates between
	// frames.
	UpdateScene(buffers *scene.Buffers, env scene.Environment, camera *scene.Camera) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Retrieve last block statistics.
	Stats() *Stats
}
