// Package renderer drives the frame pipeline. A renderer owns a set of
// tracers, asks the scene for per-frame geometry, splits the frame into
// row blocks via a scheduler and collects the traced rows into an RGBA
// frame buffer.
package renderer

import "image"

type Renderer interface {
	// Render the frame at scene time t.
	Render(t float64) error

	// Begin building the geometry for scene time t in the background so
	// a following Render(t) call can skip the build step.
	Prefetch(t float64)

	// The most recently rendered frame. The buffer is reused between
	// Render calls.
	Frame() *image.RGBA

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics for the last rendered frame.
	Stats() FrameStats
}
