package renderer

import "time"

type TracerStat struct {
	// The tracer id.
	Id string

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for assigned block.
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Time spent rebuilding and serializing scene geometry for this
	// frame. Zero when the geometry was prefetched while the previous
	// frame was tracing.
	BuildTime time.Duration

	// Total render time for entire frame.
	RenderTime time.Duration
}
