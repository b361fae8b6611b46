package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Animation playback: start time, per-frame time step and frame
	// count. Interactive rendering ignores FrameCount and advances with
	// the wall clock scaled by TimeStep==0 ? realtime : fixed step.
	StartTime  float64
	TimeStep   float64
	FrameCount int

	// Attach the worker-pool backend alongside the sequential reference
	// tracer and let the scheduler split frames between them.
	UseParallel bool

	// Worker count for the parallel backend; <= 0 selects one per CPU.
	Workers int

	// Scene descriptor path, empty for the built-in scene. Interactive
	// mode watches this file and reloads it on change.
	ScenePath string
}
