package tracer

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/isoray/log"
	"github.com/achilleasa/isoray/scene"
	"github.com/achilleasa/isoray/types"
)

// The data-parallel backend: block rows are dispatched across a worker pool.
// Workers share the read-only scene buffers but carry private per-pixel rng
// state and traversal stacks, so no locking happens while tracing. Reflection
// is an explicit iterative weight-accumulation loop, numerically equivalent
// to the sequential backend's recursion.
type parallelTracer struct {
	id      string
	logger  log.Logger
	workers int

	ctx         sceneContext
	frameBuffer []uint8

	reqChan   chan BlockRequest
	closeChan chan struct{}

	stats Stats
}

// Create a new worker-pool tracer. A non-positive worker count selects one
// worker per CPU.
func NewParallel(id string, workers int) Tracer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	t := &parallelTracer{
		id:        id,
		logger:    log.New("tracer"),
		workers:   workers,
		reqChan:   make(chan BlockRequest),
		closeChan: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *parallelTracer) Id() string {
	return t.id
}

func (t *parallelTracer) Close() {
	close(t.closeChan)
}

func (t *parallelTracer) SpeedEstimate() float32 {
	return float32(t.workers)
}

func (t *parallelTracer) Setup(frameW, frameH uint32, frameBuffer []uint8) error {
	if len(frameBuffer) < int(frameW*frameH*4) {
		return errors.New("tracer: framebuffer too small for frame dimensions")
	}
	t.ctx.frameW = frameW
	t.ctx.frameH = frameH
	t.frameBuffer = frameBuffer
	return nil
}

func (t *parallelTracer) UpdateScene(buffers *scene.Buffers, env scene.Environment, camera *scene.Camera) error {
	t.ctx.buffers = buffers
	t.ctx.env = env
	t.ctx.camera = camera
	t.ctx.depthOffset = camera.DepthOffset(t.ctx.frameH)
	t.ctx.light = lightDir
	return nil
}

func (t *parallelTracer) Enqueue(req BlockRequest) {
	select {
	case t.reqChan <- req:
	case <-t.closeChan:
	}
}

func (t *parallelTracer) Stats() *Stats {
	return &t.stats
}

func (t *parallelTracer) loop() {
	for {
		select {
		case <-t.closeChan:
			return
		case req := <-t.reqChan:
			t.trace(req)
		}
	}
}

func (t *parallelTracer) trace(req BlockRequest) {
	if t.ctx.buffers == nil {
		req.ErrChan <- errors.New("tracer: no scene attached")
		return
	}

	start := time.Now()

	// Deal rows to workers round-robin; rows are independent so the only
	// synchronization point is the final wait.
	var wg sync.WaitGroup
	for w := 0; w < t.workers; w++ {
		wg.Add(1)
		go func(firstRow uint32) {
			defer wg.Done()
			for y := firstRow; y < req.BlockY+req.BlockH; y += uint32(t.workers) {
				for x := uint32(0); x < t.ctx.frameW; x++ {
					color := shadePixel(&t.ctx, x, y, req.Seed, traceIterative)
					writePixel(t.frameBuffer, t.ctx.frameW, x, y, color)
				}
			}
		}(req.BlockY + uint32(w))
	}
	wg.Wait()

	t.stats.BlockH = req.BlockH
	t.stats.BlockTime = time.Since(start).Nanoseconds()
	req.DoneChan <- req.BlockH
}

// The iterative reflection integrator: the local color of every bounce is
// weighted by the product of the Fresnel factors leading to it, and the walk
// stops at the shared bounce cap or once the running weight drops below the
// shared cutoff — mirroring the recursive form bounce for bounce.
func traceIterative(c *sceneContext, ray types.Ray, rng *prng) types.Vec3 {
	var acc types.Vec3
	weight := float32(1.0)

	for bounce := 0; ; bounce++ {
		surf, ok := c.closestHit(ray)
		if !ok {
			return acc.Add(c.env.MissColor(ray.Dir).Mul(weight))
		}

		local := c.shadeLocal(ray, surf, rng)
		if surf.reflectivity <= 0 || bounce >= maxBounces {
			return acc.Add(local.Mul(weight))
		}

		cos := -ray.Dir.Dot(surf.normal)
		if cos < 0 {
			cos = 0
		}
		fresnel := schlick(surf.reflectivity, cos)
		if weight*fresnel < minReflectWeight {
			return acc.Add(local.Mul(weight))
		}

		acc = acc.Add(local.Mul(weight * (1 - fresnel)))
		weight *= fresnel

		origin := surf.point.Add(surf.normal.Mul(shadowBias))
		ray = types.NewRay(origin, reflect(ray.Dir, surf.normal))
	}
}
