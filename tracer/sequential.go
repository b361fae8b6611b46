package tracer

import (
	"errors"
	"time"

	"github.com/achilleasa/isoray/log"
	"github.com/achilleasa/isoray/scene"
	"github.com/achilleasa/isoray/types"
)

// The reference backend: one plain loop over all pixels and samples, with
// reflection expressed as bounded recursion.
type sequentialTracer struct {
	id     string
	logger log.Logger

	ctx         sceneContext
	frameBuffer []uint8

	reqChan   chan BlockRequest
	closeChan chan struct{}

	stats Stats
}

// Create a new sequential reference tracer.
func NewSequential(id string) Tracer {
	t := &sequentialTracer{
		id:        id,
		logger:    log.New("tracer"),
		reqChan:   make(chan BlockRequest),
		closeChan: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *sequentialTracer) Id() string {
	return t.id
}

func (t *sequentialTracer) Close() {
	close(t.closeChan)
}

func (t *sequentialTracer) SpeedEstimate() float32 {
	return 1.0
}

func (t *sequentialTracer) Setup(frameW, frameH uint32, frameBuffer []uint8) error {
	if len(frameBuffer) < int(frameW*frameH*4) {
		return errors.New("tracer: framebuffer too small for frame dimensions")
	}
	t.ctx.frameW = frameW
	t.ctx.frameH = frameH
	t.frameBuffer = frameBuffer
	return nil
}

func (t *sequentialTracer) UpdateScene(buffers *scene.Buffers, env scene.Environment, camera *scene.Camera) error {
	t.ctx.buffers = buffers
	t.ctx.env = env
	t.ctx.camera = camera
	t.ctx.depthOffset = camera.DepthOffset(t.ctx.frameH)
	t.ctx.light = lightDir
	return nil
}

func (t *sequentialTracer) Enqueue(req BlockRequest) {
	select {
	case t.reqChan <- req:
	case <-t.closeChan:
	}
}

func (t *sequentialTracer) Stats() *Stats {
	return &t.stats
}

func (t *sequentialTracer) loop() {
	for {
		select {
		case <-t.closeChan:
			return
		case req := <-t.reqChan:
			t.trace(req)
		}
	}
}

func (t *sequentialTracer) trace(req BlockRequest) {
	if t.ctx.buffers == nil {
		req.ErrChan <- errors.New("tracer: no scene attached")
		return
	}

	start := time.Now()
	for y := req.BlockY; y < req.BlockY+req.BlockH; y++ {
		for x := uint32(0); x < t.ctx.frameW; x++ {
			color := shadePixel(&t.ctx, x, y, req.Seed, traceRecursive)
			writePixel(t.frameBuffer, t.ctx.frameW, x, y, color)
		}
	}

	t.stats.BlockH = req.BlockH
	t.stats.BlockTime = time.Since(start).Nanoseconds()
	req.DoneChan <- req.BlockH
}

// The recursive reflection integrator. Recursion depth is capped at the
// shared bounce limit and a branch is cut early once its accumulated weight
// cannot contribute visibly.
func traceRecursive(c *sceneContext, ray types.Ray, rng *prng) types.Vec3 {
	return recurseRay(c, ray, rng, 0, 1.0)
}

func recurseRay(c *sceneContext, ray types.Ray, rng *prng, bounce int, weight float32) types.Vec3 {
	surf, ok := c.closestHit(ray)
	if !ok {
		return c.env.MissColor(ray.Dir)
	}

	local := c.shadeLocal(ray, surf, rng)
	if surf.reflectivity <= 0 || bounce >= maxBounces {
		return local
	}

	cos := -ray.Dir.Dot(surf.normal)
	if cos < 0 {
		cos = 0
	}
	fresnel := schlick(surf.reflectivity, cos)
	if weight*fresnel < minReflectWeight {
		return local
	}

	origin := surf.point.Add(surf.normal.Mul(shadowBias))
	reflected := recurseRay(c, types.NewRay(origin, reflect(ray.Dir, surf.normal)), rng, bounce+1, weight*fresnel)
	return local.Mul(1 - fresnel).Add(reflected.Mul(fresnel))
}
