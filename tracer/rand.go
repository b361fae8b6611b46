package tracer

// A tiny xorshift generator carried privately by each pixel sample. Shadow
// jitter draws from the stream first and ambient occlusion continues it, so
// the two stay coupled exactly the same way in every backend.
type prng struct {
	state uint32
}

// Seed a generator as a pure function of the frame seed and the pixel/sample
// coordinates. Re-rendering an unchanged frame reproduces the exact jitter
// sequence, so output is bit-identical and free of temporal flicker.
func newPixelRand(seed, x, y, sample uint32) prng {
	s := seed
	s ^= x * 0x9e3779b9
	s ^= y * 0x85ebca6b
	s ^= sample * 0xc2b2ae35

	// One mixing round so neighboring pixels don't start correlated.
	s ^= s >> 16
	s *= 0x7feb352d
	s ^= s >> 15
	s *= 0x846ca68b
	s ^= s >> 16

	if s == 0 {
		s = 0x6d2b79f5
	}
	return prng{state: s}
}

func (p *prng) next() uint32 {
	p.state ^= p.state << 13
	p.state ^= p.state >> 17
	p.state ^= p.state << 5
	return p.state
}

// Uniform float in [0, 1).
func (p *prng) float() float32 {
	return float32(p.next()>>8) * (1.0 / 16777216.0)
}

// Uniform float in [-1, 1).
func (p *prng) symmetric() float32 {
	return p.float()*2 - 1
}
