package unit

import (
	"math"

	"github.com/gordonklaus/kiwi/dsp"
)

// A soft limiter.  The RMS amplitude of the output (averaged over the attack
// time) will approach the supplied limit; this means that much of the signal
// will actually exceed the limit.
type Limiter struct {
	limit         float64
	attack, decay float64
	down, up      float64
	amp           float64
	rms           *RMS
	delay         *ConstDelay
}

func NewLimiter(limit, attack, decay float64) *Limiter {
	return &Limiter{limit: limit, attack: attack, decay: decay, rms: NewRMS(attack), delay: NewConstDelay(attack)}
}

func (c *Limiter) Prepare(p dsp.Params) {
	c.down = -1 / (c.attack * p.SampleRate)
	c.up = 1 / (c.decay * p.SampleRate)
	c.amp = 0
	c.rms.Prepare(p)
	c.delay.Prepare(p)
}

func (c *Limiter) Limit(x float64) float64 {
	gain := math.Exp2(c.amp)
	c.rms.Add(x)
	if y := c.rms.Amplitude() / c.limit; y > 0 && math.Tanh(y)/y < gain {
		c.amp += c.down
	} else if c.amp < 0 {
		c.amp = math.Min(0, c.amp+c.up)
	}
	return gain * c.delay.Delay(x)
}
