package unit

import "github.com/gordonklaus/kiwi/dsp"

// A ConstDelay delays a signal by a fixed time, in seconds.
type ConstDelay struct {
	delay float64
	buf   []float64
	i     int
}

func NewConstDelay(delay float64) *ConstDelay {
	return &ConstDelay{delay: delay}
}

func (d *ConstDelay) Prepare(p dsp.Params) {
	d.buf = make([]float64, int(d.delay*p.SampleRate))
	d.i = 0
}

func (d *ConstDelay) Delay(x float64) float64 {
	if len(d.buf) == 0 {
		return x
	}
	y := d.buf[d.i]
	d.buf[d.i] = x
	d.i = (d.i + 1) % len(d.buf)
	return y
}
