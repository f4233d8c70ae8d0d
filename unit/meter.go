package unit

import (
	"math"

	"github.com/gordonklaus/kiwi/dsp"
)

// An RMS measures the root mean square of a signal over a sliding window, in
// seconds.
type RMS struct {
	window float64
	buf    []float64
	i      int
	sum    float64
}

func NewRMS(window float64) *RMS {
	return &RMS{window: window}
}

func (r *RMS) Prepare(p dsp.Params) {
	r.buf = make([]float64, max(1, int(p.SampleRate*r.window)))
	r.i = 0
	r.sum = 0
}

func (r *RMS) Add(x float64) {
	r.sum -= r.buf[r.i]
	r.buf[r.i] = x * x
	r.sum += r.buf[r.i]
	r.i = (r.i + 1) % len(r.buf)
}

func (r *RMS) Amplitude() float64 {
	return math.Sqrt(math.Max(0, r.sum) / float64(len(r.buf)))
}
