// Package unit holds per-sample signal processors.  Each unit is prepared
// with the processing parameters before it produces samples.
package unit

import (
	"math"

	"github.com/gordonklaus/kiwi/dsp"
)

// A SineOsc is a sine oscillator whose frequency may change every sample.
type SineOsc struct {
	sampleRate float64
	phase      float64
}

func (o *SineOsc) Prepare(p dsp.Params) { o.sampleRate = p.SampleRate }

// SetPhase sets the phase, in cycles.
func (o *SineOsc) SetPhase(phase float64) {
	_, o.phase = math.Modf(phase)
	if o.phase < 0 {
		o.phase++
	}
}

func (o *SineOsc) Sine(freq float64) float64 {
	y := math.Sin(2 * math.Pi * o.phase)
	_, o.phase = math.Modf(o.phase + freq/o.sampleRate)
	if o.phase < 0 {
		o.phase++
	}
	return y
}

// A SawOsc produces a rising ramp from -1 to 1.
type SawOsc struct {
	sampleRate float64
	freq       float64
	x, d       float64
}

func (o *SawOsc) Prepare(p dsp.Params) {
	o.sampleRate = p.SampleRate
	o.SetFreq(o.freq)
}

func (o *SawOsc) SetFreq(freq float64) *SawOsc {
	o.freq = freq
	if o.sampleRate > 0 {
		o.d = 2 * freq / o.sampleRate
	}
	return o
}

func (o *SawOsc) Saw() float64 {
	o.x += o.d
	if o.x > 1 {
		o.x -= 2
	}
	return o.x
}
