package unit

import (
	"math"

	"github.com/gordonklaus/kiwi/dsp"
)

// A DCFilter removes the constant part of a signal.
type DCFilter struct {
	a, x, y float64
}

func (f *DCFilter) Prepare(p dsp.Params) {
	rc := 1 / (2 * math.Pi * 10)
	f.a = rc / (rc + 1/p.SampleRate)
}

func (f *DCFilter) Filter(x float64) float64 {
	f.y = f.a * (f.y + x - f.x)
	f.x = x
	return f.y
}

// A LowPass1 is a one-pole lowpass filter.
type LowPass1 struct {
	sampleRate float64
	freq       float64
	a, y       float64
}

func (f *LowPass1) Prepare(p dsp.Params) {
	f.sampleRate = p.SampleRate
	f.SetFreq(f.freq)
}

// SetFreq sets the cutoff frequency.  Zero or less stops the filter.
func (f *LowPass1) SetFreq(freq float64) *LowPass1 {
	f.freq = freq
	f.a = 0
	if freq > 0 && f.sampleRate > 0 {
		f.a = 1 - math.Exp(-2*math.Pi*freq/f.sampleRate)
	}
	return f
}

func (f *LowPass1) Filter(x float64) float64 {
	f.y += f.a * (x - f.y)
	return f.y
}
