// Package dsp orders the signal-processing objects of a patch into a chain
// and runs that chain block by block.
package dsp

type Params struct {
	SampleRate float64
	BlockSize  int
	Channels   int
}

var DefaultParams = Params{SampleRate: 44100, BlockSize: 64, Channels: 2}

// WithDefaults returns p with its zero fields taken from DefaultParams.
func (p Params) WithDefaults() Params {
	if p.SampleRate <= 0 {
		p.SampleRate = DefaultParams.SampleRate
	}
	if p.BlockSize <= 0 {
		p.BlockSize = DefaultParams.BlockSize
	}
	if p.Channels <= 0 {
		p.Channels = DefaultParams.Channels
	}
	return p
}
