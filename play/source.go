package play

import "github.com/gordonklaus/kiwi/dsp"

// A source hands out the blocks of a DSP context one frame at a time, so
// that the stream's buffer size need not match the block size.
type source struct {
	tick  func() []dsp.Buffer
	block []dsp.Buffer
	pos   int
}

// fill writes interleaved frames to out.  Channels the context lacks are
// silent.
func (s *source) fill(out []float32, channels int) {
	for i := 0; i+channels <= len(out); i += channels {
		if len(s.block) == 0 || s.pos >= len(s.block[0]) {
			s.block = s.tick()
			s.pos = 0
		}
		for ch := range channels {
			var x float64
			if ch < len(s.block) && s.pos < len(s.block[ch]) {
				x = s.block[ch][s.pos]
			}
			out[i+ch] = float32(x)
		}
		s.pos++
	}
}
