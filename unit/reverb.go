package unit

import (
	"math"
	"math/rand"

	"github.com/gordonklaus/kiwi/dsp"
)

// A Reverb feeds its input through a series of granular delay streams whose
// delay times wander at random.
type Reverb struct {
	sampleRate float64
	size       float64
	decayTime  float64
	streams    []*grainStream
	rand       *rand.Rand
}

type grainStream struct {
	buf      []float64
	i        int
	t, dt    float64
	a1, a2   float64
	i1, i2   int
	dcFilter DCFilter
}

// NewReverb returns a reverb.  size scales the grain length and decayTime is
// the time, in seconds, for the tail to decay by 40dB.
func NewReverb(size, decayTime float64, seed int64) *Reverb {
	return &Reverb{size: size, decayTime: decayTime, rand: rand.New(rand.NewSource(seed))}
}

func (r *Reverb) Prepare(p dsp.Params) {
	r.sampleRate = p.SampleRate
	r.streams = r.streams[:0]
	for range 10 {
		s := &grainStream{buf: make([]float64, int(p.SampleRate)), t: 1}
		s.dcFilter.Prepare(p)
		r.streams = append(r.streams, s)
	}
}

func (r *Reverb) Reverb(dry float64) float64 {
	wet := 0.0
	x := dry
	for _, s := range r.streams {
		if s.t >= 1 {
			s.t -= 1
			s.a1, s.i1 = s.a2, s.i2
			delay := math.Exp2(r.rand.Float64() - 2.5)
			s.dt = 1 / math.Exp2(r.rand.Float64()) / r.size / r.sampleRate
			s.a2 = math.Pow(.01, delay/r.decayTime)
			s.i2 = (s.i - int(delay*r.sampleRate) + len(s.buf)) % len(s.buf)
		}
		sin2 := math.Sin(math.Pi / 2 * s.t)
		sin2 *= sin2
		y := s.dcFilter.Filter(s.a1*(1-sin2)*s.buf[s.i1] + s.a2*sin2*s.buf[s.i2])
		s.i1 = (s.i1 + 1) % len(s.buf)
		s.i2 = (s.i2 + 1) % len(s.buf)
		s.t += s.dt
		s.buf[s.i] = x + y
		s.i = (s.i + 1) % len(s.buf)
		x = y // the next stream's input is this one's wet output
		wet += y
	}
	return (wet + dry) / 2
}
