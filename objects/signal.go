package objects

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/dsp"
	"github.com/gordonklaus/kiwi/patcher"
	"github.com/gordonklaus/kiwi/unit"
)

// scalar is embedded by signal objects whose first inlet also takes a
// number.  The number is added to the signal arriving at that inlet.
type scalar struct {
	value *param
}

func (s *scalar) Receive(inlet int, msg atom.Vector) {
	if f, ok := number(msg); ok && inlet == 0 {
		s.value.Set(f)
	}
}

// sig~ outputs a constant.
type sig struct{ scalar }

func newSig(o *patcher.Object) (patcher.Behavior, error) {
	o.AddInlet(patcher.Message, patcher.Hot, "value")
	o.AddOutlet(patcher.Signal, "constant signal")
	return &sig{scalar{newParam(arg(o, 0, 0))}}, nil
}

func (s *sig) Prepare(dsp.Params) {}

func (s *sig) Perform(in, out []dsp.Buffer) {
	out[0].Fill(s.value.Get())
}

type osc struct {
	scalar
	phase *param
	reset atomic.Bool
	osc   unit.SineOsc
}

func newOsc(o *patcher.Object) (patcher.Behavior, error) {
	o.AddInlet(patcher.Both, patcher.Hot, "frequency")
	o.AddInlet(patcher.Message, patcher.Cold, "phase")
	o.AddOutlet(patcher.Signal, "sine")
	return &osc{scalar: scalar{newParam(arg(o, 0, 0))}, phase: newParam(0)}, nil
}

func (s *osc) Receive(inlet int, msg atom.Vector) {
	if f, ok := number(msg); ok && inlet == 1 {
		s.phase.Set(f)
		s.reset.Store(true)
		return
	}
	s.scalar.Receive(inlet, msg)
}

func (s *osc) Prepare(p dsp.Params) { s.osc.Prepare(p) }

func (s *osc) Perform(in, out []dsp.Buffer) {
	if s.reset.Swap(false) {
		s.osc.SetPhase(s.phase.Get())
	}
	f := s.value.Get()
	for i := range out[0] {
		out[0][i] = s.osc.Sine(f + in[0][i])
	}
}

type saw struct {
	scalar
	saw unit.SawOsc
}

func newSaw(o *patcher.Object) (patcher.Behavior, error) {
	o.AddInlet(patcher.Both, patcher.Hot, "frequency")
	o.AddOutlet(patcher.Signal, "sawtooth")
	return &saw{scalar: scalar{newParam(arg(o, 0, 0))}}, nil
}

func (s *saw) Prepare(p dsp.Params) { s.saw.Prepare(p) }

func (s *saw) Perform(in, out []dsp.Buffer) {
	f := s.value.Get()
	for i := range out[0] {
		out[0][i] = s.saw.SetFreq(f + in[0][i]).Saw()
	}
}

// binop combines its left signal with the sum of its right signal and a
// number given as argument or message.
type binop struct {
	op    func(z, x, y dsp.Buffer) dsp.Buffer
	right *param
}

func newBinop(op func(z, x, y dsp.Buffer) dsp.Buffer) patcher.Constructor {
	return func(o *patcher.Object) (patcher.Behavior, error) {
		o.AddInlet(patcher.Signal, patcher.Hot, "left signal")
		o.AddInlet(patcher.Both, patcher.Cold, "right signal or number")
		o.AddOutlet(patcher.Signal, "result")
		return &binop{op: op, right: newParam(arg(o, 0, 0))}, nil
	}
}

func (b *binop) Receive(inlet int, msg atom.Vector) {
	if f, ok := number(msg); ok && inlet == 1 {
		b.right.Set(f)
	}
}

func (b *binop) Prepare(dsp.Params) {}

func (b *binop) Perform(in, out []dsp.Buffer) {
	b.op(out[0], in[0], out[0].AddX(in[1], b.right.Get()))
}

// tanh~ soft-clips its input after multiplying it by a drive factor.
type tanh struct {
	drive *param
}

func newTanh(o *patcher.Object) (patcher.Behavior, error) {
	o.AddInlet(patcher.Signal, patcher.Hot, "signal")
	o.AddInlet(patcher.Message, patcher.Cold, "drive")
	o.AddOutlet(patcher.Signal, "clipped signal")
	return &tanh{newParam(arg(o, 0, 1))}, nil
}

func (t *tanh) Receive(inlet int, msg atom.Vector) {
	if f, ok := number(msg); ok && inlet == 1 {
		t.drive.Set(f)
	}
}

func (t *tanh) Prepare(dsp.Params) {}

func (t *tanh) Perform(in, out []dsp.Buffer) {
	out[0].Tanh(out[0].MulX(in[0], t.drive.Get()))
}

type lop struct {
	freq    *param
	current float64
	filter  unit.LowPass1
}

func newLop(o *patcher.Object) (patcher.Behavior, error) {
	o.AddInlet(patcher.Signal, patcher.Hot, "signal to filter")
	o.AddInlet(patcher.Message, patcher.Cold, "cutoff frequency")
	o.AddOutlet(patcher.Signal, "filtered signal")
	f := arg(o, 0, 1000)
	l := &lop{freq: newParam(f), current: f}
	l.filter.SetFreq(f)
	return l, nil
}

func (l *lop) Receive(inlet int, msg atom.Vector) {
	if f, ok := number(msg); ok && inlet == 1 {
		l.freq.Set(f)
	}
}

func (l *lop) Prepare(p dsp.Params) { l.filter.Prepare(p) }

func (l *lop) Perform(in, out []dsp.Buffer) {
	if f := l.freq.Get(); f != l.current {
		l.current = f
		l.filter.SetFreq(f)
	}
	for i, x := range in[0] {
		out[0][i] = l.filter.Filter(x)
	}
}

type dc struct{ filter unit.DCFilter }

func newDC(o *patcher.Object) (patcher.Behavior, error) {
	o.AddInlet(patcher.Signal, patcher.Hot, "signal")
	o.AddOutlet(patcher.Signal, "signal without offset")
	return &dc{}, nil
}

func (d *dc) Receive(int, atom.Vector) {}
func (d *dc) Prepare(p dsp.Params)     { d.filter.Prepare(p) }

func (d *dc) Perform(in, out []dsp.Buffer) {
	for i, x := range in[0] {
		out[0][i] = d.filter.Filter(x)
	}
}

type delay struct{ delay *unit.ConstDelay }

func newDelay(o *patcher.Object) (patcher.Behavior, error) {
	t := arg(o, 0, 0)
	if t < 0 {
		return nil, fmt.Errorf("negative delay %g", t)
	}
	o.AddInlet(patcher.Signal, patcher.Hot, "signal")
	o.AddOutlet(patcher.Signal, "delayed signal")
	return &delay{unit.NewConstDelay(t)}, nil
}

func (d *delay) Receive(int, atom.Vector) {}
func (d *delay) Prepare(p dsp.Params)     { d.delay.Prepare(p) }

func (d *delay) Perform(in, out []dsp.Buffer) {
	for i, x := range in[0] {
		out[0][i] = d.delay.Delay(x)
	}
}

type limiter struct{ limiter *unit.Limiter }

func newLimiter(o *patcher.Object) (patcher.Behavior, error) {
	limit, attack, decay := arg(o, 0, .5), arg(o, 1, .01), arg(o, 2, .1)
	if limit <= 0 || attack <= 0 || decay <= 0 {
		return nil, fmt.Errorf("limit, attack and decay must be positive")
	}
	o.AddInlet(patcher.Signal, patcher.Hot, "signal")
	o.AddOutlet(patcher.Signal, "limited signal")
	return &limiter{unit.NewLimiter(limit, attack, decay)}, nil
}

func (l *limiter) Receive(int, atom.Vector) {}
func (l *limiter) Prepare(p dsp.Params)     { l.limiter.Prepare(p) }

func (l *limiter) Perform(in, out []dsp.Buffer) {
	for i, x := range in[0] {
		out[0][i] = l.limiter.Limit(x)
	}
}

// env~ outputs an attack/release envelope.  A nonzero number or bang starts
// the attack; zero releases.
type env struct {
	gate atomic.Int32 // 1 attack, 0 release
	env  *unit.AttackReleaseEnv
}

func newEnv(o *patcher.Object) (patcher.Behavior, error) {
	o.AddInlet(patcher.Message, patcher.Hot, "gate")
	o.AddOutlet(patcher.Signal, "envelope")
	return &env{env: unit.NewAttackReleaseEnv(arg(o, 0, .01), arg(o, 1, .3))}, nil
}

func (e *env) Receive(inlet int, msg atom.Vector) {
	if f, ok := number(msg); ok && f == 0 {
		e.gate.Store(0)
	} else if ok || isBang(msg) {
		e.gate.Store(1)
	}
}

func (e *env) Prepare(p dsp.Params) { e.env.Prepare(p) }

func (e *env) Perform(in, out []dsp.Buffer) {
	if e.gate.Load() == 1 {
		e.env.Attack()
	} else {
		e.env.Release()
	}
	for i := range out[0] {
		out[0][i] = e.env.Sing()
	}
}

// spectral~ is a brick-wall lowpass filter applied to the spectrum.
type spectral struct {
	fft    *unit.FFT
	cutoff *param
	bin    atomic.Int64
	rate   float64
}

func newSpectral(o *patcher.Object) (patcher.Behavior, error) {
	size := int(arg(o, 1, 1024))
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("frame size %d is not a power of two", size)
	}
	s := &spectral{cutoff: newParam(arg(o, 0, 1000))}
	var err error
	s.fft, err = unit.NewFFT(size, s.filter)
	if err != nil {
		return nil, err
	}
	o.AddInlet(patcher.Signal, patcher.Hot, "signal")
	o.AddInlet(patcher.Message, patcher.Cold, "cutoff frequency")
	o.AddOutlet(patcher.Signal, "filtered signal")
	return s, nil
}

func (s *spectral) Receive(inlet int, msg atom.Vector) {
	if f, ok := number(msg); ok && inlet == 1 {
		s.cutoff.Set(f)
	}
}

func (s *spectral) Prepare(p dsp.Params) { s.rate = p.SampleRate }

func (s *spectral) Perform(in, out []dsp.Buffer) {
	s.bin.Store(int64(math.Ceil(s.cutoff.Get() * float64(s.fft.Size()) / s.rate)))
	for i, x := range in[0] {
		out[0][i] = s.fft.Filter(x)
	}
}

func (s *spectral) filter(x []complex128) {
	n := len(x)
	k := int(max(1, s.bin.Load()))
	for i := k; i <= n-k; i++ {
		x[i] = 0
	}
}

// seed returns argument i of o, or a seed taken from the clock.
func seed(o *patcher.Object, i int) int64 {
	if args := o.Info().Args; i < len(args) {
		if s, ok := atom.Int(args[i]); ok {
			return s
		}
	}
	return time.Now().UnixNano()
}

type reverb struct{ reverb *unit.Reverb }

func newReverb(o *patcher.Object) (patcher.Behavior, error) {
	size, decay := arg(o, 0, .2), arg(o, 1, 4)
	if size <= 0 || decay <= 0 {
		return nil, fmt.Errorf("size and decay time must be positive")
	}
	o.AddInlet(patcher.Signal, patcher.Hot, "dry signal")
	o.AddOutlet(patcher.Signal, "dry and wet signal")
	return &reverb{unit.NewReverb(size, decay, seed(o, 2))}, nil
}

func (r *reverb) Receive(int, atom.Vector) {}
func (r *reverb) Prepare(p dsp.Params)     { r.reverb.Prepare(p) }

func (r *reverb) Perform(in, out []dsp.Buffer) {
	for i, x := range in[0] {
		out[0][i] = r.reverb.Reverb(x)
	}
}

// noise~ is a slowly wandering random signal.
type noise struct{ rand *unit.SlowRand }

func newNoise(o *patcher.Object) (patcher.Behavior, error) {
	freq := arg(o, 0, 1)
	if freq <= 0 {
		return nil, fmt.Errorf("frequency must be positive")
	}
	o.AddOutlet(patcher.Signal, "random signal")
	return &noise{unit.NewSlowRand(freq, seed(o, 1))}, nil
}

func (n *noise) Receive(int, atom.Vector) {}
func (n *noise) Prepare(p dsp.Params)     { n.rand.Prepare(p) }

func (n *noise) Perform(in, out []dsp.Buffer) {
	for i := range out[0] {
		out[0][i] = n.rand.Sing()
	}
}

// dac~ adds its inputs to the output channels given as arguments, counted
// from 1.
type dac struct {
	ctx      *dsp.Context
	channels []int
}

func newDac(o *patcher.Object) (patcher.Behavior, error) {
	d := &dac{ctx: o.Patcher().DSP()}
	for i, a := range o.Info().Args {
		ch, ok := atom.Int(a)
		if !ok || ch < 1 {
			return nil, fmt.Errorf("argument %d: bad channel %v", i+1, a)
		}
		d.channels = append(d.channels, int(ch)-1)
	}
	if len(d.channels) == 0 {
		d.channels = []int{0, 1}
	}
	for _, ch := range d.channels {
		o.AddInlet(patcher.Signal, patcher.Hot, fmt.Sprintf("channel %d", ch+1))
	}
	return d, nil
}

func (d *dac) Receive(int, atom.Vector) {}
func (d *dac) Prepare(dsp.Params)       {}

func (d *dac) Perform(in, out []dsp.Buffer) {
	for i, ch := range d.channels {
		if b := d.ctx.Output(ch); b != nil {
			b.Add(b, in[i])
		}
	}
}
