// Package objects is the library of builtin objects.
package objects

import (
	"math"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/dsp"
	"github.com/gordonklaus/kiwi/patcher"
)

var builtins = []struct {
	name string
	ctor patcher.Constructor
}{
	{"print", newPrint},
	{"+", newArith(func(a, b float64) float64 { return a + b })},
	{"-", newArith(func(a, b float64) float64 { return a - b })},
	{"*", newArith(func(a, b float64) float64 { return a * b })},
	{"/", newArith(func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	})},
	{"float", newFloat},

	{"sig~", newSig},
	{"osc~", newOsc},
	{"saw~", newSaw},
	{"+~", newBinop(dsp.Buffer.Add)},
	{"-~", newBinop(dsp.Buffer.Sub)},
	{"*~", newBinop(dsp.Buffer.Mul)},
	{"tanh~", newTanh},
	{"lop~", newLop},
	{"dc~", newDC},
	{"delay~", newDelay},
	{"limiter~", newLimiter},
	{"env~", newEnv},
	{"spectral~", newSpectral},
	{"reverb~", newReverb},
	{"noise~", newNoise},
	{"dac~", newDac},
}

// Register adds the builtin objects to f.
func Register(f *patcher.Factory) error {
	var err error
	for _, b := range builtins {
		err = multierr.Append(err, f.Register(b.name, b.ctor))
	}
	return err
}

// Names returns the names of the builtin objects.
func Names() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.name
	}
	return names
}

var bang = atom.NewTag("bang")

func isBang(msg atom.Vector) bool {
	if len(msg) == 0 {
		return true
	}
	t, ok := msg[0].(atom.Tag)
	return ok && t == bang
}

func number(msg atom.Vector) (float64, bool) {
	if len(msg) == 0 {
		return 0, false
	}
	return atom.Float(msg[0])
}

// arg returns argument i of o as a number, or def.
func arg(o *patcher.Object, i int, def float64) float64 {
	args := o.Info().Args
	if i >= len(args) {
		return def
	}
	if f, ok := atom.Float(args[i]); ok {
		return f
	}
	return def
}

// A param is a number set by messages and read while processing.
type param struct{ bits atomic.Uint64 }

func newParam(f float64) *param {
	p := &param{}
	p.Set(f)
	return p
}

func (p *param) Set(f float64) { p.bits.Store(math.Float64bits(f)) }
func (p *param) Get() float64  { return math.Float64frombits(p.bits.Load()) }
