package patcher

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/console"
	"github.com/gordonklaus/kiwi/dsp"
)

// box declares its iolets from its arguments: one letter per iolet, m for
// message, s for signal and b for both.  "box msms s" has four inlets and
// one outlet.
type box struct {
	o   *Object
	got []atom.Vector
}

func (b *box) Receive(inlet int, msg atom.Vector) { b.got = append(b.got, msg) }

type signalBox struct {
	box
	prepared int
}

func (b *signalBox) Prepare(dsp.Params)           { b.prepared++ }
func (b *signalBox) Perform(in, out []dsp.Buffer) {}

func ioTypes(o *Object, i int, def string) []IoType {
	s := def
	if args := o.Info().Args; len(args) > i {
		if t, ok := atom.TagOf(args[i]); ok {
			s = t.String()
		}
	}
	var types []IoType
	for _, c := range s {
		switch c {
		case 's':
			types = append(types, Signal)
		case 'b':
			types = append(types, Both)
		default:
			types = append(types, Message)
		}
	}
	return types
}

func newBox(o *Object) (Behavior, error) {
	signal := false
	for _, t := range ioTypes(o, 0, "m") {
		o.AddInlet(t, Hot, "")
		signal = signal || t.IsSignal()
	}
	for _, t := range ioTypes(o, 1, "m") {
		o.AddOutlet(t, "")
		signal = signal || t.IsSignal()
	}
	if signal {
		return &signalBox{box: box{o: o}}, nil
	}
	return &box{o: o}, nil
}

// echo sends whatever it receives out of its outlet.
type echo struct {
	o        *Object
	received int
}

func (e *echo) Receive(inlet int, msg atom.Vector) {
	e.received++
	if e.received < 300 {
		e.o.Send(0, msg)
	}
}

func newEcho(o *Object) (Behavior, error) {
	o.AddInlet(Message, Hot, "")
	o.AddOutlet(Message, "")
	return &echo{o: o}, nil
}

// counter saves and restores a count.
type counter struct{ n int64 }

func (c *counter) Receive(inlet int, msg atom.Vector) { c.n++ }
func (c *counter) Save(d atom.Dict)                   { d[atom.NewTag("count")] = c.n }
func (c *counter) Load(d atom.Dict)                   { c.n, _ = atom.Int(d[atom.NewTag("count")]) }

type freeCounter struct {
	box
	freed *int
}

func (f *freeCounter) Free() { *f.freed++ }

func newTestFactory(t *testing.T) *Factory {
	f := NewFactory()
	require.NoError(t, f.Register("box", newBox))
	require.NoError(t, f.Register("echo", newEcho))
	require.NoError(t, f.Register("counter", func(o *Object) (Behavior, error) {
		o.AddInlet(Message, Hot, "")
		return &counter{}, nil
	}))
	require.NoError(t, f.Register("broken", func(o *Object) (Behavior, error) {
		return nil, errors.New("no can do")
	}))
	return f
}

func newTestPatcher(t *testing.T) (*Patcher, *console.Console) {
	c := console.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	p := New(Env{
		Factory: newTestFactory(t),
		Console: c,
		DSP:     dsp.NewContext(dsp.DefaultParams),
	})
	t.Cleanup(p.Close)
	return p, c
}

func create(t *testing.T, p *Patcher, text string) *Object {
	t.Helper()
	o, err := p.CreateObject(ObjectDict(0, text))
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}

func link(t *testing.T, p *Patcher, from *Object, outlet int, to *Object, inlet int) *Link {
	t.Helper()
	l, err := p.CreateLink(LinkDict(from.ID(), outlet, to.ID(), inlet))
	require.NoError(t, err)
	return l
}

func errorTexts(c *console.Console) []string {
	var s []string
	for _, m := range c.Messages() {
		if m.Level == console.Error {
			s = append(s, m.String())
		}
	}
	return s
}
