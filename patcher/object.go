package patcher

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/console"
	"github.com/gordonklaus/kiwi/dsp"
)

// maxDepth bounds message recursion through Send.  The call that reaches
// maxDepth is still delivered; deeper calls are reported and dropped.
const maxDepth = 256

// Info is what an object is constructed from.
type Info struct {
	Patcher *Patcher
	ID      uint64
	Name    atom.Tag
	Text    string
	Dict    atom.Dict   // the construction dictionary
	Args    atom.Vector // the arguments following the name
}

// A Behavior is what a kind of object does with the messages it receives.
// A Behavior that also implements dsp.Processor makes its object part of
// the patcher's DSP chain.
type Behavior interface {
	Receive(inlet int, msg atom.Vector)
}

// Objects whose Behavior implements Saver add their state to the dictionary
// written for them; Loader restores it from the construction dictionary.
type Saver interface {
	Save(d atom.Dict)
}

type Loader interface {
	Load(d atom.Dict)
}

// Freer is implemented by behaviors that hold resources beyond the object's
// life in the patcher.
type Freer interface {
	Free()
}

// An Object is a node of a patcher: a Behavior plus its inlets and outlets.
type Object struct {
	info     Info
	behavior Behavior
	proc     dsp.Processor

	mu      sync.Mutex
	inlets  []*Inlet
	outlets []*Outlet
	sigIns  int
	sigOuts int

	depth atomic.Int32
}

func newObject(info Info) *Object { return &Object{info: info} }

func (o *Object) setBehavior(b Behavior) {
	o.behavior = b
	if p, ok := b.(dsp.Processor); ok {
		o.proc = p
	}
}

func (o *Object) Info() Info         { return o.info }
func (o *Object) ID() uint64         { return o.info.ID }
func (o *Object) Name() atom.Tag     { return o.info.Name }
func (o *Object) Text() string       { return o.info.Text }
func (o *Object) Patcher() *Patcher  { return o.info.Patcher }
func (o *Object) Behavior() Behavior { return o.behavior }
func (o *Object) String() string     { return fmt.Sprintf("%s (%d)", o.info.Text, o.info.ID) }

// IsSignal reports whether o takes part in DSP.  It is decided once, when
// the object is created.
func (o *Object) IsSignal() bool { return o.proc != nil }

func (o *Object) console() *console.Console {
	if o.info.Patcher == nil {
		return nil
	}
	return o.info.Patcher.Console()
}

func (o *Object) AddInlet(t IoType, p Polarity, description string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inlets = append(o.inlets, newInlet(t, p, description))
	if t.IsSignal() {
		o.sigIns++
	}
}

func (o *Object) AddOutlet(t IoType, description string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outlets = append(o.outlets, newOutlet(t, description))
	if t.IsSignal() {
		o.sigOuts++
	}
}

func (o *Object) NumInlets() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.inlets)
}

func (o *Object) NumOutlets() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.outlets)
}

func (o *Object) NumSignalInlets() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sigIns
}

func (o *Object) NumSignalOutlets() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sigOuts
}

// Inlet returns inlet i, or nil if there is none.
func (o *Object) Inlet(i int) *Inlet {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i < 0 || i >= len(o.inlets) {
		return nil
	}
	return o.inlets[i]
}

// Outlet returns outlet i, or nil if there is none.
func (o *Object) Outlet(i int) *Outlet {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i < 0 || i >= len(o.outlets) {
		return nil
	}
	return o.outlets[i]
}

// DspInletIndex converts a raw inlet index to the inlet's position among the
// signal inlets only.
func (o *Object) DspInletIndex(i int) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	types := make([]IoType, len(o.inlets))
	for k, in := range o.inlets {
		types[k] = in.typ
	}
	return dspIndex("inlet", types, i)
}

// DspOutletIndex converts a raw outlet index to the outlet's position among
// the signal outlets only.
func (o *Object) DspOutletIndex(i int) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	types := make([]IoType, len(o.outlets))
	for k, out := range o.outlets {
		types[k] = out.typ
	}
	return dspIndex("outlet", types, i)
}

func dspIndex(kind string, types []IoType, i int) (int, error) {
	if i < 0 || i >= len(types) {
		return 0, &IndexError{Kind: kind, Index: i, Len: len(types)}
	}
	if !types[i].IsSignal() {
		return 0, &TypeMismatchError{Kind: kind, Index: i, Type: types[i]}
	}
	n := 0
	for _, t := range types[:i] {
		if t.IsSignal() {
			n++
		}
	}
	return n, nil
}

// Send delivers msg to every object connected to outlet i, in the order the
// connections were made.
func (o *Object) Send(i int, msg atom.Vector) {
	out := o.Outlet(i)
	if out == nil {
		return
	}
	for _, c := range out.Connections() {
		r := c.Object()
		if r == nil {
			continue
		}
		if r.depth.Add(1) <= maxDepth {
			r.Receive(c.index, msg)
		} else {
			r.console().ErrorFrom(r, ErrStackOverflow.Error())
		}
		r.depth.Add(-1)
	}
}

// Receive hands msg to o's behavior.
func (o *Object) Receive(inlet int, msg atom.Vector) {
	if o.behavior != nil {
		o.behavior.Receive(inlet, msg)
	}
}

func (o *Object) Prepare(p dsp.Params) {
	if o.proc != nil {
		o.proc.Prepare(p)
	}
}

func (o *Object) Perform(in, out []dsp.Buffer) {
	if o.proc != nil {
		o.proc.Perform(in, out)
	}
}

// Write stores o's structure, and whatever its behavior saves, in d.
func (o *Object) Write(d atom.Dict) {
	if s, ok := o.behavior.(Saver); ok {
		s.Save(d)
	}
	args := o.info.Args
	if args == nil {
		args = atom.Vector{}
	}
	d[atom.Name] = o.info.Name
	d[atom.Text] = atom.NewTag(o.info.Text)
	d[atom.ID] = int64(o.info.ID)
	d[atom.Arguments] = args.Copy()
	d[atom.Ninlets] = int64(o.NumInlets())
	d[atom.Noutlets] = int64(o.NumOutlets())
}

func (o *Object) free() {
	if f, ok := o.behavior.(Freer); ok {
		f.Free()
	}
}
