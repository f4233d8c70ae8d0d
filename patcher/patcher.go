// Package patcher maintains a graph of objects connected by links and keeps
// the DSP chain derived from its signal part up to date.
package patcher

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"go.uber.org/multierr"

	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/console"
	"github.com/gordonklaus/kiwi/dsp"
	"github.com/gordonklaus/kiwi/notify"
)

// Env is what a patcher shares with the rest of its instance.
type Env struct {
	Factory *Factory
	Console *console.Console
	DSP     *dsp.Context
}

// A Patcher owns objects and the links between them.  Every structural
// change holds the patcher's lock from start to finish, recompiles the DSP
// chain if the signal graph changed, and then notifies listeners once the
// lock is released.
type Patcher struct {
	env   Env
	chain *dsp.Chain

	mu      sync.Mutex
	objects map[uint64]*Object
	order   []*Object // back to front
	links   []*Link
	ids     idPool

	listeners notify.Set[Listener]
}

func New(env Env) *Patcher {
	return &Patcher{
		env:     env,
		chain:   dsp.NewChain(env.DSP),
		objects: map[uint64]*Object{},
	}
}

func (p *Patcher) Console() *console.Console { return p.env.Console }
func (p *Patcher) Factory() *Factory         { return p.env.Factory }
func (p *Patcher) DSP() *dsp.Context         { return p.chain.Context() }

// Program returns the DSP chain currently published for this patcher.
func (p *Patcher) Program() *dsp.Program { return p.chain.Program() }

// change collects the effects of one structural operation.
type change struct {
	events []event
	dsp    bool
}

func (p *Patcher) update(f func(c *change)) {
	p.deliver(p.locked(f))
}

func (p *Patcher) locked(f func(c *change)) []event {
	var c change
	p.mu.Lock()
	defer p.mu.Unlock()
	f(&c)
	if c.dsp {
		prog, err := p.chain.Compile()
		if err != nil {
			p.env.Console.Error(err.Error())
		}
		c.events = append(c.events, event{kind: chainCompiled, program: prog})
	}
	return c.events
}

// Add imports the objects and links of d.  The ids of d's objects only
// identify them within d: every object gets a fresh id, and the links of d
// are rewritten to match before any is created.  Objects are created before
// links.  A failure to create one object or link is reported and skipped;
// all failures are returned together.
func (p *Patcher) Add(d atom.Dict) error {
	var errs error
	p.update(func(c *change) { errs = p.add(d, c) })
	return errs
}

func (p *Patcher) add(d atom.Dict, c *change) error {
	objects, _ := atom.VectorOf(d[atom.Objects])
	links, _ := atom.VectorOf(d[atom.Links])

	var errs error
	ids := map[int64]uint64{}
	for _, a := range objects {
		od, ok := atom.DictOf(a)
		if !ok || len(od) == 0 {
			continue
		}
		od = od.Copy()
		ref, hasRef := integer(od[atom.ID])
		o, err := p.createObject(od, c)
		if err != nil {
			p.env.Console.Error(err.Error())
			errs = multierr.Append(errs, err)
			if hasRef {
				ids[ref] = 0
			}
			continue
		}
		if hasRef {
			ids[ref] = o.ID()
		}
	}

	for _, a := range links {
		ld, ok := atom.DictOf(a)
		if !ok || len(ld) == 0 {
			continue
		}
		ld = ld.Copy()
		err := multierr.Append(remapEndpoint(ld, atom.From, ids), remapEndpoint(ld, atom.To, ids))
		if err == nil {
			_, err = p.createLink(ld, c)
		}
		if err != nil {
			p.env.Console.Error(err.Error())
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// remapEndpoint rewrites the object id of d[key] if it names an object of the
// batch.  A batch object that could not be created has id 0 in ids.
func remapEndpoint(d atom.Dict, key atom.Tag, ids map[int64]uint64) error {
	v, ok := atom.VectorOf(d[key])
	if !ok || len(v) < 2 {
		return nil
	}
	ref, ok := integer(v[0])
	if !ok {
		return nil
	}
	id, ok := ids[ref]
	if !ok {
		return nil
	}
	if id == 0 {
		return &ConnectionError{fmt.Sprintf("%v object %d was not created", key, ref)}
	}
	d[key] = atom.Vector{int64(id), v[1]}
	return nil
}

// integer is like atom.Int but rejects floats that are not whole numbers or
// do not fit in an int64.
func integer(a atom.Atom) (int64, bool) {
	if f, ok := a.(float64); ok && (f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64) {
		return 0, false
	}
	return atom.Int(a)
}

// CreateObject creates one object from d.  Like Add, it ignores the id in d
// and assigns a fresh one.
func (p *Patcher) CreateObject(d atom.Dict) (*Object, error) {
	var o *Object
	var err error
	p.update(func(c *change) { o, err = p.createObject(d.Copy(), c) })
	if err != nil {
		p.env.Console.Error(err.Error())
	}
	return o, err
}

func (p *Patcher) createObject(d atom.Dict, c *change) (*Object, error) {
	name, okName := atom.TagOf(d[atom.Name])
	text, okText := atom.TagOf(d[atom.Text])
	_, okID := atom.Int(d[atom.ID])
	args, okArgs := atom.VectorOf(d[atom.Arguments])
	if !okName || !okText || !okID || !okArgs {
		return nil, fmt.Errorf("%w: name, text, id and arguments are required", ErrInvalidObject)
	}

	id := p.ids.allocate(len(p.objects), p.inUse)
	d[atom.ID] = int64(id)
	o, err := p.env.Factory.Create(name, Info{
		Patcher: p,
		ID:      id,
		Name:    name,
		Text:    text.String(),
		Dict:    d,
		Args:    args,
	})
	if err != nil {
		p.ids.release(id)
		return nil, err
	}

	p.objects[id] = o
	p.order = append(p.order, o)
	if o.IsSignal() && p.chain.AddNode(o) {
		c.dsp = true
	}
	c.events = append(c.events, event{kind: objectCreated, object: o})
	return o, nil
}

func (p *Patcher) inUse(id uint64) bool {
	_, ok := p.objects[id]
	return ok
}

// CreateLink creates one link from d, whose from and to entries hold
// [object id, iolet index] pairs.  A link between incompatible iolets, or one
// that already exists, is not created and no error is returned.
func (p *Patcher) CreateLink(d atom.Dict) (*Link, error) {
	var l *Link
	var err error
	p.update(func(c *change) { l, err = p.createLink(d, c) })
	if err != nil {
		p.env.Console.Error(err.Error())
	}
	return l, err
}

func (p *Patcher) createLink(d atom.Dict, c *change) (*Link, error) {
	from, outlet, err := p.endpoint(d, atom.From)
	if err != nil {
		return nil, err
	}
	to, inlet, err := p.endpoint(d, atom.To)
	if err != nil {
		return nil, err
	}
	out := from.Outlet(outlet)
	if out == nil {
		return nil, &ConnectionError{fmt.Sprintf("%v has no outlet %d", from, outlet)}
	}
	in := to.Inlet(inlet)
	if in == nil {
		return nil, &ConnectionError{fmt.Sprintf("%v has no inlet %d", to, inlet)}
	}
	if out.Has(to, inlet) {
		return nil, nil
	}

	var l *Link
	switch ot, it := out.Type(), in.Type(); {
	case ot.IsSignal() && it.IsSignal():
		dspOutlet, err := from.DspOutletIndex(outlet)
		if err != nil {
			return nil, err
		}
		dspInlet, err := to.DspInletIndex(inlet)
		if err != nil {
			return nil, err
		}
		t := Signal
		if ot == Both && it == Both {
			t = Both
		}
		l = newSignalLink(p, from, outlet, to, inlet, t, dspOutlet, dspInlet)
	case ot == it || ot == Both || it == Both:
		l = newLink(p, from, outlet, to, inlet, Message)
	default:
		return nil, nil
	}

	out.Append(to, inlet)
	in.Append(from, outlet)
	p.links = append(p.links, l)
	if e, ok := l.Edge(); ok && p.chain.AddEdge(e) {
		c.dsp = true
	}
	c.events = append(c.events, event{kind: linkCreated, link: l})
	return l, nil
}

func (p *Patcher) endpoint(d atom.Dict, key atom.Tag) (*Object, int, error) {
	v, ok := atom.VectorOf(d[key])
	if !ok || len(v) < 2 {
		return nil, 0, &ConnectionError{"missing " + key.String()}
	}
	id, okID := integer(v[0])
	index, okIndex := integer(v[1])
	if !okID || !okIndex {
		return nil, 0, &ConnectionError{"malformed " + key.String()}
	}
	o := p.objects[uint64(id)]
	if id <= 0 || o == nil {
		return nil, 0, &ConnectionError{fmt.Sprintf("no object with id %d", id)}
	}
	return o, int(index), nil
}

// Remove removes o and every link touching it, and releases its id.  It
// reports whether o belonged to p.
func (p *Patcher) Remove(o *Object) bool {
	var ok bool
	p.update(func(c *change) { ok = p.remove(o, c) })
	if ok {
		o.free()
	}
	return ok
}

func (p *Patcher) remove(o *Object, c *change) bool {
	if o == nil || p.objects[o.ID()] != o {
		return false
	}
	kept := make([]*Link, 0, len(p.links))
	for _, l := range p.links {
		if l.touches(o) {
			p.destroyLink(l, c)
		} else {
			kept = append(kept, l)
		}
	}
	p.links = kept

	if o.IsSignal() && p.chain.RemoveNode(o) {
		c.dsp = true
	}
	delete(p.objects, o.ID())
	p.order = slices.DeleteFunc(p.order, func(x *Object) bool { return x == o })
	p.ids.release(o.ID())
	c.events = append(c.events, event{kind: objectRemoved, object: o})
	return true
}

// RemoveLink removes l and reports whether it belonged to p.
func (p *Patcher) RemoveLink(l *Link) bool {
	var ok bool
	p.update(func(c *change) {
		i := slices.Index(p.links, l)
		if l == nil || i < 0 {
			return
		}
		p.links = slices.Delete(p.links, i, i+1)
		p.destroyLink(l, c)
		ok = true
	})
	return ok
}

func (p *Patcher) destroyLink(l *Link, c *change) {
	l.destroy()
	if e, ok := l.Edge(); ok && p.chain.RemoveEdge(e) {
		c.dsp = true
	}
	c.events = append(c.events, event{kind: linkRemoved, link: l})
}

// Clear removes every link and then every object.
func (p *Patcher) Clear() {
	var removed []*Object
	p.update(func(c *change) {
		for _, l := range p.links {
			p.destroyLink(l, c)
		}
		p.links = nil
		for _, o := range slices.Clone(p.order) {
			if p.remove(o, c) {
				removed = append(removed, o)
			}
		}
	})
	for _, o := range removed {
		o.free()
	}
}

// Close clears p and detaches its chain from the DSP context.
func (p *Patcher) Close() {
	p.Clear()
	p.chain.Close()
}

// ToFront moves o to the front of the z-order.
func (p *Patcher) ToFront(o *Object) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := slices.Index(p.order, o); i >= 0 {
		p.order = append(slices.Delete(p.order, i, i+1), o)
	}
}

// ToBack moves o to the back of the z-order.
func (p *Patcher) ToBack(o *Object) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := slices.Index(p.order, o); i >= 0 {
		p.order = slices.Insert(slices.Delete(p.order, i, i+1), 0, o)
	}
}

// Object returns the object with the given id, or nil.
func (p *Patcher) Object(id uint64) *Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.objects[id]
}

// Objects returns the objects from back to front.
func (p *Patcher) Objects() []*Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.order)
}

func (p *Patcher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.objects)
}

func (p *Patcher) Links() []*Link {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.links)
}

// LinksOf returns the links touching o.
func (p *Patcher) LinksOf(o *Object) []*Link {
	p.mu.Lock()
	defer p.mu.Unlock()
	var links []*Link
	for _, l := range p.links {
		if l.touches(o) {
			links = append(links, l)
		}
	}
	return links
}

// Write returns the structural dictionary of p, suitable for Add.
func (p *Patcher) Write() atom.Dict {
	p.mu.Lock()
	defer p.mu.Unlock()
	objects := make(atom.Vector, 0, len(p.order))
	for _, o := range p.order {
		d := atom.Dict{}
		o.Write(d)
		objects = append(objects, d)
	}
	links := make(atom.Vector, 0, len(p.links))
	for _, l := range p.links {
		d := atom.Dict{}
		l.Write(d)
		if len(d) > 0 {
			links = append(links, d)
		}
	}
	return atom.Dict{atom.Objects: objects, atom.Links: links}
}
