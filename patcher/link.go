package patcher

import (
	"fmt"
	"weak"

	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/dsp"
)

// A Link connects outlet OutletIndex of From to inlet InletIndex of To.  A
// signal link additionally carries the edge it contributes to the DSP chain,
// in compacted signal indices.
type Link struct {
	patcher weak.Pointer[Patcher]
	from    weak.Pointer[Object]
	to      weak.Pointer[Object]
	outlet  int
	inlet   int
	typ     IoType
	edge    *dsp.Edge
}

func newLink(p *Patcher, from *Object, outlet int, to *Object, inlet int, t IoType) *Link {
	return &Link{
		patcher: weak.Make(p),
		from:    weak.Make(from),
		to:      weak.Make(to),
		outlet:  outlet,
		inlet:   inlet,
		typ:     t,
	}
}

func newSignalLink(p *Patcher, from *Object, outlet int, to *Object, inlet int, t IoType, dspOutlet, dspInlet int) *Link {
	l := newLink(p, from, outlet, to, inlet, t)
	l.edge = &dsp.Edge{From: from, Outlet: dspOutlet, To: to, Inlet: dspInlet}
	return l
}

func (l *Link) Patcher() *Patcher { return l.patcher.Value() }
func (l *Link) From() *Object     { return l.from.Value() }
func (l *Link) To() *Object       { return l.to.Value() }
func (l *Link) OutletIndex() int  { return l.outlet }
func (l *Link) InletIndex() int   { return l.inlet }
func (l *Link) Type() IoType      { return l.typ }
func (l *Link) IsSignal() bool    { return l.edge != nil }

// Edge returns the DSP edge of a signal link.
func (l *Link) Edge() (dsp.Edge, bool) {
	if l.edge == nil {
		return dsp.Edge{}, false
	}
	return *l.edge, true
}

func (l *Link) touches(o *Object) bool { return l.From() == o || l.To() == o }

func (l *Link) String() string {
	return fmt.Sprintf("%v:%d -> %v:%d", l.From(), l.outlet, l.To(), l.inlet)
}

// Write stores the link's endpoints in d.  Links whose objects are gone
// write nothing.
func (l *Link) Write(d atom.Dict) {
	from, to := l.From(), l.To()
	if from == nil || to == nil {
		delete(d, atom.From)
		delete(d, atom.To)
		return
	}
	d[atom.From] = atom.Vector{int64(from.ID()), int64(l.outlet)}
	d[atom.To] = atom.Vector{int64(to.ID()), int64(l.inlet)}
}

// destroy removes the link's connections from both iolets.  Either side may
// already be gone.
func (l *Link) destroy() {
	from, to := l.From(), l.To()
	if from != nil {
		if out := from.Outlet(l.outlet); out != nil {
			out.Erase(to, l.inlet)
		}
	}
	if to != nil {
		if in := to.Inlet(l.inlet); in != nil {
			in.Erase(from, l.outlet)
		}
	}
}
