package patcher

import "github.com/gordonklaus/kiwi/dsp"

// A Listener is told about structural changes to a patcher after they are
// complete.  Nil fields are skipped.  Listeners are held weakly: keep a
// reference to the Listener for as long as it should be called.
type Listener struct {
	ObjectCreated func(*Patcher, *Object)
	ObjectRemoved func(*Patcher, *Object)
	LinkCreated   func(*Patcher, *Link)
	LinkRemoved   func(*Patcher, *Link)
	ChainCompiled func(*Patcher, *dsp.Program)
}

type eventKind int

const (
	objectCreated eventKind = iota
	objectRemoved
	linkCreated
	linkRemoved
	chainCompiled
)

type event struct {
	kind    eventKind
	object  *Object
	link    *Link
	program *dsp.Program
}

func (p *Patcher) AddListener(l *Listener)    { p.listeners.Add(l) }
func (p *Patcher) RemoveListener(l *Listener) { p.listeners.Remove(l) }

func (p *Patcher) deliver(events []event) {
	for _, e := range events {
		p.listeners.Call(func(l *Listener) {
			switch e.kind {
			case objectCreated:
				if l.ObjectCreated != nil {
					l.ObjectCreated(p, e.object)
				}
			case objectRemoved:
				if l.ObjectRemoved != nil {
					l.ObjectRemoved(p, e.object)
				}
			case linkCreated:
				if l.LinkCreated != nil {
					l.LinkCreated(p, e.link)
				}
			case linkRemoved:
				if l.LinkRemoved != nil {
					l.LinkRemoved(p, e.link)
				}
			case chainCompiled:
				if l.ChainCompiled != nil {
					l.ChainCompiled(p, e.program)
				}
			}
		})
	}
}
