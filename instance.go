// Package kiwi is a patching engine.  An Instance owns a set of patchers that
// share one object factory, one console and one DSP context.
package kiwi

import (
	"slices"
	"sync"

	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/console"
	"github.com/gordonklaus/kiwi/dsp"
	"github.com/gordonklaus/kiwi/notify"
	"github.com/gordonklaus/kiwi/patcher"
)

// A Listener is told about the patchers of an instance and about DSP being
// started or stopped.  Nil fields are skipped.  Listeners are held weakly.
type Listener struct {
	PatcherCreated func(*Instance, *patcher.Patcher)
	PatcherRemoved func(*Instance, *patcher.Patcher)
	DSPStarted     func(*Instance, dsp.Params)
	DSPStopped     func(*Instance)
}

type Instance struct {
	name    string
	factory *patcher.Factory
	console *console.Console
	dsp     *dsp.Context

	mu        sync.Mutex
	patchers  []*patcher.Patcher
	listeners notify.Set[Listener]
}

// New returns an instance whose patchers create objects with f and report to
// c.  A nil f is replaced by an empty factory and a nil c by a console
// logging to slog's default logger.
func New(name string, f *patcher.Factory, c *console.Console) *Instance {
	if f == nil {
		f = patcher.NewFactory()
	}
	if c == nil {
		c = console.New(nil)
	}
	return &Instance{
		name:    name,
		factory: f,
		console: c,
		dsp:     dsp.NewContext(dsp.DefaultParams),
	}
}

func (x *Instance) Name() string               { return x.name }
func (x *Instance) Factory() *patcher.Factory  { return x.factory }
func (x *Instance) Console() *console.Console  { return x.console }
func (x *Instance) DSP() *dsp.Context          { return x.dsp }
func (x *Instance) AddListener(l *Listener)    { x.listeners.Add(l) }
func (x *Instance) RemoveListener(l *Listener) { x.listeners.Remove(l) }

// CreatePatcher creates a patcher and, if d has a patcher entry, adds its
// contents.  The patcher is returned even when some of them fail.
func (x *Instance) CreatePatcher(d atom.Dict) (*patcher.Patcher, error) {
	p := patcher.New(patcher.Env{
		Factory: x.factory,
		Console: x.console,
		DSP:     x.dsp,
	})
	x.mu.Lock()
	x.patchers = append(x.patchers, p)
	x.mu.Unlock()

	var err error
	if sub, ok := atom.DictOf(d[atom.Patcher]); ok {
		err = p.Add(sub)
	}
	x.listeners.Call(func(l *Listener) {
		if l.PatcherCreated != nil {
			l.PatcherCreated(x, p)
		}
	})
	return p, err
}

// RemovePatcher clears p and detaches it from the DSP context.  It reports
// whether p belonged to x.
func (x *Instance) RemovePatcher(p *patcher.Patcher) bool {
	x.mu.Lock()
	i := slices.Index(x.patchers, p)
	if i >= 0 {
		x.patchers = slices.Delete(x.patchers, i, i+1)
	}
	x.mu.Unlock()
	if i < 0 {
		return false
	}

	p.Close()
	x.listeners.Call(func(l *Listener) {
		if l.PatcherRemoved != nil {
			l.PatcherRemoved(x, p)
		}
	})
	return true
}

// Patchers returns the patchers in the order they were created.
func (x *Instance) Patchers() []*patcher.Patcher {
	x.mu.Lock()
	defer x.mu.Unlock()
	return slices.Clone(x.patchers)
}

// StartDSP starts the DSP context with p.  Chains that fail to compile
// completely are reported to the console; DSP starts regardless.
func (x *Instance) StartDSP(p dsp.Params) error {
	err := x.dsp.Start(p)
	if err != nil {
		x.console.Error(err.Error())
	}
	params := x.dsp.Params()
	x.listeners.Call(func(l *Listener) {
		if l.DSPStarted != nil {
			l.DSPStarted(x, params)
		}
	})
	return err
}

func (x *Instance) StopDSP() {
	x.dsp.Stop()
	x.listeners.Call(func(l *Listener) {
		if l.DSPStopped != nil {
			l.DSPStopped(x)
		}
	})
}

// Close stops DSP and removes every patcher.
func (x *Instance) Close() {
	if x.dsp.Running() {
		x.StopDSP()
	}
	for _, p := range x.Patchers() {
		x.RemovePatcher(p)
	}
}
