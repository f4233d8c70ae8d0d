package dsp

import (
	"sync"

	"go.uber.org/multierr"
)

// A Context runs the published programs of its chains, one block at a time.
// Publishing a program and processing a block exclude each other, so a block
// always runs complete programs.
type Context struct {
	mu       sync.Mutex
	params   Params
	running  bool
	chains   []*Chain
	prepared map[*Chain]map[Node]Params
	out      []Buffer
}

func NewContext(p Params) *Context {
	p = p.WithDefaults()
	return &Context{
		params:   p,
		prepared: map[*Chain]map[Node]Params{},
		out:      makeBuffers(p.Channels, p),
	}
}

func (c *Context) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

func (c *Context) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Start sets the processing parameters and recompiles every chain with them.
// Compilation problems are returned but do not prevent starting.
func (c *Context) Start(p Params) error {
	p = p.WithDefaults()
	c.mu.Lock()
	c.params = p
	c.out = makeBuffers(p.Channels, p)
	c.running = true
	chains := append([]*Chain(nil), c.chains...)
	c.mu.Unlock()

	var err error
	for _, ch := range chains {
		if _, e := ch.Compile(); e != nil {
			err = multierr.Append(err, e)
		}
	}
	return err
}

func (c *Context) Stop() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// Tick processes one block of every chain and returns the output bus, one
// Buffer per channel.  The bus is reused by the next Tick.  Nothing is
// processed while the context is stopped.
func (c *Context) Tick() []Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.out {
		b.Zero()
	}
	if !c.running {
		return c.out
	}
	for _, ch := range c.chains {
		ch.Program().Process()
	}
	return c.out
}

// Output returns output channel ch, or nil if there is no such channel.  It
// is meant to be called from Perform, while a block is being processed.
func (c *Context) Output(ch int) Buffer {
	if ch < 0 || ch >= len(c.out) {
		return nil
	}
	return c.out[ch]
}

func (c *Context) add(ch *Chain) {
	c.mu.Lock()
	c.chains = append(c.chains, ch)
	c.mu.Unlock()
}

func (c *Context) remove(ch *Chain) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.chains {
		if x == ch {
			c.chains = append(c.chains[:i], c.chains[i+1:]...)
			break
		}
	}
	delete(c.prepared, ch)
	ch.program.Store(nil)
}

func (c *Context) publish(ch *Chain, prog *Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.prepared[ch]
	prepared := make(map[Node]Params, prog.Len())
	for _, s := range prog.steps {
		if p, ok := old[s.node]; !ok || p != prog.params {
			s.node.Prepare(prog.params)
		}
		prepared[s.node] = prog.params
	}
	c.prepared[ch] = prepared
	ch.program.Store(prog)
}
