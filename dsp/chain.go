package dsp

import (
	"sync"
	"sync/atomic"
)

// A Chain collects the signal nodes and edges of one patcher and compiles
// them into a Program.  The Program is rebuilt from scratch on every Compile
// and published to the Chain's Context, so the block-processing side only
// ever sees complete programs.
type Chain struct {
	ctx *Context

	mu    sync.Mutex
	nodes []Node
	edges []Edge

	program atomic.Pointer[Program]
}

// NewChain returns a Chain attached to ctx.  A nil ctx gets a private Context
// with DefaultParams.
func NewChain(ctx *Context) *Chain {
	if ctx == nil {
		ctx = NewContext(DefaultParams)
	}
	c := &Chain{ctx: ctx}
	ctx.add(c)
	return c
}

func (c *Chain) Context() *Context { return c.ctx }

// AddNode registers n.  It reports whether n was not already registered.
func (c *Chain) AddNode(n Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.nodes {
		if m == n {
			return false
		}
	}
	c.nodes = append(c.nodes, n)
	return true
}

// RemoveNode unregisters n and every edge touching it.
func (c *Chain) RemoveNode(n Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, m := range c.nodes {
		if m == n {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			edges := c.edges[:0]
			for _, e := range c.edges {
				if e.From != n && e.To != n {
					edges = append(edges, e)
				}
			}
			c.edges = edges
			return true
		}
	}
	return false
}

func (c *Chain) AddEdge(e Edge) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.edges {
		if f == e {
			return false
		}
	}
	c.edges = append(c.edges, e)
	return true
}

func (c *Chain) RemoveEdge(e Edge) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, f := range c.edges {
		if f == e {
			c.edges = append(c.edges[:i], c.edges[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Chain) Nodes() []Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Node(nil), c.nodes...)
}

func (c *Chain) Edges() []Edge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Edge(nil), c.edges...)
}

// Compile rebuilds the Program from the current nodes and edges and publishes
// it.  A *CycleError is returned if some nodes had to be left out; the
// published Program still orders the rest.
func (c *Chain) Compile() (*Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prog, err := compile(c.nodes, c.edges, c.ctx.Params())
	c.ctx.publish(c, prog)
	return prog, err
}

// Program returns the last published Program.
func (c *Chain) Program() *Program { return c.program.Load() }

// Close detaches c from its Context.
func (c *Chain) Close() { c.ctx.remove(c) }
