package dsp

// A Program is a compiled chain: the nodes of a Chain in execution order,
// with the buffers and routing needed to run them.  A Program is immutable
// once published except for the contents of its buffers, which only the
// block-processing goroutine touches.
type Program struct {
	params   Params
	steps    []step
	excluded []Node
}

type step struct {
	node    Node
	in, out []Buffer
	sources [][]source // per signal inlet
}

type source struct {
	step, outlet int
}

func (p *Program) Params() Params { return p.params }

func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.steps)
}

// Nodes returns the nodes in execution order.
func (p *Program) Nodes() []Node {
	if p == nil {
		return nil
	}
	nodes := make([]Node, len(p.steps))
	for i, s := range p.steps {
		nodes[i] = s.node
	}
	return nodes
}

// Excluded returns the nodes left out because they lie on a cycle.
func (p *Program) Excluded() []Node {
	if p == nil {
		return nil
	}
	return append([]Node(nil), p.excluded...)
}

// Output returns the buffer last written to signal outlet i of n, or nil if n
// is not part of p.
func (p *Program) Output(n Node, i int) Buffer {
	if p == nil {
		return nil
	}
	for _, s := range p.steps {
		if s.node == n {
			if i < 0 || i >= len(s.out) {
				return nil
			}
			return s.out[i]
		}
	}
	return nil
}

// Process runs one block.  Each signal inlet receives the sum of the outlets
// connected to it.
func (p *Program) Process() {
	if p == nil {
		return
	}
	for i := range p.steps {
		s := &p.steps[i]
		for j, in := range s.in {
			in.Zero()
			for _, src := range s.sources[j] {
				in.Add(in, p.steps[src.step].out[src.outlet])
			}
		}
		s.node.Perform(s.in, s.out)
	}
}
