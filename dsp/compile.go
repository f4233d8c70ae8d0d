package dsp

import "container/heap"

type arc struct {
	from, outlet, to, inlet int
}

// compile orders nodes so that every edge's source precedes its destination.
// Nodes on a cycle, and the edges touching them, are left out and reported in
// a CycleError; everything else is still ordered.  Among nodes with no
// ordering constraint between them, registration order is kept.
func compile(nodes []Node, edges []Edge, p Params) (*Program, error) {
	index := make(map[Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	var arcs []arc
	succ := make([][]int, len(nodes))
	for _, e := range edges {
		from, ok := index[e.From]
		if !ok {
			continue
		}
		to, ok := index[e.To]
		if !ok {
			continue
		}
		if e.Outlet < 0 || e.Outlet >= e.From.NumSignalOutlets() || e.Inlet < 0 || e.Inlet >= e.To.NumSignalInlets() {
			continue
		}
		arcs = append(arcs, arc{from, e.Outlet, to, e.Inlet})
		succ[from] = append(succ[from], to)
	}

	cyclic := cyclicNodes(succ)

	indegree := make([]int, len(nodes))
	for _, a := range arcs {
		if !cyclic[a.from] && !cyclic[a.to] {
			indegree[a.to]++
		}
	}
	ready := &indexHeap{}
	for i := range nodes {
		if !cyclic[i] && indegree[i] == 0 {
			heap.Push(ready, i)
		}
	}
	stepOf := make([]int, len(nodes))
	var order []int
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		stepOf[i] = len(order)
		order = append(order, i)
		for _, w := range succ[i] {
			if cyclic[w] {
				continue
			}
			if indegree[w]--; indegree[w] == 0 {
				heap.Push(ready, w)
			}
		}
	}

	prog := &Program{params: p, steps: make([]step, len(order))}
	for k, i := range order {
		n := nodes[i]
		prog.steps[k] = step{
			node:    n,
			in:      makeBuffers(n.NumSignalInlets(), p),
			out:     makeBuffers(n.NumSignalOutlets(), p),
			sources: make([][]source, n.NumSignalInlets()),
		}
	}
	for _, a := range arcs {
		if cyclic[a.from] || cyclic[a.to] {
			continue
		}
		s := &prog.steps[stepOf[a.to]]
		s.sources[a.inlet] = append(s.sources[a.inlet], source{stepOf[a.from], a.outlet})
	}

	for i, n := range nodes {
		if cyclic[i] {
			prog.excluded = append(prog.excluded, n)
		}
	}
	if len(prog.excluded) > 0 {
		return prog, &CycleError{Nodes: prog.excluded}
	}
	return prog, nil
}

func makeBuffers(n int, p Params) []Buffer {
	b := make([]Buffer, n)
	for i := range b {
		b[i] = NewBuffer(p)
	}
	return b
}

// cyclicNodes reports which nodes belong to a strongly connected component
// with more than one node or to a self loop (Tarjan).
func cyclicNodes(succ [][]int) []bool {
	n := len(succ)
	cyclic := make([]bool, n)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	next := 0

	var visit func(v int)
	visit = func(v int) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range succ[v] {
			if index[w] < 0 {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		i := len(stack) - 1
		for stack[i] != v {
			i--
		}
		scc := stack[i:]
		for _, w := range scc {
			onStack[w] = false
			if len(scc) > 1 {
				cyclic[w] = true
			}
		}
		stack = stack[:i]
	}
	for v := range succ {
		if index[v] < 0 {
			visit(v)
		}
	}
	for v, ws := range succ {
		for _, w := range ws {
			if w == v {
				cyclic[v] = true
			}
		}
	}
	return cyclic
}

type indexHeap []int

func (h indexHeap) Len() int            { return len(h) }
func (h indexHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() interface{} {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
