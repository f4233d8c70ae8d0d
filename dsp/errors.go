package dsp

import "strings"

// A CycleError lists the nodes left out of a compiled Program because they
// lie on a signal cycle.
type CycleError struct {
	Nodes []Node
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Nodes))
	for i, n := range e.Nodes {
		names[i] = n.String()
	}
	return "dsp: signal cycle through " + strings.Join(names, ", ")
}
