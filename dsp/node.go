package dsp

// A Processor computes one block of signal at a time.  Prepare is called
// before the first Perform and again whenever the Params change.  in and out
// are indexed by compacted signal index and are BlockSize long.
type Processor interface {
	Prepare(p Params)
	Perform(in, out []Buffer)
}

// A Node is a Processor that can be placed in a Chain.
type Node interface {
	Processor
	NumSignalInlets() int
	NumSignalOutlets() int
	String() string
}

// An Edge routes signal outlet Outlet of From to signal inlet Inlet of To.
// Both indices are compacted signal indices.
type Edge struct {
	From   Node
	Outlet int
	To     Node
	Inlet  int
}
