package patcher

import (
	"fmt"
	"sync"
	"weak"
)

type IoType int

const (
	Message IoType = iota
	Signal
	Both
)

// IsSignal reports whether t carries signal, that is Signal or Both.
func (t IoType) IsSignal() bool { return t >= Signal }

func (t IoType) String() string {
	switch t {
	case Message:
		return "message"
	case Signal:
		return "signal"
	case Both:
		return "both"
	}
	return fmt.Sprintf("IoType(%d)", int(t))
}

// Hot inlets trigger output; cold inlets only store their value.
type Polarity int

const (
	Hot Polarity = iota
	Cold
)

// A Connection is one end of a link as seen from the other end: the peer
// object and the index of the peer's iolet.  The peer is held weakly.
type Connection struct {
	object weak.Pointer[Object]
	index  int
}

// Object returns the peer, or nil if it is gone.
func (c Connection) Object() *Object { return c.object.Value() }
func (c Connection) Index() int      { return c.index }

// An Iolet is an ordered list of connections plus its type information.
type Iolet struct {
	typ         IoType
	polarity    Polarity
	description string

	mu    sync.Mutex
	conns []Connection
}

func (io *Iolet) Type() IoType        { return io.typ }
func (io *Iolet) Polarity() Polarity  { return io.polarity }
func (io *Iolet) Description() string { return io.description }

func (io *Iolet) Len() int {
	io.mu.Lock()
	defer io.mu.Unlock()
	return len(io.conns)
}

// Connections returns a snapshot of the connections in the order they were
// appended.
func (io *Iolet) Connections() []Connection {
	io.mu.Lock()
	defer io.mu.Unlock()
	return append([]Connection(nil), io.conns...)
}

func (io *Iolet) Has(o *Object, index int) bool {
	if o == nil {
		return false
	}
	io.mu.Lock()
	defer io.mu.Unlock()
	return io.find(o, index) >= 0
}

// Append adds a connection to (o, index).  It reports false and does nothing
// if o is nil or the connection already exists.
func (io *Iolet) Append(o *Object, index int) bool {
	if o == nil {
		return false
	}
	io.mu.Lock()
	defer io.mu.Unlock()
	if io.find(o, index) >= 0 {
		return false
	}
	io.conns = append(io.conns, Connection{weak.Make(o), index})
	return true
}

// Erase removes the connection to (o, index) and reports whether there was
// one.
func (io *Iolet) Erase(o *Object, index int) bool {
	if o == nil {
		return false
	}
	io.mu.Lock()
	defer io.mu.Unlock()
	i := io.find(o, index)
	if i < 0 {
		return false
	}
	io.conns = append(io.conns[:i], io.conns[i+1:]...)
	return true
}

// Connection returns connection i, or the zero Connection if i is out of
// range.
func (io *Iolet) Connection(i int) Connection {
	io.mu.Lock()
	defer io.mu.Unlock()
	if i < 0 || i >= len(io.conns) {
		return Connection{}
	}
	return io.conns[i]
}

// Object returns the peer of connection i, or nil.
func (io *Iolet) Object(i int) *Object { return io.Connection(i).Object() }

// Index returns the peer iolet index of connection i, or 0.
func (io *Iolet) Index(i int) int { return io.Connection(i).index }

func (io *Iolet) find(o *Object, index int) int {
	w := weak.Make(o)
	for i, c := range io.conns {
		if c.object == w && c.index == index && c.object.Value() != nil {
			return i
		}
	}
	return -1
}

type Inlet struct{ Iolet }

type Outlet struct{ Iolet }

func newInlet(t IoType, p Polarity, description string) *Inlet {
	return &Inlet{Iolet{typ: t, polarity: p, description: description}}
}

func newOutlet(t IoType, description string) *Outlet {
	return &Outlet{Iolet{typ: t, polarity: Hot, description: description}}
}
