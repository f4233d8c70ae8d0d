package patcher

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownObject = errors.New("unknown object")
	ErrInvalidObject = errors.New("invalid object dictionary")
	ErrStackOverflow = errors.New("stack overflow")
)

// An IndexError reports an iolet index out of range.
type IndexError struct {
	Kind  string // "inlet" or "outlet"
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("the %s %d is out of range (the object has %d)", e.Kind, e.Index, e.Len)
}

// A TypeMismatchError reports a signal operation on a message-only iolet.
type TypeMismatchError struct {
	Kind  string
	Index int
	Type  IoType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("the %s %d isn't a signal %s (%s)", e.Kind, e.Index, e.Kind, e.Type)
}

// A ConnectionError reports a link dictionary that cannot describe a link.
type ConnectionError struct {
	Reason string
}

func (e *ConnectionError) Error() string { return "invalid link dictionary: " + e.Reason }
