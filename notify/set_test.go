package notify

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

type listener struct {
	name string
	got  *[]string
}

func (l *listener) hear() { *l.got = append(*l.got, l.name) }

func TestSetOrderAndIdempotence(t *testing.T) {
	var got []string
	a := &listener{"a", &got}
	b := &listener{"b", &got}

	var s Set[listener]
	assert.True(t, s.Add(a))
	assert.True(t, s.Add(b))
	assert.False(t, s.Add(a))
	assert.Equal(t, 2, s.Len())

	s.Call((*listener).hear)
	assert.Equal(t, []string{"a", "b"}, got)

	s.Remove(a)
	s.Remove(a)
	got = nil
	s.Call((*listener).hear)
	assert.Equal(t, []string{"b"}, got)
	runtime.KeepAlive(a)
}

func TestSetDropsCollectedListeners(t *testing.T) {
	var got []string
	var s Set[listener]
	s.Add(&listener{"gone", &got})
	kept := &listener{"kept", &got}
	s.Add(kept)

	runtime.GC()
	s.Call((*listener).hear)
	assert.Equal(t, []string{"kept"}, got)
	assert.Equal(t, 1, s.Len())
	runtime.KeepAlive(kept)
}

func TestSetRemoveDuringCall(t *testing.T) {
	var got []string
	var s Set[listener]
	a := &listener{"a", &got}
	b := &listener{"b", &got}
	s.Add(a)
	s.Add(b)
	s.Call(func(l *listener) {
		s.Remove(b)
		l.hear()
	})
	assert.Equal(t, []string{"a", "b"}, got)
	got = nil
	s.Call((*listener).hear)
	assert.Equal(t, []string{"a"}, got)
	runtime.KeepAlive(a)
}
