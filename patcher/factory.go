package patcher

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gordonklaus/kiwi/atom"
)

// A Constructor builds the behavior of a new object.  It declares the
// object's inlets and outlets on o and may read o.Info().  It runs while the
// patcher is locked and must not modify the patcher.
type Constructor func(o *Object) (Behavior, error)

// A Factory maps object names to constructors.  One Factory is normally
// shared by all the patchers of an instance; it must be filled before use.
type Factory struct {
	mu    sync.RWMutex
	ctors map[atom.Tag]Constructor
}

func NewFactory() *Factory {
	return &Factory{ctors: map[atom.Tag]Constructor{}}
}

// Register adds a constructor for name.  Names can only be registered once.
func (f *Factory) Register(name string, c Constructor) error {
	if name == "" || c == nil {
		return errors.New("factory: a name and a constructor are required")
	}
	tag := atom.NewTag(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ctors[tag]; ok {
		return fmt.Errorf("factory: %s is already registered", name)
	}
	f.ctors[tag] = c
	return nil
}

func (f *Factory) Has(name atom.Tag) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ctors[name]
	return ok
}

// Names returns the registered names in alphabetical order.
func (f *Factory) Names() []atom.Tag {
	f.mu.RLock()
	names := make([]atom.Tag, 0, len(f.ctors))
	for name := range f.ctors {
		names = append(names, name)
	}
	f.mu.RUnlock()
	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })
	return names
}

// Clear forgets every constructor.
func (f *Factory) Clear() {
	f.mu.Lock()
	f.ctors = map[atom.Tag]Constructor{}
	f.mu.Unlock()
}

// Create builds the object called name.
func (f *Factory) Create(name atom.Tag, info Info) (*Object, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: %s (no factory)", ErrUnknownObject, name)
	}
	f.mu.RLock()
	ctor, ok := f.ctors[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObject, name)
	}

	o := newObject(info)
	b, err := ctor(o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%s: constructor returned no behavior", name)
	}
	o.setBehavior(b)
	if l, ok := b.(Loader); ok && info.Dict != nil {
		l.Load(info.Dict)
	}
	return o, nil
}
