package patcher

import "slices"

// idPool hands out object ids.  Released ids are reused smallest first;
// otherwise the next id is one more than the number of live objects.  Id 0
// is never handed out.  The pool has no lock of its own: the patcher's mutex
// guards it.
type idPool struct {
	free []uint64 // sorted
}

func (p *idPool) allocate(live int, inUse func(uint64) bool) uint64 {
	for len(p.free) > 0 {
		id := p.free[0]
		p.free = p.free[1:]
		if !inUse(id) {
			return id
		}
	}
	id := uint64(live) + 1
	for inUse(id) {
		id++
	}
	return id
}

func (p *idPool) release(id uint64) {
	if id == 0 {
		return
	}
	i, found := slices.BinarySearch(p.free, id)
	if !found {
		p.free = slices.Insert(p.free, i, id)
	}
}
