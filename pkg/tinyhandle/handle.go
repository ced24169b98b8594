// Package tinyhandle is a small handle/ID allocator used wherever the
// core needs to hand out stable integer identifiers (texture ids,
// buffer ids, node ids in a RenderScene) without exposing pointers.
package tinyhandle

import "math"

// Handle is a recyclable integer identifier. 0 and math.MaxUint32
// are reserved and never handed out.
type Handle = uint32

const (
	// Invalid is the reserved zero handle.
	Invalid Handle = 0
	// Max is the reserved upper-bound sentinel handle.
	Max Handle = math.MaxUint32
)

// Allocator hands out monotonically increasing handles and recycles
// released ones through a free list.
type Allocator struct {
	counter  Handle
	freeList []Handle
}

// NewAllocator returns an Allocator ready to hand out handles starting
// at 1.
func NewAllocator() *Allocator {
	return &Allocator{counter: 1}
}

// Allocate returns a fresh or recycled handle. It returns false only
// when the handle space is exhausted.
func (a *Allocator) Allocate() (Handle, bool) {
	if n := len(a.freeList); n > 0 {
		h := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return h, true
	}
	if a.counter >= 1 && a.counter < Max {
		h := a.counter
		a.counter++
		return h, true
	}
	return Invalid, false
}

// Release returns a handle to the pool. Releasing the most recently
// allocated handle simply rewinds the counter instead of growing the
// free list.
func (a *Allocator) Release(h Handle) bool {
	if h == a.counter-1 {
		if a.counter > 1 {
			a.counter--
		}
		return true
	}
	if h >= 1 {
		a.freeList = append(a.freeList, h)
		return true
	}
	return false
}
