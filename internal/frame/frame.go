// Package frame implements the user page-frame allocator (FA): a
// fixed-size array of physical user frames, tracked by reference count so
// that a frame can be exclusively owned (count 1) or shared between
// address spaces under copy-on-write (count > 1).
//
// Grounded on frame_alloc/frame_free/frame_share/frame_is_shared in
// original_source/src/kernel/mm/paging.c, generalized the way
// mit-pdos-biscuit's mem.Physmem_t generalizes physical page tracking —
// again simplified back to spec.md's mandated first-fit linear scan rather
// than biscuit's SMP free-list optimization.
package frame

import (
	"github.com/pkg/errors"

	"github.com/Viniciusilva/nanvix/internal/hal"
	"github.com/Viniciusilva/nanvix/internal/klog"
)

// ErrExhausted is returned by Alloc when every frame is live.
var ErrExhausted = errors.New("frame: pool exhausted")

// Number identifies a physical user frame. Frame 0 is reserved as Alloc's
// failure sentinel and is never handed out, exactly as spec.md §4.2
// requires.
type Number uint32

// Allocator is a fixed-size user frame pool. The zero value is not usable;
// construct one with New.
type Allocator struct {
	pages  []hal.Page
	refcnt []uint16
}

// New creates an allocator over nr physical frames, all initially free.
// nr is the moral equivalent of NR_FRAMES = UMEM_SIZE / PAGE_SIZE.
func New(nr int) *Allocator {
	if nr <= 0 {
		panic("frame: pool size must be positive")
	}
	return &Allocator{
		pages:  make([]hal.Page, nr),
		refcnt: make([]uint16, nr),
	}
}

// Len reports the number of frames the allocator manages.
func (a *Allocator) Len() int {
	return len(a.pages)
}

// Alloc finds the first free frame (refcount 0), marks it exclusively
// owned (refcount 1), and returns its number. It returns ErrExhausted,
// and logs a diagnostic, if no frame is free; frame 0 is never returned.
func (a *Allocator) Alloc() (Number, error) {
	for i := range a.refcnt {
		if a.refcnt[i] == 0 {
			a.refcnt[i] = 1
			return Number(i + 1), nil
		}
	}
	klog.Log.WithField("pool_size", len(a.pages)).Warn("frame: pool exhausted")
	return 0, ErrExhausted
}

// Free decrements fn's refcount. Freeing a frame already at refcount 0 is
// a fatal invariant violation and panics the kernel, matching
// frame_free's kpanic("mm: double free on page frame").
func (a *Allocator) Free(fn Number) {
	i := a.index(fn)
	if a.refcnt[i] == 0 {
		klog.Log.WithField("frame", fn).Error("frame: double free of page frame")
		panic("frame: double free of page frame")
	}
	a.refcnt[i]--
}

// Share increments fn's refcount, used when a PTE referencing fn is
// duplicated into another address space (frame_share).
func (a *Allocator) Share(fn Number) {
	a.refcnt[a.index(fn)]++
}

// IsShared reports whether fn's refcount is greater than 1
// (frame_is_shared): frame_is_shared ⇔ refcount > 1.
func (a *Allocator) IsShared(fn Number) bool {
	return a.refcnt[a.index(fn)] > 1
}

// Refcount returns fn's current reference count, for tests and invariant
// checks.
func (a *Allocator) Refcount(fn Number) uint16 {
	return a.refcnt[a.index(fn)]
}

// Page returns the backing storage for fn.
func (a *Allocator) Page(fn Number) *hal.Page {
	return &a.pages[a.index(fn)]
}

func (a *Allocator) index(fn Number) int {
	if fn == 0 || int(fn) > len(a.pages) {
		panic("frame: invalid frame number")
	}
	return int(fn) - 1
}
