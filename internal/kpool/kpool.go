// Package kpool implements the kernel page pool (KPP): a fixed-size array
// of kernel-mapped pages handed out to page directories, page tables, and
// kernel stacks, tracked by per-page reference count.
//
// Grounded on getkpg/putkpg in original_source/src/kernel/mm/paging.c and
// generalized the way mit-pdos-biscuit's mem.Physmem_t generalizes the same
// idea (a slice of reference counts alongside a slice of backing pages),
// simplified back down to the single first-fit linear scan spec.md
// mandates — this repo has no per-CPU free lists, because it targets a
// single non-preemptive CPU, not biscuit's SMP target.
package kpool

import (
	"github.com/pkg/errors"

	"github.com/Viniciusilva/nanvix/internal/hal"
	"github.com/Viniciusilva/nanvix/internal/klog"
)

// ErrExhausted is returned by Acquire when every slot in the pool is live.
var ErrExhausted = errors.New("kpool: pool exhausted")

// Pool is a fixed-size kernel page pool. The zero value is not usable;
// construct one with New.
type Pool struct {
	pages  []hal.Page
	refcnt []uint16
}

// New creates a pool of nr kernel pages, all initially free. nr is the
// moral equivalent of NR_KPAGES = KPOOL_SIZE / PAGE_SIZE.
func New(nr int) *Pool {
	if nr <= 0 {
		panic("kpool: pool size must be positive")
	}
	return &Pool{
		pages:  make([]hal.Page, nr),
		refcnt: make([]uint16, nr),
	}
}

// Len reports the number of slots in the pool.
func (p *Pool) Len() int {
	return len(p.pages)
}

// Acquire scans for the first free slot (refcount 0), marks it live
// (refcount 1), optionally zeroes it, and returns a pointer to the backing
// page. It returns ErrExhausted, and logs a diagnostic, if the pool is
// full — callers must handle the error; Acquire never panics on
// exhaustion, per spec.md §4.1.
func (p *Pool) Acquire(clean bool) (*hal.Page, error) {
	for i := range p.refcnt {
		if p.refcnt[i] == 0 {
			p.refcnt[i] = 1
			pg := &p.pages[i]
			if clean {
				pg.Zero()
			}
			return pg, nil
		}
	}
	klog.Log.WithField("pool_size", len(p.pages)).Warn("kpool: pool overflow")
	return nil, ErrExhausted
}

// Release decrements the refcount of the slot backing kpg. Releasing an
// already-free slot is a fatal invariant violation: it panics the kernel,
// matching putkpg's kpanic("mm: double free on kernel page").
func (p *Pool) Release(kpg *hal.Page) {
	i := p.indexOf(kpg)
	if p.refcnt[i] == 0 {
		klog.Log.WithField("slot", i).Error("kpool: double release of kernel page")
		panic("kpool: double release of kernel page")
	}
	p.refcnt[i]--
}

// Refcount returns the current reference count of the slot backing kpg,
// for tests and invariant checks.
func (p *Pool) Refcount(kpg *hal.Page) uint16 {
	return p.refcnt[p.indexOf(kpg)]
}

func (p *Pool) indexOf(kpg *hal.Page) int {
	for i := range p.pages {
		if &p.pages[i] == kpg {
			return i
		}
	}
	panic("kpool: address does not belong to this pool")
}
