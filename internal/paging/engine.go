// Package paging implements the paging/fault engine (PE): per-process page
// directories, PTE manipulation, address-space clone/destroy, demand-fill
// and demand-zero page installation, copy-on-write, and the two fault
// handlers (vfault, pfault).
//
// Grounded on original_source/src/kernel/mm/paging.c (the literal C this
// package reproduces the semantics of) and mit-pdos-biscuit's vm/as.go,
// vm/pmap.go, and proc/proc.go (Vm_fork, Sys_pgfault, Ptefork) for the Go
// idiom: an engine value holding its dependencies instead of C's file-
// scope globals and curr_proc.
package paging

import (
	"github.com/Viniciusilva/nanvix/internal/frame"
	"github.com/Viniciusilva/nanvix/internal/hal"
	"github.com/Viniciusilva/nanvix/internal/klog"
	"github.com/Viniciusilva/nanvix/internal/kpool"
)

// Engine ties the paging algorithms to the kernel page pool, frame
// allocator, TLB, and the region/filesystem collaborators it consumes.
// One Engine exists per running kernel, matching the single set of
// kpages[]/frames[] arrays and the single curr_proc the C source assumes.
type Engine struct {
	KPP    *kpool.Pool
	FA     *frame.Allocator
	TLB    *hal.TLB
	Region RegionSet
	FS     FileBackend

	// Current is the running process, updated by the scheduler on every
	// context switch (spec.md §6: "consumes ... curr_proc"). The paging
	// engine only ever reads it.
	Current *Proc
}

// New constructs an Engine over the given kernel page pool, frame
// allocator, and external collaborators.
func New(kpp *kpool.Pool, fa *frame.Allocator, region RegionSet, fs FileBackend) *Engine {
	return &Engine{
		KPP:    kpp,
		FA:     fa,
		TLB:    &hal.TLB{},
		Region: region,
		FS:     fs,
	}
}

// getPDE returns the PDE at index PGTAB(va) of proc's directory
// (getpde).
func getPDE(proc *Proc, va hal.Addr) *PDE {
	return &proc.PgDir.entries[hal.PageDirIndex(va)]
}

// getPTE dereferences the PDE covering va to locate its page table, then
// returns the PTE at index PG(va) (getpte). The PDE must already be
// mapped — the region subsystem is responsible for calling MapPageTable
// before any fault handler or demand-fill path touches va.
func getPTE(proc *Proc, va hal.Addr) *PTE {
	pde := getPDE(proc, va)
	if pde.IsClear() {
		panic("paging: getpte on address with no page table mapped")
	}
	return &pde.Table().entries[hal.PageIndex(va)]
}

// LookupPTE exposes getpte to the region subsystem: callers that clone or
// tear down a region's mappings (a region clone's linkupg loop, a munmap
// path walking down to freeupg) need the same PTE pointer the fault
// handlers operate on, not a copy of its bits.
func LookupPTE(proc *Proc, va hal.Addr) *PTE {
	return getPTE(proc, va)
}

// MapPageTable installs a kernel-allocated page table into proc's
// directory at the slot indexed by va (mappgtab). The slot must currently
// be clear; mapping into a busy slot is a fatal invariant violation.
// Flushes the TLB iff proc is the currently running process.
func (e *Engine) MapPageTable(proc *Proc, va hal.Addr, table *PageTable) {
	pde := getPDE(proc, va)
	if !pde.IsClear() {
		klog.Log.WithField("va", va).Error("paging: mapping into busy page directory entry")
		panic("paging: busy PDE")
	}
	pde.init(table)
	if proc == e.Current {
		e.TLB.Flush()
	}
}

// UnmapPageTable removes the page table mapped into proc's directory at
// the slot indexed by va (umappgtab). spec.md §9 resolves the source's
// inverted condition: it is a fatal invariant violation to unmap a slot
// that is already clear — there is nothing there to unmap.
func (e *Engine) UnmapPageTable(proc *Proc, va hal.Addr) {
	pde := getPDE(proc, va)
	if pde.IsClear() {
		klog.Log.WithField("va", va).Error("paging: unmapping already-clear page directory entry")
		panic("paging: PDE already clear")
	}
	pde.clearEntry()
	if proc == e.Current {
		e.TLB.Flush()
	}
}
