// Package hal is the hardware-abstraction boundary the virtual memory core
// is built against: page-sized storage, the constants that describe the
// kernel's virtual memory layout, and the handful of primitives (physical
// copy, TLB invalidation, kernel-context rebase) that a real machine would
// implement in assembly.
//
// Everything here is a stand-in for what mit-pdos-biscuit gets from its
// runtime fork (runtime.TLBflush, runtime.Kpmap, direct-mapped physical
// memory) and what the Nanvix C original gets from arch/i386/hal — the rest
// of this module never pokes at real hardware, it only calls through this
// package.
package hal

import "unsafe"

// PageShift/PageSize/PageMask describe the machine's page granularity.
const (
	PageShift = 12
	PageSize  = 1 << PageShift
	PageMask  = ^Addr(PageSize - 1)
)

// Layout of the address space the kernel half of every page directory
// mirrors. Values are arbitrary but self-consistent, in the spirit of
// xv6/Nanvix's memlayout.h: they only need to divide evenly by PageSize and
// stay out of each other's way.
const (
	KBaseVirt  Addr = 0xC0000000 // start of the kernel's own virtual range
	KPoolVirt  Addr = 0xF0000000 // kernel page pool's virtual window
	InitrdVirt Addr = 0xFE000000 // boot-time initrd image
	UBasePhys  Addr = 0x00100000 // first physical frame handed to user space

	KStackSize = 8 * PageSize
)

// Addr is a machine address (virtual or physical depending on context),
// mirroring mem.Pa_t in mit-pdos-biscuit.
type Addr uintptr

// EntriesPerTable is the number of PTEs in a page table (and PDEs in a
// page directory). This repo's PageTable/PageDirectory do not overlay a
// hal.Page's raw bytes (see DESIGN.md), so nothing forces this to match
// PageSize/sizeof(PTE); it is pinned to 1024 instead, matching the
// classic x86-32/xv6/Nanvix two-level split (10 bits table index + 10
// bits directory index + 12 bits page offset = the full 32-bit address
// space the KBaseVirt/KPoolVirt/InitrdVirt constants above assume).
const EntriesPerTable = 1024

const tableIndexBits = 10 // log2(EntriesPerTable)

// PageIndex returns the page-table index (PG(addr) in the Nanvix source)
// of a virtual address.
func PageIndex(va Addr) uint {
	return uint(va>>PageShift) & (EntriesPerTable - 1)
}

// PageDirIndex returns the page-directory index (PGTAB(addr)) of a virtual
// address.
func PageDirIndex(va Addr) uint {
	return uint(va>>(PageShift+tableIndexBits)) & (EntriesPerTable - 1)
}

// PageAlignDown truncates an address to its containing page.
func PageAlignDown(va Addr) Addr {
	return va &^ (PageSize - 1)
}

// Page is one page-sized, page-aligned unit of storage. Both kernel pages
// (KPg) and user frames are backed by a Page.
type Page [PageSize]byte

// Zero clears the page in place.
func (p *Page) Zero() {
	for i := range p {
		p[i] = 0
	}
}

// PhysCopy copies exactly one page's worth of bytes from src to dst. It
// stands in for physcpy(dst_pa, src_pa, len) in spec.md: the HAL is trusted
// to move bytes between two physical pages without the MM core knowing how
// the machine represents "physical" (here, both are just Go pages).
func PhysCopy(dst, src *Page) {
	*dst = *src
}

// AsPointer exposes a page's zeroth byte as an unsafe.Pointer for callers
// that need to hand a page to code expecting a raw address (mirrors the
// C source treating pages as addr_t and mit-pdos-biscuit's Pg2bytes).
func AsPointer(p *Page) unsafe.Pointer {
	return unsafe.Pointer(p)
}

// PhysAddr fabricates a stand-in "physical address" for a page: its
// runtime pointer value. Nothing in this repo dereferences the result as
// real memory — it exists only so a field like Proc.CR3 has something
// address-shaped to hold and compare, the same role ADDR(pgdir) plays in
// the C source and Dmap_v2p plays in mit-pdos-biscuit.
func PhysAddr(p *Page) Addr {
	return Addr(uintptr(AsPointer(p)))
}

// TLB models the CPU's translation-lookaside buffer as far as this core
// needs: a single global flush counter, valid under the single-CPU,
// non-preemptive discipline spec.md §5 assumes. No locking: MM operations
// are assumed to run with kernel preemption disabled across table
// mutation, exactly as the source's tlb_flush() takes no lock.
type TLB struct {
	flushes uint64
}

// Flush invalidates all cached translations, mirroring tlb_flush().
func (t *TLB) Flush() {
	t.flushes++
}

// Flushes reports how many times Flush has been called. Test-only
// observability hook; production code never reads it.
func (t *TLB) Flushes() uint64 {
	return t.flushes
}
