package paging

import (
	"github.com/Viniciusilva/nanvix/internal/frame"
	"github.com/Viniciusilva/nanvix/internal/hal"
)

// PTE is a page table entry. Bit layout mirrors struct pte's accessors in
// original_source/src/kernel/mm/paging.c one-for-one (pte_is_present,
// pte_write_set, ...); the frame number occupies the bits above the flags,
// the same shape mem.Pa_t/PTE_ADDR gives entries in mit-pdos-biscuit.
type PTE uint64

const (
	pteFlagPresent PTE = 1 << iota
	pteFlagWrite
	pteFlagUser
	pteFlagCOW
	pteFlagZero
	pteFlagFill

	pteFrameShift = 12
)

// Present reports the P bit.
func (p PTE) Present() bool { return p&pteFlagPresent != 0 }

// Write reports the W bit.
func (p PTE) Write() bool { return p&pteFlagWrite != 0 }

// User reports the U bit.
func (p PTE) User() bool { return p&pteFlagUser != 0 }

// COW reports our software-defined copy-on-write bit.
func (p PTE) COW() bool { return p&pteFlagCOW != 0 }

// FillMark reports the demand-fill software bit.
func (p PTE) FillMark() bool { return p&pteFlagFill != 0 }

// ZeroMark reports the demand-zero software bit.
func (p PTE) ZeroMark() bool { return p&pteFlagZero != 0 }

// Frame extracts the frame number the entry points at. Only meaningful
// when Present is set.
func (p PTE) Frame() frame.Number { return frame.Number(p >> pteFrameShift) }

// IsClear reports pte_is_clear: present, fill, and zero are all unset.
func (p PTE) IsClear() bool {
	return !p.Present() && !p.FillMark() && !p.ZeroMark()
}

// SetPresent sets or clears the P bit.
func (p *PTE) SetPresent(v bool) { p.setFlag(pteFlagPresent, v) }

// SetWrite sets or clears the W bit.
func (p *PTE) SetWrite(v bool) { p.setFlag(pteFlagWrite, v) }

// SetUser sets or clears the U bit.
func (p *PTE) SetUser(v bool) { p.setFlag(pteFlagUser, v) }

// SetCOW sets or clears the COW bit.
func (p *PTE) SetCOW(v bool) { p.setFlag(pteFlagCOW, v) }

// SetFillMark sets or clears the demand-fill bit.
func (p *PTE) SetFillMark(v bool) { p.setFlag(pteFlagFill, v) }

// SetZeroMark sets or clears the demand-zero bit.
func (p *PTE) SetZeroMark(v bool) { p.setFlag(pteFlagZero, v) }

// SetFrame overwrites the entry's frame number, leaving flag bits intact.
func (p *PTE) SetFrame(fn frame.Number) {
	frameMask := ^PTE(0)
	frameMask <<= pteFrameShift
	*p = (*p &^ frameMask) | PTE(fn)<<pteFrameShift
}

func (p *PTE) setFlag(bit PTE, v bool) {
	if v {
		*p |= bit
	} else {
		*p &^= bit
	}
}

// initPresent installs a fresh present mapping (pte_init): present set,
// cow/zero/fill cleared, user always set, write as requested.
func (p *PTE) initPresent(writable bool) {
	p.SetPresent(true)
	p.SetCOW(false)
	p.SetZeroMark(false)
	p.SetFillMark(false)
	p.SetWrite(writable)
	p.SetUser(true)
}

// copyFlagsFrom copies every flag bit from src into p (pte_copy), leaving
// p's own frame number untouched.
func (p *PTE) copyFlagsFrom(src PTE) {
	p.SetPresent(src.Present())
	p.SetWrite(src.Write())
	p.SetUser(src.User())
	p.SetCOW(src.COW())
	p.SetZeroMark(src.ZeroMark())
	p.SetFillMark(src.FillMark())
}

// PageTable is one level of translation: EntriesPerTable PTEs. Each
// PageTable is backed by exactly one kernel page acquired from the kernel
// page pool (kpg) — the pool tracks that page's lifetime; entries is the
// typed view the paging engine operates on. Real hardware bit-packs PTEs
// directly into the page's bytes; a hosted rewrite gains nothing by
// reproducing that layout, so the two are kept as separate fields of the
// same logical allocation instead.
type PageTable struct {
	kpg     *hal.Page
	entries [hal.EntriesPerTable]PTE
}

// PDE is a page directory entry: whether a page table is mapped here, and
// if so, which one. spec.md's data model gives PDEs exactly two states —
// clear, or present/write/user all set — so there is no flag combination
// to lose by collapsing them into "is a table mapped."
type PDE struct {
	table *PageTable
}

// IsClear reports pde_is_clear: no table mapped here.
func (d PDE) IsClear() bool { return d.table == nil }

// Table returns the mapped page table, or nil if the slot is clear.
func (d PDE) Table() *PageTable { return d.table }

// init installs pde (pde_init): points the slot at table.
func (d *PDE) init(table *PageTable) {
	d.table = table
}

// clearEntry resets the slot to the clear state (pde_clear).
func (d *PDE) clearEntry() {
	d.table = nil
}

// PageDirectory is the top-level translation structure for one address
// space: EntriesPerTable PDEs, backed by one kernel page from the kernel
// page pool.
type PageDirectory struct {
	kpg     *hal.Page
	entries [hal.EntriesPerTable]PDE
}
