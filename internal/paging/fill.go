package paging

import "github.com/Viniciusilva/nanvix/internal/hal"

// allocUserPage installs a fresh, zero-filled present mapping for va in
// the current process (allocupg): allocates a frame, initializes the PTE
// as present|user with the given writability, and zeroes the page
// through the newly valid mapping. va is masked down to its containing
// page. The PDE covering va must already be mapped by the caller (the
// region subsystem, via MapPageTable) — this only ever touches the leaf
// PTE.
func (e *Engine) allocUserPage(va hal.Addr, writable bool) error {
	fn, err := e.FA.Alloc()
	if err != nil {
		return ErrNoMem
	}

	va = hal.PageAlignDown(va)
	pte := getPTE(e.Current, va)
	pte.initPresent(writable)
	pte.SetFrame(fn)
	e.TLB.Flush()

	e.FA.Page(fn).Zero()
	return nil
}

// readPage populates va by reading one page from region's backing file
// (readpg): allocates and maps the page via allocUserPage, then reads
// PAGE_SIZE bytes starting at the region's file offset for this page. A
// short (but non-negative) read is success, per spec.md §4.3's note —
// the untouched tail of the page stays zero, as allocUserPage left it. A
// negative-equivalent (error) read releases the page and fails.
func (e *Engine) readPage(reg Region, va hal.Addr) error {
	mode := reg.Mode()
	if err := e.allocUserPage(va, mode&MayWrite != 0); err != nil {
		return err
	}

	binding := reg.File()
	off := binding.Off + int64(hal.PageIndex(va))<<hal.PageShift

	pte := getPTE(e.Current, hal.PageAlignDown(va))
	buf := e.FA.Page(pte.Frame())[:]
	if _, err := e.FS.ReadAt(binding.Inode, buf, off); err != nil {
		e.FreeUserPage(pte)
		return ErrNoMem
	}
	return nil
}

// cpypg allocates a new frame, copies src's flags into dst, points dst at
// the new frame, and physically copies src's page content into it
// (cpypg). Used only by CowDisable when a copy-on-write frame must be
// privatized.
func (e *Engine) cpypg(dst *PTE, src PTE) error {
	fn, err := e.FA.Alloc()
	if err != nil {
		return ErrNoMem
	}
	dst.copyFlagsFrom(src)
	dst.SetFrame(fn)
	hal.PhysCopy(e.FA.Page(fn), e.FA.Page(src.Frame()))
	return nil
}

// FreeUserPage releases pte's resources and clears it (freeupg):
//   - a clear PTE is a no-op;
//   - a present PTE frees its frame, then clears;
//   - a non-present demand-fill or demand-zero PTE just clears (no
//     frame to free);
//   - any other combination is a fatal invariant violation.
//
// Every mutating path flushes the TLB, since freeing a mapping the
// current process holds must not leave a stale translation cached.
func (e *Engine) FreeUserPage(pte *PTE) {
	if pte.IsClear() {
		return
	}
	if pte.Present() {
		e.FA.Free(pte.Frame())
		*pte = 0
		e.TLB.Flush()
		return
	}
	if pte.FillMark() || pte.ZeroMark() {
		*pte = 0
		e.TLB.Flush()
		return
	}
	panic("paging: freeing invalid user page")
}

// DemandMark is the mark value passed to MarkPage.
type DemandMark int

const (
	// DemandFill marks a PTE to be populated from a region's backing
	// file on first access (PAGE_FILL).
	DemandFill DemandMark = iota
	// DemandZero marks a PTE to be zero-filled on first access
	// (PAGE_ZERO).
	DemandZero
)

// MarkPage marks a non-present PTE as demand-fill or demand-zero
// (markpg). Marking a present page is a fatal invariant violation.
func MarkPage(pte *PTE, mark DemandMark) {
	if pte.Present() {
		panic("paging: demand mark on a present page")
	}
	switch mark {
	case DemandFill:
		pte.SetFillMark(true)
		pte.SetZeroMark(false)
	case DemandZero:
		pte.SetFillMark(false)
		pte.SetZeroMark(true)
	default:
		panic("paging: unknown demand mark")
	}
}
