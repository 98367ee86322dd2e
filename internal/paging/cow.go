package paging

// CowEnable marks pte copy-on-write: cleared for writing and flagged COW,
// so the next write through it takes a protection fault (cow_enable).
// pte must currently be present; marking a non-present entry COW is a
// fatal invariant violation.
func CowEnable(pte *PTE) {
	if !pte.Present() {
		panic("paging: cow_enable on non-present page")
	}
	pte.SetWrite(false)
	pte.SetCOW(true)
}

// CowEnabled reports whether pte is marked copy-on-write (cow_enabled).
func CowEnabled(pte PTE) bool {
	return pte.Present() && pte.COW()
}

// CowDisable resolves a copy-on-write fault on pte (cow_disable): if the
// underlying frame is still shared with another address space, a private
// copy is allocated via cpypg and the shared frame is released; if pte
// already holds the only reference, the frame is simply reclaimed in
// place by flipping the COW bit off and write back on. Either way the
// result is a present, writable, non-COW mapping.
func (e *Engine) CowDisable(pte *PTE) error {
	if !CowEnabled(*pte) {
		panic("paging: cow_disable on non-cow page")
	}

	fn := pte.Frame()
	if e.FA.IsShared(fn) {
		var fresh PTE
		if err := e.cpypg(&fresh, *pte); err != nil {
			return err
		}
		e.FA.Free(fn)
		fresh.SetWrite(true)
		fresh.SetCOW(false)
		*pte = fresh
	} else {
		pte.SetCOW(false)
		pte.SetWrite(true)
	}
	e.TLB.Flush()
	return nil
}

// LinkUserPage installs dst as the child-side counterpart of src when an
// address space is cloned, following the region subsystem's linking
// policy for the four kinds of user PTE (linkupg):
//   - clear: dst is left untouched — nothing to link;
//   - demand-fill or demand-zero: dst becomes a byte-for-byte copy of
//     src (the mark survives; no frame exists yet to share);
//   - present and writable: src is switched to copy-on-write first
//     (since the parent must not keep writing the frame unshared),
//     then both src and dst share it, and dst's copy of the flags is
//     marked COW too;
//   - present and read-only: no write can occur through either side,
//     so the frame is simply shared with no COW bookkeeping needed.
//
// Any other combination of present/fill/zero bits is a fatal invariant
// violation.
func (e *Engine) LinkUserPage(dst, src *PTE) {
	switch {
	case src.IsClear():
		return

	case !src.Present() && (src.FillMark() || src.ZeroMark()):
		*dst = *src

	case src.Present() && src.Write():
		CowEnable(src)
		e.FA.Share(src.Frame())
		*dst = *src

	case src.Present() && !src.Write():
		e.FA.Share(src.Frame())
		*dst = *src

	default:
		panic("paging: linkupg on invalid page state")
	}
}
