package paging

import "github.com/Viniciusilva/nanvix/internal/hal"

// VFault resolves a validity fault: a fault on a virtual address with no
// present mapping (vfault). It locates the covering region, probes one
// page past addr for the stack-growth case (a fault just below the
// stack's current floor grows the stack before retrying), then resolves
// the PTE according to its demand mark. Returns ErrFault if addr is
// covered by no region and is not a valid stack-growth probe.
func (e *Engine) VFault(addr hal.Addr) error {
	reg, ok := e.Region.FindReg(e.Current, addr)
	if !ok {
		probe := addr + hal.PageSize
		growReg, growOK := e.Region.FindReg(e.Current, probe)
		if !growOK || !e.Region.IsStack(e.Current, growReg) {
			return ErrFault
		}
		if err := e.Region.GrowReg(e.Current, growReg, hal.PageSize); err != nil {
			return ErrNoMem
		}
		reg, ok = e.Region.FindReg(e.Current, addr)
		if !ok {
			return ErrFault
		}
	}

	e.Region.LockReg(reg)
	defer e.Region.UnlockReg(reg)

	pte := getPTE(e.Current, hal.PageAlignDown(addr))
	switch {
	case pte.FillMark():
		return e.readPage(reg, addr)
	case pte.ZeroMark():
		return e.allocUserPage(addr, reg.Mode()&MayWrite != 0)
	default:
		return ErrFault
	}
}

// PFault resolves a protection fault: a fault on a virtual address whose
// mapping is present but forbids the attempted access (pfault). The only
// protection fault this core models is a write to a copy-on-write page;
// anything else is an unresolvable fault.
func (e *Engine) PFault(addr hal.Addr) error {
	reg, ok := e.Region.FindReg(e.Current, addr)
	if !ok {
		return ErrFault
	}

	e.Region.LockReg(reg)
	defer e.Region.UnlockReg(reg)

	pte := getPTE(e.Current, hal.PageAlignDown(addr))
	if !CowEnabled(*pte) {
		return ErrFault
	}
	return e.CowDisable(pte)
}
