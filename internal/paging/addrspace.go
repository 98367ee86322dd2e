package paging

import "github.com/Viniciusilva/nanvix/internal/hal"

// NewPageDirectory wraps a kernel page pool allocation as an empty page
// directory, ready to be installed as a Proc's PgDir. Only a process's
// first address space is built this way; every later one comes from
// CreateAddrSpace.
func NewPageDirectory(kpg *hal.Page) *PageDirectory {
	return &PageDirectory{kpg: kpg}
}

// NewPageTable wraps a kernel page pool allocation as an empty page table,
// ready to be installed with MapPageTable. The region subsystem — the
// only caller that ever creates page tables — is expected to call
// KPP.Acquire itself and hand the result here, exactly as the source
// hands mappgtab a raw kpg.
func NewPageTable(kpg *hal.Page) *PageTable {
	return &PageTable{kpg: kpg}
}

// KPage returns the kernel page pool allocation backing t, for release
// once the table is unmapped.
func (t *PageTable) KPage() *hal.Page { return t.kpg }

// KPage returns the kernel page pool allocation backing a page
// directory, for release in DestroyAddrSpace.
func (d *PageDirectory) KPage() *hal.Page { return d.kpg }

// kernelPDESlots are the page directory indices CreateAddrSpace clones verbatim
// from the parent: slot 0 (low-memory identity map) plus the slots
// covering KBASE_VIRT, KPOOL_VIRT, and INITRD_VIRT. Every other slot
// starts clear — user mappings are the region subsystem's job via
// linkupg, not CreateAddrSpace's.
func kernelPDESlots() [4]uint {
	return [4]uint{
		0,
		hal.PageDirIndex(hal.KBaseVirt),
		hal.PageDirIndex(hal.KPoolVirt),
		hal.PageDirIndex(hal.InitrdVirt),
	}
}

// CreateAddrSpace clones the kernel half of e.Current's address space into
// newProc (crtpgdir): a fresh page directory carrying only the kernel PDE
// slots, and a copy of the current kernel stack with its saved stack
// pointer (and, if the current process is itself running in kernel mode,
// its saved frame pointer) rebased onto the new stack. User mappings are
// cloned separately by the region subsystem via LinkUserPage.
//
// On failure, any kernel page pool allocation already made is released
// before returning ErrNoMem, and newProc is left untouched.
func (e *Engine) CreateAddrSpace(newProc *Proc) error {
	dirKpg, err := e.KPP.Acquire(true)
	if err != nil {
		return ErrNoMem
	}
	stackKpg, err := e.KPP.Acquire(false)
	if err != nil {
		e.KPP.Release(dirKpg)
		return ErrNoMem
	}

	dir := &PageDirectory{kpg: dirKpg}
	cur := e.Current
	for _, slot := range kernelPDESlots() {
		dir.entries[slot] = cur.PgDir.entries[slot]
	}

	hal.PhysCopy(stackKpg, cur.KStack)
	newKesp := hal.RebaseKernelContext(stackKpg, cur.KStack, cur.KEsp, cur.KernelRunning)

	newProc.PgDir = dir
	newProc.KStack = stackKpg
	newProc.KEsp = newKesp
	newProc.CR3 = hal.PhysAddr(dirKpg)
	return nil
}

// DestroyAddrSpace releases proc's kernel stack and page directory
// back to the kernel page pool (dstrypgdir). The caller guarantees every
// user PTE has already been freed via FreeUserPage.
func (e *Engine) DestroyAddrSpace(proc *Proc) {
	e.KPP.Release(proc.KStack)
	e.KPP.Release(proc.PgDir.kpg)
}
