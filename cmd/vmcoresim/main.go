// vmcoresim boots a standalone instance of the virtual memory core: a
// kernel page pool, a user frame allocator, and a paging engine wired
// together exactly as the kernel's own boot sequence would, then drives
// it through a fork-and-write-to-a-COW-page scenario end to end.
//
// Grounded on mem.Phys_init's boot-time pool reservation
// (biscuit/src/mem/mem.go) for the startup log shape, and on
// proc.Vm_fork/Copyas (biscuit/src/proc/proc.go) for the fork sequence
// this walks through by hand.
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Viniciusilva/nanvix/internal/frame"
	"github.com/Viniciusilva/nanvix/internal/hal"
	"github.com/Viniciusilva/nanvix/internal/klog"
	"github.com/Viniciusilva/nanvix/internal/kpool"
	"github.com/Viniciusilva/nanvix/internal/paging"
)

const (
	kpoolPages = 64
	framePages = 256
)

// demoRegion is a single-region RegionSet standing in for the real
// region subsystem: every address in [lo, hi) belongs to it, nothing
// else exists. Good enough to drive a fault handler, not a filesystem.
type demoRegion struct {
	lo, hi hal.Addr
	mode   paging.Mode
}

func (r *demoRegion) Mode() paging.Mode        { return r.mode }
func (r *demoRegion) File() paging.FileBinding { return paging.FileBinding{} }

func (r *demoRegion) FindReg(_ *paging.Proc, addr hal.Addr) (paging.Region, bool) {
	if addr >= r.lo && addr < r.hi {
		return r, true
	}
	return nil, false
}

func (r *demoRegion) LockReg(paging.Region)   {}
func (r *demoRegion) UnlockReg(paging.Region) {}
func (r *demoRegion) IsStack(*paging.Proc, paging.Region) bool {
	return false
}

func (r *demoRegion) GrowReg(*paging.Proc, paging.Region, int) error {
	return paging.ErrFault
}

// noFiles rejects every read: this demo never marks a page demand-fill.
type noFiles struct{}

func (noFiles) ReadAt(paging.File, []byte, int64) (int, error) { return 0, paging.ErrFault }

func main() {
	klog.Log.SetOutput(os.Stdout)

	kpp := kpool.New(kpoolPages)
	fa := frame.New(framePages)
	klog.Log.WithFields(logrus.Fields{
		"kpool_pages": kpp.Len(),
		"frame_pages": fa.Len(),
	}).Info("vmcoresim: reserved page pools")

	heap := &demoRegion{lo: 0x08000000, hi: 0x08000000 + hal.PageSize, mode: paging.MayWrite}
	engine := paging.New(kpp, fa, heap, noFiles{})

	dirKpg, err := kpp.Acquire(true)
	if err != nil {
		klog.Log.WithError(err).Fatal("vmcoresim: acquiring root page directory")
	}
	parentStackKpg, err := kpp.Acquire(true)
	if err != nil {
		klog.Log.WithError(err).Fatal("vmcoresim: acquiring root kernel stack")
	}
	parent := &paging.Proc{
		PgDir:  paging.NewPageDirectory(dirKpg),
		KStack: parentStackKpg,
		KEsp:   hal.PhysAddr(parentStackKpg) + hal.KStackSize,
	}
	engine.Current = parent

	tableKpg, err := kpp.Acquire(true)
	if err != nil {
		klog.Log.WithError(err).Fatal("vmcoresim: acquiring heap page table")
	}
	engine.MapPageTable(parent, heap.lo, paging.NewPageTable(tableKpg))
	paging.MarkPage(paging.LookupPTE(parent, heap.lo), paging.DemandZero)

	klog.Log.WithField("va", heap.lo).Info("vmcoresim: faulting in a demand-zero page")
	if err := engine.VFault(heap.lo); err != nil {
		klog.Log.WithError(err).Fatal("vmcoresim: validity fault")
	}

	child := &paging.Proc{}
	if err := engine.CreateAddrSpace(child); err != nil {
		klog.Log.WithError(err).Fatal("vmcoresim: cloning address space")
	}
	childTableKpg, err := kpp.Acquire(true)
	if err != nil {
		klog.Log.WithError(err).Fatal("vmcoresim: acquiring child's heap page table")
	}
	engine.MapPageTable(child, heap.lo, paging.NewPageTable(childTableKpg))
	engine.LinkUserPage(paging.LookupPTE(child, heap.lo), paging.LookupPTE(parent, heap.lo))

	klog.Log.WithField("frame", paging.LookupPTE(parent, heap.lo).Frame()).
		Info("vmcoresim: fork complete, heap page now copy-on-write")

	klog.Log.Info("vmcoresim: child writes its heap page, taking a protection fault")
	engine.Current = child
	if err := engine.PFault(heap.lo); err != nil {
		klog.Log.WithError(err).Fatal("vmcoresim: protection fault")
	}

	klog.Log.WithFields(logrus.Fields{
		"parent_frame": paging.LookupPTE(parent, heap.lo).Frame(),
		"child_frame":  paging.LookupPTE(child, heap.lo).Frame(),
	}).Info("vmcoresim: copy-on-write resolved, parent and child now hold private frames")
}
