// This file defines the interfaces the paging engine consumes from its
// three external collaborators (spec.md §1's "treated as external
// collaborators": the region subsystem, the filesystem, and — narrowly —
// the piece of the process subsystem not already captured by Proc). None
// of the three is implemented here; mit-pdos-biscuit draws exactly this
// kind of boundary with its fdops.Fdops_i interface (an FS/region
// operation surface implemented elsewhere and only consumed by vm/as.go),
// which this package's Region and FileBackend interfaces follow directly.
package paging

import "github.com/Viniciusilva/nanvix/internal/hal"

// Mode is a region's access-mode bitmask (reg.mode). Only the bit the
// paging engine actually reads, MayWrite, is named; the region subsystem
// owns the rest of the bit space.
type Mode uint

// MayWrite reports whether a region's mapping permits writes
// (MAY_WRITE in the source).
const MayWrite Mode = 1 << 0

// FileBinding is the backing-file metadata a demand-fill region carries:
// reg.file.{inode, off}.
type FileBinding struct {
	Inode File
	Off   int64
}

// Region is the read-only view of a process region the paging engine
// needs: its access mode and (for demand-fill regions) backing file.
// Supplied by findreg/lockreg's caller; the paging engine only ever holds
// a Region between a LockReg/UnlockReg pair.
type Region interface {
	Mode() Mode
	File() FileBinding
}

// RegionSet is the subset of the region subsystem's own interface the
// paging engine calls directly: findreg, lockreg, unlockreg, and growreg.
type RegionSet interface {
	// FindReg returns the region covering addr in proc, or ok=false if
	// none does.
	FindReg(proc *Proc, addr hal.Addr) (reg Region, ok bool)

	// LockReg acquires the region's lock for the duration of a fault
	// handler; the paging engine never accesses reg without holding it.
	LockReg(reg Region)

	// UnlockReg releases a lock taken by LockReg.
	UnlockReg(reg Region)

	// IsStack reports whether reg is the given process's stack region
	// (STACK(proc) in spec.md §4.3's vfault).
	IsStack(proc *Proc, reg Region) bool

	// GrowReg extends reg downward by n bytes (used only for stack
	// growth); returns an error if the region cannot grow.
	GrowReg(proc *Proc, reg Region, n int) error
}

// File is the filesystem's inode handle, opaque to the paging engine.
type File interface{}

// FileBackend is the one filesystem operation the paging engine calls:
// file_read(inode, buf, len, off) → ssize_t, expressed as a Go error
// return instead of a signed-count sentinel. A short (but non-negative)
// read is success per spec.md §4.3's readpg note — the returned n may be
// less than len(buf).
type FileBackend interface {
	ReadAt(inode File, buf []byte, off int64) (n int, err error)
}
