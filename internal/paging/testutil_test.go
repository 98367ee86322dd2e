package paging

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/Viniciusilva/nanvix/internal/frame"
	"github.com/Viniciusilva/nanvix/internal/hal"
	"github.com/Viniciusilva/nanvix/internal/kpool"
)

// fakeRegion is a minimal Region for tests: a fixed mode and file
// binding, with an isStack flag the fake RegionSet consults.
type fakeRegion struct {
	mode    Mode
	file    FileBinding
	isStack bool
}

func (r *fakeRegion) Mode() Mode        { return r.mode }
func (r *fakeRegion) File() FileBinding { return r.file }

// fakeRegionSet is a table-driven stand-in for the region subsystem: a
// flat list of [lo, hi) ranges, each owning one fakeRegion. GrowReg
// extends the owning entry's low bound downward, mirroring a stack
// region growing towards lower addresses.
type fakeRegionSet struct {
	entries   []regionEntry
	locked    map[*fakeRegion]bool
	growErr   error
	growCalls int
}

type regionEntry struct {
	lo, hi hal.Addr
	reg    *fakeRegion
}

func (rs *fakeRegionSet) add(lo, hi hal.Addr, reg *fakeRegion) {
	rs.entries = append(rs.entries, regionEntry{lo: lo, hi: hi, reg: reg})
}

func (rs *fakeRegionSet) FindReg(proc *Proc, addr hal.Addr) (Region, bool) {
	for _, e := range rs.entries {
		if addr >= e.lo && addr < e.hi {
			return e.reg, true
		}
	}
	return nil, false
}

func (rs *fakeRegionSet) LockReg(reg Region) {
	if rs.locked == nil {
		rs.locked = make(map[*fakeRegion]bool)
	}
	rs.locked[reg.(*fakeRegion)] = true
}

func (rs *fakeRegionSet) UnlockReg(reg Region) {
	delete(rs.locked, reg.(*fakeRegion))
}

func (rs *fakeRegionSet) IsStack(proc *Proc, reg Region) bool {
	return reg.(*fakeRegion).isStack
}

func (rs *fakeRegionSet) GrowReg(proc *Proc, reg Region, n int) error {
	rs.growCalls++
	if rs.growErr != nil {
		return rs.growErr
	}
	fr := reg.(*fakeRegion)
	for i := range rs.entries {
		if rs.entries[i].reg == fr {
			rs.entries[i].lo -= hal.Addr(n)
		}
	}
	return nil
}

// fakeFile is an opaque inode handle backed by an in-memory byte slice.
type fakeFile struct {
	data []byte
}

// fakeFileBackend serves ReadAt out of a fakeFile's in-memory bytes. A
// read entirely past the end of the data succeeds with n=0, matching
// readpg's tolerance for a short (BSS-tail) read.
type fakeFileBackend struct {
	failing bool
}

func (fb *fakeFileBackend) ReadAt(inode File, buf []byte, off int64) (int, error) {
	if fb.failing {
		return 0, errors.New("fake: read failed")
	}
	f := inode.(*fakeFile)
	if off >= int64(len(f.data)) {
		return 0, nil
	}
	return copy(buf, f.data[off:]), nil
}

// testEngine wires a small Engine plus a fake region set and file
// backend, with a single running Proc carrying an empty page directory.
func testEngine(t *testing.T, kppSize, faSize int) (*Engine, *fakeRegionSet, *fakeFileBackend) {
	t.Helper()
	kpp := kpool.New(kppSize)
	fa := frame.New(faSize)
	rs := &fakeRegionSet{}
	fb := &fakeFileBackend{}
	eng := New(kpp, fa, rs, fb)

	dirKpg, err := kpp.Acquire(true)
	if err != nil {
		t.Fatalf("acquiring root page directory: %v", err)
	}
	eng.Current = &Proc{PgDir: &PageDirectory{kpg: dirKpg}}
	return eng, rs, fb
}

// mapTable installs a fresh page table covering va into proc's directory.
func mapTable(t *testing.T, eng *Engine, proc *Proc, va hal.Addr) {
	t.Helper()
	kpg, err := eng.KPP.Acquire(true)
	if err != nil {
		t.Fatalf("acquiring page table: %v", err)
	}
	eng.MapPageTable(proc, va, NewPageTable(kpg))
}

// presentPTE builds a present PTE for use as test fixture data, bypassing
// the engine (no frame is actually allocated).
func presentPTE(fn frame.Number, writable bool) PTE {
	var p PTE
	p.initPresent(writable)
	p.SetFrame(fn)
	return p
}
