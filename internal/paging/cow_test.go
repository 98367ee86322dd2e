package paging

import "testing"

func TestCowEnableFlipsWriteAndCow(t *testing.T) {
	pte := presentPTE(1, true)
	CowEnable(&pte)
	if pte.Write() {
		t.Fatal("CowEnable must clear the write bit")
	}
	if !pte.COW() {
		t.Fatal("CowEnable must set the COW bit")
	}
	if !CowEnabled(pte) {
		t.Fatal("CowEnabled must report true after CowEnable")
	}
}

func TestCowEnablePanicsOnNonPresent(t *testing.T) {
	var pte PTE
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic enabling COW on a non-present page")
		}
	}()
	CowEnable(&pte)
}

func TestCowDisableSharedFrameCopies(t *testing.T) {
	eng, _, _ := testEngine(t, 4, 4)
	fn, err := eng.FA.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	eng.FA.Page(fn)[0] = 0x7A
	eng.FA.Share(fn)

	pte := presentPTE(fn, true)
	CowEnable(&pte)

	if err := eng.CowDisable(&pte); err != nil {
		t.Fatalf("CowDisable: %v", err)
	}
	if pte.COW() || !pte.Write() || !pte.Present() {
		t.Fatalf("unexpected PTE state after CowDisable: %+v", pte)
	}
	if pte.Frame() == fn {
		t.Fatal("CowDisable on a shared frame must allocate a private copy")
	}
	if eng.FA.IsShared(fn) {
		t.Fatal("CowDisable must drop the parent's reference to the shared frame")
	}
	if eng.FA.Page(pte.Frame())[0] != 0x7A {
		t.Fatal("CowDisable's private copy must preserve the page's content")
	}
}

func TestCowDisableUnsharedFrameReclaimsInPlace(t *testing.T) {
	eng, _, _ := testEngine(t, 4, 4)
	fn, err := eng.FA.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	pte := presentPTE(fn, true)
	CowEnable(&pte)

	if err := eng.CowDisable(&pte); err != nil {
		t.Fatalf("CowDisable: %v", err)
	}
	if pte.Frame() != fn {
		t.Fatal("CowDisable on an unshared frame must reuse it in place")
	}
	if pte.COW() || !pte.Write() {
		t.Fatal("CowDisable must leave the page writable and non-COW")
	}
}

func TestCowDisableExhaustionPropagatesError(t *testing.T) {
	eng, _, _ := testEngine(t, 4, 1)
	fn, err := eng.FA.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	eng.FA.Share(fn)

	pte := presentPTE(fn, true)
	CowEnable(&pte)

	if err := eng.CowDisable(&pte); err != ErrNoMem {
		t.Fatalf("CowDisable with no frames free: got %v, want ErrNoMem", err)
	}
}

func TestCowDisablePanicsWhenNotCow(t *testing.T) {
	eng, _, _ := testEngine(t, 4, 4)
	pte := presentPTE(1, true)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic disabling COW on a non-COW page")
		}
	}()
	eng.CowDisable(&pte)
}

func TestLinkUserPageClear(t *testing.T) {
	eng, _, _ := testEngine(t, 4, 4)
	var src, dst PTE
	dst.SetFrame(99)
	eng.LinkUserPage(&dst, &src)
	if dst.Frame() != 99 {
		t.Fatal("LinkUserPage must leave dst untouched when src is clear")
	}
}

func TestLinkUserPageDemandMarkIsByteCopy(t *testing.T) {
	eng, _, _ := testEngine(t, 4, 4)
	var src, dst PTE
	MarkPage(&src, DemandFill)

	eng.LinkUserPage(&dst, &src)
	if !dst.FillMark() || dst.Present() {
		t.Fatalf("LinkUserPage on a demand-fill src must copy the mark verbatim: %+v", dst)
	}
}

func TestLinkUserPageWritableSharesAndEnablesCow(t *testing.T) {
	eng, _, _ := testEngine(t, 4, 4)
	fn, err := eng.FA.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	src := presentPTE(fn, true)
	var dst PTE

	eng.LinkUserPage(&dst, &src)

	if !src.COW() || src.Write() {
		t.Fatal("LinkUserPage must switch a writable parent PTE to COW")
	}
	if !dst.COW() || dst.Write() || dst.Frame() != fn {
		t.Fatalf("LinkUserPage must install a matching COW mapping on dst: %+v", dst)
	}
	if eng.FA.Refcount(fn) != 2 {
		t.Fatalf("LinkUserPage must share the frame: refcount = %d, want 2", eng.FA.Refcount(fn))
	}
}

func TestLinkUserPageReadOnlySharesWithoutCow(t *testing.T) {
	eng, _, _ := testEngine(t, 4, 4)
	fn, err := eng.FA.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	src := presentPTE(fn, false)
	var dst PTE

	eng.LinkUserPage(&dst, &src)

	if src.COW() || dst.COW() {
		t.Fatal("LinkUserPage must not enable COW on a read-only mapping")
	}
	if dst.Frame() != fn || dst.Present() != src.Present() {
		t.Fatalf("LinkUserPage must still share a read-only frame: %+v", dst)
	}
	if eng.FA.Refcount(fn) != 2 {
		t.Fatalf("LinkUserPage must share the frame: refcount = %d, want 2", eng.FA.Refcount(fn))
	}
}
