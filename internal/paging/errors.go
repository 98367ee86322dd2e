package paging

import "github.com/pkg/errors"

// ErrNoMem is returned wherever the C source returns -1 for allocation
// failure (crtpgdir, cpypg, allocupg, readpg, cow_disable) — resource
// exhaustion in the kernel page pool or frame allocator, propagated
// upward rather than panicked, per spec.md §7's "Resource exhaustion"
// class.
var ErrNoMem = errors.New("paging: out of memory")

// ErrFault is returned by the fault handlers when the fault cannot be
// resolved and must become a SIGSEGV (or process termination) at a higher
// layer, per spec.md §4.3: "the MM core never kills processes itself."
var ErrFault = errors.New("paging: unresolvable fault")
