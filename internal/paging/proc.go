package paging

import "github.com/Viniciusilva/nanvix/internal/hal"

// Proc is the subset of a process's record the virtual memory core needs:
// its page directory, kernel stack, saved kernel stack pointer, and
// CR3-equivalent. The rest of a process (scheduling state, open files,
// signal mask, ...) belongs to the process subsystem and is out of scope
// here, per spec.md §1 — this type only carries the fields spec.md §6
// lists as consumed from Process: proc.{pgdir, kstack, kesp, cr3}.
type Proc struct {
	PgDir  *PageDirectory
	KStack *hal.Page
	KEsp   hal.Addr
	CR3    hal.Addr

	// KernelRunning mirrors KERNEL_RUNNING(proc): true while proc is
	// itself executing in kernel mode (as opposed to having merely
	// entered the kernel to be forked by someone else). Set by the
	// process/scheduler subsystem; CreateAddrSpace only reads it.
	KernelRunning bool
}
