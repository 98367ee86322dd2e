// Package klog is the virtual memory core's boot/diagnostic logger. It
// exists because spec.md requires resource exhaustion in the kernel page
// pool and frame allocator to "log a diagnostic — does NOT panic": a bare
// fmt.Printf (mit-pdos-biscuit's habit) loses the caller's slot/frame
// context, so this repo follows gvisor's lead and reports through a
// structured, leveled logger instead.
package klog

import "github.com/sirupsen/logrus"

// Log is the package-wide diagnostic logger for the virtual memory core.
// It is a package-level singleton in the same spirit as mit-pdos-biscuit's
// var Physmem = &Physmem_t{} — the core has exactly one of these for its
// entire lifetime, wired once at boot by cmd/vmcoresim.
var Log = logrus.New()

func init() {
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
