//go:build linux

package stress

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// PinSupported reports whether worker threads can be pinned to CPUs.
const PinSupported = true

// maxCPUs is the capacity of a Linux cpu_set_t.
const maxCPUs = 1024

// pinToCPU restricts the calling OS thread to the n-th CPU (modulo the
// count) of the thread's current affinity mask, so that pinning stays inside
// any cpuset the process was started with. The caller must hold
// runtime.LockOSThread.
func pinToCPU(n int) error {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return fmt.Errorf("reading affinity mask: %w", err)
	}
	count := allowed.Count()
	if count == 0 {
		return errors.New("empty affinity mask")
	}
	target := n % count
	for cpu := 0; cpu < maxCPUs; cpu++ {
		if !allowed.IsSet(cpu) {
			continue
		}
		if target == 0 {
			var set unix.CPUSet
			set.Zero()
			set.Set(cpu)
			return unix.SchedSetaffinity(0, &set)
		}
		target--
	}
	return fmt.Errorf("cpu index %d not found in affinity mask", n)
}
