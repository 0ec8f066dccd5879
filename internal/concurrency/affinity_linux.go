//go:build linux

// File: internal/concurrency/affinity_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CPU pinning through sched_setaffinity. No cgo required.

package concurrency

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

const cpuSetBits = len(unix.CPUSet{}) * 64

// PinCurrentThread locks the calling goroutine to its OS thread and binds
// that thread to cpu. The lock is released if pinning fails.
func PinCurrentThread(cpu int) error {
	if cpu < 0 {
		return fmt.Errorf("%w: negative cpu %d", ErrAffinity, cpu)
	}
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("%w: cpu %d: %w", ErrAffinity, cpu, err)
	}
	return nil
}

// UnpinCurrentThread allows every CPU again and unlocks the OS thread. The
// kernel narrows the mask to the CPUs of the process cpuset.
func UnpinCurrentThread() error {
	defer runtime.UnlockOSThread()
	var set unix.CPUSet
	set.Zero()
	for i := 0; i < cpuSetBits; i++ {
		set.Set(i)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("%w: %w", ErrAffinity, err)
	}
	return nil
}
