//go:build !linux

// File: internal/concurrency/affinity_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "runtime"

// PinCurrentThread only locks the OS thread on this platform.
func PinCurrentThread(cpu int) error {
	runtime.LockOSThread()
	return nil
}

// UnpinCurrentThread unlocks the OS thread.
func UnpinCurrentThread() error {
	runtime.UnlockOSThread()
	return nil
}
