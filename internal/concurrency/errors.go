// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import "errors"

var (
	// ErrQueueFull indicates a bounded queue rejected an item.
	ErrQueueFull = errors.New("queue is full")

	// ErrAffinity indicates the thread could not be bound to a CPU.
	ErrAffinity = errors.New("cpu affinity")
)
