// Package concurrency
// Author: momentics <momentics@gmail.com>
//
// Primitives shared between producer goroutines and the single reactor
// goroutine: the bounded MPMC queue behind client handles and CPU pinning
// for the goroutine that runs the reactor.
package concurrency
