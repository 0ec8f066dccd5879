// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness multiplexer the IRC client loop blocks on:
// an edge-triggered epoll instance keyed by 64-bit tokens, and an eventfd-based
// Waker that lets other goroutines interrupt the wait.
package reactor
