// Package client
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package client runs many IRC sessions on one goroutine.
//
// A Reactor owns its sessions and a readiness poller. Run blocks the calling
// goroutine and dispatches every received message to a Handler, whose
// Reaction decides what is sent back. Other goroutines inject messages
// through a Handle, which is cheap to copy and never blocks.
//
// Messages for a session are written in the order they were produced. When
// the socket pushes back, they wait in a per-session queue until the next
// writable edge. PING is answered with PONG without reaching the handler.
package client
