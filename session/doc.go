// Package session
// Author: momentics <momentics@gmail.com>
//
// An IRC session is one connection plus the identity it registered with.
// The Builder checks required fields at runtime and performs the
// registration handshake (PASS, NICK, USER) exactly once, in Start.
package session
