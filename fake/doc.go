// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides a loopback IRC server with predictable, controllable behavior.
package fake
