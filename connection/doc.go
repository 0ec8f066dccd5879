// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package connection implements non-blocking, line-framed IRC transports.
//
// Every transport speaks whole lines: Receive yields at most one decoded
// message per call and Send accepts a message atomically or not at all.
// Sockets stay non-blocking after construction, so callers must be prepared
// for errors classified by IsTransient and retry once the descriptor returned
// by Fd becomes ready again.
package connection
