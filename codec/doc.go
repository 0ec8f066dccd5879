// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package codec provides the default IRC wire codec, backed by gopkg.in/irc.v4.
//
// The reactor treats messages as opaque lines; this package supplies the
// api.Codec the connections use to turn lines into api.Message values and back.
package codec
