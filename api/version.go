// File: api/version.go
// Author: momentics <momentics@gmail.com>

package api

// Version of the hioload-irc library.
const Version = "0.1.0"

// Homepage is announced in the default IRC realname.
const Homepage = "https://github.com/momentics/hioload-irc"
