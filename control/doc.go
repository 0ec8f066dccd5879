// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration and runtime metrics for hioload-irc.
//
// Provides:
//   - YAML configuration loading with defaults and validation
//   - Prometheus collectors for reactor throughput and backpressure
//
// A nil *Metrics is valid everywhere and records nothing.
package control
