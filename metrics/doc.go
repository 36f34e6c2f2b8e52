// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus collectors for votes, pairwise
// reprocessing, HTTP latency and rate limiting on a private registry.
// Methods on a nil *Metrics are no-ops.
package metrics
