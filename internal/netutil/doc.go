// Package netutil provides network utility functions for worker supervision.
// Its central type, PortRegistry, allocates ephemeral listen ports via the
// kernel and tracks reserved ports across the process to prevent duplicate
// allocation from the TOCTOU race between concurrent callers.
package netutil
