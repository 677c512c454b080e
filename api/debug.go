// Package api
// Author: momentics
//
// Live introspection of buffers and allocators.

package api

// Debug exposes runtime introspection for diagnostics.
type Debug interface {
    // DumpState emits a snapshot of every registered source and probe.
    DumpState() map[string]any

    // RegisterProbe adds a named probe evaluated on every DumpState.
    RegisterProbe(name string, fn func() any) error
}
