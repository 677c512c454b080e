// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime introspection for buffers and allocators.
//
// A Registry holds named stats sources (mirrored rings, staging buffers,
// allocators) and free-form debug probes. It exports them two ways:
//   - DumpState returns a point-in-time map for debug endpoints and CLIs
//   - the Registry is a prometheus.Collector reading the sources on scrape
package control
