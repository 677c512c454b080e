// control/registry.go
// Author: momentics <momentics@gmail.com>
//
// Named registry of stats sources and debug probes.

package control

import (
	"maps"
	"sync"

	"github.com/momentics/hioload-ring/api"
)

var _ api.Debug = (*Registry)(nil)

// Registry is safe for concurrent use. Sources are read while the registry
// is dumped or scraped, so a source must tolerate Stats calls from other
// goroutines; ring.Buffer and pool.Recycler do, staging.Buffer does not.
type Registry struct {
	mu      sync.RWMutex
	rings   map[string]api.RingStatsSource
	staging map[string]api.StagingStatsSource
	pools   map[string]api.PoolStatsSource
	probes  map[string]func() any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rings:   make(map[string]api.RingStatsSource),
		staging: make(map[string]api.StagingStatsSource),
		pools:   make(map[string]api.PoolStatsSource),
		probes:  make(map[string]func() any),
	}
}

// RegisterRing adds a mirrored ring under name.
func (r *Registry) RegisterRing(name string, src api.RingStatsSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNameLocked("control.RegisterRing", name, src == nil); err != nil {
		return err
	}
	r.rings[name] = src
	return nil
}

// RegisterStaging adds a staging buffer under name. Only register a buffer
// whose owner does not mutate it while the registry is read.
func (r *Registry) RegisterStaging(name string, src api.StagingStatsSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNameLocked("control.RegisterStaging", name, src == nil); err != nil {
		return err
	}
	r.staging[name] = src
	return nil
}

// RegisterPool adds an accounting allocator under name.
func (r *Registry) RegisterPool(name string, src api.PoolStatsSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNameLocked("control.RegisterPool", name, src == nil); err != nil {
		return err
	}
	r.pools[name] = src
	return nil
}

// RegisterProbe inserts a named debug hook. Probes appear in DumpState only.
func (r *Registry) RegisterProbe(name string, fn func() any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkNameLocked("control.RegisterProbe", name, fn == nil); err != nil {
		return err
	}
	r.probes[name] = fn
	return nil
}

// Unregister removes whatever is registered under name.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.existsLocked(name) {
		return false
	}
	delete(r.rings, name)
	delete(r.staging, name)
	delete(r.pools, name)
	delete(r.probes, name)
	return true
}

// DumpState returns the current stats of every source and the output of
// every probe, keyed by registration name.
func (r *Registry) DumpState() map[string]any {
	r.mu.RLock()
	rings := maps.Clone(r.rings)
	staging := maps.Clone(r.staging)
	pools := maps.Clone(r.pools)
	probes := maps.Clone(r.probes)
	r.mu.RUnlock()

	out := make(map[string]any, len(rings)+len(staging)+len(pools)+len(probes))
	for k, src := range rings {
		out[k] = src.Stats()
	}
	for k, src := range staging {
		out[k] = src.Stats()
	}
	for k, src := range pools {
		out[k] = src.Stats()
	}
	for k, fn := range probes {
		out[k] = fn()
	}
	return out
}

func (r *Registry) existsLocked(name string) bool {
	_, ring := r.rings[name]
	_, staging := r.staging[name]
	_, pool := r.pools[name]
	_, probe := r.probes[name]
	return ring || staging || pool || probe
}

func (r *Registry) checkNameLocked(op, name string, nilSource bool) error {
	switch {
	case name == "":
		return api.NewError(api.ErrCodeInvalidArgument, op, "empty name")
	case nilSource:
		return api.NewError(api.ErrCodeInvalidArgument, op, "nil source").WithContext("name", name)
	case r.existsLocked(name):
		return api.NewError(api.ErrCodeInvalidArgument, op, "name already registered").WithContext("name", name)
	}
	return nil
}
