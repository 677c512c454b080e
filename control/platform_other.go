//go:build !linux

// control/platform_other.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"runtime"

	"github.com/momentics/hioload-ring/internal/vm"
)

// RegisterPlatformProbes adds page size and CPU count as debug probes.
// Mirrored rings are unavailable here.
func RegisterPlatformProbes(r *Registry) error {
	probes := map[string]func() any{
		"platform.cpus":      func() any { return runtime.NumCPU() },
		"platform.page_size": func() any { return vm.PageSize() },
		"platform.mirrored":  func() any { return false },
	}
	for name, fn := range probes {
		if err := r.RegisterProbe(name, fn); err != nil {
			return err
		}
	}
	return nil
}
