//go:build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux platform probes.

package control

import (
	"runtime"

	"github.com/momentics/hioload-ring/internal/vm"
)

// RegisterPlatformProbes adds page size, CPU count and mirrored mapping
// support as debug probes.
func RegisterPlatformProbes(r *Registry) error {
	probes := map[string]func() any{
		"platform.cpus":      func() any { return runtime.NumCPU() },
		"platform.page_size": func() any { return vm.PageSize() },
		"platform.mirrored":  func() any { return true },
	}
	for name, fn := range probes {
		if err := r.RegisterProbe(name, fn); err != nil {
			return err
		}
	}
	return nil
}
