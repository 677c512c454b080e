// File: staging/options.go
// Author: momentics <momentics@gmail.com>

package staging

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/pool"
)

// Option configures a Buffer.
type Option func(*config)

type config struct {
	alloc api.Allocator
	log   *zap.Logger
}

func newConfig(opts []Option) config {
	cfg := config{alloc: pool.Heap, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithAllocator sets the allocation strategy used for initial storage and
// for every grow.
func WithAllocator(a api.Allocator) Option {
	return func(c *config) {
		if a != nil {
			c.alloc = a
		}
	}
}

// WithLogger sets the logger reporting grows and compactions at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}
