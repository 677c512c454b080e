// File: cmd/ringcat/copy.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-ring/control"
	"github.com/momentics/hioload-ring/pipe"
	"github.com/momentics/hioload-ring/pool"
	"github.com/momentics/hioload-ring/ring"
	"github.com/momentics/hioload-ring/staging"
)

// copyMirrored streams inputs through a pipe over one mirrored ring.
func copyMirrored(ctx context.Context, out io.Writer, inputs []input, size, retries int,
	reg *control.Registry, log *zap.Logger) error {
	rb, err := ring.New(size, ring.WithLogger(log), ring.WithRetry(retries, time.Millisecond))
	if err != nil {
		return err
	}
	defer rb.Close()
	if err := reg.RegisterRing("ring", rb); err != nil {
		return err
	}

	r, w := pipe.New(rb)
	stop := context.AfterFunc(ctx, func() {
		_ = w.CloseWithError(ctx.Err())
		_ = r.CloseWithError(ctx.Err())
	})
	defer stop()

	var g errgroup.Group
	g.Go(func() error {
		err := produce(inputs, log, func(src io.Reader) error {
			_, err := w.ReadFrom(src)
			return err
		})
		_ = w.CloseWithError(err)
		return err
	})
	g.Go(func() error {
		_, err := r.WriteTo(out)
		_ = r.CloseWithError(err)
		return err
	})
	return g.Wait()
}

// copyStaging reads inputs into staging buffers of up to chunk bytes and
// hands each filled buffer to the consumer. Buffers come from a recycler,
// so storage released by the consumer is reused by the producer.
func copyStaging(ctx context.Context, out io.Writer, inputs []input, chunk int,
	reg *control.Registry, log *zap.Logger) error {
	recycler := pool.NewRecycler(pool.Pages{}, 4)
	defer recycler.Purge()
	if err := reg.RegisterPool("staging.pool", recycler); err != nil {
		return err
	}

	filled := make(chan *staging.Buffer, 2)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(filled)
		return produce(inputs, log, func(src io.Reader) error {
			for {
				buf, err := staging.New(chunk, staging.WithAllocator(recycler), staging.WithLogger(log))
				if err != nil {
					return err
				}
				eof, err := fillChunk(buf, src)
				if err != nil || buf.Empty() {
					_ = buf.Close()
					if err != nil || eof {
						return err
					}
					continue
				}
				select {
				case filled <- buf:
				case <-ctx.Done():
					_ = buf.Close()
					return ctx.Err()
				}
				if eof {
					return nil
				}
			}
		})
	})

	g.Go(func() error {
		for buf := range filled {
			_, err := buf.WriteTo(out)
			_ = buf.Close()
			if err != nil {
				return err
			}
		}
		return nil
	})

	err := g.Wait()
	for buf := range filled {
		_ = buf.Close()
	}
	return err
}

// fillChunk reads from src until buf holds its full capacity or src ends.
func fillChunk(buf *staging.Buffer, src io.Reader) (eof bool, err error) {
	for buf.FreeSize() > 0 {
		n, err := src.Read(buf.WriteHead())
		buf.Commit(n)
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}
	}
	return false, nil
}
