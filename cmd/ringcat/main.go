// File: cmd/ringcat/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ringcat streams files, or stdin, to stdout through a mirrored ring or a
// staging buffer.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ringcat: %v\n", err)
		os.Exit(1)
	}
}
