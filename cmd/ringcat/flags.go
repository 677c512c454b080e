// File: cmd/ringcat/flags.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*sizeValue)(nil)
	_ pflag.Value = (*modeValue)(nil)
)

// sizeValue accepts human sizes such as 640KiB, 1MB or 4096.
type sizeValue uint64

func (v *sizeValue) Set(in string) error {
	n, err := humanize.ParseBytes(in)
	if err != nil {
		return err
	}
	if n == 0 || n > math.MaxInt32 {
		return fmt.Errorf("size %s out of range", humanize.IBytes(n))
	}
	*v = sizeValue(n)
	return nil
}

func (v *sizeValue) Type() string { return "size" }

func (v *sizeValue) String() string { return humanize.IBytes(uint64(*v)) }

type mode string

const (
	modeMirrored mode = "mirrored"
	modeStaging  mode = "staging"
)

type modeValue mode

func (v *modeValue) Set(in string) error {
	switch m := mode(in); m {
	case modeMirrored, modeStaging:
		*v = modeValue(m)
		return nil
	}
	return fmt.Errorf("unknown mode %q, want %s or %s", in, modeMirrored, modeStaging)
}

func (v *modeValue) Type() string { return "mode" }

func (v *modeValue) String() string { return string(*v) }
