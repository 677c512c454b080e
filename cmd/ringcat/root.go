// File: cmd/ringcat/root.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/momentics/hioload-ring/control"
	"github.com/momentics/hioload-ring/ring"
)

type options struct {
	size    sizeValue
	mode    modeValue
	retries int
	verbose bool
	stats   bool
}

func newRootCommand() *cobra.Command {
	opts := options{
		size:    ring.DefaultSize,
		mode:    modeValue(modeMirrored),
		retries: 8,
	}
	cmd := &cobra.Command{
		Use:   "ringcat [flags] [file...]",
		Short: "Copy files or stdin to stdout through a ring buffer",
		Long: "ringcat copies its inputs to stdout byte for byte. A producer goroutine reads\n" +
			"the inputs and a consumer goroutine writes stdout; in mirrored mode they share\n" +
			"a mirrored ring, in staging mode they hand over recycled staging buffers.\n" +
			"An input named \"-\" or no input at all reads stdin.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	flags := cmd.Flags()
	flags.Var(&opts.size, "size", "ring capacity or staging chunk size, e.g. 640KiB or 4MB")
	flags.Var(&opts.mode, "mode", "buffer type: mirrored or staging")
	flags.IntVar(&opts.retries, "retries", opts.retries, "attempts at placing the mirrored mapping")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&opts.stats, "stats", false, "print buffer statistics to stderr when done")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func run(cmd *cobra.Command, opts options, args []string) (err error) {
	log, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if opts.retries < 1 {
		opts.retries = 1
	}
	inputs := openInputs(cmd.InOrStdin(), args)
	reg := control.NewRegistry()
	if err := control.RegisterPlatformProbes(reg); err != nil {
		return err
	}

	log.Debug("ringcat starting",
		zap.Stringer("mode", &opts.mode), zap.Stringer("size", &opts.size), zap.Int("inputs", len(args)))

	out := cmd.OutOrStdout()
	switch mode(opts.mode) {
	case modeStaging:
		err = copyStaging(cmd.Context(), out, inputs, int(opts.size), reg, log)
	default:
		err = copyMirrored(cmd.Context(), out, inputs, int(opts.size), opts.retries, reg, log)
	}

	if opts.stats {
		if werr := writeStats(cmd.ErrOrStderr(), reg.DumpState()); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// input opens lazily so that a missing file fails inside the producer,
// after earlier inputs were copied.
type input struct {
	name string
	open func() (io.ReadCloser, error)
}

func openInputs(stdin io.Reader, args []string) []input {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]input, 0, len(args))
	for _, name := range args {
		if name == "-" {
			inputs = append(inputs, input{name: "stdin", open: func() (io.ReadCloser, error) {
				return io.NopCloser(stdin), nil
			}})
			continue
		}
		inputs = append(inputs, input{name: name, open: func() (io.ReadCloser, error) {
			return os.Open(name)
		}})
	}
	return inputs
}

// produce feeds every input to fill in order.
func produce(inputs []input, log *zap.Logger, fill func(io.Reader) error) error {
	for _, in := range inputs {
		f, err := in.open()
		if err != nil {
			return err
		}
		err = fill(f)
		if cerr := f.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
		if err != nil {
			return err
		}
		log.Debug("input copied", zap.String("input", in.name))
	}
	return nil
}
