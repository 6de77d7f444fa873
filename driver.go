package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/mtomczak/glance/sampler"
)

// exitCode accumulates the process's final exit status across every
// input, per spec.md §6: 0 if every input succeeded, 1 otherwise. It's
// a package variable rather than a return value because cobra's RunE
// and the per-input recovery policy (spec.md §7 — one bad input never
// poisons the rest) don't compose cleanly through a single error
// return: an IoError on file 2 of 3 must still let file 3 run.
var exitCode int

// runInputs drives one Sampler per path argument (a fresh Sampler,
// and so a fresh PRNG sub-stream, per input — no file's output
// depends on another having run first), applying spec.md §7's
// recovery policy: IoError and AllocError are reported to stderr and
// only end the current input. ConfigError has already terminated the
// process in validateOptions, before this function is ever reached.
func runInputs(paths []string) {
	logger := newSamplerLogger()

	for _, path := range paths {
		if err := runOne(path, logger); err != nil {
			reportInputError(path, err)
			exitCode = 1
		}
	}
}

func runOne(path string, logger *log.Logger) error {
	r, closer, err := openInput(path)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer() //nolint:errcheck
	}

	var opts []sampler.Option
	if logger != nil {
		opts = append(opts, sampler.WithLogger(logger))
	}

	s, err := sampler.New(resolvedCfg, opts...)
	if err != nil {
		return err
	}

	if err := s.Run(r, os.Stdout); err != nil {
		if errors.Is(err, sampler.ErrAlloc) {
			return fmt.Errorf("allocation failed while sampling: %w", err)
		}
		return err
	}
	return nil
}

// openInput resolves a path argument to a readable stream. "-" (or no
// arguments, per execute's default) means standard input, which is
// never closed since it isn't ours to close.
func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, nil, nil
	}
	f, err := os.Open(expandPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open: %w", err)
	}
	return f, f.Close, nil
}

func reportInputError(path string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
}
