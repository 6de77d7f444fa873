package sampler

import "errors"

// ErrAlloc is returned when the input buffer or reservoir arena cannot
// grow any further. Per spec.md §4.7 / §7 (AllocError), the caller
// should treat this as a terminal failure for the current input only;
// any output already written is not retracted.
var ErrAlloc = errors.New("sampler: buffer allocation failed")

// ErrInvalidConfig reports a Config that fails validation (ConfigError
// in spec.md §7): a negative rate, a rate outside the representable
// range, or similar. Reported once per invocation, before any input is
// read.
var ErrInvalidConfig = errors.New("sampler: invalid configuration")
