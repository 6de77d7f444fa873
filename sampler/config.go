package sampler

import "fmt"

// maxBufferSize bounds how large the input buffer or reservoir arena
// may grow before a doubling is refused with ErrAlloc. It exists only
// as a backstop against runaway growth on pathological input; ordinary
// files never get close to it.
const maxBufferSize = 1 << 34 // 16 GiB

// Config holds the fully-resolved parameters for one Sampler
// invocation: the header/footer window sizes, the Bernoulli rate, the
// fixed reservoir size, the seed, and display options. All CLI-level
// parsing and defaulting (percentages, "rate > 1 means 1/rate", TTY
// auto-sizing, etc.) happens before a Config reaches this package.
type Config struct {
	// Header is H, the number of leading lines always emitted verbatim.
	Header uint64
	// Footer is F, the number of trailing lines always emitted verbatim.
	Footer uint64
	// Rate is the Bernoulli keep-probability for interior lines, in
	// [0,1]. Ignored when Fixed > 0 (see SPEC_FULL.md Open Question 1).
	Rate float64
	// Fixed is K, the reservoir size. Zero disables reservoir mode.
	Fixed uint64
	// Seed seeds the PRNG; zero means "derive one from time and pid".
	Seed uint64
	// Quiet suppresses the "...\n" ellipsis markers.
	Quiet bool
}

// Validate checks Config for the boundary conditions spec.md §6
// assigns to CLI parsing (rate must be non-negative and representable,
// etc.), returning ErrInvalidConfig wrapped with detail on failure.
func (c Config) Validate() error {
	if c.Rate < 0 {
		return fmt.Errorf("%w: rate must be non-negative, got %v", ErrInvalidConfig, c.Rate)
	}
	if c.Rate > 1 {
		return fmt.Errorf("%w: rate must be normalized to at most 1, got %v", ErrInvalidConfig, c.Rate)
	}
	return nil
}

// threshold32 is the T of spec.md §4.3 for this Config's Rate. A line
// is accepted iff RNG.Uint32() < threshold32(), except that values
// exceeding the uint32 range (unreachable through normal CLI parsing
// since Rate is clamped to [0,1]) signal "accept everything" without
// drawing from the RNG at all.
func (c Config) threshold32() uint64 {
	return threshold(c.Rate)
}

const maxThreshold = uint64(1) << 32

// keepEverything reports the spec.md §4.3 EVAL special case: a
// threshold strictly beyond the 32-bit range means every byte is
// echoed verbatim with no header/footer/marker bookkeeping at all.
func (c Config) keepEverything() bool {
	return c.threshold32() > maxThreshold
}
