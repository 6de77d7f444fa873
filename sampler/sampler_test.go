package sampler

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

func run(t *testing.T, cfg Config, input string) string {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out bytes.Buffer
	if err := s.Run(strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

// Scenario 2 of spec.md §6: H=1, F=1, rate=0 — no interior line
// survives, but the marker still appears once the tail region exceeds
// the footer window.
func TestScenarioBernoulliRateZero(t *testing.T) {
	got := run(t, Config{Header: 1, Footer: 1, Rate: 0}, "a\nb\nc\nd\ne\n")
	if want := "a\n...\ne\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Scenario 3 of spec.md §6: rate=1.0 forces every interior line
// through, equivalent to a verbatim copy with one marker after the
// header.
func TestScenarioBernoulliRateOne(t *testing.T) {
	got := run(t, Config{Header: 1, Footer: 1, Rate: 1.0}, "a\nb\nc\nd\ne\n")
	if want := "a\n...\nb\nc\nd\ne\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// spec.md §8: inputs with H+F>=N in Bernoulli mode are verbatim with
// no markers at all.
func TestPropertyVerbatimWithinWindow(t *testing.T) {
	got := run(t, Config{Header: 2, Footer: 2, Rate: 0}, "a\nb\nc\nd\n")
	if want := "a\nb\nc\nd\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// spec.md §8: with H+F<N, exactly one marker appears between the
// header and footer, regardless of rate.
func TestPropertyOneMarkerBeyondWindow(t *testing.T) {
	got := run(t, Config{Header: 1, Footer: 1, Rate: 0.25, Seed: 99}, "a\nb\nc\nd\ne\nf\n")
	if strings.Count(got, marker) != 1 {
		t.Fatalf("got %d markers in %q, want 1", strings.Count(got, marker), got)
	}
	if !strings.HasPrefix(got, "a\n") || !strings.HasSuffix(got, "f\n") {
		t.Fatalf("header/footer missing in %q", got)
	}
}

// Scenario 6 of spec.md §6: --quiet suppresses every marker.
func TestScenarioQuietSuppressesMarkers(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 1000; i++ {
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('\n')
	}
	got := run(t, Config{Header: 1, Footer: 1, Rate: 0.5, Seed: 7, Quiet: true}, b.String())
	if strings.Contains(got, "...") {
		t.Fatalf("quiet mode still emitted a marker")
	}
	if !strings.HasPrefix(got, "1\n") {
		t.Fatalf("output does not start with line 1: %q", got[:min(20, len(got))])
	}
	if !strings.HasSuffix(got, "1000\n") {
		t.Fatalf("output does not end with line 1000")
	}
}

// Scenario 4 of spec.md §6: H=0, F=0, K=2 selects exactly two of the
// ten input lines, in their original relative order, framed by
// markers.
func TestScenarioReservoirNoHeaderNoFooter(t *testing.T) {
	var b strings.Builder
	input := make([]string, 10)
	for i := range input {
		input[i] = "line" + strconv.Itoa(i) + "\n"
		b.WriteString(input[i])
	}
	got := run(t, Config{Fixed: 2, Seed: 1}, b.String())
	if !strings.HasPrefix(got, marker) || !strings.HasSuffix(got, marker) {
		t.Fatalf("expected leading and trailing markers, got %q", got)
	}
	interior := strings.TrimSuffix(strings.TrimPrefix(got, marker), marker)
	lines := strings.SplitAfter(interior, "\n")
	lines = lines[:len(lines)-1] // trailing empty element from SplitAfter
	if len(lines) != 2 {
		t.Fatalf("got %d interior lines, want 2: %q", len(lines), interior)
	}
	assertSubsequence(t, input, lines)
}

// Scenario 5 of spec.md §6: H=2, F=0, K=3 over 100 lines keeps the
// header verbatim and samples 3 of the remaining 98 in order.
func TestScenarioReservoirWithHeaderNoFooter(t *testing.T) {
	var b strings.Builder
	input := make([]string, 100)
	for i := range input {
		input[i] = "l" + strconv.Itoa(i) + "\n"
		b.WriteString(input[i])
	}
	got := run(t, Config{Header: 2, Fixed: 3, Seed: 42}, b.String())
	if !strings.HasPrefix(got, input[0]+input[1]) {
		t.Fatalf("header missing: %q", got[:min(40, len(got))])
	}
	rest := strings.TrimPrefix(got, input[0]+input[1])
	if !strings.HasPrefix(rest, marker) || !strings.HasSuffix(rest, marker) {
		t.Fatalf("expected markers around reservoir: %q", rest)
	}
	interior := strings.TrimSuffix(strings.TrimPrefix(rest, marker), marker)
	lines := strings.SplitAfter(interior, "\n")
	lines = lines[:len(lines)-1]
	if len(lines) != 3 {
		t.Fatalf("got %d interior lines, want 3: %q", len(lines), interior)
	}
	assertSubsequence(t, input[2:], lines)
}

// assertSubsequence checks that got appears, in order, within pool
// (duplicates in pool are matched positionally so repeated lines don't
// falsely satisfy the check).
func assertSubsequence(t *testing.T, pool []string, got []string) {
	t.Helper()
	i := 0
	for _, g := range got {
		for i < len(pool) && pool[i] != g {
			i++
		}
		if i == len(pool) {
			t.Fatalf("line %q not found in original relative order within pool", g)
		}
		i++
	}
}

func TestSeedIdempotence(t *testing.T) {
	cfg := Config{Header: 2, Fixed: 5, Seed: 123}
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("x" + strconv.Itoa(i) + "\n")
	}
	first := run(t, cfg, b.String())
	second := run(t, cfg, b.String())
	if first != second {
		t.Fatalf("same seed produced different output across runs")
	}
}

func TestKeepEverythingBypassUnreachableInPractice(t *testing.T) {
	cfg := Config{Header: 1, Footer: 1, Rate: 1.0}
	if cfg.keepEverything() {
		t.Fatal("a CLI-clamped rate of 1.0 should never trigger the keep-everything bypass")
	}
}

func TestShortInputBelowHeader(t *testing.T) {
	got := run(t, Config{Header: 10, Footer: 2}, "a\nb\n")
	if want := "a\nb\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
