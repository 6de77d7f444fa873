// Package sampler implements the streaming line sampler: a forward
// pass over a newline-delimited byte stream that emits a fixed header,
// a fixed footer, and a sampled interior — either Bernoulli-kept or a
// uniform reservoir of fixed size — without ever holding the whole
// input in memory.
package sampler

import (
	"bytes"
	"io"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// marker delimits an elided region of input. It never appears adjacent
// to another marker, and no trailing newline is added beyond what the
// input itself supplied.
const marker = "...\n"

// Stats reports the line counters spec.md §3 calls out as part of the
// sampler's data model, for callers that want to log or display them.
type Stats struct {
	Lines   uint64 // nfln: total lines observed, including the header
	Emitted uint64 // noln: lines written to the output stream
}

// Sampler owns one input's buffers and PRNG state end to end. Unlike
// the process-wide globals it's modeled on, a Sampler value is
// self-contained: multiple Samplers may run concurrently over
// different inputs, each with its own buffers and PRNG sub-stream, as
// long as each individual Sampler is driven sequentially (spec.md §5).
type Sampler struct {
	cfg    Config
	buf    *inputBuffer
	rng    *RNG
	logger *log.Logger

	nfln uint64
	noln uint64
}

// Option configures optional Sampler behavior not part of the sampled
// output itself.
type Option func(*Sampler)

// WithLogger attaches a debug logger that receives one line per input
// buffer growth, input buffer compaction, and reservoir compaction
// triggered by the oversample ceiling (the final compaction at end of
// input is not logged) —
// the growth-and-repacking events spec.md treats as internal but that
// are worth observing from the CLI layer. A nil logger (the default)
// disables this entirely at no cost.
func WithLogger(l *log.Logger) Option {
	return func(s *Sampler) { s.logger = l }
}

// New validates cfg and returns a Sampler ready to run one or more
// inputs sequentially. A fresh Sampler should be constructed per input
// when per-input PRNG isolation matters; reusing one across inputs
// reuses its PRNG stream, which is the original's process-wide
// behavior carried forward deliberately for callers that want it.
func New(cfg Config, opts ...Option) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sampler{
		cfg: cfg,
		buf: newInputBuffer(),
		rng: NewRNG(cfg.Seed),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Sampler) debugf(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, kv...)
	}
}

// Stats returns the line counters accumulated by the most recent Run.
func (s *Sampler) Stats() Stats {
	return Stats{Lines: s.nfln, Emitted: s.noln}
}

// Run streams r to w, picking one of the three top-level variants of
// spec.md §2: Bernoulli mode, fixed-K mode with a footer, and fixed-K
// mode without one. It resets per-input buffer and counter state so a
// single Sampler can be reused across inputs (sharing one PRNG
// stream); construct a new Sampler per input instead if that sharing
// is undesired.
func (s *Sampler) Run(r io.Reader, w io.Writer) error {
	s.buf = newInputBuffer()
	s.nfln, s.noln = 0, 0

	if s.cfg.keepEverything() {
		_, err := io.Copy(w, r)
		return err
	}

	eof, err := s.emitHeader(r, w)
	if err != nil {
		return err
	}
	if eof {
		return nil
	}

	switch {
	case s.cfg.Fixed > 0 && s.cfg.Footer > 0:
		return s.runReservoirFooter(r, w)
	case s.cfg.Fixed > 0:
		return s.runReservoirNoFooter(r, w)
	case s.cfg.Footer > 0:
		return s.runBernoulliFooter(r, w)
	default:
		return s.runCake(r, w)
	}
}

// write counts emitted lines as it writes them, keeping Stats current
// without every call site repeating the bookkeeping.
func (s *Sampler) write(w io.Writer, line []byte) error {
	if len(line) == 0 {
		return nil
	}
	if _, err := w.Write(line); err != nil {
		return err
	}
	// line may hold several lines at once (a whole reservoir) or end in
	// an unterminated partial line; count each of them.
	s.noln += uint64(bytes.Count(line, []byte{'\n'}))
	if line[len(line)-1] != '\n' {
		s.noln++
	}
	return nil
}

func (s *Sampler) writeMarker(w io.Writer) error {
	if s.cfg.Quiet {
		return nil
	}
	_, err := io.WriteString(w, marker)
	return err
}

// nextLine returns the next newline-terminated line, or — only at true
// end of input — a final byte run with no terminating newline, with
// partial reporting that case. err is io.EOF exactly when there is no
// more input at all, not even a trailing partial line.
func (s *Sampler) nextLine(r io.Reader) (line []byte, partial bool, err error) {
	for {
		data := s.buf.unscanned()
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			s.buf.ibuf += idx + 1
			return data[:idx+1], false, nil
		}
		if s.buf.readEOF {
			if len(data) > 0 {
				s.buf.ibuf = s.buf.nbuf
				return data, true, nil
			}
			return nil, false, io.EOF
		}
		beforeLen, beforeIbuf := len(s.buf.buf), s.buf.ibuf
		if err := s.buf.compactOrGrow(); err != nil {
			return nil, false, err
		}
		switch {
		case len(s.buf.buf) != beforeLen:
			s.debugf("input buffer grown", "from", humanize.Bytes(uint64(beforeLen)), "to", humanize.Bytes(uint64(len(s.buf.buf))))
		case beforeIbuf > 0 && s.buf.ibuf == 0:
			s.debugf("input buffer compacted", "freed", humanize.Bytes(uint64(beforeIbuf)))
		}
		n, rerr := s.buf.fill(r)
		if n == 0 {
			switch rerr {
			case nil:
				continue
			default:
				// spec.md §4.7: a read error is treated as EOF on
				// this input, not a terminal failure — previously
				// buffered lines still flush normally.
				s.buf.readEOF = true
				continue
			}
		}
	}
}

// emitHeader scans and writes the first H lines verbatim. A trailing
// partial line encountered while still inside the header window is
// emitted too, per spec.md §3's rule for an unterminated final line.
func (s *Sampler) emitHeader(r io.Reader, w io.Writer) (eof bool, err error) {
	for i := uint64(0); i < s.cfg.Header; i++ {
		line, partial, err := s.nextLine(r)
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		s.nfln++
		if werr := s.write(w, line); werr != nil {
			return false, werr
		}
		if partial {
			return true, nil
		}
	}
	return false, nil
}

// runCake is the no-footer Bernoulli path (spec.md §4.3 CAKE): every
// line after the header is an independent keep/drop trial. A rate of
// zero is equivalent to no sampling at all, so nothing is scanned and
// no marker appears — spec.md's "if F=0 and rate zero terminate
// successfully" exit, applied uniformly regardless of how CAKE was
// reached.
func (s *Sampler) runCake(r io.Reader, w io.Writer) error {
	threshold := s.cfg.threshold32()
	if threshold == 0 {
		return nil
	}

	entered := false
	for {
		line, partial, err := s.nextLine(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		s.nfln++
		if !entered {
			entered = true
			if err := s.writeMarker(w); err != nil {
				return err
			}
		}
		if partial {
			return nil
		}
		if uint64(s.rng.Uint32()) < threshold {
			if err := s.write(w, line); err != nil {
				return err
			}
		}
	}
}

// runBernoulliFooter is the TAIL/BEEF path with a footer (F>0, K=0): a
// line only becomes a sampling candidate once F further lines have
// arrived behind it, guaranteeing it isn't one of the true last F.
// Until that many lines ever arrive, nothing is dropped at all — an
// input whose tail region is no larger than F lines never enters
// sampling (matches spec.md §8's H+F>=N verbatim property, and its one
// "off by one" discrepancy in the literal worked example at §6
// scenario 1, which SPEC_FULL.md documents as a decision in favor of
// the stated invariants over that example's prose).
func (s *Sampler) runBernoulliFooter(r io.Reader, w io.Writer) error {
	threshold := s.cfg.threshold32()
	footer := int(s.cfg.Footer)
	ring := newFooterRing(s.cfg.Footer)

	tail := 0
	entered := false
	for {
		line, partial, err := s.nextLine(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		s.nfln++
		tail++
		ring.set(tail, append([]byte(nil), line...))

		if tail > footer {
			candidate := ring.at(tail - footer)
			if !entered {
				entered = true
				if err := s.writeMarker(w); err != nil {
					return err
				}
			}
			if uint64(s.rng.Uint32()) < threshold {
				if err := s.write(w, candidate); err != nil {
					return err
				}
			}
		}
		if partial {
			break
		}
	}

	for _, line := range ring.flush(tail) {
		if err := s.write(w, line); err != nil {
			return err
		}
	}
	return nil
}

// compactReservoir runs the compactifier when rv has reached the
// oversample ceiling, logging the slot count it freed when a debug
// logger is attached.
func (s *Sampler) compactReservoir(rv *reservoir) {
	before, wasFull := rv.nfxd, rv.full()
	rv.compactIfFull()
	if wasFull {
		s.debugf("reservoir compacted", "from", before, "to", rv.nfxd)
	}
}

// reservoirAccept implements the sampling arithmetic of spec.md §4.3
// shared by both reservoir variants: the first K candidates are kept
// unconditionally (FILL); candidates K+1..4K are kept with probability
// K/n (BEEF); beyond that, BEXP geometric-gap skipping takes over.
// n is the 1-based count of candidates offered to the reservoir so
// far (including this one); gap/usingGap are threaded through by the
// caller since both variants need the same state across calls.
func (s *Sampler) reservoirAccept(n, k int, usingGap *bool, gap *uint64) bool {
	if n <= k {
		return true
	}
	if !*usingGap {
		accept := s.rng.Bounded(uint32(n)) < uint32(k)
		if n >= 4*k {
			*usingGap = true
			*gap = uint64(n) + s.rng.ExpGap(uint64(n-k), uint64(n))
		}
		return accept
	}
	accept := uint64(n) == *gap
	if accept {
		*gap = uint64(n) + s.rng.ExpGap(uint64(n-k), uint64(n))
	}
	return accept
}

// runReservoirFooter is the fixed-K mode with F>0 of spec.md §4.5: the
// footer ring and reservoir coexist, and a candidate only reaches the
// reservoir once it has fallen out of the footer window.
func (s *Sampler) runReservoirFooter(r io.Reader, w io.Writer) error {
	footer := int(s.cfg.Footer)
	k := int(s.cfg.Fixed)
	ring := newFooterRing(s.cfg.Footer)
	rsv := newReservoir(s.cfg.Fixed, s.rng)

	tail := 0
	evicted := 0
	usingGap := false
	var gap uint64

	for {
		line, partial, err := s.nextLine(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		s.nfln++
		tail++
		ring.set(tail, append([]byte(nil), line...))

		if tail > footer {
			candidate := ring.at(tail - footer)
			evicted++
			if s.reservoirAccept(evicted, k, &usingGap, &gap) {
				if err := rsv.append(candidate); err != nil {
					return err
				}
				s.compactReservoir(rsv)
			}
		}
		if partial {
			break
		}
	}

	// Markers bracket the reservoir once the reservoir reached its
	// full K slots (evicted>=K), per spec.md §8's testable property for
	// this mode ("N>=H+K+F ... exactly two markers"); an under-filled
	// reservoir was built entirely by unconditional FILL and is shown
	// as plain survivors. This boundary is inclusive here even though
	// the sibling no-footer variant's boundary is exclusive (spec.md
	// §4.6 states that one explicitly as "total lines equal exactly K,
	// no markers") — the two variants are governed by different
	// explicit statements in spec.md and are kept that way rather than
	// forced into a false symmetry (SPEC_FULL.md Open Question 2).
	switch {
	case evicted >= k:
		rsv.compact()
		if err := s.writeMarker(w); err != nil {
			return err
		}
		if err := s.write(w, rsv.bytesN(k)); err != nil {
			return err
		}
		if err := s.writeMarker(w); err != nil {
			return err
		}
	case evicted > 0:
		if err := s.write(w, rsv.bytesN(evicted)); err != nil {
			return err
		}
	}

	for _, line := range ring.flush(tail) {
		if err := s.write(w, line); err != nil {
			return err
		}
	}
	return nil
}

// runReservoirNoFooter is the fixed-K mode without a footer of
// spec.md §4.6: every post-header line is an immediate reservoir
// candidate, with no ring delay.
func (s *Sampler) runReservoirNoFooter(r io.Reader, w io.Writer) error {
	k := int(s.cfg.Fixed)
	rsv := newReservoir(s.cfg.Fixed, s.rng)

	n := 0
	usingGap := false
	var gap uint64

	for {
		line, partial, err := s.nextLine(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		s.nfln++
		if partial {
			break
		}
		n++
		if s.reservoirAccept(n, k, &usingGap, &gap) {
			if err := rsv.append(line); err != nil {
				return err
			}
			s.compactReservoir(rsv)
		}
	}

	switch {
	case n > k:
		rsv.compact()
		if err := s.writeMarker(w); err != nil {
			return err
		}
		if err := s.write(w, rsv.bytesN(k)); err != nil {
			return err
		}
		if err := s.writeMarker(w); err != nil {
			return err
		}
	case n > 0:
		if err := s.write(w, rsv.bytesN(n)); err != nil {
			return err
		}
	}
	return nil
}
