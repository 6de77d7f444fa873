package sampler

// oversample is the 4x factor of spec.md §4.3: the slot table is
// allowed to grow to oversample*K logical entries before the
// compactifier is invoked, trading reservoir churn for bursty
// acceptance (see SPEC_FULL.md / spec.md §4.3 discussion).
const oversample = 4

// reservoir is the ReservoirArena of spec.md §3: a compacted byte
// arena holding K (logically) currently-selected interior lines,
// backed by an over-allocated offset table of up to 4K+1 entries so
// that deletions amortize instead of costing a memmove per acceptance.
type reservoir struct {
	arena []byte // rsv
	lrsv  []int  // slot table; lrsv[i] is the start of slot i, lrsv[nfxd] is the arena fill
	nfxd  int    // current logical fill (<=4K between compactions)
	k     int    // target reservoir size K
	rng   *RNG
}

func newReservoir(k uint64, rng *RNG) *reservoir {
	kk := int(k)
	return &reservoir{
		arena: make([]byte, initialBufSize),
		lrsv:  make([]int, 1, oversample*kk+1),
		k:     kk,
		rng:   rng,
	}
}

// growArena doubles the arena's capacity so line bytes bytes can be
// appended at offset off.
func (rv *reservoir) growArena(off, line int) error {
	needed := off + line
	if needed <= len(rv.arena) {
		return nil
	}
	newSize := len(rv.arena)
	if newSize == 0 {
		newSize = initialBufSize
	}
	for newSize < needed {
		newSize *= 2
	}
	if newSize > maxBufferSize {
		return ErrAlloc
	}
	grown := make([]byte, newSize)
	copy(grown, rv.arena[:rv.lrsv[rv.nfxd]])
	rv.arena = grown
	return nil
}

// append copies line's bytes to the end of the arena and records a new
// slot; it does not apply the acceptance probability or the
// compaction trigger, so FILL and the post-acceptance copy in
// BEEF/BEXP share it.
func (rv *reservoir) append(line []byte) error {
	off := rv.lrsv[rv.nfxd]
	if err := rv.growArena(off, len(line)); err != nil {
		return err
	}
	copy(rv.arena[off:off+len(line)], line)
	rv.nfxd++
	rv.lrsv = append(rv.lrsv, off+len(line))
	return nil
}

// full reports whether the slot table has reached the oversample
// ceiling and must be compacted before another line can be accepted.
func (rv *reservoir) full() bool {
	return rv.nfxd >= oversample*rv.k
}

// compactIfFull runs the compactifier when the oversample ceiling has
// been reached, per spec.md §4.3's "when nfxd reaches 4K" rule.
func (rv *reservoir) compactIfFull() {
	if rv.full() {
		rv.compact()
	}
}

// bytesN returns the first n logically-held slots as one contiguous
// byte range. Used both for the fully-compacted K-slot case (bytesN(k))
// and for reading out an under-filled reservoir verbatim when fewer
// than K candidates were ever offered.
func (rv *reservoir) bytesN(n int) []byte {
	return rv.arena[rv.lrsv[0]:rv.lrsv[n]]
}
