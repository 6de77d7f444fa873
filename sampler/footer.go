package sampler

// footerRing is the circular array of spec.md §3, re-expressed to hold
// owned copies of line bytes rather than offsets into the input
// buffer: last[k % (F+1)] is the bytes of the line whose one-based
// index within the tail region is k. Once k grows past F, the slot for
// index k-(F+1) has been overwritten and is no longer addressable —
// exactly F+1 of the most recent tail lines are ever held at once.
type footerRing struct {
	last [][]byte // length footer+1
	f    int
}

func newFooterRing(footer uint64) *footerRing {
	return &footerRing{last: make([][]byte, footer+1), f: int(footer)}
}

func (r *footerRing) slot(k int) int {
	return ((k % (r.f + 1)) + (r.f + 1)) % (r.f + 1)
}

func (r *footerRing) at(k int) []byte {
	return r.last[r.slot(k)]
}

// set records line's bytes (already owned by the caller, e.g. a copy
// taken from the input buffer) as the k-th tail line. The slot was
// last used by line k-(F+1), whose eviction the caller is expected to
// have already handled one tail line earlier (at k-1, candidate
// k-1-F): by the time k collides with it, it is stale.
func (r *footerRing) set(k int, line []byte) {
	r.last[r.slot(k)] = line
}

// flush returns the last min(count, F) held lines, oldest first, for
// the end-of-input footer write: the true footer is always the most
// recent F tail lines, never F+1 — the extra ring slot exists only so
// the streaming eviction check (k - F) can still read the value about
// to be superseded.
func (r *footerRing) flush(count int) [][]byte {
	oldest := count - r.f + 1
	if oldest < 1 {
		oldest = 1
	}
	out := make([][]byte, 0, count-oldest+1)
	for k := oldest; k <= count; k++ {
		out = append(out, r.at(k))
	}
	return out
}
