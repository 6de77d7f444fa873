package sampler

// compact implements the Compactifier of spec.md §4.4: given the
// over-allocated slot table holding M (== rv.nfxd) logical entries, it
// selects K survivors uniformly at random and rewrites the arena and
// table to hold exactly those K lines contiguously, preserving their
// original relative order.
//
// Step 1 is algorithm-R reservoir sampling of M indices into K slots
// (applied to slot indices, not bytes): pick[i]=i for i<K, then for
// i in [K,M) replace pick[j] with i at a uniformly chosen j<K. Every
// slot past the first K was already accepted when it was appended, so
// each one always takes a pick entry (the last slot always survives):
// the survivors are exactly what eager single-slot replacement, each
// accepted line evicting a uniformly chosen one of the K held lines,
// would have produced.
//
// Step 2 marks the survivors and copies out maximal contiguous runs of
// surviving bytes in one memmove each, rather than one memmove per
// surviving line — this is the O(M+K) compaction the spec budgets for.
func (rv *reservoir) compact() {
	m := rv.nfxd
	k := rv.k
	if m <= k {
		return
	}

	mark := make([]bool, m)
	pick := make([]int, k)
	for i := 0; i < k; i++ {
		pick[i] = i
	}
	for i := k; i < m; i++ {
		j := rv.rng.Bounded(uint32(k))
		pick[j] = i
	}
	for i := 0; i < k; i++ {
		mark[pick[i]] = true
	}

	newLrsv := make([]int, 0, oversample*k+1)
	o := 0
	beg := 0
	for beg < m {
		for beg < m && !mark[beg] {
			beg++
		}
		if beg >= m {
			break
		}
		end := beg + 1
		for end < m && mark[end] {
			end++
		}

		runStart := rv.lrsv[beg]
		runEnd := rv.lrsv[end]
		length := runEnd - runStart
		// arena offsets only ever decrease during compaction (o<=runStart),
		// so an ordinary copy is safe even though source and destination
		// may overlap the same backing array.
		copy(rv.arena[o:o+length], rv.arena[runStart:runEnd])

		for j := beg; j < end; j++ {
			newLrsv = append(newLrsv, o+(rv.lrsv[j]-runStart))
		}
		o += length
		beg = end
	}
	newLrsv = append(newLrsv, o)

	rv.lrsv = newLrsv
	rv.nfxd = k
}
