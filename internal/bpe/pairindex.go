package bpe

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Pair is an adjacent token pair, identified by the interned IDs of its two
// elements.
type Pair struct {
	Left  int
	Right int
}

// occurrence identifies one adjacency site: pos is the array position of the
// pair's left element within document doc.
type occurrence struct {
	doc int
	pos int
}

// pairIndex maintains, incrementally, the count of every adjacent pair across
// the corpus plus the set of sites where each pair occurs. Counts always
// equal the number of live sites; entries are deleted when they reach zero,
// never stored as zero or negative.
type pairIndex struct {
	seqs   []*sequence
	counts map[Pair]int
	sites  map[Pair]map[occurrence]struct{}
}

// buildPairIndex scans every sequence once and aggregates pair counts and
// occurrence sites. The scan is read-only, so it fans out across document
// shards and merges the partial tables afterward.
func buildPairIndex(ctx context.Context, seqs []*sequence, workers int) (*pairIndex, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(seqs) {
		workers = len(seqs)
	}
	if workers < 1 {
		workers = 1
	}

	type partial struct {
		counts map[Pair]int
		sites  map[Pair]map[occurrence]struct{}
	}

	parts := make([]partial, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			p := partial{
				counts: make(map[Pair]int),
				sites:  make(map[Pair]map[occurrence]struct{}),
			}
			for doc := w; doc < len(seqs); doc += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				scanSequence(seqs[doc], doc, p.counts, p.sites)
			}
			parts[w] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ix := &pairIndex{
		seqs:   seqs,
		counts: make(map[Pair]int),
		sites:  make(map[Pair]map[occurrence]struct{}),
	}
	for _, p := range parts {
		for pair, c := range p.counts {
			ix.counts[pair] += c
		}
		for pair, set := range p.sites {
			dst := ix.sites[pair]
			if dst == nil {
				ix.sites[pair] = set
				continue
			}
			for occ := range set {
				dst[occ] = struct{}{}
			}
		}
	}
	return ix, nil
}

func scanSequence(s *sequence, doc int, counts map[Pair]int, sites map[Pair]map[occurrence]struct{}) {
	for i := s.head(); i >= 0; i = s.next[i] {
		j := s.next[i]
		if j < 0 {
			break
		}
		p := Pair{Left: s.toks[i], Right: s.toks[j]}
		counts[p]++
		set := sites[p]
		if set == nil {
			set = make(map[occurrence]struct{})
			sites[p] = set
		}
		set[occurrence{doc: doc, pos: i}] = struct{}{}
	}
}

// count returns the current live count for p, zero if absent.
func (ix *pairIndex) count(p Pair) int {
	return ix.counts[p]
}

// pairs returns every pair with a positive count, in arbitrary order.
func (ix *pairIndex) pairs() []Pair {
	out := make([]Pair, 0, len(ix.counts))
	for p := range ix.counts {
		out = append(out, p)
	}
	return out
}

func (ix *pairIndex) add(p Pair, occ occurrence) {
	set := ix.sites[p]
	if set == nil {
		set = make(map[occurrence]struct{})
		ix.sites[p] = set
	}
	set[occ] = struct{}{}
	ix.counts[p]++
}

func (ix *pairIndex) remove(p Pair, occ occurrence) {
	set := ix.sites[p]
	if set == nil {
		return
	}
	if _, ok := set[occ]; !ok {
		return
	}
	delete(set, occ)
	if len(set) == 0 {
		delete(ix.sites, p)
		delete(ix.counts, p)
		return
	}
	ix.counts[p] = len(set)
}

// applyMerge replaces every live occurrence of p with mergedID, updating the
// affected sequences in place and keeping counts consistent with the sites.
// Occurrences within a sequence are consumed greedily left to right; an
// occurrence whose site was invalidated by an earlier merge in the same pass
// (overlapping pairs such as A A A) is skipped. It returns the pairs whose
// counts increased, so the selector can requeue them.
func (ix *pairIndex) applyMerge(p Pair, mergedID int) []Pair {
	set := ix.sites[p]
	if len(set) == 0 {
		return nil
	}

	occs := make([]occurrence, 0, len(set))
	for occ := range set {
		occs = append(occs, occ)
	}
	sort.Slice(occs, func(i, j int) bool {
		if occs[i].doc != occs[j].doc {
			return occs[i].doc < occs[j].doc
		}
		return occs[i].pos < occs[j].pos
	})

	var grown []Pair
	seen := make(map[Pair]struct{})

	for _, occ := range occs {
		// A merge earlier in this pass may have consumed this site.
		if cur, ok := ix.sites[p]; !ok {
			break
		} else if _, live := cur[occ]; !live {
			continue
		}

		s := ix.seqs[occ.doc]
		pos := occ.pos
		q := s.next[pos]

		l := s.prev[pos]
		r := s.next[q]

		// The merged pair's own site, and the sites of the two pairs that
		// straddled the consumed tokens, no longer exist.
		ix.remove(p, occ)
		if l >= 0 {
			ix.remove(Pair{Left: s.toks[l], Right: p.Left}, occurrence{doc: occ.doc, pos: l})
		}
		if r >= 0 {
			ix.remove(Pair{Left: p.Right, Right: s.toks[r]}, occurrence{doc: occ.doc, pos: q})
		}

		s.mergeAt(pos, mergedID)

		// Two new adjacencies around the merged token.
		if l >= 0 {
			np := Pair{Left: s.toks[l], Right: mergedID}
			ix.add(np, occurrence{doc: occ.doc, pos: l})
			if _, ok := seen[np]; !ok {
				seen[np] = struct{}{}
				grown = append(grown, np)
			}
		}
		if r >= 0 {
			np := Pair{Left: mergedID, Right: s.toks[r]}
			ix.add(np, occurrence{doc: occ.doc, pos: pos})
			if _, ok := seen[np]; !ok {
				seen[np] = struct{}{}
				grown = append(grown, np)
			}
		}
	}

	return grown
}

// checkConsistency verifies that every count matches its live site set and
// that every recorded site still matches its pair in the underlying
// sequence. Used by tests to fail loudly on index drift.
func (ix *pairIndex) checkConsistency() error {
	for p, c := range ix.counts {
		set := ix.sites[p]
		if len(set) != c {
			return fmt.Errorf("pair %v: count %d, live sites %d", p, c, len(set))
		}
		if c <= 0 {
			return fmt.Errorf("pair %v: non-positive count %d retained", p, c)
		}
	}
	for p, set := range ix.sites {
		if _, ok := ix.counts[p]; !ok {
			return fmt.Errorf("pair %v: sites without count entry", p)
		}
		for occ := range set {
			s := ix.seqs[occ.doc]
			if s.dead[occ.pos] {
				return fmt.Errorf("pair %v: site %+v points at dead position", p, occ)
			}
			q := s.next[occ.pos]
			if q < 0 {
				return fmt.Errorf("pair %v: site %+v has no successor", p, occ)
			}
			if s.toks[occ.pos] != p.Left || s.toks[q] != p.Right {
				return fmt.Errorf("pair %v: site %+v holds (%d,%d)", p, occ, s.toks[occ.pos], s.toks[q])
			}
		}
	}
	return nil
}

// rescanCounts recomputes the frequency table from scratch. Reference
// implementation used by tests to validate incremental updates.
func rescanCounts(seqs []*sequence) map[Pair]int {
	counts := make(map[Pair]int)
	sites := make(map[Pair]map[occurrence]struct{})
	for doc, s := range seqs {
		scanSequence(s, doc, counts, sites)
	}
	return counts
}
