package bpe

import "container/heap"

// candidate is one entry in the selection queue. count is the count observed
// when the entry was pushed; it may be stale and is revalidated on pop.
type candidate struct {
	pair  Pair
	count int
	left  string
	right string
}

// candidateHeap orders candidates by count descending, then lexicographically
// ascending on (left token string, right token string). The string order is
// the documented tie-break: among equal-frequency pairs the smallest by left
// token, then right token, wins. Without a fixed tie order BPE training is
// not reproducible.
type candidateHeap []*candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count > h[j].count
	}
	if h[i].left != h[j].left {
		return h[i].left < h[j].left
	}
	return h[i].right < h[j].right
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(*candidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// selector picks the next pair to merge. It keeps a lazy max-heap over the
// pair index: entries carry the count at push time, and a popped entry whose
// count no longer matches the live count is reinserted with the fresh count
// instead of being returned. Every pair with a positive count has at least
// one heap entry, because pairs are seeded at build time and re-pushed by the
// trainer whenever a merge increases their count.
type selector struct {
	h     candidateHeap
	ix    *pairIndex
	vocab *Vocabulary
}

func newSelector(ix *pairIndex, vocab *Vocabulary) *selector {
	s := &selector{ix: ix, vocab: vocab}
	for _, p := range ix.pairs() {
		s.push(p)
	}
	return s
}

func (s *selector) push(p Pair) {
	c := s.ix.count(p)
	if c <= 0 {
		return
	}
	left, _ := s.vocab.Token(p.Left)
	right, _ := s.vocab.Token(p.Right)
	heap.Push(&s.h, &candidate{pair: p, count: c, left: left, right: right})
}

// next returns the highest-count pair, applying the tie-break, or ok=false
// when no pair with a positive count remains.
func (s *selector) next() (Pair, int, bool) {
	for s.h.Len() > 0 {
		top := heap.Pop(&s.h).(*candidate)
		cur := s.ix.count(top.pair)
		if cur <= 0 {
			continue
		}
		if cur != top.count {
			top.count = cur
			heap.Push(&s.h, top)
			continue
		}
		return top.pair, top.count, true
	}
	return Pair{}, 0, false
}
