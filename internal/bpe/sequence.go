package bpe

// sequence holds one document's token IDs in an index-addressable array with
// live-position links. A merge fuses a position with its successor in place:
// the successor is tombstoned and the links around it are rewired. Positions
// never shift, so (document, position) references held by the pair index
// remain valid until the position is consumed.
type sequence struct {
	toks []int // token ID at each original position; stale once dead
	next []int // next live position, -1 at the tail
	prev []int // previous live position, -1 at the head
	dead []bool
	live int
}

func newSequence(ids []int) *sequence {
	n := len(ids)
	s := &sequence{
		toks: ids,
		next: make([]int, n),
		prev: make([]int, n),
		dead: make([]bool, n),
		live: n,
	}
	for i := range ids {
		s.next[i] = i + 1
		s.prev[i] = i - 1
	}
	if n > 0 {
		s.next[n-1] = -1
	}
	return s
}

// len reports the number of live positions.
func (s *sequence) length() int {
	return s.live
}

// tokens returns the live token IDs in order.
func (s *sequence) tokens() []int {
	out := make([]int, 0, s.live)
	for i := s.head(); i >= 0; i = s.next[i] {
		out = append(out, s.toks[i])
	}
	return out
}

// head returns the first live position, or -1 for an empty sequence.
// Position 0 can never be tombstoned: a merge always consumes the successor.
func (s *sequence) head() int {
	if len(s.toks) == 0 {
		return -1
	}
	return 0
}

// mergeAt fuses position p with its live successor into mergedID, stored at
// p. The caller guarantees p is live and has a live successor.
func (s *sequence) mergeAt(p, mergedID int) {
	q := s.next[p]
	s.toks[p] = mergedID
	s.dead[q] = true
	s.next[p] = s.next[q]
	if s.next[q] >= 0 {
		s.prev[s.next[q]] = p
	}
	s.live--
}
