package bpe

import (
	"reflect"
	"testing"
)

func TestSequence_MergeAtRewiresLinks(t *testing.T) {
	s := newSequence([]int{0, 1, 2, 3})

	s.mergeAt(1, 9) // fuse positions 1 and 2

	if got := s.tokens(); !reflect.DeepEqual(got, []int{0, 9, 3}) {
		t.Fatalf("tokens = %v; want [0 9 3]", got)
	}
	if s.length() != 3 {
		t.Errorf("length = %d; want 3", s.length())
	}
	// Position 3 links back over the tombstoned position 2.
	if s.prev[3] != 1 {
		t.Errorf("prev[3] = %d; want 1", s.prev[3])
	}
	if s.next[1] != 3 {
		t.Errorf("next[1] = %d; want 3", s.next[1])
	}
}

func TestSequence_MergeAtTail(t *testing.T) {
	s := newSequence([]int{5, 6})

	s.mergeAt(0, 7)

	if got := s.tokens(); !reflect.DeepEqual(got, []int{7}) {
		t.Fatalf("tokens = %v; want [7]", got)
	}
	if s.next[0] != -1 {
		t.Errorf("next[0] = %d; want -1", s.next[0])
	}
}

func TestSequence_DegenerateInputs(t *testing.T) {
	empty := newSequence(nil)
	if empty.length() != 0 {
		t.Errorf("empty length = %d; want 0", empty.length())
	}
	if got := empty.tokens(); len(got) != 0 {
		t.Errorf("empty tokens = %v; want none", got)
	}

	single := newSequence([]int{4})
	if got := single.tokens(); !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("single tokens = %v; want [4]", got)
	}
}
