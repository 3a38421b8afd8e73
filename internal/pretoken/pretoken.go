// Package pretoken splits raw text into the initial atomic tokens that BPE
// training and encoding operate on. Splitting is deterministic and
// restartable: the same text always yields the same ordered token sequence.
package pretoken

import (
	"fmt"
	"strings"
)

const (
	NameWhitespace = "whitespace"
	NameRegex      = "regex"
)

// Pretokenizer produces a finite, ordered sequence of initial string tokens
// from raw text.
type Pretokenizer interface {
	Split(text string) ([]string, error)
}

// ForName returns the pretokenizer registered under name.
func ForName(name string) (Pretokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameWhitespace:
		return Whitespace{}, nil
	case NameRegex:
		return NewRegex(DefaultPattern)
	default:
		return nil, fmt.Errorf("unknown pretokenizer %q (want %s|%s)", name, NameWhitespace, NameRegex)
	}
}

// Whitespace splits on Unicode whitespace runs, discarding the whitespace.
// Word-level splitting keeps vocabularies small and readable; it is the
// splitter used throughout the package tests.
type Whitespace struct{}

func (Whitespace) Split(text string) ([]string, error) {
	return strings.Fields(text), nil
}
