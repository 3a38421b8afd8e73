package pretoken

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// DefaultPattern is a GPT-4 style splitting pattern: contractions, words
// with an optional leading non-letter, digit runs capped at three, punctuation
// runs with an optional leading space, and isolated whitespace/newlines.
// regexp2 (Go/.NET syntax) has no possessive quantifiers, so atomic groups
// stand in for the PCRE originals.
const DefaultPattern = `'(?i:[sdmt]|ll|ve|re)|(?>[^\r\n\p{L}\p{N}]?)\p{L}+|\p{N}{1,3}| ?(?>[^\s\p{L}\p{N}]+)[\r\n]*|\s*[\r\n]|\s+(?!\S)|\s+`

// Regex splits text by walking the matches of a regexp2 pattern. Every match
// becomes one initial token; text between matches is dropped (the default
// pattern matches exhaustively, so nothing is lost with it).
type Regex struct {
	pattern string
	re      *regexp2.Regexp
}

// NewRegex compiles pattern for splitting.
func NewRegex(pattern string) (*Regex, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile pretokenizer pattern: %w", err)
	}
	return &Regex{pattern: pattern, re: re}, nil
}

// Pattern returns the pattern the splitter was compiled from.
func (r *Regex) Pattern() string {
	return r.pattern
}

func (r *Regex) Split(text string) ([]string, error) {
	var out []string

	m, err := r.re.FindStringMatch(text)
	if err != nil {
		return nil, fmt.Errorf("pretokenizer match: %w", err)
	}
	for m != nil {
		out = append(out, m.String())
		m, err = r.re.FindNextMatch(m)
		if err != nil {
			return nil, fmt.Errorf("pretokenizer match: %w", err)
		}
	}

	return out, nil
}
