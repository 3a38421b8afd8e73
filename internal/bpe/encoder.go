package bpe

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidRules is returned when a merge rule set fails validation: ranks
// not contiguous from zero, a merged token that is not the concatenation of
// its pair, or a rule token missing from the vocabulary. An encoder never
// operates on such a set; silently replaying it would produce wrong
// tokenizations.
var ErrInvalidRules = errors.New("invalid merge rules")

// Pretokenizer is the external splitting contract consumed by the encoder.
// It must be the same splitter the training corpus was prepared with.
type Pretokenizer interface {
	Split(text string) ([]string, error)
}

// unknownID marks a pretoken absent from the vocabulary while rules are
// being replayed. Merges only ever reference known tokens, so the sentinel
// can never match a rule.
const unknownID = -1

// compiled is a merge rule with its tokens interned to vocabulary IDs.
type compiled struct {
	left   int
	right  int
	merged int
}

// Encoder maps text to token IDs by replaying a frozen, ordered merge rule
// list over pretokenized input. It holds no mutable state after
// construction and is safe for concurrent use.
type Encoder struct {
	vocab      *Vocabulary
	rules      []compiled
	pre        Pretokenizer
	unknownTo  int // substitute ID when mapUnknown is set
	mapUnknown bool
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithUnknownID makes the encoder substitute id for tokens absent from the
// vocabulary instead of the default policy of dropping them. The dropped or
// substituted tokens are counted either way.
func WithUnknownID(id int) EncoderOption {
	return func(e *Encoder) {
		e.unknownTo = id
		e.mapUnknown = true
	}
}

// NewEncoder validates the rule set against the vocabulary and compiles it
// for replay. Validation failures wrap ErrInvalidRules. pre may be nil when
// the caller only uses EncodeTokens.
func NewEncoder(vocab *Vocabulary, rules []MergeRule, pre Pretokenizer, opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{
		vocab: vocab,
		rules: make([]compiled, len(rules)),
		pre:   pre,
	}
	for _, opt := range opts {
		opt(e)
	}

	for i, r := range rules {
		if r.Rank != i {
			return nil, fmt.Errorf("%w: rank %d at position %d", ErrInvalidRules, r.Rank, i)
		}
		if r.Merged != r.Left+r.Right {
			return nil, fmt.Errorf("%w: rule %d merges %q+%q into %q", ErrInvalidRules, i, r.Left, r.Right, r.Merged)
		}
		left, ok := vocab.ID(r.Left)
		if !ok {
			return nil, fmt.Errorf("%w: rule %d left token %q not in vocabulary", ErrInvalidRules, i, r.Left)
		}
		right, ok := vocab.ID(r.Right)
		if !ok {
			return nil, fmt.Errorf("%w: rule %d right token %q not in vocabulary", ErrInvalidRules, i, r.Right)
		}
		merged, ok := vocab.ID(r.Merged)
		if !ok {
			return nil, fmt.Errorf("%w: rule %d merged token %q not in vocabulary", ErrInvalidRules, i, r.Merged)
		}
		e.rules[i] = compiled{left: left, right: right, merged: merged}
	}

	return e, nil
}

// Encode pretokenizes text, replays every merge rule in rank order, and maps
// the surviving tokens to IDs. unknown reports how many tokens were absent
// from the vocabulary and therefore dropped (or substituted, under
// WithUnknownID); it is never silently folded into the ID sequence.
func (e *Encoder) Encode(text string) (ids []int, unknown int, err error) {
	pretoks, err := e.pre.Split(text)
	if err != nil {
		return nil, 0, fmt.Errorf("pretokenize: %w", err)
	}
	ids, unknown = e.EncodeTokens(pretoks)
	return ids, unknown, nil
}

// EncodeTokens encodes an already-pretokenized sequence. This is the replay
// core shared with Encode; it exists so callers holding pretokenized
// documents (the training corpus, typically) can bypass the splitter.
func (e *Encoder) EncodeTokens(pretoks []string) (ids []int, unknown int) {
	ids = make([]int, len(pretoks))
	for i, tok := range pretoks {
		if id, ok := e.vocab.ID(tok); ok {
			ids[i] = id
		} else {
			ids[i] = unknownID
		}
	}

	for _, r := range e.rules {
		ids = applyRule(ids, r)
	}

	out := ids[:0]
	for _, id := range ids {
		if id == unknownID {
			unknown++
			if e.mapUnknown {
				out = append(out, e.unknownTo)
			}
			continue
		}
		out = append(out, id)
	}
	return out, unknown
}

// applyRule merges every adjacent (left, right) occurrence in ids, consuming
// greedily left to right without overlap: in A A A with rule (A,A) the first
// two tokens fuse and the third survives. The same consumption rule governs
// training-time merge application.
func applyRule(ids []int, r compiled) []int {
	w := 0
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == r.left && ids[i+1] == r.right {
			ids[w] = r.merged
			i += 2
		} else {
			ids[w] = ids[i]
			i++
		}
		w++
	}
	return ids[:w]
}

// EncodeBatch encodes independent texts concurrently. Encoding shares only
// the frozen rules and vocabulary, so texts fan out across workers freely.
// Results are returned in input order; unknowns are summed across texts.
func (e *Encoder) EncodeBatch(ctx context.Context, texts []string, workers int) (ids [][]int, unknown int, err error) {
	if workers <= 0 {
		workers = len(texts)
	}

	ids = make([][]int, len(texts))
	unknowns := make([]int, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, n, err := e.Encode(text)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			ids[i] = out
			unknowns[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for _, n := range unknowns {
		unknown += n
	}
	return ids, unknown, nil
}
