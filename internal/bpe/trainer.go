// Package bpe implements Byte Pair Encoding: learning a subword vocabulary
// from a pretokenized corpus by greedy pair merging, and deterministic
// re-application of the learned merges to new text. The training loop is
// incremental: a pair frequency index tracks every adjacency site so a merge
// touches only the positions it affects, never the whole corpus.
package bpe

import (
	"context"
	"log/slog"
)

// MergeRule records one learned merge. Rank is the 0-based order in which
// the rule was learned and is authoritative for encode-time replay: rules
// are always applied in ascending rank, never re-ranked by frequency.
type MergeRule struct {
	Rank   int    `json:"rank"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	Merged string `json:"merged"`
}

// TrainOptions configures a training run.
type TrainOptions struct {
	// TargetVocabSize is the vocabulary size at which training stops. A
	// target at or below the initial vocabulary size is valid and yields no
	// merges.
	TargetVocabSize int

	// Workers bounds the parallelism of the initial pair-counting scan.
	// Zero or negative means GOMAXPROCS. The merge loop itself is always
	// sequential: each merge changes the adjacency structure the next
	// selection depends on.
	Workers int

	// Logger receives training progress. Nil means slog.Default().
	Logger *slog.Logger
}

// Result holds the artifacts of a training run.
type Result struct {
	Vocab  *Vocabulary
	Merges []MergeRule

	// Exhausted reports that no mergeable pair remained before the target
	// vocabulary size was reached. This is a normal stopping condition on
	// small corpora, not an error.
	Exhausted bool

	// Sequences holds the final token IDs of every training document, in
	// input order. Re-encoding the original corpus with the learned rules
	// reproduces these exactly.
	Sequences [][]int
}

// Train learns a BPE vocabulary from pretokenized documents. Each document
// is an ordered slice of initial string tokens as produced by the
// pretokenizer. Cancellation is honoured between merge iterations, never
// mid-merge, so the returned state is always consistent when err is nil.
func Train(ctx context.Context, docs [][]string, opts TrainOptions) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	vocab := NewVocabulary()
	seqs := make([]*sequence, len(docs))
	for i, doc := range docs {
		ids := make([]int, len(doc))
		for j, tok := range doc {
			ids[j] = vocab.Add(tok)
		}
		seqs[i] = newSequence(ids)
	}

	res := &Result{Vocab: vocab}
	if len(docs) == 0 {
		log.InfoContext(ctx, "training skipped: empty corpus")
		res.Exhausted = true
		res.Sequences = [][]int{}
		return res, nil
	}

	ix, err := buildPairIndex(ctx, seqs, opts.Workers)
	if err != nil {
		return nil, err
	}
	sel := newSelector(ix, vocab)

	log.DebugContext(ctx, "initial scan complete",
		slog.Int("documents", len(docs)),
		slog.Int("initial_vocab", vocab.Size()),
		slog.Int("distinct_pairs", len(ix.counts)),
	)

	for vocab.Size() < opts.TargetVocabSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pair, count, ok := sel.next()
		if !ok {
			res.Exhausted = true
			log.InfoContext(ctx, "pairs exhausted before target",
				slog.Int("vocab_size", vocab.Size()),
				slog.Int("target", opts.TargetVocabSize),
			)
			break
		}

		left, _ := vocab.Token(pair.Left)
		right, _ := vocab.Token(pair.Right)
		merged := left + right

		rule := MergeRule{
			Rank:   len(res.Merges),
			Left:   left,
			Right:  right,
			Merged: merged,
		}
		res.Merges = append(res.Merges, rule)
		// Add is idempotent: if the merged string collides with an existing
		// token (e.g. initial token "aa" and merge "a"+"a"), the rule reuses
		// that token's ID and the vocabulary does not grow for this merge.
		mergedID := vocab.Add(merged)

		for _, grown := range ix.applyMerge(pair, mergedID) {
			sel.push(grown)
		}

		log.DebugContext(ctx, "merge learned",
			slog.Int("rank", rule.Rank),
			slog.String("left", left),
			slog.String("right", right),
			slog.Int("count", count),
		)
	}

	res.Sequences = make([][]int, len(seqs))
	for i, s := range seqs {
		res.Sequences[i] = s.tokens()
	}

	return res, nil
}
