// Package model persists and restores trained tokenizer artifacts: the
// ID-ordered vocabulary and the rank-ordered merge rule list. Together they
// fully reconstruct encoding behaviour, so the on-disk order must be
// preserved exactly — reordering merge rules changes tokenizations.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/go-bpe/internal/bpe"
)

// ErrInvalidModel is returned when a persisted model fails validation.
// Loading an inconsistent model is fatal for that load; the encoder must
// never run on rules that would silently tokenize differently than the
// training run that produced them.
var ErrInvalidModel = errors.New("invalid tokenizer model")

const currentVersion = 1

// File is the serialized form of a trained tokenizer.
type File struct {
	Version      int             `json:"version"`
	Pretokenizer string          `json:"pretokenizer"`
	Tokens       []string        `json:"tokens"`
	Merges       []bpe.MergeRule `json:"merges"`
}

// Save writes the artifacts of a training run to path as JSON.
func Save(path string, vocab *bpe.Vocabulary, merges []bpe.MergeRule, pretokenizer string) error {
	f := File{
		Version:      currentVersion,
		Pretokenizer: pretokenizer,
		Tokens:       vocab.Tokens(),
		Merges:       merges,
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tokenizer model: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write tokenizer model: %w", err)
	}
	return nil
}

// Load reads and validates a persisted model.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer model: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tokenizer model %q: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Vocabulary rebuilds the token <-> ID mapping. IDs are the token list
// indices, so the mapping is identical to the one the training run produced.
func (f *File) Vocabulary() *bpe.Vocabulary {
	return bpe.FromTokens(f.Tokens)
}

// Validate checks the internal consistency of the model: a supported
// version, a duplicate-free token list, and merge rules whose ranks are
// contiguous from zero and whose merged token is the concatenation of its
// pair, with all three tokens present in the vocabulary.
func (f *File) Validate() error {
	if f.Version != currentVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidModel, f.Version)
	}

	seen := make(map[string]int, len(f.Tokens))
	for id, tok := range f.Tokens {
		if prev, dup := seen[tok]; dup {
			return fmt.Errorf("%w: token %q appears at IDs %d and %d", ErrInvalidModel, tok, prev, id)
		}
		seen[tok] = id
	}

	for i, r := range f.Merges {
		if r.Rank != i {
			return fmt.Errorf("%w: merge rank %d at position %d", ErrInvalidModel, r.Rank, i)
		}
		if r.Merged != r.Left+r.Right {
			return fmt.Errorf("%w: merge %d records %q+%q -> %q", ErrInvalidModel, i, r.Left, r.Right, r.Merged)
		}
		for _, tok := range []string{r.Left, r.Right, r.Merged} {
			if _, ok := seen[tok]; !ok {
				return fmt.Errorf("%w: merge %d references token %q not in vocabulary", ErrInvalidModel, i, tok)
			}
		}
	}

	return nil
}
