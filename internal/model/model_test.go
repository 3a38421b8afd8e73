package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/example/go-bpe/internal/bpe"
)

// trainFixture learns a small model to round-trip through persistence.
func trainFixture(t *testing.T) *bpe.Result {
	t.Helper()
	res, err := bpe.Train(context.Background(), [][]string{
		{"the", "cat", "sat"},
		{"the", "dog", "sat"},
	}, bpe.TrainOptions{TargetVocabSize: 6})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return res
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	res := trainFixture(t)
	path := filepath.Join(t.TempDir(), "bpe.json")

	if err := Save(path, res.Vocab, res.Merges, "whitespace"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if f.Pretokenizer != "whitespace" {
		t.Errorf("pretokenizer = %q; want whitespace", f.Pretokenizer)
	}
	if !reflect.DeepEqual(f.Tokens, res.Vocab.Tokens()) {
		t.Errorf("tokens = %v; want %v", f.Tokens, res.Vocab.Tokens())
	}
	if !reflect.DeepEqual(f.Merges, res.Merges) {
		t.Errorf("merges = %v; want %v", f.Merges, res.Merges)
	}

	// The rebuilt vocabulary assigns the same IDs.
	vocab := f.Vocabulary()
	for _, tok := range res.Vocab.Tokens() {
		want, _ := res.Vocab.ID(tok)
		got, ok := vocab.ID(tok)
		if !ok || got != want {
			t.Errorf("ID(%q) = %d, %v; want %d", tok, got, ok, want)
		}
	}
}

func TestLoad_RoundTripEncodesIdentically(t *testing.T) {
	res := trainFixture(t)
	path := filepath.Join(t.TempDir(), "bpe.json")

	if err := Save(path, res.Vocab, res.Merges, "whitespace"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	orig, err := bpe.NewEncoder(res.Vocab, res.Merges, nil)
	if err != nil {
		t.Fatalf("NewEncoder(original): %v", err)
	}
	loaded, err := bpe.NewEncoder(f.Vocabulary(), f.Merges, nil)
	if err != nil {
		t.Fatalf("NewEncoder(loaded): %v", err)
	}

	doc := []string{"the", "cat", "sat", "on", "the", "dog"}
	a, aUnknown := orig.EncodeTokens(doc)
	b, bUnknown := loaded.EncodeTokens(doc)
	if !reflect.DeepEqual(a, b) || aUnknown != bUnknown {
		t.Errorf("original (%v, %d) != loaded (%v, %d)", a, aUnknown, b, bUnknown)
	}
}

func TestValidate_Failures(t *testing.T) {
	base := func() File {
		return File{
			Version:      1,
			Pretokenizer: "whitespace",
			Tokens:       []string{"a", "b", "ab"},
			Merges: []bpe.MergeRule{
				{Rank: 0, Left: "a", Right: "b", Merged: "ab"},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*File)
	}{
		{
			name:   "unsupported version",
			mutate: func(f *File) { f.Version = 99 },
		},
		{
			name:   "duplicate token",
			mutate: func(f *File) { f.Tokens = append(f.Tokens, "a") },
		},
		{
			name:   "non-contiguous rank",
			mutate: func(f *File) { f.Merges[0].Rank = 1 },
		},
		{
			name:   "merged token mismatch",
			mutate: func(f *File) { f.Merges[0].Merged = "ba" },
		},
		{
			name:   "rule token missing from vocabulary",
			mutate: func(f *File) { f.Tokens = []string{"a", "b"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base()
			tt.mutate(&f)
			if err := f.Validate(); !errors.Is(err, ErrInvalidModel) {
				t.Fatalf("Validate = %v; want ErrInvalidModel", err)
			}
		})
	}
}

func TestValidate_AcceptsConsistentModel(t *testing.T) {
	f := File{
		Version:      1,
		Pretokenizer: "regex",
		Tokens:       []string{"a", "b", "ab", "abab"},
		Merges: []bpe.MergeRule{
			{Rank: 0, Left: "a", Right: "b", Merged: "ab"},
			{Rank: 1, Left: "ab", Right: "ab", Merged: "abab"},
		},
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_RejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()

	badJSON := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badJSON, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(badJSON); err == nil {
		t.Error("Load accepted malformed JSON")
	}

	// Structurally valid JSON with reordered ranks must be refused: rule
	// order changes encoding results.
	reordered := filepath.Join(dir, "reordered.json")
	payload := `{
	  "version": 1,
	  "pretokenizer": "whitespace",
	  "tokens": ["a", "b", "ab", "abab"],
	  "merges": [
	    {"rank": 1, "left": "ab", "right": "ab", "merged": "abab"},
	    {"rank": 0, "left": "a", "right": "b", "merged": "ab"}
	  ]
	}`
	if err := os.WriteFile(reordered, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(reordered); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("Load(reordered ranks) = %v; want ErrInvalidModel", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/bpe.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
