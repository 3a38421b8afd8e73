package bpe

// Vocabulary is a bijective token <-> ID mapping. IDs are assigned in
// insertion order: first-seen initial tokens during the corpus scan, then
// merged tokens in the order their merge rules were learned. Two training
// runs over identical input therefore produce identical mappings.
type Vocabulary struct {
	tokens []string
	ids    map[string]int
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{ids: make(map[string]int)}
}

// Add returns the ID for tok, assigning the next free ID if the token is new.
func (v *Vocabulary) Add(tok string) int {
	if id, ok := v.ids[tok]; ok {
		return id
	}
	id := len(v.tokens)
	v.tokens = append(v.tokens, tok)
	v.ids[tok] = id
	return id
}

// ID looks up the ID for tok.
func (v *Vocabulary) ID(tok string) (int, bool) {
	id, ok := v.ids[tok]
	return id, ok
}

// Token returns the string form of the token with the given ID.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Size reports the number of distinct tokens.
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// Tokens returns all tokens in ID order. The slice is a copy.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}

// FromTokens rebuilds a vocabulary from an ID-ordered token list, such as one
// loaded from a persisted model. Duplicate tokens are rejected by the caller
// (see internal/model); here the last write would win, so callers must
// validate first.
func FromTokens(tokens []string) *Vocabulary {
	v := NewVocabulary()
	for _, tok := range tokens {
		v.Add(tok)
	}
	return v
}
