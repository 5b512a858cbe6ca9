package chunker

import "strings"

// Tokenizer defines the unit chunk sizes are measured in.
// Join(Tokens(s)) must reproduce any normalized s.
type Tokenizer interface {
	Name() string
	Tokens(text string) []string
	Join(tokens []string) string
}

// Words splits normalized text on single spaces.
type Words struct{}

func (Words) Name() string { return "word" }

func (Words) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, " ")
}

func (Words) Join(tokens []string) string { return strings.Join(tokens, " ") }

// Runes treats every character as a token.
type Runes struct{}

func (Runes) Name() string { return "rune" }

func (Runes) Tokens(text string) []string {
	out := make([]string, 0, len(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}

func (Runes) Join(tokens []string) string { return strings.Join(tokens, "") }

// TokenizerFor resolves a configured unit name.
func TokenizerFor(unit string) (Tokenizer, bool) {
	switch unit {
	case "word", "":
		return Words{}, true
	case "rune":
		return Runes{}, true
	}
	return nil, false
}
