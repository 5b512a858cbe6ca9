// Package extractive answers questions offline by quoting the passage
// sentences that best match the question.
package extractive

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"articlerag/internal/domain"
)

// NoAnswer is returned when there is nothing to quote.
const NoAnswer = "No relevant passages were found."

// queryBoost is added per distinct question term a sentence contains.
const queryBoost = 2.0

// Generator ranks sentences by corpus word frequency (stopwords filtered),
// boosted by overlap with the question.
type Generator struct {
	maxSentences int
	tokenPattern *regexp.Regexp
	sentences    *regexp.Regexp
	stopwords    map[string]struct{}
}

// New creates an extractive generator quoting at most maxSentences sentences.
func New(maxSentences int) *Generator {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	return &Generator{
		maxSentences: maxSentences,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentences:    regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`),
		stopwords:    defaultStopwords(),
	}
}

type sentence struct {
	text   string
	tokens []string
	score  float64
	pos    int
}

// Generate returns the best sentences of passages in reading order:
// passage order first, then position within the passage.
func (g *Generator) Generate(ctx context.Context, question string, passages []domain.Passage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var sents []sentence
	for _, p := range passages {
		for _, s := range g.sentences.FindAllString(p.Text, -1) {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			sents = append(sents, sentence{text: s, tokens: g.tokens(s), pos: len(sents)})
		}
	}
	if len(sents) == 0 {
		return NoAnswer, nil
	}

	// Compute word frequencies
	freq := map[string]float64{}
	for _, s := range sents {
		for _, tok := range s.tokens {
			if _, ok := g.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	query := map[string]struct{}{}
	for _, tok := range g.tokens(question) {
		if _, ok := g.stopwords[tok]; !ok {
			query[tok] = struct{}{}
		}
	}

	for i := range sents {
		s := &sents[i]
		matched := map[string]struct{}{}
		for _, tok := range s.tokens {
			s.score += freq[tok]
			if _, ok := query[tok]; ok {
				matched[tok] = struct{}{}
			}
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(s.tokens)); l > 0 {
			s.score /= math.Sqrt(l)
		}
		s.score += queryBoost * float64(len(matched))
	}

	sort.SliceStable(sents, func(i, j int) bool { return sents[i].score > sents[j].score })
	n := min(g.maxSentences, len(sents))
	selected := sents[:n]
	// Keep original order among selected
	sort.Slice(selected, func(i, j int) bool { return selected[i].pos < selected[j].pos })

	out := make([]string, n)
	for i, s := range selected {
		out[i] = s.text
	}
	return strings.Join(out, " "), nil
}

func (g *Generator) tokens(text string) []string {
	return g.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "why", "how", "who", "when", "where", "which", "does", "did", "do",
		"le", "la", "les", "un", "une", "des", "du", "de", "et", "ou", "en", "au", "aux", "à", "dans", "par", "pour", "sur", "avec", "est", "sont", "ce", "cette", "ces", "qui", "que", "quoi", "quel", "quelle", "pourquoi", "comment", "il", "elle", "ils", "elles", "se", "sa", "son", "ses", "ne", "pas", "plus", "d", "l", "qu",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
