package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"articlerag/internal/domain"
	"articlerag/internal/embedding/hashing"
)

// tableEmbedder returns fixed vectors for known texts.
type tableEmbedder struct {
	name string
	dim  int
	vecs map[string][]float32
}

func (e *tableEmbedder) Name() string   { return e.name }
func (e *tableEmbedder) Dimension() int { return e.dim }

func (e *tableEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := e.vecs[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

// failingEmbedder delegates to a hashing embedder but fails on any text
// containing trigger.
type failingEmbedder struct {
	*hashing.Embedder
	trigger string
	calls   atomic.Int32
}

func newFailingEmbedder(dim int, trigger string) *failingEmbedder {
	h, err := hashing.NewEmbedder(dim)
	if err != nil {
		panic(err)
	}
	return &failingEmbedder{Embedder: h, trigger: trigger}
}

func (e *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if strings.Contains(text, e.trigger) {
		return nil, errors.New("503 service unavailable")
	}
	return e.Embedder.Embed(ctx, text)
}

type recordingGenerator struct {
	answer   string
	err      error
	question string
	got      []domain.Passage
}

func (g *recordingGenerator) Generate(_ context.Context, question string, passages []domain.Passage) (string, error) {
	g.question = question
	g.got = passages
	return g.answer, g.err
}
