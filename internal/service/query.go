package service

import (
	"context"
	"errors"
	"strings"

	"articlerag/internal/domain"
)

var ErrEmptyQuestion = errors.New("empty question")

// Answer is a generated answer together with the passages it was based on.
type Answer struct {
	Question string
	Text     string
	Passages []domain.Passage
}

// QueryEngine answers questions from retrieved passages.
type QueryEngine struct {
	retriever *Retriever
	generator domain.Generator
}

func NewQueryEngine(r *Retriever, g domain.Generator) *QueryEngine {
	return &QueryEngine{retriever: r, generator: g}
}

// Ask retrieves k passages for question and generates an answer from them.
// On any failure no answer is returned.
func (q *QueryEngine) Ask(ctx context.Context, question string, k int) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	passages, err := q.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}
	text, err := q.generator.Generate(ctx, question, passages)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewOracleError("generate answer", err)
	}
	return &Answer{Question: question, Text: text, Passages: passages}, nil
}

// Citation lists the passages that came from one article.
type Citation struct {
	Title      string
	Author     string
	Date       string
	PassageIDs []int64
}

// Citations groups passages by title in order of first appearance.
func Citations(passages []domain.Passage) []Citation {
	var out []Citation
	pos := make(map[string]int)
	for _, p := range passages {
		i, ok := pos[p.Title]
		if !ok {
			i = len(out)
			pos[p.Title] = i
			out = append(out, Citation{Title: p.Title, Author: p.Author, Date: p.Date})
		}
		out[i].PassageIDs = append(out[i].PassageIDs, p.ID)
	}
	return out
}
