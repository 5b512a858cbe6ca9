package domain

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
)

// Article is a single long-form article produced by extraction.
// Missing metadata fields are empty strings.
type Article struct {
	Text   string
	Title  string
	Author string
	Date   string
	Bio    string
	Source string
}

// Metadata is the provenance record copied from an article into each of its chunks.
type Metadata struct {
	Title  string
	Author string
	Date   string
	Bio    string
	Source string
}

// Metadata returns the article's provenance record.
func (a Article) Metadata() Metadata {
	return Metadata{Title: a.Title, Author: a.Author, Date: a.Date, Bio: a.Bio, Source: a.Source}
}

// Key fingerprints the article content. Rebuilding the same source yields the same key.
func (a Article) Key() string {
	h := sha1.New()
	for _, part := range []string{a.Title, a.Author, a.Date, a.Text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}

// Chunk is a window of normalized article text, the unit of retrieval.
// ID is the join key between the vector index and the document store.
type Chunk struct {
	ID         int64
	Text       string
	Metadata   Metadata
	ArticleKey string
}

// Passage is a retrieved chunk with its provenance and distance to the query.
type Passage struct {
	ID       int64
	Text     string
	Title    string
	Author   string
	Date     string
	Bio      string
	Source   string
	Distance float32
}

// NewPassage binds a chunk to the distance it was found at.
func NewPassage(c Chunk, distance float32) Passage {
	return Passage{
		ID:       c.ID,
		Text:     c.Text,
		Title:    c.Metadata.Title,
		Author:   c.Metadata.Author,
		Date:     c.Metadata.Date,
		Bio:      c.Metadata.Bio,
		Source:   c.Metadata.Source,
		Distance: distance,
	}
}

// Embedder converts text into a vector of a fixed dimension.
// It must be deterministic within a build or query session.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator composes an answer to a question from retrieved passages.
// Passages are given in retrieval order.
type Generator interface {
	Generate(ctx context.Context, question string, passages []Passage) (string, error)
}
