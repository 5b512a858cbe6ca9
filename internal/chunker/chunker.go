package chunker

import (
	"iter"
	"slices"

	"articlerag/internal/domain"
)

// Chunker splits normalized text into fixed-size windows of tokens where
// consecutive windows share overlap tokens.
type Chunker struct {
	chunkSize int
	overlap   int
	tokenizer Tokenizer
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithTokenizer sets the unit chunk sizes are measured in. Defaults to Words.
func WithTokenizer(t Tokenizer) Option {
	return func(c *Chunker) {
		if t != nil {
			c.tokenizer = t
		}
	}
}

// New validates the window geometry before any text is seen.
func New(chunkSize, overlap int, opts ...Option) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, domain.Configf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, domain.Configf("overlap must be in [0, %d), got %d", chunkSize, overlap)
	}
	c := &Chunker{chunkSize: chunkSize, overlap: overlap, tokenizer: Words{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Chunker) ChunkSize() int { return c.chunkSize }

func (c *Chunker) Overlap() int { return c.overlap }

func (c *Chunker) Tokenizer() Tokenizer { return c.tokenizer }

// Split yields the windows of Normalize(text) left to right. Window i starts at
// token i*(chunkSize-overlap); the last window is the first to reach the end of
// the text and may be shorter. Text of at most chunkSize tokens, including the
// empty text, yields exactly one window. The sequence can be ranged over any
// number of times.
func (c *Chunker) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		tokens := c.tokenizer.Tokens(Normalize(text))
		if len(tokens) <= c.chunkSize {
			yield(c.tokenizer.Join(tokens))
			return
		}
		step := c.chunkSize - c.overlap
		for start := 0; ; start += step {
			end := min(start+c.chunkSize, len(tokens))
			if !yield(c.tokenizer.Join(tokens[start:end])) {
				return
			}
			if end == len(tokens) {
				return
			}
		}
	}
}

// Windows collects Split(text).
func (c *Chunker) Windows(text string) []string {
	return slices.Collect(c.Split(text))
}

// Chunk returns the windows of an article's text.
func (c *Chunker) Chunk(a domain.Article) []string {
	return c.Windows(a.Text)
}
