// Package chunker splits decoded text into overlapping passages with
// positional metadata.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
)

// DefaultChunkSize is the default maximum passage length in characters.
const DefaultChunkSize = 500

// DefaultOverlap is the default upper bound on the overlap carried
// between passages, in characters. The effective overlap is much
// smaller: at most a tenth of this value in words, and never more than
// 30% of the closed passage's words.
const DefaultOverlap = 50

// Chunker accumulates sentence-like units into passages.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum passage length in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap bound in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits text into ordered passages labelled with sourceID.
//
// Text is first split into sentence-like units on terminal punctuation.
// Sentences are accumulated greedily: when appending the next sentence
// would exceed the chunk size and the buffer is non-empty, the buffer is
// closed as a passage and the next buffer is seeded with a suffix of the
// trailing words of the closed one.
//
// Character offsets are derived incrementally from the previous
// passage's end position, not from a re-scan of the source, so they may
// drift from true source positions when splitting discards whitespace.
// EndChar-StartChar always equals the passage content length.
func (c *Chunker) Chunk(text, sourceID string) ([]domain.Passage, error) {
	if c.chunkSize <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if c.overlap < 0 {
		return nil, domain.ErrInvalidInput
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	var passages []domain.Passage
	buffer := ""
	start := 0

	closePassage := func() {
		words := strings.Fields(buffer)
		end := start + len(buffer)
		passages = append(passages, domain.Passage{
			ID:        uuid.New().String(),
			SourceID:  sourceID,
			Content:   buffer,
			Sequence:  len(passages),
			StartChar: start,
			EndChar:   end,
			WordCount: len(words),
		})

		// Seed the next buffer with the overlap suffix: the trailing
		// words of the closed buffer, capped at 30% of its word count
		// and at a tenth of the configured overlap.
		n := int(float64(len(words)) * 0.3)
		if limit := c.overlap / 10; n > limit {
			n = limit
		}
		if n > 0 {
			buffer = strings.Join(words[len(words)-n:], " ")
		} else {
			buffer = ""
		}
		start = end - len(buffer)
	}

	for _, sentence := range sentences {
		if buffer != "" && len(buffer)+1+len(sentence) > c.chunkSize {
			closePassage()
		}
		if buffer == "" {
			buffer = sentence
		} else {
			buffer += " " + sentence
		}
	}
	if buffer != "" {
		closePassage()
	}

	return passages, nil
}

// splitSentences splits text into sentence-like units on terminal
// punctuation. This is a heuristic boundary, not grammar-aware:
// abbreviations are split like any other full stop.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()

	return sentences
}
