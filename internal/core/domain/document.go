package domain

import "time"

// Document is the decoded form of an ingested file.
// It is immutable once produced by a decoder; the chunker consumes it
// exactly once.
type Document struct {
	// SourceID identifies the origin (filename or logical source name).
	SourceID string

	// Content is the full decoded plain text.
	Content string

	// ByteSize is the size of the raw input in bytes.
	ByteSize int

	// LineCount is the number of lines in the decoded text.
	LineCount int

	// WordCount is the number of whitespace-separated words.
	WordCount int

	// Title is an optional human-readable title derived from the source.
	Title string

	// Format is the decoder that produced this document (e.g. "plaintext").
	Format string

	// IngestedAt is when the document was decoded.
	IngestedAt time.Time
}

// Passage is a bounded span of source text prepared for independent
// retrieval. Passages are created by the chunker and never mutated.
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// SourceID links the passage back to its document.
	SourceID string

	// Content is the passage text.
	Content string

	// Sequence is the ordinal position within the source document.
	Sequence int

	// StartChar and EndChar are approximate character offsets into the
	// source text. EndChar-StartChar always equals len(Content); offsets
	// may drift from true source positions because sentence splitting
	// discards whitespace.
	StartChar int
	EndChar   int

	// WordCount is the number of whitespace-separated words in Content.
	WordCount int

	// Section is an optional page or section label.
	Section string
}

// EmbeddedPassage pairs a passage with its vector representation.
// All vectors in one index share one dimension; the index rejects
// mismatches on upsert.
type EmbeddedPassage struct {
	Passage

	// Vector is the fixed-dimension embedding of Content.
	Vector []float32
}

// CorpusStats summarises the indexed corpus.
type CorpusStats struct {
	// TotalPassages is the number of embedded passages in the index.
	TotalPassages int

	// Sources is the sorted set of distinct source identifiers.
	Sources []string
}

// IngestReceipt reports the outcome of a successful ingestion.
type IngestReceipt struct {
	// SourceID is the source the text was ingested under.
	SourceID string

	// PassageCount is the number of passages indexed.
	PassageCount int
}
