package domain

// NoDocumentsAnswer is the sentinel answer returned when the corpus is
// empty. This is a normal response, not an error.
const NoDocumentsAnswer = "No documents have been indexed yet. Ingest some documents first."

// Attribution names one retrieved passage that grounded an answer.
type Attribution struct {
	// SourceID is the origin identifier of the passage.
	SourceID string

	// Excerpt is a bounded-length extract of the passage content.
	Excerpt string

	// Score is the cosine similarity that ranked the passage.
	Score float64
}

// Answer is a synthesized response with its supporting sources.
type Answer struct {
	// Text is the synthesized answer. Empty when the synthesizer could
	// not produce a grounded answer.
	Text string

	// Sources lists one attribution per retrieved passage, in retrieval
	// order (highest similarity first).
	Sources []Attribution
}

// ChunkOptions configures the standalone chunking entry point.
// Zero values select the defaults (chunk size 500, overlap 50).
type ChunkOptions struct {
	// ChunkSize is the maximum passage length in characters.
	ChunkSize int

	// Overlap is the upper bound on overlap carried between passages,
	// in characters.
	Overlap int

	// SourceID labels the produced passages.
	SourceID string
}
