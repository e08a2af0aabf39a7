package driving

import (
	"context"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
)

// PipelineService is the end-to-end contract of the question-answering
// pipeline: ingestion, standalone chunking, query answering and corpus
// administration.
type PipelineService interface {
	// Ingest chunks, embeds and indexes text under sourceID.
	// Ingestion is all-or-nothing: a mid-batch failure indexes nothing.
	Ingest(ctx context.Context, text, sourceID string) (*domain.IngestReceipt, error)

	// Chunk splits text into passages without touching the index.
	Chunk(ctx context.Context, text string, opts domain.ChunkOptions) ([]domain.Passage, error)

	// Answer retrieves the most similar passages for the question and
	// synthesizes a grounded answer with source attributions. An empty
	// corpus yields the sentinel answer, not an error.
	Answer(ctx context.Context, question string) (*domain.Answer, error)

	// Stats reports the current corpus statistics.
	Stats(ctx context.Context) (*domain.CorpusStats, error)

	// Clear removes the entire corpus.
	Clear(ctx context.Context) error
}
