package driven

import (
	"context"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
)

// DefaultScanPageSize bounds a single ScanAll page when the caller
// passes a non-positive limit.
const DefaultScanPageSize = 500

// VectorIndex stores embedded passages and serves bulk retrieval.
//
// The index is established with a fixed vector dimension; upserting a
// passage whose vector has a different dimension is a hard error. The
// index must tolerate concurrent Upsert calls without losing writes.
// ClearAll racing an in-flight Upsert has undefined outcome; callers
// must serialise administrative clears against ingestion.
type VectorIndex interface {
	// Upsert inserts or replaces passages, keyed by passage ID.
	// Upserting the same ID twice leaves one stored passage.
	Upsert(ctx context.Context, batch []domain.EmbeddedPassage) error

	// ScanAll returns one page of the corpus starting at offset.
	// A non-positive limit selects DefaultScanPageSize. Callers needing
	// the whole corpus must page until an empty result.
	ScanAll(ctx context.Context, offset, limit int) ([]domain.EmbeddedPassage, error)

	// FilterBySource returns the passages ingested under sourceID.
	FilterBySource(ctx context.Context, sourceID string) ([]domain.EmbeddedPassage, error)

	// ClearAll removes the entire corpus, keeping the configured
	// vector dimension.
	ClearAll(ctx context.Context) error

	// Stats reports the passage count and distinct source identifiers.
	Stats(ctx context.Context) (*domain.CorpusStats, error)

	// Dimensions returns the established vector dimension.
	Dimensions() int

	// Close releases resources.
	Close() error
}
