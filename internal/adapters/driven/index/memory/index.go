// Package memory provides an in-memory implementation of the vector
// index, suitable for tests and single-shot runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a mutex-guarded in-memory vector index. Insertion order is
// preserved per source; upserting an existing passage ID replaces it in
// place.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	order      []string // passage IDs in first-insertion order
	passages   map[string]domain.EmbeddedPassage
}

// NewIndex creates an empty index established with the given vector
// dimension.
func NewIndex(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}
	return &Index{
		dimensions: dimensions,
		passages:   make(map[string]domain.EmbeddedPassage),
	}, nil
}

// Upsert inserts or replaces passages, keyed by passage ID.
func (ix *Index) Upsert(_ context.Context, batch []domain.EmbeddedPassage) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, p := range batch {
		if p.ID == "" {
			return fmt.Errorf("%w: passage ID is empty", domain.ErrInvalidInput)
		}
		if len(p.Vector) != ix.dimensions {
			return fmt.Errorf("%w: passage %s has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, p.ID, len(p.Vector), ix.dimensions)
		}
	}

	for _, p := range batch {
		if _, exists := ix.passages[p.ID]; !exists {
			ix.order = append(ix.order, p.ID)
		}
		ix.passages[p.ID] = p
	}
	return nil
}

// ScanAll returns one page of the corpus in insertion order.
func (ix *Index) ScanAll(_ context.Context, offset, limit int) ([]domain.EmbeddedPassage, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = driven.DefaultScanPageSize
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if offset >= len(ix.order) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ix.order) {
		end = len(ix.order)
	}

	page := make([]domain.EmbeddedPassage, 0, end-offset)
	for _, id := range ix.order[offset:end] {
		page = append(page, ix.passages[id])
	}
	return page, nil
}

// FilterBySource returns the passages ingested under sourceID.
func (ix *Index) FilterBySource(_ context.Context, sourceID string) ([]domain.EmbeddedPassage, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var result []domain.EmbeddedPassage
	for _, id := range ix.order {
		if p := ix.passages[id]; p.SourceID == sourceID {
			result = append(result, p)
		}
	}
	return result, nil
}

// ClearAll empties the corpus, keeping the configured dimension.
func (ix *Index) ClearAll(_ context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.order = nil
	ix.passages = make(map[string]domain.EmbeddedPassage)
	return nil
}

// Stats reports the passage count and distinct source identifiers.
func (ix *Index) Stats(_ context.Context) (*domain.CorpusStats, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, p := range ix.passages {
		seen[p.SourceID] = struct{}{}
	}
	sources := make([]string, 0, len(seen))
	for s := range seen {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	return &domain.CorpusStats{
		TotalPassages: len(ix.passages),
		Sources:       sources,
	}, nil
}

// Dimensions returns the established vector dimension.
func (ix *Index) Dimensions() int {
	return ix.dimensions
}

// Close releases resources.
func (ix *Index) Close() error {
	return nil
}
