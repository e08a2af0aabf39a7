// Package services implements the inbound ports of the pipeline.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/harborlight-labs/corpusqa/internal/chunker"
	"github.com/harborlight-labs/corpusqa/internal/core/domain"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driving"
	"github.com/harborlight-labs/corpusqa/internal/logger"
	"github.com/harborlight-labs/corpusqa/internal/retriever"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// Default tuning values.
const (
	// DefaultTopK is the number of passages retrieved per question.
	DefaultTopK = 3

	// DefaultEmbedBatchSize is the number of passages embedded per
	// provider call during ingestion.
	DefaultEmbedBatchSize = 32

	// DefaultEmbedWorkers bounds the concurrent embedding calls per
	// ingest request.
	DefaultEmbedWorkers = 4

	// excerptLength bounds the attribution excerpt in an answer.
	excerptLength = 100
)

// PipelineService is the RAG orchestrator. It composes the chunker,
// the embedding provider and the vector index on the ingestion path,
// and the embedding provider, retriever and answer synthesizer on the
// query path.
type PipelineService struct {
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	synthesizer driven.AnswerSynthesizer

	chunkSize      int
	overlap        int
	topK           int
	pageSize       int
	embedBatchSize int
	embedWorkers   int
}

// Option configures the pipeline service.
type Option func(*PipelineService)

// WithChunkOptions sets the default chunk size and overlap for
// ingestion.
func WithChunkOptions(chunkSize, overlap int) Option {
	return func(s *PipelineService) {
		s.chunkSize = chunkSize
		s.overlap = overlap
	}
}

// WithTopK sets the number of passages retrieved per question.
func WithTopK(k int) Option {
	return func(s *PipelineService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithScanPageSize sets the page size used when scanning the corpus.
func WithScanPageSize(size int) Option {
	return func(s *PipelineService) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithEmbedBatchSize sets the number of passages per embedding call.
func WithEmbedBatchSize(size int) Option {
	return func(s *PipelineService) {
		if size > 0 {
			s.embedBatchSize = size
		}
	}
}

// WithEmbedWorkers bounds the concurrent embedding calls per ingest.
func WithEmbedWorkers(n int) Option {
	return func(s *PipelineService) {
		if n > 0 {
			s.embedWorkers = n
		}
	}
}

// NewPipelineService creates the orchestrator over its collaborators.
func NewPipelineService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	synthesizer driven.AnswerSynthesizer,
	opts ...Option,
) *PipelineService {
	s := &PipelineService{
		embedder:       embedder,
		index:          index,
		synthesizer:    synthesizer,
		chunkSize:      chunker.DefaultChunkSize,
		overlap:        chunker.DefaultOverlap,
		topK:           DefaultTopK,
		pageSize:       driven.DefaultScanPageSize,
		embedBatchSize: DefaultEmbedBatchSize,
		embedWorkers:   DefaultEmbedWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest chunks, embeds and indexes text under sourceID.
//
// Ingestion is all-or-nothing: passages are embedded into a staging
// slice and the index is only touched after every embedding call
// succeeded, so a mid-batch provider failure indexes nothing.
func (s *PipelineService) Ingest(ctx context.Context, text, sourceID string) (*domain.IngestReceipt, error) {
	req := newRequestLog("ingest")

	if strings.TrimSpace(text) == "" {
		return nil, req.fail(fmt.Errorf("%w: text is empty", domain.ErrInvalidInput))
	}
	if strings.TrimSpace(sourceID) == "" {
		return nil, req.fail(fmt.Errorf("%w: sourceID is empty", domain.ErrInvalidInput))
	}

	passages, err := chunker.New(
		chunker.WithChunkSize(s.chunkSize),
		chunker.WithOverlap(s.overlap),
	).Chunk(text, sourceID)
	if err != nil {
		return nil, req.fail(fmt.Errorf("chunk: %w", err))
	}
	req.transition(stateChunked)
	logger.Debug("Chunked %q into %d passages", sourceID, len(passages))

	embedded, err := s.embedPassages(ctx, passages)
	if err != nil {
		return nil, req.fail(err)
	}
	req.transition(stateEmbedded)

	if err := s.index.Upsert(ctx, embedded); err != nil {
		return nil, req.fail(fmt.Errorf("%w: upsert: %w", domain.ErrIndexFailure, err))
	}
	req.transition(stateIndexed)
	logger.Info("Indexed %d passages for source %q", len(embedded), sourceID)

	return &domain.IngestReceipt{
		SourceID:     sourceID,
		PassageCount: len(embedded),
	}, nil
}

// Chunk splits text into passages without touching the index.
func (s *PipelineService) Chunk(_ context.Context, text string, opts domain.ChunkOptions) ([]domain.Passage, error) {
	size := opts.ChunkSize
	if size == 0 {
		size = s.chunkSize
	}
	overlap := opts.Overlap
	if overlap == 0 {
		overlap = s.overlap
	}

	passages, err := chunker.New(
		chunker.WithChunkSize(size),
		chunker.WithOverlap(overlap),
	).Chunk(text, opts.SourceID)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	return passages, nil
}

// Answer retrieves the most similar passages for the question and
// synthesizes a grounded answer with one attribution per passage.
func (s *PipelineService) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	req := newRequestLog("answer")

	if strings.TrimSpace(question) == "" {
		return nil, req.fail(fmt.Errorf("%w: question is empty", domain.ErrInvalidInput))
	}

	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, req.fail(fmt.Errorf("%w: stats: %w", domain.ErrIndexFailure, err))
	}
	if stats.TotalPassages == 0 {
		// Defined sentinel response, not an error.
		logger.Debug("Empty corpus, returning sentinel answer")
		return &domain.Answer{
			Text:    domain.NoDocumentsAnswer,
			Sources: []domain.Attribution{},
		}, nil
	}

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, req.fail(fmt.Errorf("%w: embed question: %w", domain.ErrProviderFailure, err))
	}
	req.transition(stateEmbeddedQuery)

	corpus, err := s.scanCorpus(ctx)
	if err != nil {
		return nil, req.fail(err)
	}

	matches, err := retriever.FindSimilar(queryVector, corpus, s.topK)
	if err != nil {
		return nil, req.fail(fmt.Errorf("retrieve: %w", err))
	}
	req.transition(stateRetrieved)
	logger.Debug("Retrieved %d of %d passages", len(matches), len(corpus))

	contextText := buildContext(matches)
	answerText, err := s.synthesizer.Synthesize(ctx, question, contextText)
	if err != nil {
		return nil, req.fail(fmt.Errorf("%w: synthesize: %w", domain.ErrProviderFailure, err))
	}
	req.transition(stateSynthesized)

	answer := &domain.Answer{
		Text:    answerText,
		Sources: make([]domain.Attribution, 0, len(matches)),
	}
	for _, m := range matches {
		answer.Sources = append(answer.Sources, domain.Attribution{
			SourceID: m.Passage.SourceID,
			Excerpt:  excerpt(m.Passage.Content),
			Score:    m.Score,
		})
	}
	req.transition(stateAnswered)

	return answer, nil
}

// Stats reports the current corpus statistics.
func (s *PipelineService) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: stats: %w", domain.ErrIndexFailure, err)
	}
	return stats, nil
}

// Clear removes the entire corpus. Callers must serialise Clear
// against in-flight ingestion; a concurrent clear-and-write has
// undefined outcome.
func (s *PipelineService) Clear(ctx context.Context) error {
	if err := s.index.ClearAll(ctx); err != nil {
		return fmt.Errorf("%w: clear: %w", domain.ErrIndexFailure, err)
	}
	logger.Info("Corpus cleared")
	return nil
}

// embedPassages embeds all passages through a bounded worker pool,
// preserving passage order. The index is not touched here.
func (s *PipelineService) embedPassages(ctx context.Context, passages []domain.Passage) ([]domain.EmbeddedPassage, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	type job struct {
		start int
		texts []string
	}

	jobs := make(chan job)
	vectors := make([][]float32, len(passages))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	workers := s.embedWorkers
	if workers > len(passages) {
		workers = len(passages)
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if failed() {
					continue // drain remaining jobs
				}
				batch, err := s.embedder.EmbedBatch(ctx, j.texts)
				if err != nil {
					setErr(fmt.Errorf("%w: embed batch at %d: %w", domain.ErrProviderFailure, j.start, err))
					continue
				}
				if len(batch) != len(j.texts) {
					setErr(fmt.Errorf("%w: embed batch at %d returned %d vectors for %d texts",
						domain.ErrProviderFailure, j.start, len(batch), len(j.texts)))
					continue
				}
				for i, vec := range batch {
					vectors[j.start+i] = vec
				}
			}
		}()
	}

	for start := 0; start < len(passages); start += s.embedBatchSize {
		end := start + s.embedBatchSize
		if end > len(passages) {
			end = len(passages)
		}
		texts := make([]string, 0, end-start)
		for _, p := range passages[start:end] {
			texts = append(texts, p.Content)
		}
		jobs <- job{start: start, texts: texts}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
	}

	want := s.index.Dimensions()
	embedded := make([]domain.EmbeddedPassage, len(passages))
	for i, p := range passages {
		if len(vectors[i]) != want {
			return nil, fmt.Errorf("%w: passage %s embedded with %d dimensions, index has %d",
				domain.ErrDimensionMismatch, p.ID, len(vectors[i]), want)
		}
		embedded[i] = domain.EmbeddedPassage{Passage: p, Vector: vectors[i]}
	}
	return embedded, nil
}

// scanCorpus pages through the index until exhausted.
func (s *PipelineService) scanCorpus(ctx context.Context) ([]domain.EmbeddedPassage, error) {
	var corpus []domain.EmbeddedPassage
	for offset := 0; ; offset += s.pageSize {
		page, err := s.index.ScanAll(ctx, offset, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: scan at %d: %w", domain.ErrIndexFailure, offset, err)
		}
		if len(page) == 0 {
			return corpus, nil
		}
		corpus = append(corpus, page...)
	}
}

// buildContext concatenates retrieved passage contents in retrieval
// order, separated by blank lines. No deduplication, no truncation.
func buildContext(matches []retriever.Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Passage.Content)
	}
	return strings.Join(parts, "\n\n")
}

// excerpt bounds an attribution excerpt to the first hundred
// characters of the passage content.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength])
}
