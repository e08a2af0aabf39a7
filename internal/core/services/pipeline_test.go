package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlight-labs/corpusqa/internal/adapters/driven/index/memory"
	"github.com/harborlight-labs/corpusqa/internal/core/domain"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
)

// mockEmbedder maps keywords to fixed unit vectors so retrieval order
// in tests is predictable. Texts mentioning "cats" embed along the
// first axis, "dogs" along the second, everything else along the third.
type mockEmbedder struct {
	dims       int
	embedErr   error
	batchErr   error
	shortBatch bool

	mu         sync.Mutex
	batchCalls int
}

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func (m *mockEmbedder) vectorFor(text string) []float32 {
	vec := make([]float32, m.dims)
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "cats"):
		vec[0] = 1
	case strings.Contains(lower, "dogs"):
		vec[1] = 1
	default:
		vec[m.dims-1] = 1
	}
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	if m.shortBatch {
		return nil, nil
	}
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, m.vectorFor(text))
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimensions() int   { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embedder" }

func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

type mockSynthesizer struct {
	answer       string
	err          error
	lastQuestion string
	lastContext  string
}

var _ driven.AnswerSynthesizer = (*mockSynthesizer)(nil)

func (m *mockSynthesizer) Synthesize(_ context.Context, question, contextText string) (string, error) {
	m.lastQuestion = question
	m.lastContext = contextText
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockSynthesizer) ModelName() string { return "mock-synthesizer" }

func (m *mockSynthesizer) Ping(context.Context) error { return nil }
func (m *mockSynthesizer) Close() error               { return nil }

func newTestService(t *testing.T, opts ...Option) (*PipelineService, *mockEmbedder, *memory.Index, *mockSynthesizer) {
	t.Helper()
	embedder := &mockEmbedder{dims: 3}
	index, err := memory.NewIndex(3)
	require.NoError(t, err)
	synthesizer := &mockSynthesizer{answer: "Cats purr to communicate contentment."}
	return NewPipelineService(embedder, index, synthesizer, opts...), embedder, index, synthesizer
}

func TestIngest_HappyPath(t *testing.T) {
	svc, _, index, _ := newTestService(t)
	ctx := context.Background()

	receipt, err := svc.Ingest(ctx, "Cats purr when they are content. Cats also knead blankets.", "cats.txt")
	require.NoError(t, err)
	assert.Equal(t, "cats.txt", receipt.SourceID)
	assert.Greater(t, receipt.PassageCount, 0)

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, receipt.PassageCount, stats.TotalPassages)
	assert.Equal(t, []string{"cats.txt"}, stats.Sources)
}

func TestIngest_EmptyText(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Ingest(context.Background(), "   \n\t ", "doc1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_EmptySourceID(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Ingest(context.Background(), "Some text.", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_EmbedFailureIndexesNothing(t *testing.T) {
	svc, embedder, index, _ := newTestService(t)
	embedder.batchErr = errors.New("provider unavailable")
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "Cats purr when they are content.", "cats.txt")
	require.ErrorIs(t, err, domain.ErrProviderFailure)

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPassages)
}

func TestIngest_ShortBatchIsProviderFailure(t *testing.T) {
	svc, embedder, index, _ := newTestService(t)
	embedder.shortBatch = true
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "Cats purr when they are content.", "cats.txt")
	require.ErrorIs(t, err, domain.ErrProviderFailure)

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPassages)
}

func TestIngest_DimensionMismatchIndexesNothing(t *testing.T) {
	embedder := &mockEmbedder{dims: 2}
	index, err := memory.NewIndex(3)
	require.NoError(t, err)
	svc := NewPipelineService(embedder, index, &mockSynthesizer{})
	ctx := context.Background()

	_, err = svc.Ingest(ctx, "Cats purr when they are content.", "cats.txt")
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPassages)
}

func TestIngest_ManyPassagesUseMultipleBatches(t *testing.T) {
	svc, embedder, index, _ := newTestService(t,
		WithChunkOptions(30, 0),
		WithEmbedBatchSize(2),
	)
	ctx := context.Background()

	text := strings.Repeat("Dogs bark at the mail carrier. ", 12)
	receipt, err := svc.Ingest(ctx, text, "dogs.txt")
	require.NoError(t, err)
	require.Greater(t, receipt.PassageCount, 2)
	assert.Greater(t, embedder.batchCalls, 1)

	stats, err := index.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, receipt.PassageCount, stats.TotalPassages)
}

func TestChunk_UsesServiceDefaults(t *testing.T) {
	svc, _, _, _ := newTestService(t, WithChunkOptions(30, 0))

	passages, err := svc.Chunk(context.Background(), "First sentence here. Second sentence goes here too.", domain.ChunkOptions{SourceID: "doc1"})
	require.NoError(t, err)
	assert.Len(t, passages, 2)
	for _, p := range passages {
		assert.Equal(t, "doc1", p.SourceID)
	}
}

func TestChunk_ExplicitOptionsOverrideDefaults(t *testing.T) {
	svc, _, _, _ := newTestService(t, WithChunkOptions(30, 0))

	passages, err := svc.Chunk(context.Background(), "First sentence here. Second sentence goes here too.", domain.ChunkOptions{
		ChunkSize: 500,
		SourceID:  "doc1",
	})
	require.NoError(t, err)
	assert.Len(t, passages, 1)
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Answer(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswer_EmptyCorpusReturnsSentinel(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	answer, err := svc.Answer(context.Background(), "Why do cats purr?")
	require.NoError(t, err)
	assert.Equal(t, domain.NoDocumentsAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.NotNil(t, answer.Sources)
}

func TestAnswer_EndToEnd(t *testing.T) {
	svc, _, _, synthesizer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "Cats purr when they are content.", "cats.txt")
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "Dogs bark at the mail carrier.", "dogs.txt")
	require.NoError(t, err)

	answer, err := svc.Answer(ctx, "Why do cats purr?")
	require.NoError(t, err)
	assert.Equal(t, "Cats purr to communicate contentment.", answer.Text)
	require.Len(t, answer.Sources, 2)

	// The cat passage embeds along the same axis as the question, so
	// it must rank first with a perfect score.
	assert.Equal(t, "cats.txt", answer.Sources[0].SourceID)
	assert.InDelta(t, 1.0, answer.Sources[0].Score, 1e-9)
	assert.Equal(t, "dogs.txt", answer.Sources[1].SourceID)
	assert.Less(t, answer.Sources[1].Score, answer.Sources[0].Score)

	assert.Equal(t, "Why do cats purr?", synthesizer.lastQuestion)
	assert.Contains(t, synthesizer.lastContext, "Cats purr when they are content.")
	assert.Contains(t, synthesizer.lastContext, "Dogs bark at the mail carrier.")
}

func TestAnswer_TopKLimitsSources(t *testing.T) {
	svc, _, _, _ := newTestService(t, WithTopK(1))
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "Cats purr when they are content.", "cats.txt")
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "Dogs bark at the mail carrier.", "dogs.txt")
	require.NoError(t, err)

	answer, err := svc.Answer(ctx, "Why do cats purr?")
	require.NoError(t, err)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "cats.txt", answer.Sources[0].SourceID)
}

func TestAnswer_ExcerptBounded(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	long := "Cats " + strings.Repeat("stretch and nap all afternoon ", 10)
	_, err := svc.Ingest(ctx, long, "cats.txt")
	require.NoError(t, err)

	answer, err := svc.Answer(ctx, "What do cats do?")
	require.NoError(t, err)
	require.NotEmpty(t, answer.Sources)
	assert.Len(t, []rune(answer.Sources[0].Excerpt), excerptLength)
	assert.True(t, strings.HasPrefix(long, answer.Sources[0].Excerpt))
}

func TestAnswer_EmbedFailure(t *testing.T) {
	svc, embedder, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "Cats purr when they are content.", "cats.txt")
	require.NoError(t, err)

	embedder.embedErr = errors.New("provider unavailable")
	_, err = svc.Answer(ctx, "Why do cats purr?")
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}

func TestAnswer_SynthesizerFailure(t *testing.T) {
	svc, _, _, synthesizer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "Cats purr when they are content.", "cats.txt")
	require.NoError(t, err)

	synthesizer.err = errors.New("model overloaded")
	_, err = svc.Answer(ctx, "Why do cats purr?")
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}

func TestAnswer_ScansCorpusInPages(t *testing.T) {
	svc, _, _, _ := newTestService(t, WithScanPageSize(1), WithChunkOptions(30, 0))
	ctx := context.Background()

	text := strings.Repeat("Cats purr softly at night. ", 5)
	_, err := svc.Ingest(ctx, text, "cats.txt")
	require.NoError(t, err)

	answer, err := svc.Answer(ctx, "Why do cats purr?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Sources)
}

func TestStatsAndClear(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "Cats purr when they are content.", "cats.txt")
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "Dogs bark at the mail carrier.", "dogs.txt")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cats.txt", "dogs.txt"}, stats.Sources)
	assert.Equal(t, 2, stats.TotalPassages)

	require.NoError(t, svc.Clear(ctx))

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPassages)
}
