package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlight-labs/corpusqa/internal/adapters/driven/index/memory"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
	"github.com/harborlight-labs/corpusqa/internal/core/services"
	"github.com/harborlight-labs/corpusqa/internal/decoders"
)

// stubEmbedder returns a fixed unit vector for every text.
type stubEmbedder struct{}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (stubEmbedder) Dimensions() int            { return 3 }
func (stubEmbedder) ModelName() string          { return "stub-embedder" }
func (stubEmbedder) Ping(context.Context) error { return nil }
func (stubEmbedder) Close() error               { return nil }

// stubSynthesizer returns a fixed answer.
type stubSynthesizer struct{}

var _ driven.AnswerSynthesizer = (*stubSynthesizer)(nil)

func (stubSynthesizer) Synthesize(context.Context, string, string) (string, error) {
	return "A grounded answer.", nil
}

func (stubSynthesizer) ModelName() string          { return "stub-synthesizer" }
func (stubSynthesizer) Ping(context.Context) error { return nil }
func (stubSynthesizer) Close() error               { return nil }

// setupTestServices wires the commands to an in-memory pipeline and
// returns a cleanup that detaches the services again.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	index, err := memory.NewIndex(3)
	require.NoError(t, err)

	svc := services.NewPipelineService(stubEmbedder{}, index, stubSynthesizer{})
	SetServices(svc, decoders.NewDefaultRegistry(), nil)

	return func() {
		SetServices(nil, nil, nil)
	}
}

// execute runs the root command with args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "corpusqa", rootCmd.Use)
}

func TestRootCmd_HasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag, "verbose flag should exist")
	assert.Equal(t, "v", flag.Shorthand)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "corpusqa version")
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"ingest", "ask", "chunk", "stats", "clear", "watch", "config", "version"} {
		assert.True(t, names[want], "command %q should be registered", want)
	}
}
