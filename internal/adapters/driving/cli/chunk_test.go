package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCmd_HasFlags(t *testing.T) {
	require.NotNil(t, chunkCmd.Flags().Lookup("size"))
	require.NotNil(t, chunkCmd.Flags().Lookup("overlap"))
	require.NotNil(t, chunkCmd.Flags().Lookup("json"))
}

func TestChunkCmd_PrintsPassages(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeTestFile(t, "notes.txt", "First sentence here. Second sentence goes here too.")

	out, err := execute(t, "chunk", path)
	require.NoError(t, err)
	assert.Contains(t, out, "passages from notes.txt")
	assert.Contains(t, out, "First sentence here.")
}

func TestChunkCmd_SizeFlagSplits(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	defer func() { chunkSize = 0 }()

	path := writeTestFile(t, "notes.txt", "First sentence here. Second sentence goes here too.")

	out, err := execute(t, "chunk", "--size", "30", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 passages")
}

func TestChunkCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	defer func() { chunkJSON = false }()

	path := writeTestFile(t, "notes.txt", "Only one sentence here.")

	out, err := execute(t, "chunk", "--json", path)
	require.NoError(t, err)
	assert.Contains(t, out, "\"Content\"")
	assert.Contains(t, out, "Only one sentence here.")
}

func TestChunkCmd_DoesNotIndex(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeTestFile(t, "notes.txt", "Some text that stays out of the index.")

	_, err := execute(t, "chunk", path)
	require.NoError(t, err)

	out, err := execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Passages: 0")
}
