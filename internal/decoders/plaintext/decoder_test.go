package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
)

func TestDecode(t *testing.T) {
	d := New()
	raw := []byte("First line of text.\nSecond line here.\n")

	doc, err := d.Decode(context.Background(), raw, "/docs/release_notes.txt")
	require.NoError(t, err)

	assert.Equal(t, "release_notes.txt", doc.SourceID)
	assert.Equal(t, string(raw), doc.Content)
	assert.Equal(t, len(raw), doc.ByteSize)
	assert.Equal(t, 2, doc.LineCount)
	assert.Equal(t, 7, doc.WordCount)
	assert.Equal(t, "release notes", doc.Title)
	assert.Equal(t, "plaintext", doc.Format)
	assert.False(t, doc.IngestedAt.IsZero())
}

func TestDecode_EmptyFilename(t *testing.T) {
	d := New()

	_, err := d.Decode(context.Background(), []byte("text"), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDecode_EmptyContent(t *testing.T) {
	d := New()

	doc, err := d.Decode(context.Background(), nil, "empty.txt")
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
	assert.Zero(t, doc.LineCount)
	assert.Zero(t, doc.WordCount)
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"single line no newline", "hello", 1},
		{"single line with newline", "hello\n", 1},
		{"two lines", "a\nb", 2},
		{"trailing newline", "a\nb\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countLines(tt.content))
		})
	}
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "my document", ExtractTitle("/tmp/my_document.txt"))
	assert.Equal(t, "weekly report", ExtractTitle("weekly-report.log"))
	assert.Equal(t, "notes", ExtractTitle("notes"))
}
