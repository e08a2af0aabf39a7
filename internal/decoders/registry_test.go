package decoders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
)

func TestRegistry_DecodeByExtension(t *testing.T) {
	r := NewDefaultRegistry()
	ctx := context.Background()

	doc, err := r.Decode(ctx, []byte("Plain text."), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "plaintext", doc.Format)

	doc, err = r.Decode(ctx, []byte("# Title\n\nBody."), "notes.md")
	require.NoError(t, err)
	assert.Equal(t, "markdown", doc.Format)
}

func TestRegistry_ExtensionCaseInsensitive(t *testing.T) {
	r := NewDefaultRegistry()

	doc, err := r.Decode(context.Background(), []byte("Text."), "NOTES.TXT")
	require.NoError(t, err)
	assert.Equal(t, "plaintext", doc.Format)
}

func TestRegistry_UnsupportedExtension(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Decode(context.Background(), []byte{0x25, 0x50}, "scan.pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedSource)
}

func TestRegistry_Extensions(t *testing.T) {
	r := NewDefaultRegistry()

	exts := r.Extensions()
	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".md")
	assert.IsType(t, []string{}, exts)
}
