package driven

import (
	"context"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
)

// Decoder converts raw bytes into a decoded plain-text document.
// Each decoder handles specific file extensions.
type Decoder interface {
	// Extensions returns the lower-case file extensions this decoder
	// handles, including the leading dot.
	Extensions() []string

	// Decode produces a Document from raw bytes and the originating
	// filename.
	Decode(ctx context.Context, raw []byte, filename string) (*domain.Document, error)
}

// DecoderRegistry selects a decoder for a filename.
type DecoderRegistry interface {
	// Decode picks a decoder by file extension and runs it.
	// Returns domain.ErrUnsupportedSource when no decoder matches.
	Decode(ctx context.Context, raw []byte, filename string) (*domain.Document, error)
}
