// Package plaintext decodes plain text files.
package plaintext

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
)

// Ensure Decoder implements the interface.
var _ driven.Decoder = (*Decoder)(nil)

// Decoder handles plain text documents.
type Decoder struct{}

// New creates a new plain text decoder.
func New() *Decoder {
	return &Decoder{}
}

// Extensions returns the file extensions this decoder handles.
func (d *Decoder) Extensions() []string {
	return []string{".txt", ".text", ".log", ".csv"}
}

// Decode converts raw bytes to a decoded document. The content is the
// raw bytes interpreted as UTF-8; no transformation is applied.
func (d *Decoder) Decode(_ context.Context, raw []byte, filename string) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.ErrInvalidInput
	}

	content := string(raw)

	return &domain.Document{
		SourceID:   filepath.Base(filename),
		Content:    content,
		ByteSize:   len(raw),
		LineCount:  countLines(content),
		WordCount:  len(strings.Fields(content)),
		Title:      ExtractTitle(filename),
		Format:     "plaintext",
		IngestedAt: time.Now(),
	}, nil
}

// countLines counts newline-terminated lines, treating a dangling
// final line as a line of its own.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	lines := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		lines++
	}
	return lines
}

// ExtractTitle extracts a human-readable title from a filename.
func ExtractTitle(filename string) string {
	name := filepath.Base(filename)

	ext := filepath.Ext(name)
	if ext != "" {
		name = strings.TrimSuffix(name, ext)
	}

	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")

	return name
}
