// Package markdown decodes Markdown files into plain text.
package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
	"github.com/harborlight-labs/corpusqa/internal/decoders/plaintext"
)

// Ensure Decoder implements the interface.
var _ driven.Decoder = (*Decoder)(nil)

// Decoder handles Markdown documents.
type Decoder struct{}

// New creates a new Markdown decoder.
func New() *Decoder {
	return &Decoder{}
}

// Extensions returns the file extensions this decoder handles.
func (d *Decoder) Extensions() []string {
	return []string{".md", ".markdown", ".mdown"}
}

// Decode converts a Markdown document to a decoded plain-text document.
// Formatting markers are stripped so the chunker sees prose only.
func (d *Decoder) Decode(_ context.Context, raw []byte, filename string) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.ErrInvalidInput
	}

	rawContent := string(raw)
	title := extractMarkdownTitle(rawContent, filename)
	content := stripMarkdown(rawContent)

	return &domain.Document{
		SourceID:   filepath.Base(filename),
		Content:    content,
		ByteSize:   len(raw),
		LineCount:  countLines(content),
		WordCount:  len(strings.Fields(content)),
		Title:      title,
		Format:     "markdown",
		IngestedAt: time.Now(),
	}, nil
}

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

// extractMarkdownTitle extracts a title from the first H1 heading or
// falls back to the filename.
func extractMarkdownTitle(content, filename string) string {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return plaintext.ExtractTitle(filename)
}

// stripMarkdown removes common markdown formatting for plain text
// content. This is a simplified implementation that handles common
// cases.
func stripMarkdown(content string) string {
	// Remove code blocks (```...```)
	codeBlock := regexp.MustCompile("(?s)```[^`]*```")
	content = codeBlock.ReplaceAllString(content, "")

	// Remove inline code (`code`)
	inlineCode := regexp.MustCompile("`[^`]+`")
	content = inlineCode.ReplaceAllString(content, "")

	// Remove images ![alt](url)
	images := regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	content = images.ReplaceAllString(content, "")

	// Convert links [text](url) to just text
	links := regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	content = links.ReplaceAllString(content, "$1")

	// Remove heading markers (# ## ### etc)
	headings := regexp.MustCompile(`(?m)^#{1,6}\s+`)
	content = headings.ReplaceAllString(content, "")

	// Remove bold/italic markers
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	// Remove blockquote markers
	blockquote := regexp.MustCompile(`(?m)^>\s*`)
	content = blockquote.ReplaceAllString(content, "")

	// Remove horizontal rules
	hr := regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	content = hr.ReplaceAllString(content, "")

	// Remove list markers (- * + and numbered)
	listMarkers := regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	content = listMarkers.ReplaceAllString(content, "")
	numberedList := regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	content = numberedList.ReplaceAllString(content, "")

	// Collapse multiple newlines
	multiNewlines := regexp.MustCompile(`\n{3,}`)
	content = multiNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
