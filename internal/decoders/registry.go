// Package decoders selects a decoder for an input file by extension.
package decoders

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
	"github.com/harborlight-labs/corpusqa/internal/decoders/markdown"
	"github.com/harborlight-labs/corpusqa/internal/decoders/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.DecoderRegistry = (*Registry)(nil)

// Registry maps file extensions to decoders. Later registrations win
// on extension conflicts.
type Registry struct {
	byExtension map[string]driven.Decoder
}

// NewRegistry creates a registry over the given decoders.
func NewRegistry(decs ...driven.Decoder) *Registry {
	r := &Registry{byExtension: make(map[string]driven.Decoder)}
	for _, d := range decs {
		r.Register(d)
	}
	return r
}

// NewDefaultRegistry creates a registry with all built-in decoders.
func NewDefaultRegistry() *Registry {
	return NewRegistry(plaintext.New(), markdown.New())
}

// Register adds a decoder for each of its extensions.
func (r *Registry) Register(d driven.Decoder) {
	for _, ext := range d.Extensions() {
		r.byExtension[strings.ToLower(ext)] = d
	}
}

// Extensions returns the sorted set of registered extensions.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Decode picks a decoder by file extension and runs it.
func (r *Registry) Decode(ctx context.Context, raw []byte, filename string) (*domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	d, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for extension %q", domain.ErrUnsupportedSource, ext)
	}
	return d.Decode(ctx, raw, filename)
}
