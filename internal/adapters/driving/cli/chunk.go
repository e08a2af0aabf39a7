package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
)

var (
	chunkSize    int
	chunkOverlap int
	chunkJSON    bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Split a document into passages without indexing",
	Long: `Decodes the given file and splits it into passages using the
sentence chunker, printing the result. Nothing is embedded or
indexed; this is a dry run for inspecting chunk boundaries.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().IntVar(&chunkSize, "size", 0, "chunk size in characters (0 uses the configured default)")
	chunkCmd.Flags().IntVar(&chunkOverlap, "overlap", 0, "overlap bound in characters (0 uses the configured default)")
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	if pipelineService == nil || decoderRegistry == nil {
		return errors.New("pipeline service not configured")
	}

	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	ctx := context.Background()
	doc, err := decoderRegistry.Decode(ctx, raw, path)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	passages, err := pipelineService.Chunk(ctx, doc.Content, domain.ChunkOptions{
		ChunkSize: chunkSize,
		Overlap:   chunkOverlap,
		SourceID:  doc.SourceID,
	})
	if err != nil {
		return fmt.Errorf("chunking %s: %w", path, err)
	}

	if chunkJSON {
		data, err := json.MarshalIndent(passages, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal passages: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%d passages from %s\n\n", len(passages), doc.SourceID)
	for _, p := range passages {
		cmd.Printf("  [%d] chars %d-%d, %d words\n", p.Sequence, p.StartChar, p.EndChar, p.WordCount)
		cmd.Printf("      %s\n\n", p.Content)
	}
	return nil
}
