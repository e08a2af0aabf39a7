package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harborlight-labs/corpusqa/internal/logger"
)

var ingestSource string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents into the corpus",
	Long: `Decodes the given files, splits them into passages, embeds each
passage and stores the result in the vector index. Supported formats
are plain text and markdown, selected by file extension.

Ingestion is all-or-nothing per file: if embedding fails partway
through, nothing from that file is indexed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "override the source identifier (single file only)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if pipelineService == nil || decoderRegistry == nil {
		return errors.New("pipeline service not configured")
	}
	if ingestSource != "" && len(args) > 1 {
		return errors.New("--source can only be used with a single file")
	}

	ctx := context.Background()
	for _, path := range args {
		if err := ingestFile(ctx, cmd, path); err != nil {
			return err
		}
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := decoderRegistry.Decode(ctx, raw, path)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	logger.Debug("Decoded %s: %d bytes, %d lines, %d words",
		doc.SourceID, doc.ByteSize, doc.LineCount, doc.WordCount)

	sourceID := doc.SourceID
	if ingestSource != "" {
		sourceID = ingestSource
	}

	receipt, err := pipelineService.Ingest(ctx, doc.Content, sourceID)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}

	cmd.Printf("Ingested %s: %d passages\n", receipt.SourceID, receipt.PassageCount)
	return nil
}
