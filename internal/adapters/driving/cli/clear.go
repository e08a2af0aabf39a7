package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all indexed passages",
	Long: `Removes every passage from the index. The established vector
dimension is kept, so the same embedding model keeps working after
re-ingestion.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	if !clearYes {
		cmd.Print("This removes all indexed passages. Continue? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n') //nolint:errcheck
		if !strings.EqualFold(strings.TrimSpace(input), "y") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := pipelineService.Clear(context.Background()); err != nil {
		return fmt.Errorf("clearing corpus: %w", err)
	}

	cmd.Println("Corpus cleared.")
	return nil
}
