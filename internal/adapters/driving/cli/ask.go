package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborlight-labs/corpusqa/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the indexed corpus",
	Long: `Embeds the question, retrieves the most similar passages from the
index and synthesizes an answer grounded in them. Each answer lists
the source passages it drew from, with similarity scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	answer, err := pipelineService.Answer(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	cmd.Println(answer.Text)

	if len(answer.Sources) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, src.SourceID, src.Score)
		if src.Excerpt != "" {
			cmd.Printf("      %s\n", src.Excerpt)
		}
	}
	return nil
}
