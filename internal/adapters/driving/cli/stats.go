package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	stats, err := pipelineService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Passages: %d\n", stats.TotalPassages)
	cmd.Printf("Sources:  %d\n", len(stats.Sources))
	for _, src := range stats.Sources {
		cmd.Printf("  %s\n", src)
	}
	return nil
}
