// Package cli implements the corpusqa command line interface.
// Commands are thin adapters over the pipeline service; wiring happens
// in cmd/corpusqa.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driving"
	"github.com/harborlight-labs/corpusqa/internal/logger"
)

// version is set via SetVersion at startup.
var version = "dev"

// Services injected by cmd/corpusqa before Execute.
var (
	pipelineService driving.PipelineService
	decoderRegistry driven.DecoderRegistry
	configStore     driven.ConfigStore
)

var verbose bool

// providerPing is an optional startup check injected by cmd/corpusqa.
// It runs after flag parsing so its warnings respect --verbose.
var providerPing func()

var rootCmd = &cobra.Command{
	Use:   "corpusqa",
	Short: "Question answering over your own documents",
	Long: `corpusqa ingests plain text and markdown documents, indexes them as
embedded passages, and answers questions grounded in the retrieved
passages with source attributions.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		if providerPing != nil {
			providerPing()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the services used by the commands.
func SetServices(pipeline driving.PipelineService, registry driven.DecoderRegistry, config driven.ConfigStore) {
	pipelineService = pipeline
	decoderRegistry = registry
	configStore = config
}

// SetProviderPing installs a startup reachability check.
func SetProviderPing(f func()) {
	providerPing = f
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
