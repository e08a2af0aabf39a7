// Command corpusqa is a question answering CLI over local documents.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harborlight-labs/corpusqa/internal/adapters/driven/config/file"
	embeddingollama "github.com/harborlight-labs/corpusqa/internal/adapters/driven/embedding/ollama"
	embeddingopenai "github.com/harborlight-labs/corpusqa/internal/adapters/driven/embedding/openai"
	"github.com/harborlight-labs/corpusqa/internal/adapters/driven/index/sqlite"
	llmollama "github.com/harborlight-labs/corpusqa/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/harborlight-labs/corpusqa/internal/adapters/driven/llm/openai"
	"github.com/harborlight-labs/corpusqa/internal/adapters/driving/cli"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
	"github.com/harborlight-labs/corpusqa/internal/core/services"
	"github.com/harborlight-labs/corpusqa/internal/decoders"
	"github.com/harborlight-labs/corpusqa/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := file.NewConfigStore(os.Getenv("CORPUSQA_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	embedder, err := buildEmbedder(config)
	if err != nil {
		return err
	}
	defer embedder.Close()

	synthesizer, err := buildSynthesizer(config)
	if err != nil {
		return err
	}
	defer synthesizer.Close()

	index, err := sqlite.NewIndex(config.GetString("index.data_dir"), embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer index.Close()

	var opts []services.Option
	if size := config.GetInt("chunking.size"); size > 0 {
		opts = append(opts, services.WithChunkOptions(size, config.GetInt("chunking.overlap")))
	}
	if k := config.GetInt("retrieval.top_k"); k > 0 {
		opts = append(opts, services.WithTopK(k))
	}
	if ps := config.GetInt("retrieval.page_size"); ps > 0 {
		opts = append(opts, services.WithScanPageSize(ps))
	}
	if bs := config.GetInt("embedding.batch_size"); bs > 0 {
		opts = append(opts, services.WithEmbedBatchSize(bs))
	}

	pipeline := services.NewPipelineService(embedder, index, synthesizer, opts...)

	cli.SetVersion(version)
	cli.SetServices(pipeline, decoders.NewDefaultRegistry(), config)
	cli.SetProviderPing(func() {
		pingProviders(embedder, synthesizer)
	})
	return cli.Execute()
}

// buildEmbedder selects the embedding provider from configuration.
// Defaults to a local Ollama instance.
func buildEmbedder(config driven.ConfigStore) (driven.EmbeddingService, error) {
	switch provider := config.GetString("embedding.provider"); provider {
	case "openai":
		apiKey := config.GetString("embedding.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		svc, err := embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:     apiKey,
			BaseURL:    config.GetString("embedding.base_url"),
			Model:      config.GetString("embedding.model"),
			Dimensions: config.GetInt("embedding.dimensions"),
		})
		if err != nil {
			return nil, fmt.Errorf("configuring embedding provider: %w", err)
		}
		return svc, nil

	case "", "ollama":
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL:    config.GetString("embedding.base_url"),
			Model:      config.GetString("embedding.model"),
			Dimensions: config.GetInt("embedding.dimensions"),
		}), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildSynthesizer selects the answer synthesizer from configuration.
// Defaults to a local Ollama instance.
func buildSynthesizer(config driven.ConfigStore) (driven.AnswerSynthesizer, error) {
	switch provider := config.GetString("llm.provider"); provider {
	case "openai":
		apiKey := config.GetString("llm.api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		svc, err := llmopenai.NewSynthesizer(llmopenai.Config{
			APIKey:  apiKey,
			BaseURL: config.GetString("llm.base_url"),
			Model:   config.GetString("llm.model"),
		})
		if err != nil {
			return nil, fmt.Errorf("configuring llm provider: %w", err)
		}
		return svc, nil

	case "", "ollama":
		return llmollama.NewSynthesizer(llmollama.Config{
			BaseURL: config.GetString("llm.base_url"),
			Model:   config.GetString("llm.model"),
		}), nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// pingProviders checks provider reachability at startup. Failures are
// logged but not fatal; offline commands like chunk and stats still
// work without providers.
func pingProviders(embedder driven.EmbeddingService, synthesizer driven.AnswerSynthesizer) {
	if !logger.IsVerbose() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := embedder.Ping(ctx); err != nil {
		logger.Warn("embedding provider %s unreachable: %v", embedder.ModelName(), err)
	}
	if err := synthesizer.Ping(ctx); err != nil {
		logger.Warn("llm provider %s unreachable: %v", synthesizer.ModelName(), err)
	}
}
