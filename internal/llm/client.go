// Package llm provides the summary-generation and embedding clients used by
// the summarization engine. All remote providers speak the OpenAI chat
// protocol; DeepSeek and Ollama are reached through base-URL overrides.
package llm

import (
	"context"

	"github.com/2015xli/jqassistant-graph-rag/internal/config"
	apperrors "github.com/2015xli/jqassistant-graph-rag/internal/errors"
)

// Client generates a summary for a prompt. Implementations must be safe for
// concurrent use by the summarizer worker pool.
type Client interface {
	GenerateSummary(ctx context.Context, prompt string) (string, error)
}

// Embedder generates embedding vectors for batches of texts.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension is the fixed length of every returned vector.
	Dimension() int
}

// NewClient builds a summary client for the configured API.
func NewClient(cfg *config.LLMConfig) (Client, error) {
	switch cfg.API {
	case config.LLMOpenAI:
		return newOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, "", cfg.RequestsPerMinute)
	case config.LLMDeepSeek:
		return newOpenAIClient(cfg.DeepSeekKey, cfg.DeepSeekModel, "https://api.deepseek.com", cfg.RequestsPerMinute)
	case config.LLMOllama:
		// Ollama exposes an OpenAI-compatible endpoint under /v1; it does
		// not check the API key.
		return newOpenAIClient("ollama", cfg.OllamaModel, cfg.OllamaBaseURL+"/v1", cfg.RequestsPerMinute)
	case config.LLMFake:
		return &FakeClient{}, nil
	default:
		return nil, apperrors.ConfigErrorf("unknown llm api %q", cfg.API)
	}
}

// NewEmbedder builds an embedding client. The fake API gets a deterministic
// local embedder; openai and ollama go through the OpenAI-protocol embedding
// endpoint of the configured provider. DeepSeek uses OpenAI's endpoint when
// an OpenAI key is set and the deterministic embedder otherwise.
func NewEmbedder(cfg *config.LLMConfig) (Embedder, error) {
	switch cfg.API {
	case config.LLMFake:
		return &FakeEmbedder{Dim: DefaultEmbeddingDimension}, nil
	case config.LLMOllama:
		return newOpenAIEmbedder("ollama", cfg.EmbeddingModel, cfg.OllamaBaseURL+"/v1")
	case config.LLMDeepSeek:
		// DeepSeek has no embedding endpoint; reuse OpenAI when a key is
		// present, otherwise fall back to the deterministic embedder.
		if cfg.OpenAIKey != "" {
			return newOpenAIEmbedder(cfg.OpenAIKey, cfg.EmbeddingModel, "")
		}
		return &FakeEmbedder{Dim: DefaultEmbeddingDimension}, nil
	default:
		return newOpenAIEmbedder(cfg.OpenAIKey, cfg.EmbeddingModel, "")
	}
}
