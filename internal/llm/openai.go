package llm

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/2015xli/jqassistant-graph-rag/internal/errors"
)

// DefaultEmbeddingDimension matches the all-MiniLM-L6-v2 sentence
// transformer and the vector index created on Entity.summaryEmbedding.
const DefaultEmbeddingDimension = 384

// requestTimeout applies to every completion and embedding request.
const requestTimeout = 120 * time.Second

// openAIClient serves the openai, deepseek and ollama APIs; the latter two
// differ only in base URL and model naming.
type openAIClient struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newOpenAIClient(apiKey, model, baseURL string, requestsPerMinute int) (*openAIClient, error) {
	if apiKey == "" {
		return nil, apperrors.ConfigErrorf("api key not set for model %q", model)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}

	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}

	return &openAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		limiter: limiter,
		logger:  slog.Default().With("component", "llm", "model", model),
	}, nil
}

// GenerateSummary sends a single-message chat completion and returns its
// content. Failures surface as LLM errors; the caller skips the item.
func (c *openAIClient) GenerateSummary(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", apperrors.LLMError(err, "rate limiter interrupted")
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", apperrors.LLMError(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.KindLLM, "chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("completion generated",
		"prompt_length", len(prompt),
		"response_length", len(content),
		"tokens_used", resp.Usage.TotalTokens)
	return content, nil
}

// openAIEmbedder reaches the provider's embedding endpoint through the same
// protocol. Dimension is fixed to the vector index configuration.
type openAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
	logger *slog.Logger
}

func newOpenAIEmbedder(apiKey, model, baseURL string) (*openAIEmbedder, error) {
	if apiKey == "" {
		return nil, apperrors.ConfigErrorf("api key not set for embedding model %q", model)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}

	return &openAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dim:    DefaultEmbeddingDimension,
		logger: slog.Default().With("component", "embedder", "model", model),
	}, nil
}

func (e *openAIEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dim,
	})
	if err != nil {
		return nil, apperrors.EmbeddingError(err, "embedding request failed")
	}
	if len(resp.Data) != len(texts) {
		return nil, apperrors.Newf(apperrors.KindEmbedding,
			"embedding response size mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = item.Embedding
	}
	e.logger.Debug("embeddings generated", "count", len(vectors))
	return vectors, nil
}

func (e *openAIEmbedder) Dimension() int {
	return e.dim
}
