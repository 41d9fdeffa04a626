package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2015xli/jqassistant-graph-rag/internal/config"
)

func TestNewClientFake(t *testing.T) {
	client, err := NewClient(&config.LLMConfig{API: config.LLMFake})
	require.NoError(t, err)

	summary, err := client.GenerateSummary(context.Background(), "anything")
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}

func TestNewClientMissingKey(t *testing.T) {
	_, err := NewClient(&config.LLMConfig{API: config.LLMOpenAI, OpenAIModel: "gpt-3.5-turbo"})
	assert.Error(t, err)
}

func TestNewClientUnknownAPI(t *testing.T) {
	_, err := NewClient(&config.LLMConfig{API: "mystery"})
	assert.Error(t, err)
}

func TestFakeEmbedderDeterministic(t *testing.T) {
	e := &FakeEmbedder{Dim: DefaultEmbeddingDimension}

	first, err := e.GenerateEmbeddings(context.Background(), []string{"a summary", "another"})
	require.NoError(t, err)
	second, err := e.GenerateEmbeddings(context.Background(), []string{"a summary", "another"})
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Len(t, first[0], DefaultEmbeddingDimension)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first[0], first[1])
}
