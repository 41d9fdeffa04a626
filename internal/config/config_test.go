package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
	assert.Equal(t, "neo4j", cfg.Graph.User)
	assert.Equal(t, LLMFake, cfg.LLM.API)
	assert.Equal(t, 8, cfg.Summarize.Workers)
	assert.Equal(t, 8192, cfg.Summarize.MaxContext)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.LLM.EmbeddingModel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GRAPH_URI", "bolt://db.internal:7688")
	t.Setenv("GRAPH_USER", "svc")
	t.Setenv("OLLAMA_MODEL", "codellama:13b")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "bolt://db.internal:7688", cfg.Graph.URI)
	assert.Equal(t, "svc", cfg.Graph.User)
	assert.Equal(t, "codellama:13b", cfg.LLM.OllamaModel)
}

func TestValidateProjectPath(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, cfg.Validate("/does/not/exist"))
	assert.NoError(t, cfg.Validate(t.TempDir()))
}

func TestValidateLLMRequirements(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	cfg.LLM.API = LLMOpenAI
	cfg.LLM.OpenAIKey = ""
	assert.Error(t, cfg.Validate(dir))

	cfg.LLM.OpenAIKey = "sk-test"
	assert.NoError(t, cfg.Validate(dir))

	cfg.LLM.API = "bogus"
	assert.Error(t, cfg.Validate(dir))
}

func TestGetters(t *testing.T) {
	t.Setenv("GR_TEST_STR", "value")
	t.Setenv("GR_TEST_INT", "42")
	t.Setenv("GR_TEST_BOOL", "true")

	assert.Equal(t, "value", GetString("GR_TEST_STR", "d"))
	assert.Equal(t, "d", GetString("GR_TEST_MISSING", "d"))
	assert.Equal(t, 42, GetInt("GR_TEST_INT", 0))
	assert.Equal(t, 7, GetInt("GR_TEST_MISSING", 7))
	assert.True(t, GetBool("GR_TEST_BOOL", false))
}
