// Package config resolves the runtime configuration of the enrichment
// pipeline from, in order of precedence, command-line flags, environment
// variables (optionally loaded from .env), and an optional graphrag.yaml.
package config

import (
	"os"

	"github.com/spf13/viper"

	apperrors "github.com/2015xli/jqassistant-graph-rag/internal/errors"
)

// LLM API choices accepted by --llm-api.
const (
	LLMOpenAI   = "openai"
	LLMDeepSeek = "deepseek"
	LLMOllama   = "ollama"
	LLMFake     = "fake"
)

// Config holds all settings for a single enrichment run.
type Config struct {
	// Graph store connection
	Graph GraphConfig `mapstructure:"graph"`

	// LLM and embedding services
	LLM LLMConfig `mapstructure:"llm"`

	// Summarization settings
	Summarize SummarizeConfig `mapstructure:"summarize"`
}

type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type LLMConfig struct {
	API               string `mapstructure:"api"`
	OpenAIKey         string `mapstructure:"openai_key"`
	OpenAIModel       string `mapstructure:"openai_model"`
	DeepSeekKey       string `mapstructure:"deepseek_key"`
	DeepSeekModel     string `mapstructure:"deepseek_model"`
	OllamaBaseURL     string `mapstructure:"ollama_base_url"`
	OllamaModel       string `mapstructure:"ollama_model"`
	EmbeddingModel    string `mapstructure:"embedding_model"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

type SummarizeConfig struct {
	Workers         int  `mapstructure:"workers"`
	MaxContext      int  `mapstructure:"max_context"`
	PackageSummary  bool `mapstructure:"package_summary"`
	GenerateSummary bool `mapstructure:"generate_summary"`
}

// Load assembles the configuration. An optional graphrag.yaml in the project
// directory supplies defaults that the environment overrides.
func Load(projectPath string) (*Config, error) {
	if err := NewEnvLoader().Load(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindConfig, "failed to load .env")
	}

	v := viper.New()
	v.SetConfigName("graphrag")
	v.SetConfigType("yaml")
	v.AddConfigPath(projectPath)
	v.AddConfigPath(".")

	// Defaults; env values override file values below.
	v.SetDefault("graph.uri", "bolt://localhost:7687")
	v.SetDefault("graph.user", "neo4j")
	v.SetDefault("graph.password", "neo4j")
	v.SetDefault("llm.api", LLMFake)
	v.SetDefault("llm.openai_model", "gpt-3.5-turbo")
	v.SetDefault("llm.deepseek_model", "deepseek-coder")
	v.SetDefault("llm.ollama_base_url", "http://localhost:11434")
	v.SetDefault("llm.ollama_model", "deepseek-llm:7b")
	v.SetDefault("llm.embedding_model", "all-MiniLM-L6-v2")
	v.SetDefault("llm.requests_per_minute", 0)
	v.SetDefault("summarize.workers", 8)
	v.SetDefault("summarize.max_context", 8192)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperrors.Wrap(err, apperrors.KindConfig, "failed to read graphrag.yaml")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindConfig, "failed to parse configuration")
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv overlays the documented environment variables.
func applyEnv(cfg *Config) {
	cfg.Graph.URI = GetString("GRAPH_URI", cfg.Graph.URI)
	cfg.Graph.User = GetString("GRAPH_USER", cfg.Graph.User)
	cfg.Graph.Password = GetString("GRAPH_PASSWORD", cfg.Graph.Password)

	cfg.LLM.OpenAIKey = GetString("OPENAI_API_KEY", cfg.LLM.OpenAIKey)
	cfg.LLM.OpenAIModel = GetString("OPENAI_MODEL", cfg.LLM.OpenAIModel)
	cfg.LLM.DeepSeekKey = GetString("DEEPSEEK_API_KEY", cfg.LLM.DeepSeekKey)
	cfg.LLM.DeepSeekModel = GetString("DEEPSEEK_MODEL", cfg.LLM.DeepSeekModel)
	cfg.LLM.OllamaBaseURL = GetString("OLLAMA_BASE_URL", cfg.LLM.OllamaBaseURL)
	cfg.LLM.OllamaModel = GetString("OLLAMA_MODEL", cfg.LLM.OllamaModel)
	cfg.LLM.EmbeddingModel = GetString("SENTENCE_TRANSFORMER_MODEL", cfg.LLM.EmbeddingModel)
	cfg.LLM.RequestsPerMinute = GetInt("LLM_REQUESTS_PER_MINUTE", cfg.LLM.RequestsPerMinute)
}

// Validate checks that the settings required for the selected services are
// present. projectPath must be an existing directory.
func (c *Config) Validate(projectPath string) error {
	info, err := os.Stat(projectPath)
	if err != nil || !info.IsDir() {
		return apperrors.ConfigErrorf("project path %q is not a valid directory", projectPath)
	}

	if c.Graph.URI == "" || c.Graph.User == "" {
		return apperrors.ConfigErrorf("graph connection settings incomplete: uri=%q user=%q", c.Graph.URI, c.Graph.User)
	}

	switch c.LLM.API {
	case LLMOpenAI:
		if c.LLM.OpenAIKey == "" {
			return apperrors.ConfigErrorf("OPENAI_API_KEY is required for --llm-api openai")
		}
	case LLMDeepSeek:
		if c.LLM.DeepSeekKey == "" {
			return apperrors.ConfigErrorf("DEEPSEEK_API_KEY is required for --llm-api deepseek")
		}
	case LLMOllama:
		if c.LLM.OllamaBaseURL == "" {
			return apperrors.ConfigErrorf("OLLAMA_BASE_URL is required for --llm-api ollama")
		}
	case LLMFake:
		// No external service required.
	default:
		return apperrors.ConfigErrorf("unknown llm api %q (supported: openai, deepseek, ollama, fake)", c.LLM.API)
	}

	return nil
}
