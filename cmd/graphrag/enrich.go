package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/2015xli/jqassistant-graph-rag/internal/config"
	"github.com/2015xli/jqassistant-graph-rag/internal/enrich"
	"github.com/2015xli/jqassistant-graph-rag/internal/graph"
	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
)

var (
	generateSummary   bool
	llmAPI            string
	summarizePackages bool
	workers           int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <project-path>",
	Short: "Run normalization, summarization and embedding on a scanned project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectPath, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load(projectPath)
		if err != nil {
			return err
		}
		applyFlags(cfg)
		if err := cfg.Validate(projectPath); err != nil {
			return err
		}

		ctx := cmd.Context()
		logging.Info("starting enrichment", "project", projectPath, "llm_api", cfg.LLM.API)

		gateway, err := graph.NewClient(ctx, cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password)
		if err != nil {
			return err
		}
		defer gateway.Close(ctx)

		return enrich.NewOrchestrator(gateway, cfg, projectPath).Run(ctx)
	},
}

// applyFlags overlays explicit command-line flags onto the resolved config.
func applyFlags(cfg *config.Config) {
	if graphURI != "" {
		cfg.Graph.URI = graphURI
	}
	if graphUser != "" {
		cfg.Graph.User = graphUser
	}
	if graphPassword != "" {
		cfg.Graph.Password = graphPassword
	}
	if llmAPI != "" {
		cfg.LLM.API = llmAPI
	}
	if workers > 0 {
		cfg.Summarize.Workers = workers
	}
	cfg.Summarize.GenerateSummary = generateSummary
	cfg.Summarize.PackageSummary = summarizePackages
}

func init() {
	enrichCmd.Flags().BoolVar(&generateSummary, "generate-summary", false, "generate summaries and embeddings after normalization")
	enrichCmd.Flags().StringVar(&llmAPI, "llm-api", "", "LLM API to use: openai, deepseek, ollama or fake")
	enrichCmd.Flags().BoolVar(&summarizePackages, "summarize-packages", false, "also summarize packages over the class hierarchy")
	enrichCmd.Flags().IntVar(&workers, "workers", 0, "summarizer worker pool size (default 8)")
}
