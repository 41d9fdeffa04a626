// Package enrich sequences the full pipeline: graph normalization, source
// linking, summarization and embedding. It owns the cache lifecycle.
package enrich

import (
	"context"

	"github.com/2015xli/jqassistant-graph-rag/internal/cache"
	"github.com/2015xli/jqassistant-graph-rag/internal/config"
	"github.com/2015xli/jqassistant-graph-rag/internal/graph"
	"github.com/2015xli/jqassistant-graph-rag/internal/llm"
	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
	"github.com/2015xli/jqassistant-graph-rag/internal/normalize"
	"github.com/2015xli/jqassistant-graph-rag/internal/source"
	"github.com/2015xli/jqassistant-graph-rag/internal/summarize"
	"github.com/2015xli/jqassistant-graph-rag/internal/token"
)

// Orchestrator wires the passes together for one run. It holds no state
// beyond references to its collaborators.
type Orchestrator struct {
	gateway     *graph.Client
	cfg         *config.Config
	projectPath string
	logger      *logging.Logger
}

// NewOrchestrator creates an Orchestrator for the given project.
func NewOrchestrator(gateway *graph.Client, cfg *config.Config, projectPath string) *Orchestrator {
	return &Orchestrator{
		gateway:     gateway,
		cfg:         cfg,
		projectPath: projectPath,
		logger:      logging.With("component", "orchestrator"),
	}
}

// Run executes normalization, source linking and, when enabled,
// summarization plus embedding.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("--- Starting all enrichment passes ---", "project", o.projectPath)

	normalizer := normalize.NewNormalizer(o.gateway)
	if err := normalizer.RunAll(ctx); err != nil {
		return err
	}
	if detected := normalizer.ProjectPath(); detected != "" && detected != o.projectPath {
		o.logger.Warn("auto-detected project path differs from the given one",
			"detected", detected, "given", o.projectPath)
	}

	linker := source.NewLinker(o.gateway)
	if err := linker.Run(ctx); err != nil {
		return err
	}

	if !o.cfg.Summarize.GenerateSummary {
		o.logger.Info("--- Enrichment passes complete (summarization disabled) ---")
		return nil
	}

	return o.runSummarization(ctx)
}

// runSummarization loads the cache, runs the summarizer passes in
// dependency order, then the embedder. The cache is saved in a deferred
// arm so it persists even when a pass fails.
func (o *Orchestrator) runSummarization(ctx context.Context) (err error) {
	store, err := cache.NewStore(o.projectPath)
	if err != nil {
		return err
	}
	store.Load()
	defer func() {
		if saveErr := store.Save(); saveErr != nil && err == nil {
			err = saveErr
		}
	}()

	client, err := llm.NewClient(&o.cfg.LLM)
	if err != nil {
		return err
	}
	embedder, err := llm.NewEmbedder(&o.cfg.LLM)
	if err != nil {
		return err
	}
	budgeter, err := token.NewBudgeter(o.cfg.Summarize.MaxContext)
	if err != nil {
		return err
	}

	processor := summarize.NewProcessor(client, store, budgeter)
	workers := o.cfg.Summarize.Workers

	type namedPass interface {
		Run(ctx context.Context) (int, error)
		Skipped() int
	}

	passes := []namedPass{
		summarize.NewMethodAnalyzer(o.gateway, processor, workers),
		summarize.NewMethodSummarizer(o.gateway, processor, workers),
		summarize.NewTypeSummarizer(o.gateway, processor, workers),
		summarize.NewSourceFileSummarizer(o.gateway, processor, workers),
		summarize.NewDirectorySummarizer(o.gateway, processor, workers),
	}
	if o.cfg.Summarize.PackageSummary {
		passes = append(passes, summarize.NewPackageSummarizer(o.gateway, processor, workers))
	}
	passes = append(passes, summarize.NewProjectSummarizer(o.gateway, processor, workers))

	skipped := 0
	for _, p := range passes {
		if _, err := p.Run(ctx); err != nil {
			return err
		}
		skipped += p.Skipped()
	}

	if err := summarize.NewEntityEmbedder(o.gateway, embedder).Run(ctx); err != nil {
		return err
	}

	if skipped > 0 {
		o.logger.Warn("some items could not be summarized", "skipped", skipped)
	}
	o.logger.Info("--- All enrichment passes complete ---")
	return nil
}
