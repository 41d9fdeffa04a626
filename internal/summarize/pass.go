package summarize

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/2015xli/jqassistant-graph-rag/internal/cache"
	"github.com/2015xli/jqassistant-graph-rag/internal/graph"
	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
)

// DefaultWorkers is the worker pool size used when none is configured.
const DefaultWorkers = 8

// Gateway is the slice of the graph client the summarizer passes need.
type Gateway interface {
	Read(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	Write(ctx context.Context, query string, params map[string]any) (graph.Counters, error)
}

// pass is the shared machinery of every summarizer pass: a bounded worker
// pool over the items of one dependency level, per-item error isolation,
// cache bookkeeping, and a single batched update query per level.
type pass struct {
	gateway   Gateway
	processor *Processor
	workers   int
	logger    *logging.Logger

	// skipped counts items that failed this pass; reported at the end of
	// the run.
	skipped int
}

func newPass(gateway Gateway, processor *Processor, workers int, name string) pass {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return pass{
		gateway:   gateway,
		processor: processor,
		workers:   workers,
		logger:    logging.With("component", name),
	}
}

// processBatch runs process over every item in parallel and flushes the
// regenerated and restored results to the database in one UNWIND query.
// A failing item is logged and skipped; its neighbors continue. Returns the
// number of properties set.
func (p *pass) processBatch(
	ctx context.Context,
	items []map[string]any,
	process func(context.Context, map[string]any) (*Result, error),
	updateQuery string,
) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	p.logger.Info("processing batch", "items", len(items))

	var mu sync.Mutex
	var updates []map[string]any

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, item := range items {
		item := item
		g.Go(func() error {
			result, err := process(groupCtx, item)
			if err != nil {
				p.logger.Error("error processing item, skipping",
					"id", item["id"], "error", err)
				mu.Lock()
				p.skipped++
				mu.Unlock()
				return nil
			}

			update := p.handleResult(result)
			if update != nil {
				mu.Lock()
				updates = append(updates, update)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if len(updates) == 0 {
		p.logger.Info("no database updates generated for this batch")
		return 0, nil
	}

	counters, err := p.gateway.Write(ctx, updateQuery, map[string]any{"updates": updates})
	if err != nil {
		return 0, err
	}
	p.logger.Info("batch complete", "properties_set", counters.PropertiesSet)
	return counters.PropertiesSet, nil
}

// handleResult updates the cache and runtime status from a processor
// result and returns the database update row for restored and regenerated
// items. Unchanged items refresh the cache but write nothing.
func (p *pass) handleResult(result *Result) map[string]any {
	if result == nil {
		return nil
	}

	entry := cache.Entry{
		Summary:      result.Summary,
		CodeAnalysis: result.CodeAnalysis,
		CodeHash:     result.CodeHash,
	}
	p.processor.cache.Update(result.ID, entry)

	switch result.Status {
	case StatusRegenerated:
		p.processor.cache.MarkRegenerated(result.ID)
	case StatusRestored:
		// Restored results re-populate the DB but do not mark change.
	case StatusUnchanged:
		return nil
	}

	update := map[string]any{"id": result.ID}
	if result.Summary != "" {
		update["summary"] = result.Summary
	}
	if result.CodeAnalysis != "" {
		update["code_analysis"] = result.CodeAnalysis
	}
	if result.CodeHash != "" {
		update["code_hash"] = result.CodeHash
	}
	return update
}

// Skipped returns the number of items this pass failed to process.
func (p *pass) Skipped() int {
	return p.skipped
}

// Record access helpers shared by the passes. Neo4j returns strings, int64
// and []any values inside record maps.

func recordString(record map[string]any, key string) string {
	value, _ := record[key].(string)
	return value
}

func recordInt(record map[string]any, key string) int {
	switch v := record[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func recordStringList(record map[string]any, key string) []string {
	raw, ok := record[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
