// Package summarize implements the bottom-up, dependency-ordered
// summarization of every entity in the normalized graph, plus the embedding
// pass that follows it.
package summarize

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/2015xli/jqassistant-graph-rag/internal/cache"
	"github.com/2015xli/jqassistant-graph-rag/internal/llm"
	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
	"github.com/2015xli/jqassistant-graph-rag/internal/prompt"
	"github.com/2015xli/jqassistant-graph-rag/internal/token"
)

// Status reports which branch of the waterfall produced a node's artifact.
type Status string

const (
	// StatusUnchanged - the database already held a fresh artifact.
	StatusUnchanged Status = "unchanged"
	// StatusRestored - the cache held a fresh artifact; the DB gets it back.
	StatusRestored Status = "restored"
	// StatusRegenerated - the LLM produced a new artifact.
	StatusRegenerated Status = "regenerated"
)

// Result is the outcome of processing one node.
type Result struct {
	Status       Status
	ID           string
	Summary      string
	CodeAnalysis string
	CodeHash     string
}

// Processor holds the per-node waterfall logic: DB-fresh, cache-restore,
// regenerate. It is stateless apart from its collaborators and safe for
// concurrent use by the summarizer worker pool.
type Processor struct {
	llm      llm.Client
	cache    *cache.Store
	budgeter *token.Budgeter
	logger   *logging.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(client llm.Client, store *cache.Store, budgeter *token.Budgeter) *Processor {
	return &Processor{
		llm:      client,
		cache:    store,
		budgeter: budgeter,
		logger:   logging.With("component", "processor"),
	}
}

// ContentHash is the freshness key for method code analysis: the md5 of the
// method's source text.
func ContentHash(sourceCode string) string {
	sum := md5.Sum([]byte(sourceCode))
	return hex.EncodeToString(sum[:])
}

// MethodSource is the input for code analysis of one method.
type MethodSource struct {
	ID         string
	SourceCode string
	DBAnalysis string
	DBHash     string
}

// MethodCodeAnalysis runs the waterfall for a method's code analysis, keyed
// by the content hash of its source. Returns nil when the method has no
// source or regeneration failed.
func (p *Processor) MethodCodeAnalysis(ctx context.Context, item MethodSource) (*Result, error) {
	if item.SourceCode == "" {
		return nil, nil
	}

	newHash := ContentHash(item.SourceCode)

	// 1. DB state: perfect hit.
	if item.DBAnalysis != "" && item.DBHash == newHash {
		return &Result{Status: StatusUnchanged, ID: item.ID, CodeAnalysis: item.DBAnalysis, CodeHash: newHash}, nil
	}

	// 2. Cache state: restorable.
	cached := p.cache.Get(item.ID)
	if cached.CodeHash == newHash && cached.CodeAnalysis != "" {
		return &Result{Status: StatusRestored, ID: item.ID, CodeAnalysis: cached.CodeAnalysis, CodeHash: newHash}, nil
	}

	// 3. Regenerate.
	analysis, err := p.analyzeCodeIteratively(ctx, item.SourceCode)
	if err != nil {
		return nil, err
	}
	if analysis == "" {
		return nil, nil
	}
	return &Result{Status: StatusRegenerated, ID: item.ID, CodeAnalysis: analysis, CodeHash: newHash}, nil
}

// analyzeCodeIteratively analyzes a method body, chunking it when it does
// not fit the context window and threading the running summary through each
// chunk.
func (p *Processor) analyzeCodeIteratively(ctx context.Context, sourceCode string) (string, error) {
	var chunks []string
	if p.budgeter.Count(sourceCode) <= p.budgeter.MaxContext {
		chunks = []string{sourceCode}
	} else {
		p.logger.Info("source code is large, chunking", "tokens", p.budgeter.Count(sourceCode))
		chunks = p.budgeter.ChunkText(sourceCode)
	}

	runningSummary := ""
	for i, chunk := range chunks {
		req := prompt.MethodAnalysis(chunk, i == 0, i == len(chunks)-1, runningSummary)
		summary, err := p.llm.GenerateSummary(ctx, req)
		if err != nil {
			p.logger.Error("iterative code analysis failed", "chunk", i+1, "error", err)
			return "", err
		}
		runningSummary = summary
	}
	return runningSummary, nil
}

// MethodContext is the input for a method's contextual summary.
type MethodContext struct {
	ID        string
	Name      string
	DBSummary string
	CallerIDs []string
	CalleeIDs []string
}

// MethodSummary runs the waterfall for a method's contextual summary. The
// method itself is its own freshness dependency: a regenerated code
// analysis marks it changed.
func (p *Processor) MethodSummary(ctx context.Context, item MethodContext) (*Result, error) {
	stale := p.cache.DependencyChanged([]string{item.ID})

	if item.DBSummary != "" && !stale {
		return &Result{Status: StatusUnchanged, ID: item.ID, Summary: item.DBSummary}, nil
	}

	cached := p.cache.Get(item.ID)
	if cached.Summary != "" && !stale {
		return &Result{Status: StatusRestored, ID: item.ID, Summary: cached.Summary}, nil
	}

	codeAnalysis := cached.CodeAnalysis
	if codeAnalysis == "" {
		return nil, nil
	}

	callerSummaries := p.collectSummaries(item.CallerIDs)
	calleeSummaries := p.collectSummaries(item.CalleeIDs)

	var summary string
	var err error
	fullContext := strings.Join(append(append([]string{codeAnalysis}, callerSummaries...), calleeSummaries...), " ")
	if p.budgeter.Count(fullContext) < p.budgeter.MaxContext {
		summary, err = p.llm.GenerateSummary(ctx,
			prompt.MethodSummary(item.Name, codeAnalysis, callerSummaries, calleeSummaries))
	} else {
		p.logger.Info("method context is too large, starting iterative summarization", "method", item.Name)
		summary, err = p.summarizeMethodIteratively(ctx, codeAnalysis, callerSummaries, calleeSummaries)
	}
	if err != nil {
		return nil, err
	}
	if summary == "" {
		return nil, nil
	}
	return &Result{Status: StatusRegenerated, ID: item.ID, Summary: summary}, nil
}

// summarizeMethodIteratively folds caller then callee context into a
// running summary seeded with the code analysis.
func (p *Processor) summarizeMethodIteratively(ctx context.Context, codeAnalysis string, callers, callees []string) (string, error) {
	runningSummary := codeAnalysis

	for i, chunk := range p.budgeter.ChunkSummaries(callers) {
		summary, err := p.llm.GenerateSummary(ctx,
			prompt.IterativeMethodSummary(runningSummary, chunk, prompt.RelationCallers))
		if err != nil {
			p.logger.Error("iterative method summary (callers) failed", "chunk", i+1, "error", err)
			return "", err
		}
		runningSummary = summary
	}

	for i, chunk := range p.budgeter.ChunkSummaries(callees) {
		summary, err := p.llm.GenerateSummary(ctx,
			prompt.IterativeMethodSummary(runningSummary, chunk, prompt.RelationCallees))
		if err != nil {
			p.logger.Error("iterative method summary (callees) failed", "chunk", i+1, "error", err)
			return "", err
		}
		runningSummary = summary
	}

	return runningSummary, nil
}

// TypeContext is the input for a type's contextual summary.
type TypeContext struct {
	ID        string
	Name      string
	Label     string
	DBSummary string
	ParentIDs []string
	MemberIDs []string
}

// TypeSummary runs the waterfall for a type from its parents' and members'
// summaries.
func (p *Processor) TypeSummary(ctx context.Context, item TypeContext) (*Result, error) {
	dependencyIDs := append(append([]string{}, item.ParentIDs...), item.MemberIDs...)
	stale := p.cache.DependencyChanged(dependencyIDs)

	if item.DBSummary != "" && !stale {
		return &Result{Status: StatusUnchanged, ID: item.ID, Summary: item.DBSummary}, nil
	}

	cached := p.cache.Get(item.ID)
	if cached.Summary != "" && !stale {
		return &Result{Status: StatusRestored, ID: item.ID, Summary: cached.Summary}, nil
	}

	parentSummaries := p.collectSummaries(item.ParentIDs)
	memberSummaries := p.collectSummaries(item.MemberIDs)

	var summary string
	var err error
	fullContext := strings.Join(append(append([]string{}, parentSummaries...), memberSummaries...), " ")
	if p.budgeter.Count(fullContext) < p.budgeter.MaxContext {
		summary, err = p.llm.GenerateSummary(ctx,
			prompt.TypeSummary(item.Name, item.Label, parentSummaries, memberSummaries))
	} else {
		p.logger.Info("type context is too large, starting iterative summarization", "type", item.Name)
		summary, err = p.summarizeTypeIteratively(ctx, item, parentSummaries, memberSummaries)
	}
	if err != nil {
		return nil, err
	}
	if summary == "" {
		return nil, nil
	}
	return &Result{Status: StatusRegenerated, ID: item.ID, Summary: summary}, nil
}

func (p *Processor) summarizeTypeIteratively(ctx context.Context, item TypeContext, parents, members []string) (string, error) {
	runningSummary := prompt.TypeSeed(item.Name, item.Label)

	for i, chunk := range p.budgeter.ChunkSummaries(parents) {
		summary, err := p.llm.GenerateSummary(ctx,
			prompt.IterativeTypeSummary(item.Name, item.Label, runningSummary, chunk, prompt.RelationParents))
		if err != nil {
			p.logger.Error("iterative type summary (parents) failed", "chunk", i+1, "error", err)
			return "", err
		}
		runningSummary = summary
	}

	for i, chunk := range p.budgeter.ChunkSummaries(members) {
		summary, err := p.llm.GenerateSummary(ctx,
			prompt.IterativeTypeSummary(item.Name, item.Label, runningSummary, chunk, prompt.RelationMembers))
		if err != nil {
			p.logger.Error("iterative type summary (members) failed", "chunk", i+1, "error", err)
			return "", err
		}
		runningSummary = summary
	}

	return runningSummary, nil
}

// HierarchicalNode is the input for any aggregate node: source file,
// directory, package, artifact root or project.
type HierarchicalNode struct {
	ID            string
	Name          string
	NodeType      string
	DBSummary     string
	DependencyIDs []string
}

// HierarchicalSummary runs the waterfall for an aggregate node from its
// children's summaries. Without any child context the node is skipped.
func (p *Processor) HierarchicalSummary(ctx context.Context, item HierarchicalNode) (*Result, error) {
	stale := p.cache.DependencyChanged(item.DependencyIDs)

	if item.DBSummary != "" && !stale {
		return &Result{Status: StatusUnchanged, ID: item.ID, Summary: item.DBSummary}, nil
	}

	cached := p.cache.Get(item.ID)
	if cached.Summary != "" && !stale {
		return &Result{Status: StatusRestored, ID: item.ID, Summary: cached.Summary}, nil
	}

	childSummaries := p.collectSummaries(item.DependencyIDs)
	if len(childSummaries) == 0 {
		return nil, nil
	}

	var summary string
	var err error
	if p.budgeter.Count(strings.Join(childSummaries, " ")) < p.budgeter.MaxContext {
		childContext := strings.Join(childSummaries, "; ")
		summary, err = p.llm.GenerateSummary(ctx,
			prompt.HierarchicalSummary(item.NodeType, item.Name, childContext))
	} else {
		p.logger.Info("context is too large, starting iterative summarization",
			"node_type", item.NodeType, "name", item.Name)
		summary, err = p.summarizeHierarchicalIteratively(ctx, item, childSummaries)
	}
	if err != nil {
		return nil, err
	}
	if summary == "" {
		return nil, nil
	}
	return &Result{Status: StatusRegenerated, ID: item.ID, Summary: summary}, nil
}

func (p *Processor) summarizeHierarchicalIteratively(ctx context.Context, item HierarchicalNode, children []string) (string, error) {
	runningSummary := prompt.HierarchicalSeed(item.NodeType, item.Name)

	for i, chunk := range p.budgeter.ChunkSummaries(children) {
		summary, err := p.llm.GenerateSummary(ctx,
			prompt.IterativeHierarchical(item.NodeType, item.Name, runningSummary, chunk))
		if err != nil {
			p.logger.Error("iterative hierarchical summary failed",
				"node_type", item.NodeType, "name", item.Name, "chunk", i+1, "error", err)
			return "", err
		}
		runningSummary = summary
	}
	return runningSummary, nil
}

// collectSummaries resolves cached summaries for the given entity ids,
// dropping entities that have none.
func (p *Processor) collectSummaries(ids []string) []string {
	var summaries []string
	for _, id := range ids {
		if s := p.cache.Get(id).Summary; s != "" {
			summaries = append(summaries, s)
		}
	}
	return summaries
}
