package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2015xli/jqassistant-graph-rag/internal/cache"
	"github.com/2015xli/jqassistant-graph-rag/internal/token"
)

// countingLLM records every prompt and returns canned summaries.
type countingLLM struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	reply   string
	err     error
}

func (c *countingLLM) GenerateSummary(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	if c.reply != "" {
		return c.reply, nil
	}
	return fmt.Sprintf("generated summary %d", c.calls), nil
}

func newTestProcessor(t *testing.T, maxContext int) (*Processor, *countingLLM, *cache.Store) {
	t.Helper()
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	budgeter, err := token.NewBudgeter(maxContext)
	require.NoError(t, err)
	client := &countingLLM{}
	return NewProcessor(client, store, budgeter), client, store
}

func TestMethodCodeAnalysisWaterfall(t *testing.T) {
	p, llmClient, store := newTestProcessor(t, 8192)
	ctx := context.Background()

	source := "int add(int a, int b) { return a + b; }"
	hash := ContentHash(source)

	// 1. DB-fresh: matching hash and existing analysis short-circuits.
	result, err := p.MethodCodeAnalysis(ctx, MethodSource{
		ID: "m1", SourceCode: source, DBAnalysis: "db analysis", DBHash: hash,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, result.Status)
	assert.Equal(t, "db analysis", result.CodeAnalysis)
	assert.Equal(t, 0, llmClient.calls)

	// 2. Cache-restore: stale DB but fresh cache entry.
	store.Update("m1", cache.Entry{CodeAnalysis: "cached analysis", CodeHash: hash})
	result, err = p.MethodCodeAnalysis(ctx, MethodSource{ID: "m1", SourceCode: source})
	require.NoError(t, err)
	assert.Equal(t, StatusRestored, result.Status)
	assert.Equal(t, "cached analysis", result.CodeAnalysis)
	assert.Equal(t, 0, llmClient.calls)

	// 3. Regenerate: nothing fresh anywhere.
	result, err = p.MethodCodeAnalysis(ctx, MethodSource{ID: "m2", SourceCode: source})
	require.NoError(t, err)
	assert.Equal(t, StatusRegenerated, result.Status)
	assert.Equal(t, hash, result.CodeHash)
	assert.Equal(t, 1, llmClient.calls)
}

func TestMethodCodeAnalysisNoSource(t *testing.T) {
	p, _, _ := newTestProcessor(t, 8192)
	result, err := p.MethodCodeAnalysis(context.Background(), MethodSource{ID: "m1"})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestMethodSummaryDependencyFreshness(t *testing.T) {
	p, llmClient, store := newTestProcessor(t, 8192)
	ctx := context.Background()

	store.Update("m1", cache.Entry{CodeAnalysis: "does math"})

	// DB summary present and nothing changed: unchanged.
	result, err := p.MethodSummary(ctx, MethodContext{ID: "m1", Name: "add", DBSummary: "old summary"})
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, result.Status)
	assert.Equal(t, 0, llmClient.calls)

	// Mark the method's own analysis regenerated: waterfall reaches branch 3.
	store.MarkRegenerated("m1")
	result, err = p.MethodSummary(ctx, MethodContext{ID: "m1", Name: "add", DBSummary: "old summary"})
	require.NoError(t, err)
	assert.Equal(t, StatusRegenerated, result.Status)
	assert.Equal(t, 1, llmClient.calls)
}

func TestMethodSummaryWithoutAnalysisSkips(t *testing.T) {
	p, _, _ := newTestProcessor(t, 8192)
	result, err := p.MethodSummary(context.Background(), MethodContext{ID: "missing", Name: "x"})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestMethodSummaryOversizeContextFoldsIteratively(t *testing.T) {
	// Tiny context window forces the iterative path.
	p, llmClient, store := newTestProcessor(t, 128)
	ctx := context.Background()

	store.Update("m1", cache.Entry{CodeAnalysis: "parses the incoming request payload"})

	var calleeIDs []string
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("callee-%d", i)
		calleeIDs = append(calleeIDs, id)
		store.Update(id, cache.Entry{Summary: strings.Repeat("verbose callee responsibility ", 5)})
	}

	result, err := p.MethodSummary(ctx, MethodContext{ID: "m1", Name: "handle", CalleeIDs: calleeIDs})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, StatusRegenerated, result.Status)
	assert.NotEmpty(t, result.Summary)
	// More than one fold means the callee context was chunked.
	assert.Greater(t, llmClient.calls, 1)
}

func TestTypeSummaryWaterfall(t *testing.T) {
	p, llmClient, store := newTestProcessor(t, 8192)
	ctx := context.Background()

	store.Update("parent", cache.Entry{Summary: "base widget"})
	store.Update("member", cache.Entry{Summary: "renders the widget"})

	item := TypeContext{
		ID: "t1", Name: "Widget", Label: "Class",
		ParentIDs: []string{"parent"}, MemberIDs: []string{"member"},
	}

	result, err := p.TypeSummary(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, StatusRegenerated, result.Status)
	require.Equal(t, 1, llmClient.calls)
	assert.Contains(t, llmClient.prompts[0], "base widget")
	assert.Contains(t, llmClient.prompts[0], "renders the widget")

	// A changed member invalidates the cached type summary.
	store.Update("t1", cache.Entry{Summary: result.Summary})
	store.MarkRegenerated("member")
	result, err = p.TypeSummary(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, StatusRegenerated, result.Status)
}

func TestHierarchicalSummaryNeedsChildren(t *testing.T) {
	p, _, _ := newTestProcessor(t, 8192)
	result, err := p.HierarchicalSummary(context.Background(), HierarchicalNode{
		ID: "d1", Name: "/src", NodeType: "Directory",
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestHierarchicalSummaryRestoredFromCache(t *testing.T) {
	p, llmClient, store := newTestProcessor(t, 8192)

	store.Update("d1", cache.Entry{Summary: "cached dir summary"})
	result, err := p.HierarchicalSummary(context.Background(), HierarchicalNode{
		ID: "d1", Name: "/src", NodeType: "Directory", DependencyIDs: []string{"f1"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusRestored, result.Status)
	assert.Equal(t, "cached dir summary", result.Summary)
	assert.Equal(t, 0, llmClient.calls)
}

func TestContentHashStable(t *testing.T) {
	assert.Equal(t, ContentHash("abc"), ContentHash("abc"))
	assert.NotEqual(t, ContentHash("abc"), ContentHash("abd"))
	assert.Len(t, ContentHash("abc"), 32)
}
