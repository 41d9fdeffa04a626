package summarize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2015xli/jqassistant-graph-rag/internal/cache"
	"github.com/2015xli/jqassistant-graph-rag/internal/graph"
	"github.com/2015xli/jqassistant-graph-rag/internal/token"
)

// recordingGateway captures the last write for inspection.
type recordingGateway struct {
	writes []map[string]any
}

func (g *recordingGateway) Read(context.Context, string, map[string]any) ([]map[string]any, error) {
	return nil, nil
}

func (g *recordingGateway) Write(_ context.Context, _ string, params map[string]any) (graph.Counters, error) {
	updates, _ := params["updates"].([]map[string]any)
	g.writes = append(g.writes, updates...)
	return graph.Counters{PropertiesSet: len(updates)}, nil
}

func newTestPass(t *testing.T) (*pass, *cache.Store) {
	t.Helper()
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	budgeter, err := token.NewBudgeter(8192)
	require.NoError(t, err)
	processor := NewProcessor(&countingLLM{}, store, budgeter)
	p := newPass(&recordingGateway{}, processor, 4, "test-pass")
	return &p, store
}

func TestHandleResultUnchangedRefreshesCacheOnly(t *testing.T) {
	p, store := newTestPass(t)

	update := p.handleResult(&Result{Status: StatusUnchanged, ID: "n1", Summary: "db value"})
	assert.Nil(t, update)
	assert.Equal(t, "db value", store.Get("n1").Summary)
	assert.False(t, store.DependencyChanged([]string{"n1"}))
}

func TestHandleResultRestoredWritesButDoesNotMarkChanged(t *testing.T) {
	p, store := newTestPass(t)

	update := p.handleResult(&Result{Status: StatusRestored, ID: "n1", Summary: "cached value"})
	require.NotNil(t, update)
	assert.Equal(t, "cached value", update["summary"])
	assert.False(t, store.DependencyChanged([]string{"n1"}))
}

func TestHandleResultRegeneratedMarksChanged(t *testing.T) {
	p, store := newTestPass(t)

	update := p.handleResult(&Result{
		Status: StatusRegenerated, ID: "n1",
		CodeAnalysis: "analysis", CodeHash: "hash",
	})
	require.NotNil(t, update)
	assert.Equal(t, "analysis", update["code_analysis"])
	assert.Equal(t, "hash", update["code_hash"])
	assert.True(t, store.DependencyChanged([]string{"n1"}))
}

func TestProcessBatchSkipsFailingItems(t *testing.T) {
	p, _ := newTestPass(t)
	gw := p.gateway.(*recordingGateway)

	items := []map[string]any{
		{"id": "ok-1"}, {"id": "bad"}, {"id": "ok-2"},
	}
	process := func(_ context.Context, item map[string]any) (*Result, error) {
		id := item["id"].(string)
		if id == "bad" {
			return nil, errors.New("llm timeout")
		}
		return &Result{Status: StatusRegenerated, ID: id, Summary: "s"}, nil
	}

	updated, err := p.processBatch(context.Background(), items, process, "UNWIND $updates AS item RETURN item")
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, 1, p.Skipped())
	assert.Len(t, gw.writes, 2)
}

func TestProcessBatchEmpty(t *testing.T) {
	p, _ := newTestPass(t)
	updated, err := p.processBatch(context.Background(), nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestRecordHelpers(t *testing.T) {
	record := map[string]any{
		"name":  "add",
		"depth": int64(4),
		"ids":   []any{"a", "b", ""},
	}
	assert.Equal(t, "add", recordString(record, "name"))
	assert.Equal(t, "", recordString(record, "missing"))
	assert.Equal(t, 4, recordInt(record, "depth"))
	assert.Equal(t, []string{"a", "b"}, recordStringList(record, "ids"))
}
