package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	s.Update("id-1", Entry{Summary: "a summary"})
	s.Update("id-2", Entry{Summary: "method summary", CodeAnalysis: "analysis", CodeHash: "deadbeef"})
	require.NoError(t, s.Save())

	reloaded, err := NewStore(dir)
	require.NoError(t, err)
	reloaded.Load()

	assert.Equal(t, 2, reloaded.Len())
	assert.Equal(t, "a summary", reloaded.Get("id-1").Summary)
	assert.Equal(t, "deadbeef", reloaded.Get("id-2").CodeHash)
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	s := newTestStore(t)
	s.Load()
	assert.Equal(t, 0, s.Len())
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cache", "summary_cache.json"), []byte("{not json"), 0o644))
	s.Load()
	assert.Equal(t, 0, s.Len())
}

func TestUpdateMergesFields(t *testing.T) {
	s := newTestStore(t)
	s.Update("id", Entry{CodeAnalysis: "analysis", CodeHash: "hash"})
	s.Update("id", Entry{Summary: "summary"})

	entry := s.Get("id")
	assert.Equal(t, "summary", entry.Summary)
	assert.Equal(t, "analysis", entry.CodeAnalysis)
	assert.Equal(t, "hash", entry.CodeHash)
}

func TestBackupRotation(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	s.Update("id", Entry{Summary: "v1"})
	require.NoError(t, s.Save())

	firstSave, err := os.ReadFile(s.mainFile)
	require.NoError(t, err)

	s.Update("id", Entry{Summary: "v2"})
	require.NoError(t, s.Save())

	// After the second save, .bak.1 must equal the pre-save main file.
	bak1, err := os.ReadFile(s.bak1File)
	require.NoError(t, err)
	assert.Equal(t, firstSave, bak1)

	var current map[string]Entry
	data, err := os.ReadFile(s.mainFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &current))
	assert.Equal(t, "v2", current["id"].Summary)
}

func TestSanityGateAbortsPromotion(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	// Seed a large main cache on disk.
	big := make(map[string]Entry, 10000)
	for i := 0; i < 10000; i++ {
		big[fmt.Sprintf("id-%d", i)] = Entry{Summary: "s"}
	}
	data, err := json.Marshal(big)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.mainFile, data, 0o644))

	// A run that discovered only 50 items must not clobber it.
	for i := 0; i < 50; i++ {
		s.Update(fmt.Sprintf("id-%d", i), Entry{Summary: "s"})
	}
	require.NoError(t, s.Save())

	// Main file untouched, .tmp preserved for inspection.
	onDisk, err := os.ReadFile(s.mainFile)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	_, err = os.Stat(s.tmpFile)
	assert.NoError(t, err)
}

func TestSanityGateAllowsSmallOldCache(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	// 100-item floor: a one-item old cache never triggers the gate.
	old := map[string]Entry{"a": {Summary: "s"}}
	data, err := json.Marshal(old)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.mainFile, data, 0o644))

	require.NoError(t, s.Save())

	var current map[string]Entry
	onDisk, err := os.ReadFile(s.mainFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(onDisk, &current))
	assert.Empty(t, current)
}

func TestDependencyChanged(t *testing.T) {
	s := newTestStore(t)

	assert.False(t, s.DependencyChanged([]string{"a", "b"}))
	s.MarkRegenerated("b")
	assert.True(t, s.DependencyChanged([]string{"a", "b"}))
	assert.False(t, s.DependencyChanged([]string{"a", "c"}))
	assert.False(t, s.DependencyChanged(nil))
}
