// Package cache persists summaries between runs so unchanged entities never
// hit the LLM twice. The store is owned by a single process for the duration
// of a run; there is no cross-process locking.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
)

const (
	cacheDirName  = ".cache"
	cacheFileName = "summary_cache.json"
)

// Entry is the cached state of one entity. CodeAnalysis and CodeHash are
// populated for methods only.
type Entry struct {
	Summary      string `json:"summary,omitempty"`
	CodeAnalysis string `json:"code_analysis,omitempty"`
	CodeHash     string `json:"code_hash,omitempty"`
}

// Store maps entity_id to cached summaries and tracks which entities were
// regenerated during the current run.
type Store struct {
	cacheDir string
	mainFile string
	tmpFile  string
	bak1File string
	bak2File string

	mu    sync.Mutex
	cache map[string]Entry

	statusMu sync.Mutex
	changed  map[string]bool

	logger *logging.Logger
}

// NewStore creates a Store rooted at <projectPath>/.cache.
func NewStore(projectPath string) (*Store, error) {
	cacheDir := filepath.Join(projectPath, cacheDirName)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}

	mainFile := filepath.Join(cacheDir, cacheFileName)
	return &Store{
		cacheDir: cacheDir,
		mainFile: mainFile,
		tmpFile:  mainFile + ".tmp",
		bak1File: mainFile + ".bak.1",
		bak2File: mainFile + ".bak.2",
		cache:    make(map[string]Entry),
		changed:  make(map[string]bool),
		logger:   logging.With("component", "cache"),
	}, nil
}

// Load reads the cache from disk. A missing or corrupt file logs a warning
// and leaves the store empty; the run proceeds.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.mainFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("cache file not found, starting with an empty cache", "path", s.mainFile)
		} else {
			s.logger.Warn("failed to read cache file, starting with an empty cache", "path", s.mainFile, "error", err)
		}
		s.cache = make(map[string]Entry)
		return
	}

	loaded := make(map[string]Entry)
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("failed to parse cache file, starting with an empty cache", "path", s.mainFile, "error", err)
		s.cache = make(map[string]Entry)
		return
	}

	s.cache = loaded
	s.logger.Info("loaded cache", "path", s.mainFile, "entries", len(loaded))
}

// Save writes the cache to disk with the staged promotion protocol:
// write .tmp, sanity-check against the current main file, rotate backups,
// then move .tmp into place. On a sanity failure the main file is left
// untouched and .tmp is preserved for manual recovery.
func (s *Store) Save() error {
	s.mu.Lock()
	snapshot := make(map[string]Entry, len(s.cache))
	for k, v := range s.cache {
		snapshot[k] = v
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.tmpFile, data, 0o644); err != nil {
		s.logger.Error("failed to write temporary cache file", "path", s.tmpFile, "error", err)
		return err
	}

	return s.promoteTmp(len(snapshot))
}

// promoteTmp performs the sanity gate and backup rotation before renaming
// the temporary file over the main one.
func (s *Store) promoteTmp(newSize int) error {
	if data, err := os.ReadFile(s.mainFile); err == nil {
		old := make(map[string]Entry)
		if err := json.Unmarshal(data, &old); err == nil {
			oldSize := len(old)
			if oldSize > 100 && float64(newSize) < 0.95*float64(oldSize) {
				s.logger.Error(
					"sanity check failed: new cache is significantly smaller than the old one, aborting promotion",
					"new_entries", newSize,
					"old_entries", oldSize,
					"tmp_path", s.tmpFile)
				return nil
			}
		} else {
			s.logger.Warn("could not sanity-check old cache file, proceeding with promotion", "error", err)
		}
	}

	s.rotateBackups()
	if err := os.Rename(s.tmpFile, s.mainFile); err != nil {
		s.logger.Error("failed to promote temporary cache file", "error", err)
		return err
	}
	s.logger.Info("cache saved", "path", s.mainFile, "entries", newSize)
	return nil
}

// rotateBackups maintains the two-level rolling backup chain.
func (s *Store) rotateBackups() {
	if _, err := os.Stat(s.bak2File); err == nil {
		os.Remove(s.bak2File)
	}
	if _, err := os.Stat(s.bak1File); err == nil {
		os.Rename(s.bak1File, s.bak2File)
	}
	if _, err := os.Stat(s.mainFile); err == nil {
		os.Rename(s.mainFile, s.bak1File)
	}
}

// Get returns the cached entry for an entity, zero-valued when absent.
func (s *Store) Get(entityID string) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache[entityID]
}

// Update merges non-empty fields of data into the entity's cached entry.
func (s *Store) Update(entityID string, data Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.cache[entityID]
	if data.Summary != "" {
		entry.Summary = data.Summary
	}
	if data.CodeAnalysis != "" {
		entry.CodeAnalysis = data.CodeAnalysis
	}
	if data.CodeHash != "" {
		entry.CodeHash = data.CodeHash
	}
	s.cache[entityID] = entry
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// MarkRegenerated records that the entity's summary was rebuilt this run,
// which invalidates every dependent further up the hierarchy.
func (s *Store) MarkRegenerated(entityID string) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.changed[entityID] = true
}

// DependencyChanged reports whether any of the given entities were
// regenerated during the current run.
func (s *Store) DependencyChanged(entityIDs []string) bool {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	for _, id := range entityIDs {
		if s.changed[id] {
			return true
		}
	}
	return false
}
