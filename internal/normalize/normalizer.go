// Package normalize repairs the raw jQAssistant scan into a clean,
// hierarchical graph: duplicate nodes merged, paths made absolute,
// mis-placed artifact roots relocated, containment rebuilt, and the
// CONTAINS_CLASS / CONTAINS_SOURCE overlays established. Passes run in a
// fixed order; each is idempotent on a fixed-point graph.
package normalize

import (
	"context"

	"github.com/2015xli/jqassistant-graph-rag/internal/graph"
	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
)

// Gateway is the slice of the graph client the passes need.
type Gateway interface {
	Read(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	Write(ctx context.Context, query string, params map[string]any) (graph.Counters, error)
}

// Normalizer runs the normalization passes and carries the relocation state
// later passes depend on.
type Normalizer struct {
	gateway Gateway
	logger  *logging.Logger

	// relocated maps each demoted artifact root to the absolute paths of
	// the artifacts promoted beneath it. A demoted root that turned out to
	// be correctly labeled maps to itself.
	relocated map[string][]string

	// projectPath is the auto-detected project root, set by the project
	// linking pass.
	projectPath string
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(gateway Gateway) *Normalizer {
	return &Normalizer{
		gateway:   gateway,
		logger:    logging.With("component", "normalize"),
		relocated: make(map[string][]string),
	}
}

// ProjectPath returns the project root detected during the project linking
// pass, or "" if the pass has not run.
func (n *Normalizer) ProjectPath() string {
	return n.projectPath
}

// RunAll executes every normalization pass in the required order. Later
// passes rely on the invariants established by earlier ones.
func (n *Normalizer) RunAll(ctx context.Context) error {
	passes := []func(context.Context) error{
		n.MergeDuplicateTypes,
		n.MergeDuplicateMembers,
		n.AddAbsolutePaths,
		n.LabelSourceFiles,
		n.RelocateDirectoryArtifacts,
		n.RewriteContainment,
		n.RewriteRequirements,
		n.EstablishClassHierarchy,
		n.CleanupPackageSemantics,
		n.LinkProjectToArtifacts,
		n.EstablishSourceHierarchy,
		n.CreateEntities,
	}

	for _, pass := range passes {
		if err := pass(ctx); err != nil {
			return err
		}
	}
	return nil
}
