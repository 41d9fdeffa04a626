package normalize

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2015xli/jqassistant-graph-rag/internal/graph"
)

func TestComputeArtifactRootsMisScannedRoot(t *testing.T) {
	// Artifact /proj/src holds classes rooted at com.x under /main/java.
	classes := []ClassFile{
		{FQN: "com.x.App", Path: "/main/java/com/x/App.class"},
		{FQN: "com.x.util.Strings", Path: "/main/java/com/x/util/Strings.class"},
	}
	roots := ComputeArtifactRoots(classes)
	assert.Equal(t, []string{"/main/java"}, roots)
}

func TestComputeArtifactRootsSingleSegmentPackage(t *testing.T) {
	// Class a.B at /a/B.java: the artifact itself is the root.
	classes := []ClassFile{{FQN: "a.B", Path: "/a/B.java"}}
	roots := ComputeArtifactRoots(classes)
	assert.Equal(t, []string{""}, roots)
}

func TestComputeArtifactRootsDefaultPackage(t *testing.T) {
	classes := []ClassFile{{FQN: "Main", Path: "/Main.class"}}
	roots := ComputeArtifactRoots(classes)
	assert.Equal(t, []string{""}, roots)
}

func TestComputeArtifactRootsMultipleRoots(t *testing.T) {
	classes := []ClassFile{
		{FQN: "com.x.App", Path: "/main/java/com/x/App.class"},
		{FQN: "com.x.AppTest", Path: "/test/java/com/x/AppTest.class"},
	}
	roots := ComputeArtifactRoots(classes)
	assert.Equal(t, []string{"/main/java", "/test/java"}, roots)
}

func TestComputeArtifactRootsDropsMismatchedAnchor(t *testing.T) {
	// The directory of the second class does not end with its package
	// path, so it can never anchor a root.
	classes := []ClassFile{
		{FQN: "com.x.App", Path: "/main/java/com/x/App.class"},
		{FQN: "com.x.generated.Proto", Path: "/build/out/Proto.class"},
	}
	roots := ComputeArtifactRoots(classes)
	assert.Equal(t, []string{"/main/java"}, roots)
}

func TestWasDemoted(t *testing.T) {
	assert.False(t, wasDemoted("/proj/src", nil))
	assert.False(t, wasDemoted("/proj/src", []string{"/proj/src"}))
	assert.True(t, wasDemoted("/proj/src", []string{"/proj/src/main/java"}))
	assert.True(t, wasDemoted("/proj/src", []string{"/proj/src/main/java", "/proj/src/test/java"}))
}

// fakeGateway scripts read results by query substring and records writes.
type fakeGateway struct {
	reads  map[string][]map[string]any
	writes []writeCall
}

type writeCall struct {
	query  string
	params map[string]any
}

func (f *fakeGateway) Read(_ context.Context, query string, _ map[string]any) ([]map[string]any, error) {
	for key, records := range f.reads {
		if strings.Contains(query, key) {
			return records, nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) Write(_ context.Context, query string, params map[string]any) (graph.Counters, error) {
	f.writes = append(f.writes, writeCall{query: query, params: params})
	return graph.Counters{}, nil
}

func (f *fakeGateway) wroteContaining(substr string) bool {
	for _, call := range f.writes {
		if strings.Contains(call.query, substr) {
			return true
		}
	}
	return false
}

func TestRelocateDemotesAndPromotes(t *testing.T) {
	gw := &fakeGateway{reads: map[string][]map[string]any{
		"MATCH (a:Directory:Artifact) RETURN a.fileName": {
			{"fileName": "/proj/src"},
		},
		"CONTAINS]->(c:File:Class)": {
			{"fqn": "com.x.App", "path": "/main/java/com/x/App.class"},
			{"fqn": "com.x.util.Strings", "path": "/main/java/com/x/util/Strings.class"},
		},
		"RETURN d.fileName AS path": {
			{"path": "/main/java/com"},
			{"path": "/main/java/com/x"},
			{"path": "/main/java/com/x/util"},
		},
	}}

	n := NewNormalizer(gw)
	require.NoError(t, n.RelocateDirectoryArtifacts(context.Background()))

	// The original was demoted and the discovered root promoted.
	assert.True(t, gw.wroteContaining("REMOVE a:Artifact"))
	assert.True(t, gw.wroteContaining("SET d:Artifact"))
	assert.Equal(t, []string{"/proj/src/main/java"}, n.relocated["/proj/src"])

	// Descendant directories received dotted FQNs relative to the new root.
	var fqnUpdates []map[string]any
	for _, call := range gw.writes {
		if strings.Contains(call.query, "SET d.fqn = p.fqn") {
			fqnUpdates = call.params["params"].([]map[string]any)
		}
	}
	require.Len(t, fqnUpdates, 3)
	got := map[string]string{}
	for _, update := range fqnUpdates {
		got[update["path"].(string)] = update["fqn"].(string)
	}
	assert.Equal(t, "com", got["/main/java/com"])
	assert.Equal(t, "com.x", got["/main/java/com/x"])
	assert.Equal(t, "com.x.util", got["/main/java/com/x/util"])
}

func TestRelocateCorrectlyLabeledArtifact(t *testing.T) {
	gw := &fakeGateway{reads: map[string][]map[string]any{
		"MATCH (a:Directory:Artifact) RETURN a.fileName": {
			{"fileName": "/root"},
		},
		"CONTAINS]->(c:File:Class)": {
			{"fqn": "a.B", "path": "/a/B.class"},
		},
		"RETURN d.fileName AS path": {
			{"path": "/a"},
		},
	}}

	n := NewNormalizer(gw)
	require.NoError(t, n.RelocateDirectoryArtifacts(context.Background()))

	// The label stays; only subtree FQNs are corrected.
	assert.False(t, gw.wroteContaining("REMOVE a:Artifact"))
	assert.Equal(t, []string{"/root"}, n.relocated["/root"])
	assert.True(t, gw.wroteContaining("SET d.fqn = p.fqn"))
}

func TestRelocateStripsLabelWithoutClasses(t *testing.T) {
	gw := &fakeGateway{reads: map[string][]map[string]any{
		"MATCH (a:Directory:Artifact) RETURN a.fileName": {
			{"fileName": "/proj/docs"},
		},
	}}

	n := NewNormalizer(gw)
	require.NoError(t, n.RelocateDirectoryArtifacts(context.Background()))

	assert.True(t, gw.wroteContaining("REMOVE a:Artifact"))
	assert.Empty(t, n.relocated["/proj/docs"])
}

func TestRewriteContainmentSkipsCorrectlyLabeled(t *testing.T) {
	gw := &fakeGateway{reads: map[string][]map[string]any{}}
	n := NewNormalizer(gw)
	n.relocated["/root"] = []string{"/root"}

	require.NoError(t, n.RewriteContainment(context.Background()))

	// Transitive MERGE runs, but no stale fan-out deletion for a root that
	// was never demoted.
	assert.True(t, gw.wroteContaining("MERGE (newArtifact)-[:CONTAINS]->(descendant)"))
	assert.False(t, gw.wroteContaining("DELETE r"))
}
