package normalize

import (
	"context"
	"path/filepath"
	"sort"

	apperrors "github.com/2015xli/jqassistant-graph-rag/internal/errors"
	"github.com/2015xli/jqassistant-graph-rag/internal/pathutil"
)

// EstablishClassHierarchy builds the [:CONTAINS_CLASS] overlay inside every
// artifact: directories link to the types and files exactly one segment
// below them, directories link to their direct child directories (deepest
// first), and the artifact links to the directories that top its class
// forest. Archive artifacts are included alongside the relocated roots.
func (n *Normalizer) EstablishClassHierarchy(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Establish Class Hierarchy ---")

	artifactPaths := make(map[string]bool)
	for _, promoted := range n.relocated {
		for _, path := range promoted {
			artifactPaths[path] = true
		}
	}

	records, err := n.gateway.Read(ctx,
		"MATCH (a:Jar:Artifact) RETURN a.fileName AS path", nil)
	if err != nil {
		return err
	}
	for _, record := range records {
		if path, _ := record["path"].(string); path != "" {
			artifactPaths[path] = true
		}
	}

	ordered := make([]string, 0, len(artifactPaths))
	for path := range artifactPaths {
		ordered = append(ordered, path)
	}
	sort.Strings(ordered)

	for _, path := range ordered {
		if err := n.establishClassHierarchyInArtifact(ctx, path); err != nil {
			return err
		}
	}

	n.logger.Info("--- Finished Pass: Establish Class Hierarchy ---")
	return nil
}

func (n *Normalizer) establishClassHierarchyInArtifact(ctx context.Context, artifactPath string) error {
	n.logger.Info("building class hierarchy for artifact", "path", artifactPath)

	records, err := n.gateway.Read(ctx, `
		MATCH (a:Artifact {fileName: $artifact_path})-[:CONTAINS]->(d:Directory)
		WHERE d.fileName IS NOT NULL
		RETURN DISTINCT d.fileName AS path, size(split(d.fileName, '/')) AS depth
	`, map[string]any{"artifact_path": artifactPath})
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(records))
	byDepth := make(map[int][]string)
	for _, record := range records {
		path, _ := record["path"].(string)
		depth, _ := record["depth"].(int64)
		paths = append(paths, path)
		byDepth[int(depth)] = append(byDepth[int(depth)], path)
	}

	// Types and class files one segment below each directory.
	if _, err := n.gateway.Write(ctx, `
		UNWIND $paths AS dir_path
		MATCH (parentDir:Directory {fileName: dir_path})
		MATCH (a:Artifact {fileName: $artifact_path})-[:CONTAINS]->(parentDir)
		MATCH (a)-[:CONTAINS]->(t:Type:File)
		WHERE t.fileName STARTS WITH parentDir.fileName + '/'
		AND size(split(t.fileName, '/')) = size(split(parentDir.fileName, '/')) + 1
		MERGE (parentDir)-[:CONTAINS_CLASS]->(t)
	`, map[string]any{"paths": paths, "artifact_path": artifactPath}); err != nil {
		return err
	}

	// Child directories, deepest parents first.
	depths := make([]int, 0, len(byDepth))
	for depth := range byDepth {
		depths = append(depths, depth)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(depths)))

	for _, depth := range depths {
		if _, err := n.gateway.Write(ctx, `
			UNWIND $paths AS parent_path
			MATCH (parentDir:Directory {fileName: parent_path})
			MATCH (a:Artifact {fileName: $artifact_path})-[:CONTAINS]->(parentDir)
			MATCH (childDir:Directory)
			WHERE childDir.fileName STARTS WITH parentDir.fileName + '/'
			  AND size(split(childDir.fileName, '/')) = size(split(parentDir.fileName, '/')) + 1
			  AND (parentDir)-[:CONTAINS]->(childDir)
			MERGE (parentDir)-[:CONTAINS_CLASS]->(childDir)
		`, map[string]any{"paths": byDepth[depth], "artifact_path": artifactPath}); err != nil {
			return err
		}
	}

	// The artifact adopts the directories that top the class forest.
	_, err = n.gateway.Write(ctx, `
		MATCH (a:Artifact {fileName: $artifact_path})-[:CONTAINS]->(d:Directory)
		WHERE NOT EXISTS { ()-[:CONTAINS_CLASS]->(d) }
		AND EXISTS { (d)-[:CONTAINS_CLASS*0..]->(:Type) }
		MERGE (a)-[:CONTAINS_CLASS]->(d)
	`, map[string]any{"artifact_path": artifactPath})
	return err
}

// CleanupPackageSemantics strips the :Package label and fqn from any
// directory that ended up outside the class hierarchy overlay.
func (n *Normalizer) CleanupPackageSemantics(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Cleanup Package Semantics ---")

	_, err := n.gateway.Write(ctx, `
		MATCH (d:Directory:Package)
		WHERE NOT ()-[:CONTAINS_CLASS]->(d)
		REMOVE d.fqn, d:Package
	`, nil)
	if err != nil {
		return err
	}

	n.logger.Info("removed fqn and :Package label from non-package directories")
	n.logger.Info("--- Finished Pass: Cleanup Package Semantics ---")
	return nil
}

// LinkProjectToArtifacts auto-detects the project root as the common path
// of all directory artifacts, creates the singleton :Project node, and
// links it to every artifact via [:CONTAINS] and [:CONTAINS_CLASS].
func (n *Normalizer) LinkProjectToArtifacts(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Link Project to Artifacts ---")

	records, err := n.gateway.Read(ctx, `
		MATCH (a:Artifact:Directory)
		WHERE a.fileName IS NOT NULL
		RETURN a.fileName AS path
	`, nil)
	if err != nil {
		return err
	}

	var artifactPaths []string
	for _, record := range records {
		if path, _ := record["path"].(string); path != "" {
			artifactPaths = append(artifactPaths, path)
		}
	}
	if len(artifactPaths) == 0 {
		return apperrors.New(apperrors.KindGraphQuery,
			"could not auto-detect project path: no directory-based :Artifact nodes with fileName found")
	}

	n.projectPath = pathutil.CommonPath(artifactPaths)
	projectName := filepath.Base(n.projectPath)
	n.logger.Info("auto-detected project path", "path", n.projectPath, "name", projectName)

	if _, err := n.gateway.Write(ctx, `
		MERGE (p:Project {name: $projectName})
		ON CREATE SET p.creationTimestamp = datetime()
		SET p.absolute_path = $projectPath
		WITH p
		MATCH (a:Artifact) WHERE a:Directory OR a:Jar OR a:War OR a:Ear
		MERGE (p)-[:CONTAINS]->(a)
	`, map[string]any{"projectName": projectName, "projectPath": n.projectPath}); err != nil {
		return err
	}

	if _, err := n.gateway.Write(ctx, `
		MATCH (p:Project)
		MATCH (a:Artifact) WHERE NOT a:Maven
		MERGE (p)-[:CONTAINS_CLASS]->(a)
	`, nil); err != nil {
		return err
	}

	n.logger.Info("linked :Project node to all :Artifact roots")
	n.logger.Info("--- Finished Pass: Link Project to Artifacts ---")
	return nil
}

// EstablishSourceHierarchy builds the [:CONTAINS_SOURCE] overlay:
// directories adopt their direct SourceFile children, then their direct
// child directories that root a source subtree (deepest first), and the
// Project adopts the artifact directories that carry sources.
func (n *Normalizer) EstablishSourceHierarchy(ctx context.Context) error {
	if n.projectPath == "" {
		return apperrors.New(apperrors.KindInternal,
			"project path has not been determined; run LinkProjectToArtifacts first")
	}
	n.logger.Info("--- Starting Pass: Establish Direct Source Hierarchy ---")

	records, err := n.gateway.Read(ctx, `
		MATCH (d:Directory)
		WHERE d.absolute_path IS NOT NULL
		RETURN d.absolute_path AS path, size(split(d.absolute_path, '/')) AS depth
	`, nil)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		n.logger.Warn("no directories with absolute_path found to establish hierarchy")
		return nil
	}

	paths := make([]string, 0, len(records))
	byDepth := make(map[int][]string)
	for _, record := range records {
		path, _ := record["path"].(string)
		depth, _ := record["depth"].(int64)
		paths = append(paths, path)
		byDepth[int(depth)] = append(byDepth[int(depth)], path)
	}

	if _, err := n.gateway.Write(ctx, `
		UNWIND $paths AS dir_path
		MATCH (parentDir:Directory {absolute_path: dir_path})
		MATCH (sf:SourceFile)
		WHERE sf.absolute_path STARTS WITH parentDir.absolute_path + '/'
			AND size(split(sf.absolute_path, '/')) = size(split(parentDir.absolute_path, '/')) + 1
		MERGE (parentDir)-[:CONTAINS_SOURCE]->(sf)
	`, map[string]any{"paths": paths}); err != nil {
		return err
	}

	depths := make([]int, 0, len(byDepth))
	for depth := range byDepth {
		depths = append(depths, depth)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(depths)))

	for _, depth := range depths {
		if _, err := n.gateway.Write(ctx, `
			UNWIND $paths AS parent_path
			MATCH (parentDir:Directory {absolute_path: parent_path})
			MATCH (childDir:Directory)
			WHERE childDir.absolute_path STARTS WITH parentDir.absolute_path + '/'
			  AND size(split(childDir.absolute_path, '/')) = size(split(parentDir.absolute_path, '/')) + 1
			  AND EXISTS {(childDir)-[:CONTAINS_SOURCE]->()}
			MERGE (parentDir)-[:CONTAINS_SOURCE]->(childDir)
		`, map[string]any{"paths": byDepth[depth]}); err != nil {
			return err
		}
	}

	n.logger.Info("established [:CONTAINS_SOURCE] relationships between directories and source files")

	if _, err := n.gateway.Write(ctx, `
		MATCH (p:Project {absolute_path: $projectPath})
		MATCH (d:Directory:Artifact)
		WHERE EXISTS {(d)-[:CONTAINS_SOURCE]->()}
		MERGE (p)-[:CONTAINS_SOURCE]->(d)
	`, map[string]any{"projectPath": n.projectPath}); err != nil {
		return err
	}

	n.logger.Info("linked :Project node to top-level source directories")
	n.logger.Info("--- Finished Pass: Establish Direct Source Hierarchy ---")
	return nil
}
