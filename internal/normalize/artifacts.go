package normalize

import (
	"context"
	"sort"

	"github.com/2015xli/jqassistant-graph-rag/internal/pathutil"
)

// ClassFile pairs a scanned class's FQN with its file path relative to the
// artifact that contains it.
type ClassFile struct {
	FQN  string
	Path string
}

// ComputeArtifactRoots derives the true classpath roots inside a scanned
// directory from its classes' FQNs. The longest unprocessed FQN anchors each
// round: its package, converted to a path suffix, must terminate the
// directory holding its file; stripping the suffix yields a root, and every
// class under that root is consumed. Classes whose directory does not match
// their package are dropped. Roots are returned sorted.
func ComputeArtifactRoots(classes []ClassFile) []string {
	unprocessed := make(map[string]string, len(classes))
	for _, c := range classes {
		unprocessed[c.FQN] = c.Path
	}

	rootSet := make(map[string]bool)
	for len(unprocessed) > 0 {
		anchorFQN := ""
		for fqn := range unprocessed {
			if len(fqn) > len(anchorFQN) || (len(fqn) == len(anchorFQN) && fqn > anchorFQN) {
				anchorFQN = fqn
			}
		}
		anchorPath := unprocessed[anchorFQN]

		suffix := pathutil.FQNToRelPath(pathutil.PackageOf(anchorFQN))
		anchorDir := pathutil.ParentDir(anchorPath)

		root, ok := pathutil.StripSuffix(anchorDir, suffix)
		if !ok {
			delete(unprocessed, anchorFQN)
			continue
		}
		rootSet[root] = true

		for fqn, path := range unprocessed {
			if pathutil.StartsWithSlash(path, root) || path == root {
				delete(unprocessed, fqn)
			}
		}
	}

	roots := make([]string, 0, len(rootSet))
	for root := range rootSet {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// RelocateDirectoryArtifacts validates every scanned :Directory:Artifact.
// A directory with no classes loses the label. A directory whose single
// classpath root is itself keeps the label and only gets its subtree FQNs
// corrected. Otherwise the original is demoted and each discovered root is
// promoted, remembering the demoted-to-promoted mapping for the containment
// and requirement rewrites.
func (n *Normalizer) RelocateDirectoryArtifacts(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Relocate Directory Artifacts ---")

	records, err := n.gateway.Read(ctx,
		"MATCH (a:Directory:Artifact) RETURN a.fileName AS fileName", nil)
	if err != nil {
		return err
	}

	for _, record := range records {
		fileName, _ := record["fileName"].(string)
		if fileName == "" {
			continue
		}
		if err := n.relocateSingleArtifact(ctx, fileName); err != nil {
			return err
		}
	}

	n.logger.Info("--- Finished Pass: Relocate Directory Artifacts ---")
	return nil
}

func (n *Normalizer) relocateSingleArtifact(ctx context.Context, artifactFileName string) error {
	n.logger.Info("validating potential artifact container", "fileName", artifactFileName)
	n.relocated[artifactFileName] = nil

	records, err := n.gateway.Read(ctx, `
		MATCH (a:Artifact:Directory {fileName: $artifact_fileName})-[:CONTAINS]->(c:File:Class)
		WHERE c.fqn IS NOT NULL AND c.fileName IS NOT NULL
		RETURN c.fqn AS fqn, c.fileName AS path
	`, map[string]any{"artifact_fileName": artifactFileName})
	if err != nil {
		return err
	}

	if len(records) == 0 {
		n.logger.Info("no class files found, assuming directory is not a class artifact", "fileName", artifactFileName)
		_, err := n.gateway.Write(ctx,
			"MATCH (a:Directory {fileName: $fileName}) WHERE a:Artifact REMOVE a:Artifact",
			map[string]any{"fileName": artifactFileName})
		return err
	}

	classes := make([]ClassFile, 0, len(records))
	for _, record := range records {
		fqn, _ := record["fqn"].(string)
		path, _ := record["path"].(string)
		classes = append(classes, ClassFile{FQN: fqn, Path: path})
	}

	roots := ComputeArtifactRoots(classes)

	// A single empty relative root means the scanned directory really was
	// the classpath root; only the subtree FQNs need fixing.
	if len(roots) == 1 && roots[0] == "" {
		n.logger.Info("artifact is correctly labeled, no relocation needed", "fileName", artifactFileName)
		n.relocated[artifactFileName] = []string{artifactFileName}
		return n.correctFQNsInSubtree(ctx, artifactFileName, "")
	}

	n.logger.Info("relocating artifact label", "fileName", artifactFileName, "roots", roots)
	if _, err := n.gateway.Write(ctx,
		"MATCH (a:Directory {fileName: $fileName}) WHERE a:Artifact REMOVE a:Artifact",
		map[string]any{"fileName": artifactFileName}); err != nil {
		return err
	}

	for _, rootPath := range roots {
		newArtifactPath := artifactFileName + rootPath

		if _, err := n.gateway.Write(ctx, `
			MATCH (cont:Directory {fileName: $artifact_fileName})-[:CONTAINS]->(d:Directory {fileName: $root_path})
			SET d:Artifact, d.fileName = d.absolute_path
		`, map[string]any{"artifact_fileName": artifactFileName, "root_path": rootPath}); err != nil {
			return err
		}
		n.logger.Info("promoted new artifact", "root", rootPath, "absolute_path", newArtifactPath)

		n.relocated[artifactFileName] = append(n.relocated[artifactFileName], newArtifactPath)
		if err := n.correctFQNsInSubtree(ctx, artifactFileName, rootPath); err != nil {
			return err
		}
	}
	return nil
}

// correctFQNsInSubtree rewrites every descendant directory's fqn to its
// path relative to the new artifact root, dotted.
func (n *Normalizer) correctFQNsInSubtree(ctx context.Context, containerFileName, rootPath string) error {
	records, err := n.gateway.Read(ctx, `
		MATCH (cont:Directory {fileName: $container_fileName})-[:CONTAINS]->(d:Directory)
		WHERE d.fileName STARTS WITH $root_path
		RETURN d.fileName AS path
	`, map[string]any{"container_fileName": containerFileName, "root_path": rootPath})
	if err != nil {
		return err
	}

	var updates []map[string]any
	for _, record := range records {
		dirPath, _ := record["path"].(string)
		if len(dirPath) > len(rootPath) {
			relative := dirPath[len(rootPath)+1:]
			updates = append(updates, map[string]any{
				"path": dirPath,
				"fqn":  pathutil.RelPathToFQN(relative),
			})
		}
	}
	if len(updates) == 0 {
		return nil
	}

	_, err = n.gateway.Write(ctx, `
		UNWIND $params AS p
		MATCH (cont:Directory {fileName: $container_fileName})-[:CONTAINS]->(d:Directory {fileName: p.path})
		SET d.fqn = p.fqn
	`, map[string]any{"container_fileName": containerFileName, "params": updates})
	return err
}

// wasDemoted reports whether a relocation map entry represents a real
// demotion. A root that kept its label maps to itself and must not have its
// containment or requirements rewritten.
func wasDemoted(demoted string, promoted []string) bool {
	if len(promoted) == 0 {
		return false
	}
	return len(promoted) != 1 || promoted[0] != demoted
}

// RewriteContainment repairs the core containment structure after
// relocation: transitive [:CONTAINS] edges are merged from every artifact,
// the promoted ones included, and the demoted roots lose the stale fan-out
// the scanner left below their direct children.
func (n *Normalizer) RewriteContainment(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Rewrite Containment Relationships ---")

	if _, err := n.gateway.Write(ctx, `
		MATCH (newArtifact:Artifact)
		MATCH (newArtifact)-[:CONTAINS*]->(descendant)
		MERGE (newArtifact)-[:CONTAINS]->(descendant)
	`, nil); err != nil {
		return err
	}

	if len(n.relocated) == 0 {
		n.logger.Info("no artifacts were demoted, skipping transitive relationship cleanup")
		n.logger.Info("--- Finished Pass: Rewrite Containment Relationships ---")
		return nil
	}

	for fileName, promoted := range n.relocated {
		if !wasDemoted(fileName, promoted) {
			continue
		}
		if _, err := n.gateway.Write(ctx, `
			MATCH (demotedRoot {fileName: $fileName})-[r:CONTAINS]->(descendant)
			WHERE demotedRoot.absolute_path IS NOT NULL AND descendant.absolute_path IS NOT NULL
			AND size(split(descendant.absolute_path, '/')) > size(split(demotedRoot.absolute_path, '/')) + 1
			DELETE r
		`, map[string]any{"fileName": fileName}); err != nil {
			return err
		}
		n.logger.Info("cleaned up transitive relationships for demoted root", "fileName", fileName)
	}

	n.logger.Info("--- Finished Pass: Rewrite Containment Relationships ---")
	return nil
}

// RewriteRequirements redirects [:REQUIRES] edges from the demoted roots to
// the promoted artifacts that actually depend on the required types, then
// deletes the stale edges.
func (n *Normalizer) RewriteRequirements(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Rewrite Requirement Relationships ---")

	demotedRoots := make([]string, 0, len(n.relocated))
	for demoted, promoted := range n.relocated {
		if !wasDemoted(demoted, promoted) {
			continue
		}
		demotedRoots = append(demotedRoots, demoted)

		if _, err := n.gateway.Write(ctx, `
			MATCH (demotedRoot {fileName: $demoted_root_fileName})
			UNWIND $promoted_artifact_fileNames AS new_artifact_fileName
			MATCH (newArtifact:Artifact:Directory {fileName: new_artifact_fileName})

			MATCH (newArtifact)-[:CONTAINS]->(internalType:Type)
			MATCH (internalType)-[:DEPENDS_ON]->(requiredType:Type)
			WHERE (demotedRoot)-[:REQUIRES]->(requiredType)

			MERGE (newArtifact)-[:REQUIRES]->(requiredType)
		`, map[string]any{
			"demoted_root_fileName":       demoted,
			"promoted_artifact_fileNames": promoted,
		}); err != nil {
			return err
		}
		n.logger.Info("relocated [:REQUIRES] relationships", "demoted_root", demoted)
	}

	if len(demotedRoots) > 0 {
		if _, err := n.gateway.Write(ctx, `
			UNWIND $demoted_root_files AS fileName
			MATCH (demotedRoot {fileName: fileName})-[r:REQUIRES]->(t:Type)
			DELETE r
		`, map[string]any{"demoted_root_files": demotedRoots}); err != nil {
			return err
		}
		n.logger.Info("deleted old [:REQUIRES] relationships from demoted roots")
	}

	n.logger.Info("--- Finished Pass: Rewrite Requirement Relationships ---")
	return nil
}
