package normalize

import "context"

// AddAbsolutePaths sets absolute_path on every filesystem node. A top-level
// :Directory entry keeps its fileName as the absolute path; contained nodes
// concatenate the entry path with their own fileName. The scanner guarantees
// a leading slash on contained fileNames, so concatenation is textual.
func (n *Normalizer) AddAbsolutePaths(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Add Absolute Paths ---")

	query := `
	MATCH (e:Directory)
	WHERE NOT EXISTS { (:Directory)-[:CONTAINS]->(e) }
	SET e.absolute_path = e.fileName
	WITH e
	MATCH (e)-[:CONTAINS]->(c:File)
	SET c.absolute_path = e.absolute_path + c.fileName
	RETURN count(e) + count(c) AS paths_normalized
	`
	counters, err := n.gateway.Write(ctx, query, nil)
	if err != nil {
		return err
	}

	n.logger.Info("set absolute_path for directory trees", "properties_set", counters.PropertiesSet)
	n.logger.Info("--- Finished Pass: Add Absolute Paths ---")
	return nil
}

// LabelSourceFiles labels every :File whose absolute_path ends in .java or
// .kt as :SourceFile. Relies on absolute_path having been set.
func (n *Normalizer) LabelSourceFiles(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Label Source Files ---")

	query := `
	MATCH (f:File)
	WHERE f.absolute_path IS NOT NULL
	AND (f.absolute_path ENDS WITH '.java' OR f.absolute_path ENDS WITH '.kt')
	SET f:SourceFile
	RETURN count(f) AS source_files_labeled
	`
	counters, err := n.gateway.Write(ctx, query, nil)
	if err != nil {
		return err
	}

	n.logger.Info("labeled source files", "labels_added", counters.LabelsAdded)
	n.logger.Info("--- Finished Pass: Label Source Files ---")
	return nil
}
