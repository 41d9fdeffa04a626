package normalize

import "context"

// MergeDuplicateTypes merges the "phantom" :Type node introduced by a
// [:REQUIRES] relationship into the "real" :Type reached via [:CONTAINS].
// The two share an fqn, the real fileName ends with the phantom fileName,
// and the merge keeps every edge while discarding conflicting properties.
func (n *Normalizer) MergeDuplicateTypes(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Merge Duplicate Types ---")

	query := `
	MATCH (a:Artifact:Directory)
	MATCH (a)-[:CONTAINS]->(realType:Type)
	WHERE realType.fqn IS NOT NULL AND realType.fileName IS NOT NULL
	MATCH (a)-[:REQUIRES]->(phantomType:Type)
	WHERE phantomType.fqn IS NOT NULL AND phantomType.fileName IS NOT NULL
	AND realType.fqn = phantomType.fqn
	AND realType.fileName ENDS WITH phantomType.fileName
	AND realType.fileName <> phantomType.fileName
	WITH phantomType, realType
	CALL apoc.refactor.mergeNodes([realType, phantomType], {
		properties: 'discard',
		mergeRels: true
	}) YIELD node
	RETURN count(node) AS merged_nodes
	`
	if _, err := n.gateway.Write(ctx, query, nil); err != nil {
		return err
	}

	n.logger.Info("--- Finished Pass: Merge Duplicate Types ---")
	return nil
}

// MergeDuplicateMembers merges phantom :Member nodes into their real
// counterparts on signature equality. The real member is the one carrying a
// name; both carry a signature.
func (n *Normalizer) MergeDuplicateMembers(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Merge Duplicate Members ---")

	query := `
	MATCH (a:Artifact:Directory)-[:CONTAINS]->(t:Type)
	MATCH (t)-[:DECLARES]->(realMember:Member)
	MATCH (t)-[:DECLARES]->(phantomMember:Member)
	WHERE realMember.name IS NOT NULL AND phantomMember.signature IS NOT NULL
		AND realMember.signature = phantomMember.signature
		AND elementId(realMember) <> elementId(phantomMember)
	WITH phantomMember, realMember
	CALL apoc.refactor.mergeNodes([realMember, phantomMember], {
		properties: 'discard',
		mergeRels: true
	}) YIELD node
	RETURN count(node) AS merged_nodes
	`
	if _, err := n.gateway.Write(ctx, query, nil); err != nil {
		return err
	}

	n.logger.Info("--- Finished Pass: Merge Duplicate Members ---")
	return nil
}
