package normalize

import "context"

// CreateEntities labels every summarizable node :Entity and assigns its
// stable entity_id. The id is the md5 of a key built from the node's stable
// identity, so re-runs regenerate identical ids. The uniqueness constraint
// is created first.
func (n *Normalizer) CreateEntities(ctx context.Context) error {
	n.logger.Info("--- Starting Pass: Create Entities and Stable IDs ---")

	if _, err := n.gateway.Write(ctx,
		"CREATE CONSTRAINT entity_id_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.entity_id IS UNIQUE",
		nil); err != nil {
		return err
	}
	n.logger.Info("ensured :Entity(entity_id) uniqueness constraint exists")

	if _, err := n.gateway.Write(ctx, `
		MATCH (p:Project)
		SET p:Entity, p.entity_id = apoc.util.md5(["Project://", p.absolute_path])
	`, nil); err != nil {
		return err
	}
	n.logger.Info("generated entity_id for :Project node")

	if _, err := n.gateway.Write(ctx, `
		MATCH (a:Artifact)
		WHERE a.fileName IS NOT NULL
		SET a:Entity, a.entity_id = apoc.util.md5([a.fileName])
	`, nil); err != nil {
		return err
	}
	n.logger.Info("generated entity_id for :Artifact nodes")

	if _, err := n.gateway.Write(ctx, `
		MATCH (a:Artifact)-[:CONTAINS]->(n)
		WHERE (n:File OR n:Directory OR n:Package OR n:Type)
		AND n.fileName IS NOT NULL AND a.fileName IS NOT NULL
		SET n:Entity, n.entity_id = apoc.util.md5([a.fileName, n.fileName])
	`, nil); err != nil {
		return err
	}
	n.logger.Info("generated entity_id for file-system-like nodes")

	if _, err := n.gateway.Write(ctx, `
		MATCH (a:Artifact)-[:CONTAINS]->(t:Type)-[:DECLARES]->(m:Member)
		WHERE t.fileName IS NOT NULL AND m.signature IS NOT NULL AND a.fileName IS NOT NULL
		SET m:Entity, m.entity_id = apoc.util.md5([a.fileName, t.fileName, m.signature])
	`, nil); err != nil {
		return err
	}
	n.logger.Info("generated entity_id for :Member nodes")

	n.logger.Info("--- Finished Pass: Create Entities and Stable IDs ---")
	return nil
}
