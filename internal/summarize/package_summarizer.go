package summarize

import (
	"context"
	"sort"
)

// PackageSummarizer summarizes :Package nodes bottom-up over the
// [:CONTAINS_CLASS] overlay, then the artifact roots that carry the class
// forests. It runs only when package summaries are requested.
type PackageSummarizer struct {
	pass
}

// NewPackageSummarizer creates the pass.
func NewPackageSummarizer(gateway Gateway, processor *Processor, workers int) *PackageSummarizer {
	return &PackageSummarizer{pass: newPass(gateway, processor, workers, "package-summarizer")}
}

// Run executes both phases: internal packages ordered by fqn depth, then
// the artifact roots themselves.
func (s *PackageSummarizer) Run(ctx context.Context) (int, error) {
	s.logger.Info("--- Starting Pass: PackageSummarizer ---")

	total, err := s.summarizeInternalPackages(ctx)
	if err != nil {
		return total, err
	}

	updated, err := s.summarizeArtifactRoots(ctx)
	total += updated
	if err != nil {
		return total, err
	}

	s.logger.Info("--- Pass PackageSummarizer complete ---", "properties_set", total)
	return total, nil
}

func (s *PackageSummarizer) summarizeInternalPackages(ctx context.Context) (int, error) {
	s.logger.Info("phase 1: summarizing internal packages")

	items, err := s.gateway.Read(ctx, `
		MATCH (a:Artifact)-[:CONTAINS_CLASS*]->(p:Package)
		WHERE p.fqn IS NOT NULL AND p.summary IS NULL
		WITH p, size(split(p.fqn, '.')) AS depth
		OPTIONAL MATCH (p)-[:CONTAINS_CLASS]->(child)
		WHERE child:Package OR child:Type
		RETURN
			p.entity_id AS id,
			p.fqn AS fqn,
			p.summary AS db_summary,
			collect(DISTINCT child.entity_id) AS dependency_ids,
			depth
	`, nil)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		s.logger.Info("no internal packages to summarize")
		return 0, nil
	}

	byDepth := make(map[int][]map[string]any)
	for _, item := range items {
		depth := recordInt(item, "depth")
		byDepth[depth] = append(byDepth[depth], item)
	}
	depths := make([]int, 0, len(byDepth))
	for depth := range byDepth {
		depths = append(depths, depth)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(depths)))

	total := 0
	for _, depth := range depths {
		s.logger.Info("processing internal packages at depth", "depth", depth, "count", len(byDepth[depth]))
		updated, err := s.processBatch(ctx, byDepth[depth], s.processPackageItem, s.updateQuery())
		if err != nil {
			return total, err
		}
		total += updated
	}
	return total, nil
}

func (s *PackageSummarizer) summarizeArtifactRoots(ctx context.Context) (int, error) {
	s.logger.Info("phase 2: summarizing artifact class roots")

	items, err := s.gateway.Read(ctx, `
		MATCH (a:Artifact)
		WHERE a.summary IS NULL
		OPTIONAL MATCH (a)-[:CONTAINS_CLASS]->(child)
		WHERE child:Package OR child:Type OR child:Directory
		RETURN
			a.entity_id AS id,
			a.fileName AS path,
			a.summary AS db_summary,
			collect(DISTINCT child.entity_id) AS dependency_ids
	`, nil)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		s.logger.Info("no artifact roots to summarize")
		return 0, nil
	}

	return s.processBatch(ctx, items, s.processRootItem, s.updateQuery())
}

func (s *PackageSummarizer) updateQuery() string {
	return `
		UNWIND $updates AS item
		MATCH (p)
		WHERE p.entity_id = item.id
		SET p.summary = item.summary
	`
}

func (s *PackageSummarizer) processPackageItem(ctx context.Context, record map[string]any) (*Result, error) {
	return s.processor.HierarchicalSummary(ctx, HierarchicalNode{
		ID:            recordString(record, "id"),
		Name:          recordString(record, "fqn"),
		NodeType:      "Package",
		DBSummary:     recordString(record, "db_summary"),
		DependencyIDs: recordStringList(record, "dependency_ids"),
	})
}

func (s *PackageSummarizer) processRootItem(ctx context.Context, record map[string]any) (*Result, error) {
	return s.processor.HierarchicalSummary(ctx, HierarchicalNode{
		ID:            recordString(record, "id"),
		Name:          recordString(record, "path"),
		NodeType:      "Package",
		DBSummary:     recordString(record, "db_summary"),
		DependencyIDs: recordStringList(record, "dependency_ids"),
	})
}
