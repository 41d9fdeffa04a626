package summarize

import (
	"context"
	"sort"
)

// SourceFileSummarizer summarizes every :SourceFile from the types linked
// to it via [:WITH_SOURCE].
type SourceFileSummarizer struct {
	pass
}

// NewSourceFileSummarizer creates the pass.
func NewSourceFileSummarizer(gateway Gateway, processor *Processor, workers int) *SourceFileSummarizer {
	return &SourceFileSummarizer{pass: newPass(gateway, processor, workers, "sourcefile-summarizer")}
}

func (s *SourceFileSummarizer) Run(ctx context.Context) (int, error) {
	s.logger.Info("--- Starting Pass: SourceFileSummarizer ---")

	items, err := s.gateway.Read(ctx, `
		MATCH (sf:SourceFile)
		OPTIONAL MATCH (sf)<-[:WITH_SOURCE]-(t:Type)
		WHERE t.summary IS NOT NULL
		RETURN sf.entity_id AS id,
		       sf.absolute_path AS path,
		       sf.summary AS db_summary,
		       collect(DISTINCT t.entity_id) AS dependency_ids
	`, nil)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		s.logger.Warn("no items found, skipping pass")
		return 0, nil
	}

	updated, err := s.processBatch(ctx, items, s.processItem, `
		UNWIND $updates AS item
		MATCH (sf:SourceFile {entity_id: item.id})
		SET sf.summary = item.summary
	`)
	if err != nil {
		return 0, err
	}

	s.logger.Info("--- Pass SourceFileSummarizer complete ---", "properties_set", updated)
	return updated, nil
}

func (s *SourceFileSummarizer) processItem(ctx context.Context, record map[string]any) (*Result, error) {
	return s.processor.HierarchicalSummary(ctx, HierarchicalNode{
		ID:            recordString(record, "id"),
		Name:          recordString(record, "path"),
		NodeType:      "SourceFile",
		DBSummary:     recordString(record, "db_summary"),
		DependencyIDs: recordStringList(record, "dependency_ids"),
	})
}

// DirectorySummarizer summarizes directories bottom-up over the
// [:CONTAINS_SOURCE] overlay. Directories are grouped by path depth and
// each depth completes before the next, shallower one starts.
type DirectorySummarizer struct {
	pass
}

// NewDirectorySummarizer creates the pass.
func NewDirectorySummarizer(gateway Gateway, processor *Processor, workers int) *DirectorySummarizer {
	return &DirectorySummarizer{pass: newPass(gateway, processor, workers, "directory-summarizer")}
}

func (s *DirectorySummarizer) Run(ctx context.Context) (int, error) {
	s.logger.Info("--- Starting Pass: DirectorySummarizer ---")

	items, err := s.gateway.Read(ctx, `
		MATCH (d:Directory)
		WHERE d.absolute_path IS NOT NULL
		WITH d, size(split(d.absolute_path, '/')) AS depth
		OPTIONAL MATCH (d)-[:CONTAINS_SOURCE]->(child)
		WHERE child:SourceFile OR child:Directory
		RETURN
			d.entity_id AS id,
			d.absolute_path AS path,
			d.summary AS db_summary,
			collect(DISTINCT child.entity_id) AS dependency_ids,
			depth
	`, nil)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		s.logger.Info("no directories found to process")
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
		s.logger.Info("processing directories at depth", "depth", depth, "count", len(byDepth[depth]))
		updated, err := s.processBatch(ctx, byDepth[depth], s.processItem, `
			UNWIND $updates AS item
			MATCH (d:Directory {entity_id: item.id})
			SET d.summary = item.summary
		`)
		if err != nil {
			return total, err
		}
		total += updated
	}

	s.logger.Info("--- Pass DirectorySummarizer complete ---", "properties_set", total)
	return total, nil
}

func (s *DirectorySummarizer) processItem(ctx context.Context, record map[string]any) (*Result, error) {
	return s.processor.HierarchicalSummary(ctx, HierarchicalNode{
		ID:            recordString(record, "id"),
		Name:          recordString(record, "path"),
		NodeType:      "Directory",
		DBSummary:     recordString(record, "db_summary"),
		DependencyIDs: recordStringList(record, "dependency_ids"),
	})
}

// ProjectSummarizer summarizes the singleton :Project node from its direct
// [:CONTAINS_SOURCE] children.
type ProjectSummarizer struct {
	pass
}

// NewProjectSummarizer creates the pass.
func NewProjectSummarizer(gateway Gateway, processor *Processor, workers int) *ProjectSummarizer {
	return &ProjectSummarizer{pass: newPass(gateway, processor, workers, "project-summarizer")}
}

func (s *ProjectSummarizer) Run(ctx context.Context) (int, error) {
	s.logger.Info("--- Starting Pass: ProjectSummarizer ---")

	items, err := s.gateway.Read(ctx, `
		MATCH (p:Project)
		OPTIONAL MATCH (p)-[:CONTAINS_SOURCE]->(child)
		RETURN
			p.entity_id AS id,
			p.name AS name,
			p.summary AS db_summary,
			collect(DISTINCT child.entity_id) AS dependency_ids
		LIMIT 1
	`, nil)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		s.logger.Warn("no :Project node found to summarize, skipping pass")
		return 0, nil
	}

	updated, err := s.processBatch(ctx, items, s.processItem, `
		UNWIND $updates AS item
		MATCH (p:Project {entity_id: item.id})
		SET p.summary = item.summary
	`)
	if err != nil {
		return 0, err
	}

	s.logger.Info("--- Pass ProjectSummarizer complete ---", "properties_set", updated)
	return updated, nil
}

func (s *ProjectSummarizer) processItem(ctx context.Context, record map[string]any) (*Result, error) {
	return s.processor.HierarchicalSummary(ctx, HierarchicalNode{
		ID:            recordString(record, "id"),
		Name:          recordString(record, "name"),
		NodeType:      "Project",
		DBSummary:     recordString(record, "db_summary"),
		DependencyIDs: recordStringList(record, "dependency_ids"),
	})
}
