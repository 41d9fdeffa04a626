package summarize

import (
	"context"
	"sort"
)

// TypeSummarizer generates summaries for :Type nodes level by level along
// the inheritance hierarchy: base types first, derived types after all
// their source-linked parents.
type TypeSummarizer struct {
	pass
}

// NewTypeSummarizer creates the pass.
func NewTypeSummarizer(gateway Gateway, processor *Processor, workers int) *TypeSummarizer {
	return &TypeSummarizer{pass: newPass(gateway, processor, workers, "type-summarizer")}
}

// Run computes the inheritance levels of all source-linked types, then
// processes each level in ascending order. Level k+1 starts only after
// level k completed, so every parent summary a type reads is final.
func (s *TypeSummarizer) Run(ctx context.Context) (int, error) {
	s.logger.Info("--- Starting Pass: TypeSummarizer ---")

	levels, err := s.typesByInheritanceLevel(ctx)
	if err != nil {
		return 0, err
	}
	if len(levels) == 0 {
		s.logger.Info("no source-linked types found to process")
		return 0, nil
	}

	levelNumbers := make([]int, 0, len(levels))
	for level := range levels {
		levelNumbers = append(levelNumbers, level)
	}
	sort.Ints(levelNumbers)

	total := 0
	for _, level := range levelNumbers {
		ids := levels[level]
		s.logger.Info("processing inheritance level", "level", level, "types", len(ids))

		items, err := s.contextForIDs(ctx, ids)
		if err != nil {
			return total, err
		}
		if len(items) == 0 {
			continue
		}

		updated, err := s.processBatch(ctx, items, s.processItem, `
			UNWIND $updates AS item
			MATCH (t:Type)
			WHERE t.entity_id = item.id
			SET t.summary = item.summary
		`)
		if err != nil {
			return total, err
		}
		total += updated
	}

	s.logger.Info("--- Pass TypeSummarizer complete ---", "properties_set", total)
	return total, nil
}

// typesByInheritanceLevel groups source-linked types into levels: level 0
// holds types with no source-linked parents; level k+1 holds types whose
// source-linked parents all sit in levels <= k.
func (s *TypeSummarizer) typesByInheritanceLevel(ctx context.Context) (map[int][]string, error) {
	records, err := s.gateway.Read(ctx, `
		MATCH (t:Type)-[:WITH_SOURCE]->(:SourceFile)
		WHERE t:Class OR t:Interface OR t:Enum OR t:Record
		RETURN t.entity_id AS id
	`, nil)
	if err != nil {
		return nil, err
	}

	allIDs := make([]string, 0, len(records))
	for _, record := range records {
		if id := recordString(record, "id"); id != "" {
			allIDs = append(allIDs, id)
		}
	}
	if len(allIDs) == 0 {
		return nil, nil
	}

	records, err = s.gateway.Read(ctx, `
		MATCH (t:Type)
		WHERE t.entity_id IN $ids
		AND NOT (t)-[:EXTENDS|IMPLEMENTS]->(:Type)-[:WITH_SOURCE]->()
		RETURN t.entity_id AS id
	`, map[string]any{"ids": allIDs})
	if err != nil {
		return nil, err
	}

	levels := make(map[int][]string)
	visited := make(map[string]bool)
	for _, record := range records {
		if id := recordString(record, "id"); id != "" {
			levels[0] = append(levels[0], id)
			visited[id] = true
		}
	}

	currentLevel := 0
	for len(levels[currentLevel]) > 0 {
		currentLevel++

		visitedIDs := make([]string, 0, len(visited))
		for id := range visited {
			visitedIDs = append(visitedIDs, id)
		}

		records, err = s.gateway.Read(ctx, `
			MATCH (t:Type)
			WHERE t.entity_id IN $all_ids AND NOT t.entity_id IN $visited_ids
			WITH t, [
				(t)-[:EXTENDS|IMPLEMENTS]->(p:Type)
				WHERE p.entity_id IN $all_ids | p
			] AS parents
			WHERE size(parents) > 0 AND all(p IN parents WHERE p.entity_id IN $visited_ids)
			RETURN t.entity_id AS id
		`, map[string]any{"all_ids": allIDs, "visited_ids": visitedIDs})
		if err != nil {
			return nil, err
		}

		var nextLevel []string
		for _, record := range records {
			if id := recordString(record, "id"); id != "" {
				nextLevel = append(nextLevel, id)
				visited[id] = true
			}
		}
		if len(nextLevel) == 0 {
			break
		}
		levels[currentLevel] = nextLevel
	}

	return levels, nil
}

// contextForIDs fetches the full summarization context for one level of
// types.
func (s *TypeSummarizer) contextForIDs(ctx context.Context, ids []string) ([]map[string]any, error) {
	return s.gateway.Read(ctx, `
		MATCH (t:Type)
		WHERE t.entity_id IN $ids
		OPTIONAL MATCH (t)-[:EXTENDS|IMPLEMENTS]->(p:Type)
		WITH t, collect(DISTINCT p.entity_id) AS parent_ids
		OPTIONAL MATCH (t)-[:DECLARES]->(m)
		WHERE m:Method OR m:Field
		WITH t, parent_ids, collect(DISTINCT m.entity_id) AS member_ids
		RETURN
			t.entity_id AS id,
			t.name AS name,
			t.summary AS db_summary,
			labels(t) AS labels,
			parent_ids,
			member_ids
	`, map[string]any{"ids": ids})
}

func (s *TypeSummarizer) processItem(ctx context.Context, record map[string]any) (*Result, error) {
	return s.processor.TypeSummary(ctx, TypeContext{
		ID:        recordString(record, "id"),
		Name:      recordString(record, "name"),
		Label:     typeLabel(recordStringList(record, "labels")),
		DBSummary: recordString(record, "db_summary"),
		ParentIDs: recordStringList(record, "parent_ids"),
		MemberIDs: recordStringList(record, "member_ids"),
	})
}

// typeLabel picks the refinement label used in prompts.
func typeLabel(labels []string) string {
	for _, label := range labels {
		switch label {
		case "Class", "Interface", "Enum", "Record":
			return label
		}
	}
	return "Type"
}
