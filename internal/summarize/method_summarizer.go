package summarize

import "context"

// MethodSummarizer generates the contextual summary of every analyzed
// method from its code analysis plus its direct callers' and callees'
// summaries.
type MethodSummarizer struct {
	pass
}

// NewMethodSummarizer creates the pass.
func NewMethodSummarizer(gateway Gateway, processor *Processor, workers int) *MethodSummarizer {
	return &MethodSummarizer{pass: newPass(gateway, processor, workers, "method-summarizer")}
}

// Run processes every method that has a code analysis.
func (s *MethodSummarizer) Run(ctx context.Context) (int, error) {
	s.logger.Info("--- Starting Pass: MethodSummarizer ---")

	items, err := s.gateway.Read(ctx, `
		MATCH (m:Method)
		WHERE m.code_analysis IS NOT NULL
		OPTIONAL MATCH (caller:Method)-[:INVOKES]->(m)
		OPTIONAL MATCH (m)-[:INVOKES]->(callee:Method)
		RETURN m.entity_id AS id,
		       m.name AS name,
		       m.summary AS db_summary,
		       collect(DISTINCT caller.entity_id) AS callers,
		       collect(DISTINCT callee.entity_id) AS callees
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
		MATCH (m:Method {entity_id: item.id})
		SET m.summary = item.summary
	`)
	if err != nil {
		return 0, err
	}

	s.logger.Info("--- Pass MethodSummarizer complete ---", "properties_set", updated)
	return updated, nil
}

func (s *MethodSummarizer) processItem(ctx context.Context, record map[string]any) (*Result, error) {
	return s.processor.MethodSummary(ctx, MethodContext{
		ID:        recordString(record, "id"),
		Name:      recordString(record, "name"),
		DBSummary: recordString(record, "db_summary"),
		CallerIDs: recordStringList(record, "callers"),
		CalleeIDs: recordStringList(record, "callees"),
	})
}
