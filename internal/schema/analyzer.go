// Package schema provides read-only inspection of the scanned graph, used
// by the schema subcommand to sanity-check jQAssistant output before
// enrichment.
package schema

import (
	"context"
	"fmt"

	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
)

// Analyzer inspects labels, relationship types and sample properties.
type Analyzer struct {
	gateway Gateway
	logger  *logging.Logger
}

// Gateway is the read-only slice of the graph client the analyzer needs.
type Gateway interface {
	Read(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(gateway Gateway) *Analyzer {
	return &Analyzer{gateway: gateway, logger: logging.With("component", "schema")}
}

// commonLabels are the jQAssistant labels worth sampling.
var commonLabels = []string{"File", "Directory", "Package", "Type", "Method", "Field", "Artifact", "Jar"}

// commonRelTypes are the relationship types worth sampling.
var commonRelTypes = []string{"CONTAINS", "DECLARES", "EXTENDS", "IMPLEMENTS", "INVOKES"}

// Run executes the full schema analysis and logs the results.
func (a *Analyzer) Run(ctx context.Context) error {
	a.logger.Info("--- Starting Schema Analysis ---")

	labels, err := a.gateway.Read(ctx, `
		CALL db.labels() YIELD label
		CALL {
			WITH label
			MATCH (n) WHERE label IN labels(n)
			RETURN count(n) AS count
		}
		RETURN label, count
		ORDER BY count DESC
	`, nil)
	if err != nil {
		return err
	}
	a.logger.Info("node labels and counts")
	for _, record := range labels {
		a.logger.Info(fmt.Sprintf("  - %v: %v", record["label"], record["count"]))
	}

	relTypes, err := a.gateway.Read(ctx, `
		CALL db.relationshipTypes() YIELD relationshipType
		CALL {
			WITH relationshipType
			MATCH ()-[r]->() WHERE type(r) = relationshipType
			RETURN count(r) AS count
		}
		RETURN relationshipType, count
		ORDER BY count DESC
	`, nil)
	if err != nil {
		return err
	}
	a.logger.Info("relationship types and counts")
	for _, record := range relTypes {
		a.logger.Info(fmt.Sprintf("  - %v: %v", record["relationshipType"], record["count"]))
	}

	for _, label := range commonLabels {
		if err := a.inspectLabel(ctx, label); err != nil {
			return err
		}
	}
	for _, relType := range commonRelTypes {
		if err := a.inspectRelationship(ctx, relType); err != nil {
			return err
		}
	}

	a.logger.Info("--- Schema Analysis Complete ---")
	return nil
}

func (a *Analyzer) inspectLabel(ctx context.Context, label string) error {
	records, err := a.gateway.Read(ctx, `
		MATCH (n) WHERE $label IN labels(n)
		RETURN keys(n) AS keys
		LIMIT 5
	`, map[string]any{"label": label})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.logger.Info("no nodes found for label", "label", label)
		return nil
	}
	a.logger.Info("sampled label properties", "label", label, "keys", records[0]["keys"])
	return nil
}

func (a *Analyzer) inspectRelationship(ctx context.Context, relType string) error {
	records, err := a.gateway.Read(ctx, `
		MATCH (s)-[r]->(t) WHERE type(r) = $relType
		RETURN labels(s) AS startLabels, s.fileName AS startFileName,
		       labels(t) AS endLabels, t.fileName AS endFileName
		LIMIT 5
	`, map[string]any{"relType": relType})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.logger.Info("no relationships found for type", "type", relType)
		return nil
	}
	for _, record := range records {
		a.logger.Info(fmt.Sprintf("  - %v %v -[:%s]-> %v %v",
			record["startLabels"], record["startFileName"], relType,
			record["endLabels"], record["endFileName"]))
	}
	return nil
}
