package summarize

import (
	"context"
	"fmt"

	"github.com/2015xli/jqassistant-graph-rag/internal/llm"
	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
)

// embedBatchSize is the page size for fetching entities to embed.
const embedBatchSize = 500

// EntityEmbedder writes a summaryEmbedding vector onto every summarized
// :Entity node and keeps the vector index in place.
type EntityEmbedder struct {
	gateway  Gateway
	embedder llm.Embedder
	logger   *logging.Logger
}

// NewEntityEmbedder creates the pass.
func NewEntityEmbedder(gateway Gateway, embedder llm.Embedder) *EntityEmbedder {
	return &EntityEmbedder{
		gateway:  gateway,
		embedder: embedder,
		logger:   logging.With("component", "entity-embedder"),
	}
}

// Run pages over summarized entities, embeds each page in one bulk call,
// writes the vectors back in one bulk update per page, and finally ensures
// the vector index exists.
func (e *EntityEmbedder) Run(ctx context.Context) error {
	e.logger.Info("--- Starting Pass: EntityEmbedder ---")

	skip := 0
	total := 0
	for {
		records, err := e.gateway.Read(ctx, `
			MATCH (e:Entity)
			WHERE e.summary IS NOT NULL
			RETURN e.entity_id AS id, e.summary AS summary
			SKIP $skip LIMIT $limit
		`, map[string]any{"skip": skip, "limit": embedBatchSize})
		if err != nil {
			return err
		}
		skip += embedBatchSize
		if len(records) == 0 {
			break
		}

		ids := make([]string, 0, len(records))
		summaries := make([]string, 0, len(records))
		for _, record := range records {
			ids = append(ids, recordString(record, "id"))
			summaries = append(summaries, recordString(record, "summary"))
		}

		e.logger.Info("embedding batch", "count", len(summaries))
		vectors, err := e.embedder.GenerateEmbeddings(ctx, summaries)
		if err != nil {
			return err
		}

		updates := make([]map[string]any, 0, len(vectors))
		for i, vec := range vectors {
			updates = append(updates, map[string]any{"id": ids[i], "embedding": vec})
		}

		if _, err := e.gateway.Write(ctx, `
			UNWIND $updates AS item
			MATCH (e:Entity {entity_id: item.id})
			SET e.summaryEmbedding = item.embedding
		`, map[string]any{"updates": updates}); err != nil {
			return err
		}
		total += len(updates)
	}

	e.logger.Info("embedding generation complete", "embeddings", total)

	indexQuery := fmt.Sprintf(`
		CREATE VECTOR INDEX summary_embeddings IF NOT EXISTS
		FOR (e:Entity) ON (e.summaryEmbedding)
		OPTIONS {indexConfig: {
			`+"`vector.dimensions`"+`: %d,
			`+"`vector.similarity_function`"+`: 'cosine'
		}}
	`, e.embedder.Dimension())
	if _, err := e.gateway.Write(ctx, indexQuery, nil); err != nil {
		return err
	}

	e.logger.Info("vector index summary_embeddings is ready")
	e.logger.Info("--- Pass EntityEmbedder complete ---")
	return nil
}
