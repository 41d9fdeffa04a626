package source

import (
	"context"
	"strings"

	"github.com/2015xli/jqassistant-graph-rag/internal/graph"
	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
)

// batchSize is the number of parsed files sent per write query.
const batchSize = 1000

// Gateway is the slice of the graph client the linker needs.
type Gateway interface {
	Read(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	Write(ctx context.Context, query string, params map[string]any) (graph.Counters, error)
}

// Linker connects :Type nodes to their :SourceFile nodes via [:WITH_SOURCE]
// by parsing every labeled source file on disk.
type Linker struct {
	gateway Gateway
	logger  *logging.Logger
}

// NewLinker creates a Linker.
func NewLinker(gateway Gateway) *Linker {
	return &Linker{
		gateway: gateway,
		logger:  logging.With("component", "source-linker"),
	}
}

// Run parses all source files recorded in the graph and merges the
// type-to-file and member-to-file edges. Individual parse failures are
// logged and skipped; the pass continues.
func (l *Linker) Run(ctx context.Context) error {
	l.logger.Info("--- Starting Pass: Source File Linking ---")

	metadata, err := l.parseSourceFiles(ctx)
	if err != nil {
		return err
	}
	if len(metadata) == 0 {
		l.logger.Warn("no java or kotlin source files found or parsed, skipping source file linking")
		return nil
	}

	created, err := l.linkTypes(ctx, metadata)
	if err != nil {
		return err
	}
	l.logger.Info("created [:WITH_SOURCE] relationships from types", "count", created)

	memberEdges, err := l.linkMembers(ctx)
	if err != nil {
		return err
	}
	l.logger.Info("created [:WITH_SOURCE] relationships from members", "count", memberEdges)

	l.logger.Info("--- Finished Pass: Source File Linking ---")
	return nil
}

// parseSourceFiles queries the graph for every labeled SourceFile and
// parses each file from disk with the grammar matching its extension.
func (l *Linker) parseSourceFiles(ctx context.Context) ([]*FileMetadata, error) {
	records, err := l.gateway.Read(ctx, `
		MATCH (f:SourceFile)
		WHERE f.absolute_path IS NOT NULL
		RETURN f.absolute_path AS absolutePath
	`, nil)
	if err != nil {
		return nil, err
	}

	var metadata []*FileMetadata
	skipped := 0
	for _, record := range records {
		path, _ := record["absolutePath"].(string)
		if path == "" {
			continue
		}

		var meta *FileMetadata
		var parseErr error
		switch {
		case strings.HasSuffix(path, ".java"):
			meta, parseErr = ParseJavaFile(ctx, path)
		case strings.HasSuffix(path, ".kt"):
			meta, parseErr = ParseKotlinFile(ctx, path)
		default:
			continue
		}

		if parseErr != nil {
			l.logger.Error("failed to parse source file, skipping", "path", path, "error", parseErr)
			skipped++
			continue
		}
		metadata = append(metadata, meta)
	}

	l.logger.Info("parsed source files", "parsed", len(metadata), "skipped", skipped)
	return metadata, nil
}

// linkTypes merges Type-[:WITH_SOURCE]->SourceFile edges for every parsed
// (file, fqn) pair, restricted to class-like types, in fixed-size batches.
func (l *Linker) linkTypes(ctx context.Context, metadata []*FileMetadata) (int, error) {
	query := `
		UNWIND $metadata AS file_data
		MATCH (file:SourceFile {absolute_path: file_data.path})
		UNWIND file_data.fqns AS type_fqn
		MATCH (type:Type {fqn: type_fqn})
		WHERE type:Class OR type:Interface OR type:Enum
		MERGE (type)-[r:WITH_SOURCE]->(file)
	`

	total := 0
	for i := 0; i < len(metadata); i += batchSize {
		end := i + batchSize
		if end > len(metadata) {
			end = len(metadata)
		}

		batch := make([]map[string]any, 0, end-i)
		for _, meta := range metadata[i:end] {
			batch = append(batch, map[string]any{"path": meta.Path, "fqns": meta.FQNs})
		}

		counters, err := l.gateway.Write(ctx, query, map[string]any{"metadata": batch})
		if err != nil {
			return total, err
		}
		total += counters.RelationshipsCreated
	}
	return total, nil
}

// linkMembers routes every declared member to its type's source file.
func (l *Linker) linkMembers(ctx context.Context) (int, error) {
	counters, err := l.gateway.Write(ctx, `
		MATCH (t:Type)-[:WITH_SOURCE]->(sf:SourceFile)
		MATCH (t)-[:DECLARES]->(m:Member)
		MERGE (m)-[:WITH_SOURCE]->(sf)
	`, nil)
	if err != nil {
		return 0, err
	}
	return counters.RelationshipsCreated, nil
}
