package summarize

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// MethodAnalyzer produces a technical code analysis for every method whose
// source line range is known, keyed by the content hash of the extracted
// snippet.
type MethodAnalyzer struct {
	pass
}

// NewMethodAnalyzer creates the pass.
func NewMethodAnalyzer(gateway Gateway, processor *Processor, workers int) *MethodAnalyzer {
	return &MethodAnalyzer{pass: newPass(gateway, processor, workers, "method-analyzer")}
}

// Run fetches every method with a line range, slices its source file from
// disk, and runs the code-analysis waterfall.
func (a *MethodAnalyzer) Run(ctx context.Context) (int, error) {
	a.logger.Info("--- Starting Pass: MethodAnalyzer ---")

	items, err := a.gateway.Read(ctx, `
		MATCH (m:Method)-[:WITH_SOURCE]->(sf:SourceFile)
		WHERE m.firstLineNumber IS NOT NULL AND m.lastLineNumber IS NOT NULL
		RETURN m.entity_id AS id,
		       sf.absolute_path AS sourceFilePath,
		       m.firstLineNumber AS firstLine,
		       m.lastLineNumber AS lastLine,
		       m.code_analysis AS db_analysis,
		       m.code_hash AS db_hash
	`, nil)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		a.logger.Warn("no items found, skipping pass")
		return 0, nil
	}

	updated, err := a.processBatch(ctx, items, a.processItem, `
		UNWIND $updates AS item
		MATCH (m:Method {entity_id: item.id})
		SET m.code_analysis = item.code_analysis, m.code_hash = item.code_hash
	`)
	if err != nil {
		return 0, err
	}

	a.logger.Info("--- Pass MethodAnalyzer complete ---", "properties_set", updated)
	return updated, nil
}

func (a *MethodAnalyzer) processItem(ctx context.Context, record map[string]any) (*Result, error) {
	sourceCode := a.extractMethodSnippet(
		recordString(record, "sourceFilePath"),
		recordInt(record, "firstLine"),
		recordInt(record, "lastLine"))

	return a.processor.MethodCodeAnalysis(ctx, MethodSource{
		ID:         recordString(record, "id"),
		SourceCode: sourceCode,
		DBAnalysis: recordString(record, "db_analysis"),
		DBHash:     recordString(record, "db_hash"),
	})
}

// extractMethodSnippet reads the method's source text by line range.
// Returns "" on any problem; the method is then skipped by the processor.
func (a *MethodAnalyzer) extractMethodSnippet(path string, firstLine, lastLine int) string {
	if !filepath.IsAbs(path) {
		a.logger.Error("source file path is not absolute", "path", path)
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		a.logger.Error("source file not found", "path", path, "error", err)
		return ""
	}

	lines := strings.SplitAfter(string(data), "\n")
	start := firstLine - 1
	end := lastLine

	if start < 0 || start >= end || end > len(lines) {
		a.logger.Warn("invalid line numbers for method",
			"path", path, "first", firstLine, "last", lastLine, "file_lines", len(lines))
		return ""
	}
	return strings.Join(lines[start:end], "")
}
