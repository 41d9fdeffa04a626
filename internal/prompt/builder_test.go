package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodAnalysisVariants(t *testing.T) {
	single := MethodAnalysis("int add(int a, int b) { return a + b; }", true, true, "")
	assert.Contains(t, single, "Summarize the purpose of this method")
	assert.Contains(t, single, "return a + b")

	first := MethodAnalysis("void begin() {", true, false, "")
	assert.Contains(t, first, "beginning of a larger")

	middle := MethodAnalysis("x++;", false, false, "increments counters")
	assert.Contains(t, middle, "increments counters")
	assert.Contains(t, middle, "continues after this code")

	last := MethodAnalysis("}", false, true, "increments counters")
	assert.Contains(t, last, "end of the method body")
}

func TestMethodSummaryEmptyRelations(t *testing.T) {
	p := MethodSummary("process", "parses input", nil, nil)
	assert.Contains(t, p, "'process'")
	assert.Contains(t, p, "[None]")
}

func TestMethodSummaryWithRelations(t *testing.T) {
	p := MethodSummary("process", "parses input",
		[]string{"handles requests"}, []string{"writes output", "logs errors"})
	assert.Contains(t, p, "[handles requests]")
	assert.Contains(t, p, "[writes output; logs errors]")
}

func TestIterativeMethodSummary(t *testing.T) {
	callers := IterativeMethodSummary("running", "chunk", RelationCallers)
	assert.Contains(t, callers, "in relation to its callers")

	callees := IterativeMethodSummary("running", "chunk", RelationCallees)
	assert.Contains(t, callees, "based on its callees")
}

func TestTypeSummaryOmitsEmptySections(t *testing.T) {
	p := TypeSummary("Widget", "Class", nil, []string{"renders"})
	assert.NotContains(t, p, "inherits from")
	assert.Contains(t, p, "[renders]")
	assert.Contains(t, p, "'Widget' Class")
}

func TestHierarchicalSummary(t *testing.T) {
	p := HierarchicalSummary("Directory", "/src/main", "child context")
	assert.Contains(t, p, "directory named '/src/main'")
	assert.Contains(t, p, "child context")

	empty := HierarchicalSummary("Project", "demo", "")
	assert.Contains(t, empty, "unclear due to missing context")
}

func TestSeeds(t *testing.T) {
	assert.Contains(t, TypeSeed("Widget", "Interface"), "Interface named 'Widget'")
	assert.Contains(t, HierarchicalSeed("Package", "com.x"), "Package named 'com.x'")
}
