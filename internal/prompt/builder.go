// Package prompt centralizes the templates for every LLM request issued by
// the summarization engine. All functions are pure string assembly.
package prompt

import (
	"fmt"
	"strings"
)

const noReasoning = "Do not respond with your reasoning process, only the summary."

// MethodAnalysis returns the prompt for analyzing a method body chunk.
// firstChunk/lastChunk select between the single-shot, opening, middle and
// closing variants; runningSummary carries the analysis built so far.
func MethodAnalysis(chunk string, firstChunk, lastChunk bool, runningSummary string) string {
	if firstChunk {
		if lastChunk {
			return "Summarize the purpose of this method based on its code. " +
				"Provide a concise, one-paragraph technical analysis. " +
				noReasoning +
				"\n\n```\n" + chunk + "\n```"
		}
		return "Summarize this code, which is the beginning of a larger " +
			"method. Provide a concise, one-paragraph technical analysis. " +
			noReasoning +
			"\n\n```\n" + chunk + "\n```"
	}

	positionPrompt := "The method body continues after this code."
	if lastChunk {
		positionPrompt = "This is the end of the method body."
	}
	return "The summary of the first part of a large method so far is: \n" +
		"'" + runningSummary + "'\n\n" +
		"Here is the next part of the code:\n```\n" + chunk + "\n```\n\n" +
		positionPrompt + "\n\n" +
		"Please provide a new, single-paragraph summary that combines " +
		"the previous summary with this new code. " + noReasoning
}

// MethodSummary is the single-shot prompt combining a method's code
// analysis with its callers' and callees' summaries.
func MethodSummary(methodName, codeAnalysis string, callers, callees []string) string {
	callerText := "None"
	if len(callers) > 0 {
		callerText = strings.Join(callers, "; ")
	}
	calleeText := "None"
	if len(callees) > 0 {
		calleeText = strings.Join(callees, "; ")
	}

	return fmt.Sprintf(
		"A method named '%s' is technically analyzed as: '%s'.\n"+
			"It is called by other methods with these responsibilities: [%s].\n"+
			"It calls other methods to accomplish these tasks: [%s].\n\n"+
			"Based on this full context, what is the high-level purpose of "+
			"this method in the overall system? Describe it in a concise "+
			"paragraph. %s",
		methodName, codeAnalysis, callerText, calleeText, noReasoning)
}

// RelationKind selects which related set an iterative refinement chunk came
// from: a method's callers or callees, or a type's parents or members.
type RelationKind string

const (
	RelationCallers RelationKind = "callers"
	RelationCallees RelationKind = "callees"
	RelationParents RelationKind = "parents"
	RelationMembers RelationKind = "members"
)

// IterativeMethodSummary folds one chunk of caller or callee summaries into
// a running method summary.
func IterativeMethodSummary(runningSummary, relationChunk string, relation RelationKind) string {
	switch relation {
	case RelationCallers:
		return "A method's purpose is summarized as: '" + runningSummary + "'.\n" +
			"It is used by other methods with the following responsibilities: " +
			"[" + relationChunk + "].\n\n" +
			"Refine the summary of the method's role in relation to its callers. " +
			"Provide a new, single-paragraph summary. " + noReasoning
	default:
		return "So far, a method's role is summarized as: '" + runningSummary + "'.\n" +
			"It accomplishes this by calling other methods for these purposes: " +
			"[" + relationChunk + "].\n\n" +
			"Provide a final, comprehensive summary of the method's " +
			"overall purpose based on its callees. Provide a new, " +
			"single-paragraph summary. " + noReasoning
	}
}

// TypeSummary is the single-shot prompt for a type given its parents' and
// members' summaries.
func TypeSummary(typeName, typeLabel string, parentSummaries, memberSummaries []string) string {
	parentText := ""
	if len(parentSummaries) > 0 {
		parentText = "It inherits from or implements the following types: [" +
			strings.Join(parentSummaries, "; ") + "]."
	}
	memberText := ""
	if len(memberSummaries) > 0 {
		memberText = "It contains members (methods, fields) with these responsibilities: [" +
			strings.Join(memberSummaries, "; ") + "]."
	}

	return fmt.Sprintf(
		"A %s named '%s' is defined. %s %s\n\n"+
			"Based on its inheritance and members, what is the primary responsibility and role of the '%s' %s in the system? "+
			"Describe it in a concise paragraph. %s",
		typeLabel, typeName, parentText, memberText, typeName, typeLabel, noReasoning)
}

// IterativeTypeSummary folds one chunk of parent or member summaries into a
// running type summary.
func IterativeTypeSummary(typeName, typeLabel, runningSummary, relationChunk string, relation RelationKind) string {
	switch relation {
	case RelationParents:
		return fmt.Sprintf(
			"The summary for the %s '%s' is currently: '%s'.\n"+
				"It inherits from or implements types with these roles: [%s].\n\n"+
				"Refine the summary to include the role of its inheritance. "+
				"Provide a new, single-paragraph summary. %s",
			typeLabel, typeName, runningSummary, relationChunk, noReasoning)
	default:
		return fmt.Sprintf(
			"So far, the role of the %s '%s' is summarized as: '%s'.\n"+
				"It implements members (methods, fields) to perform these functions: [%s].\n\n"+
				"Provide a final, comprehensive summary of the type's overall purpose. "+
				"Provide a new, single-paragraph summary. %s",
			typeLabel, typeName, runningSummary, relationChunk, noReasoning)
	}
}

// TypeSeed is the neutral running summary that iterative type refinement
// starts from.
func TypeSeed(typeName, typeLabel string) string {
	return fmt.Sprintf("A %s named '%s' that serves a purpose to be defined by its relationships.", typeLabel, typeName)
}

// HierarchicalSeed is the neutral running summary for iterative file,
// directory, package and project refinement.
func HierarchicalSeed(nodeType, nodeName string) string {
	return fmt.Sprintf("A %s named '%s' that serves a purpose to be defined by its contents.", nodeType, nodeName)
}

// HierarchicalSummary is the single-shot prompt for a SourceFile,
// Directory, Package or Project node from its children's joined context.
func HierarchicalSummary(nodeType, nodeName, context string) string {
	var lead string
	switch nodeType {
	case "SourceFile":
		lead = fmt.Sprintf("Based on the following context, provide a concise summary for the source file named '%s'.", nodeName)
	case "Directory":
		lead = fmt.Sprintf("Based on the following context, provide a concise summary for the directory named '%s'.", nodeName)
	case "Package":
		lead = fmt.Sprintf("Based on the following context, provide a concise summary for the package named '%s'.", nodeName)
	case "Project":
		lead = fmt.Sprintf("Based on the following context, provide a concise summary for the project named '%s'.", nodeName)
	default:
		lead = fmt.Sprintf("Based on the following context, provide a concise summary for '%s'.", nodeName)
	}

	if context == "" {
		return fmt.Sprintf("Purpose of %s '%s' is unclear due to missing context.", nodeType, nodeName)
	}

	return lead + "\nContext:\n" + context + "\nSummary:\n"
}

// IterativeHierarchical folds one chunk of child summaries into a running
// hierarchical summary.
func IterativeHierarchical(nodeType, nodeName, runningSummary, childChunk string) string {
	return fmt.Sprintf(
		"The summary for the %s '%s' is currently: '%s'.\n"+
			"It contains child components with the following responsibilities: [%s].\n\n"+
			"Refine the summary for the %s '%s' based on this new information. "+
			"Provide a new, single-paragraph summary. %s",
		nodeType, nodeName, runningSummary, childChunk, nodeType, nodeName, noReasoning)
}
