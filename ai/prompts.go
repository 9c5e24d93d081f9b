package ai

import (
	"fmt"
	"strings"

	"datalens/internal/analysis"
	"datalens/ports"
)

// SystemContext builds the system message describing the dataset under
// analysis.
func SystemContext(summary *analysis.Summary, columns []string) string {
	context := fmt.Sprintf("Analyzing a dataset with %d rows and columns: %s.",
		summary.Rows, strings.Join(columns, ", "))

	if describe := summary.Describe(); describe != "" {
		context += "\nNumeric column profile:\n" + describe
	}
	return context
}

// WebContext renders search snippets as prompt context lines
func WebContext(snippets []ports.Snippet) string {
	if len(snippets) == 0 {
		return ""
	}
	lines := make([]string, len(snippets))
	for i, s := range snippets {
		lines[i] = "- " + s.Snippet
	}
	return "\nWeb search results:\n" + strings.Join(lines, "\n")
}
