package analysis

import (
	"fmt"
	"strings"

	"vela-dashboard-backend/internal/docs"
	"vela-dashboard-backend/internal/llm"
)

// maxLogChars caps how much raw log text is embedded in a prompt.
const maxLogChars = 8000

const enhancedSystemPrompt = "You are an expert DevOps engineer and Vela CI/CD specialist. " +
	"Analyze the provided build failure and provide detailed insights with actionable solutions. " +
	"Structure your response with exactly six bold-labeled sections, in this order: " +
	"**Root Cause Analysis**, **Immediate Workarounds**, **Proper Solutions**, " +
	"**Code Examples**, **Prevention**, **Vela Best Practices**."

const basicSystemPrompt = "You are an expert DevOps engineer analyzing CI/CD pipeline failures. " +
	"Provide concise, actionable analysis and solutions."

// BuildEnhancedPrompt composes the system/user pair for an enhanced failure
// analysis, embedding the failure record and any matched documentation.
// It is pure formatting: deterministic, no I/O.
func BuildEnhancedPrompt(rec FailureRecord, snippets []docs.Snippet) llm.Prompt {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this Vela pipeline failure:\n\n")
	fmt.Fprintf(&b, "Repository: %s\n", rec.Repository)
	fmt.Fprintf(&b, "Branch: %s\n", rec.Branch)
	fmt.Fprintf(&b, "Failed Step: %s\n", rec.FailingStep)
	fmt.Fprintf(&b, "Error Message: %s\n\n", rec.ErrorMessage)

	fmt.Fprintf(&b, "Build Logs:\n```\n%s\n```\n", capLog(rec.LogText))

	if strings.TrimSpace(rec.PipelineConfig) != "" {
		fmt.Fprintf(&b, "\nPipeline Configuration:\n```yaml\n%s\n```\n", rec.PipelineConfig)
	}

	if len(snippets) > 0 {
		b.WriteString("\nRelevant Vela Documentation:\n")
		for i, snippet := range snippets {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s:\n%s\n", snippet.URL, snippet.Content)
		}
	}

	b.WriteString("\nPlease provide:\n")
	for i, label := range SectionLabels() {
		fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, label, sectionHint(label))
	}
	b.WriteString("\nFormat your response with clear sections and actionable steps.")

	return llm.Prompt{
		System: enhancedSystemPrompt,
		User:   b.String(),
	}
}

// BuildBasicPrompt composes the system/user pair for a basic failure
// analysis: a single free-text answer, no section contract.
func BuildBasicPrompt(rec FailureRecord) llm.Prompt {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this pipeline failure:\n\n")
	fmt.Fprintf(&b, "Repository: %s\n", rec.Repository)
	fmt.Fprintf(&b, "Failed Step: %s\n", rec.FailingStep)
	fmt.Fprintf(&b, "Error: %s\n\n", rec.ErrorMessage)
	fmt.Fprintf(&b, "Build Logs:\n%s\n\n", capLog(rec.LogText))
	b.WriteString("Provide a brief analysis of what went wrong and how to fix it.")

	return llm.Prompt{
		System: basicSystemPrompt,
		User:   b.String(),
	}
}

func sectionHint(label string) string {
	switch label {
	case labelRootCause:
		return "What exactly went wrong and why?"
	case labelWorkarounds:
		return "Quick fixes to get the pipeline working"
	case labelSolutions:
		return "Long-term fixes that address the underlying issue"
	case labelCodeExamples:
		return "Show specific YAML changes or commands needed"
	case labelPrevention:
		return "How to avoid this issue in the future"
	case labelBestPractices:
		return "Relevant recommendations from the documentation"
	default:
		return ""
	}
}

func capLog(logText string) string {
	if len(logText) <= maxLogChars {
		return logText
	}
	return logText[:maxLogChars]
}
