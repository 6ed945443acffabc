package analysis

import (
	"regexp"
	"strings"
)

// The six labels form a versioned contract between the prompt composer and
// this extractor: if the label set changes, both must change together.
const (
	labelRootCause     = "Root Cause Analysis"
	labelWorkarounds   = "Immediate Workarounds"
	labelSolutions     = "Proper Solutions"
	labelCodeExamples  = "Code Examples"
	labelPrevention    = "Prevention"
	labelBestPractices = "Vela Best Practices"
)

// SectionLabels returns the canonical labels in document order.
func SectionLabels() []string {
	return []string{
		labelRootCause,
		labelWorkarounds,
		labelSolutions,
		labelCodeExamples,
		labelPrevention,
		labelBestPractices,
	}
}

// Sections holds the six extracted fields. A label the model omitted maps to
// the empty string; the shape never varies.
type Sections struct {
	RootCause     string `json:"rootCause"`
	Workarounds   string `json:"workarounds"`
	Solutions     string `json:"solutions"`
	CodeExamples  string `json:"codeExamples"`
	Prevention    string `json:"prevention"`
	BestPractices string `json:"bestPractices"`
}

// nextHeadingRe matches any bold-markdown heading; capture stops at the next
// such heading rather than running to end-of-document.
var nextHeadingRe = regexp.MustCompile(`\*\*[^*]+[:*]*\*\*`)

var labelRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, 6)
	for _, label := range SectionLabels() {
		res[label] = regexp.MustCompile(`(?i)\*\*` + regexp.QuoteMeta(label) + `[:*]*\*\*:?`)
	}
	return res
}()

// ExtractSections pulls the six labeled sections out of a free-text model
// response. Tolerates arbitrary input; worst case is six empty strings.
func ExtractSections(text string) Sections {
	return Sections{
		RootCause:     extractSection(text, labelRootCause),
		Workarounds:   extractSection(text, labelWorkarounds),
		Solutions:     extractSection(text, labelSolutions),
		CodeExamples:  extractSection(text, labelCodeExamples),
		Prevention:    extractSection(text, labelPrevention),
		BestPractices: extractSection(text, labelBestPractices),
	}
}

// extractSection captures text after a case-insensitive bold label, up to
// but not including the next bold heading or end of string.
func extractSection(text, label string) string {
	loc := labelRes[label].FindStringIndex(text)
	if loc == nil {
		return ""
	}
	body := text[loc[1]:]
	if next := nextHeadingRe.FindStringIndex(body); next != nil {
		body = body[:next[0]]
	}
	return strings.TrimSpace(body)
}
