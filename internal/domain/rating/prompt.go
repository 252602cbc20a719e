package rating

import (
	_ "embed"
	"strings"
)

//go:embed prompt.md
var promptTemplate string

// BuildPrompt assembles the instructions, the GitHub highlights and the
// resume text into the request sent to the generator.
func BuildPrompt(highlights, resume string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(promptTemplate))
	b.WriteString("\n\n=== DATA TO ANALYZE ===\n\n")
	b.WriteString(strings.TrimSpace(highlights))
	b.WriteString("\n\nResume Content:\n")
	b.WriteString(strings.TrimSpace(resume))
	b.WriteString("\n\n=== END DATA ===\n\n")
	b.WriteString("Please analyze the above data and respond with the JSON rating structure only.\n")
	return b.String()
}
