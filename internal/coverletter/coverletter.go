// Package coverletter builds cover letters from resume text, either as a
// prompt for the writer agent or from the built-in template.
package coverletter

import (
	"fmt"
	"strings"

	"github.com/muhammadolammi/resumeagentworker/internal/analyzer"
)

const (
	resumeSnippetRunes   = 1500
	descriptionRunes     = 1500
	templateSnippetRunes = 400
)

type Request struct {
	JobTitle       string
	Company        string
	JobDescription string
	ResumeText     string
}

// ResumeSnippet is the start of the resume flattened onto one line.
func ResumeSnippet(text string) string {
	return strings.ReplaceAll(analyzer.Snippet(text, resumeSnippetRunes), "\n", " ")
}

// Template is the letter used when no AI writer is available.
func Template(req Request) string {
	snippet := analyzer.Snippet(ResumeSnippet(req.ResumeText), templateSnippetRunes)
	return fmt.Sprintf(`Dear Hiring Manager at %[1]s,

I am writing to apply for the position of %[2]s. Based on my resume, I have experience that aligns with this role: %[3]s ...

I am excited about the opportunity to contribute to %[1]s and would welcome the opportunity to discuss how my skills and experience can help your team reach its goals.

Sincerely,
[Your Name]
`, req.Company, req.JobTitle, snippet)
}

// Prompt is the user message sent to the cover letter agent.
func Prompt(req Request) string {
	return fmt.Sprintf(
		"Job title: %s\nCompany: %s\nJob Description: %s\nResume snippet: %s",
		req.JobTitle,
		req.Company,
		analyzer.Snippet(req.JobDescription, descriptionRunes),
		ResumeSnippet(req.ResumeText),
	)
}
