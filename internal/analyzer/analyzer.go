// Package analyzer runs the rule-based resume checks.
package analyzer

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	MsgNoText       = "Could not read any text from the resume. Try another file or check the file format."
	MsgTooShort     = "Resume seems short. Add more detail about responsibilities, projects, and results."
	MsgTooLong      = "Resume seems long. Aim for 1–2 pages and keep content concise."
	MsgNoEmail      = "No email address found. Add a professional email."
	MsgNoPhone      = "No phone number found. Add a contact phone number."
	MsgNoExperience = "Add a 'Work Experience' or 'Professional Experience' section."
	MsgNoEducation  = "Add an 'Education' section."
	MsgNoSkills     = "Add a 'Skills' section to highlight your tools and technologies."
	MsgActionVerbs  = "Use action verbs and quantify results (e.g., 'Increased sales by 20%')."
	MsgLooksGood    = "Resume looks good on basic checks. Tailor it to the job description for better results."
)

const (
	minWords       = 200
	maxWords       = 1500
	minPhoneDigits = 7
)

var (
	wordRe  = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

type Report struct {
	WordCount   int      `json:"word_count"`
	Suggestions []string `json:"suggestions"`
}

// Analyze never fails; empty text yields a single MsgNoText suggestion.
func Analyze(text string) Report {
	if text == "" {
		return Report{WordCount: 0, Suggestions: []string{MsgNoText}}
	}

	words := wordRe.FindAllString(text, -1)
	suggestions := []string{}

	switch {
	case len(words) < minWords:
		suggestions = append(suggestions, MsgTooShort)
	case len(words) > maxWords:
		suggestions = append(suggestions, MsgTooLong)
	}

	if !emailRe.MatchString(text) {
		suggestions = append(suggestions, MsgNoEmail)
	}
	if !hasPhoneNumber(words) {
		suggestions = append(suggestions, MsgNoPhone)
	}

	if !containsFold(text, "experience", "work history") {
		suggestions = append(suggestions, MsgNoExperience)
	}
	if !containsFold(text, "education") {
		suggestions = append(suggestions, MsgNoEducation)
	}
	if !containsFold(text, "skills", "technical skills") {
		suggestions = append(suggestions, MsgNoSkills)
	}

	if containsFold(text, "responsible for") && !containsFold(text, "increased", "%") {
		suggestions = append(suggestions, MsgActionVerbs)
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, MsgLooksGood)
	}

	return Report{WordCount: len(words), Suggestions: suggestions}
}

// hasPhoneNumber reports whether some word is made only of decimal digits
// and is at least minPhoneDigits long.
func hasPhoneNumber(words []string) bool {
	for _, w := range words {
		n := 0
		for _, r := range w {
			if !unicode.IsDigit(r) {
				n = 0
				break
			}
			n++
		}
		if n >= minPhoneDigits {
			return true
		}
	}
	return false
}

// containsFold reports whether the lower-cased text contains any of subs.
func containsFold(text string, subs ...string) bool {
	lowered := strings.ToLower(text)
	for _, sub := range subs {
		if strings.Contains(lowered, sub) {
			return true
		}
	}
	return false
}

// Snippet returns at most n runes from the start of text.
func Snippet(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
