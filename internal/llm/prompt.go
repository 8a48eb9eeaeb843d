package llm

import (
	"strings"

	"github.com/kpcollege/studentportal/constants"
)

// maxDocumentChars bounds how much extracted text goes into one prompt.
const maxDocumentChars = 12000

// BuildStudentSystemPrompt composes the system message for roster
// extraction: known departments, the lateral-entry rule, and strict
// formatting hygiene.
func BuildStudentSystemPrompt() string {
	parts := []string{
		"You are a student roster parser. Return ONLY JSON that matches the provided JSON Schema,",
		"as an object of the form {\"records\": [...]} with one element per student found.",
		"Known departments: " + strings.Join(constants.Departments(), ", ") + "; use the short code as printed.",
		"'year' is the student's current academic year as a single digit string \"1\" to \"4\".",
		"Set 'is_lateral_entry' to true ONLY when the document indicates the student joined",
		"directly into year 2 (lateral admission / LE); otherwise omit it.",
		"Include 'roll_number' exactly as printed when present; never invent one.",
		"Never output null. If a field is not present, omit it.",
		"If the document contains no student records, return {\"records\": []}.",
	}
	return strings.Join(parts, " ")
}

// BuildAttendanceSystemPrompt composes the system message for attendance
// sheet extraction.
func BuildAttendanceSystemPrompt() string {
	parts := []string{
		"You are an attendance sheet parser. Return ONLY JSON that matches the provided JSON Schema,",
		"as an object of the form {\"records\": [...]} with one element per student row.",
		"'month' is the full English month name, 'year' the 4-digit calendar year.",
		"'present' and 'total' are non-negative whole numbers of days; 'present' never exceeds 'total'.",
		"Read roll numbers exactly as printed; never invent or complete one.",
		"Never output null. If the sheet contains no rows, return {\"records\": []}.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the document text, truncated to keep the request
// within a sane token budget.
func BuildUserPrompt(documentText string) string {
	var b strings.Builder
	b.WriteString("Document text:\n")
	if len(documentText) > maxDocumentChars {
		b.WriteString(documentText[:maxDocumentChars])
	} else {
		b.WriteString(documentText)
	}
	return b.String()
}
