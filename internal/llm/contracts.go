package llm

import (
	"context"

	"github.com/kpcollege/studentportal/internal/entity"
)

// Document is the input to an extraction call: either plain text pulled out
// of a PDF/DOCX, or raw image bytes for photographed attendance sheets.
type Document struct {
	Text       string
	ImageBytes []byte
	MIMEType   string // required when ImageBytes is set
}

// MalformedRow records a model-returned row that failed the schema contract.
// Malformed rows never abort the batch; they are counted and reported.
type MalformedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// StudentExtraction is the outcome of one roster extraction call.
type StudentExtraction struct {
	Students  []entity.ParsedStudent
	Malformed []MalformedRow
	Raw       []byte // raw model content, kept for logs
}

// AttendanceExtraction is the outcome of one attendance extraction call.
type AttendanceExtraction struct {
	Records   []entity.ParsedAttendanceRecord
	Malformed []MalformedRow
	Raw       []byte
}

// RosterExtractor turns free document text into candidate student records.
type RosterExtractor interface {
	ExtractStudents(ctx context.Context, documentText string) (StudentExtraction, error)
}

// AttendanceExtractor turns a document (text or image) into candidate
// monthly attendance records.
type AttendanceExtractor interface {
	ExtractAttendance(ctx context.Context, doc Document) (AttendanceExtraction, error)
}

// Extractor is the full structured-extraction client surface.
type Extractor interface {
	RosterExtractor
	AttendanceExtractor
}
