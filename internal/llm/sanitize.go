package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/entity"
)

// The model response is an untrusted payload. Rows are sanitized and
// validated one at a time so a single bad row is reported as malformed
// instead of failing the whole batch. An unparseable envelope IS fatal:
// that is an ExtractionFailed for the calling flow.

// ParseStudentPayload decodes the model content for a roster extraction.
func ParseStudentPayload(content []byte, logger *slog.Logger) (StudentExtraction, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out := StudentExtraction{Raw: content}

	rows, err := decodeEnvelope(content)
	if err != nil {
		return out, fmt.Errorf("decode roster payload: %w", err)
	}

	for i, raw := range rows {
		m, err := sanitizeStudentRow(raw)
		if err != nil {
			out.Malformed = append(out.Malformed, MalformedRow{Index: i, Reason: err.Error()})
			continue
		}
		cleaned, _ := json.Marshal(m)
		if err := StudentRowValidator.Validate(cleaned); err != nil {
			logger.Warn("llm.sanitize.student_row_rejected", "index", i, "error", err)
			out.Malformed = append(out.Malformed, MalformedRow{Index: i, Reason: err.Error()})
			continue
		}
		var s entity.ParsedStudent
		if err := json.Unmarshal(cleaned, &s); err != nil {
			out.Malformed = append(out.Malformed, MalformedRow{Index: i, Reason: err.Error()})
			continue
		}
		out.Students = append(out.Students, s)
	}
	return out, nil
}

// ParseAttendancePayload decodes the model content for an attendance
// extraction. Months are canonicalized to full English names.
func ParseAttendancePayload(content []byte, logger *slog.Logger) (AttendanceExtraction, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out := AttendanceExtraction{Raw: content}

	rows, err := decodeEnvelope(content)
	if err != nil {
		return out, fmt.Errorf("decode attendance payload: %w", err)
	}

	for i, raw := range rows {
		m, err := sanitizeAttendanceRow(raw)
		if err != nil {
			out.Malformed = append(out.Malformed, MalformedRow{Index: i, Reason: err.Error()})
			continue
		}
		cleaned, _ := json.Marshal(m)
		if err := AttendanceRowValidator.Validate(cleaned); err != nil {
			logger.Warn("llm.sanitize.attendance_row_rejected", "index", i, "error", err)
			out.Malformed = append(out.Malformed, MalformedRow{Index: i, Reason: err.Error()})
			continue
		}
		var r entity.ParsedAttendanceRecord
		if err := json.Unmarshal(cleaned, &r); err != nil {
			out.Malformed = append(out.Malformed, MalformedRow{Index: i, Reason: err.Error()})
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out, nil
}

// decodeEnvelope accepts the requested {"records": [...]} envelope, but is
// lenient about a bare top-level array.
func decodeEnvelope(content []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var rows []json.RawMessage
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	var env struct {
		Records []json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	return env.Records, nil
}

// studentSynonyms maps key variants the model tends to produce onto the
// contract's field names.
var studentSynonyms = map[string]string{
	"rollnumber":    "roll_number",
	"rollno":        "roll_number",
	"roll":          "roll_number",
	"branch":        "department",
	"dept":          "department",
	"lateral":       "is_lateral_entry",
	"lateralentry":  "is_lateral_entry",
	"fees":          "total_fees",
	"totalfee":      "total_fees",
	"totalfees":     "total_fees",
	"paidfee":       "paid_fees",
	"paidfees":      "paid_fees",
	"feespaid":      "paid_fees",
	"phonenumber":   "phone",
	"mobile":        "phone",
	"emailaddress":  "email",
	"studentname":   "name",
	"academicyear":  "year",
	"currentyear":   "year",
}

var studentKnownKeys = map[string]struct{}{
	"name": {}, "roll_number": {}, "department": {}, "year": {}, "section": {},
	"is_lateral_entry": {}, "total_fees": {}, "paid_fees": {}, "email": {}, "phone": {},
}

func sanitizeStudentRow(raw json.RawMessage) (map[string]any, error) {
	m, err := decodeRow(raw)
	if err != nil {
		return nil, err
	}
	renameKeys(m, studentSynonyms)

	for _, k := range []string{"name", "roll_number", "department", "section", "email", "phone"} {
		trimStringField(m, k)
	}

	// year arrives as a string per the contract, but models return numbers
	if v, ok := m["year"]; ok {
		switch t := v.(type) {
		case float64:
			m["year"] = strconv.Itoa(int(t))
		case string:
			m["year"] = strings.TrimSpace(t)
		}
	}

	// fee fields: contract says number, so coerce numeric strings
	for _, k := range []string{"total_fees", "paid_fees"} {
		if v, ok := m[k].(string); ok {
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
			if s == "" {
				delete(m, k)
				continue
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				delete(m, k)
				continue
			}
			m[k] = f
		}
	}

	if v, ok := m["is_lateral_entry"].(string); ok {
		m["is_lateral_entry"] = strings.EqualFold(strings.TrimSpace(v), "true") ||
			strings.EqualFold(strings.TrimSpace(v), "yes")
	}

	if v, ok := m["department"].(string); ok {
		m["department"] = strings.ToUpper(v)
	}

	dropUnknownKeys(m, studentKnownKeys)
	return m, nil
}

var attendanceSynonyms = map[string]string{
	"rollnumber":  "roll_number",
	"rollno":      "roll_number",
	"roll":        "roll_number",
	"daystotal":   "total",
	"workingdays": "total",
	"dayspresent": "present",
	"attended":    "present",
}

var attendanceKnownKeys = map[string]struct{}{
	"roll_number": {}, "month": {}, "year": {}, "present": {}, "total": {},
}

func sanitizeAttendanceRow(raw json.RawMessage) (map[string]any, error) {
	m, err := decodeRow(raw)
	if err != nil {
		return nil, err
	}
	renameKeys(m, attendanceSynonyms)
	trimStringField(m, "roll_number")

	if v, ok := m["month"].(string); ok {
		canon, ok := constants.CanonicalMonth(v)
		if !ok {
			return nil, fmt.Errorf("unknown month %q", v)
		}
		m["month"] = canon
	}

	for _, k := range []string{"year", "present", "total"} {
		switch t := m[k].(type) {
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(t))
			if err != nil {
				return nil, fmt.Errorf("%s is not an integer: %q", k, t)
			}
			m[k] = n
		case float64:
			if t != float64(int(t)) {
				return nil, fmt.Errorf("%s is not an integer: %v", k, t)
			}
			m[k] = int(t)
		}
	}

	dropUnknownKeys(m, attendanceKnownKeys)
	return m, nil
}

func decodeRow(raw json.RawMessage) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("row is not an object: %w", err)
	}
	return m, nil
}

// renameKeys maps synonym keys onto canonical names without overwriting a
// value that is already present. Matching ignores case, underscores, dashes
// and spaces.
func renameKeys(m map[string]any, synonyms map[string]string) {
	for k, v := range m {
		norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(k))
		canon, ok := synonyms[norm]
		if !ok || k == canon {
			continue
		}
		if _, exists := m[canon]; !exists {
			m[canon] = v
		}
		delete(m, k)
	}
}

func trimStringField(m map[string]any, k string) {
	if v, ok := m[k].(string); ok {
		s := strings.TrimSpace(v)
		if s == "" {
			delete(m, k)
			return
		}
		m[k] = s
	}
	if m[k] == nil {
		delete(m, k)
	}
}

func dropUnknownKeys(m map[string]any, known map[string]struct{}) {
	for k := range m {
		if _, ok := known[k]; !ok {
			delete(m, k)
		}
	}
}
