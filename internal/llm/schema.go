package llm

// Schema contracts for the two extraction operations. Each is a JSON-Schema
// (draft 2020-12 subset) built as a generic map: it is sent to the model as
// a structured-output constraint and used locally to validate each returned
// row before it reaches the reconciliation engine.

// BuildStudentRowSchema describes one candidate student record.
func BuildStudentRowSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":             map[string]any{"type": "string", "minLength": 1},
			"roll_number":      map[string]any{"type": "string"},
			"department":       map[string]any{"type": "string", "minLength": 1},
			"year":             map[string]any{"type": "string", "pattern": `^[1-4]$`},
			"section":          map[string]any{"type": "string"},
			"is_lateral_entry": map[string]any{"type": "boolean"},
			"total_fees":       map[string]any{"type": "number", "minimum": 0},
			"paid_fees":        map[string]any{"type": "number", "minimum": 0},
			"email":            map[string]any{"type": "string"},
			"phone":            map[string]any{"type": "string"},
		},
		"required": []string{"name", "department", "year"},
	}
}

// BuildAttendanceRowSchema describes one candidate monthly attendance record.
func BuildAttendanceRowSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"roll_number": map[string]any{"type": "string", "minLength": 1},
			"month":       map[string]any{"type": "string", "minLength": 3},
			"year":        map[string]any{"type": "integer", "minimum": 1000, "maximum": 9999},
			"present":     map[string]any{"type": "integer", "minimum": 0},
			"total":       map[string]any{"type": "integer", "minimum": 0},
		},
		"required": []string{"roll_number", "month", "year", "present", "total"},
	}
}

// envelopeSchema wraps a row schema in the {"records": [...]} envelope the
// model is asked to return (json_object response format cannot carry a
// top-level array).
func envelopeSchema(rowSchema map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"records": map[string]any{
				"type":  "array",
				"items": rowSchema,
			},
		},
		"required": []string{"records"},
	}
}

// BuildStudentJSONSchema is the full roster extraction contract.
func BuildStudentJSONSchema() map[string]any {
	return envelopeSchema(BuildStudentRowSchema())
}

// BuildAttendanceJSONSchema is the full attendance extraction contract.
func BuildAttendanceJSONSchema() map[string]any {
	return envelopeSchema(BuildAttendanceRowSchema())
}
