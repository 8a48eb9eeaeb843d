package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RowValidator validates raw JSON rows against one of the fixed row
// contracts. The schema is compiled once, on first use, not per row.
type RowValidator struct {
	build func() map[string]any

	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// The two row contracts the extraction pipeline admits.
var (
	StudentRowValidator    = &RowValidator{build: BuildStudentRowSchema}
	AttendanceRowValidator = &RowValidator{build: BuildAttendanceRowSchema}
)

func (v *RowValidator) compile() {
	b, err := json.Marshal(v.build())
	if err != nil {
		v.err = fmt.Errorf("marshal schema: %w", err)
		return
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		v.err = fmt.Errorf("add schema: %w", err)
		return
	}
	v.schema, v.err = compiler.Compile("schema.json")
	if v.err != nil {
		v.err = fmt.Errorf("compile schema: %w", v.err)
	}
}

// Validate checks one sanitized row against the compiled contract.
func (v *RowValidator) Validate(data []byte) error {
	v.once.Do(v.compile)
	if v.err != nil {
		return v.err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
