package llm

import (
	"strings"
	"testing"
)

func TestStudentRowValidator(t *testing.T) {
	good := []byte(`{"name":"Anil Kumar","department":"ECE","year":"1"}`)
	if err := StudentRowValidator.Validate(good); err != nil {
		t.Fatalf("valid row rejected: %v", err)
	}
	bad := []byte(`{"name":"Anil Kumar","department":"ECE","year":"5"}`)
	if err := StudentRowValidator.Validate(bad); err == nil {
		t.Fatal("year out of range accepted")
	}
	if err := StudentRowValidator.Validate([]byte(`{"department":"ECE","year":"1"}`)); err == nil {
		t.Fatal("missing name accepted")
	}
}

func TestAttendanceRowValidator(t *testing.T) {
	good := []byte(`{"roll_number":"24KP1A0401","month":"January","year":2024,"present":20,"total":22}`)
	if err := AttendanceRowValidator.Validate(good); err != nil {
		t.Fatalf("valid row rejected: %v", err)
	}
	bad := []byte(`{"roll_number":"24KP1A0401","month":"January","year":2024,"present":-1,"total":22}`)
	err := AttendanceRowValidator.Validate(bad)
	if err == nil {
		t.Fatal("negative present accepted")
	}
	if !strings.Contains(err.Error(), "does not match schema") {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same validator again: the compiled schema is reused, not rebuilt.
	if err := AttendanceRowValidator.Validate(good); err != nil {
		t.Fatalf("second validation failed: %v", err)
	}
}
